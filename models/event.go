package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time  `gorm:"not null" json:"end_date"`
	AllDay      bool       `gorm:"default:false" json:"all_day"`
	ClientID    *uuid.UUID `gorm:"type:uuid;index" json:"client"`
	Client      *Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;index;not null" json:"created_by"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"-"`

	Reminders []Reminder `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"reminders"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

type Reminder struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID  uuid.UUID `gorm:"type:uuid;index;not null" json:"event"`
	Event    *Event    `gorm:"foreignKey:EventID" json:"-"`
	RemindAt time.Time `gorm:"not null;index" json:"remind_at"`
	Sent     bool      `gorm:"default:false;index" json:"sent"`
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
