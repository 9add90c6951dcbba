package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"size:200;not null;index" json:"name"`
	Company     string    `gorm:"size:200" json:"company"`
	Email       string    `gorm:"size:254" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedByID uuid.UUID `gorm:"type:uuid;index;not null" json:"created_by"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID;constraint:OnDelete:RESTRICT" json:"-"`

	Contacts []ClientContact `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"contacts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

type ClientContact struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ClientID  uuid.UUID `gorm:"type:uuid;index;not null" json:"client"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Position  string    `gorm:"size:100" json:"position"`
	Email     string    `gorm:"size:254" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
}

func (c *ClientContact) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
