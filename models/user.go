package models

import (
	"time"

	"vendas-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Username  string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"size:254" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	FirstName string     `gorm:"size:150" json:"first_name"`
	LastName  string     `gorm:"size:150" json:"last_name"`
	Role      string     `gorm:"type:varchar(20);not null;default:'seller'" json:"role"` // 'admin' or 'seller'
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Initialize UUID and hash the plain password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleSeller
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSeller
}
