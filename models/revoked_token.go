package models

import "time"

// RevokedToken is the database fallback for refresh token revocation.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index"`
	RevokedAt time.Time
}

// All lists every model migrated at startup.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Client{},
		&ClientContact{},
		&Product{},
		&Document{},
		&Video{},
		&Quote{},
		&QuoteItem{},
		&Event{},
		&Reminder{},
		&RevokedToken{},
	}
}
