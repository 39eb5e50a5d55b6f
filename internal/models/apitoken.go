package models

import (
	"time"

	"gorm.io/gorm"
)

// APIToken is an issued bearer token. Farm-management integrations use
// these for machine access; the JWT is also checked against this table
// so a token can be cut off before its expiry.
type APIToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

func (t *APIToken) Expired() bool {
	return t.ExpiresAt.Before(time.Now())
}
