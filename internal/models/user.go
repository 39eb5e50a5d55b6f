package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username  string     `gorm:"uniqueIndex;not null" json:"username"`
	Email     string     `json:"email,omitempty"`
	Fields    []Field    `gorm:"foreignKey:OwnerID" json:"-"`
	APITokens []APIToken `gorm:"foreignKey:UserID" json:"-"`
}
