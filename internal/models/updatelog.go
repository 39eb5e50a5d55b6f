package models

import "gorm.io/gorm"

type UpdateType string

const (
	UpdateTypeCreated    UpdateType = "created"
	UpdateTypeGeometry   UpdateType = "geometry"
	UpdateTypeAttributes UpdateType = "attributes"
)

// FieldUpdateLog is an append-only audit trail. Entries are never
// mutated and only disappear when their field is deleted.
type FieldUpdateLog struct {
	gorm.Model
	FieldID     uint       `gorm:"not null;index" json:"field_id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	UpdateType  UpdateType `gorm:"not null" json:"update_type"`
	Description string     `gorm:"type:text" json:"description"`
	OldValue    string     `gorm:"type:text" json:"old_value,omitempty"`
	NewValue    string     `gorm:"type:text" json:"new_value,omitempty"`
}
