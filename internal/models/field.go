package models

import (
	"time"

	"gorm.io/gorm"
)

type FieldStatus string

const (
	FieldStatusActive   FieldStatus = "active"
	FieldStatusFallow   FieldStatus = "fallow"
	FieldStatusArchived FieldStatus = "archived"
)

type Field struct {
	gorm.Model
	OwnerID uint `gorm:"not null;index" json:"owner_id"`
	Owner   User `gorm:"foreignKey:OwnerID" json:"-"`

	Name string `gorm:"not null" json:"name"`

	// Boundary is the field polygon as a GeoJSON Polygon geometry.
	// The outer ring is a closed list of [longitude, latitude] pairs.
	Boundary    string  `gorm:"type:text;not null" json:"boundary"`
	CentroidLat float64 `gorm:"index" json:"centroid_lat"`
	CentroidLng float64 `gorm:"index" json:"centroid_lng"`

	Crop      string      `json:"crop"`
	Variety   string      `json:"variety"`
	SprayType string      `json:"spray_type"`
	Status    FieldStatus `gorm:"default:active;index" json:"status"`
	Acres     float64     `json:"acres"`
	Season    string      `json:"season"`

	PlantedAt   *time.Time `json:"planted_at,omitempty"`
	HarvestedAt *time.Time `json:"harvested_at,omitempty"`

	// Notes never leave the owner, regardless of access grants.
	Notes string `gorm:"type:text" json:"-"`
}
