package models

import (
	"gorm.io/gorm"
)

// AdjacencyRecord is one undirected "near" pair. Rows are stored in
// canonical order (FieldAID < FieldBID) so a pair can never appear twice.
// Records are derived from geometry and never user-edited.
type AdjacencyRecord struct {
	gorm.Model
	FieldAID uint  `gorm:"not null;uniqueIndex:idx_adjacency_pair;index" json:"field_a_id"`
	FieldA   Field `gorm:"foreignKey:FieldAID" json:"-"`
	FieldBID uint  `gorm:"not null;uniqueIndex:idx_adjacency_pair;index" json:"field_b_id"`
	FieldB   Field `gorm:"foreignKey:FieldBID" json:"-"`

	// DistanceMeters is the minimum boundary-to-boundary distance.
	// Zero when the boundaries touch or overlap.
	DistanceMeters float64 `gorm:"not null" json:"distance_meters"`
}
