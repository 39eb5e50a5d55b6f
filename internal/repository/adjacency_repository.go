package repository

import (
	"errors"

	"github.com/fencerow/fencerow/internal/models"
	"gorm.io/gorm"
)

var ErrSelfPair = errors.New("a field cannot be adjacent to itself")

type AdjacencyRepository struct {
	db *gorm.DB
}

func NewAdjacencyRepository(db *gorm.DB) *AdjacencyRepository {
	return &AdjacencyRepository{db: db}
}

// Neighbor is one adjacency row resolved to "the other field" from the
// perspective of the queried field.
type Neighbor struct {
	Field          models.Field
	DistanceMeters float64
}

// canonicalize orders a pair so the smaller id is always FieldAID,
// which lets the unique index reject duplicates in either direction.
func canonicalize(a, b uint) (uint, uint, error) {
	if a == b {
		return 0, 0, ErrSelfPair
	}
	if a > b {
		a, b = b, a
	}
	return a, b, nil
}

func (r *AdjacencyRepository) FindByFieldID(fieldID uint) ([]Neighbor, error) {
	var records []models.AdjacencyRecord
	err := r.db.
		Preload("FieldA").Preload("FieldB").
		Where("field_a_id = ? OR field_b_id = ?", fieldID, fieldID).
		Order("distance_meters ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	neighbors := make([]Neighbor, 0, len(records))
	for _, rec := range records {
		other := rec.FieldB
		if rec.FieldBID == fieldID {
			other = rec.FieldA
		}
		neighbors = append(neighbors, Neighbor{Field: other, DistanceMeters: rec.DistanceMeters})
	}
	return neighbors, nil
}

// FindNeighborsOfUser returns every field adjacent to any of the user's
// fields, deduplicated by field id and excluding the user's own fields.
// Each field keeps the smallest distance across the pairs it appears in.
func (r *AdjacencyRepository) FindNeighborsOfUser(userID uint) ([]Neighbor, error) {
	var owned []models.Field
	if err := r.db.Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, err
	}

	ownedIDs := make(map[uint]bool, len(owned))
	for _, f := range owned {
		ownedIDs[f.ID] = true
	}

	seen := map[uint]int{}
	var neighbors []Neighbor
	for _, f := range owned {
		found, err := r.FindByFieldID(f.ID)
		if err != nil {
			return nil, err
		}
		for _, n := range found {
			if ownedIDs[n.Field.ID] {
				continue
			}
			if idx, ok := seen[n.Field.ID]; ok {
				if n.DistanceMeters < neighbors[idx].DistanceMeters {
					neighbors[idx].DistanceMeters = n.DistanceMeters
				}
				continue
			}
			seen[n.Field.ID] = len(neighbors)
			neighbors = append(neighbors, n)
		}
	}
	return neighbors, nil
}

// ReplaceForField swaps the full adjacency set of a field inside the
// caller's transaction: delete both directions, insert canonical rows.
// Readers never observe the half-replaced state.
func (r *AdjacencyRepository) ReplaceForField(tx *gorm.DB, fieldID uint, records []models.AdjacencyRecord) error {
	if err := r.DeleteAllForField(tx, fieldID); err != nil {
		return err
	}

	for i := range records {
		a, b, err := canonicalize(records[i].FieldAID, records[i].FieldBID)
		if err != nil {
			return err
		}
		records[i].FieldAID = a
		records[i].FieldBID = b
	}

	if len(records) == 0 {
		return nil
	}
	return tx.Create(&records).Error
}

func (r *AdjacencyRepository) DeleteAllForField(tx *gorm.DB, fieldID uint) error {
	return tx.Unscoped().
		Where("field_a_id = ? OR field_b_id = ?", fieldID, fieldID).
		Delete(&models.AdjacencyRecord{}).Error
}

func (r *AdjacencyRepository) CountPairs() (int64, error) {
	var count int64
	err := r.db.Model(&models.AdjacencyRecord{}).Count(&count).Error
	return count, err
}
