package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/fencerow/fencerow/internal/geometry"
	"github.com/fencerow/fencerow/internal/models"
	"github.com/fencerow/fencerow/internal/repository"
	"github.com/paulmach/orb"
	"gorm.io/gorm"
)

var (
	ErrFieldNotFound   = errors.New("field not found")
	ErrInvalidGeometry = errors.New("invalid field boundary")
	ErrFieldOverlap    = errors.New("boundary overlaps one of your existing fields")
)

// OverlapResult lists the caller's own fields whose interiors the
// proposed boundary intersects.
type OverlapResult struct {
	HasOverlap        bool
	OverlappingFields []uint
}

// ProximityService computes and persists the adjacency graph. Two
// fields are adjacent when their boundaries are within the configured
// threshold (meters) of each other, touching and overlapping included.
type ProximityService struct {
	fieldRepo       *repository.FieldRepository
	adjacencyRepo   *repository.AdjacencyRepository
	db              *gorm.DB
	thresholdMeters float64
}

func NewProximityService(
	fieldRepo *repository.FieldRepository,
	adjacencyRepo *repository.AdjacencyRepository,
	db *gorm.DB,
	thresholdMeters float64,
) *ProximityService {
	return &ProximityService{
		fieldRepo:       fieldRepo,
		adjacencyRepo:   adjacencyRepo,
		db:              db,
		thresholdMeters: thresholdMeters,
	}
}

func (s *ProximityService) ThresholdMeters() float64 {
	return s.thresholdMeters
}

// RecomputeAdjacency rebuilds the full adjacency set of one field: every
// prior record referencing it is dropped and fresh ones inserted in a
// single transaction. Safe to call repeatedly; callers may retry after
// any failure.
func (s *ProximityService) RecomputeAdjacency(fieldID uint) error {
	field, err := s.fieldRepo.FindByID(fieldID)
	if err != nil {
		return err
	}
	if field == nil {
		return ErrFieldNotFound
	}

	ring, err := geometry.ParseBoundary([]byte(field.Boundary))
	if err != nil {
		return fmt.Errorf("%w: field %d: %v", ErrInvalidGeometry, fieldID, err)
	}

	candidates, err := s.fieldRepo.FindAllExcept(fieldID)
	if err != nil {
		return err
	}

	var records []models.AdjacencyRecord
	for _, candidate := range candidates {
		other, err := geometry.ParseBoundary([]byte(candidate.Boundary))
		if err != nil {
			// A stored boundary that no longer parses must not poison
			// recomputation for everyone else.
			log.Printf("skipping field %d during recompute: %v", candidate.ID, err)
			continue
		}

		distance := geometry.MinDistanceMeters(ring, other)
		if distance > s.thresholdMeters {
			continue
		}
		records = append(records, models.AdjacencyRecord{
			FieldAID:       fieldID,
			FieldBID:       candidate.ID,
			DistanceMeters: distance,
		})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.adjacencyRepo.ReplaceForField(tx, fieldID, records)
	})
}

// CheckOverlap tests a proposed boundary against the owner's other
// fields. Cross-owner overlap is deliberately not checked: neighboring
// farms legitimately share, and sometimes over-digitize, a fence line.
func (s *ProximityService) CheckOverlap(ring orb.Ring, excludeFieldID, ownerID uint) (*OverlapResult, error) {
	owned, err := s.fieldRepo.FindByOwnerID(ownerID)
	if err != nil {
		return nil, err
	}

	result := &OverlapResult{}
	for _, field := range owned {
		if field.ID == excludeFieldID {
			continue
		}
		other, err := geometry.ParseBoundary([]byte(field.Boundary))
		if err != nil {
			log.Printf("skipping field %d during overlap check: %v", field.ID, err)
			continue
		}
		if geometry.Intersects(ring, other) {
			result.HasOverlap = true
			result.OverlappingFields = append(result.OverlappingFields, field.ID)
		}
	}
	return result, nil
}
