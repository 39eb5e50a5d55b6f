package services

import (
	"fmt"
	"log"
	"time"

	"github.com/fencerow/fencerow/internal/geometry"
	"github.com/fencerow/fencerow/internal/models"
	"github.com/fencerow/fencerow/internal/repository"
	"gorm.io/gorm"
)

type FieldInput struct {
	Name        string
	Boundary    string
	Crop        string
	Variety     string
	SprayType   string
	Status      string
	Acres       float64
	Season      string
	PlantedAt   *time.Time
	HarvestedAt *time.Time
	Notes       string
}

// FieldPatch carries only the attributes present in an update request.
type FieldPatch struct {
	Name        *string
	Boundary    *string
	Crop        *string
	Variety     *string
	SprayType   *string
	Status      *string
	Acres       *float64
	Season      *string
	PlantedAt   *time.Time
	HarvestedAt *time.Time
	Notes       *string
}

type FieldService struct {
	fieldRepo     *repository.FieldRepository
	adjacencyRepo *repository.AdjacencyRepository
	grantRepo     *repository.GrantRepository
	logRepo       *repository.UpdateLogRepository
	userRepo      *repository.UserRepository
	proximity     *ProximityService
	access        *AccessService
	db            *gorm.DB
}

func NewFieldService(
	fieldRepo *repository.FieldRepository,
	adjacencyRepo *repository.AdjacencyRepository,
	grantRepo *repository.GrantRepository,
	logRepo *repository.UpdateLogRepository,
	userRepo *repository.UserRepository,
	proximity *ProximityService,
	access *AccessService,
	db *gorm.DB,
) *FieldService {
	return &FieldService{
		fieldRepo:     fieldRepo,
		adjacencyRepo: adjacencyRepo,
		grantRepo:     grantRepo,
		logRepo:       logRepo,
		userRepo:      userRepo,
		proximity:     proximity,
		access:        access,
		db:            db,
	}
}

// GetOrCreateUser resolves the authenticated username to a user row,
// creating one on first touch.
func (s *FieldService) GetOrCreateUser(username string) (*models.User, error) {
	return s.userRepo.GetOrCreate(username)
}

// CreateField validates the boundary, rejects same-owner overlap, and
// persists the field. The field write commits before adjacency is
// recomputed: a recompute failure leaves the field visible with a stale
// (empty) adjacency list rather than rolling the field back, and is
// retryable via the recompute pipeline.
func (s *FieldService) CreateField(username string, input FieldInput) (*models.Field, *OverlapResult, error) {
	user, err := s.GetOrCreateUser(username)
	if err != nil {
		return nil, nil, err
	}

	ring, err := geometry.ParseBoundary([]byte(input.Boundary))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	overlap, err := s.proximity.CheckOverlap(ring, 0, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if overlap.HasOverlap {
		return nil, overlap, ErrFieldOverlap
	}

	centroid := geometry.Centroid(ring)
	status := models.FieldStatusActive
	if input.Status != "" {
		status = models.FieldStatus(input.Status)
	}

	field := &models.Field{
		OwnerID:     user.ID,
		Name:        input.Name,
		Boundary:    input.Boundary,
		CentroidLng: centroid[0],
		CentroidLat: centroid[1],
		Crop:        input.Crop,
		Variety:     input.Variety,
		SprayType:   input.SprayType,
		Status:      status,
		Acres:       input.Acres,
		Season:      input.Season,
		PlantedAt:   input.PlantedAt,
		HarvestedAt: input.HarvestedAt,
		Notes:       input.Notes,
	}

	if err := s.fieldRepo.Create(field); err != nil {
		return nil, nil, err
	}
	field.Owner = *user

	s.appendLog(field.ID, user.ID, models.UpdateTypeCreated, "field created", "", input.Boundary)
	s.recomputeBestEffort(field.ID)

	return field, nil, nil
}

// UpdateField applies a patch. Boundary changes re-run the overlap
// check, refresh the centroid, and trigger adjacency recomputation.
func (s *FieldService) UpdateField(username string, fieldID uint, patch FieldPatch) (*models.Field, *OverlapResult, error) {
	user, err := s.userRepo.GetOrCreate(username)
	if err != nil {
		return nil, nil, err
	}

	field, err := s.fieldRepo.FindByID(fieldID)
	if err != nil {
		return nil, nil, err
	}
	if field == nil {
		return nil, nil, ErrFieldNotFound
	}
	if field.OwnerID != user.ID {
		return nil, nil, ErrNotFieldOwner
	}

	boundaryChanged := patch.Boundary != nil && *patch.Boundary != field.Boundary
	oldBoundary := field.Boundary

	if boundaryChanged {
		ring, err := geometry.ParseBoundary([]byte(*patch.Boundary))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}

		overlap, err := s.proximity.CheckOverlap(ring, field.ID, user.ID)
		if err != nil {
			return nil, nil, err
		}
		if overlap.HasOverlap {
			return nil, overlap, ErrFieldOverlap
		}

		centroid := geometry.Centroid(ring)
		field.Boundary = *patch.Boundary
		field.CentroidLng = centroid[0]
		field.CentroidLat = centroid[1]
	}

	applyPatch(field, patch)

	if err := s.fieldRepo.Update(field); err != nil {
		return nil, nil, err
	}

	if boundaryChanged {
		s.appendLog(field.ID, user.ID, models.UpdateTypeGeometry, "boundary updated", oldBoundary, field.Boundary)
		s.recomputeBestEffort(field.ID)
	} else {
		s.appendLog(field.ID, user.ID, models.UpdateTypeAttributes, "attributes updated", "", "")
	}

	return field, nil, nil
}

// DeleteField removes the field together with every adjacency record,
// grant, and audit entry that references it, in one transaction.
func (s *FieldService) DeleteField(username string, fieldID uint) error {
	user, err := s.userRepo.GetOrCreate(username)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		field, err := s.fieldRepo.FindByIDForUpdate(tx, fieldID)
		if err != nil {
			return err
		}
		if field == nil {
			return ErrFieldNotFound
		}
		if field.OwnerID != user.ID {
			return ErrNotFieldOwner
		}

		if err := s.adjacencyRepo.DeleteAllForField(tx, fieldID); err != nil {
			return err
		}
		if err := s.grantRepo.DeleteAllForField(tx, fieldID); err != nil {
			return err
		}
		if err := s.logRepo.DeleteAllForField(tx, fieldID); err != nil {
			return err
		}
		return s.fieldRepo.DeleteInTx(tx, fieldID)
	})
}

// GetField returns one field projected for the viewer.
func (s *FieldService) GetField(username string, fieldID uint) (*FieldView, error) {
	field, err := s.fieldRepo.FindByID(fieldID)
	if err != nil {
		return nil, err
	}
	if field == nil {
		return nil, ErrFieldNotFound
	}

	level, err := s.access.ResolveVisibility(username, field)
	if err != nil {
		return nil, err
	}
	view := ProjectField(field, level)
	return &view, nil
}

// ListOwnFields returns the caller's fields at owner visibility.
func (s *FieldService) ListOwnFields(username string) ([]FieldView, error) {
	user, err := s.GetOrCreateUser(username)
	if err != nil {
		return nil, err
	}

	fields, err := s.fieldRepo.FindByOwnerID(user.ID)
	if err != nil {
		return nil, err
	}

	views := make([]FieldView, len(fields))
	for i := range fields {
		fields[i].Owner = *user
		views[i] = ProjectField(&fields[i], VisibilityOwner)
	}
	return views, nil
}

// GetNearbyFields returns every field adjacent to any of the user's
// fields, each filtered through the viewer's resolved visibility.
func (s *FieldService) GetNearbyFields(username string) ([]FieldView, error) {
	user, err := s.GetOrCreateUser(username)
	if err != nil {
		return nil, err
	}

	neighbors, err := s.adjacencyRepo.FindNeighborsOfUser(user.ID)
	if err != nil {
		return nil, err
	}

	views := make([]FieldView, 0, len(neighbors))
	for _, n := range neighbors {
		field, err := s.fieldRepo.FindByID(n.Field.ID)
		if err != nil {
			return nil, err
		}
		if field == nil {
			continue
		}
		level, err := s.access.ResolveVisibility(username, field)
		if err != nil {
			return nil, err
		}
		view := ProjectField(field, level)
		view.DistanceMeters = n.DistanceMeters
		views = append(views, view)
	}
	return views, nil
}

// GetFieldHistory returns the audit trail, owner only.
func (s *FieldService) GetFieldHistory(username string, fieldID uint) ([]models.FieldUpdateLog, error) {
	user, err := s.userRepo.GetOrCreate(username)
	if err != nil {
		return nil, err
	}

	field, err := s.fieldRepo.FindByID(fieldID)
	if err != nil {
		return nil, err
	}
	if field == nil {
		return nil, ErrFieldNotFound
	}
	if field.OwnerID != user.ID {
		return nil, ErrNotFieldOwner
	}

	return s.logRepo.FindByFieldID(fieldID)
}

// appendLog is fire-and-forget: a failing audit sink never blocks the
// primary operation.
func (s *FieldService) appendLog(fieldID, userID uint, updateType models.UpdateType, description, oldValue, newValue string) {
	entry := &models.FieldUpdateLog{
		FieldID:     fieldID,
		UserID:      userID,
		UpdateType:  updateType,
		Description: description,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.logRepo.Append(entry); err != nil {
		log.Printf("audit log append failed for field %d: %v", fieldID, err)
	}
}

func (s *FieldService) recomputeBestEffort(fieldID uint) {
	if err := s.proximity.RecomputeAdjacency(fieldID); err != nil {
		log.Printf("adjacency recompute failed for field %d (will stay stale until retried): %v", fieldID, err)
	}
}

func applyPatch(field *models.Field, patch FieldPatch) {
	if patch.Name != nil {
		field.Name = *patch.Name
	}
	if patch.Crop != nil {
		field.Crop = *patch.Crop
	}
	if patch.Variety != nil {
		field.Variety = *patch.Variety
	}
	if patch.SprayType != nil {
		field.SprayType = *patch.SprayType
	}
	if patch.Status != nil {
		field.Status = models.FieldStatus(*patch.Status)
	}
	if patch.Acres != nil {
		field.Acres = *patch.Acres
	}
	if patch.Season != nil {
		field.Season = *patch.Season
	}
	if patch.PlantedAt != nil {
		field.PlantedAt = patch.PlantedAt
	}
	if patch.HarvestedAt != nil {
		field.HarvestedAt = patch.HarvestedAt
	}
	if patch.Notes != nil {
		field.Notes = *patch.Notes
	}
}
