package repository

import (
	"errors"

	"github.com/fencerow/fencerow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

func (r *GrantRepository) Create(tx *gorm.DB, grant *models.AccessGrant) error {
	return tx.Create(grant).Error
}

func (r *GrantRepository) FindByID(id uint) (*models.AccessGrant, error) {
	var grant models.AccessGrant
	err := r.db.Preload("OwnerField").Preload("ViewerUser").First(&grant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

func (r *GrantRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*models.AccessGrant, error) {
	var grant models.AccessGrant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("OwnerField").
		First(&grant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

// FindActiveForPair returns the pending or approved grant occupying the
// (owner field, viewer) slot, if any. Denied and revoked grants are
// invisible here so a fresh request can be made.
func (r *GrantRepository) FindActiveForPair(tx *gorm.DB, ownerFieldID, viewerUserID uint) (*models.AccessGrant, error) {
	var grant models.AccessGrant
	err := tx.
		Where("owner_field_id = ? AND viewer_user_id = ? AND status IN ?",
			ownerFieldID, viewerUserID,
			[]models.GrantStatus{models.GrantStatusPending, models.GrantStatusApproved}).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

// HasApprovedForViewer reports whether the viewer holds an approved
// grant on the field, either directly or through any of their fields.
func (r *GrantRepository) HasApprovedForViewer(ownerFieldID, viewerUserID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.AccessGrant{}).
		Where("owner_field_id = ? AND viewer_user_id = ? AND status = ?",
			ownerFieldID, viewerUserID, models.GrantStatusApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *GrantRepository) FindIncoming(ownerFieldIDs []uint) ([]models.AccessGrant, error) {
	if len(ownerFieldIDs) == 0 {
		return nil, nil
	}
	var grants []models.AccessGrant
	err := r.db.
		Preload("OwnerField").Preload("ViewerUser").
		Where("owner_field_id IN ?", ownerFieldIDs).
		Order("created_at DESC").
		Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) FindOutgoing(viewerUserID uint) ([]models.AccessGrant, error) {
	var grants []models.AccessGrant
	err := r.db.
		Preload("OwnerField").Preload("ViewerUser").
		Where("viewer_user_id = ?", viewerUserID).
		Order("created_at DESC").
		Find(&grants).Error
	return grants, err
}

func (r *GrantRepository) UpdateInTx(tx *gorm.DB, grant *models.AccessGrant) error {
	return tx.Save(grant).Error
}

func (r *GrantRepository) DeleteAllForField(tx *gorm.DB, fieldID uint) error {
	return tx.Unscoped().
		Where("owner_field_id = ? OR viewer_field_id = ?", fieldID, fieldID).
		Delete(&models.AccessGrant{}).Error
}
