package repository

import (
	"errors"

	"github.com/fencerow/fencerow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FieldRepository struct {
	db *gorm.DB
}

func NewFieldRepository(db *gorm.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

func (r *FieldRepository) Create(field *models.Field) error {
	return r.db.Create(field).Error
}

func (r *FieldRepository) FindByID(id uint) (*models.Field, error) {
	var field models.Field
	err := r.db.Preload("Owner").First(&field, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &field, nil
}

func (r *FieldRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*models.Field, error) {
	var field models.Field
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&field, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &field, nil
}

func (r *FieldRepository) FindByOwnerID(ownerID uint) ([]models.Field, error) {
	var fields []models.Field
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&fields).Error
	return fields, err
}

// FindAllExcept returns every field other than the given one, the
// candidate set for adjacency recomputation.
func (r *FieldRepository) FindAllExcept(id uint) ([]models.Field, error) {
	var fields []models.Field
	err := r.db.Where("id <> ?", id).Find(&fields).Error
	return fields, err
}

func (r *FieldRepository) FindAll() ([]models.Field, error) {
	var fields []models.Field
	err := r.db.Preload("Owner").Order("created_at ASC").Find(&fields).Error
	return fields, err
}

func (r *FieldRepository) Update(field *models.Field) error {
	return r.db.Save(field).Error
}

func (r *FieldRepository) UpdateInTx(tx *gorm.DB, field *models.Field) error {
	return tx.Save(field).Error
}

func (r *FieldRepository) DeleteInTx(tx *gorm.DB, id uint) error {
	return tx.Unscoped().Delete(&models.Field{}, id).Error
}

func (r *FieldRepository) CountFields() (int64, error) {
	var count int64
	err := r.db.Model(&models.Field{}).Count(&count).Error
	return count, err
}
