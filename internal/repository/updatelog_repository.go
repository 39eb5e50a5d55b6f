package repository

import (
	"github.com/fencerow/fencerow/internal/models"
	"gorm.io/gorm"
)

type UpdateLogRepository struct {
	db *gorm.DB
}

func NewUpdateLogRepository(db *gorm.DB) *UpdateLogRepository {
	return &UpdateLogRepository{db: db}
}

func (r *UpdateLogRepository) Append(entry *models.FieldUpdateLog) error {
	return r.db.Create(entry).Error
}

func (r *UpdateLogRepository) FindByFieldID(fieldID uint) ([]models.FieldUpdateLog, error) {
	var entries []models.FieldUpdateLog
	err := r.db.Where("field_id = ?", fieldID).Order("id DESC").Find(&entries).Error
	return entries, err
}

func (r *UpdateLogRepository) DeleteAllForField(tx *gorm.DB, fieldID uint) error {
	return tx.Unscoped().Where("field_id = ?", fieldID).Delete(&models.FieldUpdateLog{}).Error
}
