package repositories

import (
	"context"
	"errors"

	"inventario-app/collector"
	"inventario-app/models"

	"gorm.io/gorm"
)

type BemRepository struct {
	db *gorm.DB
}

func NewBemRepository(db *gorm.DB) *BemRepository {
	return &BemRepository{db}
}

// GetByNumeroPatrimonio returns nil without an error when no bem carries
// the number; only transport/database failures are errors.
func (r *BemRepository) GetByNumeroPatrimonio(ctx context.Context, numero string) (*models.Bem, error) {
	var bem models.Bem
	err := r.db.WithContext(ctx).Where("numero_patrimonio = ?", numero).First(&bem).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bem, nil
}

// LookupByTag adapts the repository to the collector's asset lookup.
func (r *BemRepository) LookupByTag(ctx context.Context, tagCode string) (*collector.Asset, error) {
	bem, err := r.GetByNumeroPatrimonio(ctx, tagCode)
	if err != nil {
		return nil, err
	}
	if bem == nil {
		return nil, nil
	}
	return &collector.Asset{ID: bem.ID}, nil
}

func (r *BemRepository) ExistsByNumeroPatrimonio(numero string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.Bem{}).Where("numero_patrimonio = ?", numero)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
