package repositories

import (
	"context"

	"inventario-app/collector"
	"inventario-app/models"

	"gorm.io/gorm"
)

type InventarioRepository struct {
	db *gorm.DB
}

func NewInventarioRepository(db *gorm.DB) *InventarioRepository {
	return &InventarioRepository{db}
}

// InsertBatch persists a finalized sync batch in one transaction, so the
// remote side acknowledges all rows or none.
func (r *InventarioRepository) InsertBatch(ctx context.Context, items []collector.RemoteItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]models.InventarioItem, len(items))
	for i, item := range items {
		rows[i] = models.InventarioItem{
			BemID:             item.AssetID,
			PlaquetaLida:      item.TagCode,
			DataColeta:        item.CollectedAt,
			UsuarioColetaID:   item.CollectorUserID,
			Latitude:          item.Latitude,
			Longitude:         item.Longitude,
			StatusConciliacao: item.ReconciliationStatus,
			Observacao:        item.Note,
		}
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
}

func (r *InventarioRepository) GetAll() ([]models.InventarioItem, error) {
	var items []models.InventarioItem
	if err := r.db.Order("data_coleta DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
