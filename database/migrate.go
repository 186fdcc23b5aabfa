package database

import (
	"inventario-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.UserSession{},
		&models.LoginLog{},
		&models.Bem{},
		&models.InventarioItem{},
	)
}
