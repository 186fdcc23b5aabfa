package database

import (
	"fmt"
	"log"

	"inventario-app/models"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/rand"
	"gorm.io/gorm"
)

var permissionNames = []string{
	"bem.view",
	"bem.create",
	"bem.update",
	"bem.delete",
	"bem.export",
	"inventario.collect",
	"inventario.sync",
	"inventario.import",
	"user.manage",
}

// RunSeeders inserts the base roles, permissions and the initial admin
// account. Safe to run on every boot.
func RunSeeders(db *gorm.DB) {
	for _, name := range permissionNames {
		perm := models.Permission{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
			log.Println("Failed to seed permission", name, ":", err)
		}
	}

	var allPerms []models.Permission
	db.Find(&allPerms)

	adminRole := models.Role{Name: "ROLE_ADMIN", Description: "Full access"}
	if err := db.Where("name = ?", adminRole.Name).FirstOrCreate(&adminRole).Error; err != nil {
		log.Println("Failed to seed admin role:", err)
	}
	db.Model(&adminRole).Association("Permissions").Replace(allPerms)

	var userPerms []models.Permission
	db.Where("name IN ?", []string{"bem.view", "inventario.collect", "inventario.sync", "inventario.import"}).Find(&userPerms)

	userRole := models.Role{Name: "ROLE_USER", Description: "Field collector"}
	if err := db.Where("name = ?", userRole.Name).FirstOrCreate(&userRole).Error; err != nil {
		log.Println("Failed to seed user role:", err)
	}
	db.Model(&userRole).Association("Permissions").Replace(userPerms)

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			log.Println("Failed to hash admin password:", err)
			return
		}
		admin := models.User{
			Username:           "admin",
			Password:           string(hashed),
			Name:               "Administrator",
			Email:              "admin@inventario.local",
			MustChangePassword: true,
			IsActive:           true,
			Roles:              []models.Role{adminRole},
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Println("Failed to seed admin user:", err)
		}
	}
}

// SeedSampleBens fills an empty bens table with generated records for
// local development.
func SeedSampleBens(db *gorm.DB) {
	var count int64
	db.Model(&models.Bem{}).Count(&count)
	if count > 0 {
		return
	}

	categorias := []string{"Informatica", "Mobiliario", "Veiculo", "Equipamento"}
	situacoes := []string{models.SituacaoAtivo, models.SituacaoInativo, models.SituacaoEmManutencao}

	for i := 0; i < 25; i++ {
		bem := models.Bem{
			Codigo:           fmt.Sprintf("BEM%04d", i+1),
			Descricao:        fmt.Sprintf("Item de teste %d", i+1),
			Categoria:        categorias[rand.Intn(len(categorias))],
			Localizacao:      fmt.Sprintf("Sala %d", rand.Intn(20)+1),
			Responsavel:      fmt.Sprintf("Responsavel %d", rand.Intn(5)+1),
			Valor:            float64(rand.Intn(500000)) / 100,
			NumeroPatrimonio: fmt.Sprintf("PAT-%06d", 100001+i),
			Situacao:         situacoes[rand.Intn(len(situacoes))],
		}
		if err := db.Create(&bem).Error; err != nil {
			log.Println("Failed to seed bem:", err)
		}
	}
}
