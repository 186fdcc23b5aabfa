package routes

import (
	"inventario-app/config"
	"inventario-app/controllers"
	"inventario-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupBemRoutes(app *fiber.App, db *gorm.DB) {
	bemController := controllers.NewBemController(db)
	perm := &middleware.AuthMiddlewareStruct{DB: db}

	api := app.Group(config.MAIN_ROUTES+"/bens", middleware.AuthMiddleware)

	api.Get("/", bemController.GetAllBens)
	api.Get("/patrimonio/:numero", bemController.GetBemByNumeroPatrimonio)
	api.Get("/:id", bemController.GetBemByID)
	api.Post("/", perm.CheckPermission("bem.create"), bemController.CreateBem)
	api.Put("/:id", perm.CheckPermission("bem.update"), bemController.UpdateBem)
	api.Delete("/:id", perm.CheckPermission("bem.delete"), bemController.DeleteBem)
	api.Put("/:id/favorito", bemController.ToggleFavorito)
	api.Post("/export/:format", perm.CheckPermission("bem.export"), bemController.Export)
}
