package routes

import (
	"inventario-app/collector"
	"inventario-app/config"
	"inventario-app/controllers"
	"inventario-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupInventoryRoutes(app *fiber.App, db *gorm.DB, machine *collector.Machine) {
	inventoryController := controllers.NewInventoryController(machine)
	perm := &middleware.AuthMiddlewareStruct{DB: db}

	api := app.Group(config.MAIN_ROUTES+"/inventario", middleware.AuthMiddleware)

	api.Get("/items", inventoryController.GetItems)
	api.Get("/pending-count", inventoryController.GetPendingCount)
	api.Get("/status", inventoryController.GetStatus)
	api.Post("/scan/start", perm.CheckPermission("inventario.collect"), inventoryController.StartScan)
	api.Post("/scan/cancel", perm.CheckPermission("inventario.collect"), inventoryController.CancelScan)
	api.Post("/collect", perm.CheckPermission("inventario.collect"), inventoryController.Collect)
	api.Post("/sync", perm.CheckPermission("inventario.sync"), inventoryController.Sync)
	api.Post("/import", perm.CheckPermission("inventario.import"), inventoryController.Import)
}
