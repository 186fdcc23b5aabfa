package routes

import (
	"inventario-app/config"
	"inventario-app/controllers"
	"inventario-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupUserRoutes(app *fiber.App, db *gorm.DB) {
	userController := controllers.NewUserController(db)
	perm := &middleware.AuthMiddlewareStruct{DB: db}

	api := app.Group(
		config.MAIN_ROUTES+"/users",
		middleware.AuthMiddleware,
		perm.CheckPermission("user.manage"),
	)

	api.Get("/", userController.GetAllUsers)
	api.Put("/:id/roles", userController.UpdateUserRoles)
	api.Put("/:id/active", userController.SetUserActive)
	api.Get("/roles", userController.GetRoles)
	api.Get("/permissions", userController.GetPermissions)
}
