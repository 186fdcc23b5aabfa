package main

import (
	"fmt"
	"log"

	"inventario-app/collector"
	"inventario-app/config"
	"inventario-app/database"
	"inventario-app/idgen"
	"inventario-app/repositories"
	"inventario-app/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadConfig()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	database.RunSeeders(db)
	database.SeedSampleBens(db)

	idgen.Init()

	// The offline collector is built once here with its dependencies
	// injected; controllers only ever see this instance.
	store := collector.NewFileStore(config.QueueStoragePath)
	bemRepo := repositories.NewBemRepository(db)
	inventarioRepo := repositories.NewInventarioRepository(db)

	queue, err := collector.NewQueue(store, idgen.GenerateID, inventarioRepo)
	if err != nil {
		log.Fatalf("Failed to load offline queue: %v", err)
	}

	geo := &collector.GeoResolver{
		Default: collector.Position{
			Latitude:  config.FallbackLatitude,
			Longitude: config.FallbackLongitude,
		},
	}
	machine := collector.NewMachine(queue, bemRepo, geo, collector.SystemClock())

	app := fiber.New()
	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, db)
	routes.SetupBemRoutes(app, db)
	routes.SetupInventoryRoutes(app, db, machine)
	routes.SetupUserRoutes(app, db)

	port := config.APP_PORT
	fmt.Println("🚀 Server running on port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
