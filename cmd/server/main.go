package main

import (
	"log"
	"strings"

	"construction-backend/internal/audit"
	"construction-backend/internal/auth"
	"construction-backend/internal/catalog"
	"construction-backend/internal/config"
	"construction-backend/internal/database"
	"construction-backend/internal/inventory"
	"construction-backend/internal/issue"
	"construction-backend/internal/messaging"
	"construction-backend/internal/models"
	"construction-backend/internal/mrr"
	"construction-backend/internal/project"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	var producer messaging.StockEventProducer
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		producer = messaging.NewKafkaProducer(brokers, cfg.KafkaStockTopic)
		log.Println("Publishing stock events to", cfg.KafkaStockTopic)
	} else {
		producer = messaging.NewNoopProducer()
	}
	defer producer.Close()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/users", auth.RegisterUserHandler())
	adminRoutes.Post("/projects", project.CreateProjectHandler())
	adminRoutes.Put("/projects/:id", project.UpdateProjectHandler())
	adminRoutes.Post("/items", catalog.CreateItemHandler())
	adminRoutes.Put("/items/:id", catalog.UpdateItemHandler())
	adminRoutes.Post("/warehouses", catalog.CreateWarehouseHandler())

	// Projects & catalog
	protected.Get("/projects", project.ListProjectsHandler())
	protected.Get("/projects/:id", project.GetProjectHandler())
	protected.Get("/items", catalog.ListItemsHandler())
	protected.Get("/warehouses", catalog.ListWarehousesHandler())

	// Inventory
	protected.Get("/inventory", inventory.ListMaterialsHandler())
	protected.Get("/inventory/low-stock", inventory.LowStockHandler())
	protected.Get("/inventory/export", inventory.ExportMaterialsHandler())
	protected.Post("/inventory", auth.RequireRole(models.RoleAdmin, models.RoleStoreKeeper), inventory.CreateMaterialHandler())
	protected.Put("/inventory/:id", auth.RequireRole(models.RoleAdmin, models.RoleStoreKeeper), inventory.UpdateMaterialHandler())
	protected.Post("/inventory/:id/receive", auth.RequireRole(models.RoleAdmin, models.RoleStoreKeeper), inventory.ReceiveStockHandler())

	// Material requirement requests
	protected.Post("/mrrs", mrr.CreateMrrHandler())
	protected.Get("/mrrs", mrr.ListMrrsHandler())
	protected.Get("/mrrs/:id", mrr.GetMrrHandler())
	protected.Put("/mrrs/:id", mrr.UpdateMrrHandler())
	protected.Post("/mrrs/:id/submit", mrr.SubmitMrrHandler())
	protected.Post("/mrrs/:id/approve", mrr.ApproveMrrHandler())
	protected.Post("/mrrs/:id/transition", mrr.TransitionMrrHandler())
	protected.Post("/mrrs/:id/force-status", auth.RequireRole(models.RoleAdmin), mrr.ForceStatusHandler())
	protected.Post("/mrrs/:id/check-inventory", inventory.CheckInventoryHandler(producer))

	// Material issues
	protected.Post("/material-issues", issue.CreateIssueHandler(producer))
	protected.Post("/material-issues/bulk", issue.BulkCreateIssuesHandler(producer))
	protected.Get("/material-issues", issue.ListIssuesHandler())
	protected.Post("/material-issues/:id/cancel", auth.RequireRole(models.RoleAdmin, models.RoleStoreKeeper), issue.CancelIssueHandler(producer))

	// Site transfers & returns
	protected.Post("/site-transfers", issue.CreateTransferHandler(producer))
	protected.Get("/site-transfers", issue.ListTransfersHandler())
	protected.Post("/material-returns", issue.CreateReturnHandler(producer))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
