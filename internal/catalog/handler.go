package catalog

import (
	"strings"

	"construction-backend/internal/database"
	"construction-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ItemRequest struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Brand         string `json:"brand"`
	Unit          string `json:"unit"`
	Specification string `json:"specification"`
}

// POST /api/items
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name and unit are required")
		}

		item := models.Item{
			Name:          body.Name,
			Category:      body.Category,
			Brand:         body.Brand,
			Unit:          body.Unit,
			Specification: body.Specification,
		}

		if err := database.DB.Create(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create item")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item})
	}
}

// GET /api/items?category=&search=
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Item{})
		if category := c.Query("category"); category != "" {
			dbq = dbq.Where("category = ?", category)
		}
		if search := c.Query("search"); search != "" {
			dbq = dbq.Where("name ILIKE ?", "%"+search+"%")
		}

		var items []models.Item
		if err := dbq.Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list items")
		}
		return c.JSON(fiber.Map{"items": items})
	}
}

// PUT /api/items/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid item id")
		}

		var item models.Item
		if err := database.DB.First(&item, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Item not found")
		}

		var body ItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if name := strings.TrimSpace(body.Name); name != "" {
			item.Name = name
		}
		if body.Category != "" {
			item.Category = body.Category
		}
		if body.Brand != "" {
			item.Brand = body.Brand
		}
		if body.Unit != "" {
			item.Unit = body.Unit
		}
		if body.Specification != "" {
			item.Specification = body.Specification
		}

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update item")
		}
		return c.JSON(fiber.Map{"item": item})
	}
}

type WarehouseRequest struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	ProjectID *uint  `json:"project_id"`
}

// POST /api/warehouses
func CreateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body WarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name is required")
		}

		if body.ProjectID != nil {
			var project models.Project
			if err := database.DB.First(&project, "id = ?", *body.ProjectID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Project not found")
			}
		}

		warehouse := models.Warehouse{
			Name:      body.Name,
			Location:  body.Location,
			ProjectID: body.ProjectID,
		}

		if err := database.DB.Create(&warehouse).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create warehouse")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"warehouse": warehouse})
	}
}

// GET /api/warehouses?project_id=
func ListWarehousesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Warehouse{})
		if pid := c.QueryInt("project_id"); pid > 0 {
			dbq = dbq.Where("project_id = ?", pid)
		}

		var warehouses []models.Warehouse
		if err := dbq.Order("name ASC").Find(&warehouses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list warehouses")
		}
		return c.JSON(fiber.Map{"warehouses": warehouses})
	}
}
