package inventory

import (
	"fmt"
	"log"
	"strings"

	"construction-backend/internal/audit"
	"construction-backend/internal/auth"
	"construction-backend/internal/database"
	"construction-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateMaterialRequest struct {
	Name              string          `json:"name"`
	ItemID            *uint           `json:"item_id"`
	StockQty          float64         `json:"stock_qty"`
	MinimumStockLevel float64         `json:"minimum_stock_level"`
	MaximumStockLevel float64         `json:"maximum_stock_level"`
	ReorderPoint      float64         `json:"reorder_point"`
	WarehouseID       uint            `json:"warehouse_id"`
	ProjectID         uint            `json:"project_id"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
}

func validateMaterial(body *CreateMaterialRequest) error {
	if strings.TrimSpace(body.Name) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if body.WarehouseID == 0 || body.ProjectID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "warehouse_id and project_id are required")
	}
	if body.StockQty < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock_qty cannot be negative")
	}
	if body.MinimumStockLevel > body.ReorderPoint && body.ReorderPoint > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "reorder_point must be at or above minimum_stock_level")
	}
	if body.MaximumStockLevel > 0 && body.MinimumStockLevel > body.MaximumStockLevel {
		return fiber.NewError(fiber.StatusBadRequest, "minimum_stock_level cannot exceed maximum_stock_level")
	}
	if body.CostPerUnit.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "cost_per_unit cannot be negative")
	}
	return nil
}

// POST /api/inventory
func CreateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validateMaterial(&body); err != nil {
			return err
		}

		var warehouse models.Warehouse
		if err := database.DB.First(&warehouse, "id = ?", body.WarehouseID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Warehouse not found")
		}
		var project models.Project
		if err := database.DB.First(&project, "id = ?", body.ProjectID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Project not found")
		}
		if body.ItemID != nil {
			var item models.Item
			if err := database.DB.First(&item, "id = ?", *body.ItemID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Item master not found")
			}
		}

		material := models.Material{
			Name:              strings.TrimSpace(body.Name),
			ItemID:            body.ItemID,
			StockQty:          body.StockQty,
			MinimumStockLevel: body.MinimumStockLevel,
			MaximumStockLevel: body.MaximumStockLevel,
			ReorderPoint:      body.ReorderPoint,
			WarehouseID:       body.WarehouseID,
			ProjectID:         body.ProjectID,
			CostPerUnit:       body.CostPerUnit,
		}

		if err := database.DB.Create(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create material")
		}

		if userID, err := auth.CurrentUserID(c); err == nil {
			var user models.User
			database.DB.First(&user, userID)
			if err := audit.WriteLog(audit.LogOptions{
				ProjectID:   &material.ProjectID,
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "material",
				EntityID:    material.ID,
				Action:      models.AuditActionCreate,
				Description: "Created material " + material.Name,
				After:       material,
			}); err != nil {
				log.Printf("audit write failed for material %d: %v", material.ID, err)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"material": material})
	}
}

// PUT /api/inventory/:id — stock_qty is not editable here; stock only moves
// through issues, returns and receipts.
func UpdateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid material id")
		}

		var material models.Material
		if err := database.DB.First(&material, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Material not found")
		}

		var body CreateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		body.StockQty = material.StockQty // not editable
		if err := validateMaterial(&body); err != nil {
			return err
		}

		before := material
		material.Name = strings.TrimSpace(body.Name)
		material.ItemID = body.ItemID
		material.MinimumStockLevel = body.MinimumStockLevel
		material.MaximumStockLevel = body.MaximumStockLevel
		material.ReorderPoint = body.ReorderPoint
		material.WarehouseID = body.WarehouseID
		material.ProjectID = body.ProjectID
		material.CostPerUnit = body.CostPerUnit

		if err := database.DB.Save(&material).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update material")
		}

		if userID, err := auth.CurrentUserID(c); err == nil {
			var user models.User
			database.DB.First(&user, userID)
			if err := audit.WriteLog(audit.LogOptions{
				ProjectID:   &material.ProjectID,
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "material",
				EntityID:    material.ID,
				Action:      models.AuditActionUpdate,
				Description: "Updated material " + material.Name,
				Before:      before,
				After:       material,
			}); err != nil {
				log.Printf("audit write failed for material %d: %v", material.ID, err)
			}
		}

		return c.JSON(fiber.Map{"material": material})
	}
}

type MaterialResponse struct {
	models.Material
	Tier models.StockTier `json:"stock_tier"`
}

// GET /api/inventory?project_id=&warehouse_id=&category=&search=&limit=&offset=
func ListMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Material{}).Preload("Item").Preload("Warehouse")

		if pid := c.QueryInt("project_id"); pid > 0 {
			dbq = dbq.Where("project_id = ?", pid)
		}
		if wid := c.QueryInt("warehouse_id"); wid > 0 {
			dbq = dbq.Where("warehouse_id = ?", wid)
		}
		if category := c.Query("category"); category != "" {
			dbq = dbq.Joins("JOIN items ON items.id = materials.item_id").
				Where("items.category = ?", category)
		}
		if search := c.Query("search"); search != "" {
			dbq = dbq.Where("materials.name ILIKE ?", "%"+search+"%")
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count materials")
		}

		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		offset := c.QueryInt("offset", 0)
		if offset < 0 {
			offset = 0
		}

		var materials []models.Material
		if err := dbq.Order("materials.name ASC").Limit(limit).Offset(offset).Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list materials")
		}

		resp := make([]MaterialResponse, 0, len(materials))
		for _, m := range materials {
			resp = append(resp, MaterialResponse{Material: m, Tier: m.Tier()})
		}

		return c.JSON(fiber.Map{
			"materials": resp,
			"total":     total,
			"limit":     limit,
			"offset":    offset,
		})
	}
}

// GET /api/inventory/low-stock?project_id=
// Two tiers: at or below reorder point is a warning, at or below minimum
// stock level is critical.
func LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Material{}).Preload("Warehouse").
			Where("stock_qty <= reorder_point")

		if pid := c.QueryInt("project_id"); pid > 0 {
			dbq = dbq.Where("project_id = ?", pid)
		}

		var materials []models.Material
		if err := dbq.Order("stock_qty ASC").Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list low stock materials")
		}

		warning := make([]MaterialResponse, 0)
		critical := make([]MaterialResponse, 0)
		for _, m := range materials {
			r := MaterialResponse{Material: m, Tier: m.Tier()}
			if r.Tier == models.StockCritical {
				critical = append(critical, r)
			} else {
				warning = append(warning, r)
			}
		}

		return c.JSON(fiber.Map{
			"critical": critical,
			"warning":  warning,
		})
	}
}

// POST /api/inventory/:id/receive — a receipt: adds to stock. Auto-created
// zero-stock materials become issuable only through this path.
func ReceiveStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid material id")
		}

		var body struct {
			Quantity float64 `json:"quantity"`
			Notes    string  `json:"notes"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be greater than zero")
		}

		var material models.Material
		if err := database.DB.First(&material, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Material not found")
		}

		if err := database.DB.Model(&material).
			Update("stock_qty", gorm.Expr("stock_qty + ?", body.Quantity)).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update stock")
		}

		if userID, err := auth.CurrentUserID(c); err == nil {
			var user models.User
			database.DB.First(&user, userID)
			desc := fmt.Sprintf("Received %.2f of %s", body.Quantity, material.Name)
			if body.Notes != "" {
				desc += ": " + body.Notes
			}
			if err := audit.WriteLog(audit.LogOptions{
				ProjectID:   &material.ProjectID,
				UserID:      userID,
				UserName:    user.Name,
				EntityType:  "material",
				EntityID:    material.ID,
				Action:      models.AuditActionUpdate,
				Description: desc,
			}); err != nil {
				log.Printf("audit write failed for material %d: %v", material.ID, err)
			}
		}

		database.DB.First(&material, material.ID)
		return c.JSON(fiber.Map{"material": material})
	}
}
