package inventory

import (
	"log"
	"time"

	"construction-backend/internal/audit"
	"construction-backend/internal/auth"
	"construction-backend/internal/database"
	"construction-backend/internal/messaging"
	"construction-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CheckInventoryRequest struct {
	AutoCreateMaterials bool `json:"auto_create_materials"`
}

type CheckInventoryResponse struct {
	MrrID            uint              `json:"mrr_id"`
	ReferenceNumber  string            `json:"reference_number"`
	InventoryStatus  InventoryStatus   `json:"inventory_status"`
	Summary          CheckSummary      `json:"summary"`
	Results          []CheckLine       `json:"results"`
	CreatedMaterials []models.Material `json:"created_materials"` // scoped refresh instead of a full reload
}

// POST /api/mrrs/:id/check-inventory
// Resolves every MRR line against the project's stock records. The result is
// ephemeral: nothing about the MRR itself is written, only optionally the
// auto-created zero-stock materials.
func CheckInventoryHandler(producer messaging.StockEventProducer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid MRR id")
		}

		var body CheckInventoryRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
			}
		}

		var req models.MaterialRequirementRequest
		if err := database.DB.Preload("Items").Preload("Items.Item").Preload("Project").
			First(&req, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "MRR not found")
		}

		if req.Status == models.MrrCancelled || req.Status == models.MrrRejected {
			return fiber.NewError(fiber.StatusConflict, "Cannot check inventory for a "+string(req.Status)+" MRR")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		lines := make([]CheckLine, 0, len(req.Items))
		var created []models.Material

		for _, item := range req.Items {
			line := CheckLine{
				MrrItemID:        item.ID,
				ItemID:           item.ItemID,
				ItemName:         item.Item.Name,
				RequiredQuantity: item.Quantity,
			}

			// All stock records for this item within the requesting project,
			// across warehouses.
			var materials []models.Material
			if err := database.DB.
				Where("item_id = ? AND project_id = ?", item.ItemID, req.ProjectID).
				Find(&materials).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not read stock records")
			}

			if len(materials) > 0 {
				refs := make([]StockRef, len(materials))
				for i, m := range materials {
					refs[i] = StockRef{MaterialID: m.ID, WarehouseID: m.WarehouseID, StockQty: m.StockQty}
				}
				best := materials[BestSource(refs)]
				line.MaterialID = &best.ID
				line.AvailableStock = TotalStock(refs)
				line.Breakdown = refs
				line.WarehouseID = &best.WarehouseID
				line.ProjectID = &best.ProjectID
				cost := best.CostPerUnit
				line.CostPerUnit = &cost
				rp := best.ReorderPoint
				line.ReorderPoint = &rp
				min := best.MinimumStockLevel
				line.MinimumStock = &min
				line.Status = ClassifyLine(true, false, line.AvailableStock, item.Quantity)
				line.SuggestedQuantity = SuggestedQuantity(line.Status, item.Quantity, best.StockQty)
			} else if body.AutoCreateMaterials {
				m, err := autoCreateMaterial(&req, &item)
				if err != nil {
					return err
				}
				created = append(created, *m)
				line.MaterialID = &m.ID
				line.WarehouseID = &m.WarehouseID
				line.ProjectID = &m.ProjectID
				line.Status = ClassifyLine(false, true, 0, item.Quantity)

				_ = producer.PublishStockEvent(c.Context(), &messaging.StockEvent{
					Type:       messaging.EventMaterialCreated,
					MaterialID: m.ID,
					ProjectID:  m.ProjectID,
					Quantity:   0,
					Reference:  req.ReferenceNumber,
					Timestamp:  time.Now(),
				})
			} else {
				line.Status = ClassifyLine(false, false, 0, item.Quantity)
			}

			lines = append(lines, line)
		}

		if len(created) > 0 {
			var user models.User
			database.DB.First(&user, userID)
			for _, m := range created {
				if err := audit.WriteLog(audit.LogOptions{
					ProjectID:   &req.ProjectID,
					UserID:      userID,
					UserName:    user.Name,
					EntityType:  "material",
					EntityID:    m.ID,
					Action:      models.AuditActionCreate,
					Description: "Auto-created during inventory check of " + req.ReferenceNumber,
					After:       m,
				}); err != nil {
					log.Printf("audit write failed for material %d: %v", m.ID, err)
				}
			}
		}

		return c.JSON(CheckInventoryResponse{
			MrrID:            req.ID,
			ReferenceNumber:  req.ReferenceNumber,
			InventoryStatus:  Rollup(lines),
			Summary:          Summarize(lines),
			Results:          lines,
			CreatedMaterials: created,
		})
	}
}

// autoCreateMaterial inserts a zero-stock record for a line with no matching
// material. The new record is not usable for issuance until a receipt lands.
func autoCreateMaterial(req *models.MaterialRequirementRequest, item *models.MrrItem) (*models.Material, error) {
	warehouseID, err := defaultWarehouseID(req)
	if err != nil {
		return nil, err
	}

	itemID := item.ItemID
	m := models.Material{
		ItemID:      &itemID,
		Name:        item.Item.Name,
		StockQty:    0,
		WarehouseID: warehouseID,
		ProjectID:   req.ProjectID,
	}
	if err := database.DB.Create(&m).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not auto-create material")
	}
	return &m, nil
}

func defaultWarehouseID(req *models.MaterialRequirementRequest) (uint, error) {
	if req.Project.DefaultWarehouseID != nil {
		return *req.Project.DefaultWarehouseID, nil
	}
	var warehouse models.Warehouse
	err := database.DB.Where("project_id = ?", req.ProjectID).First(&warehouse).Error
	if err == nil {
		return warehouse.ID, nil
	}
	if err == gorm.ErrRecordNotFound {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Project has no warehouse to create materials in")
	}
	return 0, fiber.NewError(fiber.StatusInternalServerError, "Could not resolve warehouse")
}

// InventoryReadyForIssue recomputes just the rollup gate used by the MRR
// process transition: true iff every line resolves AVAILABLE. Availability is
// the sum over the project's stock records; a line backed by several
// warehouses is still issuable because the issue endpoint takes one row per
// material, so the requirement can be split along the check's breakdown.
func InventoryReadyForIssue(req *models.MaterialRequirementRequest) (bool, error) {
	for _, item := range req.Items {
		var count int64
		if err := database.DB.Model(&models.Material{}).
			Where("item_id = ? AND project_id = ?", item.ItemID, req.ProjectID).
			Count(&count).Error; err != nil {
			return false, err
		}
		if count == 0 {
			return false, nil
		}
		var total float64
		if err := database.DB.Model(&models.Material{}).
			Where("item_id = ? AND project_id = ?", item.ItemID, req.ProjectID).
			Select("COALESCE(SUM(stock_qty), 0)").Scan(&total).Error; err != nil {
			return false, err
		}
		if ClassifyLine(true, false, total, item.Quantity) != LineAvailable {
			return false, nil
		}
	}
	return true, nil
}
