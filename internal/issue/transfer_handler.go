package issue

import (
	"errors"
	"fmt"
	"log"
	"time"

	"construction-backend/internal/audit"
	"construction-backend/internal/auth"
	"construction-backend/internal/database"
	"construction-backend/internal/messaging"
	"construction-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateTransferRequest struct {
	FromProjectID uint    `json:"from_project_id"`
	ToProjectID   uint    `json:"to_project_id"`
	MaterialID    uint    `json:"material_id"`
	Quantity      float64 `json:"quantity"`
	TransferDate  string  `json:"transfer_date"`
	Notes         string  `json:"notes"`
}

type CreateReturnRequest struct {
	ProjectID  uint    `json:"project_id"`
	MaterialID uint    `json:"material_id"`
	Quantity   float64 `json:"quantity"`
	ReturnDate string  `json:"return_date"`
	Notes      string  `json:"notes"`
}

// issuedBalance sums the four movement kinds and folds them through Balance.
// Runs inside the caller's transaction so concurrent movements cannot slip
// between the read and the write.
func issuedBalance(tx *gorm.DB, projectID, materialID uint) (float64, error) {
	var issued, in, out, returned float64

	err := tx.Model(&models.MaterialIssue{}).
		Where("project_id = ? AND material_id = ? AND status <> ?", projectID, materialID, models.IssueCancelled).
		Select("COALESCE(SUM(quantity), 0)").Scan(&issued).Error
	if err != nil {
		return 0, err
	}

	err = tx.Model(&models.SiteTransfer{}).
		Where("to_project_id = ? AND material_id = ? AND status = ?", projectID, materialID, models.TransferCompleted).
		Select("COALESCE(SUM(quantity), 0)").Scan(&in).Error
	if err != nil {
		return 0, err
	}

	err = tx.Model(&models.SiteTransfer{}).
		Where("from_project_id = ? AND material_id = ? AND status = ?", projectID, materialID, models.TransferCompleted).
		Select("COALESCE(SUM(quantity), 0)").Scan(&out).Error
	if err != nil {
		return 0, err
	}

	err = tx.Model(&models.MaterialReturn{}).
		Where("project_id = ? AND material_id = ?", projectID, materialID).
		Select("COALESCE(SUM(quantity), 0)").Scan(&returned).Error
	if err != nil {
		return 0, err
	}

	return Balance(issued, in, out, returned), nil
}

// POST /api/site-transfers
func CreateTransferHandler(producer messaging.StockEventProducer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.FromProjectID == 0 || body.ToProjectID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "from_project_id and to_project_id are required")
		}
		if body.FromProjectID == body.ToProjectID {
			return fiber.NewError(fiber.StatusBadRequest, "Source and destination project must differ")
		}
		if body.MaterialID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "material_id is required")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be greater than zero")
		}

		for _, pid := range []uint{body.FromProjectID, body.ToProjectID} {
			var project models.Project
			if err := database.DB.First(&project, "id = ?", pid).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Project %d not found", pid))
			}
		}

		transferDate := time.Now()
		if body.TransferDate != "" {
			d, err := time.Parse("2006-01-02", body.TransferDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "transfer_date must be 'YYYY-MM-DD'")
			}
			transferDate = d
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var transfer models.SiteTransfer
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			// Lock the material row so parallel transfers of the same
			// material serialize against each other.
			var material models.Material
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&material, "id = ?", body.MaterialID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Material not found")
			}

			balance, err := issuedBalance(tx, body.FromProjectID, body.MaterialID)
			if err != nil {
				return err
			}
			if body.Quantity > balance {
				return fiber.NewError(fiber.StatusConflict,
					fmt.Sprintf("Project holds only %.2f of %s, cannot transfer %.2f", balance, material.Name, body.Quantity))
			}

			transfer = models.SiteTransfer{
				FromProjectID:   body.FromProjectID,
				ToProjectID:     body.ToProjectID,
				MaterialID:      body.MaterialID,
				Quantity:        body.Quantity,
				TransferDate:    transferDate,
				Notes:           body.Notes,
				TransferredByID: userID,
				Status:          models.TransferCompleted,
			}
			return tx.Create(&transfer).Error
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create transfer")
		}

		var user models.User
		database.DB.First(&user, userID)
		if err := audit.WriteLog(audit.LogOptions{
			ProjectID:   &transfer.FromProjectID,
			UserID:      userID,
			UserName:    user.Name,
			EntityType:  "site_transfer",
			EntityID:    transfer.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Transferred %.2f of material %d to project %d", transfer.Quantity, transfer.MaterialID, transfer.ToProjectID),
			After:       transfer,
		}); err != nil {
			log.Printf("audit write failed for site_transfer %d: %v", transfer.ID, err)
		}

		_ = producer.PublishStockEvent(c.Context(), &messaging.StockEvent{
			Type:       messaging.EventSiteTransfer,
			MaterialID: transfer.MaterialID,
			ProjectID:  transfer.FromProjectID,
			Quantity:   transfer.Quantity,
			Reference:  fmt.Sprintf("transfer:%d->%d", transfer.FromProjectID, transfer.ToProjectID),
			Timestamp:  time.Now(),
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"site_transfer": transfer})
	}
}

// GET /api/site-transfers?project_id=&material_id=
func ListTransfersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.SiteTransfer{})

		if pid := c.QueryInt("project_id"); pid > 0 {
			dbq = dbq.Where("from_project_id = ? OR to_project_id = ?", pid, pid)
		}
		if mid := c.QueryInt("material_id"); mid > 0 {
			dbq = dbq.Where("material_id = ?", mid)
		}

		var transfers []models.SiteTransfer
		if err := dbq.Preload("Material").Order("transfer_date DESC, id DESC").Find(&transfers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list transfers")
		}

		return c.JSON(fiber.Map{"site_transfers": transfers})
	}
}

// POST /api/material-returns — hands issued stock back to the warehouse and
// increments the stock record inside the same transaction.
func CreateReturnHandler(producer messaging.StockEventProducer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateReturnRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ProjectID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "project_id is required")
		}
		if body.MaterialID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "material_id is required")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be greater than zero")
		}

		returnDate := time.Now()
		if body.ReturnDate != "" {
			d, err := time.Parse("2006-01-02", body.ReturnDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "return_date must be 'YYYY-MM-DD'")
			}
			returnDate = d
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var ret models.MaterialReturn
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var material models.Material
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&material, "id = ?", body.MaterialID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Material not found")
			}

			balance, err := issuedBalance(tx, body.ProjectID, body.MaterialID)
			if err != nil {
				return err
			}
			if body.Quantity > balance {
				return fiber.NewError(fiber.StatusConflict,
					fmt.Sprintf("Project holds only %.2f of %s, cannot return %.2f", balance, material.Name, body.Quantity))
			}

			if err := tx.Model(&material).
				Update("stock_qty", gorm.Expr("stock_qty + ?", body.Quantity)).Error; err != nil {
				return err
			}

			ret = models.MaterialReturn{
				ProjectID:    body.ProjectID,
				MaterialID:   body.MaterialID,
				Quantity:     body.Quantity,
				ReturnDate:   returnDate,
				Notes:        body.Notes,
				ReturnedByID: userID,
			}
			return tx.Create(&ret).Error
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create return")
		}

		var user models.User
		database.DB.First(&user, userID)
		if err := audit.WriteLog(audit.LogOptions{
			ProjectID:   &ret.ProjectID,
			UserID:      userID,
			UserName:    user.Name,
			EntityType:  "material_return",
			EntityID:    ret.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Returned %.2f of material %d to stock", ret.Quantity, ret.MaterialID),
			After:       ret,
		}); err != nil {
			log.Printf("audit write failed for material_return %d: %v", ret.ID, err)
		}

		_ = producer.PublishStockEvent(c.Context(), &messaging.StockEvent{
			Type:       messaging.EventMaterialReturn,
			MaterialID: ret.MaterialID,
			ProjectID:  ret.ProjectID,
			Quantity:   ret.Quantity,
			Reference:  fmt.Sprintf("return:%d", ret.ID),
			Timestamp:  time.Now(),
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"material_return": ret})
	}
}
