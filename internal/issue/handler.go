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
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BulkIssueRequest struct {
	ProjectID       uint       `json:"project_id"`
	MrrID           *uint      `json:"mrr_id"`
	IssueDate       string     `json:"issue_date"` // "2025-12-09", defaults to today
	Purpose         string     `json:"purpose"`
	Location        string     `json:"location"`
	ReceivedByID    *uint      `json:"received_by_id"`
	ComponentID     *uint      `json:"component_id"`
	SubcontractorID *uint      `json:"subcontractor_id"`
	Items           []IssueRow `json:"items"`
}

type RowResult struct {
	Index      int     `json:"index"`
	IssueID    uint    `json:"issue_id"`
	MaterialID uint    `json:"material_id"`
	Quantity   float64 `json:"quantity"`
}

// rowFailure aborts the batch transaction while keeping the failing row's
// position for the response.
type rowFailure struct {
	RowError
}

// POST /api/material-issues/bulk
// The whole batch commits in one transaction: every row locks its material,
// checks stock and decrements it, or the entire batch rolls back. Partial
// commits cannot happen; failures are still reported per row.
func BulkCreateIssuesHandler(producer messaging.StockEventProducer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkIssueRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		return createIssues(c, producer, &body)
	}
}

// POST /api/material-issues — single row, same path as the bulk endpoint.
func CreateIssueHandler(producer messaging.StockEventProducer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			BulkIssueRequest
			IssueRow
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		req := body.BulkIssueRequest
		if len(req.Items) == 0 {
			req.Items = []IssueRow{body.IssueRow}
		}
		return createIssues(c, producer, &req)
	}
}

func createIssues(c *fiber.Ctx, producer messaging.StockEventProducer, body *BulkIssueRequest) error {
	// Header first, rows second: a bad header never reports row errors.
	if body.ProjectID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "project_id is required")
	}

	var project models.Project
	if err := database.DB.First(&project, "id = ?", body.ProjectID).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Project not found")
	}

	var mrr *models.MaterialRequirementRequest
	if body.MrrID != nil {
		var m models.MaterialRequirementRequest
		if err := database.DB.First(&m, "id = ?", *body.MrrID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "MRR not found")
		}
		if m.Status != models.MrrApproved && m.Status != models.MrrProcessing {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Cannot issue against an MRR in %s", m.Status))
		}
		mrr = &m
	}

	issueDate := time.Now()
	if body.IssueDate != "" {
		d, err := time.Parse("2006-01-02", body.IssueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "issue_date must be 'YYYY-MM-DD'")
		}
		issueDate = d
	}

	rows, rowErrs := ValidateRows(body.Items)
	if len(rowErrs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed, nothing was issued",
			"errors": rowErrs,
		})
	}
	if len(rows) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No items to issue")
	}

	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}

	batchID := uuid.NewString()
	results := make([]RowResult, 0, len(rows))
	var created []models.MaterialIssue

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, vr := range rows {
			var material models.Material
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&material, "id = ?", vr.Row.MaterialID).Error; err != nil {
				return &rowFailure{RowError{
					Index:      vr.Index,
					MaterialID: vr.Row.MaterialID,
					Field:      "material_id",
					Message:    fmt.Sprintf("row %d: material %d not found", vr.Index+1, vr.Row.MaterialID),
				}}
			}

			if material.StockQty < vr.Row.Quantity {
				return &rowFailure{RowError{
					Index:      vr.Index,
					MaterialID: material.ID,
					Field:      "quantity",
					Message: fmt.Sprintf("row %d: insufficient stock for %s (available %.2f, requested %.2f)",
						vr.Index+1, material.Name, material.StockQty, vr.Row.Quantity),
				}}
			}

			if err := tx.Model(&material).
				Update("stock_qty", gorm.Expr("stock_qty - ?", vr.Row.Quantity)).Error; err != nil {
				return err
			}

			warehouseID := vr.Row.WarehouseID
			if warehouseID == nil {
				warehouseID = &material.WarehouseID
			}

			issue := models.MaterialIssue{
				ProjectID:       body.ProjectID,
				MaterialID:      material.ID,
				Quantity:        vr.Row.Quantity,
				IssueDate:       issueDate,
				Purpose:         body.Purpose,
				Location:        body.Location,
				IssuedByID:      userID,
				ReceivedByID:    body.ReceivedByID,
				MrrID:           body.MrrID,
				ComponentID:     body.ComponentID,
				SubcontractorID: body.SubcontractorID,
				WarehouseID:     warehouseID,
				BatchID:         batchID,
				Status:          models.IssueIssued,
			}
			if err := tx.Create(&issue).Error; err != nil {
				return err
			}

			created = append(created, issue)
			results = append(results, RowResult{
				Index:      vr.Index,
				IssueID:    issue.ID,
				MaterialID: material.ID,
				Quantity:   vr.Row.Quantity,
			})
		}
		return nil
	})

	if txErr != nil {
		var rf *rowFailure
		if errors.As(txErr, &rf) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":  "Batch rolled back, nothing was issued",
				"errors": []RowError{rf.RowError},
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Could not create material issues")
	}

	reference := batchID
	if mrr != nil {
		reference = mrr.ReferenceNumber
	}

	var user models.User
	database.DB.First(&user, userID)

	for _, issue := range created {
		_ = producer.PublishStockEvent(c.Context(), &messaging.StockEvent{
			Type:       messaging.EventMaterialIssued,
			MaterialID: issue.MaterialID,
			ProjectID:  issue.ProjectID,
			Quantity:   issue.Quantity,
			Reference:  reference,
			Timestamp:  time.Now(),
		})

		if err := audit.WriteLog(audit.LogOptions{
			ProjectID:   &issue.ProjectID,
			UserID:      userID,
			UserName:    user.Name,
			EntityType:  "material_issue",
			EntityID:    issue.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Issued %.2f of material %d (batch %s)", issue.Quantity, issue.MaterialID, batchID),
			After:       issue,
		}); err != nil {
			log.Printf("audit write failed for material_issue %d: %v", issue.ID, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"batch_id": batchID,
		"results":  results,
	})
}

// GET /api/material-issues?project_id=&mrr_id=&batch_id=&include_material=true
func ListIssuesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.MaterialIssue{})

		if pid := c.QueryInt("project_id"); pid > 0 {
			dbq = dbq.Where("project_id = ?", pid)
		}
		if mid := c.QueryInt("mrr_id"); mid > 0 {
			dbq = dbq.Where("mrr_id = ?", mid)
		}
		if batchID := c.Query("batch_id"); batchID != "" {
			dbq = dbq.Where("batch_id = ?", batchID)
		}

		if c.QueryBool("include_material") {
			dbq = dbq.Preload("Material")
		}
		if c.QueryBool("include_project") {
			dbq = dbq.Preload("Project")
		}
		if c.QueryBool("include_mrr") {
			dbq = dbq.Preload("Mrr")
		}
		if c.QueryBool("include_warehouse") {
			dbq = dbq.Preload("Warehouse")
		}

		var issues []models.MaterialIssue
		if err := dbq.Order("issue_date DESC, id DESC").Find(&issues).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list material issues")
		}

		return c.JSON(fiber.Map{"material_issues": issues})
	}
}

// POST /api/material-issues/:id/cancel — puts the quantity back on stock.
func CancelIssueHandler(producer messaging.StockEventProducer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid issue id")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var issue models.MaterialIssue
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&issue, "id = ?", id).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Material issue not found")
			}
			if issue.Status == models.IssueCancelled {
				return fiber.NewError(fiber.StatusConflict, "Issue is already cancelled")
			}

			if err := tx.Model(&models.Material{}).Where("id = ?", issue.MaterialID).
				Update("stock_qty", gorm.Expr("stock_qty + ?", issue.Quantity)).Error; err != nil {
				return err
			}

			issue.Status = models.IssueCancelled
			return tx.Save(&issue).Error
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not cancel issue")
		}

		var user models.User
		database.DB.First(&user, userID)
		if err := audit.WriteLog(audit.LogOptions{
			ProjectID:   &issue.ProjectID,
			UserID:      userID,
			UserName:    user.Name,
			EntityType:  "material_issue",
			EntityID:    issue.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Cancelled issue of %.2f of material %d", issue.Quantity, issue.MaterialID),
			After:       issue,
		}); err != nil {
			log.Printf("audit write failed for material_issue %d: %v", issue.ID, err)
		}

		_ = producer.PublishStockEvent(c.Context(), &messaging.StockEvent{
			Type:       messaging.EventMaterialReturn,
			MaterialID: issue.MaterialID,
			ProjectID:  issue.ProjectID,
			Quantity:   issue.Quantity,
			Reference:  issue.BatchID,
			Timestamp:  time.Now(),
		})

		return c.JSON(fiber.Map{"material_issue": issue})
	}
}
