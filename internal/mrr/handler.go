package mrr

import (
	"fmt"
	"log"
	"strings"
	"time"

	"construction-backend/internal/audit"
	"construction-backend/internal/auth"
	"construction-backend/internal/database"
	"construction-backend/internal/inventory"
	"construction-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MrrItemRequest struct {
	ItemID            uint               `json:"item_id"`
	Quantity          float64            `json:"quantity"`
	Unit              string             `json:"unit"`
	Specification     string             `json:"specification"`
	Purpose           string             `json:"purpose"`
	Priority          models.MrrPriority `json:"priority"`
	EstimatedUnitCost decimal.Decimal    `json:"estimated_unit_cost"`
}

type CreateMrrRequest struct {
	ProjectID       uint               `json:"project_id"`
	RequiredBy      string             `json:"required_by"` // "2025-12-09"
	Priority        models.MrrPriority `json:"priority"`
	Notes           string             `json:"notes"`
	ComponentID     *uint              `json:"component_id"`
	SubcontractorID *uint              `json:"subcontractor_id"`
	Items           []MrrItemRequest   `json:"items"`
}

type TransitionRequest struct {
	Notes string `json:"notes"`
}

type ApproveRequest struct {
	Action string `json:"action"` // "approve" | "reject"
	Notes  string `json:"notes"`
}

type ForceStatusRequest struct {
	Status models.MrrStatus `json:"status"`
	Notes  string           `json:"notes"`
}

// newReferenceNumber: human readable, unique, e.g. MRR-2026-3F9A21BC.
func newReferenceNumber() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("MRR-%d-%s", time.Now().Year(), short)
}

func buildItems(reqs []MrrItemRequest) ([]models.MrrItem, error) {
	if len(reqs) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "At least one item is required")
	}
	items := make([]models.MrrItem, 0, len(reqs))
	for i, r := range reqs {
		if r.ItemID == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: item_id is required", i+1))
		}
		if r.Quantity <= 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: quantity must be positive", i+1))
		}
		if r.EstimatedUnitCost.IsNegative() {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: estimated_unit_cost cannot be negative", i+1))
		}

		var item models.Item
		if err := database.DB.First(&item, "id = ?", r.ItemID).Error; err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Item %d: item master %d not found", i+1, r.ItemID))
		}

		unit := r.Unit
		if unit == "" {
			unit = item.Unit
		}
		priority := r.Priority
		if priority == "" {
			priority = models.PriorityMedium
		}

		items = append(items, models.MrrItem{
			ItemID:            r.ItemID,
			Quantity:          r.Quantity,
			Unit:              unit,
			Specification:     r.Specification,
			Purpose:           r.Purpose,
			Priority:          priority,
			EstimatedUnitCost: r.EstimatedUnitCost,
		})
	}
	return items, nil
}

// POST /api/mrrs
func CreateMrrHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMrrRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ProjectID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "project_id is required")
		}

		var project models.Project
		if err := database.DB.First(&project, "id = ?", body.ProjectID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Project not found")
		}

		items, err := buildItems(body.Items)
		if err != nil {
			return err
		}

		var requiredBy *time.Time
		if body.RequiredBy != "" {
			d, err := time.Parse("2006-01-02", body.RequiredBy)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "required_by must be 'YYYY-MM-DD'")
			}
			requiredBy = &d
		}

		priority := body.Priority
		if priority == "" {
			priority = models.PriorityMedium
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		req := models.MaterialRequirementRequest{
			ReferenceNumber:    newReferenceNumber(),
			ProjectID:          body.ProjectID,
			RequestedByID:      userID,
			RequestDate:        time.Now(),
			RequiredBy:         requiredBy,
			Priority:           priority,
			Status:             models.MrrDraft,
			Approval:           models.ApprovalPending,
			Notes:              body.Notes,
			ComponentID:        body.ComponentID,
			SubcontractorID:    body.SubcontractorID,
			TotalEstimatedCost: TotalEstimatedCost(items),
			Items:              items,
		}

		if err := database.DB.Create(&req).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create MRR")
		}

		writeMrrAudit(c, &req, models.AuditActionCreate, "Created "+req.ReferenceNumber, nil, req)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"mrr": req})
	}
}

// PUT /api/mrrs/:id — items are replaced wholesale and the total recomputed.
// Only DRAFT requests are editable.
func UpdateMrrHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := loadMrr(c)
		if err != nil {
			return err
		}

		if req.Status != models.MrrDraft {
			return fiber.NewError(fiber.StatusConflict, "Only DRAFT requests can be edited")
		}

		var body CreateMrrRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		items, err := buildItems(body.Items)
		if err != nil {
			return err
		}

		before := *req

		if body.RequiredBy != "" {
			d, err := time.Parse("2006-01-02", body.RequiredBy)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "required_by must be 'YYYY-MM-DD'")
			}
			req.RequiredBy = &d
		}
		if body.Priority != "" {
			req.Priority = body.Priority
		}
		req.Notes = body.Notes
		req.ComponentID = body.ComponentID
		req.SubcontractorID = body.SubcontractorID
		req.TotalEstimatedCost = TotalEstimatedCost(items)

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("mrr_id = ?", req.ID).Delete(&models.MrrItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].MrrID = req.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			req.Items = items
			return tx.Omit("Items").Save(req).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update MRR")
		}

		writeMrrAudit(c, req, models.AuditActionUpdate, "Updated "+req.ReferenceNumber, before, req)

		return c.JSON(fiber.Map{"mrr": req})
	}
}

// GET /api/mrrs?status=APPROVED,PROCESSING&project_id=1&include_items=true
func ListMrrsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.MaterialRequirementRequest{})

		if statusStr := c.Query("status"); statusStr != "" {
			statuses := strings.Split(statusStr, ",")
			for i := range statuses {
				statuses[i] = strings.TrimSpace(statuses[i])
			}
			dbq = dbq.Where("status IN ?", statuses)
		}

		if pid := c.QueryInt("project_id"); pid > 0 {
			dbq = dbq.Where("project_id = ?", pid)
		}

		if c.QueryBool("include_items") {
			dbq = dbq.Preload("Items").Preload("Items.Item")
		}
		if c.QueryBool("include_project") {
			dbq = dbq.Preload("Project")
		}

		var mrrs []models.MaterialRequirementRequest
		if err := dbq.Order("created_at DESC").Find(&mrrs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list MRRs")
		}

		return c.JSON(fiber.Map{"mrrs": mrrs})
	}
}

// GET /api/mrrs/:id — includes the actions admissible for the caller, so
// clients never have to guess at the transition table.
func GetMrrHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := loadMrr(c)
		if err != nil {
			return err
		}

		role, err := auth.CurrentRole(c)
		if err != nil {
			return err
		}

		inventoryReady := false
		if req.Status == models.MrrApproved {
			inventoryReady, err = inventory.InventoryReadyForIssue(req)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not derive inventory status")
			}
		}

		return c.JSON(fiber.Map{
			"mrr":                req,
			"admissible_actions": AdmissibleActions(req.Status, role, inventoryReady),
		})
	}
}

// POST /api/mrrs/:id/submit
func SubmitMrrHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return applyTransition(c, ActionSubmit, "")
	}
}

// POST /api/mrrs/:id/approve — body chooses approve or reject.
func ApproveMrrHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ApproveRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		switch body.Action {
		case "approve":
			return applyTransition(c, ActionApprove, body.Notes)
		case "reject":
			return applyTransition(c, ActionReject, body.Notes)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "action must be 'approve' or 'reject'")
		}
	}
}

// POST /api/mrrs/:id/transition — body {action, notes}; regular actions only.
func TransitionMrrHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Action Action `json:"action"`
			Notes  string `json:"notes"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Action == "" {
			return fiber.NewError(fiber.StatusBadRequest, "action is required")
		}
		return applyTransition(c, body.Action, body.Notes)
	}
}

// POST /api/mrrs/:id/force-status — admin escape hatch. Bypasses the table,
// requires a note, refuses to leave CANCELLED, and is audited under its own
// action so forced moves are always distinguishable.
func ForceStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ForceStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(body.Notes) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "A note explaining the override is required")
		}

		req, err := loadMrr(c)
		if err != nil {
			return err
		}

		if err := ForceNext(req.Status, body.Status); err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}

		before := *req
		req.Status = body.Status
		if err := saveStatusChange(req.ID, before.Status, map[string]any{"status": req.Status}); err != nil {
			return err
		}

		writeMrrAudit(c, req, models.AuditActionForceTransition,
			fmt.Sprintf("Forced %s -> %s: %s", before.Status, req.Status, body.Notes), before, req)

		return c.JSON(fiber.Map{"mrr": req})
	}
}

func loadMrr(c *fiber.Ctx) (*models.MaterialRequirementRequest, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid MRR id")
	}

	var req models.MaterialRequirementRequest
	if err := database.DB.Preload("Items").Preload("Items.Item").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "MRR not found")
	}
	return &req, nil
}

// transitionUpdates is the column set a transition writes. Approve stamps the
// approver, reject only flips the approval flag.
func transitionUpdates(action Action, next models.MrrStatus, userID uint, now time.Time) map[string]any {
	updates := map[string]any{"status": next}
	switch action {
	case ActionApprove:
		updates["approval"] = models.ApprovalApproved
		updates["approved_by_id"] = userID
		updates["approved_at"] = now
	case ActionReject:
		updates["approval"] = models.ApprovalRejected
	}
	return updates
}

// saveStatusChange commits a transition guarded by the status it was decided
// against. If a concurrent request moved the MRR in between, the guard
// matches no row and the stale decision is rejected instead of overwriting
// the newer state.
func saveStatusChange(id uint, decidedFrom models.MrrStatus, updates map[string]any) error {
	res := database.DB.Model(&models.MaterialRequirementRequest{}).
		Where("id = ? AND status = ?", id, decidedFrom).
		Updates(updates)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Could not update MRR status")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusConflict, "MRR status changed concurrently, reload and retry")
	}
	return nil
}

// applyTransition: role gate, table lookup, inventory gate for process, then
// one guarded save plus an audit row. Inadmissible actions fail before any
// write.
func applyTransition(c *fiber.Ctx, action Action, notes string) error {
	if notes == "" {
		var body TransitionRequest
		if len(c.Body()) > 0 {
			_ = c.BodyParser(&body)
		}
		notes = body.Notes
	}

	req, err := loadMrr(c)
	if err != nil {
		return err
	}

	role, err := auth.CurrentRole(c)
	if err != nil {
		return err
	}
	if err := RoleAllowed(action, role); err != nil {
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}

	inventoryReady := false
	if action == ActionProcess {
		inventoryReady, err = inventory.InventoryReadyForIssue(req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not derive inventory status")
		}
	}

	next, err := Next(req.Status, action, inventoryReady)
	if err != nil {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}

	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}

	now := time.Now()
	before := *req
	req.Status = next
	switch action {
	case ActionApprove:
		req.Approval = models.ApprovalApproved
		req.ApprovedByID = &userID
		req.ApprovedAt = &now
	case ActionReject:
		req.Approval = models.ApprovalRejected
	}

	if err := saveStatusChange(req.ID, before.Status, transitionUpdates(action, next, userID, now)); err != nil {
		return err
	}

	desc := fmt.Sprintf("%s: %s -> %s", action, before.Status, req.Status)
	if notes != "" {
		desc += ": " + notes
	}
	writeMrrAudit(c, req, models.AuditActionTransition, desc, before, req)

	return c.JSON(fiber.Map{"mrr": req})
}

func writeMrrAudit(c *fiber.Ctx, req *models.MaterialRequirementRequest, action models.AuditAction, desc string, before, after any) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return
	}
	var user models.User
	database.DB.First(&user, userID)

	if err := audit.WriteLog(audit.LogOptions{
		ProjectID:   &req.ProjectID,
		UserID:      userID,
		UserName:    user.Name,
		EntityType:  "mrr",
		EntityID:    req.ID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	}); err != nil {
		log.Printf("audit write failed for mrr %d: %v", req.ID, err)
	}
}
