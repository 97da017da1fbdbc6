package project

import (
	"strings"
	"time"

	"construction-backend/internal/database"
	"construction-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProjectRequest struct {
	Name               string               `json:"name"`
	Code               string               `json:"code"`
	Location           string               `json:"location"`
	Status             models.ProjectStatus `json:"status"`
	StartDate          string               `json:"start_date"`
	EndDate            string               `json:"end_date"`
	DefaultWarehouseID *uint                `json:"default_warehouse_id"`
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Dates must be 'YYYY-MM-DD'")
	}
	return &d, nil
}

// POST /api/projects
func CreateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Code = strings.TrimSpace(strings.ToUpper(body.Code))
		if body.Name == "" || body.Code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name and code are required")
		}

		start, err := parseDate(body.StartDate)
		if err != nil {
			return err
		}
		end, err := parseDate(body.EndDate)
		if err != nil {
			return err
		}

		status := body.Status
		if status == "" {
			status = models.ProjectActive
		}

		project := models.Project{
			Name:               body.Name,
			Code:               body.Code,
			Location:           body.Location,
			Status:             status,
			StartDate:          start,
			EndDate:            end,
			DefaultWarehouseID: body.DefaultWarehouseID,
		}

		if err := database.DB.Create(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Could not create project (duplicate code?)")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": project})
	}
}

// GET /api/projects
func ListProjectsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Project{})
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var projects []models.Project
		if err := dbq.Order("name ASC").Find(&projects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list projects")
		}
		return c.JSON(fiber.Map{"projects": projects})
	}
}

// GET /api/projects/:id
func GetProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid project id")
		}

		var project models.Project
		if err := database.DB.First(&project, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Project not found")
		}
		return c.JSON(fiber.Map{"project": project})
	}
}

// PUT /api/projects/:id
func UpdateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid project id")
		}

		var project models.Project
		if err := database.DB.First(&project, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Project not found")
		}

		var body ProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if name := strings.TrimSpace(body.Name); name != "" {
			project.Name = name
		}
		if body.Location != "" {
			project.Location = body.Location
		}
		if body.Status != "" {
			project.Status = body.Status
		}
		if body.DefaultWarehouseID != nil {
			project.DefaultWarehouseID = body.DefaultWarehouseID
		}
		if start, err := parseDate(body.StartDate); err != nil {
			return err
		} else if start != nil {
			project.StartDate = start
		}
		if end, err := parseDate(body.EndDate); err != nil {
			return err
		} else if end != nil {
			project.EndDate = end
		}

		if err := database.DB.Save(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update project")
		}
		return c.JSON(fiber.Map{"project": project})
	}
}
