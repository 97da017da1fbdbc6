package inventory

import (
	"fmt"
	"time"

	"construction-backend/internal/database"
	"construction-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/inventory/export?project_id=
// Inventory register as an .xlsx download.
func ExportMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Material{}).Preload("Item").Preload("Warehouse")
		if pid := c.QueryInt("project_id"); pid > 0 {
			dbq = dbq.Where("project_id = ?", pid)
		}

		var materials []models.Material
		if err := dbq.Order("name ASC").Find(&materials).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not read materials")
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Inventory"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"ID", "Name", "Category", "Unit", "Warehouse", "Stock", "Reorder Point", "Min Level", "Max Level", "Cost/Unit", "Tier"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, m := range materials {
			category, unit := "", ""
			if m.Item != nil {
				category = m.Item.Category
				unit = m.Item.Unit
			}
			cost, _ := m.CostPerUnit.Float64()
			values := []any{
				m.ID, m.Name, category, unit, m.Warehouse.Name,
				m.StockQty, m.ReorderPoint, m.MinimumStockLevel, m.MaximumStockLevel,
				cost, string(m.Tier()),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build export file")
		}

		filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		return c.Send(buf.Bytes())
	}
}
