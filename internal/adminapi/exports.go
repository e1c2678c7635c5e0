package adminapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

func registerExportRoutes() {
	webserver.ApiGET("/exports/sales.xlsx", exportSalesXlsx)
	webserver.ApiGET("/exports/sales.csv", exportSalesCsv)
	webserver.ApiGET("/exports/attendance.csv", exportAttendanceCsv)
	webserver.ApiGET("/exports/inventory.xlsx", exportInventoryXlsx)
}

func filterSalesByDate(sales []domain.Sale, date string) []domain.Sale {
	if date == "" {
		return sales
	}
	filtered := sales[:0]
	for _, s := range sales {
		if s.Date == date {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func exportSalesXlsx(c echo.Context) error {
	sales, err := GetStore(c).Sales()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load sales", err.Error())
	}
	sales = filterSalesByDate(sales, c.QueryParam("date"))

	xlsx := excelize.NewFile()
	const sheet = "Sheet1"
	headers := []string{"ID", "Date", "Time", "Worker", "Items", "Discount", "Total"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for row, s := range sales {
		r := row + 2
		discount := 0.0
		if s.Discount != nil {
			discount = s.Discount.Amount
		}
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", r), s.ID)
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", r), s.Date)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", r), s.Time)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", r), s.WorkerName)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", r), len(s.Items))
		xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", r), discount)
		xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", r), s.Total)
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render workbook", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

type saleCsvRow struct {
	ID       string  `csv:"id"`
	Date     string  `csv:"date"`
	Time     string  `csv:"time"`
	Worker   string  `csv:"worker"`
	Items    int     `csv:"items"`
	Discount float64 `csv:"discount"`
	Total    float64 `csv:"total"`
}

func exportSalesCsv(c echo.Context) error {
	sales, err := GetStore(c).Sales()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load sales", err.Error())
	}
	sales = filterSalesByDate(sales, c.QueryParam("date"))

	rows := make([]saleCsvRow, 0, len(sales))
	for _, s := range sales {
		discount := 0.0
		if s.Discount != nil {
			discount = s.Discount.Amount
		}
		rows = append(rows, saleCsvRow{
			ID:       s.ID,
			Date:     s.Date,
			Time:     s.Time,
			Worker:   s.WorkerName,
			Items:    len(s.Items),
			Discount: discount,
			Total:    s.Total,
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render csv", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sales.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

type attendanceCsvRow struct {
	ID          string  `csv:"id"`
	Date        string  `csv:"date"`
	Worker      string  `csv:"worker"`
	Type        string  `csv:"type"`
	Shift       string  `csv:"shift"`
	CheckIn     string  `csv:"check_in"`
	CheckOut    string  `csv:"check_out"`
	HoursWorked float64 `csv:"hours_worked"`
}

func exportAttendanceCsv(c echo.Context) error {
	attendance, err := GetStore(c).Attendance()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load attendance", err.Error())
	}
	if date := c.QueryParam("date"); date != "" {
		filtered := attendance[:0]
		for _, a := range attendance {
			if a.Date == date {
				filtered = append(filtered, a)
			}
		}
		attendance = filtered
	}

	rows := make([]attendanceCsvRow, 0, len(attendance))
	for _, a := range attendance {
		rows = append(rows, attendanceCsvRow{
			ID:          a.ID,
			Date:        a.Date,
			Worker:      a.WorkerName,
			Type:        a.Type,
			Shift:       a.Shift,
			CheckIn:     a.CheckIn,
			CheckOut:    a.CheckOut,
			HoursWorked: a.HoursWorked,
		})
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render csv", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="attendance.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

func exportInventoryXlsx(c echo.Context) error {
	inventory, err := GetStore(c).Inventory()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load inventory", err.Error())
	}

	xlsx := excelize.NewFile()
	const sheet = "Sheet1"
	headers := []string{"ID", "Name", "Unit", "Quantity", "Cost per unit", "Sell price"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}
	for row, it := range inventory {
		r := row + 2
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", r), it.ID)
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", r), it.Name)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", r), it.Unit)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", r), it.Quantity)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", r), it.CostPerUnit)
		xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", r), it.SellPrice)
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render workbook", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="inventory.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
