package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/ishira-web/expense-tracker/internal/middleware"
	"github.com/ishira-web/expense-tracker/internal/models"
	"github.com/ishira-web/expense-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the visible ledger as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"Date", "Kind", "Category", "Payment Method", "Amount", "Deposit", "Balance", "Recover Amount", "Description"}

func exportRow(e *models.Expense) []string {
	kind := "Expense"
	if e.IsDeposit() {
		kind = "Deposit"
	}
	return []string{
		e.Date.Format("2006-01-02"),
		kind,
		e.Category,
		e.PaymentMethod,
		formatCentToAmount(e.AmountCent),
		formatCentToAmount(e.DepositCent),
		formatCentToAmount(e.BalanceCent),
		formatCentToAmount(e.RecoverAmountCent),
		e.Description,
	}
}

func (h *ExportHandler) visibleExpenses(c *gin.Context) ([]models.Expense, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}

	q := visibleScope(c, user, h.DB.Model(&models.Expense{}))

	var rows []models.Expense
	if err := q.Order("date DESC, id DESC").Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load expenses")
		return nil, false
	}
	return rows, true
}

// ExportCSV exports the visible ledger rows as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.visibleExpenses(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range rows {
		writer.Write(exportRow(&rows[i]))
	}
}

// ExportXLSX exports the visible ledger rows as an Excel workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.visibleExpenses(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Expenses"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)

	for i, head := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, head)
	}

	for idx := range rows {
		row := idx + 2
		for col, val := range exportRow(&rows[idx]) {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "D", 14)
	f.SetColWidth(sheetName, "E", "H", 12)
	f.SetColWidth(sheetName, "I", "I", 32)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to export workbook")
	}
}
