package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ishira-web/expense-tracker/internal/middleware"
	"github.com/ishira-web/expense-tracker/internal/models"
	"github.com/ishira-web/expense-tracker/internal/upload"
	"github.com/ishira-web/expense-tracker/internal/util"
	"github.com/ishira-web/expense-tracker/internal/wallet"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExpenseHandler serves the ledger API: deposits, expenses, listing.
type ExpenseHandler struct {
	DB      *gorm.DB
	Wallet  *wallet.Service
	Uploads *upload.Store
}

func NewExpenseHandler(db *gorm.DB, svc *wallet.Service, uploads *upload.Store) *ExpenseHandler {
	return &ExpenseHandler{
		DB:      db,
		Wallet:  svc,
		Uploads: uploads,
	}
}

// walletError maps wallet sentinel errors onto the API envelope.
func walletError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wallet.ErrValidation):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, wallet.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "operation failed, please retry")
	}
}

// ---------- responses ----------

type expenseResp struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	UserName      string    `json:"user_name,omitempty"`
	UserEmail     string    `json:"user_email,omitempty"`
	Date          time.Time `json:"date"`
	AmountCent    int64     `json:"amount_cent"`
	Amount        string    `json:"amount"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"payment_method"`
	BalanceCent   int64     `json:"balance_cent"`
	Balance       string    `json:"balance"`
	DepositCent   int64     `json:"deposit_cent"`
	Deposit       string    `json:"deposit"`
	RecoverCent   int64     `json:"recover_amount_cent"`
	Recover       string    `json:"recover_amount"`
	Proof         string    `json:"proof,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toExpenseResp(e *models.Expense) expenseResp {
	return expenseResp{
		ID:            e.ID,
		UserID:        e.UserID,
		UserName:      e.User.Name,
		UserEmail:     e.User.Email,
		Date:          e.Date,
		AmountCent:    e.AmountCent,
		Amount:        formatCentToAmount(e.AmountCent),
		Description:   e.Description,
		Category:      e.Category,
		PaymentMethod: e.PaymentMethod,
		BalanceCent:   e.BalanceCent,
		Balance:       formatCentToAmount(e.BalanceCent),
		DepositCent:   e.DepositCent,
		Deposit:       formatCentToAmount(e.DepositCent),
		RecoverCent:   e.RecoverAmountCent,
		Recover:       formatCentToAmount(e.RecoverAmountCent),
		Proof:         e.Proof,
		CreatedAt:     e.CreatedAt,
	}
}

// ---------- deposit ----------

type depositReq struct {
	UserID uint   `json:"user_id" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Deposit credits a user's wallet (hr/admin/superadmin only, enforced by the
// route group).
func (h *ExpenseHandler) Deposit(c *gin.Context) {
	var req depositReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "valid user_id and amount are required")
		return
	}

	amountCent, err := convertAmountToCent(req.Amount)
	if err != nil || amountCent <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "valid user_id and positive amount are required")
		return
	}

	record, user, err := h.Wallet.Deposit(req.UserID, amountCent)
	if err != nil {
		walletError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message":         "deposit successful",
		"wallet_balance":  formatCentToAmount(user.WalletBalanceCent),
		"total_deposited": formatCentToAmount(user.TotalDepositedCent),
		"record":          toExpenseResp(record),
	})
}

// ---------- create ----------

// CreateExpense records a new expense for the current user. The request is
// multipart so a proof image can ride along; all other fields are form values.
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	dateStr := c.PostForm("date")
	amountStr := c.PostForm("amount")
	description := strings.TrimSpace(c.PostForm("description"))
	category := strings.TrimSpace(c.PostForm("category"))
	paymentMethod := strings.TrimSpace(c.PostForm("payment_method"))

	if dateStr == "" || amountStr == "" || description == "" || category == "" || paymentMethod == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "all fields are required")
		return
	}

	if err := util.ValidateDate(dateStr); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
		return
	}
	date, _ := time.Parse("2006-01-02", dateStr)

	amountCent, err := convertAmountToCent(amountStr)
	if err != nil || amountCent <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "a valid positive amount is required")
		return
	}

	// optional proof image
	var proof string
	if file, err := c.FormFile("proof"); err == nil && file != nil {
		proof, err = h.Uploads.Save(c, file)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to store proof file")
			return
		}
	}

	record, err := h.Wallet.CreateExpense(user.ID, wallet.ExpenseInput{
		Date:          date,
		AmountCent:    amountCent,
		Description:   description,
		Category:      category,
		PaymentMethod: paymentMethod,
		Proof:         proof,
	})
	if err != nil {
		walletError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "expense created successfully",
		"expense": toExpenseResp(record),
	})
}

// ---------- update ----------

type updateExpenseReq struct {
	Date          *string `json:"date"`
	Amount        *string `json:"amount"`
	Description   *string `json:"description"`
	Category      *string `json:"category"`
	PaymentMethod *string `json:"payment_method"`
}

// UpdateExpense patches a ledger row; deposit-row amount changes adjust the
// owner's wallet through the wallet service.
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid expense id")
		return
	}

	var req updateExpenseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var patch wallet.ExpensePatch
	if req.Amount != nil {
		amountCent, err := convertAmountToCent(*req.Amount)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
			return
		}
		patch.AmountCent = &amountCent
	}
	if req.Date != nil {
		if err := util.ValidateDate(*req.Date); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "date must be YYYY-MM-DD")
			return
		}
		date, _ := time.Parse("2006-01-02", *req.Date)
		patch.Date = &date
	}
	if req.Description != nil {
		patch.Description = req.Description
	}
	if req.Category != nil {
		if err := util.ValidateCategory(*req.Category); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		patch.Category = req.Category
	}
	if req.PaymentMethod != nil {
		if err := util.ValidatePaymentMethod(*req.PaymentMethod); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		patch.PaymentMethod = req.PaymentMethod
	}

	record, err := h.Wallet.UpdateExpense(uint(id), patch)
	if err != nil {
		walletError(c, err)
		return
	}

	util.Success(c, util.Response{
		"expense": toExpenseResp(record),
	})
}

// ---------- delete ----------

// DeleteExpense removes a ledger row (admin/superadmin only, enforced by the
// route group). Deposit rows are reversed by the wallet service.
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid expense id")
		return
	}

	if err := h.Wallet.DeleteExpense(uint(id)); err != nil {
		walletError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "expense deleted successfully",
	})
}

// ---------- list ----------

// visibleScope narrows a query to what the current user may see: plain users
// see their own rows, staff may filter by user_id.
func visibleScope(c *gin.Context, user *models.User, q *gorm.DB) *gorm.DB {
	if user.Role == models.RoleUser {
		return q.Where("user_id = ?", user.ID)
	}
	if idStr := strings.TrimSpace(c.Query("user_id")); idStr != "" {
		if id, err := strconv.Atoi(idStr); err == nil && id > 0 {
			return q.Where("user_id = ?", id)
		}
	}
	return q
}

// ListExpenses returns the visible ledger rows with date-range, kind and
// category filters, pagination and a summary block.
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.Expense{})
	base = visibleScope(c, user, base)

	// date range: start / end, YYYY-MM-DD
	if startStr := c.Query("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "start must be YYYY-MM-DD")
			return
		}
		base = base.Where("date >= ?", start)
	}
	if endStr := c.Query("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "end must be YYYY-MM-DD")
			return
		}
		// end date is inclusive
		base = base.Where("date < ?", end.Add(24*time.Hour))
	}

	// kind: expense / deposit
	switch c.Query("kind") {
	case "deposit":
		base = base.Where("deposit_cent > 0")
	case "expense":
		base = base.Where("deposit_cent = 0")
	}

	if category := c.Query("category"); category != "" {
		base = base.Where("category = ?", category)
	}

	sortKey := c.DefaultQuery("sort", "date_desc")
	orderBy := "date DESC, id DESC"
	switch sortKey {
	case "date_asc":
		orderBy = "date ASC, id ASC"
	case "amount_desc":
		orderBy = "amount_cent DESC, id DESC"
	case "amount_asc":
		orderBy = "amount_cent ASC, id ASC"
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list expenses")
		return
	}

	var rows []models.Expense
	if err := base.Session(&gorm.Session{}).
		Preload("User").
		Order(orderBy).
		Limit(size).
		Offset(offset).
		Find(&rows).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list expenses")
		return
	}

	items := make([]expenseResp, 0, len(rows))
	for i := range rows {
		items = append(items, toExpenseResp(&rows[i]))
	}

	// summary over the same filter set
	var all []models.Expense
	if err := base.Session(&gorm.Session{}).Find(&all).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to summarize expenses")
		return
	}

	var expenseCent, depositCent, recoverCent int64
	for i := range all {
		e := &all[i]
		if e.IsDeposit() {
			depositCent += e.DepositCent
		} else {
			expenseCent += e.AmountCent
		}
		recoverCent += e.RecoverAmountCent
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
		"summary": gin.H{
			"total_expense_cent": expenseCent,
			"total_expense":      formatCentToAmount(expenseCent),
			"total_deposit_cent": depositCent,
			"total_deposit":      formatCentToAmount(depositCent),
			"total_recover_cent": recoverCent,
			"total_recover":      formatCentToAmount(recoverCent),
		},
	})
}
