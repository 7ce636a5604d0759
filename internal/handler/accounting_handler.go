package handler

import (
	"time"

	"shopledger/internal/repository"
	"shopledger/internal/service"
	"shopledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type AccountingHandler struct {
	reports    *service.ReportService
	outboxRepo *repository.OutboxRepository
}

func NewAccountingHandler(reports *service.ReportService, outboxRepo *repository.OutboxRepository) *AccountingHandler {
	return &AccountingHandler{reports: reports, outboxRepo: outboxRepo}
}

func (h *AccountingHandler) Ledger(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	page, err := h.reports.GetLedger(c.Request.Context(), shopID, from, to, offset, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, page)
}

func (h *AccountingHandler) CashBook(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	report, err := h.reports.GetCashBook(c.Request.Context(), shopID, from, to)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, report)
}

func (h *AccountingHandler) GSTSummary(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	summary, err := h.reports.GetGSTSummary(c.Request.Context(), shopID, from, to)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, summary)
}

func (h *AccountingHandler) DailySales(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, date.Location())
		if err != nil {
			response.FailKind(c, response.KindValidation, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	report, err := h.reports.GetDailySales(c.Request.Context(), shopID, date)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, report)
}

func (h *AccountingHandler) ProfitAndLoss(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	from, to, ok := dateRange(c)
	if !ok {
		return
	}

	report, err := h.reports.GetProfitAndLoss(c.Request.Context(), shopID, from, to)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, report)
}

func (h *AccountingHandler) ListKhata(c *gin.Context) {
	_, shopID, ok := shopScope(c)
	if !ok {
		return
	}

	accounts, err := h.reports.ListKhataAccounts(c.Request.Context(), shopID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, accounts)
}

func (h *AccountingHandler) KhataStatement(c *gin.Context) {
	actor, shopID, ok := shopScope(c)
	if !ok {
		return
	}
	customerID, ok := pathInt64(c, "customer_id")
	if !ok {
		return
	}

	statement, err := h.reports.GetKhataStatement(c.Request.Context(), actor, shopID, customerID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, statement)
}

// FailedOutbox lists accounting events that exhausted their publish
// retries and need manual attention.
func (h *AccountingHandler) FailedOutbox(c *gin.Context) {
	messages, err := h.outboxRepo.GetFailedMessages(c.Request.Context(), 100)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, messages)
}
