package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"shopledger/internal/auth"
	"shopledger/internal/model"
	"shopledger/internal/repository"
	"shopledger/pkg/response"

	"github.com/shopspring/decimal"
)

// ReportService reads the books: daily sales, profit and loss, cash
// book, GST summary and khata statements. Reports never mutate state.
type ReportService struct {
	orderRepo      *repository.OrderRepository
	accountingRepo *repository.AccountingRepository
	productRepo    *repository.ProductRepository
}

func NewReportService(orderRepo *repository.OrderRepository, accountingRepo *repository.AccountingRepository, productRepo *repository.ProductRepository) *ReportService {
	return &ReportService{
		orderRepo:      orderRepo,
		accountingRepo: accountingRepo,
		productRepo:    productRepo,
	}
}

type ProductSales struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type DailySalesReport struct {
	Date          string          `json:"date"`
	OrderCount    int             `json:"order_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	CashRevenue   decimal.Decimal `json:"cash_revenue"`
	CreditRevenue decimal.Decimal `json:"credit_revenue"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	TopProducts   []ProductSales  `json:"top_products"`
}

// GetDailySales reports delivered orders for one calendar day.
func (s *ReportService) GetDailySales(ctx context.Context, shopID int64, date time.Time) (*DailySalesReport, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	orders, err := s.orderRepo.ListDeliveredBetween(ctx, shopID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	cashRevenue := decimal.Zero
	creditRevenue := decimal.Zero
	tax := decimal.Zero
	byProduct := make(map[int64]*ProductSales)
	for _, order := range orders {
		revenue = revenue.Add(order.TotalAmount)
		if order.IsCreditSale {
			creditRevenue = creditRevenue.Add(order.TotalAmount)
		} else {
			cashRevenue = cashRevenue.Add(order.TotalAmount)
		}
		tax = tax.Add(order.TaxAmount)
		for _, item := range order.Items {
			ps, ok := byProduct[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName}
				byProduct[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.LineTotal)
		}
	}

	top := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		top = append(top, *ps)
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Revenue.GreaterThan(top[j].Revenue) })
	if len(top) > 10 {
		top = top[:10]
	}

	return &DailySalesReport{
		Date:          dayStart.Format("2006-01-02"),
		OrderCount:    len(orders),
		Revenue:       revenue,
		CashRevenue:   cashRevenue,
		CreditRevenue: creditRevenue,
		TaxTotal:      tax,
		TopProducts:   top,
	}, nil
}

type ProfitAndLossReport struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	Revenue       decimal.Decimal `json:"revenue"`
	CostOfGoods   decimal.Decimal `json:"cost_of_goods"`
	DiscountGiven decimal.Decimal `json:"discount_given"`
	TaxCollected  decimal.Decimal `json:"tax_collected"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
}

// GetProfitAndLoss computes gross profit over [from, to): delivered
// revenue net of tax, minus cost of goods at the catalog cost price,
// minus discounts given.
func (s *ReportService) GetProfitAndLoss(ctx context.Context, shopID int64, from, to time.Time) (*ProfitAndLossReport, error) {
	orders, err := s.orderRepo.ListDeliveredBetween(ctx, shopID, from, to)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	cogs := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero
	costCache := make(map[int64]decimal.Decimal)

	for _, order := range orders {
		revenue = revenue.Add(order.Subtotal)
		discount = discount.Add(order.DiscountAmount)
		tax = tax.Add(order.TaxAmount)
		for _, item := range order.Items {
			cost, ok := costCache[item.ProductID]
			if !ok {
				product, err := s.productRepo.GetByID(ctx, nil, shopID, item.ProductID)
				if err != nil {
					if errors.Is(err, repository.ErrProductNotFound) {
						continue
					}
					return nil, err
				}
				cost = product.CostPrice
				costCache[item.ProductID] = cost
			}
			cogs = cogs.Add(cost.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	return &ProfitAndLossReport{
		From:          from.Format("2006-01-02"),
		To:            to.Format("2006-01-02"),
		Revenue:       revenue,
		CostOfGoods:   cogs,
		DiscountGiven: discount,
		TaxCollected:  tax,
		GrossProfit:   revenue.Sub(cogs).Sub(discount),
	}, nil
}

type CashBookReport struct {
	OpeningBalance decimal.Decimal   `json:"opening_balance"`
	Entries        []*model.CashBook `json:"entries"`
	TotalIn        decimal.Decimal   `json:"total_in"`
	TotalOut       decimal.Decimal   `json:"total_out"`
	ClosingBalance decimal.Decimal   `json:"closing_balance"`
}

// GetCashBook lists cash movements in [from, to) with running opening
// and closing balances.
func (s *ReportService) GetCashBook(ctx context.Context, shopID int64, from, to time.Time) (*CashBookReport, error) {
	opening, err := s.accountingRepo.CashBalanceBefore(ctx, shopID, from)
	if err != nil {
		return nil, err
	}
	entries, err := s.accountingRepo.ListCashBookEntries(ctx, shopID, from, to)
	if err != nil {
		return nil, err
	}

	totalIn := decimal.Zero
	totalOut := decimal.Zero
	for _, entry := range entries {
		if entry.EntryType == model.CashEntryIn {
			totalIn = totalIn.Add(entry.Amount)
		} else {
			totalOut = totalOut.Add(entry.Amount)
		}
	}

	return &CashBookReport{
		OpeningBalance: opening,
		Entries:        entries,
		TotalIn:        totalIn,
		TotalOut:       totalOut,
		ClosingBalance: opening.Add(totalIn).Sub(totalOut),
	}, nil
}

type GSTSummary struct {
	From         string             `json:"from"`
	To           string             `json:"to"`
	TaxableTotal decimal.Decimal    `json:"taxable_total"`
	CGSTTotal    decimal.Decimal    `json:"cgst_total"`
	SGSTTotal    decimal.Decimal    `json:"sgst_total"`
	IGSTTotal    decimal.Decimal    `json:"igst_total"`
	Records      []*model.GSTRecord `json:"records"`
}

func (s *ReportService) GetGSTSummary(ctx context.Context, shopID int64, from, to time.Time) (*GSTSummary, error) {
	records, err := s.accountingRepo.ListGSTRecords(ctx, shopID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &GSTSummary{
		From:    from.Format("2006-01-02"),
		To:      to.Format("2006-01-02"),
		Records: records,
	}
	for _, record := range records {
		summary.TaxableTotal = summary.TaxableTotal.Add(record.TaxableAmount)
		summary.CGSTTotal = summary.CGSTTotal.Add(record.CGSTAmount)
		summary.SGSTTotal = summary.SGSTTotal.Add(record.SGSTAmount)
		summary.IGSTTotal = summary.IGSTTotal.Add(record.IGSTAmount)
	}
	return summary, nil
}

type LedgerPage struct {
	Entries []*model.LedgerEntry `json:"entries"`
	Total   int64                `json:"total"`
}

func (s *ReportService) GetLedger(ctx context.Context, shopID int64, from, to time.Time, offset, limit int) (*LedgerPage, error) {
	entries, total, err := s.accountingRepo.ListLedgerEntries(ctx, shopID, from, to, offset, limit)
	if err != nil {
		return nil, err
	}
	return &LedgerPage{Entries: entries, Total: total}, nil
}

type KhataStatement struct {
	Account      *model.KhataAccount `json:"account"`
	CreditOrders []*model.Order      `json:"credit_orders"`
}

// GetKhataStatement returns a customer's running credit account.
// Customers may only read their own khata. A customer with no credit
// history gets a zero-balance statement rather than an error.
func (s *ReportService) GetKhataStatement(ctx context.Context, actor auth.Actor, shopID, customerID int64) (*KhataStatement, error) {
	if actor.Role == model.RoleCustomer && actor.UserID != customerID {
		return nil, response.Forbidden("customers can only view their own khata")
	}

	account, err := s.accountingRepo.GetKhataAccount(ctx, shopID, customerID)
	if err != nil {
		if !errors.Is(err, repository.ErrKhataNotFound) {
			return nil, err
		}
		account = &model.KhataAccount{
			ShopID:      shopID,
			CustomerID:  customerID,
			Balance:     decimal.Zero,
			CreditLimit: decimal.NewFromInt(10000),
		}
	}

	orders, _, err := s.orderRepo.ListByCustomer(ctx, shopID, customerID, 0, 100)
	if err != nil {
		return nil, err
	}
	creditOrders := make([]*model.Order, 0)
	for _, order := range orders {
		if order.IsCreditSale && order.OrderStatus == model.OrderStatusDelivered {
			creditOrders = append(creditOrders, order)
		}
	}

	return &KhataStatement{Account: account, CreditOrders: creditOrders}, nil
}

func (s *ReportService) ListKhataAccounts(ctx context.Context, shopID int64) ([]*model.KhataAccount, error) {
	return s.accountingRepo.ListKhataAccounts(ctx, shopID)
}
