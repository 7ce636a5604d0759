package service

import (
	"context"
	"testing"

	"shopledger/internal/model"

	"github.com/shopspring/decimal"
)

// deliveredOrder places an order and walks it to DELIVERED so the
// accounting side effects exist.
func deliveredOrder(t *testing.T, f *fixture, in CreateOrderInput) *model.Order {
	t.Helper()
	ctx := context.Background()
	actor := f.ownerActor()

	order := placeOrder(t, f, in)
	for _, status := range []string{
		model.OrderStatusAccepted,
		model.OrderStatusPacked,
		model.OrderStatusOutForDelivery,
		model.OrderStatusDelivered,
	} {
		if _, err := f.orders.UpdateStatus(ctx, actor, f.shop.ID, order.ID, status); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}
	final, err := f.orders.GetOrder(ctx, actor, f.shop.ID, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	return final
}

func TestCashSalePosting(t *testing.T) {
	f := seedShop(t)

	order := deliveredOrder(t, f, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: f.chai.ID, Quantity: 2}},
	})

	var entry model.LedgerEntry
	if err := f.db.Where("reference_type = ? AND reference_id = ?", model.ReferenceTypeOrder, order.ID).
		First(&entry).Error; err != nil {
		t.Fatalf("ledger entry missing: %v", err)
	}
	if entry.DebitAccount != model.AccountCash {
		t.Errorf("debit account = %q, want Cash", entry.DebitAccount)
	}
	if entry.CreditAccount != model.AccountSales {
		t.Errorf("credit account = %q, want Sales", entry.CreditAccount)
	}
	if !entry.DebitAmount.Equal(entry.CreditAmount) {
		t.Errorf("debit %s != credit %s", entry.DebitAmount, entry.CreditAmount)
	}
	if !entry.DebitAmount.Equal(order.TotalAmount) {
		t.Errorf("posted amount = %s, want %s", entry.DebitAmount, order.TotalAmount)
	}

	var cash model.CashBook
	if err := f.db.Where("order_id = ?", order.ID).First(&cash).Error; err != nil {
		t.Fatalf("cash book entry missing: %v", err)
	}
	if cash.EntryType != model.CashEntryIn {
		t.Errorf("cash entry type = %q, want IN", cash.EntryType)
	}
	if !cash.Amount.Equal(order.TotalAmount) {
		t.Errorf("cash amount = %s, want %s", cash.Amount, order.TotalAmount)
	}

	var outbox model.OutboxMessage
	if err := f.db.Where("event_type = ?", model.EventAccountingPosted).First(&outbox).Error; err != nil {
		t.Fatalf("outbox message missing: %v", err)
	}
	if outbox.Status != model.OutboxStatusPending {
		t.Errorf("outbox status = %q, want PENDING", outbox.Status)
	}
	if outbox.CorrelationID != order.OrderNumber {
		t.Errorf("correlation id = %q, want %q", outbox.CorrelationID, order.OrderNumber)
	}
}

func TestCreditSalePostsToKhata(t *testing.T) {
	f := seedShop(t)

	order := deliveredOrder(t, f, CreateOrderInput{
		CustomerID:   &f.customer.ID,
		IsCreditSale: true,
		Items:        []OrderItemInput{{ProductID: f.chai.ID, Quantity: 2}},
	})

	var entry model.LedgerEntry
	if err := f.db.Where("reference_type = ? AND reference_id = ?", model.ReferenceTypeOrder, order.ID).
		First(&entry).Error; err != nil {
		t.Fatalf("ledger entry missing: %v", err)
	}
	if entry.DebitAccount != model.AccountDebtors {
		t.Errorf("debit account = %q, want Debtors", entry.DebitAccount)
	}

	var khata model.KhataAccount
	if err := f.db.Where("shop_id = ? AND customer_id = ?", f.shop.ID, f.customer.ID).
		First(&khata).Error; err != nil {
		t.Fatalf("khata account missing: %v", err)
	}
	if !khata.Balance.Equal(order.TotalAmount) {
		t.Errorf("khata balance = %s, want %s", khata.Balance, order.TotalAmount)
	}
	if !khata.CreditLimit.Equal(mustDecimal(t, "10000")) {
		t.Errorf("credit limit = %s, want 10000", khata.CreditLimit)
	}

	// no cash changed hands
	var cashRows int64
	f.db.Model(&model.CashBook{}).Where("order_id = ?", order.ID).Count(&cashRows)
	if cashRows != 0 {
		t.Errorf("cash book rows = %d, want 0 for credit sale", cashRows)
	}
}

func TestGSTRecordSplit(t *testing.T) {
	f := seedShop(t)

	// 2 * 100 at 5% GST: taxable 200, GST 10, CGST = SGST = 5
	order := deliveredOrder(t, f, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: f.chai.ID, Quantity: 2}},
	})

	var record model.GSTRecord
	if err := f.db.Where("order_id = ?", order.ID).First(&record).Error; err != nil {
		t.Fatalf("gst record missing: %v", err)
	}
	if !record.TaxableAmount.Equal(mustDecimal(t, "200")) {
		t.Errorf("taxable = %s, want 200", record.TaxableAmount)
	}
	if !record.GSTRate.Equal(mustDecimal(t, "5")) {
		t.Errorf("rate = %s, want 5", record.GSTRate)
	}
	if !record.CGSTAmount.Equal(mustDecimal(t, "5")) || !record.SGSTAmount.Equal(mustDecimal(t, "5")) {
		t.Errorf("CGST/SGST = %s/%s, want 5/5", record.CGSTAmount, record.SGSTAmount)
	}
	if !record.IGSTAmount.IsZero() {
		t.Errorf("IGST = %s, want 0", record.IGSTAmount)
	}
	if !record.CGSTAmount.Add(record.SGSTAmount).Equal(record.GSTAmount) {
		t.Errorf("CGST+SGST = %s, want %s", record.CGSTAmount.Add(record.SGSTAmount), record.GSTAmount)
	}
}

func TestZeroRatedSaleEntersGSTRegister(t *testing.T) {
	f := seedShop(t)

	salt := &model.Product{
		ShopID: f.shop.ID, SKU: "SALT-1KG", Name: "Salt 1kg",
		CostPrice:    decimal.NewFromInt(18),
		SellingPrice: decimal.NewFromInt(25),
		MRP:          decimal.NewFromInt(26),
		GSTRate:      decimal.Zero,
		IsActive:     true, ReorderQuantity: 20,
	}
	if err := f.db.Create(salt).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	inv := &model.Inventory{
		ShopID: f.shop.ID, ProductID: salt.ID, Quantity: 10, MinQuantity: 2,
		CostPrice: salt.CostPrice, SellingPrice: salt.SellingPrice,
	}
	if err := f.db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create inventory: %v", err)
	}

	order := deliveredOrder(t, f, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: salt.ID, Quantity: 2}},
	})

	// zero-rated sales still get a register row
	var record model.GSTRecord
	if err := f.db.Where("order_id = ?", order.ID).First(&record).Error; err != nil {
		t.Fatalf("gst record missing for zero-rated sale: %v", err)
	}
	if !record.TaxableAmount.Equal(mustDecimal(t, "50")) {
		t.Errorf("taxable = %s, want 50", record.TaxableAmount)
	}
	if !record.GSTRate.IsZero() || !record.GSTAmount.IsZero() {
		t.Errorf("rate/amount = %s/%s, want 0/0", record.GSTRate, record.GSTAmount)
	}
	if !record.CGSTAmount.IsZero() || !record.SGSTAmount.IsZero() {
		t.Errorf("CGST/SGST = %s/%s, want 0/0", record.CGSTAmount, record.SGSTAmount)
	}
	if record.InvoiceNumber == "" {
		t.Error("invoice number empty")
	}
}

func TestProcessDeliveryIdempotent(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	order := deliveredOrder(t, f, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: f.chai.ID, Quantity: 1}},
	})

	// a replayed delivery event must not double-post
	if err := f.accounts.ProcessDelivery(ctx, order, f.owner.ID); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	var entries, gst, cash int64
	f.db.Model(&model.LedgerEntry{}).Count(&entries)
	f.db.Model(&model.GSTRecord{}).Count(&gst)
	f.db.Model(&model.CashBook{}).Count(&cash)
	if entries != 1 || gst != 1 || cash != 1 {
		t.Errorf("rows after replay = %d/%d/%d ledger/gst/cash, want 1/1/1", entries, gst, cash)
	}
}

func TestReverseDeliveryCashSale(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	order := deliveredOrder(t, f, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: f.chai.ID, Quantity: 2}},
	})

	if err := f.accounts.ReverseDelivery(ctx, order, f.owner.ID); err != nil {
		t.Fatalf("ReverseDelivery failed: %v", err)
	}

	// compensating entry with debit and credit swapped
	var reversal model.LedgerEntry
	if err := f.db.Where("reference_type = ? AND reference_id = ?", model.ReferenceTypeOrderReversal, order.ID).
		First(&reversal).Error; err != nil {
		t.Fatalf("reversal entry missing: %v", err)
	}
	if reversal.DebitAccount != model.AccountSales || reversal.CreditAccount != model.AccountCash {
		t.Errorf("reversal accounts = %s/%s, want Sales/Cash", reversal.DebitAccount, reversal.CreditAccount)
	}
	if !reversal.DebitAmount.Equal(order.TotalAmount) {
		t.Errorf("reversal amount = %s, want %s", reversal.DebitAmount, order.TotalAmount)
	}

	// the original row is never mutated
	var original model.LedgerEntry
	if err := f.db.Where("reference_type = ? AND reference_id = ?", model.ReferenceTypeOrder, order.ID).
		First(&original).Error; err != nil {
		t.Fatalf("original entry missing after reversal: %v", err)
	}

	var gst, cash int64
	f.db.Model(&model.GSTRecord{}).Where("order_id = ?", order.ID).Count(&gst)
	f.db.Model(&model.CashBook{}).Where("order_id = ?", order.ID).Count(&cash)
	if gst != 0 || cash != 0 {
		t.Errorf("gst/cash rows = %d/%d, want 0/0 after reversal", gst, cash)
	}

	var reversed model.OutboxMessage
	if err := f.db.Where("event_type = ?", model.EventAccountingReversed).First(&reversed).Error; err != nil {
		t.Fatalf("reversal outbox message missing: %v", err)
	}
}

func TestReverseDeliveryCreditSale(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	order := deliveredOrder(t, f, CreateOrderInput{
		CustomerID:   &f.customer.ID,
		IsCreditSale: true,
		Items:        []OrderItemInput{{ProductID: f.chai.ID, Quantity: 2}},
	})

	if err := f.accounts.ReverseDelivery(ctx, order, f.owner.ID); err != nil {
		t.Fatalf("ReverseDelivery failed: %v", err)
	}

	var khata model.KhataAccount
	if err := f.db.Where("shop_id = ? AND customer_id = ?", f.shop.ID, f.customer.ID).
		First(&khata).Error; err != nil {
		t.Fatalf("khata account missing: %v", err)
	}
	if !khata.Balance.IsZero() {
		t.Errorf("khata balance = %s, want 0 after reversal", khata.Balance)
	}
	// the cumulative credit counter keeps the cancelled sale
	if !khata.TotalCreditGiven.Equal(order.TotalAmount) {
		t.Errorf("total credit given = %s, want %s after reversal", khata.TotalCreditGiven, order.TotalAmount)
	}
}

func TestReverseDeliveryIdempotent(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	order := deliveredOrder(t, f, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: f.chai.ID, Quantity: 1}},
	})

	if err := f.accounts.ReverseDelivery(ctx, order, f.owner.ID); err != nil {
		t.Fatalf("first reversal failed: %v", err)
	}
	if err := f.accounts.ReverseDelivery(ctx, order, f.owner.ID); err != nil {
		t.Fatalf("second reversal failed: %v", err)
	}

	var reversals int64
	f.db.Model(&model.LedgerEntry{}).
		Where("reference_type = ?", model.ReferenceTypeOrderReversal).
		Count(&reversals)
	if reversals != 1 {
		t.Errorf("reversal entries = %d, want 1", reversals)
	}
}

func TestReverseWithoutPostingIsNoop(t *testing.T) {
	f := seedShop(t)
	ctx := context.Background()

	order := placeOrder(t, f, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: f.chai.ID, Quantity: 1}},
	})

	if err := f.accounts.ReverseDelivery(ctx, order, f.owner.ID); err != nil {
		t.Fatalf("ReverseDelivery failed: %v", err)
	}

	var entries int64
	f.db.Model(&model.LedgerEntry{}).Count(&entries)
	if entries != 0 {
		t.Errorf("ledger entries = %d, want 0", entries)
	}
}
