package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopledger/internal/config"
	"shopledger/internal/model"
	"shopledger/internal/repository"
	"shopledger/pkg/idgen"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var two = decimal.NewFromInt(2)
var hundred = decimal.NewFromInt(100)

// AccountingService posts the financial side effects of fulfillment:
// double-entry ledger rows, GST records, cash book lines and khata
// balances. Every posting also journals an outbox message in the same
// transaction.
type AccountingService struct {
	db             *gorm.DB
	accountingRepo *repository.AccountingRepository
	outboxRepo     *repository.OutboxRepository
}

func NewAccountingService(db *gorm.DB, accountingRepo *repository.AccountingRepository, outboxRepo *repository.OutboxRepository) *AccountingService {
	return &AccountingService{
		db:             db,
		accountingRepo: accountingRepo,
		outboxRepo:     outboxRepo,
	}
}

// accountingEvent is the outbox payload. EventID is unique per emission
// so consumers can deduplicate replays.
type accountingEvent struct {
	EventID     string `json:"event_id"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	ShopID      int64  `json:"shop_id"`
	Amount      string `json:"amount"`
	CreditSale  bool   `json:"credit_sale"`
	PostedAt    string `json:"posted_at"`
}

// ProcessDelivery posts the sale for a delivered order. Calling it
// twice for the same order is a no-op: the existing ledger entry for
// (order, id) is the idempotency guard.
func (s *AccountingService) ProcessDelivery(ctx context.Context, order *model.Order, actorID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.accountingRepo.GetLedgerEntryByReference(ctx, tx, order.ShopID, model.ReferenceTypeOrder, order.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			config.Logger().WithFields(logrus.Fields{
				"order_id": order.ID,
				"entry_id": existing.ID,
			}).Info("accounting already posted, skipping")
			return nil
		}

		debitAccount := model.AccountCash
		if order.IsCreditSale {
			debitAccount = model.AccountDebtors
		}

		entry := &model.LedgerEntry{
			ShopID:        order.ShopID,
			EntryDate:     time.Now(),
			EntryNumber:   idgen.GenerateEntryNumber("JE", order.ID),
			Description:   fmt.Sprintf("Sale against order %s", order.OrderNumber),
			ReferenceType: model.ReferenceTypeOrder,
			ReferenceID:   order.ID,
			DebitAccount:  debitAccount,
			DebitAmount:   order.TotalAmount,
			CreditAccount: model.AccountSales,
			CreditAmount:  order.TotalAmount,
			CreatedBy:     actorID,
		}
		if err := s.accountingRepo.CreateLedgerEntry(ctx, tx, entry); err != nil {
			return err
		}

		// every delivered order gets a register row, zero-rated included
		if err := s.createGSTRecord(ctx, tx, order, actorID); err != nil {
			return err
		}

		if order.IsCreditSale {
			if order.CustomerID == nil {
				return fmt.Errorf("credit sale without customer on order %d", order.ID)
			}
			if err := s.accountingRepo.EnsureKhataAccount(ctx, tx, order.ShopID, *order.CustomerID, decimal.NewFromInt(10000)); err != nil {
				return err
			}
			if err := s.accountingRepo.ApplyKhataCredit(ctx, tx, order.ShopID, *order.CustomerID, order.TotalAmount); err != nil {
				return err
			}
		} else {
			cash := &model.CashBook{
				ShopID:          order.ShopID,
				OrderID:         &order.ID,
				Amount:          order.TotalAmount,
				EntryType:       model.CashEntryIn,
				Description:     fmt.Sprintf("Cash sale, order %s", order.OrderNumber),
				ReferenceNumber: order.OrderNumber,
				CreatedBy:       actorID,
			}
			if err := s.accountingRepo.CreateCashBookEntry(ctx, tx, cash); err != nil {
				return err
			}
		}

		return s.journalEvent(ctx, tx, model.EventAccountingPosted, order)
	})
}

func (s *AccountingService) createGSTRecord(ctx context.Context, tx *gorm.DB, order *model.Order, actorID int64) error {
	rate := decimal.Zero
	if order.Subtotal.IsPositive() {
		rate = order.TaxAmount.Div(order.Subtotal).Mul(hundred).Round(2)
	}
	half := order.TaxAmount.Div(two).Round(2)

	record := &model.GSTRecord{
		ShopID:        order.ShopID,
		OrderID:       order.ID,
		TaxableAmount: order.Subtotal,
		GSTRate:       rate,
		GSTAmount:     order.TaxAmount,
		CGSTAmount:    half,
		SGSTAmount:    half,
		IGSTAmount:    decimal.Zero,
		InvoiceNumber: idgen.GenerateEntryNumber("INV", order.ID),
		CreatedBy:     actorID,
	}
	return s.accountingRepo.CreateGSTRecord(ctx, tx, record)
}

// ReverseDelivery backs out a posted sale after cancellation. The
// ledger stays append-only: a compensating row with debit and credit
// swapped is added, while the GST record and the cash book or khata
// effect are removed. Reversing an order that was never posted, or
// reversing twice, is a no-op.
func (s *AccountingService) ReverseDelivery(ctx context.Context, order *model.Order, actorID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		original, err := s.accountingRepo.GetLedgerEntryByReference(ctx, tx, order.ShopID, model.ReferenceTypeOrder, order.ID)
		if err != nil {
			return err
		}
		if original == nil {
			return nil
		}

		reversal, err := s.accountingRepo.GetLedgerEntryByReference(ctx, tx, order.ShopID, model.ReferenceTypeOrderReversal, order.ID)
		if err != nil {
			return err
		}
		if reversal != nil {
			return nil
		}

		entry := &model.LedgerEntry{
			ShopID:        order.ShopID,
			EntryDate:     time.Now(),
			EntryNumber:   idgen.GenerateEntryNumber("JR", order.ID),
			Description:   fmt.Sprintf("Reversal of sale, order %s cancelled", order.OrderNumber),
			ReferenceType: model.ReferenceTypeOrderReversal,
			ReferenceID:   order.ID,
			DebitAccount:  original.CreditAccount,
			DebitAmount:   original.CreditAmount,
			CreditAccount: original.DebitAccount,
			CreditAmount:  original.DebitAmount,
			CreatedBy:     actorID,
		}
		if err := s.accountingRepo.CreateLedgerEntry(ctx, tx, entry); err != nil {
			return err
		}

		if err := s.accountingRepo.DeleteGSTRecordByOrder(ctx, tx, order.ShopID, order.ID); err != nil {
			return err
		}

		if order.IsCreditSale {
			if order.CustomerID != nil {
				if err := s.accountingRepo.ReverseKhataCredit(ctx, tx, order.ShopID, *order.CustomerID, order.TotalAmount); err != nil {
					return err
				}
			}
		} else {
			if err := s.accountingRepo.DeleteCashBookEntryByOrder(ctx, tx, order.ShopID, order.ID); err != nil {
				return err
			}
		}

		return s.journalEvent(ctx, tx, model.EventAccountingReversed, order)
	})
}

func (s *AccountingService) journalEvent(ctx context.Context, tx *gorm.DB, eventType string, order *model.Order) error {
	payload, err := json.Marshal(accountingEvent{
		EventID:     uuid.NewString(),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ShopID:      order.ShopID,
		Amount:      order.TotalAmount.String(),
		CreditSale:  order.IsCreditSale,
		PostedAt:    time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	msg := &model.OutboxMessage{
		MessageKey:    order.OrderNumber,
		Topic:         config.GlobalConfig.Kafka.Topic.AccountingEvents,
		EventType:     eventType,
		Payload:       string(payload),
		CorrelationID: order.OrderNumber,
		Status:        model.OutboxStatusPending,
	}
	return s.outboxRepo.Create(ctx, tx, msg)
}
