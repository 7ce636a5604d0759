package repository

import (
	"context"
	"errors"
	"time"

	"shopledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrKhataNotFound = errors.New("khata account not found")

type AccountingRepository struct {
	db *gorm.DB
}

func NewAccountingRepository(db *gorm.DB) *AccountingRepository {
	return &AccountingRepository{db: db}
}

func (r *AccountingRepository) CreateLedgerEntry(ctx context.Context, tx *gorm.DB, entry *model.LedgerEntry) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(entry).Error
}

// GetLedgerEntryByReference is the idempotency probe: one posting per
// (reference type, reference id) pair.
func (r *AccountingRepository) GetLedgerEntryByReference(ctx context.Context, tx *gorm.DB, shopID int64, refType string, refID int64) (*model.LedgerEntry, error) {
	if tx == nil {
		tx = r.db
	}
	var entry model.LedgerEntry
	err := tx.WithContext(ctx).
		Where("shop_id = ? AND reference_type = ? AND reference_id = ?", shopID, refType, refID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *AccountingRepository) ListLedgerEntries(ctx context.Context, shopID int64, from, to time.Time, offset, limit int) ([]*model.LedgerEntry, int64, error) {
	var entries []*model.LedgerEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Where("shop_id = ? AND entry_date >= ? AND entry_date < ?", shopID, from, to)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("entry_date, id").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}

func (r *AccountingRepository) CreateGSTRecord(ctx context.Context, tx *gorm.DB, record *model.GSTRecord) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(record).Error
}

func (r *AccountingRepository) DeleteGSTRecordByOrder(ctx context.Context, tx *gorm.DB, shopID, orderID int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("shop_id = ? AND order_id = ?", shopID, orderID).
		Delete(&model.GSTRecord{}).Error
}

func (r *AccountingRepository) ListGSTRecords(ctx context.Context, shopID int64, from, to time.Time) ([]*model.GSTRecord, error) {
	var records []*model.GSTRecord
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND created_at >= ? AND created_at < ?", shopID, from, to).
		Order("created_at").
		Find(&records).Error
	return records, err
}

func (r *AccountingRepository) CreateCashBookEntry(ctx context.Context, tx *gorm.DB, entry *model.CashBook) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *AccountingRepository) DeleteCashBookEntryByOrder(ctx context.Context, tx *gorm.DB, shopID, orderID int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Where("shop_id = ? AND order_id = ?", shopID, orderID).
		Delete(&model.CashBook{}).Error
}

func (r *AccountingRepository) ListCashBookEntries(ctx context.Context, shopID int64, from, to time.Time) ([]*model.CashBook, error) {
	var entries []*model.CashBook
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND created_at >= ? AND created_at < ?", shopID, from, to).
		Order("created_at, id").
		Find(&entries).Error
	return entries, err
}

// CashBalanceBefore nets IN against OUT for entries before the cutoff,
// giving the opening balance of a cash book report.
func (r *AccountingRepository) CashBalanceBefore(ctx context.Context, shopID int64, cutoff time.Time) (decimal.Decimal, error) {
	type row struct {
		Balance string
	}
	var result row
	err := r.db.WithContext(ctx).
		Model(&model.CashBook{}).
		Select("COALESCE(SUM(CASE WHEN entry_type = 'IN' THEN amount ELSE -amount END), 0) as balance").
		Where("shop_id = ? AND created_at < ?", shopID, cutoff).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(result.Balance)
}

// EnsureKhataAccount creates the (shop, customer) row if absent. The
// unique index makes a concurrent double-create collapse to one row.
func (r *AccountingRepository) EnsureKhataAccount(ctx context.Context, tx *gorm.DB, shopID, customerID int64, creditLimit decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}
	account := &model.KhataAccount{
		ShopID:      shopID,
		CustomerID:  customerID,
		Balance:     decimal.Zero,
		CreditLimit: creditLimit,
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(account).Error
}

// ApplyKhataCredit adds a credit sale to the customer's balance with an
// atomic in-place UPDATE.
func (r *AccountingRepository) ApplyKhataCredit(ctx context.Context, tx *gorm.DB, shopID, customerID int64, amount decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.KhataAccount{}).
		Where("shop_id = ? AND customer_id = ?", shopID, customerID).
		Updates(map[string]interface{}{
			"balance":               gorm.Expr("balance + ?", amount),
			"total_credit_given":    gorm.Expr("total_credit_given + ?", amount),
			"last_transaction_date": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrKhataNotFound
	}
	return nil
}

// ReverseKhataCredit backs out a cancelled credit sale. Only the
// balance moves; total_credit_given is a cumulative audit counter and
// keeps the cancelled sale.
func (r *AccountingRepository) ReverseKhataCredit(ctx context.Context, tx *gorm.DB, shopID, customerID int64, amount decimal.Decimal) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.KhataAccount{}).
		Where("shop_id = ? AND customer_id = ?", shopID, customerID).
		Updates(map[string]interface{}{
			"balance":               gorm.Expr("balance - ?", amount),
			"last_transaction_date": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrKhataNotFound
	}
	return nil
}

func (r *AccountingRepository) GetKhataAccount(ctx context.Context, shopID, customerID int64) (*model.KhataAccount, error) {
	var account model.KhataAccount
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND customer_id = ?", shopID, customerID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKhataNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountingRepository) ListKhataAccounts(ctx context.Context, shopID int64) ([]*model.KhataAccount, error) {
	var accounts []*model.KhataAccount
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("balance DESC").
		Find(&accounts).Error
	return accounts, err
}
