package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tally-style account names used by automatic postings.
const (
	AccountCash    = "Cash"
	AccountBank    = "Bank"
	AccountSales   = "Sales"
	AccountDebtors = "Debtors (Credit Sales)"
)

const (
	ReferenceTypeOrder         = "order"
	ReferenceTypeOrderReversal = "order_reversal"
)

const (
	CashEntryIn  = "IN"
	CashEntryOut = "OUT"
)

// LedgerEntry is one double-entry row. Entries are only ever appended:
// a cancellation posts a compensating row with debit/credit swapped.
// Invariant: DebitAmount equals CreditAmount.
type LedgerEntry struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID      int64     `gorm:"index:idx_ledger_shop_date;not null" json:"shop_id"`
	EntryDate   time.Time `gorm:"index:idx_ledger_shop_date;not null" json:"entry_date"`
	EntryNumber string    `gorm:"type:varchar(50)" json:"entry_number"`
	Description string    `gorm:"type:varchar(500);not null" json:"description"`

	ReferenceType string `gorm:"type:varchar(50);index:idx_ledger_ref" json:"reference_type"`
	ReferenceID   int64  `gorm:"index:idx_ledger_ref" json:"reference_id"`

	DebitAccount string          `gorm:"type:varchar(100);not null" json:"debit_account"`
	DebitAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"debit_amount"`

	CreditAccount string          `gorm:"type:varchar(100);not null" json:"credit_account"`
	CreditAmount  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"credit_amount"`

	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedBy int64     `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entry"
}

// GSTRecord is the one-per-order tax breakdown. Intrastate sales split
// the GST evenly into CGST and SGST; IGST stays zero.
type GSTRecord struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID  int64 `gorm:"index;not null" json:"shop_id"`
	OrderID int64 `gorm:"uniqueIndex;not null" json:"order_id"`

	TaxableAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"taxable_amount"`
	GSTRate       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"gst_rate"`
	GSTAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"gst_amount"`

	CGSTAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"cgst_amount"`
	SGSTAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"sgst_amount"`
	IGSTAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"igst_amount"`

	InvoiceNumber string    `gorm:"type:varchar(50)" json:"invoice_number"`
	CreatedBy     int64     `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (GSTRecord) TableName() string {
	return "gst_record"
}

// CashBook logs cash-equivalent money in and out, optionally tied to an
// order.
type CashBook struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID  int64  `gorm:"index;not null" json:"shop_id"`
	OrderID *int64 `gorm:"index" json:"order_id,omitempty"`

	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	EntryType string          `gorm:"type:varchar(10);not null" json:"entry_type"` // IN or OUT

	Description     string    `gorm:"type:varchar(500)" json:"description"`
	ReferenceNumber string    `gorm:"type:varchar(50)" json:"reference_number"`
	CreatedBy       int64     `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (CashBook) TableName() string {
	return "cash_book"
}

// BankBook mirrors CashBook for bank-settled transactions.
type BankBook struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID  int64  `gorm:"index;not null" json:"shop_id"`
	OrderID *int64 `gorm:"index" json:"order_id,omitempty"`

	Amount    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	EntryType string          `gorm:"type:varchar(10);not null" json:"entry_type"`

	BankAccount     string    `gorm:"type:varchar(100)" json:"bank_account"`
	ChequeNumber    string    `gorm:"type:varchar(50)" json:"cheque_number"`
	Description     string    `gorm:"type:varchar(500)" json:"description"`
	ReferenceNumber string    `gorm:"type:varchar(50)" json:"reference_number"`
	CreatedBy       int64     `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (BankBook) TableName() string {
	return "bank_book"
}

// KhataAccount is the running credit account per (shop, customer).
// Positive balance means the customer owes the shop. Rows are mutated
// only by the accounting engine and never deleted.
type KhataAccount struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID     int64 `gorm:"index:idx_khata_shop_customer,unique;not null" json:"shop_id"`
	CustomerID int64 `gorm:"index:idx_khata_shop_customer,unique;not null" json:"customer_id"`

	Balance     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(15,2);not null;default:10000" json:"credit_limit"`

	TotalCreditGiven    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_credit_given"`
	TotalCreditReceived decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_credit_received"`

	LastTransactionDate *time.Time `json:"last_transaction_date,omitempty"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KhataAccount) TableName() string {
	return "khata_account"
}

// ChartOfAccounts is a static reference lookup seeded at startup.
type ChartOfAccounts struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountCode string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"account_code"`
	AccountName string    `gorm:"type:varchar(100);not null" json:"account_name"`
	AccountType string    `gorm:"type:varchar(50);not null" json:"account_type"` // asset, liability, equity, revenue, expense
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ChartOfAccounts) TableName() string {
	return "chart_of_accounts"
}
