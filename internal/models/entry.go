package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind identifies which per-client ledger a row belongs to.
type LedgerKind string

const (
	KindExpense     LedgerKind = "EXPENSE"
	KindCashReceipt LedgerKind = "CASH_RECEIPT"
)

// ExpenseStatus is the payment state of an expense row.
type ExpenseStatus string

const (
	StatusPaid     ExpenseStatus = "paid"
	StatusPending  ExpenseStatus = "pending"
	StatusUpcoming ExpenseStatus = "upcoming"
)

// LedgerEntry represents one expense or cash-receipt row.
// Description, Status and BillURL are empty for cash receipts.
type LedgerEntry struct {
	EntryID     string          `db:"entry_id"`
	ClientID    string          `db:"client_id"`
	Kind        LedgerKind      `db:"kind"`
	Date        time.Time       `db:"entry_date"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
	Status      ExpenseStatus   `db:"status"`
	BillURL     string          `db:"bill_url"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}
