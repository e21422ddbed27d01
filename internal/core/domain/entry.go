package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind identifies which of the two parallel per-client ledgers an entry
// or version belongs to.
type LedgerKind string

const (
	KindExpense     LedgerKind = "EXPENSE"
	KindCashReceipt LedgerKind = "CASH_RECEIPT"
)

// ExpenseStatus is the payment state of an expense entry.
type ExpenseStatus string

const (
	StatusPaid     ExpenseStatus = "paid"
	StatusPending  ExpenseStatus = "pending"
	StatusUpcoming ExpenseStatus = "upcoming"
)

// ValidExpenseStatus reports whether s is one of the accepted expense statuses.
func ValidExpenseStatus(s ExpenseStatus) bool {
	switch s {
	case StatusPaid, StatusPending, StatusUpcoming:
		return true
	}
	return false
}

// LedgerEntry is a single expense or cash-receipt record for a client.
// Description, Status and BillURL are populated only for KindExpense;
// a cash receipt carries just its date and amount.
type LedgerEntry struct {
	EntryID     string          `json:"entryID"`  // Primary Key (UUID)
	ClientID    string          `json:"clientID"` // FK -> clients.client_id
	Kind        LedgerKind      `json:"kind"`
	Date        time.Time       `json:"date"`   // Calendar date of the transaction
	Amount      decimal.Decimal `json:"amount"` // Strictly positive, 2 fractional digits
	Description string          `json:"description,omitempty"`
	Status      ExpenseStatus   `json:"status,omitempty"`
	BillURL     string          `json:"billURL,omitempty"` // Opaque reference to an uploaded bill
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Frozen reports whether the entry falls at or before the given freeze
// boundary. A nil boundary means the ledger has never been frozen.
// The boundary, not any flag on the entry itself, is the source of truth.
func (e LedgerEntry) Frozen(boundary *time.Time) bool {
	if boundary == nil {
		return false
	}
	return !e.CreatedAt.After(*boundary)
}
