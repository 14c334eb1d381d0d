package reconciliation

import (
	"time"

	"github.com/shopspring/decimal"

	"billing/internal/ledger"
)

// BankTransaction is one row of a bank statement
type BankTransaction struct {
	Row          int             // 1-based row in the statement, header included
	Date         time.Time       // Txn date
	Description  string          // Narration / particulars
	CounterParty string          // Payer name, when the bank exports one
	Reference    string          // UTR, cheque or ref number
	Amount       decimal.Decimal // Positive for credits, negative for debits
}

// IsIncoming returns true if money was received
func (bt *BankTransaction) IsIncoming() bool {
	return bt.Amount.IsPositive()
}

// text returns every free-text field of the transaction for matching.
func (bt *BankTransaction) text() string {
	return bt.Description + " " + bt.CounterParty + " " + bt.Reference
}

// Basis names the rule that paired a transaction with an invoice.
type Basis string

const (
	BasisReference    Basis = "invoice number"
	BasisClientAmount Basis = "client and amount"
	BasisClient       Basis = "client"
	BasisAmount       Basis = "amount"
)

// Pairing pairs an incoming transaction with the invoice it pays.
type Pairing struct {
	Transaction BankTransaction
	Invoice     ledger.InvoiceView
	Basis       Basis
}

// Result is the outcome of matching a statement against the ledger.
type Result struct {
	Matches   []Pairing
	Recorded  []Pairing         // already in the ledger with the same date and amount
	Unmatched []BankTransaction // incoming transactions no invoice could take
	Outgoing  int               // debits, ignored
}
