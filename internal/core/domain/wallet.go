package domain

import (
	"errors"
	"time"
)

var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrInvalidAmount = errors.New("invalid amount")

// Wallet holds one user's balance for one asset, in integer minor units.
// The ledger enforces balance ≥ 0 at all times; callers never do. Wallets
// are created lazily on first credit and never deleted.
type Wallet struct {
	UserID       string    `json:"user_id" bson:"user_id"`
	Asset        string    `json:"asset" bson:"asset"`
	BalanceCents int64     `json:"balance_cents" bson:"balance_cents"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// TransactionType classifies a balance-affecting event.
type TransactionType string

const (
	TxDeposit     TransactionType = "deposit"
	TxWithdrawal  TransactionType = "withdrawal"
	TxTradeDebit  TransactionType = "trade_debit"
	TxTradeCredit TransactionType = "trade_credit"
)

// Transaction is the ledger-visible record of a single balance mutation.
// Exactly one is appended per debit or credit; entries are immutable.
type Transaction struct {
	ID          string          `json:"id" bson:"_id"`
	UserID      string          `json:"user_id" bson:"user_id"`
	Asset       string          `json:"asset" bson:"asset"`
	Type        TransactionType `json:"type" bson:"type"`
	AmountCents int64           `json:"amount_cents" bson:"amount_cents"`
	Reference   string          `json:"reference,omitempty" bson:"reference,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
}
