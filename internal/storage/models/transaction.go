// internal/storage/models/transaction.go
package models

import "time"

// Transaction is the audit record of one trade submission.
type Transaction struct {
	BaseModel
	ID            int64      `json:"id"`
	UserID        string     `json:"user_id"`
	Chain         string     `json:"chain"`
	Side          string     `json:"side"`
	WalletAddress string     `json:"wallet_address"`
	TokenAddress  string     `json:"token_address"`
	Amount        float64    `json:"amount"`
	AmountOut     float64    `json:"amount_out"`
	SlippageBps   int        `json:"slippage_bps"`
	PriorityFee   float64    `json:"priority_fee"`
	Signature     string     `json:"signature"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"error_message"`
	ExecutionTime float64    `json:"execution_time"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
}

const (
	TransactionSucceeded = "succeeded"
	TransactionFailed    = "failed"
)
