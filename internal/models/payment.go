package models

import "time"

// PaymentRecord is a ledger entry for a verified, successful premium payment.
type PaymentRecord struct {
	TxnRef       string    `json:"txn_ref" db:"txn_ref"`
	UserID       int64     `json:"user_id" db:"user_id"`
	Amount       int64     `json:"amount" db:"amount"`
	ResponseCode string    `json:"response_code" db:"response_code"`
	ConfirmedAt  time.Time `json:"confirmed_at" db:"confirmed_at"`
}
