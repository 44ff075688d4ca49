package transaction

import (
	"time"
)

// Transaction is one ledger entry. The primary key is the upstream statement
// item id, which is globally unique and the sole deduplication key: applying
// the same item twice updates fields in place instead of inserting a
// duplicate row (the upstream re-delivers items on corrections, e.g. a hold
// settling).
type Transaction struct {
	ID              string    `json:"id"` // upstream statement item id
	UserID          int64     `json:"userId"`
	AccountID       string    `json:"accountId"`
	Time            time.Time `json:"time"`
	Description     string    `json:"description"`
	MCC             int       `json:"mcc"`
	OriginalMCC     int       `json:"originalMcc,omitempty"`
	Amount          int64     `json:"amount"` // signed, minor units
	OperationAmount int64     `json:"operationAmount"`
	CurrencyCode    int       `json:"currencyCode"`
	CommissionRate  int64     `json:"commissionRate"`
	CashbackAmount  int64     `json:"cashbackAmount"`
	Balance         int64     `json:"balance"` // resulting balance snapshot
	Hold            bool      `json:"hold"`    // pending vs settled
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UpsertParams is used when applying statement items from sync or webhook.
type UpsertParams struct {
	ID              string
	UserID          int64
	AccountID       string
	Time            time.Time
	Description     string
	MCC             int
	OriginalMCC     int
	Amount          int64
	OperationAmount int64
	CurrencyCode    int
	CommissionRate  int64
	CashbackAmount  int64
	Balance         int64
	Hold            bool
}
