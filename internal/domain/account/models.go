package account

import (
	"time"
)

// Account mirrors one upstream financial account. The primary key is the
// upstream account id; balance, currency and type are snapshots refreshed on
// every sync, never historized.
type Account struct {
	ID           string    `json:"id"` // upstream account id
	UserID       int64     `json:"userId"`
	Balance      int64     `json:"balance"` // minor units
	CreditLimit  int64     `json:"creditLimit"`
	CurrencyCode int       `json:"currencyCode"` // numeric ISO 4217
	Type         string    `json:"type"`         // upstream subtype label
	MaskedPan    string    `json:"maskedPan,omitempty"`
	IBAN         string    `json:"iban,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UpsertParams is used when syncing account snapshots from the upstream.
type UpsertParams struct {
	ID           string
	UserID       int64
	Balance      int64
	CreditLimit  int64
	CurrencyCode int
	Type         string
	MaskedPan    string
	IBAN         string
}
