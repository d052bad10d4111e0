package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ExtractedTransactionData is a transaction draft produced from free text or a
// document. It is not persisted until the user confirms it.
type ExtractedTransactionData struct {
	Description string             `json:"description"`
	Amount      decimal.Decimal    `json:"amount"`
	Date        civil.Date         `json:"date"`
	Vendor      string             `json:"vendor,omitempty"`
	Category    string             `json:"category"`
	Type        TransactionType    `json:"type"`
	Confidence  float64            `json:"confidence"`
	Entries     []TransactionEntry `json:"entries"`
}

// Reviewable reports whether the draft carries enough to be confirmed.
func (d *ExtractedTransactionData) Reviewable() bool {
	return d.Amount.IsPositive() && len(d.Entries) > 0
}
