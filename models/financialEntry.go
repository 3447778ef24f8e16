package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialEntry is a ledger line. Entries are append-only: the settlement
// workflow creates them in income/expense pairs and nothing mutates them.
type FinancialEntry struct {
	ID             int                `gorm:"primary_key" json:"id"`
	OrganizationId string             `gorm:"index;size:36;not null" json:"organization_id"`
	Description    string             `gorm:"size:255;not null" json:"description"`
	Amount         decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Type           FinancialEntryType `gorm:"type:enum('income','expense');not null" json:"type"`
	AuctionId      *int               `gorm:"index" json:"auction_id"`
	EntryDate      time.Time          `gorm:"not null" json:"entry_date"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
}
