package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Auction struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"index;size:36;not null" json:"organization_id"`
	Title          string          `gorm:"size:255;not null" json:"title" binding:"required"`
	Description    string          `gorm:"type:text" json:"description"`
	Status         AuctionStatus   `gorm:"type:enum('draft','published','active','finished','cancelled');not null;default:'draft'" json:"status"`
	PipelineStage  PipelineStage   `gorm:"type:enum('triagem','preparacao','ativo','pos_arrematacao','finalizado');not null;default:'triagem'" json:"pipeline_stage"`
	MinimumBid     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"minimum_bid"`
	AppraisalValue decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"appraisal_value"`
	FirstDate      *time.Time      `json:"first_date"`
	SecondDate     *time.Time      `json:"second_date"`
	Version        int             `gorm:"not null;default:0" json:"version"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAuction struct {
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description"`
	Status         AuctionStatus   `json:"status"`
	MinimumBid     decimal.Decimal `json:"minimum_bid"`
	AppraisalValue decimal.Decimal `json:"appraisal_value"`
	FirstDate      *time.Time      `json:"first_date"`
	SecondDate     *time.Time      `json:"second_date"`
}

// validate input for both create & update
func (input *NewAuction) Validate() error {
	if input.Status != "" && !input.Status.Valid() {
		return errors.New("invalid auction status")
	}
	if input.MinimumBid.IsNegative() {
		return errors.New("minimum bid must not be negative")
	}
	if input.AppraisalValue.IsNegative() {
		return errors.New("appraisal value must not be negative")
	}
	return nil
}

// ToAuction builds the record for creation; every auction enters the
// board at triagem.
func (input *NewAuction) ToAuction(organizationId string) *Auction {
	status := input.Status
	if status == "" {
		status = AuctionStatusDraft
	}
	return &Auction{
		OrganizationId: organizationId,
		Title:          input.Title,
		Description:    input.Description,
		Status:         status,
		PipelineStage:  PipelineStageTriagem,
		MinimumBid:     input.MinimumBid,
		AppraisalValue: input.AppraisalValue,
		FirstDate:      input.FirstDate,
		SecondDate:     input.SecondDate,
	}
}

// HasDates reports whether any key date is set; calendar sync only runs
// when it is.
func (a *Auction) HasDates() bool {
	return a.FirstDate != nil || a.SecondDate != nil
}
