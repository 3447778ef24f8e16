package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Danielsjcampos/elance-sub000/utils"
	"github.com/google/uuid"
)

// PendingIntent marks a multi-step write sequence. The record store only
// guarantees single-record atomicity, so each sequence (stage move +
// automation, settlement's two ledger inserts, cascade delete) is written
// under an intent: created before the first write, completed after the
// last. An intent left pending or failed after the fact is the signal for
// manual reconciliation; committed steps are never rolled back.
type PendingIntent struct {
	ID             int          `gorm:"primary_key" json:"id"`
	OrganizationId string       `gorm:"index;size:36;not null" json:"organization_id"`
	Kind           IntentKind   `gorm:"type:enum('stage_move','settlement','cascade_delete');not null" json:"kind"`
	AuctionId      int          `gorm:"index;not null" json:"auction_id"`
	Payload        string       `gorm:"type:text" json:"payload"`
	Status         IntentStatus `gorm:"type:enum('pending','complete','failed');index;not null;default:'pending'" json:"status"`
	FailedStep     string       `gorm:"size:100" json:"failed_step"`
	CorrelationId  string       `gorm:"size:36" json:"correlation_id"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func NewPendingIntent(ctx context.Context, kind IntentKind, organizationId string, auctionId int, payload any) *PendingIntent {
	body, err := json.Marshal(payload)
	if err != nil {
		body = []byte("{}")
	}
	return &PendingIntent{
		OrganizationId: organizationId,
		Kind:           kind,
		AuctionId:      auctionId,
		Payload:        string(body),
		Status:         IntentStatusPending,
		CorrelationId:  correlationIdFromContextOrNew(ctx),
	}
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok {
			return v
		}
	}
	return uuid.NewString()
}
