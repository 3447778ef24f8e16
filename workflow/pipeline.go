package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
)

var ErrInvalidStage = errors.New("invalid pipeline stage")

// StageGuard can veto a transition before anything is persisted.
type StageGuard func(ctx context.Context, auction *models.Auction, from, to models.PipelineStage) error

type MoveResult struct {
	From models.PipelineStage `json:"from"`
	To   models.PipelineStage `json:"to"`
	// SettlementRequired signals the caller to collect a sale price and
	// call RecordSale; the move itself never posts ledger entries.
	SettlementRequired bool `json:"settlement_required"`
}

// MoveAuction reassigns the auction's pipeline stage and, when the stage
// actually changed, runs stage automation. The stage write and the
// automation are separate store calls: if the write fails the in-memory
// stage is reverted and automation never runs; if automation fails after
// the write committed, the stage change stands and the failure is
// reported via StepError{Committed: true}.
func (e *Engine) MoveAuction(ctx context.Context, auction *models.Auction, toStage models.PipelineStage) (MoveResult, error) {
	ctx, span := tracer.Start(ctx, "workflow.MoveAuction")
	defer span.End()

	res := MoveResult{From: auction.PipelineStage, To: toStage}
	if !toStage.Valid() {
		return res, fmt.Errorf("%w: %q", ErrInvalidStage, toStage)
	}

	from := auction.PipelineStage
	if e.Guard != nil {
		if err := e.Guard(ctx, auction, from, toStage); err != nil {
			return res, err
		}
	}

	intent, err := e.beginIntent(ctx, models.IntentKindStageMove, auction.OrganizationId, auction.ID, res)
	if err != nil {
		return res, err
	}

	// optimistic local update; from is the captured rollback value
	auction.PipelineStage = toStage
	if err := e.Store.UpdateAuctionStage(ctx, auction.OrganizationId, auction.ID, toStage, auction.Version); err != nil {
		auction.PipelineStage = from
		e.failIntent(ctx, intent, "update_stage")
		config.LogError(e.Logger, "pipeline.go", "MoveAuction", "UpdateAuctionStage", auction.ID, err)
		span.RecordError(err)
		return res, err
	}
	auction.Version++

	if toStage != from {
		res.SettlementRequired = toStage == models.PipelineStagePosArrematacao
		if err := e.ApplyAutomation(ctx, toStage, auction); err != nil {
			e.failIntent(ctx, intent, "apply_automation")
			span.RecordError(err)
			return res, &StepError{Step: "apply_automation", Committed: true, Err: err}
		}
	}

	e.completeIntent(ctx, intent)
	return res, nil
}
