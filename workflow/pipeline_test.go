package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/store"
	"github.com/Danielsjcampos/elance-sub000/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveAuction_AllStagePairs(t *testing.T) {
	ctx := context.Background()
	for _, from := range models.AllPipelineStages {
		for _, to := range models.AllPipelineStages {
			if from == to {
				continue
			}
			engine, mem, org := newTestEngine(t)
			auction := seedAuction(t, mem, org, from)

			_, err := engine.MoveAuction(ctx, auction, to)
			require.NoError(t, err, "%s -> %s", from, to)

			persisted, err := mem.GetAuction(ctx, org, auction.ID)
			require.NoError(t, err)
			assert.Equal(t, to, persisted.PipelineStage, "%s -> %s", from, to)
			assert.Equal(t, to, auction.PipelineStage)
		}
	}
}

func TestMoveAuction_InvalidStage(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStageTriagem)

	_, err := engine.MoveAuction(ctx, auction, models.PipelineStage("arquivado"))
	require.ErrorIs(t, err, workflow.ErrInvalidStage)

	persisted, err := mem.GetAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PipelineStageTriagem, persisted.PipelineStage)
}

func TestMoveAuction_PersistFailureRevertsAndSkipsAutomation(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStageTriagem)
	seedTemplate(t, mem, org, "Vistoria do imovel", models.PipelineStagePreparacao, 5)

	mem.FailCall("UpdateAuctionStage", 1, errBoom)

	_, err := engine.MoveAuction(ctx, auction, models.PipelineStagePreparacao)
	require.ErrorIs(t, err, errBoom)

	// local view reverted, store untouched, automation never ran
	assert.Equal(t, models.PipelineStageTriagem, auction.PipelineStage)
	persisted, err := mem.GetAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PipelineStageTriagem, persisted.PipelineStage)

	tasks, err := mem.ListTasksByAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	intents, err := mem.ListUnfinishedIntents(ctx, org)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, models.IntentStatusFailed, intents[0].Status)
	assert.Equal(t, "update_stage", intents[0].FailedStep)
}

func TestMoveAuction_AutomationFailureLeavesStageCommitted(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStageTriagem)
	seedTemplate(t, mem, org, "Vistoria do imovel", models.PipelineStagePreparacao, 5)

	mem.FailCall("CreateTasks", 1, errBoom)

	_, err := engine.MoveAuction(ctx, auction, models.PipelineStagePreparacao)
	var stepErr *workflow.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "apply_automation", stepErr.Step)
	assert.True(t, stepErr.Committed)

	// the stage change stands even though automation failed
	persisted, err := mem.GetAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PipelineStagePreparacao, persisted.PipelineStage)

	intents, err := mem.ListUnfinishedIntents(ctx, org)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, "apply_automation", intents[0].FailedStep)
}

func TestMoveAuction_SettlementRequired(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStageAtivo)

	res, err := engine.MoveAuction(ctx, auction, models.PipelineStagePosArrematacao)
	require.NoError(t, err)
	assert.True(t, res.SettlementRequired)

	res, err = engine.MoveAuction(ctx, auction, models.PipelineStageFinalizado)
	require.NoError(t, err)
	assert.False(t, res.SettlementRequired)
}

func TestMoveAuction_SameStageSkipsAutomation(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)
	seedTemplate(t, mem, org, "Vistoria do imovel", models.PipelineStagePreparacao, 5)

	res, err := engine.MoveAuction(ctx, auction, models.PipelineStagePreparacao)
	require.NoError(t, err)
	assert.False(t, res.SettlementRequired)

	tasks, err := mem.ListTasksByAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestMoveAuction_StaleVersion(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStageTriagem)

	// another operator moved the auction since this copy was read
	auction.Version = 7

	_, err := engine.MoveAuction(ctx, auction, models.PipelineStageAtivo)
	require.ErrorIs(t, err, store.ErrStaleRecord)
	assert.Equal(t, models.PipelineStageTriagem, auction.PipelineStage)
}

func TestMoveAuction_GuardVeto(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStageTriagem)

	vetoed := errors.New("checklist incomplete")
	engine.Guard = func(_ context.Context, _ *models.Auction, from, to models.PipelineStage) error {
		if to == models.PipelineStageFinalizado {
			return vetoed
		}
		return nil
	}

	_, err := engine.MoveAuction(ctx, auction, models.PipelineStageFinalizado)
	require.ErrorIs(t, err, vetoed)

	persisted, err := mem.GetAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PipelineStageTriagem, persisted.PipelineStage)

	// guard runs before anything is persisted, including the intent
	intents, err := mem.ListUnfinishedIntents(ctx, org)
	require.NoError(t, err)
	assert.Empty(t, intents)

	_, err = engine.MoveAuction(ctx, auction, models.PipelineStageAtivo)
	require.NoError(t, err)
}
