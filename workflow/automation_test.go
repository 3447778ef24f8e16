package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAutomation_InstantiatesTemplates(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)

	seedTemplate(t, mem, org, "Vistoria do imovel", models.PipelineStagePreparacao, 5)
	seedTemplate(t, mem, org, "Publicar edital", models.PipelineStagePreparacao, 0) // falls back to default
	seedTemplate(t, mem, org, "Agendar fotografo", models.PipelineStagePreparacao, 10)
	// different trigger, must not fire
	seedTemplate(t, mem, org, "Prestar contas", models.PipelineStageFinalizado, 2)

	now := time.Now()
	require.NoError(t, engine.ApplyAutomation(ctx, models.PipelineStagePreparacao, auction))

	tasks, err := mem.ListTasksByAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	wantDueDays := map[string]int{
		"Vistoria do imovel": 5,
		"Publicar edital":    workflow.DefaultTaskDueDays,
		"Agendar fotografo":  10,
	}
	for _, task := range tasks {
		days, ok := wantDueDays[task.Title]
		require.True(t, ok, "unexpected task %q", task.Title)
		require.NotNil(t, task.AuctionId)
		assert.Equal(t, auction.ID, *task.AuctionId)
		assert.Equal(t, org, task.OrganizationId)
		assert.Equal(t, models.TaskStatusTodo, task.Status)
		assert.Contains(t, task.Description, string(models.PipelineStagePreparacao))
		require.NotNil(t, task.DueDate)
		assert.WithinDuration(t, now.AddDate(0, 0, days), *task.DueDate, time.Second)
	}
}

func TestApplyAutomation_NoTemplatesIsNoop(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStageAtivo)

	require.NoError(t, engine.ApplyAutomation(ctx, models.PipelineStageAtivo, auction))

	tasks, err := mem.ListTasksByAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestApplyAutomation_DedupedOnReentry(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)
	seedTemplate(t, mem, org, "Vistoria do imovel", models.PipelineStagePreparacao, 5)
	seedTemplate(t, mem, org, "Publicar edital", models.PipelineStagePreparacao, 3)

	require.NoError(t, engine.ApplyAutomation(ctx, models.PipelineStagePreparacao, auction))
	// auction dragged away and back: a second visit applies nothing new
	require.NoError(t, engine.ApplyAutomation(ctx, models.PipelineStagePreparacao, auction))

	tasks, err := mem.ListTasksByAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestApplyAutomation_LegacyModeDuplicates(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	engine.LegacyAutomation = true
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)
	seedTemplate(t, mem, org, "Vistoria do imovel", models.PipelineStagePreparacao, 5)
	seedTemplate(t, mem, org, "Publicar edital", models.PipelineStagePreparacao, 3)

	require.NoError(t, engine.ApplyAutomation(ctx, models.PipelineStagePreparacao, auction))
	require.NoError(t, engine.ApplyAutomation(ctx, models.PipelineStagePreparacao, auction))

	// historical behavior: every stage entry re-instantiates the templates
	tasks, err := mem.ListTasksByAuction(ctx, org, auction.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestApplyAutomation_BatchInsertFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)
	seedTemplate(t, mem, org, "Vistoria do imovel", models.PipelineStagePreparacao, 5)

	mem.FailCall("CreateTasks", 1, errBoom)
	require.ErrorIs(t, engine.ApplyAutomation(ctx, models.PipelineStagePreparacao, auction), errBoom)
}
