package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncDates_FirstDateProducesEvent(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	auction.FirstDate = &first
	require.NoError(t, engine.SyncDates(ctx, auction))

	events, err := mem.ListCalendarEvents(ctx, org)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, first, event.StartTime)
	assert.Equal(t, first.Add(2*time.Hour), event.EndTime)
	assert.Equal(t, "1st round: "+auction.Title, event.Title)
	assert.Equal(t, models.CalendarDateFieldFirst, event.DateField)
	require.NotNil(t, event.AuctionId)
	assert.Equal(t, auction.ID, *event.AuctionId)
}

func TestSyncDates_BothDates(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	auction.FirstDate = &first
	auction.SecondDate = &second
	require.NoError(t, engine.SyncDates(ctx, auction))

	events, err := mem.ListCalendarEvents(ctx, org)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "1st round: "+auction.Title, events[0].Title)
	assert.Equal(t, "2nd round: "+auction.Title, events[1].Title)
}

func TestSyncDates_AmendsExistingEvent(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	auction.FirstDate = &first
	require.NoError(t, engine.SyncDates(ctx, auction))

	// operator reschedules: the existing event is amended, not duplicated
	rescheduled := time.Date(2025, 3, 8, 14, 0, 0, 0, time.UTC)
	auction.FirstDate = &rescheduled
	require.NoError(t, engine.SyncDates(ctx, auction))

	events, err := mem.ListCalendarEvents(ctx, org)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, rescheduled, events[0].StartTime)
	assert.Equal(t, rescheduled.Add(2*time.Hour), events[0].EndTime)
}

func TestSyncDates_ClearedDateRemovesEvent(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	auction.FirstDate = &first
	auction.SecondDate = &second
	require.NoError(t, engine.SyncDates(ctx, auction))

	// operator drops the second round; its derived event must go too
	auction.SecondDate = nil
	require.NoError(t, engine.SyncDates(ctx, auction))

	events, err := mem.ListCalendarEvents(ctx, org)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.CalendarDateFieldFirst, events[0].DateField)

	auction.FirstDate = nil
	require.NoError(t, engine.SyncDates(ctx, auction))

	events, err = mem.ListCalendarEvents(ctx, org)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSyncDates_ClearedDateDeleteFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	auction.FirstDate = &first
	require.NoError(t, engine.SyncDates(ctx, auction))

	mem.FailCall("DeleteCalendarEvent", 1, errBoom)
	auction.FirstDate = nil

	err := engine.SyncDates(ctx, auction)
	var stepErr *workflow.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "sync_first_date", stepErr.Step)
	assert.False(t, stepErr.Committed)
	require.ErrorIs(t, err, errBoom)
}

func TestSyncDates_NoDatesIsNoop(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)

	require.NoError(t, engine.SyncDates(ctx, auction))

	events, err := mem.ListCalendarEvents(ctx, org)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSyncDates_SecondEventFailureKeepsFirst(t *testing.T) {
	ctx := context.Background()
	engine, mem, org := newTestEngine(t)
	auction := seedAuction(t, mem, org, models.PipelineStagePreparacao)

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	auction.FirstDate = &first
	auction.SecondDate = &second

	mem.FailCall("CreateCalendarEvent", 2, errBoom)

	err := engine.SyncDates(ctx, auction)
	var stepErr *workflow.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "sync_second_date", stepErr.Step)
	assert.True(t, stepErr.Committed)

	events, listErr := mem.ListCalendarEvents(ctx, org)
	require.NoError(t, listErr)
	require.Len(t, events, 1)
	assert.Equal(t, models.CalendarDateFieldFirst, events[0].DateField)
}
