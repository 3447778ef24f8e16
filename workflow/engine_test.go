package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/store"
	"github.com/Danielsjcampos/elance-sub000/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("store unavailable")

func newTestEngine(t *testing.T) (*workflow.Engine, *store.Memory, string) {
	t.Helper()
	mem := store.NewMemory()
	engine := workflow.NewEngine(mem, nil)
	return engine, mem, uuid.NewString()
}

func seedAuction(t *testing.T, s *store.Memory, organizationId string, stage models.PipelineStage) *models.Auction {
	t.Helper()
	auction := &models.Auction{
		OrganizationId: organizationId,
		Title:          "Apartamento 302 - Centro",
		Status:         models.AuctionStatusActive,
		PipelineStage:  stage,
	}
	require.NoError(t, s.CreateAuction(context.Background(), auction))
	return auction
}

func seedTemplate(t *testing.T, s *store.Memory, organizationId string, title string, stage models.PipelineStage, daysDue int) *models.TaskTemplate {
	t.Helper()
	template := &models.TaskTemplate{
		OrganizationId: organizationId,
		Title:          title,
		StageTrigger:   stage,
		DaysDue:        daysDue,
	}
	require.NoError(t, s.CreateTaskTemplate(context.Background(), template))
	return template
}

func TestStepError_Unwrap(t *testing.T) {
	err := &workflow.StepError{Step: "royalty_entry", Committed: true, Err: errBoom}
	require.ErrorIs(t, err, errBoom)
	require.Contains(t, err.Error(), "royalty_entry")
	require.Contains(t, err.Error(), "remain committed")
}
