package workflow

import (
	"context"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
)

// DeleteAuctionCascade removes an auction and its dependents. The store
// has no cascading delete, so children go first: tasks, derived calendar
// events, automation dedupe keys, then the auction record itself. A
// mid-sequence failure leaves the earlier deletions committed and the
// cascade intent failed.
func (e *Engine) DeleteAuctionCascade(ctx context.Context, auction *models.Auction) error {
	intent, err := e.beginIntent(ctx, models.IntentKindCascadeDelete, auction.OrganizationId, auction.ID, nil)
	if err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"delete_tasks", func() error {
			return e.Store.DeleteTasksByAuction(ctx, auction.OrganizationId, auction.ID)
		}},
		{"delete_calendar_events", func() error {
			return e.Store.DeleteCalendarEventsByAuction(ctx, auction.OrganizationId, auction.ID)
		}},
		{"delete_automation_runs", func() error {
			return e.Store.DeleteAutomationRunsByAuction(ctx, auction.OrganizationId, auction.ID)
		}},
		{"delete_auction", func() error {
			return e.Store.DeleteAuction(ctx, auction.OrganizationId, auction.ID)
		}},
	}

	for i, step := range steps {
		if err := step.run(); err != nil {
			e.failIntent(ctx, intent, step.name)
			config.LogError(e.Logger, "cascade.go", "DeleteAuctionCascade", step.name, auction.ID, err)
			return &StepError{Step: step.name, Committed: i > 0, Err: err}
		}
	}

	e.completeIntent(ctx, intent)
	return nil
}
