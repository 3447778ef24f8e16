package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/store"
)

// DefaultTaskDueDays applies when a template has no due-day offset.
const DefaultTaskDueDays = 3

// ApplyAutomation instantiates every task template triggered by the
// given stage as a checklist task on the auction. Zero templates is a
// silent no-op. Unless LegacyAutomation is set, each (auction, stage,
// template) is applied at most once; a dedupe conflict skips the
// template. The tasks are inserted as one best-effort batch; on error,
// already-inserted rows are not rolled back.
func (e *Engine) ApplyAutomation(ctx context.Context, stage models.PipelineStage, auction *models.Auction) error {
	templates, err := e.Store.ListTaskTemplatesByStage(ctx, auction.OrganizationId, stage)
	if err != nil {
		config.LogError(e.Logger, "automation.go", "ApplyAutomation", "ListTaskTemplatesByStage", stage, err)
		return err
	}
	if len(templates) == 0 {
		return nil
	}

	now := time.Now()
	tasks := make([]*models.Task, 0, len(templates))
	for _, tmpl := range templates {
		if !e.LegacyAutomation {
			run := &models.AutomationRun{
				OrganizationId: auction.OrganizationId,
				AuctionId:      auction.ID,
				Stage:          stage,
				TemplateId:     tmpl.ID,
			}
			if err := e.Store.CreateAutomationRun(ctx, run); err != nil {
				if errors.Is(err, store.ErrDuplicateAutomationRun) {
					// applied on an earlier visit to this stage
					continue
				}
				config.LogError(e.Logger, "automation.go", "ApplyAutomation", "CreateAutomationRun", tmpl.ID, err)
				return err
			}
		}

		days := tmpl.DaysDue
		if days <= 0 {
			days = DefaultTaskDueDays
		}
		due := now.AddDate(0, 0, days)
		tasks = append(tasks, &models.Task{
			OrganizationId: auction.OrganizationId,
			Title:          tmpl.Title,
			Description:    fmt.Sprintf("Auto-created on entering stage %s", stage),
			Status:         models.TaskStatusTodo,
			DueDate:        &due,
			AuctionId:      &auction.ID,
		})
	}
	if len(tasks) == 0 {
		return nil
	}

	if err := e.Store.CreateTasks(ctx, tasks); err != nil {
		config.LogError(e.Logger, "automation.go", "ApplyAutomation", "CreateTasks", auction.ID, err)
		return err
	}
	return nil
}
