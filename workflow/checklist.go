package workflow

import (
	"context"

	"github.com/Danielsjcampos/elance-sub000/models"
)

type ChecklistProgress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Percent is the displayable completion percentage; an auction with no
// tasks is 0%, never a division error.
func (p ChecklistProgress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Done * 100 / p.Total
}

// Progress counts task completion for an auction. Read-side only; it is
// shown on the board and may inform an operator's decision to advance a
// stage, but nothing enforces completion before a move.
func (e *Engine) Progress(ctx context.Context, organizationId string, auctionId int) (ChecklistProgress, error) {
	tasks, err := e.Store.ListTasksByAuction(ctx, organizationId, auctionId)
	if err != nil {
		return ChecklistProgress{}, err
	}
	progress := ChecklistProgress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Status == models.TaskStatusDone {
			progress.Done++
		}
	}
	return progress, nil
}
