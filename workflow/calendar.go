package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/store"
)

// EventDuration is the default length of a derived calendar event.
const EventDuration = 2 * time.Hour

// SyncDates reconciles the derived calendar events with the auction's
// key dates. Events are linked to the (auction, date field) pair that
// produced them, so re-saving an auction amends the existing event in
// place instead of accumulating duplicates, and clearing a date removes
// the event it had produced.
func (e *Engine) SyncDates(ctx context.Context, auction *models.Auction) error {
	pairs := []struct {
		field models.CalendarDateField
		label string
		when  *time.Time
	}{
		{models.CalendarDateFieldFirst, "1st round", auction.FirstDate},
		{models.CalendarDateFieldSecond, "2nd round", auction.SecondDate},
	}

	committed := false
	for _, p := range pairs {
		if p.when == nil {
			existing, err := e.Store.FindCalendarEvent(ctx, auction.OrganizationId, auction.ID, p.field)
			switch {
			case err == nil:
				if err := e.Store.DeleteCalendarEvent(ctx, auction.OrganizationId, existing.ID); err != nil {
					config.LogError(e.Logger, "calendar.go", "SyncDates", "DeleteCalendarEvent", auction.ID, err)
					return &StepError{Step: "sync_" + string(p.field), Committed: committed, Err: err}
				}
				committed = true
			case errors.Is(err, store.ErrRecordNotFound):
				// no event was ever derived for this date
			default:
				config.LogError(e.Logger, "calendar.go", "SyncDates", "FindCalendarEvent", auction.ID, err)
				return &StepError{Step: "sync_" + string(p.field), Committed: committed, Err: err}
			}
			continue
		}
		start := *p.when
		end := start.Add(EventDuration)
		title := p.label + ": " + auction.Title

		existing, err := e.Store.FindCalendarEvent(ctx, auction.OrganizationId, auction.ID, p.field)
		switch {
		case err == nil:
			err = e.Store.UpdateCalendarEvent(ctx, auction.OrganizationId, existing.ID, map[string]interface{}{
				"title":      title,
				"start_time": start,
				"end_time":   end,
			})
			if err != nil {
				config.LogError(e.Logger, "calendar.go", "SyncDates", "UpdateCalendarEvent", auction.ID, err)
				return &StepError{Step: "sync_" + string(p.field), Committed: committed, Err: err}
			}
		case errors.Is(err, store.ErrRecordNotFound):
			event := &models.CalendarEvent{
				OrganizationId: auction.OrganizationId,
				Title:          title,
				StartTime:      start,
				EndTime:        end,
				Description:    auction.Description,
				AuctionId:      &auction.ID,
				DateField:      p.field,
			}
			if err := e.Store.CreateCalendarEvent(ctx, event); err != nil {
				config.LogError(e.Logger, "calendar.go", "SyncDates", "CreateCalendarEvent", auction.ID, err)
				return &StepError{Step: "sync_" + string(p.field), Committed: committed, Err: err}
			}
		default:
			config.LogError(e.Logger, "calendar.go", "SyncDates", "FindCalendarEvent", auction.ID, err)
			return &StepError{Step: "sync_" + string(p.field), Committed: committed, Err: err}
		}
		committed = true
	}
	return nil
}
