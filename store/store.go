package store

import (
	"context"
	"errors"

	"github.com/Danielsjcampos/elance-sub000/models"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	// ErrStaleRecord means another writer updated the auction since it
	// was read; the caller's version counter no longer matches.
	ErrStaleRecord = errors.New("record was modified concurrently")
	// ErrDuplicateAutomationRun means the (auction, stage, template)
	// dedupe key already exists; the engine treats it as a no-op.
	ErrDuplicateAutomationRun = errors.New("automation already applied")
)

// RecordStore is the narrow contract of the persistent store. Every
// operation is an independent network round trip with per-record
// atomicity only; there are no multi-record transactions, so callers
// must expect partial completion of multi-step sequences.
type RecordStore interface {
	CreateAuction(ctx context.Context, auction *models.Auction) error
	GetAuction(ctx context.Context, organizationId string, id int) (*models.Auction, error)
	ListAuctions(ctx context.Context, organizationId string) ([]*models.Auction, error)
	UpdateAuction(ctx context.Context, organizationId string, id int, fields map[string]interface{}) error
	// UpdateAuctionStage reassigns pipeline_stage, guarded by the
	// optimistic version counter; returns ErrStaleRecord when the
	// record moved on.
	UpdateAuctionStage(ctx context.Context, organizationId string, id int, stage models.PipelineStage, fromVersion int) error
	DeleteAuction(ctx context.Context, organizationId string, id int) error

	CreateTask(ctx context.Context, task *models.Task) error
	// CreateTasks inserts a batch best-effort; on error, earlier rows of
	// the batch may already be persisted.
	CreateTasks(ctx context.Context, tasks []*models.Task) error
	ListTasksByAuction(ctx context.Context, organizationId string, auctionId int) ([]*models.Task, error)
	GetTask(ctx context.Context, organizationId string, id int) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, organizationId string, id int, status models.TaskStatus) error
	DeleteTask(ctx context.Context, organizationId string, id int) error
	DeleteTasksByAuction(ctx context.Context, organizationId string, auctionId int) error

	CreateTaskTemplate(ctx context.Context, template *models.TaskTemplate) error
	GetTaskTemplate(ctx context.Context, organizationId string, id int) (*models.TaskTemplate, error)
	ListTaskTemplates(ctx context.Context, organizationId string) ([]*models.TaskTemplate, error)
	ListTaskTemplatesByStage(ctx context.Context, organizationId string, stage models.PipelineStage) ([]*models.TaskTemplate, error)
	UpdateTaskTemplate(ctx context.Context, organizationId string, id int, fields map[string]interface{}) error
	DeleteTaskTemplate(ctx context.Context, organizationId string, id int) error

	CreateFinancialEntry(ctx context.Context, entry *models.FinancialEntry) error
	ListFinancialEntries(ctx context.Context, organizationId string) ([]*models.FinancialEntry, error)
	ListFinancialEntriesByAuction(ctx context.Context, organizationId string, auctionId int) ([]*models.FinancialEntry, error)

	CreateCalendarEvent(ctx context.Context, event *models.CalendarEvent) error
	// FindCalendarEvent looks up the event previously derived from the
	// given auction date field; ErrRecordNotFound when none exists.
	FindCalendarEvent(ctx context.Context, organizationId string, auctionId int, field models.CalendarDateField) (*models.CalendarEvent, error)
	UpdateCalendarEvent(ctx context.Context, organizationId string, id int, fields map[string]interface{}) error
	ListCalendarEvents(ctx context.Context, organizationId string) ([]*models.CalendarEvent, error)
	DeleteCalendarEvent(ctx context.Context, organizationId string, id int) error
	DeleteCalendarEventsByAuction(ctx context.Context, organizationId string, auctionId int) error

	// CreateAutomationRun returns ErrDuplicateAutomationRun when the
	// dedupe key already exists.
	CreateAutomationRun(ctx context.Context, run *models.AutomationRun) error
	DeleteAutomationRunsByAuction(ctx context.Context, organizationId string, auctionId int) error

	CreatePendingIntent(ctx context.Context, intent *models.PendingIntent) error
	CompletePendingIntent(ctx context.Context, id int) error
	FailPendingIntent(ctx context.Context, id int, step string) error
	ListUnfinishedIntents(ctx context.Context, organizationId string) ([]*models.PendingIntent, error)
}
