package store

import (
	"context"
	"errors"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Gorm is the MySQL-backed record store. With a nil handle it resolves
// the shared connection from config at call time, which lets the server
// start listening before the database is up (the readiness gate keeps
// requests out until then).
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) conn(ctx context.Context) *gorm.DB {
	db := g.db
	if db == nil {
		db = config.GetDB()
	}
	return db.WithContext(ctx)
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

/* auctions */

func (g *Gorm) CreateAuction(ctx context.Context, auction *models.Auction) error {
	return g.conn(ctx).Create(auction).Error
}

func (g *Gorm) GetAuction(ctx context.Context, organizationId string, id int) (*models.Auction, error) {
	var auction models.Auction
	err := g.conn(ctx).Where("organization_id = ?", organizationId).First(&auction, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &auction, nil
}

func (g *Gorm) ListAuctions(ctx context.Context, organizationId string) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := g.conn(ctx).Where("organization_id = ?", organizationId).Order("id").Find(&auctions).Error
	return auctions, err
}

func (g *Gorm) UpdateAuction(ctx context.Context, organizationId string, id int, fields map[string]interface{}) error {
	res := g.conn(ctx).Model(&models.Auction{}).
		Where("organization_id = ? AND id = ?", organizationId, id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *Gorm) UpdateAuctionStage(ctx context.Context, organizationId string, id int, stage models.PipelineStage, fromVersion int) error {
	res := g.conn(ctx).Model(&models.Auction{}).
		Where("organization_id = ? AND id = ? AND version = ?", organizationId, id, fromVersion).
		Updates(map[string]interface{}{
			"pipeline_stage": stage,
			"version":        fromVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// distinguish a missing record from a lost race
		if _, err := g.GetAuction(ctx, organizationId, id); err != nil {
			return err
		}
		return ErrStaleRecord
	}
	return nil
}

func (g *Gorm) DeleteAuction(ctx context.Context, organizationId string, id int) error {
	res := g.conn(ctx).Where("organization_id = ?", organizationId).Delete(&models.Auction{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

/* tasks */

func (g *Gorm) CreateTask(ctx context.Context, task *models.Task) error {
	return g.conn(ctx).Create(task).Error
}

func (g *Gorm) CreateTasks(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return g.conn(ctx).CreateInBatches(tasks, 50).Error
}

func (g *Gorm) ListTasksByAuction(ctx context.Context, organizationId string, auctionId int) ([]*models.Task, error) {
	var tasks []*models.Task
	err := g.conn(ctx).
		Where("organization_id = ? AND auction_id = ?", organizationId, auctionId).
		Order("id").Find(&tasks).Error
	return tasks, err
}

func (g *Gorm) GetTask(ctx context.Context, organizationId string, id int) (*models.Task, error) {
	var task models.Task
	err := g.conn(ctx).Where("organization_id = ?", organizationId).First(&task, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &task, nil
}

func (g *Gorm) UpdateTaskStatus(ctx context.Context, organizationId string, id int, status models.TaskStatus) error {
	res := g.conn(ctx).Model(&models.Task{}).
		Where("organization_id = ? AND id = ?", organizationId, id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *Gorm) DeleteTask(ctx context.Context, organizationId string, id int) error {
	res := g.conn(ctx).Where("organization_id = ?", organizationId).Delete(&models.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *Gorm) DeleteTasksByAuction(ctx context.Context, organizationId string, auctionId int) error {
	return g.conn(ctx).
		Where("organization_id = ? AND auction_id = ?", organizationId, auctionId).
		Delete(&models.Task{}).Error
}

/* task templates */

func (g *Gorm) CreateTaskTemplate(ctx context.Context, template *models.TaskTemplate) error {
	return g.conn(ctx).Create(template).Error
}

func (g *Gorm) GetTaskTemplate(ctx context.Context, organizationId string, id int) (*models.TaskTemplate, error) {
	var template models.TaskTemplate
	err := g.conn(ctx).Where("organization_id = ?", organizationId).First(&template, id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &template, nil
}

func (g *Gorm) ListTaskTemplates(ctx context.Context, organizationId string) ([]*models.TaskTemplate, error) {
	var templates []*models.TaskTemplate
	err := g.conn(ctx).Where("organization_id = ?", organizationId).Order("id").Find(&templates).Error
	return templates, err
}

func (g *Gorm) ListTaskTemplatesByStage(ctx context.Context, organizationId string, stage models.PipelineStage) ([]*models.TaskTemplate, error) {
	var templates []*models.TaskTemplate
	err := g.conn(ctx).
		Where("organization_id = ? AND stage_trigger = ?", organizationId, stage).
		Order("id").Find(&templates).Error
	return templates, err
}

func (g *Gorm) UpdateTaskTemplate(ctx context.Context, organizationId string, id int, fields map[string]interface{}) error {
	res := g.conn(ctx).Model(&models.TaskTemplate{}).
		Where("organization_id = ? AND id = ?", organizationId, id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *Gorm) DeleteTaskTemplate(ctx context.Context, organizationId string, id int) error {
	res := g.conn(ctx).Where("organization_id = ?", organizationId).Delete(&models.TaskTemplate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

/* financial entries */

func (g *Gorm) CreateFinancialEntry(ctx context.Context, entry *models.FinancialEntry) error {
	return g.conn(ctx).Create(entry).Error
}

func (g *Gorm) ListFinancialEntries(ctx context.Context, organizationId string) ([]*models.FinancialEntry, error) {
	var entries []*models.FinancialEntry
	err := g.conn(ctx).Where("organization_id = ?", organizationId).Order("id").Find(&entries).Error
	return entries, err
}

func (g *Gorm) ListFinancialEntriesByAuction(ctx context.Context, organizationId string, auctionId int) ([]*models.FinancialEntry, error) {
	var entries []*models.FinancialEntry
	err := g.conn(ctx).
		Where("organization_id = ? AND auction_id = ?", organizationId, auctionId).
		Order("id").Find(&entries).Error
	return entries, err
}

/* calendar events */

func (g *Gorm) CreateCalendarEvent(ctx context.Context, event *models.CalendarEvent) error {
	return g.conn(ctx).Create(event).Error
}

func (g *Gorm) FindCalendarEvent(ctx context.Context, organizationId string, auctionId int, field models.CalendarDateField) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := g.conn(ctx).
		Where("organization_id = ? AND auction_id = ? AND date_field = ?", organizationId, auctionId, field).
		First(&event).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &event, nil
}

func (g *Gorm) UpdateCalendarEvent(ctx context.Context, organizationId string, id int, fields map[string]interface{}) error {
	res := g.conn(ctx).Model(&models.CalendarEvent{}).
		Where("organization_id = ? AND id = ?", organizationId, id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *Gorm) ListCalendarEvents(ctx context.Context, organizationId string) ([]*models.CalendarEvent, error) {
	var events []*models.CalendarEvent
	err := g.conn(ctx).Where("organization_id = ?", organizationId).Order("start_time").Find(&events).Error
	return events, err
}

func (g *Gorm) DeleteCalendarEvent(ctx context.Context, organizationId string, id int) error {
	res := g.conn(ctx).
		Where("organization_id = ? AND id = ?", organizationId, id).
		Delete(&models.CalendarEvent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (g *Gorm) DeleteCalendarEventsByAuction(ctx context.Context, organizationId string, auctionId int) error {
	return g.conn(ctx).
		Where("organization_id = ? AND auction_id = ?", organizationId, auctionId).
		Delete(&models.CalendarEvent{}).Error
}

/* automation runs */

func (g *Gorm) CreateAutomationRun(ctx context.Context, run *models.AutomationRun) error {
	err := g.conn(ctx).Create(run).Error
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicateAutomationRun
	}
	return err
}

func (g *Gorm) DeleteAutomationRunsByAuction(ctx context.Context, organizationId string, auctionId int) error {
	return g.conn(ctx).
		Where("organization_id = ? AND auction_id = ?", organizationId, auctionId).
		Delete(&models.AutomationRun{}).Error
}

/* pending intents */

func (g *Gorm) CreatePendingIntent(ctx context.Context, intent *models.PendingIntent) error {
	return g.conn(ctx).Create(intent).Error
}

func (g *Gorm) CompletePendingIntent(ctx context.Context, id int) error {
	return g.conn(ctx).Model(&models.PendingIntent{}).
		Where("id = ?", id).
		Update("status", models.IntentStatusComplete).Error
}

func (g *Gorm) FailPendingIntent(ctx context.Context, id int, step string) error {
	return g.conn(ctx).Model(&models.PendingIntent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.IntentStatusFailed,
			"failed_step": step,
		}).Error
}

func (g *Gorm) ListUnfinishedIntents(ctx context.Context, organizationId string) ([]*models.PendingIntent, error) {
	var intents []*models.PendingIntent
	err := g.conn(ctx).
		Where("organization_id = ? AND status <> ?", organizationId, models.IntentStatusComplete).
		Order("id").Find(&intents).Error
	return intents, err
}
