package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/shopspring/decimal"
)

// Memory is an in-memory RecordStore for tests and local development.
// Each operation is independently failable via FailCall, mirroring the
// per-call failure model of the real store.
type Memory struct {
	mu  sync.Mutex
	seq int

	auctions  map[int]*models.Auction
	tasks     map[int]*models.Task
	templates map[int]*models.TaskTemplate
	entries   map[int]*models.FinancialEntry
	events    map[int]*models.CalendarEvent
	runs      map[string]*models.AutomationRun
	intents   map[int]*models.PendingIntent

	calls    map[string]int
	failures map[string]map[int]error
}

func NewMemory() *Memory {
	return &Memory{
		auctions:  make(map[int]*models.Auction),
		tasks:     make(map[int]*models.Task),
		templates: make(map[int]*models.TaskTemplate),
		entries:   make(map[int]*models.FinancialEntry),
		events:    make(map[int]*models.CalendarEvent),
		runs:      make(map[string]*models.AutomationRun),
		intents:   make(map[int]*models.PendingIntent),
		calls:     make(map[string]int),
		failures:  make(map[string]map[int]error),
	}
}

// FailCall makes the nth invocation (1-based) of the named operation
// return err instead of mutating anything.
func (m *Memory) FailCall(op string, nth int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures[op] == nil {
		m.failures[op] = make(map[int]error)
	}
	m.failures[op][nth] = err
}

// step counts the call and returns the injected failure, if any.
func (m *Memory) step(op string) error {
	m.calls[op]++
	if rules := m.failures[op]; rules != nil {
		if err, ok := rules[m.calls[op]]; ok {
			return err
		}
	}
	return nil
}

func (m *Memory) nextId() int {
	m.seq++
	return m.seq
}

func runKey(auctionId int, stage models.PipelineStage, templateId int) string {
	return fmt.Sprintf("%d|%s|%d", auctionId, stage, templateId)
}

/* auctions */

func (m *Memory) CreateAuction(_ context.Context, auction *models.Auction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CreateAuction"); err != nil {
		return err
	}
	auction.ID = m.nextId()
	cp := *auction
	m.auctions[auction.ID] = &cp
	return nil
}

func (m *Memory) GetAuction(_ context.Context, organizationId string, id int) (*models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("GetAuction"); err != nil {
		return nil, err
	}
	a, ok := m.auctions[id]
	if !ok || a.OrganizationId != organizationId {
		return nil, ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) ListAuctions(_ context.Context, organizationId string) ([]*models.Auction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("ListAuctions"); err != nil {
		return nil, err
	}
	var out []*models.Auction
	for i := 1; i <= m.seq; i++ {
		if a, ok := m.auctions[i]; ok && a.OrganizationId == organizationId {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) UpdateAuction(_ context.Context, organizationId string, id int, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("UpdateAuction"); err != nil {
		return err
	}
	a, ok := m.auctions[id]
	if !ok || a.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	applyAuctionFields(a, fields)
	return nil
}

func (m *Memory) UpdateAuctionStage(_ context.Context, organizationId string, id int, stage models.PipelineStage, fromVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("UpdateAuctionStage"); err != nil {
		return err
	}
	a, ok := m.auctions[id]
	if !ok || a.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	if a.Version != fromVersion {
		return ErrStaleRecord
	}
	a.PipelineStage = stage
	a.Version = fromVersion + 1
	return nil
}

func (m *Memory) DeleteAuction(_ context.Context, organizationId string, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("DeleteAuction"); err != nil {
		return err
	}
	a, ok := m.auctions[id]
	if !ok || a.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	delete(m.auctions, id)
	return nil
}

/* tasks */

func (m *Memory) CreateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CreateTask"); err != nil {
		return err
	}
	task.ID = m.nextId()
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *Memory) CreateTasks(_ context.Context, tasks []*models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CreateTasks"); err != nil {
		return err
	}
	for _, task := range tasks {
		task.ID = m.nextId()
		cp := *task
		m.tasks[task.ID] = &cp
	}
	return nil
}

func (m *Memory) ListTasksByAuction(_ context.Context, organizationId string, auctionId int) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("ListTasksByAuction"); err != nil {
		return nil, err
	}
	var out []*models.Task
	for i := 1; i <= m.seq; i++ {
		t, ok := m.tasks[i]
		if !ok || t.OrganizationId != organizationId {
			continue
		}
		if t.AuctionId == nil || *t.AuctionId != auctionId {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) GetTask(_ context.Context, organizationId string, id int) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("GetTask"); err != nil {
		return nil, err
	}
	t, ok := m.tasks[id]
	if !ok || t.OrganizationId != organizationId {
		return nil, ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) UpdateTaskStatus(_ context.Context, organizationId string, id int, status models.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("UpdateTaskStatus"); err != nil {
		return err
	}
	t, ok := m.tasks[id]
	if !ok || t.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	t.Status = status
	return nil
}

func (m *Memory) DeleteTask(_ context.Context, organizationId string, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("DeleteTask"); err != nil {
		return err
	}
	t, ok := m.tasks[id]
	if !ok || t.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *Memory) DeleteTasksByAuction(_ context.Context, organizationId string, auctionId int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("DeleteTasksByAuction"); err != nil {
		return err
	}
	for id, t := range m.tasks {
		if t.OrganizationId == organizationId && t.AuctionId != nil && *t.AuctionId == auctionId {
			delete(m.tasks, id)
		}
	}
	return nil
}

/* task templates */

func (m *Memory) CreateTaskTemplate(_ context.Context, template *models.TaskTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CreateTaskTemplate"); err != nil {
		return err
	}
	template.ID = m.nextId()
	cp := *template
	m.templates[template.ID] = &cp
	return nil
}

func (m *Memory) GetTaskTemplate(_ context.Context, organizationId string, id int) (*models.TaskTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("GetTaskTemplate"); err != nil {
		return nil, err
	}
	tmpl, ok := m.templates[id]
	if !ok || tmpl.OrganizationId != organizationId {
		return nil, ErrRecordNotFound
	}
	cp := *tmpl
	return &cp, nil
}

func (m *Memory) ListTaskTemplates(_ context.Context, organizationId string) ([]*models.TaskTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("ListTaskTemplates"); err != nil {
		return nil, err
	}
	var out []*models.TaskTemplate
	for i := 1; i <= m.seq; i++ {
		if tmpl, ok := m.templates[i]; ok && tmpl.OrganizationId == organizationId {
			cp := *tmpl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) ListTaskTemplatesByStage(_ context.Context, organizationId string, stage models.PipelineStage) ([]*models.TaskTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("ListTaskTemplatesByStage"); err != nil {
		return nil, err
	}
	var out []*models.TaskTemplate
	for i := 1; i <= m.seq; i++ {
		if tmpl, ok := m.templates[i]; ok && tmpl.OrganizationId == organizationId && tmpl.StageTrigger == stage {
			cp := *tmpl
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) UpdateTaskTemplate(_ context.Context, organizationId string, id int, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("UpdateTaskTemplate"); err != nil {
		return err
	}
	tmpl, ok := m.templates[id]
	if !ok || tmpl.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	if v, ok := fields["title"].(string); ok {
		tmpl.Title = v
	}
	if v, ok := fields["stage_trigger"].(models.PipelineStage); ok {
		tmpl.StageTrigger = v
	}
	if v, ok := fields["days_due"].(int); ok {
		tmpl.DaysDue = v
	}
	return nil
}

func (m *Memory) DeleteTaskTemplate(_ context.Context, organizationId string, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("DeleteTaskTemplate"); err != nil {
		return err
	}
	tmpl, ok := m.templates[id]
	if !ok || tmpl.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	delete(m.templates, id)
	return nil
}

/* financial entries */

func (m *Memory) CreateFinancialEntry(_ context.Context, entry *models.FinancialEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CreateFinancialEntry"); err != nil {
		return err
	}
	entry.ID = m.nextId()
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *Memory) ListFinancialEntries(_ context.Context, organizationId string) ([]*models.FinancialEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("ListFinancialEntries"); err != nil {
		return nil, err
	}
	var out []*models.FinancialEntry
	for i := 1; i <= m.seq; i++ {
		if e, ok := m.entries[i]; ok && e.OrganizationId == organizationId {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) ListFinancialEntriesByAuction(_ context.Context, organizationId string, auctionId int) ([]*models.FinancialEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("ListFinancialEntriesByAuction"); err != nil {
		return nil, err
	}
	var out []*models.FinancialEntry
	for i := 1; i <= m.seq; i++ {
		e, ok := m.entries[i]
		if !ok || e.OrganizationId != organizationId {
			continue
		}
		if e.AuctionId == nil || *e.AuctionId != auctionId {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

/* calendar events */

func (m *Memory) CreateCalendarEvent(_ context.Context, event *models.CalendarEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CreateCalendarEvent"); err != nil {
		return err
	}
	event.ID = m.nextId()
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *Memory) FindCalendarEvent(_ context.Context, organizationId string, auctionId int, field models.CalendarDateField) (*models.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("FindCalendarEvent"); err != nil {
		return nil, err
	}
	for i := 1; i <= m.seq; i++ {
		ev, ok := m.events[i]
		if !ok || ev.OrganizationId != organizationId || ev.DateField != field {
			continue
		}
		if ev.AuctionId != nil && *ev.AuctionId == auctionId {
			cp := *ev
			return &cp, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *Memory) UpdateCalendarEvent(_ context.Context, organizationId string, id int, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("UpdateCalendarEvent"); err != nil {
		return err
	}
	ev, ok := m.events[id]
	if !ok || ev.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	applyCalendarEventFields(ev, fields)
	return nil
}

func (m *Memory) ListCalendarEvents(_ context.Context, organizationId string) ([]*models.CalendarEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("ListCalendarEvents"); err != nil {
		return nil, err
	}
	var out []*models.CalendarEvent
	for i := 1; i <= m.seq; i++ {
		if ev, ok := m.events[i]; ok && ev.OrganizationId == organizationId {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *Memory) DeleteCalendarEvent(_ context.Context, organizationId string, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("DeleteCalendarEvent"); err != nil {
		return err
	}
	ev, ok := m.events[id]
	if !ok || ev.OrganizationId != organizationId {
		return ErrRecordNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *Memory) DeleteCalendarEventsByAuction(_ context.Context, organizationId string, auctionId int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("DeleteCalendarEventsByAuction"); err != nil {
		return err
	}
	for id, ev := range m.events {
		if ev.OrganizationId == organizationId && ev.AuctionId != nil && *ev.AuctionId == auctionId {
			delete(m.events, id)
		}
	}
	return nil
}

/* automation runs */

func (m *Memory) CreateAutomationRun(_ context.Context, run *models.AutomationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CreateAutomationRun"); err != nil {
		return err
	}
	key := runKey(run.AuctionId, run.Stage, run.TemplateId)
	if _, exists := m.runs[key]; exists {
		return ErrDuplicateAutomationRun
	}
	run.ID = m.nextId()
	cp := *run
	m.runs[key] = &cp
	return nil
}

func (m *Memory) DeleteAutomationRunsByAuction(_ context.Context, organizationId string, auctionId int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("DeleteAutomationRunsByAuction"); err != nil {
		return err
	}
	for key, run := range m.runs {
		if run.OrganizationId == organizationId && run.AuctionId == auctionId {
			delete(m.runs, key)
		}
	}
	return nil
}

/* pending intents */

func (m *Memory) CreatePendingIntent(_ context.Context, intent *models.PendingIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CreatePendingIntent"); err != nil {
		return err
	}
	intent.ID = m.nextId()
	cp := *intent
	m.intents[intent.ID] = &cp
	return nil
}

func (m *Memory) CompletePendingIntent(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("CompletePendingIntent"); err != nil {
		return err
	}
	intent, ok := m.intents[id]
	if !ok {
		return ErrRecordNotFound
	}
	intent.Status = models.IntentStatusComplete
	return nil
}

func (m *Memory) FailPendingIntent(_ context.Context, id int, step string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("FailPendingIntent"); err != nil {
		return err
	}
	intent, ok := m.intents[id]
	if !ok {
		return ErrRecordNotFound
	}
	intent.Status = models.IntentStatusFailed
	intent.FailedStep = step
	return nil
}

func (m *Memory) ListUnfinishedIntents(_ context.Context, organizationId string) ([]*models.PendingIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.step("ListUnfinishedIntents"); err != nil {
		return nil, err
	}
	var out []*models.PendingIntent
	for i := 1; i <= m.seq; i++ {
		intent, ok := m.intents[i]
		if !ok || intent.OrganizationId != organizationId {
			continue
		}
		if intent.Status == models.IntentStatusComplete {
			continue
		}
		cp := *intent
		out = append(out, &cp)
	}
	return out, nil
}

func applyAuctionFields(a *models.Auction, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "title":
			if v, ok := value.(string); ok {
				a.Title = v
			}
		case "description":
			if v, ok := value.(string); ok {
				a.Description = v
			}
		case "status":
			if v, ok := value.(models.AuctionStatus); ok {
				a.Status = v
			}
		case "minimum_bid":
			if v, ok := value.(decimal.Decimal); ok {
				a.MinimumBid = v
			}
		case "appraisal_value":
			if v, ok := value.(decimal.Decimal); ok {
				a.AppraisalValue = v
			}
		case "first_date":
			a.FirstDate = timePtr(value)
		case "second_date":
			a.SecondDate = timePtr(value)
		}
	}
}

func applyCalendarEventFields(ev *models.CalendarEvent, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "title":
			if v, ok := value.(string); ok {
				ev.Title = v
			}
		case "description":
			if v, ok := value.(string); ok {
				ev.Description = v
			}
		case "start_time":
			if v := timePtr(value); v != nil {
				ev.StartTime = *v
			}
		case "end_time":
			if v := timePtr(value); v != nil {
				ev.EndTime = *v
			}
		}
	}
}

func timePtr(value interface{}) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	}
	return nil
}
