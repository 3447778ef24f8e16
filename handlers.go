package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/store"
	"github.com/Danielsjcampos/elance-sub000/utils"
	"github.com/Danielsjcampos/elance-sub000/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type api struct {
	store  store.RecordStore
	engine *workflow.Engine
	logger *logrus.Logger
}

func newAPI(s store.RecordStore, logger *logrus.Logger) *api {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &api{
		store:  s,
		engine: workflow.NewEngine(s, logger),
		logger: logger,
	}
}

func (a *api) registerRoutes(r *gin.Engine) {
	grp := r.Group("/api")

	grp.GET("/auctions", a.listAuctions)
	grp.POST("/auctions", a.createAuction)
	grp.GET("/auctions/:id", a.getAuction)
	grp.PUT("/auctions/:id", a.updateAuction)
	grp.DELETE("/auctions/:id", a.deleteAuction)
	grp.POST("/auctions/:id/move", a.moveAuction)
	grp.POST("/auctions/:id/settlement", a.recordSale)
	grp.GET("/auctions/:id/progress", a.auctionProgress)
	grp.GET("/auctions/:id/tasks", a.listAuctionTasks)

	grp.POST("/tasks", a.createTask)
	grp.POST("/tasks/:id/toggle", a.toggleTask)
	grp.DELETE("/tasks/:id", a.deleteTask)

	grp.GET("/task-templates", a.listTaskTemplates)
	grp.POST("/task-templates", a.createTaskTemplate)
	grp.PUT("/task-templates/:id", a.updateTaskTemplate)
	grp.DELETE("/task-templates/:id", a.deleteTaskTemplate)

	grp.GET("/financial-entries", a.listFinancialEntries)
	grp.GET("/calendar-events", a.listCalendarEvents)

	// reconciliation surface for intents left pending/failed by
	// partial multi-step writes
	r.GET("/internal/ops/intents/unfinished", a.listUnfinishedIntents)
}

func organizationIdOrAbort(c *gin.Context) (string, bool) {
	organizationId, ok := utils.GetOrganizationIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization scope is required"})
		return "", false
	}
	return organizationId, true
}

func idParamOrAbort(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (a *api) fetchAuctionOrAbort(c *gin.Context, organizationId string) (*models.Auction, bool) {
	id, ok := idParamOrAbort(c)
	if !ok {
		return nil, false
	}
	auction, err := a.store.GetAuction(c.Request.Context(), organizationId, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "auction not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load auction"})
		}
		return nil, false
	}
	return auction, true
}

// writeWorkflowError maps engine failures onto the boundary contract:
// validation errors are 4xx with nothing persisted, partial-chain
// failures are 500 with the failed step and whether earlier steps stay
// committed.
func writeWorkflowError(c *gin.Context, err error) {
	var stepErr *workflow.StepError
	switch {
	case errors.Is(err, workflow.ErrInvalidStage),
		errors.Is(err, workflow.ErrInvalidSalePrice),
		errors.Is(err, workflow.ErrInvalidCommissionRate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrStaleRecord):
		c.JSON(http.StatusConflict, gin.H{"error": "auction was modified concurrently; reload and retry"})
	case errors.Is(err, store.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.As(err, &stepErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       "operation failed",
			"failed_step": stepErr.Step,
			"committed":   stepErr.Committed,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

/* auctions */

type auctionResponse struct {
	*models.Auction
	CalendarSyncError string `json:"calendar_sync_error,omitempty"`
}

func (a *api) createAuction(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	var input models.NewAuction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	auction := input.ToAuction(organizationId)
	if err := a.store.CreateAuction(c.Request.Context(), auction); err != nil {
		config.LogError(a.logger, "handlers.go", "createAuction", "CreateAuction", input.Title, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create auction"})
		return
	}

	resp := auctionResponse{Auction: auction}
	// calendar sync is a best-effort side effect of the save; the
	// auction itself is already committed
	if auction.HasDates() {
		if err := a.engine.SyncDates(c.Request.Context(), auction); err != nil {
			resp.CalendarSyncError = err.Error()
		}
	}
	c.JSON(http.StatusCreated, resp)
}

func (a *api) listAuctions(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	auctions, err := a.store.ListAuctions(c.Request.Context(), organizationId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list auctions"})
		return
	}
	c.JSON(http.StatusOK, auctions)
}

func (a *api) getAuction(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	auction, ok := a.fetchAuctionOrAbort(c, organizationId)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, auction)
}

func (a *api) updateAuction(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	auction, ok := a.fetchAuctionOrAbort(c, organizationId)
	if !ok {
		return
	}
	var input models.NewAuction
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{
		"title":           input.Title,
		"description":     input.Description,
		"minimum_bid":     input.MinimumBid,
		"appraisal_value": input.AppraisalValue,
		"first_date":      input.FirstDate,
		"second_date":     input.SecondDate,
	}
	if input.Status != "" {
		fields["status"] = input.Status
	}
	if err := a.store.UpdateAuction(c.Request.Context(), organizationId, auction.ID, fields); err != nil {
		config.LogError(a.logger, "handlers.go", "updateAuction", "UpdateAuction", auction.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update auction"})
		return
	}

	auction, err := a.store.GetAuction(c.Request.Context(), organizationId, auction.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reload auction"})
		return
	}

	// always reconcile: a cleared date must also remove its derived event
	resp := auctionResponse{Auction: auction}
	if err := a.engine.SyncDates(c.Request.Context(), auction); err != nil {
		resp.CalendarSyncError = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (a *api) deleteAuction(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	auction, ok := a.fetchAuctionOrAbort(c, organizationId)
	if !ok {
		return
	}
	if err := a.engine.DeleteAuctionCascade(c.Request.Context(), auction); err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

/* pipeline */

type moveAuctionInput struct {
	ToStage models.PipelineStage `json:"to_stage" binding:"required"`
}

func (a *api) moveAuction(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	auction, ok := a.fetchAuctionOrAbort(c, organizationId)
	if !ok {
		return
	}
	var input moveAuctionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := a.engine.MoveAuction(c.Request.Context(), auction, input.ToStage)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auction":             auction,
		"from":                res.From,
		"to":                  res.To,
		"settlement_required": res.SettlementRequired,
	})
}

/* settlement */

type recordSaleInput struct {
	SalePrice      decimal.Decimal `json:"sale_price"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

func (a *api) recordSale(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	auction, ok := a.fetchAuctionOrAbort(c, organizationId)
	if !ok {
		return
	}
	var input recordSaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settlement, err := a.engine.RecordSale(c.Request.Context(), auction, input.SalePrice, input.CommissionRate)
	if err != nil {
		writeWorkflowError(c, err)
		return
	}
	c.JSON(http.StatusCreated, settlement)
}

/* checklist */

func (a *api) auctionProgress(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c)
	if !ok {
		return
	}
	progress, err := a.engine.Progress(c.Request.Context(), organizationId, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"done":    progress.Done,
		"total":   progress.Total,
		"percent": progress.Percent(),
	})
}

/* tasks */

func (a *api) listAuctionTasks(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c)
	if !ok {
		return
	}
	tasks, err := a.store.ListTasksByAuction(c.Request.Context(), organizationId, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (a *api) createTask(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	var input models.NewTask
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	task := input.ToTask(organizationId)
	if err := a.store.CreateTask(c.Request.Context(), task); err != nil {
		config.LogError(a.logger, "handlers.go", "createTask", "CreateTask", input.Title, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create task"})
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (a *api) toggleTask(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c)
	if !ok {
		return
	}
	task, err := a.store.GetTask(c.Request.Context(), organizationId, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load task"})
		}
		return
	}

	next := task.Toggled()
	if err := a.store.UpdateTaskStatus(c.Request.Context(), organizationId, id, next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update task"})
		return
	}
	task.Status = next
	c.JSON(http.StatusOK, task)
}

func (a *api) deleteTask(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c)
	if !ok {
		return
	}
	if err := a.store.DeleteTask(c.Request.Context(), organizationId, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete task"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

/* task templates (settings surface) */

func (a *api) listTaskTemplates(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}

	// read-mostly settings records: serve from cache when possible
	if cached, err := utils.RetrieveRedisList[models.TaskTemplate](organizationId); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	templates, err := a.store.ListTaskTemplates(c.Request.Context(), organizationId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list task templates"})
		return
	}
	if err := utils.StoreRedisList(templates, organizationId); err != nil {
		config.LogError(a.logger, "handlers.go", "listTaskTemplates", "StoreRedisList", organizationId, err)
	}
	c.JSON(http.StatusOK, templates)
}

func (a *api) createTaskTemplate(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	var input models.NewTaskTemplate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	template := input.ToTaskTemplate(organizationId)
	if err := a.store.CreateTaskTemplate(c.Request.Context(), template); err != nil {
		config.LogError(a.logger, "handlers.go", "createTaskTemplate", "CreateTaskTemplate", input.Title, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create task template"})
		return
	}
	a.invalidateTemplateCache(organizationId)
	c.JSON(http.StatusCreated, template)
}

func (a *api) updateTaskTemplate(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c)
	if !ok {
		return
	}
	var input models.NewTaskTemplate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := input.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{
		"title":         input.Title,
		"stage_trigger": input.StageTrigger,
		"days_due":      input.DaysDue,
	}
	if err := a.store.UpdateTaskTemplate(c.Request.Context(), organizationId, id, fields); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task template not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update task template"})
		}
		return
	}
	a.invalidateTemplateCache(organizationId)

	template, err := a.store.GetTaskTemplate(c.Request.Context(), organizationId, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reload task template"})
		return
	}
	c.JSON(http.StatusOK, template)
}

func (a *api) deleteTaskTemplate(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	id, ok := idParamOrAbort(c)
	if !ok {
		return
	}
	if err := a.store.DeleteTaskTemplate(c.Request.Context(), organizationId, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task template not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete task template"})
		}
		return
	}
	a.invalidateTemplateCache(organizationId)
	c.Status(http.StatusNoContent)
}

func (a *api) invalidateTemplateCache(organizationId string) {
	if err := utils.ClearRedisList[models.TaskTemplate](organizationId); err != nil {
		config.LogError(a.logger, "handlers.go", "invalidateTemplateCache", "ClearRedisList", organizationId, err)
	}
}

/* ledger & calendar (read side) */

func (a *api) listFinancialEntries(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	if raw := c.Query("auction_id"); raw != "" {
		auctionId, err := strconv.Atoi(raw)
		if err != nil || auctionId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid auction_id"})
			return
		}
		entries, err := a.store.ListFinancialEntriesByAuction(c.Request.Context(), organizationId, auctionId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list financial entries"})
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	entries, err := a.store.ListFinancialEntries(c.Request.Context(), organizationId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list financial entries"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (a *api) listCalendarEvents(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	events, err := a.store.ListCalendarEvents(c.Request.Context(), organizationId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list calendar events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

/* ops */

func (a *api) listUnfinishedIntents(c *gin.Context) {
	organizationId, ok := organizationIdOrAbort(c)
	if !ok {
		return
	}
	intents, err := a.store.ListUnfinishedIntents(c.Request.Context(), organizationId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list intents"})
		return
	}
	c.JSON(http.StatusOK, intents)
}
