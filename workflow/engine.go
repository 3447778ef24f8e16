package workflow

import (
	"context"
	"fmt"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/Danielsjcampos/elance-sub000/store"
	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("auction-pipeline")

// Engine runs the auction pipeline orchestration: stage moves, stage
// automation, calendar sync, settlement posting and checklist reads.
// All writes go through the record store one call at a time; the engine
// never gets a surrounding transaction, so multi-step sequences are
// tracked with pending intents and partial completion is reported, not
// rolled back.
type Engine struct {
	Store  store.RecordStore
	Logger *logrus.Logger

	// Locker serializes settlement posting per auction when redis is
	// available. Best-effort: posting must not depend on redis. When
	// nil, the global lock client is picked up at call time once redis
	// connects.
	Locker *redislock.Client

	// Guard, when set, can veto a stage transition. The transition
	// graph itself is complete: any stage is reachable from any other.
	Guard StageGuard

	// LegacyAutomation skips the (auction, stage, template) dedupe so
	// re-entering a stage re-instantiates its templates, matching the
	// historical board behavior.
	LegacyAutomation bool
}

func NewEngine(s store.RecordStore, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &Engine{Store: s, Logger: logger}
}

// StepError reports which sub-step of a multi-call sequence failed.
// Committed means earlier steps of the sequence were already persisted
// and remain so; the pending intent for the sequence is left failed for
// manual reconciliation.
type StepError struct {
	Step      string
	Committed bool
	Err       error
}

func (e *StepError) Error() string {
	if e.Committed {
		return fmt.Sprintf("step %s failed (earlier steps remain committed): %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *Engine) beginIntent(ctx context.Context, kind models.IntentKind, organizationId string, auctionId int, payload any) (*models.PendingIntent, error) {
	intent := models.NewPendingIntent(ctx, kind, organizationId, auctionId, payload)
	if err := e.Store.CreatePendingIntent(ctx, intent); err != nil {
		config.LogError(e.Logger, "engine.go", "beginIntent", string(kind), auctionId, err)
		return nil, err
	}
	return intent, nil
}

func (e *Engine) completeIntent(ctx context.Context, intent *models.PendingIntent) {
	if err := e.Store.CompletePendingIntent(ctx, intent.ID); err != nil {
		// the sequence itself succeeded; a stuck pending intent only
		// means a spurious reconciliation candidate
		config.LogError(e.Logger, "engine.go", "completeIntent", string(intent.Kind), intent.ID, err)
	}
}

func (e *Engine) failIntent(ctx context.Context, intent *models.PendingIntent, step string) {
	if err := e.Store.FailPendingIntent(ctx, intent.ID, step); err != nil {
		config.LogError(e.Logger, "engine.go", "failIntent", string(intent.Kind)+" > "+step, intent.ID, err)
	}
}
