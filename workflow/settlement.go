package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Danielsjcampos/elance-sub000/config"
	"github.com/Danielsjcampos/elance-sub000/models"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
)

// RoyaltyRate is the share of the commission owed to the parent
// organization. Fixed business rule; there is no per-organization
// configuration surface for it.
var RoyaltyRate = decimal.New(1, -1) // 0.10

var (
	ErrInvalidSalePrice      = errors.New("sale price must not be negative")
	ErrInvalidCommissionRate = errors.New("commission rate must be between 0 and 100")
)

var oneHundred = decimal.NewFromInt(100)

// Settlement is the computed split for a recorded sale. Net is derived
// for display only and is never persisted.
type Settlement struct {
	AuctionId      int             `json:"auction_id"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	Commission     decimal.Decimal `json:"commission"`
	Royalty        decimal.Decimal `json:"royalty"`
	Net            decimal.Decimal `json:"net"`
	IncomeEntryId  int             `json:"income_entry_id"`
	ExpenseEntryId int             `json:"expense_entry_id"`
}

// RecordSale computes the commission/royalty split from a single
// snapshot of (salePrice, commissionRatePercent) and posts the two
// ledger entries: income for the commission, expense for the royalty.
// The two inserts are separate store calls; if the second fails the
// first stays committed and the failure is reported via
// StepError{Committed: true}, leaving the settlement intent failed for
// manual reconciliation.
func (e *Engine) RecordSale(ctx context.Context, auction *models.Auction, salePrice, commissionRatePercent decimal.Decimal) (*Settlement, error) {
	if salePrice.IsNegative() {
		return nil, ErrInvalidSalePrice
	}
	if commissionRatePercent.IsNegative() || commissionRatePercent.GreaterThan(oneHundred) {
		return nil, ErrInvalidCommissionRate
	}

	ctx, span := tracer.Start(ctx, "workflow.RecordSale")
	defer span.End()

	// resolve at call time: the redis connection comes up after the
	// server is already serving, like the DB handle in store.Gorm
	locker := e.Locker
	if locker == nil {
		locker = config.GetRedisLock()
	}
	if locker != nil {
		lock, err := locker.Obtain(ctx, fmt.Sprintf("settlement:%d", auction.ID), 30*time.Second, nil)
		if err == nil {
			defer lock.Release(ctx)
		} else if err != redislock.ErrNotObtained {
			// redis down: proceed, the lock is an optimization only
			config.LogError(e.Logger, "settlement.go", "RecordSale", "Obtain lock", auction.ID, err)
		}
	}

	commission := salePrice.Mul(commissionRatePercent).Div(oneHundred)
	royalty := commission.Mul(RoyaltyRate)
	net := commission.Sub(royalty)

	settlement := &Settlement{
		AuctionId:      auction.ID,
		SalePrice:      salePrice,
		CommissionRate: commissionRatePercent,
		Commission:     commission,
		Royalty:        royalty,
		Net:            net,
	}

	intent, err := e.beginIntent(ctx, models.IntentKindSettlement, auction.OrganizationId, auction.ID, settlement)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	income := &models.FinancialEntry{
		OrganizationId: auction.OrganizationId,
		Description:    fmt.Sprintf("Sale commission: %s", auction.Title),
		Amount:         commission,
		Type:           models.FinancialEntryTypeIncome,
		AuctionId:      &auction.ID,
		EntryDate:      now,
	}
	if err := e.Store.CreateFinancialEntry(ctx, income); err != nil {
		e.failIntent(ctx, intent, "commission_entry")
		config.LogError(e.Logger, "settlement.go", "RecordSale", "CreateFinancialEntry commission", auction.ID, err)
		span.RecordError(err)
		return nil, &StepError{Step: "commission_entry", Err: err}
	}
	settlement.IncomeEntryId = income.ID

	expense := &models.FinancialEntry{
		OrganizationId: auction.OrganizationId,
		Description:    fmt.Sprintf("Franchise royalty: %s", auction.Title),
		Amount:         royalty,
		Type:           models.FinancialEntryTypeExpense,
		AuctionId:      &auction.ID,
		EntryDate:      now,
	}
	if err := e.Store.CreateFinancialEntry(ctx, expense); err != nil {
		// unmatched income entry remains; reconciliation goes through
		// the failed intent
		e.failIntent(ctx, intent, "royalty_entry")
		config.LogError(e.Logger, "settlement.go", "RecordSale", "CreateFinancialEntry royalty", auction.ID, err)
		span.RecordError(err)
		return nil, &StepError{Step: "royalty_entry", Committed: true, Err: err}
	}
	settlement.ExpenseEntryId = expense.ID

	e.completeIntent(ctx, intent)
	return settlement, nil
}
