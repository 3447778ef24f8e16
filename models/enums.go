package models

import (
	"database/sql/driver"
	"fmt"
)

type AuctionStatus string

const (
	AuctionStatusDraft     AuctionStatus = "draft"
	AuctionStatusPublished AuctionStatus = "published"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusFinished  AuctionStatus = "finished"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

func (s AuctionStatus) Valid() bool {
	switch s {
	case AuctionStatusDraft, AuctionStatusPublished, AuctionStatusActive,
		AuctionStatusFinished, AuctionStatusCancelled:
		return true
	}
	return false
}

func (s AuctionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *AuctionStatus) Scan(value interface{}) error {
	return scanEnum((*string)(s), value)
}

type PipelineStage string

const (
	PipelineStageTriagem        PipelineStage = "triagem"
	PipelineStagePreparacao     PipelineStage = "preparacao"
	PipelineStageAtivo          PipelineStage = "ativo"
	PipelineStagePosArrematacao PipelineStage = "pos_arrematacao"
	PipelineStageFinalizado     PipelineStage = "finalizado"
)

// AllPipelineStages lists the stages in board order.
var AllPipelineStages = []PipelineStage{
	PipelineStageTriagem,
	PipelineStagePreparacao,
	PipelineStageAtivo,
	PipelineStagePosArrematacao,
	PipelineStageFinalizado,
}

func (s PipelineStage) Valid() bool {
	switch s {
	case PipelineStageTriagem, PipelineStagePreparacao, PipelineStageAtivo,
		PipelineStagePosArrematacao, PipelineStageFinalizado:
		return true
	}
	return false
}

func (s PipelineStage) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PipelineStage) Scan(value interface{}) error {
	return scanEnum((*string)(s), value)
}

type TaskStatus string

const (
	TaskStatusTodo TaskStatus = "todo"
	TaskStatusDone TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	return s == TaskStatusTodo || s == TaskStatusDone
}

func (s TaskStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *TaskStatus) Scan(value interface{}) error {
	return scanEnum((*string)(s), value)
}

type FinancialEntryType string

const (
	FinancialEntryTypeIncome  FinancialEntryType = "income"
	FinancialEntryTypeExpense FinancialEntryType = "expense"
)

func (t FinancialEntryType) Valid() bool {
	return t == FinancialEntryTypeIncome || t == FinancialEntryTypeExpense
}

func (t FinancialEntryType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *FinancialEntryType) Scan(value interface{}) error {
	return scanEnum((*string)(t), value)
}

// CalendarDateField names the auction date an event was derived from,
// so a later edit of that date can amend the event in place.
type CalendarDateField string

const (
	CalendarDateFieldFirst  CalendarDateField = "first_date"
	CalendarDateFieldSecond CalendarDateField = "second_date"
)

func (f CalendarDateField) Value() (driver.Value, error) {
	return string(f), nil
}

func (f *CalendarDateField) Scan(value interface{}) error {
	return scanEnum((*string)(f), value)
}

type IntentKind string

const (
	IntentKindStageMove     IntentKind = "stage_move"
	IntentKindSettlement    IntentKind = "settlement"
	IntentKindCascadeDelete IntentKind = "cascade_delete"
)

func (k IntentKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *IntentKind) Scan(value interface{}) error {
	return scanEnum((*string)(k), value)
}

type IntentStatus string

const (
	IntentStatusPending  IntentStatus = "pending"
	IntentStatusComplete IntentStatus = "complete"
	IntentStatusFailed   IntentStatus = "failed"
)

func (s IntentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *IntentStatus) Scan(value interface{}) error {
	return scanEnum((*string)(s), value)
}

func scanEnum(dest *string, value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*dest = string(v)
	case string:
		*dest = v
	default:
		return fmt.Errorf("cannot scan %T into enum", value)
	}
	return nil
}
