package models

import (
	"errors"
	"time"
)

// TaskTemplate is a settings record: when an auction enters StageTrigger,
// the automation engine instantiates a checklist task from it.
type TaskTemplate struct {
	ID             int           `gorm:"primary_key" json:"id"`
	OrganizationId string        `gorm:"index;size:36;not null" json:"organization_id"`
	Title          string        `gorm:"size:255;not null" json:"title" binding:"required"`
	StageTrigger   PipelineStage `gorm:"type:enum('triagem','preparacao','ativo','pos_arrematacao','finalizado');index;not null" json:"stage_trigger" binding:"required"`
	DaysDue        int           `json:"days_due"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTaskTemplate struct {
	Title        string        `json:"title" binding:"required"`
	StageTrigger PipelineStage `json:"stage_trigger" binding:"required"`
	DaysDue      int           `json:"days_due"`
}

func (input *NewTaskTemplate) Validate() error {
	if !input.StageTrigger.Valid() {
		return errors.New("invalid stage trigger")
	}
	if input.DaysDue < 0 {
		return errors.New("days due must not be negative")
	}
	return nil
}

func (input *NewTaskTemplate) ToTaskTemplate(organizationId string) *TaskTemplate {
	return &TaskTemplate{
		OrganizationId: organizationId,
		Title:          input.Title,
		StageTrigger:   input.StageTrigger,
		DaysDue:        input.DaysDue,
	}
}
