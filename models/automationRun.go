package models

import (
	"time"
)

// AutomationRun is the dedupe key for stage automation: one row per
// (auction, stage, template) means each template is instantiated at most
// once per stage visit, no matter how often the auction is dragged back
// and forth. A duplicate-key conflict on insert is treated as a
// successful no-op by the engine.
type AutomationRun struct {
	ID             int           `gorm:"primary_key" json:"id"`
	OrganizationId string        `gorm:"index;size:36;not null" json:"organization_id"`
	AuctionId      int           `gorm:"uniqueIndex:idx_automation_dedupe;not null" json:"auction_id"`
	Stage          PipelineStage `gorm:"type:enum('triagem','preparacao','ativo','pos_arrematacao','finalizado');uniqueIndex:idx_automation_dedupe;not null" json:"stage"`
	TemplateId     int           `gorm:"uniqueIndex:idx_automation_dedupe;not null" json:"template_id"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}
