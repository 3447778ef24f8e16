package models

import (
	"time"
)

type CalendarEvent struct {
	ID             int               `gorm:"primary_key" json:"id"`
	OrganizationId string            `gorm:"index;size:36;not null" json:"organization_id"`
	Title          string            `gorm:"size:255;not null" json:"title"`
	StartTime      time.Time         `gorm:"not null" json:"start_time"`
	EndTime        time.Time         `gorm:"not null" json:"end_time"`
	Description    string            `gorm:"type:text" json:"description"`
	AuctionId      *int              `gorm:"index" json:"auction_id"`
	DateField      CalendarDateField `gorm:"type:enum('first_date','second_date')" json:"date_field"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}
