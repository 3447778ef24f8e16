package models

import (
	"errors"
	"time"
)

type Task struct {
	ID             int        `gorm:"primary_key" json:"id"`
	OrganizationId string     `gorm:"index;size:36;not null" json:"organization_id"`
	Title          string     `gorm:"size:255;not null" json:"title" binding:"required"`
	Description    string     `gorm:"type:text" json:"description"`
	Status         TaskStatus `gorm:"type:enum('todo','done');not null;default:'todo'" json:"status"`
	DueDate        *time.Time `json:"due_date"`
	AuctionId      *int       `gorm:"index" json:"auction_id"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTask struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	AuctionId   *int       `json:"auction_id"`
}

func (input *NewTask) Validate() error {
	if input.AuctionId != nil && *input.AuctionId <= 0 {
		return errors.New("invalid auction id")
	}
	return nil
}

func (input *NewTask) ToTask(organizationId string) *Task {
	return &Task{
		OrganizationId: organizationId,
		Title:          input.Title,
		Description:    input.Description,
		Status:         TaskStatusTodo,
		DueDate:        input.DueDate,
		AuctionId:      input.AuctionId,
	}
}

// Toggled returns the opposite checklist status.
func (t *Task) Toggled() TaskStatus {
	if t.Status == TaskStatusDone {
		return TaskStatusTodo
	}
	return TaskStatusDone
}
