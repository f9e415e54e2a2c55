package model

import "time"

type CompletionStatus string

const (
	CompletionStatusAvailable  CompletionStatus = "available"
	CompletionStatusInProgress CompletionStatus = "in_progress"
	CompletionStatusCompleted  CompletionStatus = "completed"
)

// TaskCompletion tracks one account's progress on one task. The pair
// (AccountUID, TaskID) is the primary key; CompletedAt is set exactly once,
// on the transition into completed, and cleared only by an admin reset.
type TaskCompletion struct {
	AccountUID  string           `gorm:"column:account_uid;primaryKey;size:128"`
	TaskID      uint64           `gorm:"column:task_id;primaryKey"`
	Status      CompletionStatus `gorm:"column:status;size:32;not null;default:available"`
	StartedAt   *time.Time       `gorm:"column:started_at"`
	CompletedAt *time.Time       `gorm:"column:completed_at"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
}

func (TaskCompletion) TableName() string {
	return "task_completions"
}
