package models

import "time"

// Result is one learner's pass through a quiz revision.
type Result struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"not null;size:255;index"`
	QuizQID     uint       `json:"quiz_id" gorm:"column:quiz_qid;not null"`
	QuizVID     uint       `json:"quiz_revision_id" gorm:"column:quiz_vid;not null;index"`
	QuizOwnerID string     `json:"quiz_owner_id" gorm:"size:255;index"`
	Score       float64    `json:"score" gorm:"not null;default:0"`
	TimeStart   time.Time  `json:"time_start"`
	TimeEnd     *time.Time `json:"time_end"`
	Archived    bool       `json:"archived" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Result) TableName() string {
	return "results"
}
