package models

import (
	"time"

	"gorm.io/gorm"
)

// Job status values. A job starts pending and flips to optimized only after a
// validated optimization result has been persisted.
const (
	StatusPendingOptimization = "PENDING_OPTIMIZATION"
	StatusOptimized           = "OPTIMIZED"
)

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ClientName         string `gorm:"not null" json:"clientName"`
	CompanyName        string `gorm:"not null" json:"companyName"`
	Position           string `gorm:"not null" json:"position"`
	JobDescription     string `gorm:"type:text" json:"jobDescription"`
	JobApplicationLink string `json:"jobApplicationLink"`

	Status      string     `gorm:"default:'PENDING_OPTIMIZATION'" json:"status"`
	OptimizedOn *time.Time `json:"optimizedOn"`

	BaseResume      string `gorm:"type:text" json:"baseResume"`
	OptimizedResume string `gorm:"type:text" json:"optimizedResume"`
	ChangesSummary  string `gorm:"type:text" json:"changesSummary"`
}
