package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExportStatusIdle      = "idle"
	ExportStatusRunning   = "running"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// ExportJob records one export run. It never carries document content.
type ExportJob struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	FileName    string     `json:"file_name,omitempty"`
	FilePath    string     `json:"file_path,omitempty"`
	FileSize    int64      `json:"file_size,omitempty"`
	PageCount   int        `json:"page_count,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func NewExportJob(title string) *ExportJob {
	now := time.Now().UTC()
	return &ExportJob{
		ID:        uuid.New(),
		Status:    ExportStatusRunning,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Finish moves the job to a terminal state.
func (j *ExportJob) Finish(err error) {
	now := time.Now().UTC()
	j.UpdatedAt = now
	j.CompletedAt = &now
	if err != nil {
		j.Status = ExportStatusFailed
		j.Error = err.Error()
		return
	}
	j.Status = ExportStatusCompleted
}
