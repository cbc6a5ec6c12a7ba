package model

import "time"

type BackupStatus string

const (
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// Backup tracks one snapshot uploaded to object storage.
type Backup struct {
	ID           int64        `json:"id"`
	ObjectKey    string       `json:"objectKey"`
	SizeBytes    int64        `json:"sizeBytes"`
	Records      int          `json:"records"`
	Status       BackupStatus `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}
