package models

import "time"

// MergeJob is the persisted record of one finished merge run.
type MergeJob struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Strategy       string    `gorm:"size:32" json:"strategy"`
	Status         string    `gorm:"size:32" json:"status"`
	InputFiles     int       `json:"input_files"`
	SkippedFiles   int       `json:"skipped_files"`
	Conflicts      int       `json:"conflicts"`
	UnresolvedRefs int       `json:"unresolved_refs"`
	Summary        string    `gorm:"size:255" json:"summary"`
	Error          string    `gorm:"size:1024" json:"error,omitempty"`
	ArchiveObject  string    `gorm:"size:255" json:"archive_object,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName pins the table name regardless of GORM's pluralization settings.
func (MergeJob) TableName() string {
	return "merge_jobs"
}

// Columns lists the column names the schema check verifies at startup.
func Columns() []string {
	return []string{
		"id", "strategy", "status", "input_files", "skipped_files",
		"conflicts", "unresolved_refs", "summary", "error",
		"archive_object", "created_at",
	}
}
