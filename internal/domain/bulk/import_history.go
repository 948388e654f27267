package bulk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopstack/backend/internal/domain/shared"
)

// ImportEntityType represents the type of entity being imported
type ImportEntityType string

const (
	ImportEntityProducts  ImportEntityType = "products"
	ImportEntityCustomers ImportEntityType = "customers"
)

// IsValid checks if the entity type is valid
func (e ImportEntityType) IsValid() bool {
	switch e {
	case ImportEntityProducts, ImportEntityCustomers:
		return true
	}
	return false
}

// ImportStatus represents the status of an import operation
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusPending, ImportStatusProcessing, ImportStatusCompleted, ImportStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// ConflictMode defines how to handle rows that collide with existing records
type ConflictMode string

const (
	ConflictModeSkip   ConflictMode = "skip"
	ConflictModeUpdate ConflictMode = "update"
	ConflictModeFail   ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// ImportErrorDetail represents a detailed error for a specific row
type ImportErrorDetail struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportHistory records one bulk import run: what file was processed, how
// many rows succeeded, and the per-row errors of those that did not. Error
// details are persisted as a JSON text column via ErrorDetailsRaw.
type ImportHistory struct {
	shared.BaseAggregateRoot
	EntityType      ImportEntityType    `gorm:"type:varchar(20);not null;index"`
	FileName        string              `gorm:"type:varchar(255);not null"`
	FileSize        int64               `gorm:"not null;default:0"`
	TotalRows       int                 `gorm:"not null;default:0"`
	SuccessRows     int                 `gorm:"not null;default:0"`
	ErrorRows       int                 `gorm:"not null;default:0"`
	SkippedRows     int                 `gorm:"not null;default:0"`
	UpdatedRows     int                 `gorm:"not null;default:0"`
	ConflictMode    ConflictMode        `gorm:"type:varchar(10);not null;default:'skip'"`
	Status          ImportStatus        `gorm:"type:varchar(20);not null;default:'pending';index"`
	ErrorDetailsRaw string              `gorm:"column:error_details;type:text"`
	ErrorDetails    []ImportErrorDetail `gorm:"-"`
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// TableName returns the table name for GORM
func (ImportHistory) TableName() string {
	return "import_histories"
}

// NewImportHistory creates a new import history record
func NewImportHistory(entityType ImportEntityType, fileName string, fileSize int64, conflictMode ConflictMode) (*ImportHistory, error) {
	if !entityType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid entity type: %s", entityType))
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "File size cannot be negative")
	}
	if !conflictMode.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid conflict mode: %s", conflictMode))
	}

	return &ImportHistory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EntityType:        entityType,
		FileName:          fileName,
		FileSize:          fileSize,
		ConflictMode:      conflictMode,
		Status:            ImportStatusPending,
		ErrorDetails:      make([]ImportErrorDetail, 0),
	}, nil
}

// StartProcessing marks the import as started
func (h *ImportHistory) StartProcessing(totalRows int) error {
	if h.Status != ImportStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", h.Status))
	}
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Total rows cannot be negative")
	}

	h.Status = ImportStatusProcessing
	h.TotalRows = totalRows
	now := time.Now()
	h.StartedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Complete records the row counts and marks the run finished. A run where
// every row errored is recorded as failed.
func (h *ImportHistory) Complete(successRows, errorRows, skippedRows, updatedRows int, errs []ImportErrorDetail) error {
	if h.Status != ImportStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", h.Status))
	}

	status := ImportStatusCompleted
	if errorRows > 0 && successRows == 0 && updatedRows == 0 {
		status = ImportStatusFailed
	}

	h.Status = status
	h.SuccessRows = successRows
	h.ErrorRows = errorRows
	h.SkippedRows = skippedRows
	h.UpdatedRows = updatedRows
	h.ErrorDetails = errs
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// Fail marks the import as failed
func (h *ImportHistory) Fail(errs []ImportErrorDetail) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", h.Status))
	}

	h.Status = ImportStatusFailed
	h.ErrorDetails = errs
	now := time.Now()
	h.CompletedAt = &now
	h.UpdatedAt = now
	h.IncrementVersion()

	return nil
}

// HasErrors returns true if there are any errors
func (h *ImportHistory) HasErrors() bool {
	return len(h.ErrorDetails) > 0
}

// MarshalErrorDetails serializes the error details into ErrorDetailsRaw for
// persistence.
func (h *ImportHistory) MarshalErrorDetails() error {
	if len(h.ErrorDetails) == 0 {
		h.ErrorDetailsRaw = "[]"
		return nil
	}
	data, err := json.Marshal(h.ErrorDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal error details: %w", err)
	}
	h.ErrorDetailsRaw = string(data)
	return nil
}

// UnmarshalErrorDetails restores the error details from ErrorDetailsRaw.
func (h *ImportHistory) UnmarshalErrorDetails() error {
	if h.ErrorDetailsRaw == "" || h.ErrorDetailsRaw == "[]" {
		h.ErrorDetails = make([]ImportErrorDetail, 0)
		return nil
	}
	var errs []ImportErrorDetail
	if err := json.Unmarshal([]byte(h.ErrorDetailsRaw), &errs); err != nil {
		return fmt.Errorf("failed to unmarshal error details: %w", err)
	}
	h.ErrorDetails = errs
	return nil
}

// SuccessRate returns the success rate as a percentage (0-100)
func (h *ImportHistory) SuccessRate() float64 {
	if h.TotalRows == 0 {
		return 0
	}
	return float64(h.SuccessRows+h.UpdatedRows) / float64(h.TotalRows) * 100
}

// Duration returns how long the import ran. Zero if it never started; for a
// run still in progress the duration is measured up to now.
func (h *ImportHistory) Duration() time.Duration {
	if h.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return end.Sub(*h.StartedAt)
}
