package importapp

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/bulk"
	csvimport "github.com/shopstack/backend/internal/infrastructure/import"
)

// maxImportErrors caps how many per-row errors are collected and reported
// for a single import run.
const maxImportErrors = 100

// ImportResult summarizes one completed import run.
type ImportResult struct {
	HistoryID    uuid.UUID            `json:"history_id"`
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	UpdatedRows  int                  `json:"updated_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// ImportHistoryResponse is the API representation of an import history record.
type ImportHistoryResponse struct {
	ID           uuid.UUID                `json:"id"`
	EntityType   bulk.ImportEntityType    `json:"entity_type"`
	FileName     string                   `json:"file_name"`
	FileSize     int64                    `json:"file_size"`
	TotalRows    int                      `json:"total_rows"`
	SuccessRows  int                      `json:"success_rows"`
	ErrorRows    int                      `json:"error_rows"`
	SkippedRows  int                      `json:"skipped_rows"`
	UpdatedRows  int                      `json:"updated_rows"`
	ConflictMode bulk.ConflictMode        `json:"conflict_mode"`
	Status       bulk.ImportStatus        `json:"status"`
	SuccessRate  float64                  `json:"success_rate"`
	ErrorDetails []bulk.ImportErrorDetail `json:"error_details,omitempty"`
	StartedAt    *time.Time               `json:"started_at,omitempty"`
	CompletedAt  *time.Time               `json:"completed_at,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

// toHistoryResponse converts an ImportHistory to its API representation
func toHistoryResponse(h *bulk.ImportHistory) *ImportHistoryResponse {
	return &ImportHistoryResponse{
		ID:           h.ID,
		EntityType:   h.EntityType,
		FileName:     h.FileName,
		FileSize:     h.FileSize,
		TotalRows:    h.TotalRows,
		SuccessRows:  h.SuccessRows,
		ErrorRows:    h.ErrorRows,
		SkippedRows:  h.SkippedRows,
		UpdatedRows:  h.UpdatedRows,
		ConflictMode: h.ConflictMode,
		Status:       h.Status,
		SuccessRate:  h.SuccessRate(),
		ErrorDetails: h.ErrorDetails,
		StartedAt:    h.StartedAt,
		CompletedAt:  h.CompletedAt,
		CreatedAt:    h.CreatedAt,
	}
}

// toErrorDetails converts collected row errors for history persistence
func toErrorDetails(errs []csvimport.RowError) []bulk.ImportErrorDetail {
	details := make([]bulk.ImportErrorDetail, 0, len(errs))
	for _, e := range errs {
		details = append(details, bulk.ImportErrorDetail{
			Row:     e.Row,
			Column:  e.Column,
			Code:    e.Code,
			Message: e.Message,
			Value:   e.Value,
		})
	}
	return details
}
