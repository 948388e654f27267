package bulk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportEntityType_IsValid(t *testing.T) {
	tests := []struct {
		name       string
		entityType ImportEntityType
		want       bool
	}{
		{"products", ImportEntityProducts, true},
		{"customers", ImportEntityCustomers, true},
		{"invalid", ImportEntityType("invalid"), false},
		{"empty", ImportEntityType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entityType.IsValid())
		})
	}
}

func TestImportStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status ImportStatus
		want   bool
	}{
		{"pending", ImportStatusPending, false},
		{"processing", ImportStatusProcessing, false},
		{"completed", ImportStatusCompleted, true},
		{"failed", ImportStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}

func TestNewImportHistory(t *testing.T) {
	h, err := NewImportHistory(ImportEntityProducts, "products.csv", 1024, ConflictModeSkip)
	require.NoError(t, err)

	assert.Equal(t, ImportEntityProducts, h.EntityType)
	assert.Equal(t, "products.csv", h.FileName)
	assert.Equal(t, int64(1024), h.FileSize)
	assert.Equal(t, ImportStatusPending, h.Status)
	assert.Equal(t, ConflictModeSkip, h.ConflictMode)
	assert.Empty(t, h.ErrorDetails)
}

func TestNewImportHistory_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		entityType ImportEntityType
		fileName   string
		fileSize   int64
		mode       ConflictMode
	}{
		{"bad entity type", ImportEntityType("warehouses"), "w.csv", 10, ConflictModeSkip},
		{"empty file name", ImportEntityProducts, "", 10, ConflictModeSkip},
		{"negative file size", ImportEntityProducts, "p.csv", -1, ConflictModeSkip},
		{"bad conflict mode", ImportEntityProducts, "p.csv", 10, ConflictMode("merge")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImportHistory(tt.entityType, tt.fileName, tt.fileSize, tt.mode)
			assert.Error(t, err)
		})
	}
}

func TestImportHistory_StartProcessing(t *testing.T) {
	h, err := NewImportHistory(ImportEntityProducts, "products.csv", 512, ConflictModeUpdate)
	require.NoError(t, err)

	require.NoError(t, h.StartProcessing(50))

	assert.Equal(t, ImportStatusProcessing, h.Status)
	assert.Equal(t, 50, h.TotalRows)
	assert.NotNil(t, h.StartedAt)

	// Second start is rejected
	assert.Error(t, h.StartProcessing(50))
}

func TestImportHistory_Complete(t *testing.T) {
	h, err := NewImportHistory(ImportEntityCustomers, "customers.csv", 256, ConflictModeSkip)
	require.NoError(t, err)
	require.NoError(t, h.StartProcessing(10))

	errs := []ImportErrorDetail{
		{Row: 3, Column: "phone", Code: "ERR_IMPORT_REQUIRED_FIELD", Message: "field 'phone' is required"},
	}
	require.NoError(t, h.Complete(7, 1, 2, 0, errs))

	assert.Equal(t, ImportStatusCompleted, h.Status)
	assert.Equal(t, 7, h.SuccessRows)
	assert.Equal(t, 1, h.ErrorRows)
	assert.Equal(t, 2, h.SkippedRows)
	assert.True(t, h.HasErrors())
	assert.NotNil(t, h.CompletedAt)
	assert.InDelta(t, 70.0, h.SuccessRate(), 0.001)
}

func TestImportHistory_Complete_AllRowsFailed(t *testing.T) {
	h, err := NewImportHistory(ImportEntityProducts, "products.csv", 128, ConflictModeFail)
	require.NoError(t, err)
	require.NoError(t, h.StartProcessing(3))

	errs := []ImportErrorDetail{
		{Row: 2, Code: "ERR_IMPORT_INVALID_TYPE", Message: "expected decimal"},
		{Row: 3, Code: "ERR_IMPORT_INVALID_TYPE", Message: "expected decimal"},
		{Row: 4, Code: "ERR_IMPORT_INVALID_TYPE", Message: "expected decimal"},
	}
	require.NoError(t, h.Complete(0, 3, 0, 0, errs))

	assert.Equal(t, ImportStatusFailed, h.Status)
}

func TestImportHistory_Complete_RequiresProcessing(t *testing.T) {
	h, err := NewImportHistory(ImportEntityProducts, "products.csv", 128, ConflictModeSkip)
	require.NoError(t, err)

	assert.Error(t, h.Complete(1, 0, 0, 0, nil))
}

func TestImportHistory_Fail(t *testing.T) {
	h, err := NewImportHistory(ImportEntityProducts, "products.csv", 128, ConflictModeSkip)
	require.NoError(t, err)
	require.NoError(t, h.StartProcessing(5))

	require.NoError(t, h.Fail([]ImportErrorDetail{{Row: 1, Code: "ERR_IMPORT_MISSING_HEADER", Message: "missing header"}}))
	assert.Equal(t, ImportStatusFailed, h.Status)

	// Terminal states cannot fail again
	assert.Error(t, h.Fail(nil))
}

func TestImportHistory_ErrorDetailsRoundTrip(t *testing.T) {
	h, err := NewImportHistory(ImportEntityProducts, "products.csv", 64, ConflictModeSkip)
	require.NoError(t, err)

	h.ErrorDetails = []ImportErrorDetail{
		{Row: 2, Column: "sku", Code: "ERR_IMPORT_DUPLICATE_IN_DB", Message: "already exists", Value: "INK-001"},
	}
	require.NoError(t, h.MarshalErrorDetails())
	assert.Contains(t, h.ErrorDetailsRaw, "INK-001")

	h.ErrorDetails = nil
	require.NoError(t, h.UnmarshalErrorDetails())
	require.Len(t, h.ErrorDetails, 1)
	assert.Equal(t, "sku", h.ErrorDetails[0].Column)
}

func TestImportHistory_EmptyErrorDetails(t *testing.T) {
	h, err := NewImportHistory(ImportEntityProducts, "products.csv", 64, ConflictModeSkip)
	require.NoError(t, err)

	require.NoError(t, h.MarshalErrorDetails())
	assert.Equal(t, "[]", h.ErrorDetailsRaw)

	require.NoError(t, h.UnmarshalErrorDetails())
	assert.Empty(t, h.ErrorDetails)
}
