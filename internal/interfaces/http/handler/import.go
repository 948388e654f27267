package handler

import (
	"github.com/gin-gonic/gin"

	importapp "github.com/shopstack/backend/internal/application/import"
	"github.com/shopstack/backend/internal/domain/bulk"
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/interfaces/http/dto"
)

// maxImportFileSize caps uploaded CSV files at 10 MiB
const maxImportFileSize = 10 << 20

// ImportHandler handles CSV bulk import endpoints
type ImportHandler struct {
	BaseHandler
	productImport  *importapp.ProductImportService
	customerImport *importapp.CustomerImportService
	historyService *importapp.ImportHistoryService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(
	productImport *importapp.ProductImportService,
	customerImport *importapp.CustomerImportService,
	historyService *importapp.ImportHistoryService,
) *ImportHandler {
	return &ImportHandler{
		productImport:  productImport,
		customerImport: customerImport,
		historyService: historyService,
	}
}

// ImportProducts handles POST /imports/products
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' form field")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.BadRequest(c, "File exceeds the maximum allowed size")
		return
	}

	mode := bulk.ConflictMode(c.DefaultPostForm("conflict_mode", string(bulk.ConflictModeSkip)))
	if !mode.IsValid() {
		h.BadRequest(c, "conflict_mode must be one of: skip, update, fail")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Cannot open uploaded file")
		return
	}
	defer file.Close()

	result, err := h.productImport.Import(c.Request.Context(), fileHeader.Filename, fileHeader.Size, file, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ImportCustomers handles POST /imports/customers
func (h *ImportHandler) ImportCustomers(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' form field")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.BadRequest(c, "File exceeds the maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Cannot open uploaded file")
		return
	}
	defer file.Close()

	result, err := h.customerImport.Import(c.Request.Context(), fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List handles GET /imports
func (h *ImportHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	if entityType := c.Query("entity_type"); entityType != "" {
		filter.Filters = map[string]interface{}{"entity_type": entityType}
	}

	result, err := h.historyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetByID handles GET /imports/:id
func (h *ImportHandler) GetByID(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid import ID format")
		return
	}

	resp, err := h.historyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
