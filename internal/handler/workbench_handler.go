package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/middleware"
	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/service"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// multipartOverhead is allowed on top of the file size for boundaries and headers.
const multipartOverhead = 64 << 10

// PredictionHistory lists recorded prediction runs.
type PredictionHistory interface {
	ListByOwner(ctx context.Context, shopkeeperID uuid.UUID, page, limit int) ([]models.PredictionRun, int, error)
}

// SalesIngester keeps the dated rows of accepted uploads for the dashboard.
type SalesIngester interface {
	IngestUpload(ctx context.Context, shopkeeperID uuid.UUID, file *models.UploadedFile) (int, error)
}

// WorkbenchHandler serves the shopkeeper's upload slots and chart.
type WorkbenchHandler struct {
	workbench *service.WorkbenchService
	products  *service.ProductService
	history   PredictionHistory
	sales     SalesIngester
	maxBytes  int64
}

// NewWorkbenchHandler creates a new WorkbenchHandler. sales may be nil.
func NewWorkbenchHandler(workbench *service.WorkbenchService, products *service.ProductService, history PredictionHistory, sales SalesIngester, maxBytes int64) *WorkbenchHandler {
	return &WorkbenchHandler{
		workbench: workbench,
		products:  products,
		history:   history,
		sales:     sales,
		maxBytes:  maxBytes,
	}
}

// GetWorkbench handles GET /v1/shopkeeper/workbench
func (h *WorkbenchHandler) GetWorkbench(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	utils.Success(c, 200, "Workbench retrieved", h.workbench.Workbench(owner))
}

// GetChart handles GET /v1/shopkeeper/workbench/chart
func (h *WorkbenchHandler) GetChart(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	utils.Success(c, 200, "Chart retrieved", h.workbench.Chart(owner))
}

// AddSlot handles POST /v1/shopkeeper/workbench/slots
func (h *WorkbenchHandler) AddSlot(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	utils.Success(c, 201, "Slot added", h.workbench.AddSlot(owner))
}

// RemoveSlot handles DELETE /v1/shopkeeper/workbench/slots/:slotId
func (h *WorkbenchHandler) RemoveSlot(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	if err := h.workbench.RemoveSlot(owner, c.Param("slotId")); err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Slot removed", nil)
}

// SelectFile handles POST /v1/shopkeeper/workbench/slots/:slotId/file
// The upload is read from the multipart field "file". A request without a
// file leaves the slot unchanged.
func (h *WorkbenchHandler) SelectFile(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	slotID := c.Param("slotId")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	file, err := h.readUpload(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(c, 413, "FILE_TOO_LARGE", "File exceeds the maximum size of "+strconv.FormatInt(h.maxBytes, 10)+" bytes")
			return
		}
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid multipart upload")
		return
	}

	slot, err := h.workbench.SelectFile(owner, slotID, file)
	if err != nil {
		handleError(c, err)
		return
	}
	if file == nil {
		utils.Success(c, 200, "No file selected, slot unchanged", slot)
		return
	}

	// A file the dashboard cannot read is still a valid slot selection.
	if h.sales != nil {
		if _, err := h.sales.IngestUpload(c.Request.Context(), owner, file); err != nil {
			log.Warn().Err(err).Str("slot_id", slotID).Str("file", file.Name).Msg("sales rows not ingested")
		}
	}
	utils.Success(c, 200, "File selected", slot)
}

func (h *WorkbenchHandler) readUpload(c *gin.Context) (*models.UploadedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	if header.Size > h.maxBytes {
		return nil, &http.MaxBytesError{Limit: h.maxBytes}
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &models.UploadedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// Predict handles POST /v1/shopkeeper/workbench/slots/:slotId/predict
// The response is sent once the prediction finishes; progress is also
// pushed over SSE.
func (h *WorkbenchHandler) Predict(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	slot, err := h.workbench.RequestPrediction(c.Request.Context(), owner, c.Param("slotId"))
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Prediction completed", gin.H{
		"slot":  slot,
		"chart": h.workbench.Chart(owner),
	})
}

// ApplyPredictions handles POST /v1/shopkeeper/workbench/slots/:slotId/apply
func (h *WorkbenchHandler) ApplyPredictions(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID
	slot, err := h.workbench.Slot(owner, c.Param("slotId"))
	if err != nil {
		handleError(c, err)
		return
	}
	if len(slot.Predictions) == 0 {
		utils.Error(c, 400, "NO_PREDICTIONS", "Slot has no predictions to apply")
		return
	}

	result, err := h.products.ApplyPredictions(c.Request.Context(), owner, slot.Predictions)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.Success(c, 200, "Predictions applied", result)
}

// GetHistory handles GET /v1/shopkeeper/predictions/history
func (h *WorkbenchHandler) GetHistory(c *gin.Context) {
	owner := middleware.GetSession(c).AccountID

	page := 1
	limit := 20
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	runs, total, err := h.history.ListByOwner(c.Request.Context(), owner, page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Prediction history retrieved", gin.H{
		"runs": runs,
	}, page, limit, total)
}
