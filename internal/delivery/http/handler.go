package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/productpicker/backend/internal/domain"
	"github.com/productpicker/backend/internal/usecase"
	"github.com/shopspring/decimal"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	picker *usecase.PickerService
}

// NewHandler creates a new HTTP handler
func NewHandler(picker *usecase.PickerService) *Handler {
	return &Handler{picker: picker}
}

type errorResponse struct {
	Error     string      `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
	Fields    FieldErrors `json:"fields,omitempty"`
}

// rowResponse adds the rendered labels to a row
type rowResponse struct {
	domain.Row
	TriggerLabel  string `json:"triggerLabel"`
	DiscountLabel string `json:"discountLabel,omitempty"`
}

type rowsResponse struct {
	Rows []rowResponse `json:"rows"`
}

type reorderRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

type moveRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

type discountRequest struct {
	Kind  string          `json:"kind" binding:"required,oneof=percentage flat"`
	Value decimal.Decimal `json:"value"`
}

type queryRequest struct {
	Search string `json:"search" binding:"max=256"`
}

type productRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Checked   *bool `json:"checked" binding:"required"`
}

type variantRequest struct {
	VariantID int64 `json:"variantId" binding:"required"`
	Checked   *bool `json:"checked" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "productpicker-backend",
		"version": "1.0.0",
	})
}

// ListRows returns all rows in order
func (h *Handler) ListRows(c *gin.Context) {
	c.JSON(http.StatusOK, toRowsResponse(h.picker.Rows()))
}

// AddRow appends an empty row
func (h *Handler) AddRow(c *gin.Context) {
	c.JSON(http.StatusCreated, toRowResponse(h.picker.AddRow()))
}

// ReorderRows applies a full permutation of row ids
func (h *Handler) ReorderRows(c *gin.Context) {
	var req reorderRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.picker.Reorder(req.IDs); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRowsResponse(h.picker.Rows()))
}

// MoveRow moves one row to a new index
func (h *Handler) MoveRow(c *gin.Context) {
	var req moveRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.picker.MoveTo(c.Param("id"), *req.Index); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRowsResponse(h.picker.Rows()))
}

// SetDiscount sets the row's discount annotation
func (h *Handler) SetDiscount(c *gin.Context) {
	var req discountRequest
	if !h.bind(c, &req) {
		return
	}
	row, err := h.picker.SetDiscount(c.Param("id"), domain.Discount{
		Kind:  domain.DiscountKind(req.Kind),
		Value: req.Value,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRowResponse(row))
}

// ClearDiscount removes the row's discount annotation
func (h *Handler) ClearDiscount(c *gin.Context) {
	row, err := h.picker.ClearDiscount(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRowResponse(row))
}

// OpenSession opens the row's dialog and starts the initial search
func (h *Handler) OpenSession(c *gin.Context) {
	sess, err := h.picker.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondSession(c, sess)
}

// GetSession returns the row's dialog state
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.picker.Session(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondSession(c, sess)
}

// DiscardSession closes the row's dialog without committing
func (h *Handler) DiscardSession(c *gin.Context) {
	if err := h.picker.Discard(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetQuery changes the dialog's search text
func (h *Handler) SetQuery(c *gin.Context) {
	var req queryRequest
	if !h.bind(c, &req) {
		return
	}
	rowID := c.Param("id")
	if err := h.picker.SetQuery(rowID, req.Search); err != nil {
		h.fail(c, err)
		return
	}
	h.respondSessionOf(c, rowID)
}

// FetchNext loads the next page of the dialog's search
func (h *Handler) FetchNext(c *gin.Context) {
	rowID := c.Param("id")
	if err := h.picker.FetchNext(rowID); err != nil {
		h.fail(c, err)
		return
	}
	h.respondSessionOf(c, rowID)
}

// ChooseProduct checks or unchecks a product
func (h *Handler) ChooseProduct(c *gin.Context) {
	var req productRequest
	if !h.bind(c, &req) {
		return
	}
	rowID := c.Param("id")
	if err := h.picker.ChooseProduct(rowID, req.ProductID, *req.Checked); err != nil {
		h.fail(c, err)
		return
	}
	h.respondSessionOf(c, rowID)
}

// ToggleVariant checks or unchecks a variant of the chosen product
func (h *Handler) ToggleVariant(c *gin.Context) {
	var req variantRequest
	if !h.bind(c, &req) {
		return
	}
	rowID := c.Param("id")
	if err := h.picker.ToggleVariant(rowID, req.VariantID, *req.Checked); err != nil {
		h.fail(c, err)
		return
	}
	h.respondSessionOf(c, rowID)
}

// CommitSession writes the pending selection into the row and closes the dialog
func (h *Handler) CommitSession(c *gin.Context) {
	row, err := h.picker.Confirm(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRowResponse(row))
}

func (h *Handler) respondSessionOf(c *gin.Context, rowID string) {
	sess, err := h.picker.Session(rowID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respondSession(c, sess)
}

// respondSession writes the dialog state. With ?wait=true it first waits for
// in-flight fetches to settle, bounded by the request context.
func (h *Handler) respondSession(c *gin.Context, sess *usecase.Session) {
	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		if err := waitSettled(c.Request.Context(), sess); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, sess.View())
}

func waitSettled(ctx context.Context, sess *usecase.Session) error {
	select {
	case <-sess.Settled():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error:     domain.ErrInvalidRequest.Error(),
			RequestID: GetRequestID(c),
			Fields:    FromBindError(err, dst),
		})
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), errorResponse{
		Error:     err.Error(),
		RequestID: GetRequestID(c),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionNotOpen):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInvalidDiscount),
		errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func toRowResponse(row domain.Row) rowResponse {
	resp := rowResponse{Row: row, TriggerLabel: row.TriggerLabel()}
	if row.Discount != nil {
		resp.DiscountLabel = row.Discount.Label()
	}
	return resp
}

func toRowsResponse(rows []domain.Row) rowsResponse {
	out := rowsResponse{Rows: make([]rowResponse, len(rows))}
	for i, r := range rows {
		out.Rows[i] = toRowResponse(r)
	}
	return out
}
