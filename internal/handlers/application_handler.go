package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pocketjobs/pocketjobs-api/internal/dtos"
	"github.com/pocketjobs/pocketjobs-api/internal/models"
	"github.com/pocketjobs/pocketjobs-api/internal/notify"
	"github.com/pocketjobs/pocketjobs-api/internal/services"
)

// bindOptionalJSON decodes the body into dst when one was sent. Empty bodies
// are fine (these endpoints work without one); the ContentLength is not
// consulted because chunked requests report -1 while still carrying a body.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error(), "code": "bad_request"})
	return false
}

type ApplicationHandler struct {
	Apps *services.ApplicationService
	Sink *notify.Sink
	Log  *zap.Logger
}

func NewApplicationHandler(apps *services.ApplicationService, sink *notify.Sink, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{Apps: apps, Sink: sink, Log: log}
}

// Apply is POST /jobs/:id/apply.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req dtos.ApplyRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.Apps.Apply(c.Request.Context(), caller(c), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.dispatch(c, result.Intents)

	c.JSON(http.StatusCreated, result)
}

// Withdraw is POST /applications/:id/withdraw.
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	var req dtos.WithdrawRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	intents, err := h.Apps.Withdraw(c.Request.Context(), caller(c).ID, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.dispatch(c, intents)

	c.JSON(http.StatusOK, gin.H{"status": string(models.ApplicationWithdrawn)})
}

// Accept is POST /applications/:id/accept.
func (h *ApplicationHandler) Accept(c *gin.Context) {
	intents, err := h.Apps.UpdateStatus(c.Request.Context(), caller(c).ID, c.Param("id"), models.ApplicationAccepted)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.dispatch(c, intents)

	c.JSON(http.StatusOK, gin.H{"status": string(models.ApplicationAccepted)})
}

// Reject is POST /applications/:id/reject. Unlike accept this releases the
// reservation when the active holder is turned down.
func (h *ApplicationHandler) Reject(c *gin.Context) {
	var req dtos.RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	intents, err := h.Apps.Reject(c.Request.Context(), caller(c).ID, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.dispatch(c, intents)

	c.JSON(http.StatusOK, gin.H{"status": string(models.ApplicationRejected)})
}

func (h *ApplicationHandler) dispatch(c *gin.Context, intents []services.NotificationIntent) {
	if h.Sink == nil {
		return
	}
	if err := h.Sink.DispatchAll(c.Request.Context(), intents); err != nil {
		// The state change already committed; a lost notification is not
		// worth failing the request over.
		h.Log.Warn("notification dispatch failed", zap.Error(err))
	}
}
