package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"token_sweeper/internal/app/port"
	"token_sweeper/internal/app/service"
	"token_sweeper/internal/domain/entity"
)

// APISessionResponse is the response body for the session view endpoint.
type APISessionResponse struct {
	WalletAddress string                        `json:"walletAddress"`
	Snapshot      *entity.HoldingsSnapshot      `json:"snapshot"`
	Selection     map[string]bool               `json:"selection"`
	Summary       port.SelectionSummary         `json:"summary"`
	LastReport    *entity.ConversionBatchReport `json:"lastReport,omitempty"`
	ServiceErrors []entity.PipelineError        `json:"service_errors,omitempty"`
}

// SessionHandler handles HTTP requests against the wallet sweep session.
type SessionHandler struct {
	session port.SweepSession
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(session port.SweepSession) *SessionHandler {
	return &SessionHandler{session: session}
}

// GetSessionHandler returns the current snapshot, selection and last report.
func (h *SessionHandler) GetSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, APISessionResponse{
		WalletAddress: h.session.WalletAddress(),
		Snapshot:      h.session.Snapshot(),
		Selection:     h.session.Selection(),
		Summary:       h.session.SelectionSummary(),
		LastReport:    h.session.LastReport(),
		ServiceErrors: h.session.LastErrors(),
	})
}

// RefreshHandler replaces the holdings snapshot.
func (h *SessionHandler) RefreshHandler(c *gin.Context) {
	pipelineErrs, err := h.session.Refresh(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrSessionBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, APISessionResponse{
		WalletAddress: h.session.WalletAddress(),
		Snapshot:      h.session.Snapshot(),
		Selection:     h.session.Selection(),
		Summary:       h.session.SelectionSummary(),
		ServiceErrors: pipelineErrs,
	})
}

// ToggleSelectionHandler flips the selection intent for one asset.
func (h *SessionHandler) ToggleSelectionHandler(c *gin.Context) {
	assetID := c.Param("assetId")
	if !h.session.ToggleSelection(assetID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not in current snapshot", "assetId": assetID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"selection": h.session.Selection(),
		"summary":   h.session.SelectionSummary(),
	})
}

// RunConversionHandler executes one conversion batch over the selected
// holdings and returns the batch report.
func (h *SessionHandler) RunConversionHandler(c *gin.Context) {
	report, err := h.session.RunConversion(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrSessionBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":   report,
		"snapshot": h.session.Snapshot(),
	})
}
