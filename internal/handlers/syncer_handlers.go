// Package handlers exposes the operational HTTP surface: health,
// ticket lookups and manual sync triggers. The public read API lives
// in a separate service; nothing here is client-facing.
package handlers

import (
	"errors"
	"net/http"

	"bridge-syncer/internal/clients"
	"bridge-syncer/internal/models"
	"bridge-syncer/internal/repository"
	"bridge-syncer/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncerHandler bundles the dependencies of the admin endpoints
type SyncerHandler struct {
	tickets repository.TicketRepository
	chains  repository.ChainRepository
	tokens  repository.TokenRepository
	hubSync *services.HubSyncService
	hub     clients.HubClient
	log     *logrus.Entry
}

// NewSyncerHandler creates a new SyncerHandler instance
func NewSyncerHandler(
	tickets repository.TicketRepository,
	chains repository.ChainRepository,
	tokens repository.TokenRepository,
	hubSync *services.HubSyncService,
	hub clients.HubClient,
	log *logrus.Entry,
) *SyncerHandler {
	return &SyncerHandler{
		tickets: tickets,
		chains:  chains,
		tokens:  tokens,
		hubSync: hubSync,
		hub:     hub,
		log:     log.WithField("component", "handlers"),
	}
}

// Health reports liveness
func (h *SyncerHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetTicket returns a stored ticket, falling back to its tombstone
func (h *SyncerHandler) GetTicket(c *gin.Context) {
	ticketID := c.Param("ticket_id")

	ticket, err := h.tickets.GetByID(c.Request.Context(), ticketID)
	if err == nil {
		c.JSON(http.StatusOK, ticket)
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		h.log.WithError(err).Error("ticket lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	tombstone, err := h.tickets.GetTombstone(c.Request.Context(), ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("tombstone lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, tombstone)
}

// ListChains returns all synced chains
func (h *SyncerHandler) ListChains(c *gin.Context) {
	chains, err := h.chains.List(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("chain list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, chains)
}

// ListTokens returns all synced tokens
func (h *SyncerHandler) ListTokens(c *gin.Context) {
	tokens, err := h.tokens.List(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("token list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// TriggerSync runs one hub sync pass outside the schedule
func (h *SyncerHandler) TriggerSync(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.hubSync.SyncChains(ctx); err != nil {
		h.log.WithError(err).Error("manual chain sync failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if err := h.hubSync.SyncTokens(ctx); err != nil {
		h.log.WithError(err).Error("manual token sync failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if err := h.hubSync.SyncTickets(ctx); err != nil {
		h.log.WithError(err).Error("manual ticket sync failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "synced"})
}

// sendTicketRequest is the resubmission payload
type sendTicketRequest struct {
	TicketID string  `json:"ticket_id" binding:"required"`
	SrcChain string  `json:"src_chain" binding:"required"`
	DstChain string  `json:"dst_chain" binding:"required"`
	Action   string  `json:"action" binding:"required"`
	Token    string  `json:"token" binding:"required"`
	Amount   string  `json:"amount" binding:"required"`
	Sender   *string `json:"sender,omitempty"`
	Receiver string  `json:"receiver" binding:"required"`
}

// SendTicket forwards a resubmit ticket to the hub
func (h *SyncerHandler) SendTicket(c *gin.Context) {
	var req sendTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket := &models.Ticket{
		TicketID:   req.TicketID,
		TicketType: models.TicketTypeResubmit,
		SrcChain:   req.SrcChain,
		DstChain:   req.DstChain,
		Action:     models.TicketAction(req.Action),
		Token:      req.Token,
		Amount:     req.Amount,
		Sender:     req.Sender,
		Receiver:   req.Receiver,
		Status:     models.TicketStatusWaitingForConfirmByDest,
	}
	if err := h.hub.SendTicket(c.Request.Context(), ticket); err != nil {
		h.log.WithError(err).Error("send ticket failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "submitted", "ticket_id": req.TicketID})
}
