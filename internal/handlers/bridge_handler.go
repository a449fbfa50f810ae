package handlers

import (
	"net/http"
	"time"

	"zkdex-backend/internal/config"
	"zkdex-backend/internal/dto"
	"zkdex-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BridgeHandler exposes the privacy bridge engine
type BridgeHandler struct {
	service *services.BridgeService
	logger  *logrus.Logger
}

// NewBridgeHandler creates the bridge handler
func NewBridgeHandler(service *services.BridgeService, logger *logrus.Logger) *BridgeHandler {
	return &BridgeHandler{
		service: service,
		logger:  logger,
	}
}

// InitializeHandler performs the one-time engine initialization
func (h *BridgeHandler) InitializeHandler(c *gin.Context) {
	var req dto.InitializeBridgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	cfg, err := h.service.Initialize(c.Request.Context(), req.Authority, req.MinConfirmations, req.FeeBps)
	observeBridgeOp("initialize", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"config":  cfg,
	})
}

// LockAssetsHandler escrows funds for a cross-chain transfer
func (h *BridgeHandler) LockAssetsHandler(c *gin.Context) {
	var req dto.LockAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	tx, err := h.service.LockAssets(c.Request.Context(), &services.LockAssetsInput{
		Sender:              userAddress(c),
		Amount:              req.Amount,
		TargetChain:         req.TargetChain,
		RecipientCommitment: req.RecipientCommitment,
	})
	observeBridgeOp("lock", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"tx_id":        tx.ID,
		"target_chain": tx.TargetChain,
	}).Info("Assets locked")

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"transaction": tx,
	})
}

// RelayHandler records a relayer confirmation for a locked transaction. The
// caller must be a registered active relayer.
func (h *BridgeHandler) RelayHandler(c *gin.Context) {
	var req dto.RelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	tx, err := h.service.RelayTransaction(c.Request.Context(), userAddress(c), req.TxID)
	observeBridgeOp("relay", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": tx,
	})
}

// UnlockAssetsHandler releases escrowed funds to the revealed recipient
func (h *BridgeHandler) UnlockAssetsHandler(c *gin.Context) {
	var req dto.UnlockAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	tx, err := h.service.UnlockAssets(c.Request.Context(), &services.UnlockAssetsInput{
		Caller:    userAddress(c),
		TxID:      req.TxID,
		Recipient: req.Recipient,
		Nullifier: req.Nullifier,
		Proof:     req.Proof,
	})
	observeBridgeOp("unlock", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.WithField("tx_id", tx.ID).Info("Assets unlocked")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": tx,
	})
}

// RefundHandler returns locked funds to the sender after the refund window
func (h *BridgeHandler) RefundHandler(c *gin.Context) {
	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	tx, err := h.service.RefundTransaction(c.Request.Context(), userAddress(c), req.TxID)
	observeBridgeOp("refund", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.WithField("tx_id", tx.ID).Info("Transaction refunded")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": tx,
	})
}

// FailTransactionHandler marks a transaction as unrecoverable
func (h *BridgeHandler) FailTransactionHandler(c *gin.Context) {
	var req dto.FailTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	tx, err := h.service.FailTransaction(c.Request.Context(), bridgeAuthority(), req.TxID, req.Reason)
	observeBridgeOp("fail", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"tx_id":  tx.ID,
		"reason": req.Reason,
	}).Warn("Transaction failed by authority")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": tx,
	})
}

// GetTransactionHandler returns one bridge transaction by id
func (h *BridgeHandler) GetTransactionHandler(c *gin.Context) {
	tx, err := h.service.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"transaction": tx,
	})
}

// ListTransactionsHandler returns the caller's bridge transactions
func (h *BridgeHandler) ListTransactionsHandler(c *gin.Context) {
	txs, err := h.service.ListTransactionsBySender(c.Request.Context(), userAddress(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": txs,
	})
}

// StatusHandler returns the bridge configuration and relayer count
func (h *BridgeHandler) StatusHandler(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  status,
	})
}

// ListRelayersHandler returns all registered relayers
func (h *BridgeHandler) ListRelayersHandler(c *gin.Context) {
	relayers, err := h.service.ListRelayers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"relayers": relayers,
	})
}

// AddRelayerHandler registers a relayer authority
func (h *BridgeHandler) AddRelayerHandler(c *gin.Context) {
	var req dto.AddRelayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	relayer, err := h.service.AddRelayer(c.Request.Context(), bridgeAuthority(), req.Authority)
	observeBridgeOp("add_relayer", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.WithField("relayer", req.Authority).Info("Relayer registered")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"relayer": relayer,
	})
}

// SlashRelayerHandler deactivates a misbehaving relayer
func (h *BridgeHandler) SlashRelayerHandler(c *gin.Context) {
	start := time.Now()
	relayer, err := h.service.Slash(c.Request.Context(), bridgeAuthority(), c.Param("authority"))
	observeBridgeOp("slash", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.WithField("relayer", c.Param("authority")).Warn("Relayer slashed")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"relayer": relayer,
	})
}

// UpdateFeeHandler changes the bridge fee
func (h *BridgeHandler) UpdateFeeHandler(c *gin.Context) {
	var req dto.UpdateBridgeFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	cfg, err := h.service.UpdateFee(c.Request.Context(), bridgeAuthority(), req.FeeBps)
	observeBridgeOp("update_fee", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"config":  cfg,
	})
}

// PauseHandler halts locks and unlocks
func (h *BridgeHandler) PauseHandler(c *gin.Context) {
	start := time.Now()
	err := h.service.Pause(c.Request.Context(), bridgeAuthority())
	observeBridgeOp("pause", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.Warn("Bridge paused")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnpauseHandler resumes a paused bridge
func (h *BridgeHandler) UnpauseHandler(c *gin.Context) {
	start := time.Now()
	err := h.service.Unpause(c.Request.Context(), bridgeAuthority())
	observeBridgeOp("unpause", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.Info("Bridge unpaused")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// bridgeAuthority returns the operator address admin operations act as. The
// engine still verifies it against the stored authority.
func bridgeAuthority() string {
	if config.AppConfig == nil {
		return ""
	}
	return config.AppConfig.Bridge.Authority
}
