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

// SwapHandler exposes the confidential swap engine
type SwapHandler struct {
	service *services.SwapService
	logger  *logrus.Logger
}

// NewSwapHandler creates the swap handler
func NewSwapHandler(service *services.SwapService, logger *logrus.Logger) *SwapHandler {
	return &SwapHandler{
		service: service,
		logger:  logger,
	}
}

// InitializeHandler performs the one-time engine initialization. The caller
// becomes the authority; repeated calls fail.
func (h *SwapHandler) InitializeHandler(c *gin.Context) {
	var req dto.InitializeSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	cfg, err := h.service.Initialize(c.Request.Context(), req.Authority, req.FeeBps)
	observeSwapOp("initialize", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"config":  cfg,
	})
}

// CreatePoolHandler creates a confidential pool for a token pair
func (h *SwapHandler) CreatePoolHandler(c *gin.Context) {
	var req dto.CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	pool, err := h.service.CreatePool(c.Request.Context(), userAddress(c), req.TokenA, req.TokenB)
	observeSwapOp("create_pool", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"pool":    pool,
	})
}

// AddLiquidityHandler deposits both sides into a pool
func (h *SwapHandler) AddLiquidityHandler(c *gin.Context) {
	var req dto.AddLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	position, err := h.service.AddLiquidity(c.Request.Context(), &services.AddLiquidityInput{
		Caller:      userAddress(c),
		PoolID:      req.PoolID,
		AmountA:     req.AmountA,
		AmountB:     req.AmountB,
		CommitmentA: req.CommitmentA,
		CommitmentB: req.CommitmentB,
		ProofA:      req.ProofA,
		ProofB:      req.ProofB,
	})
	observeSwapOp("add_liquidity", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"position": position,
	})
}

// RemoveLiquidityHandler burns liquidity shares back into both tokens
func (h *SwapHandler) RemoveLiquidityHandler(c *gin.Context) {
	var req dto.RemoveLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	pool, err := h.service.RemoveLiquidity(c.Request.Context(), userAddress(c), req.PoolID, req.Liquidity)
	observeSwapOp("remove_liquidity", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pool":    pool,
	})
}

// CommitSwapHandler records a hidden swap intent
func (h *SwapHandler) CommitSwapHandler(c *gin.Context) {
	var req dto.CommitSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	commitment, err := h.service.CommitSwap(c.Request.Context(), &services.CommitSwapInput{
		Caller:           userAddress(c),
		PoolID:           req.PoolID,
		InputCommitment:  req.InputCommitment,
		OutputCommitment: req.OutputCommitment,
	})
	observeSwapOp("commit", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"commitment": commitment,
	})
}

// ExecuteSwapHandler reveals and settles a committed swap
func (h *SwapHandler) ExecuteSwapHandler(c *gin.Context) {
	var req dto.ExecuteSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	commitment, amountOut, err := h.service.ExecuteSwap(c.Request.Context(), &services.ExecuteSwapInput{
		Caller:       userAddress(c),
		CommitmentID: req.CommitmentID,
		AmountIn:     req.AmountIn,
		MinAmountOut: req.MinAmountOut,
		AToB:         req.AToB,
		Proof:        req.Proof,
	})
	observeSwapOp("execute", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"commitment_id": commitment.ID,
		"amount_out":    amountOut,
	}).Info("Swap executed")

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"commitment": commitment,
		"amount_out": amountOut,
	})
}

// CancelSwapHandler abandons an unexecuted commitment after its window
func (h *SwapHandler) CancelSwapHandler(c *gin.Context) {
	var req dto.CancelSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	commitment, err := h.service.CancelSwap(c.Request.Context(), userAddress(c), req.CommitmentID)
	observeSwapOp("cancel", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"commitment": commitment,
	})
}

// GetPoolHandler returns one pool by id
func (h *SwapHandler) GetPoolHandler(c *gin.Context) {
	pool, err := h.service.GetPool(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pool":    pool,
	})
}

// ListPoolsHandler returns pools in pages
func (h *SwapHandler) ListPoolsHandler(c *gin.Context) {
	var query dto.PaginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}

	pools, total, err := h.service.ListPools(c.Request.Context(), query.Page, query.PageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pools":   pools,
		"total":   total,
	})
}

// GetCommitmentHandler returns one swap commitment by id
func (h *SwapHandler) GetCommitmentHandler(c *gin.Context) {
	commitment, err := h.service.GetCommitment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"commitment": commitment,
	})
}

// ListPositionsHandler returns the caller's liquidity positions
func (h *SwapHandler) ListPositionsHandler(c *gin.Context) {
	positions, err := h.service.ListPositions(c.Request.Context(), userAddress(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"positions": positions,
	})
}

// GetConfigHandler returns the engine configuration
func (h *SwapHandler) GetConfigHandler(c *gin.Context) {
	cfg, err := h.service.GetConfig(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"config":  cfg,
	})
}

// PauseHandler halts swaps and liquidity additions
func (h *SwapHandler) PauseHandler(c *gin.Context) {
	start := time.Now()
	err := h.service.Pause(c.Request.Context(), swapAuthority())
	observeSwapOp("pause", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.Warn("Swap engine paused")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnpauseHandler resumes a paused engine
func (h *SwapHandler) UnpauseHandler(c *gin.Context) {
	start := time.Now()
	err := h.service.Unpause(c.Request.Context(), swapAuthority())
	observeSwapOp("unpause", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.logger.Info("Swap engine unpaused")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateFeeHandler changes the swap fee
func (h *SwapHandler) UpdateFeeHandler(c *gin.Context) {
	var req dto.UpdateSwapFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	start := time.Now()
	cfg, err := h.service.UpdateSwapFee(c.Request.Context(), swapAuthority(), req.FeeBps)
	observeSwapOp("update_fee", start, err)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"config":  cfg,
	})
}

// swapAuthority returns the operator address admin operations act as. The
// engine still verifies it against the stored authority.
func swapAuthority() string {
	if config.AppConfig == nil {
		return ""
	}
	return config.AppConfig.Swap.Authority
}
