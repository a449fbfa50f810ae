package dto

import "github.com/ethereum/go-ethereum/common/hexutil"

// ==================== Swap DTOs ====================

// InitializeSwapRequest one-time swap engine initialization
type InitializeSwapRequest struct {
	Authority string `json:"authority" binding:"required"` // engine authority address
	FeeBps    uint32 `json:"fee_bps"`                      // swap fee in basis points, max 1000
}

// CreatePoolRequest confidential pool creation request
type CreatePoolRequest struct {
	TokenA string `json:"token_a" binding:"required"`
	TokenB string `json:"token_b" binding:"required"`
}

// AddLiquidityRequest two-sided liquidity deposit. Each commitment must open
// to its plaintext amount, attested by the matching range proof.
type AddLiquidityRequest struct {
	PoolID      string        `json:"pool_id" binding:"required"`
	AmountA     uint64        `json:"amount_a" binding:"required"`
	AmountB     uint64        `json:"amount_b" binding:"required"`
	CommitmentA hexutil.Bytes `json:"commitment_a" binding:"required"`
	CommitmentB hexutil.Bytes `json:"commitment_b" binding:"required"`
	ProofA      hexutil.Bytes `json:"proof_a" binding:"required"`
	ProofB      hexutil.Bytes `json:"proof_b" binding:"required"`
}

// RemoveLiquidityRequest burns liquidity shares back into both tokens
type RemoveLiquidityRequest struct {
	PoolID    string `json:"pool_id" binding:"required"`
	Liquidity uint64 `json:"liquidity" binding:"required"`
}

// CommitSwapRequest records a hidden swap intent
type CommitSwapRequest struct {
	PoolID           string        `json:"pool_id" binding:"required"`
	InputCommitment  hexutil.Bytes `json:"input_commitment" binding:"required"`
	OutputCommitment hexutil.Bytes `json:"output_commitment" binding:"required"`
}

// ExecuteSwapRequest reveals a committed swap inside its timing window
type ExecuteSwapRequest struct {
	CommitmentID string        `json:"commitment_id" binding:"required"`
	AmountIn     uint64        `json:"amount_in" binding:"required"`
	MinAmountOut uint64        `json:"min_amount_out"` // 0 disables the slippage check
	AToB         bool          `json:"a_to_b"`         // trade direction, token A in when true
	Proof        hexutil.Bytes `json:"proof" binding:"required"`
}

// CancelSwapRequest abandons an unexecuted commitment
type CancelSwapRequest struct {
	CommitmentID string `json:"commitment_id" binding:"required"`
}

// UpdateSwapFeeRequest fee change, zero is a legal fee
type UpdateSwapFeeRequest struct {
	FeeBps uint32 `json:"fee_bps"`
}
