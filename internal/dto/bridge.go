package dto

import "github.com/ethereum/go-ethereum/common/hexutil"

// ==================== Bridge DTOs ====================

// InitializeBridgeRequest one-time bridge engine initialization
type InitializeBridgeRequest struct {
	Authority        string `json:"authority" binding:"required"` // engine authority address
	MinConfirmations uint32 `json:"min_confirmations"`            // relayer quorum size
	FeeBps           uint32 `json:"fee_bps"`                      // bridge fee in basis points, max 1000
}

// LockAssetsRequest escrows funds for a cross-chain transfer. The recipient
// on the target chain stays hidden behind the commitment.
type LockAssetsRequest struct {
	Amount              uint64        `json:"amount" binding:"required"`
	TargetChain         uint64        `json:"target_chain" binding:"required"`
	RecipientCommitment hexutil.Bytes `json:"recipient_commitment" binding:"required"`
}

// RelayRequest relayer confirmation of an observed lock
type RelayRequest struct {
	TxID string `json:"tx_id" binding:"required"`
}

// UnlockAssetsRequest releases escrowed funds to the revealed recipient once
// the quorum is met. The nullifier burns the recipient commitment.
type UnlockAssetsRequest struct {
	TxID      string        `json:"tx_id" binding:"required"`
	Recipient string        `json:"recipient" binding:"required"`
	Nullifier hexutil.Bytes `json:"nullifier" binding:"required"`
	Proof     hexutil.Bytes `json:"proof" binding:"required"`
}

// RefundRequest sender reclaim of an expired lock
type RefundRequest struct {
	TxID string `json:"tx_id" binding:"required"`
}

// FailTransactionRequest authority marks a transaction as unrecoverable
type FailTransactionRequest struct {
	TxID   string `json:"tx_id" binding:"required"`
	Reason string `json:"reason"`
}

// AddRelayerRequest registers a relayer authority
type AddRelayerRequest struct {
	Authority string `json:"authority" binding:"required"`
}

// UpdateBridgeFeeRequest fee change, zero is a legal fee
type UpdateBridgeFeeRequest struct {
	FeeBps uint32 `json:"fee_bps"`
}
