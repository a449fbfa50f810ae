// Core database models for the confidential swap and privacy bridge engines.
package models

import (
	"time"
)

// ============ Swap ============

// SwapConfigID is the primary key of the singleton swap configuration row.
const SwapConfigID = 1

// MinimumLiquidity is burned on first liquidity provision so a pool can never
// be fully drained back to zero supply.
const MinimumLiquidity = 1000

// SwapConfig is the global swap configuration singleton.
type SwapConfig struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Authority  string    `json:"authority" gorm:"size:66;not null"`
	FeeBps     uint32    `json:"fee_bps" gorm:"not null"` // protocol fee in basis points, capped at 1000
	Paused     bool      `json:"paused" gorm:"not null;default:false"`
	TotalPools uint64    `json:"total_pools" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Pool is a confidential constant-product pool. Reserve amounts back the
// pricing math; the reserve commitments are the hidden counterparts updated
// through the commitment scheme.
type Pool struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:36"`
	TokenA             string    `json:"token_a" gorm:"size:66;not null;uniqueIndex:idx_pool_token_pair"`
	TokenB             string    `json:"token_b" gorm:"size:66;not null;uniqueIndex:idx_pool_token_pair"`
	ReserveA           uint64    `json:"reserve_a" gorm:"not null;default:0"`
	ReserveB           uint64    `json:"reserve_b" gorm:"not null;default:0"`
	ReserveACommitment string    `json:"reserve_a_commitment" gorm:"size:66;not null"` // bytes32 as hex
	ReserveBCommitment string    `json:"reserve_b_commitment" gorm:"size:66;not null"` // bytes32 as hex
	TotalSupply        uint64    `json:"total_supply" gorm:"not null;default:0"`
	Initialized        bool      `json:"initialized" gorm:"not null;default:false"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// LiquidityPosition tracks one provider's share of one pool.
type LiquidityPosition struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	PoolID    string    `json:"pool_id" gorm:"size:36;not null;uniqueIndex:idx_position_pool_provider"`
	Provider  string    `json:"provider" gorm:"size:66;not null;uniqueIndex:idx_position_pool_provider"`
	Liquidity uint64    `json:"liquidity" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SwapCommitment is the hiding phase of a commit-reveal swap. Created by
// CommitSwap, consumed exactly once by ExecuteSwap inside the reveal window,
// or cancelled by the owner after the window expires.
type SwapCommitment struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	PoolID           string    `json:"pool_id" gorm:"size:36;index;not null"`
	Owner            string    `json:"owner" gorm:"size:66;index;not null"`
	InputCommitment  string    `json:"input_commitment" gorm:"size:66;not null"`  // bytes32 as hex
	OutputCommitment string    `json:"output_commitment" gorm:"size:66;not null"` // bytes32 as hex
	CommittedAt      int64     `json:"committed_at" gorm:"not null"`              // unix seconds, window anchor
	Revealed         bool      `json:"revealed" gorm:"not null;default:false"`
	Executed         bool      `json:"executed" gorm:"not null;default:false"`
	Cancelled        bool      `json:"cancelled" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ============ Bridge ============

// BridgeConfigID is the primary key of the singleton bridge configuration row.
const BridgeConfigID = 1

// SourceChainID identifies this side of the bridge in lock records.
const SourceChainID = 1

// BridgeTxState is the lifecycle state of a bridge transaction.
type BridgeTxState string

const (
	BridgeTxStatePending   BridgeTxState = "pending" // reserved, no operation produces it
	BridgeTxStateLocked    BridgeTxState = "locked"
	BridgeTxStateRelayed   BridgeTxState = "relayed"
	BridgeTxStateCompleted BridgeTxState = "completed"
	BridgeTxStateRefunded  BridgeTxState = "refunded"
	BridgeTxStateFailed    BridgeTxState = "failed"
)

// Terminal reports whether no further transition may leave the state.
func (s BridgeTxState) Terminal() bool {
	switch s {
	case BridgeTxStateCompleted, BridgeTxStateRefunded, BridgeTxStateFailed:
		return true
	}
	return false
}

// BridgeConfig is the global bridge configuration singleton.
type BridgeConfig struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Authority        string    `json:"authority" gorm:"size:66;not null"`
	MinConfirmations uint32    `json:"min_confirmations" gorm:"not null"`
	FeeBps           uint32    `json:"fee_bps" gorm:"not null"` // bridge fee in basis points, capped at 1000
	TotalLocked      uint64    `json:"total_locked" gorm:"not null;default:0"`
	TotalUnlocked    uint64    `json:"total_unlocked" gorm:"not null;default:0"`
	Paused           bool      `json:"paused" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BridgeTransaction is one cross-chain transfer. ID is the keccak hash over
// (sender, target chain, recipient commitment, timestamp). Amount is net of
// the bridge fee. Nullifier stays empty until unlock consumes one.
type BridgeTransaction struct {
	ID                  string        `json:"id" gorm:"primaryKey;size:66"`
	SourceChain         uint64        `json:"source_chain" gorm:"not null"`
	TargetChain         uint64        `json:"target_chain" gorm:"not null"`
	Sender              string        `json:"sender" gorm:"size:66;index;not null"`
	RecipientCommitment string        `json:"recipient_commitment" gorm:"size:66;not null"` // bytes32 as hex
	Amount              uint64        `json:"amount" gorm:"not null"`
	Commitment          string        `json:"commitment" gorm:"size:66;not null"` // bytes32 as hex
	Nullifier           string        `json:"nullifier" gorm:"size:66;index"`     // set at unlock
	Timestamp           int64         `json:"timestamp" gorm:"not null"`          // unix seconds at lock
	State               BridgeTxState `json:"state" gorm:"size:20;index;not null"`
	Confirmations       uint32        `json:"confirmations" gorm:"not null;default:0"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// NullifierRecord marks a nullifier as consumed. The primary key makes the
// one-time-use guarantee a database constraint, not just a service check.
type NullifierRecord struct {
	Nullifier string    `json:"nullifier" gorm:"primaryKey;size:66"`
	Used      bool      `json:"used" gorm:"not null;default:true"`
	Timestamp int64     `json:"timestamp" gorm:"not null"` // unix seconds at unlock
	CreatedAt time.Time `json:"created_at"`
}

// Relayer is an authorized confirmation provider. A slashed relayer is
// permanently excluded from relaying.
type Relayer struct {
	Authority    string    `json:"authority" gorm:"primaryKey;size:66"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	TotalRelayed uint64    `json:"total_relayed" gorm:"not null;default:0"`
	Slashed      bool      `json:"slashed" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ============ Domain events ============

// EventKind names one committed state-changing operation.
type EventKind string

const (
	EventPoolCreated        EventKind = "pool-created"
	EventLiquidityAdded     EventKind = "liquidity-added"
	EventLiquidityRemoved   EventKind = "liquidity-removed"
	EventSwapCommitted      EventKind = "swap-committed"
	EventSwapExecuted       EventKind = "swap-executed"
	EventSwapCancelled      EventKind = "swap-cancelled"
	EventSwapPaused         EventKind = "swap-paused"
	EventSwapUnpaused       EventKind = "swap-unpaused"
	EventSwapFeeUpdated     EventKind = "swap-fee-updated"
	EventAssetLocked        EventKind = "asset-locked"
	EventAssetUnlocked      EventKind = "asset-unlocked"
	EventAssetRefunded      EventKind = "asset-refunded"
	EventTransactionRelayed EventKind = "transaction-relayed"
	EventTransactionFailed  EventKind = "transaction-failed"
	EventRelayerAdded       EventKind = "relayer-added"
	EventRelayerSlashed     EventKind = "relayer-slashed"
	EventBridgeFeeUpdated   EventKind = "bridge-fee-updated"
	EventBridgePaused       EventKind = "bridge-paused"
	EventBridgeUnpaused     EventKind = "bridge-unpaused"
)

// DomainEvent is one row of the append-only event stream. Rows are written
// inside the same transaction as the mutation they describe; the auto
// increment ID is the stream sequence.
type DomainEvent struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Kind      EventKind `json:"kind" gorm:"size:40;index;not null"`
	Payload   string    `json:"payload" gorm:"type:text;not null"` // flat JSON record of public outcome fields
	EmittedAt time.Time `json:"emitted_at" gorm:"not null"`
}
