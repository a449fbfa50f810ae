package services

import "errors"

// Sentinel errors returned by the swap and bridge engines. Handlers map
// them to HTTP statuses through Classify; engines wrap them with context
// via fmt.Errorf("...: %w", Err...).
var (
	// Validation (rejected input or authorization)
	ErrSwapPaused        = errors.New("swap is paused")
	ErrBridgePaused      = errors.New("bridge is paused")
	ErrInvalidProof      = errors.New("invalid proof")
	ErrInvalidCommitment = errors.New("invalid commitment")
	ErrNotAuthority      = errors.New("caller is not the authority")
	ErrNotSwapOwner      = errors.New("caller is not the swap owner")
	ErrNotSender         = errors.New("caller is not the sender")
	ErrNotActiveRelayer  = errors.New("caller is not an active relayer")
	ErrFeeTooHigh        = errors.New("fee exceeds maximum")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrSameToken         = errors.New("pool tokens must differ")

	// State (operation conflicts with the current lifecycle state)
	ErrAlreadyExecuted           = errors.New("swap already executed")
	ErrRevealTooEarly            = errors.New("reveal window not open yet")
	ErrSwapExpired               = errors.New("reveal window expired")
	ErrSwapNotExpired            = errors.New("reveal window still open")
	ErrNullifierUsed             = errors.New("nullifier already used")
	ErrInvalidState              = errors.New("invalid transaction state")
	ErrInsufficientConfirmations = errors.New("insufficient confirmations")
	ErrPoolNotInitialized        = errors.New("pool not initialized")
	ErrPoolExists                = errors.New("pool already exists")
	ErrAlreadyInitialized        = errors.New("already initialized")
	ErrNotInitialized            = errors.New("not initialized")
	ErrRefundTooEarly            = errors.New("refund window not reached")
	ErrRelayerExists             = errors.New("relayer already registered")

	// Arithmetic
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// Resource
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrSlippageExceeded      = errors.New("slippage exceeded")
	ErrPoolNotFound          = errors.New("pool not found")
	ErrCommitmentNotFound    = errors.New("swap commitment not found")
	ErrTransactionNotFound   = errors.New("bridge transaction not found")
	ErrRelayerNotFound       = errors.New("relayer not found")

	// External
	ErrTransferFailed = errors.New("token transfer failed")
)

// ErrorKind buckets the sentinel errors for HTTP mapping and metrics.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindState
	KindArithmetic
	KindResource
	KindExternal
)

var kindBuckets = map[ErrorKind][]error{
	KindValidation: {
		ErrSwapPaused, ErrBridgePaused, ErrInvalidProof, ErrInvalidCommitment,
		ErrNotAuthority, ErrNotSwapOwner, ErrNotSender, ErrNotActiveRelayer,
		ErrFeeTooHigh, ErrInvalidAmount, ErrSameToken,
	},
	KindState: {
		ErrAlreadyExecuted, ErrRevealTooEarly, ErrSwapExpired, ErrSwapNotExpired,
		ErrNullifierUsed, ErrInvalidState, ErrInsufficientConfirmations,
		ErrPoolNotInitialized, ErrPoolExists, ErrAlreadyInitialized,
		ErrNotInitialized, ErrRefundTooEarly, ErrRelayerExists,
	},
	KindArithmetic: {ErrArithmeticOverflow},
	KindResource: {
		ErrInsufficientLiquidity, ErrSlippageExceeded, ErrPoolNotFound,
		ErrCommitmentNotFound, ErrTransactionNotFound, ErrRelayerNotFound,
	},
	KindExternal: {ErrTransferFailed},
}

// Classify returns the bucket of a service error, KindInternal when the
// error matches no sentinel.
func Classify(err error) ErrorKind {
	for kind, sentinels := range kindBuckets {
		for _, sentinel := range sentinels {
			if errors.Is(err, sentinel) {
				return kind
			}
		}
	}
	return KindInternal
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPoolNotFound) ||
		errors.Is(err, ErrCommitmentNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrRelayerNotFound)
}
