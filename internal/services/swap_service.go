// Package services implements the confidential swap and privacy bridge
// engines on top of the repository store, the commitment scheme and the
// proof verifier.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"zkdex-backend/internal/authority"
	"zkdex-backend/internal/models"
	"zkdex-backend/internal/repository"
	"zkdex-backend/internal/utils"
	"zkdex-backend/internal/zkp"
)

const (
	// MaxFeeBps caps protocol fees at 10%.
	MaxFeeBps = 1000
	// RevealDelaySecs is the earliest a committed swap may be executed.
	RevealDelaySecs = 60
	// RevealWindowSecs is the latest a committed swap may be executed.
	RevealWindowSecs = 600
)

// SwapService runs the confidential AMM: pool management, liquidity,
// and the commit-reveal swap lifecycle.
type SwapService struct {
	store    repository.Store
	scheme   zkp.CommitmentScheme
	verifier zkp.ProofVerifier
	transfer TransferAgent
	sink     EventSink
	clock    func() time.Time
}

// NewSwapService creates a new SwapService.
func NewSwapService(
	store repository.Store,
	scheme zkp.CommitmentScheme,
	verifier zkp.ProofVerifier,
	transfer TransferAgent,
	sink EventSink,
) *SwapService {
	return &SwapService{
		store:    store,
		scheme:   scheme,
		verifier: verifier,
		transfer: transfer,
		sink:     sink,
		clock:    time.Now,
	}
}

// SetClock overrides the time source. Tests use it to step through the
// commit-reveal window.
func (s *SwapService) SetClock(clock func() time.Time) {
	s.clock = clock
}

// appendEvent writes the event row inside the transaction and returns the
// payload bytes for post-commit publishing.
func appendEvent(ctx context.Context, store repository.Store, kind models.EventKind, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	event := &models.DomainEvent{Kind: kind, Payload: string(body)}
	if err := store.Events().Append(ctx, event); err != nil {
		return nil, fmt.Errorf("append %s event: %w", kind, err)
	}
	return body, nil
}

func validCommitment(c []byte) bool {
	return len(c) == zkp.CommitmentSize
}

// Initialize creates the swap configuration singleton.
func (s *SwapService) Initialize(ctx context.Context, authorityAddr string, feeBps uint32) (*models.SwapConfig, error) {
	if feeBps > MaxFeeBps {
		return nil, ErrFeeTooHigh
	}
	config := &models.SwapConfig{
		Authority: authorityAddr,
		FeeBps:    feeBps,
	}
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		if _, err := tx.SwapConfigs().Get(ctx); err == nil {
			return ErrAlreadyInitialized
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return tx.SwapConfigs().Create(ctx, config)
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// CreatePool registers an empty pool for a token pair.
func (s *SwapService) CreatePool(ctx context.Context, caller, tokenA, tokenB string) (*models.Pool, error) {
	if tokenA == tokenB {
		return nil, ErrSameToken
	}
	zero := hexutil.Encode(s.scheme.Zero())
	pool := &models.Pool{
		ID:                 uuid.New().String(),
		TokenA:             tokenA,
		TokenB:             tokenB,
		ReserveACommitment: zero,
		ReserveBCommitment: zero,
		Initialized:        true,
	}
	var published []byte
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		config, err := tx.SwapConfigs().Get(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		if config.Paused {
			return ErrSwapPaused
		}
		total, ok := utils.CheckedAdd(config.TotalPools, 1)
		if !ok {
			return ErrArithmeticOverflow
		}
		config.TotalPools = total
		if err := tx.Pools().Create(ctx, pool); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: pair %s/%s", ErrPoolExists, tokenA, tokenB)
			}
			return err
		}
		if err := tx.SwapConfigs().Update(ctx, config); err != nil {
			return err
		}
		published, err = appendEvent(ctx, tx, models.EventPoolCreated, struct {
			PoolID  string `json:"pool_id"`
			TokenA  string `json:"token_a"`
			TokenB  string `json:"token_b"`
			Creator string `json:"creator"`
		}{pool.ID, tokenA, tokenB, caller})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventPoolCreated, published)
	return pool, nil
}

// AddLiquidityInput carries one liquidity deposit. Each commitment must
// open to its plaintext amount, attested by the range proof.
type AddLiquidityInput struct {
	Caller      string
	PoolID      string
	AmountA     uint64
	AmountB     uint64
	CommitmentA []byte
	CommitmentB []byte
	ProofA      []byte
	ProofB      []byte
}

// AddLiquidity deposits both sides into a pool and mints liquidity shares.
func (s *SwapService) AddLiquidity(ctx context.Context, input *AddLiquidityInput) (*models.LiquidityPosition, error) {
	if input.AmountA == 0 || input.AmountB == 0 {
		return nil, ErrInvalidAmount
	}
	if !validCommitment(input.CommitmentA) || !validCommitment(input.CommitmentB) {
		return nil, ErrInvalidCommitment
	}
	if err := observeProof("range", s.verifier.VerifyRange(input.CommitmentA, input.ProofA, input.AmountA, input.AmountA)); err != nil {
		return nil, fmt.Errorf("%w: amount A: %v", ErrInvalidProof, err)
	}
	if err := observeProof("range", s.verifier.VerifyRange(input.CommitmentB, input.ProofB, input.AmountB, input.AmountB)); err != nil {
		return nil, fmt.Errorf("%w: amount B: %v", ErrInvalidProof, err)
	}

	var (
		position  *models.LiquidityPosition
		published []byte
	)
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		pool, err := getPool(ctx, tx, input.PoolID)
		if err != nil {
			return err
		}

		var minted uint64
		if pool.TotalSupply == 0 {
			root := utils.SqrtProduct(input.AmountA, input.AmountB)
			if root <= models.MinimumLiquidity {
				return ErrInsufficientLiquidity
			}
			minted = root - models.MinimumLiquidity
		} else {
			byA, okA := utils.MulDiv(input.AmountA, pool.TotalSupply, pool.ReserveA)
			byB, okB := utils.MulDiv(input.AmountB, pool.TotalSupply, pool.ReserveB)
			if !okA || !okB {
				return ErrArithmeticOverflow
			}
			minted = utils.Min(byA, byB)
			if minted == 0 {
				return ErrInsufficientLiquidity
			}
		}

		reserveA, ok := utils.CheckedAdd(pool.ReserveA, input.AmountA)
		if !ok {
			return ErrArithmeticOverflow
		}
		reserveB, ok := utils.CheckedAdd(pool.ReserveB, input.AmountB)
		if !ok {
			return ErrArithmeticOverflow
		}
		supply, ok := utils.CheckedAdd(pool.TotalSupply, minted)
		if !ok {
			return ErrArithmeticOverflow
		}
		commitA, err := s.combineStored(pool.ReserveACommitment, input.CommitmentA, zkp.Add)
		if err != nil {
			return err
		}
		commitB, err := s.combineStored(pool.ReserveBCommitment, input.CommitmentB, zkp.Add)
		if err != nil {
			return err
		}
		pool.ReserveA = reserveA
		pool.ReserveB = reserveB
		pool.TotalSupply = supply
		pool.ReserveACommitment = commitA
		pool.ReserveBCommitment = commitB

		position, err = tx.Positions().Get(ctx, pool.ID, input.Caller)
		if errors.Is(err, repository.ErrNotFound) {
			position = &models.LiquidityPosition{PoolID: pool.ID, Provider: input.Caller}
		} else if err != nil {
			return err
		}
		balance, ok := utils.CheckedAdd(position.Liquidity, minted)
		if !ok {
			return ErrArithmeticOverflow
		}
		position.Liquidity = balance

		if err := tx.Pools().Update(ctx, pool); err != nil {
			return err
		}
		if err := tx.Positions().Save(ctx, position); err != nil {
			return err
		}

		vault, _ := authority.Derive(authority.NamespacePool, pool.ID)
		if err := s.transfer.Transfer(ctx, input.Caller, vault, "", input.AmountA); err != nil {
			return fmt.Errorf("%w: deposit A: %v", ErrTransferFailed, err)
		}
		if err := s.transfer.Transfer(ctx, input.Caller, vault, "", input.AmountB); err != nil {
			return fmt.Errorf("%w: deposit B: %v", ErrTransferFailed, err)
		}

		published, err = appendEvent(ctx, tx, models.EventLiquidityAdded, struct {
			PoolID   string `json:"pool_id"`
			Provider string `json:"provider"`
			AmountA  uint64 `json:"amount_a"`
			AmountB  uint64 `json:"amount_b"`
			Minted   uint64 `json:"liquidity_minted"`
		}{pool.ID, input.Caller, input.AmountA, input.AmountB, minted})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventLiquidityAdded, published)
	return position, nil
}

// CommitSwapInput carries the hiding phase of a swap. Only the two
// Pedersen commitments are recorded; no amounts and no funds move.
type CommitSwapInput struct {
	Caller           string
	PoolID           string
	InputCommitment  []byte
	OutputCommitment []byte
}

// CommitSwap records a hidden swap intent at the current clock.
func (s *SwapService) CommitSwap(ctx context.Context, input *CommitSwapInput) (*models.SwapCommitment, error) {
	if !validCommitment(input.InputCommitment) || !validCommitment(input.OutputCommitment) {
		return nil, ErrInvalidCommitment
	}
	commitment := &models.SwapCommitment{
		ID:               uuid.New().String(),
		PoolID:           input.PoolID,
		Owner:            input.Caller,
		InputCommitment:  hexutil.Encode(input.InputCommitment),
		OutputCommitment: hexutil.Encode(input.OutputCommitment),
		CommittedAt:      s.clock().Unix(),
	}
	var published []byte
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		config, err := tx.SwapConfigs().Get(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		if config.Paused {
			return ErrSwapPaused
		}
		if _, err := getPool(ctx, tx, input.PoolID); err != nil {
			return err
		}
		if err := tx.SwapCommitments().Create(ctx, commitment); err != nil {
			return err
		}
		published, err = appendEvent(ctx, tx, models.EventSwapCommitted, struct {
			CommitmentID string `json:"commitment_id"`
			PoolID       string `json:"pool_id"`
			Owner        string `json:"owner"`
			CommittedAt  int64  `json:"committed_at"`
		}{commitment.ID, input.PoolID, input.Caller, commitment.CommittedAt})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventSwapCommitted, published)
	return commitment, nil
}

// ExecuteSwapInput reveals a committed swap. AToB picks the input side;
// the range proof must open the stored input commitment to AmountIn.
type ExecuteSwapInput struct {
	Caller       string
	CommitmentID string
	AmountIn     uint64
	MinAmountOut uint64
	AToB         bool
	Proof        []byte
}

// ExecuteSwap reveals and settles a committed swap inside its timing
// window, returning the executed commitment and the output amount.
func (s *SwapService) ExecuteSwap(ctx context.Context, input *ExecuteSwapInput) (*models.SwapCommitment, uint64, error) {
	if input.AmountIn == 0 {
		return nil, 0, ErrInvalidAmount
	}
	var (
		commitment *models.SwapCommitment
		amountOut  uint64
		published  []byte
	)
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		config, err := tx.SwapConfigs().Get(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		if config.Paused {
			return ErrSwapPaused
		}

		commitment, err = tx.SwapCommitments().GetByID(ctx, input.CommitmentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCommitmentNotFound
			}
			return err
		}
		if commitment.Owner != input.Caller {
			return ErrNotSwapOwner
		}
		if commitment.Executed || commitment.Cancelled {
			return ErrAlreadyExecuted
		}
		elapsed := s.clock().Unix() - commitment.CommittedAt
		if elapsed < RevealDelaySecs {
			return ErrRevealTooEarly
		}
		if elapsed > RevealWindowSecs {
			return ErrSwapExpired
		}

		stored, err := hexutil.Decode(commitment.InputCommitment)
		if err != nil {
			return fmt.Errorf("decode stored input commitment: %w", err)
		}
		if err := observeProof("range", s.verifier.VerifyRange(stored, input.Proof, input.AmountIn, input.AmountIn)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}

		pool, err := getPool(ctx, tx, commitment.PoolID)
		if err != nil {
			return err
		}
		reserveIn, reserveOut := pool.ReserveA, pool.ReserveB
		if !input.AToB {
			reserveIn, reserveOut = pool.ReserveB, pool.ReserveA
		}
		if reserveIn == 0 || reserveOut == 0 {
			return ErrInsufficientLiquidity
		}

		fee, ok := utils.MulDiv(input.AmountIn, uint64(config.FeeBps), 10000)
		if !ok {
			return ErrArithmeticOverflow
		}
		afterFee := input.AmountIn - fee
		amountOut, ok = utils.SwapOutput(afterFee, reserveIn, reserveOut)
		if !ok {
			return ErrArithmeticOverflow
		}
		if amountOut < input.MinAmountOut {
			return fmt.Errorf("%w: out %d < min %d", ErrSlippageExceeded, amountOut, input.MinAmountOut)
		}

		newIn, ok := utils.CheckedAdd(reserveIn, input.AmountIn)
		if !ok {
			return ErrArithmeticOverflow
		}
		newOut, ok := utils.CheckedSub(reserveOut, amountOut)
		if !ok {
			return ErrArithmeticOverflow
		}
		inCommit := pool.ReserveACommitment
		outCommit := pool.ReserveBCommitment
		if !input.AToB {
			inCommit, outCommit = outCommit, inCommit
		}
		inCommit, err = s.combineStored(inCommit, stored, zkp.Add)
		if err != nil {
			return err
		}
		outBytes, err := hexutil.Decode(commitment.OutputCommitment)
		if err != nil {
			return fmt.Errorf("decode stored output commitment: %w", err)
		}
		outCommit, err = s.combineStored(outCommit, outBytes, zkp.Subtract)
		if err != nil {
			return err
		}
		if input.AToB {
			pool.ReserveA, pool.ReserveB = newIn, newOut
			pool.ReserveACommitment, pool.ReserveBCommitment = inCommit, outCommit
		} else {
			pool.ReserveB, pool.ReserveA = newIn, newOut
			pool.ReserveBCommitment, pool.ReserveACommitment = inCommit, outCommit
		}

		commitment.Revealed = true
		commitment.Executed = true
		if err := tx.Pools().Update(ctx, pool); err != nil {
			return err
		}
		if err := tx.SwapCommitments().Update(ctx, commitment); err != nil {
			return err
		}

		vault, capability := authority.Derive(authority.NamespacePool, pool.ID)
		if err := s.transfer.Transfer(ctx, input.Caller, vault, "", input.AmountIn); err != nil {
			return fmt.Errorf("%w: input leg: %v", ErrTransferFailed, err)
		}
		if err := s.transfer.Transfer(ctx, vault, input.Caller, capability, amountOut); err != nil {
			return fmt.Errorf("%w: output leg: %v", ErrTransferFailed, err)
		}

		published, err = appendEvent(ctx, tx, models.EventSwapExecuted, struct {
			CommitmentID string `json:"commitment_id"`
			PoolID       string `json:"pool_id"`
			AmountIn     uint64 `json:"amount_in"`
			AmountOut    uint64 `json:"amount_out"`
		}{commitment.ID, pool.ID, input.AmountIn, amountOut})
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	log.Printf("[ExecuteSwap] commitment=%s amount_in=%d amount_out=%d", commitment.ID, input.AmountIn, amountOut)
	s.sink.Publish(ctx, models.EventSwapExecuted, published)
	return commitment, amountOut, nil
}

// RemoveLiquidity burns shares and withdraws the pro-rata amounts.
func (s *SwapService) RemoveLiquidity(ctx context.Context, caller, poolID string, liquidity uint64) (*models.Pool, error) {
	if liquidity == 0 {
		return nil, ErrInvalidAmount
	}
	var (
		pool      *models.Pool
		published []byte
	)
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		var err error
		pool, err = getPool(ctx, tx, poolID)
		if err != nil {
			return err
		}
		position, err := tx.Positions().Get(ctx, poolID, caller)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInsufficientLiquidity
			}
			return err
		}
		if position.Liquidity < liquidity {
			return ErrInsufficientLiquidity
		}

		amountA, okA := utils.MulDiv(liquidity, pool.ReserveA, pool.TotalSupply)
		amountB, okB := utils.MulDiv(liquidity, pool.ReserveB, pool.TotalSupply)
		if !okA || !okB {
			return ErrArithmeticOverflow
		}
		reserveA, okA := utils.CheckedSub(pool.ReserveA, amountA)
		reserveB, okB := utils.CheckedSub(pool.ReserveB, amountB)
		supply, okS := utils.CheckedSub(pool.TotalSupply, liquidity)
		if !okA || !okB || !okS {
			return ErrArithmeticOverflow
		}

		// Pro-rata withdrawal has no caller-supplied commitments, so the
		// reserve commitments are rebuilt from the reduced plaintext amounts.
		commitA, err := s.scheme.Commit(reserveA, nil)
		if err != nil {
			return fmt.Errorf("%w: rebuild reserve A: %v", ErrInvalidCommitment, err)
		}
		commitB, err := s.scheme.Commit(reserveB, nil)
		if err != nil {
			return fmt.Errorf("%w: rebuild reserve B: %v", ErrInvalidCommitment, err)
		}
		pool.ReserveA = reserveA
		pool.ReserveB = reserveB
		pool.TotalSupply = supply
		pool.ReserveACommitment = hexutil.Encode(commitA)
		pool.ReserveBCommitment = hexutil.Encode(commitB)

		position.Liquidity -= liquidity
		if position.Liquidity == 0 {
			err = tx.Positions().Delete(ctx, poolID, caller)
		} else {
			err = tx.Positions().Save(ctx, position)
		}
		if err != nil {
			return err
		}
		if err := tx.Pools().Update(ctx, pool); err != nil {
			return err
		}

		vault, capability := authority.Derive(authority.NamespacePool, pool.ID)
		if err := s.transfer.Transfer(ctx, vault, caller, capability, amountA); err != nil {
			return fmt.Errorf("%w: withdraw A: %v", ErrTransferFailed, err)
		}
		if err := s.transfer.Transfer(ctx, vault, caller, capability, amountB); err != nil {
			return fmt.Errorf("%w: withdraw B: %v", ErrTransferFailed, err)
		}

		published, err = appendEvent(ctx, tx, models.EventLiquidityRemoved, struct {
			PoolID    string `json:"pool_id"`
			Provider  string `json:"provider"`
			Liquidity uint64 `json:"liquidity_burned"`
			AmountA   uint64 `json:"amount_a"`
			AmountB   uint64 `json:"amount_b"`
		}{pool.ID, caller, liquidity, amountA, amountB})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventLiquidityRemoved, published)
	return pool, nil
}

// CancelSwap voids a commitment whose reveal window has expired. The owner
// can then commit again instead of leaving the record dangling.
func (s *SwapService) CancelSwap(ctx context.Context, caller, commitmentID string) (*models.SwapCommitment, error) {
	var (
		commitment *models.SwapCommitment
		published  []byte
	)
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		var err error
		commitment, err = tx.SwapCommitments().GetByID(ctx, commitmentID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCommitmentNotFound
			}
			return err
		}
		if commitment.Owner != caller {
			return ErrNotSwapOwner
		}
		if commitment.Executed || commitment.Cancelled {
			return ErrAlreadyExecuted
		}
		if s.clock().Unix()-commitment.CommittedAt <= RevealWindowSecs {
			return ErrSwapNotExpired
		}
		commitment.Cancelled = true
		if err := tx.SwapCommitments().Update(ctx, commitment); err != nil {
			return err
		}
		published, err = appendEvent(ctx, tx, models.EventSwapCancelled, struct {
			CommitmentID string `json:"commitment_id"`
			PoolID       string `json:"pool_id"`
		}{commitment.ID, commitment.PoolID})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventSwapCancelled, published)
	return commitment, nil
}

// Pause stops pool creation, commits and executions.
func (s *SwapService) Pause(ctx context.Context, caller string) error {
	return s.setPaused(ctx, caller, true)
}

// Unpause resumes swap operations.
func (s *SwapService) Unpause(ctx context.Context, caller string) error {
	return s.setPaused(ctx, caller, false)
}

func (s *SwapService) setPaused(ctx context.Context, caller string, paused bool) error {
	kind := models.EventSwapPaused
	if !paused {
		kind = models.EventSwapUnpaused
	}
	var published []byte
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		config, err := s.requireSwapAuthority(ctx, tx, caller)
		if err != nil {
			return err
		}
		config.Paused = paused
		if err := tx.SwapConfigs().Update(ctx, config); err != nil {
			return err
		}
		published, err = appendEvent(ctx, tx, kind, struct {
			Authority string `json:"authority"`
		}{caller})
		return err
	})
	if err != nil {
		return err
	}
	s.sink.Publish(ctx, kind, published)
	return nil
}

// UpdateSwapFee sets the protocol fee in basis points, capped at 10%.
func (s *SwapService) UpdateSwapFee(ctx context.Context, caller string, feeBps uint32) (*models.SwapConfig, error) {
	if feeBps > MaxFeeBps {
		return nil, ErrFeeTooHigh
	}
	var (
		config    *models.SwapConfig
		published []byte
	)
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		var err error
		config, err = s.requireSwapAuthority(ctx, tx, caller)
		if err != nil {
			return err
		}
		config.FeeBps = feeBps
		if err := tx.SwapConfigs().Update(ctx, config); err != nil {
			return err
		}
		published, err = appendEvent(ctx, tx, models.EventSwapFeeUpdated, struct {
			FeeBps uint32 `json:"fee_bps"`
		}{feeBps})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventSwapFeeUpdated, published)
	return config, nil
}

// GetConfig returns the swap configuration singleton.
func (s *SwapService) GetConfig(ctx context.Context) (*models.SwapConfig, error) {
	config, err := s.store.SwapConfigs().Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	return config, err
}

// GetPool returns one pool by id.
func (s *SwapService) GetPool(ctx context.Context, id string) (*models.Pool, error) {
	pool, err := s.store.Pools().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPoolNotFound
	}
	return pool, err
}

// ListPools returns a page of pools with the total count.
func (s *SwapService) ListPools(ctx context.Context, page, pageSize int) ([]models.Pool, int64, error) {
	return s.store.Pools().List(ctx, page, pageSize)
}

// GetCommitment returns one swap commitment by id.
func (s *SwapService) GetCommitment(ctx context.Context, id string) (*models.SwapCommitment, error) {
	commitment, err := s.store.SwapCommitments().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCommitmentNotFound
	}
	return commitment, err
}

// ListPositions returns the caller's liquidity positions.
func (s *SwapService) ListPositions(ctx context.Context, provider string) ([]models.LiquidityPosition, error) {
	return s.store.Positions().ListByProvider(ctx, provider)
}

func (s *SwapService) requireSwapAuthority(ctx context.Context, tx repository.Store, caller string) (*models.SwapConfig, error) {
	config, err := tx.SwapConfigs().Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	if config.Authority != caller {
		return nil, ErrNotAuthority
	}
	return config, nil
}

// combineStored folds a 32-byte commitment into a stored hex accumulator.
func (s *SwapService) combineStored(accumulator string, commitment []byte, dir zkp.Direction) (string, error) {
	current, err := hexutil.Decode(accumulator)
	if err != nil {
		return "", fmt.Errorf("decode stored accumulator: %w", err)
	}
	next, err := s.scheme.Combine(current, commitment, dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCommitment, err)
	}
	return hexutil.Encode(next), nil
}

func getPool(ctx context.Context, tx repository.Store, id string) (*models.Pool, error) {
	pool, err := tx.Pools().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	if !pool.Initialized {
		return nil, ErrPoolNotInitialized
	}
	return pool, nil
}
