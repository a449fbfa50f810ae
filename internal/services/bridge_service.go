package services

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"zkdex-backend/internal/authority"
	"zkdex-backend/internal/models"
	"zkdex-backend/internal/repository"
	"zkdex-backend/internal/utils"
	"zkdex-backend/internal/zkp"
)

// DefaultRefundWindow is how long a locked transaction must sit before the
// sender can claim it back.
const DefaultRefundWindow = 24 * time.Hour

// BridgeService runs the privacy bridge: locking with commitment-bound
// transaction ids, relayer confirmation quorum, and nullifier-guarded
// unlocks.
type BridgeService struct {
	store        repository.Store
	scheme       zkp.CommitmentScheme
	verifier     zkp.ProofVerifier
	transfer     TransferAgent
	sink         EventSink
	clock        func() time.Time
	refundWindow time.Duration
	vault        string
	vaultCap     string
}

// NewBridgeService creates a new BridgeService.
func NewBridgeService(
	store repository.Store,
	scheme zkp.CommitmentScheme,
	verifier zkp.ProofVerifier,
	transfer TransferAgent,
	sink EventSink,
) *BridgeService {
	vault, capability := authority.Derive(authority.NamespaceBridge, "vault")
	return &BridgeService{
		store:        store,
		scheme:       scheme,
		verifier:     verifier,
		transfer:     transfer,
		sink:         sink,
		clock:        time.Now,
		refundWindow: DefaultRefundWindow,
		vault:        vault,
		vaultCap:     capability,
	}
}

// SetClock overrides the time source.
func (s *BridgeService) SetClock(clock func() time.Time) {
	s.clock = clock
}

// SetRefundWindow overrides the refund waiting period.
func (s *BridgeService) SetRefundWindow(window time.Duration) {
	s.refundWindow = window
}

// Initialize creates the bridge configuration singleton.
func (s *BridgeService) Initialize(ctx context.Context, authorityAddr string, minConfirmations, feeBps uint32) (*models.BridgeConfig, error) {
	if feeBps > MaxFeeBps {
		return nil, ErrFeeTooHigh
	}
	config := &models.BridgeConfig{
		Authority:        authorityAddr,
		MinConfirmations: minConfirmations,
		FeeBps:           feeBps,
	}
	err := s.store.Atomically(ctx, func(tx repository.Store) error {
		if _, err := tx.BridgeConfigs().Get(ctx); err == nil {
			return ErrAlreadyInitialized
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return tx.BridgeConfigs().Create(ctx, config)
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// LockAssetsInput starts an outbound transfer. The recipient commitment
// hides who receives the funds on the target chain.
type LockAssetsInput struct {
	Sender              string
	Amount              uint64
	TargetChain         uint64
	RecipientCommitment []byte
}

// LockAssets escrows funds and records the pending bridge transaction.
// The transaction id binds sender, target chain, recipient commitment and
// the lock timestamp.
func (s *BridgeService) LockAssets(ctx context.Context, input *LockAssetsInput) (*models.BridgeTransaction, error) {
	if input.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	if !validCommitment(input.RecipientCommitment) {
		return nil, ErrInvalidCommitment
	}
	var (
		tx        *models.BridgeTransaction
		published []byte
	)
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		config, err := store.BridgeConfigs().Get(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		if config.Paused {
			return ErrBridgePaused
		}

		fee, ok := utils.MulDiv(input.Amount, uint64(config.FeeBps), 10000)
		if !ok {
			return ErrArithmeticOverflow
		}
		net := input.Amount - fee
		now := s.clock().Unix()
		txID := lockTxID(input.Sender, input.TargetChain, input.RecipientCommitment, now)
		commitment := s.scheme.BridgeCommitment(input.RecipientCommitment, net)

		tx = &models.BridgeTransaction{
			ID:                  txID,
			SourceChain:         models.SourceChainID,
			TargetChain:         input.TargetChain,
			Sender:              input.Sender,
			RecipientCommitment: hexutil.Encode(input.RecipientCommitment),
			Amount:              net,
			Commitment:          hexutil.Encode(commitment),
			Timestamp:           now,
			State:               models.BridgeTxStateLocked,
		}
		if err := store.BridgeTxs().Create(ctx, tx); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: transaction %s exists", ErrInvalidState, txID)
			}
			return err
		}
		locked, ok := utils.CheckedAdd(config.TotalLocked, net)
		if !ok {
			return ErrArithmeticOverflow
		}
		config.TotalLocked = locked
		if err := store.BridgeConfigs().Update(ctx, config); err != nil {
			return err
		}

		if err := s.transfer.Transfer(ctx, input.Sender, s.vault, "", input.Amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}

		published, err = appendEvent(ctx, store, models.EventAssetLocked, struct {
			TxID        string `json:"tx_id"`
			Sender      string `json:"sender"`
			TargetChain uint64 `json:"target_chain"`
			Amount      uint64 `json:"amount"`
			Fee         uint64 `json:"fee"`
		}{txID, input.Sender, input.TargetChain, net, fee})
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[LockAssets] tx=%s target_chain=%d net=%d", tx.ID, input.TargetChain, tx.Amount)
	s.sink.Publish(ctx, models.EventAssetLocked, published)
	return tx, nil
}

// RelayTransaction adds one confirmation from an active relayer. The state
// moves to relayed once the configured minimum is reached; later
// confirmations keep accumulating.
func (s *BridgeService) RelayTransaction(ctx context.Context, relayerAuthority, txID string) (*models.BridgeTransaction, error) {
	var (
		tx        *models.BridgeTransaction
		published []byte
	)
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		config, err := store.BridgeConfigs().Get(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		relayer, err := store.Relayers().GetByAuthority(ctx, relayerAuthority)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotActiveRelayer
			}
			return err
		}
		if !relayer.Active || relayer.Slashed {
			return ErrNotActiveRelayer
		}

		tx, err = getBridgeTx(ctx, store, txID)
		if err != nil {
			return err
		}
		if tx.State != models.BridgeTxStateLocked && tx.State != models.BridgeTxStateRelayed {
			return fmt.Errorf("%w: %s", ErrInvalidState, tx.State)
		}
		confirmations, ok := utils.CheckedAdd(uint64(tx.Confirmations), 1)
		if !ok || confirmations > uint64(^uint32(0)) {
			return ErrArithmeticOverflow
		}
		tx.Confirmations = uint32(confirmations)
		if tx.State == models.BridgeTxStateLocked && tx.Confirmations >= config.MinConfirmations {
			tx.State = models.BridgeTxStateRelayed
		}
		relayed, ok := utils.CheckedAdd(relayer.TotalRelayed, 1)
		if !ok {
			return ErrArithmeticOverflow
		}
		relayer.TotalRelayed = relayed

		if err := store.BridgeTxs().Update(ctx, tx); err != nil {
			return err
		}
		if err := store.Relayers().Update(ctx, relayer); err != nil {
			return err
		}
		published, err = appendEvent(ctx, store, models.EventTransactionRelayed, struct {
			TxID          string `json:"tx_id"`
			Relayer       string `json:"relayer"`
			Confirmations uint32 `json:"confirmations"`
			State         string `json:"state"`
		}{txID, relayerAuthority, tx.Confirmations, string(tx.State)})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventTransactionRelayed, published)
	return tx, nil
}

// UnlockAssetsInput releases an inbound transfer. The proof must open the
// transaction commitment and bind the fresh nullifier to it.
type UnlockAssetsInput struct {
	Caller    string
	TxID      string
	Recipient string
	Nullifier []byte
	Proof     []byte
}

// UnlockAssets verifies the relation proof and completes the transaction.
// Recording the nullifier, the state change, the counters and the payout
// happen in one store transaction: a failing transfer leaves the nullifier
// unused and the transaction locked.
func (s *BridgeService) UnlockAssets(ctx context.Context, input *UnlockAssetsInput) (*models.BridgeTransaction, error) {
	if len(input.Nullifier) != zkp.NullifierSize {
		return nil, ErrInvalidCommitment
	}
	var (
		tx        *models.BridgeTransaction
		published []byte
	)
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		config, err := store.BridgeConfigs().Get(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		if config.Paused {
			return ErrBridgePaused
		}

		tx, err = getBridgeTx(ctx, store, input.TxID)
		if err != nil {
			return err
		}
		if tx.State != models.BridgeTxStateLocked && tx.State != models.BridgeTxStateRelayed {
			return fmt.Errorf("%w: %s", ErrInvalidState, tx.State)
		}
		if tx.Confirmations < config.MinConfirmations {
			return ErrInsufficientConfirmations
		}

		nullifierHex := hexutil.Encode(input.Nullifier)
		if _, err := store.Nullifiers().Get(ctx, nullifierHex); err == nil {
			return ErrNullifierUsed
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		commitment, err := hexutil.Decode(tx.Commitment)
		if err != nil {
			return fmt.Errorf("decode stored commitment: %w", err)
		}
		pub := zkp.RelationPublicInputs{
			Commitment: commitment,
			Nullifier:  input.Nullifier,
			Amount:     tx.Amount,
		}
		if err := observeProof("relation", s.verifier.VerifyRelation(input.Proof, pub)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}

		record := &models.NullifierRecord{
			Nullifier: nullifierHex,
			Used:      true,
			Timestamp: s.clock().Unix(),
		}
		if err := store.Nullifiers().Create(ctx, record); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrNullifierUsed
			}
			return err
		}

		tx.Nullifier = nullifierHex
		tx.State = models.BridgeTxStateCompleted
		unlocked, ok := utils.CheckedAdd(config.TotalUnlocked, tx.Amount)
		if !ok {
			return ErrArithmeticOverflow
		}
		config.TotalUnlocked = unlocked

		if err := store.BridgeTxs().Update(ctx, tx); err != nil {
			return err
		}
		if err := store.BridgeConfigs().Update(ctx, config); err != nil {
			return err
		}

		if err := s.transfer.Transfer(ctx, s.vault, input.Recipient, s.vaultCap, tx.Amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}

		published, err = appendEvent(ctx, store, models.EventAssetUnlocked, struct {
			TxID      string `json:"tx_id"`
			Nullifier string `json:"nullifier"`
			Amount    uint64 `json:"amount"`
		}{tx.ID, nullifierHex, tx.Amount})
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[UnlockAssets] tx=%s amount=%d", tx.ID, tx.Amount)
	s.sink.Publish(ctx, models.EventAssetUnlocked, published)
	return tx, nil
}

// FailTransaction aborts a stalled transaction. Authority only; the
// escrowed funds stay with the bridge for manual resolution.
func (s *BridgeService) FailTransaction(ctx context.Context, caller, txID, reason string) (*models.BridgeTransaction, error) {
	var (
		tx        *models.BridgeTransaction
		published []byte
	)
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		if _, err := s.requireBridgeAuthority(ctx, store, caller); err != nil {
			return err
		}
		var err error
		tx, err = getBridgeTx(ctx, store, txID)
		if err != nil {
			return err
		}
		if tx.State != models.BridgeTxStateLocked && tx.State != models.BridgeTxStateRelayed {
			return fmt.Errorf("%w: %s", ErrInvalidState, tx.State)
		}
		tx.State = models.BridgeTxStateFailed
		if err := store.BridgeTxs().Update(ctx, tx); err != nil {
			return err
		}
		published, err = appendEvent(ctx, store, models.EventTransactionFailed, struct {
			TxID   string `json:"tx_id"`
			Reason string `json:"reason"`
		}{txID, reason})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventTransactionFailed, published)
	return tx, nil
}

// RefundTransaction returns escrowed funds to the sender once the refund
// window has passed without an unlock.
func (s *BridgeService) RefundTransaction(ctx context.Context, caller, txID string) (*models.BridgeTransaction, error) {
	var (
		tx        *models.BridgeTransaction
		published []byte
	)
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		config, err := store.BridgeConfigs().Get(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		tx, err = getBridgeTx(ctx, store, txID)
		if err != nil {
			return err
		}
		if tx.Sender != caller {
			return ErrNotSender
		}
		if tx.State != models.BridgeTxStateLocked && tx.State != models.BridgeTxStateRelayed {
			return fmt.Errorf("%w: %s", ErrInvalidState, tx.State)
		}
		if s.clock().Unix() < tx.Timestamp+int64(s.refundWindow/time.Second) {
			return ErrRefundTooEarly
		}

		locked, ok := utils.CheckedSub(config.TotalLocked, tx.Amount)
		if !ok {
			return ErrArithmeticOverflow
		}
		config.TotalLocked = locked
		tx.State = models.BridgeTxStateRefunded

		if err := store.BridgeTxs().Update(ctx, tx); err != nil {
			return err
		}
		if err := store.BridgeConfigs().Update(ctx, config); err != nil {
			return err
		}

		if err := s.transfer.Transfer(ctx, s.vault, tx.Sender, s.vaultCap, tx.Amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}

		published, err = appendEvent(ctx, store, models.EventAssetRefunded, struct {
			TxID   string `json:"tx_id"`
			Sender string `json:"sender"`
			Amount uint64 `json:"amount"`
		}{tx.ID, tx.Sender, tx.Amount})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventAssetRefunded, published)
	return tx, nil
}

// AddRelayer registers a confirmation provider. Authority only.
func (s *BridgeService) AddRelayer(ctx context.Context, caller, relayerAuthority string) (*models.Relayer, error) {
	relayer := &models.Relayer{
		Authority: relayerAuthority,
		Active:    true,
	}
	var published []byte
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		if _, err := s.requireBridgeAuthority(ctx, store, caller); err != nil {
			return err
		}
		if err := store.Relayers().Create(ctx, relayer); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrRelayerExists
			}
			return err
		}
		var err error
		published, err = appendEvent(ctx, store, models.EventRelayerAdded, struct {
			Relayer string `json:"relayer"`
		}{relayerAuthority})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventRelayerAdded, published)
	return relayer, nil
}

// Slash permanently excludes a relayer from confirming transactions.
func (s *BridgeService) Slash(ctx context.Context, caller, relayerAuthority string) (*models.Relayer, error) {
	var (
		relayer   *models.Relayer
		published []byte
	)
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		if _, err := s.requireBridgeAuthority(ctx, store, caller); err != nil {
			return err
		}
		var err error
		relayer, err = store.Relayers().GetByAuthority(ctx, relayerAuthority)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRelayerNotFound
			}
			return err
		}
		relayer.Active = false
		relayer.Slashed = true
		if err := store.Relayers().Update(ctx, relayer); err != nil {
			return err
		}
		published, err = appendEvent(ctx, store, models.EventRelayerSlashed, struct {
			Relayer string `json:"relayer"`
		}{relayerAuthority})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventRelayerSlashed, published)
	return relayer, nil
}

// UpdateFee sets the bridge fee in basis points, capped at 10%.
func (s *BridgeService) UpdateFee(ctx context.Context, caller string, feeBps uint32) (*models.BridgeConfig, error) {
	if feeBps > MaxFeeBps {
		return nil, ErrFeeTooHigh
	}
	var (
		config    *models.BridgeConfig
		published []byte
	)
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		var err error
		config, err = s.requireBridgeAuthority(ctx, store, caller)
		if err != nil {
			return err
		}
		config.FeeBps = feeBps
		if err := store.BridgeConfigs().Update(ctx, config); err != nil {
			return err
		}
		published, err = appendEvent(ctx, store, models.EventBridgeFeeUpdated, struct {
			FeeBps uint32 `json:"fee_bps"`
		}{feeBps})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.sink.Publish(ctx, models.EventBridgeFeeUpdated, published)
	return config, nil
}

// Pause stops locks and unlocks.
func (s *BridgeService) Pause(ctx context.Context, caller string) error {
	return s.setPaused(ctx, caller, true)
}

// Unpause resumes bridge operations.
func (s *BridgeService) Unpause(ctx context.Context, caller string) error {
	return s.setPaused(ctx, caller, false)
}

func (s *BridgeService) setPaused(ctx context.Context, caller string, paused bool) error {
	kind := models.EventBridgePaused
	if !paused {
		kind = models.EventBridgeUnpaused
	}
	var published []byte
	err := s.store.Atomically(ctx, func(store repository.Store) error {
		config, err := s.requireBridgeAuthority(ctx, store, caller)
		if err != nil {
			return err
		}
		config.Paused = paused
		if err := store.BridgeConfigs().Update(ctx, config); err != nil {
			return err
		}
		published, err = appendEvent(ctx, store, kind, struct {
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

// BridgeStatus is the public counter snapshot.
type BridgeStatus struct {
	Config         *models.BridgeConfig `json:"config"`
	ActiveRelayers int64                `json:"active_relayers"`
}

// Status returns the bridge configuration and the active relayer count.
func (s *BridgeService) Status(ctx context.Context) (*BridgeStatus, error) {
	config, err := s.store.BridgeConfigs().Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	active, err := s.store.Relayers().CountActive(ctx)
	if err != nil {
		return nil, err
	}
	return &BridgeStatus{Config: config, ActiveRelayers: active}, nil
}

// GetTransaction returns one bridge transaction by id.
func (s *BridgeService) GetTransaction(ctx context.Context, id string) (*models.BridgeTransaction, error) {
	tx, err := s.store.BridgeTxs().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	return tx, err
}

// ListTransactionsBySender returns the caller's bridge transactions.
func (s *BridgeService) ListTransactionsBySender(ctx context.Context, sender string) ([]models.BridgeTransaction, error) {
	return s.store.BridgeTxs().ListBySender(ctx, sender)
}

// ListRelayers returns every registered relayer.
func (s *BridgeService) ListRelayers(ctx context.Context) ([]models.Relayer, error) {
	return s.store.Relayers().List(ctx)
}

func (s *BridgeService) requireBridgeAuthority(ctx context.Context, store repository.Store, caller string) (*models.BridgeConfig, error) {
	config, err := store.BridgeConfigs().Get(ctx)
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

func getBridgeTx(ctx context.Context, store repository.Store, id string) (*models.BridgeTransaction, error) {
	tx, err := store.BridgeTxs().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// lockTxID derives the transaction id from the lock parameters. The sender
// address is case-normalized so mixed-case input hashes identically.
func lockTxID(sender string, targetChain uint64, recipientCommitment []byte, timestamp int64) string {
	chainLE := make([]byte, 8)
	binary.LittleEndian.PutUint64(chainLE, targetChain)
	tsLE := make([]byte, 8)
	binary.LittleEndian.PutUint64(tsLE, uint64(timestamp))
	digest := crypto.Keccak256(
		[]byte(strings.ToLower(sender)),
		chainLE,
		recipientCommitment,
		tsLE,
	)
	return hexutil.Encode(digest)
}
