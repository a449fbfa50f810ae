package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkdex-backend/internal/models"
	"zkdex-backend/internal/repository"
)

const (
	bridgeAuthority = "0x00000000000000000000000000000000000000bb"
	bridgeSender    = "0x00000000000000000000000000000000000000cc"
	bridgeRelayer1  = "0x00000000000000000000000000000000000000d1"
	bridgeRelayer2  = "0x00000000000000000000000000000000000000d2"
)

func initializedBridge(t *testing.T, minConfirmations, feeBps uint32) (*bridgeFixture, context.Context) {
	t.Helper()
	f := newBridgeFixture(t)
	ctx := context.Background()
	_, err := f.service.Initialize(ctx, bridgeAuthority, minConfirmations, feeBps)
	require.NoError(t, err)
	return f, ctx
}

func lockTestAssets(t *testing.T, f *bridgeFixture, ctx context.Context, amount uint64) *models.BridgeTransaction {
	t.Helper()
	tx, err := f.service.LockAssets(ctx, &LockAssetsInput{
		Sender:              bridgeSender,
		Amount:              amount,
		TargetChain:         2,
		RecipientCommitment: repeatByte(0x07, 32),
	})
	require.NoError(t, err)
	return tx
}

func TestBridgeInitialize(t *testing.T) {
	f := newBridgeFixture(t)
	ctx := context.Background()

	_, err := f.service.Initialize(ctx, bridgeAuthority, 2, 1001)
	assert.ErrorIs(t, err, ErrFeeTooHigh)

	config, err := f.service.Initialize(ctx, bridgeAuthority, 2, 250)
	require.NoError(t, err)
	assert.EqualValues(t, 2, config.MinConfirmations)

	_, err = f.service.Initialize(ctx, bridgeAuthority, 2, 250)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestLockAssets(t *testing.T) {
	f, ctx := initializedBridge(t, 2, 250)

	_, err := f.service.LockAssets(ctx, &LockAssetsInput{
		Sender:              bridgeSender,
		Amount:              0,
		TargetChain:         2,
		RecipientCommitment: repeatByte(0x07, 32),
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.service.LockAssets(ctx, &LockAssetsInput{
		Sender:              bridgeSender,
		Amount:              10000,
		TargetChain:         2,
		RecipientCommitment: repeatByte(0x07, 16),
	})
	assert.ErrorIs(t, err, ErrInvalidCommitment)

	// 250 bps of 10000 is a 250 fee.
	tx := lockTestAssets(t, f, ctx, 10000)
	assert.EqualValues(t, 9750, tx.Amount)
	assert.Equal(t, models.BridgeTxStateLocked, tx.State)
	assert.EqualValues(t, models.SourceChainID, tx.SourceChain)
	assert.Zero(t, tx.Confirmations)

	// Deterministic id from sender, chain, commitment and timestamp.
	expected := lockTxID(bridgeSender, 2, repeatByte(0x07, 32), f.clock.Now().Unix())
	assert.Equal(t, expected, tx.ID)

	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9750, status.Config.TotalLocked)

	// The escrow leg moves the gross amount.
	assert.EqualValues(t, 10000, f.transfer.last().Amount)

	// Same parameters in the same second collide.
	_, err = f.service.LockAssets(ctx, &LockAssetsInput{
		Sender:              bridgeSender,
		Amount:              10000,
		TargetChain:         2,
		RecipientCommitment: repeatByte(0x07, 32),
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLockAssetsPaused(t *testing.T) {
	f, ctx := initializedBridge(t, 2, 250)
	require.NoError(t, f.service.Pause(ctx, bridgeAuthority))

	_, err := f.service.LockAssets(ctx, &LockAssetsInput{
		Sender:              bridgeSender,
		Amount:              10000,
		TargetChain:         2,
		RecipientCommitment: repeatByte(0x07, 32),
	})
	assert.ErrorIs(t, err, ErrBridgePaused)

	require.NoError(t, f.service.Unpause(ctx, bridgeAuthority))
	lockTestAssets(t, f, ctx, 10000)
}

func TestRelayQuorum(t *testing.T) {
	f, ctx := initializedBridge(t, 2, 0)
	tx := lockTestAssets(t, f, ctx, 10000)

	_, err := f.service.RelayTransaction(ctx, bridgeRelayer1, tx.ID)
	assert.ErrorIs(t, err, ErrNotActiveRelayer)

	_, err = f.service.AddRelayer(ctx, "0xeve", bridgeRelayer1)
	assert.ErrorIs(t, err, ErrNotAuthority)

	_, err = f.service.AddRelayer(ctx, bridgeAuthority, bridgeRelayer1)
	require.NoError(t, err)
	_, err = f.service.AddRelayer(ctx, bridgeAuthority, bridgeRelayer1)
	assert.ErrorIs(t, err, ErrRelayerExists)
	_, err = f.service.AddRelayer(ctx, bridgeAuthority, bridgeRelayer2)
	require.NoError(t, err)

	relayed, err := f.service.RelayTransaction(ctx, bridgeRelayer1, tx.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, relayed.Confirmations)
	assert.Equal(t, models.BridgeTxStateLocked, relayed.State)

	relayed, err = f.service.RelayTransaction(ctx, bridgeRelayer2, tx.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, relayed.Confirmations)
	assert.Equal(t, models.BridgeTxStateRelayed, relayed.State)

	// Confirmations keep accumulating past the quorum.
	relayed, err = f.service.RelayTransaction(ctx, bridgeRelayer1, tx.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, relayed.Confirmations)
	assert.Equal(t, models.BridgeTxStateRelayed, relayed.State)

	relayer, err := f.store.Relayers().GetByAuthority(ctx, bridgeRelayer1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, relayer.TotalRelayed)

	// Slashed relayers are out for good, and a refused relay leaves the
	// confirmation count where it was.
	_, err = f.service.Slash(ctx, bridgeAuthority, bridgeRelayer1)
	require.NoError(t, err)
	_, err = f.service.RelayTransaction(ctx, bridgeRelayer1, tx.ID)
	assert.ErrorIs(t, err, ErrNotActiveRelayer)
	after, err := f.service.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, after.Confirmations)
}

func TestUnlockAssets(t *testing.T) {
	f, ctx := initializedBridge(t, 1, 250)
	tx := lockTestAssets(t, f, ctx, 10000)
	_, err := f.service.AddRelayer(ctx, bridgeAuthority, bridgeRelayer1)
	require.NoError(t, err)

	unlock := &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: repeatByte(0x09, 32),
		Proof:     validRelationProof(),
	}

	_, err = f.service.UnlockAssets(ctx, unlock)
	assert.ErrorIs(t, err, ErrInsufficientConfirmations)

	_, err = f.service.RelayTransaction(ctx, bridgeRelayer1, tx.ID)
	require.NoError(t, err)

	completed, err := f.service.UnlockAssets(ctx, unlock)
	require.NoError(t, err)
	assert.Equal(t, models.BridgeTxStateCompleted, completed.State)
	assert.NotEmpty(t, completed.Nullifier)

	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 9750, status.Config.TotalUnlocked)

	out := f.transfer.last()
	assert.Equal(t, "0xrecipient", out.To)
	assert.EqualValues(t, 9750, out.Amount)
	assert.NotEmpty(t, out.Capability)

	// A completed transaction cannot be unlocked again.
	_, err = f.service.UnlockAssets(ctx, unlock)
	assert.ErrorIs(t, err, ErrInvalidState)

	// The nullifier is burned even for a different transaction.
	f.clock.Advance(time.Second)
	tx2 := lockTestAssets(t, f, ctx, 10000)
	_, err = f.service.RelayTransaction(ctx, bridgeRelayer1, tx2.ID)
	require.NoError(t, err)
	unlock.TxID = tx2.ID
	_, err = f.service.UnlockAssets(ctx, unlock)
	assert.ErrorIs(t, err, ErrNullifierUsed)
}

func TestUnlockAcceptsLockedStateAtQuorum(t *testing.T) {
	// With a zero quorum the locked state qualifies immediately.
	f, ctx := initializedBridge(t, 0, 0)
	tx := lockTestAssets(t, f, ctx, 5000)

	completed, err := f.service.UnlockAssets(ctx, &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: repeatByte(0x09, 32),
		Proof:     validRelationProof(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BridgeTxStateCompleted, completed.State)
}

func TestUnlockRejectsBadProof(t *testing.T) {
	f, ctx := initializedBridge(t, 0, 0)
	tx := lockTestAssets(t, f, ctx, 5000)

	short := repeatByte(0x22, 64)
	_, err := f.service.UnlockAssets(ctx, &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: repeatByte(0x09, 32),
		Proof:     short,
	})
	assert.ErrorIs(t, err, ErrInvalidProof)

	zeroed := validRelationProof()
	for i := 0; i < 64; i++ {
		zeroed[i] = 0
	}
	_, err = f.service.UnlockAssets(ctx, &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: repeatByte(0x09, 32),
		Proof:     zeroed,
	})
	assert.ErrorIs(t, err, ErrInvalidProof)

	// Failed unlocks leave the transaction locked.
	got, err := f.service.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BridgeTxStateLocked, got.State)
}

func TestUnlockTransferFailureLeavesNullifierUnused(t *testing.T) {
	f, ctx := initializedBridge(t, 0, 0)
	tx := lockTestAssets(t, f, ctx, 5000)

	f.transfer.fail = func(from, to string, amount uint64) error {
		if to == "0xrecipient" {
			return errors.New("payout refused")
		}
		return nil
	}
	nullifier := repeatByte(0x09, 32)
	_, err := f.service.UnlockAssets(ctx, &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: nullifier,
		Proof:     validRelationProof(),
	})
	assert.ErrorIs(t, err, ErrTransferFailed)

	// Everything rolled back: state, counters and the nullifier.
	got, err := f.service.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BridgeTxStateLocked, got.State)
	assert.Empty(t, got.Nullifier)

	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Config.TotalUnlocked)

	_, err = f.store.Nullifiers().Get(ctx, hexutil.Encode(nullifier))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// The unlock works once the payout recovers.
	f.transfer.fail = nil
	completed, err := f.service.UnlockAssets(ctx, &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: nullifier,
		Proof:     validRelationProof(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BridgeTxStateCompleted, completed.State)
}

func TestRefundTransaction(t *testing.T) {
	f, ctx := initializedBridge(t, 2, 250)
	tx := lockTestAssets(t, f, ctx, 10000)

	_, err := f.service.RefundTransaction(ctx, "0xeve", tx.ID)
	assert.ErrorIs(t, err, ErrNotSender)

	_, err = f.service.RefundTransaction(ctx, bridgeSender, tx.ID)
	assert.ErrorIs(t, err, ErrRefundTooEarly)

	f.clock.Advance(24*time.Hour + time.Second)
	refunded, err := f.service.RefundTransaction(ctx, bridgeSender, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BridgeTxStateRefunded, refunded.State)

	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Config.TotalLocked)

	out := f.transfer.last()
	assert.Equal(t, bridgeSender, out.To)
	assert.EqualValues(t, 9750, out.Amount)

	// Terminal states cannot be refunded or unlocked.
	_, err = f.service.RefundTransaction(ctx, bridgeSender, tx.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = f.service.UnlockAssets(ctx, &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: repeatByte(0x09, 32),
		Proof:     validRelationProof(),
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestFailTransaction(t *testing.T) {
	f, ctx := initializedBridge(t, 2, 250)
	tx := lockTestAssets(t, f, ctx, 10000)

	_, err := f.service.FailTransaction(ctx, "0xeve", tx.ID, "relayers stalled")
	assert.ErrorIs(t, err, ErrNotAuthority)

	failed, err := f.service.FailTransaction(ctx, bridgeAuthority, tx.ID, "relayers stalled")
	require.NoError(t, err)
	assert.Equal(t, models.BridgeTxStateFailed, failed.State)
	assert.True(t, failed.State.Terminal())

	_, err = f.service.FailTransaction(ctx, bridgeAuthority, tx.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBridgeFeeAndStatus(t *testing.T) {
	f, ctx := initializedBridge(t, 2, 250)

	_, err := f.service.UpdateFee(ctx, "0xeve", 100)
	assert.ErrorIs(t, err, ErrNotAuthority)
	_, err = f.service.UpdateFee(ctx, bridgeAuthority, 1001)
	assert.ErrorIs(t, err, ErrFeeTooHigh)

	config, err := f.service.UpdateFee(ctx, bridgeAuthority, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 100, config.FeeBps)

	_, err = f.service.AddRelayer(ctx, bridgeAuthority, bridgeRelayer1)
	require.NoError(t, err)
	_, err = f.service.AddRelayer(ctx, bridgeAuthority, bridgeRelayer2)
	require.NoError(t, err)
	_, err = f.service.Slash(ctx, bridgeAuthority, bridgeRelayer2)
	require.NoError(t, err)

	status, err := f.service.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, status.ActiveRelayers)

	relayers, err := f.service.ListRelayers(ctx)
	require.NoError(t, err)
	assert.Len(t, relayers, 2)
}

func TestBridgeEventSequence(t *testing.T) {
	f, ctx := initializedBridge(t, 0, 0)
	tx := lockTestAssets(t, f, ctx, 5000)

	// Failed unlock appends nothing.
	_, err := f.service.UnlockAssets(ctx, &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: repeatByte(0x09, 16),
		Proof:     validRelationProof(),
	})
	require.Error(t, err)

	_, err = f.service.UnlockAssets(ctx, &UnlockAssetsInput{
		Caller:    "0xanyone",
		TxID:      tx.ID,
		Recipient: "0xrecipient",
		Nullifier: repeatByte(0x09, 32),
		Proof:     validRelationProof(),
	})
	require.NoError(t, err)

	events, err := f.store.Events().ListAfter(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventAssetLocked, events[0].Kind)
	assert.Equal(t, models.EventAssetUnlocked, events[1].Kind)
	assert.Greater(t, events[1].ID, events[0].ID)
}
