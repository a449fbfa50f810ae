package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkdex-backend/internal/models"
)

const swapAuthority = "0x00000000000000000000000000000000000000aa"

func initializedSwap(t *testing.T) (*swapFixture, context.Context) {
	t.Helper()
	f := newSwapFixture(t)
	ctx := context.Background()
	_, err := f.service.Initialize(ctx, swapAuthority, 30)
	require.NoError(t, err)
	return f, ctx
}

func createTestPool(t *testing.T, f *swapFixture, ctx context.Context) *models.Pool {
	t.Helper()
	pool, err := f.service.CreatePool(ctx, "0xcreator", "0xtokenA", "0xtokenB")
	require.NoError(t, err)
	return pool
}

func addTestLiquidity(t *testing.T, f *swapFixture, ctx context.Context, poolID, provider string, amountA, amountB uint64) *models.LiquidityPosition {
	t.Helper()
	position, err := f.service.AddLiquidity(ctx, &AddLiquidityInput{
		Caller:      provider,
		PoolID:      poolID,
		AmountA:     amountA,
		AmountB:     amountB,
		CommitmentA: repeatByte(0x05, 32),
		CommitmentB: repeatByte(0x06, 32),
		ProofA:      validRangeProof(),
		ProofB:      validRangeProof(),
	})
	require.NoError(t, err)
	return position
}

func TestSwapInitialize(t *testing.T) {
	f := newSwapFixture(t)
	ctx := context.Background()

	_, err := f.service.Initialize(ctx, swapAuthority, 1001)
	assert.ErrorIs(t, err, ErrFeeTooHigh)

	config, err := f.service.Initialize(ctx, swapAuthority, 30)
	require.NoError(t, err)
	assert.Equal(t, swapAuthority, config.Authority)
	assert.EqualValues(t, 30, config.FeeBps)

	_, err = f.service.Initialize(ctx, swapAuthority, 30)
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestCreatePool(t *testing.T) {
	f := newSwapFixture(t)
	ctx := context.Background()

	_, err := f.service.CreatePool(ctx, "0xcreator", "0xtokenA", "0xtokenB")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = f.service.Initialize(ctx, swapAuthority, 30)
	require.NoError(t, err)

	_, err = f.service.CreatePool(ctx, "0xcreator", "0xtokenA", "0xtokenA")
	assert.ErrorIs(t, err, ErrSameToken)

	pool := createTestPool(t, f, ctx)
	assert.True(t, pool.Initialized)
	assert.Zero(t, pool.ReserveA)
	assert.Zero(t, pool.TotalSupply)

	_, err = f.service.CreatePool(ctx, "0xother", "0xtokenA", "0xtokenB")
	assert.ErrorIs(t, err, ErrPoolExists)

	config, err := f.service.GetConfig(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, config.TotalPools)
}

func TestAddLiquidityFirstProvider(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)

	// sqrt(100000*100000) = 100000, minus the locked minimum.
	position := addTestLiquidity(t, f, ctx, pool.ID, "0xlp1", 100000, 100000)
	assert.EqualValues(t, 99000, position.Liquidity)

	got, err := f.service.GetPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 100000, got.ReserveA)
	assert.EqualValues(t, 100000, got.ReserveB)
	assert.EqualValues(t, 99000, got.TotalSupply)

	// Both deposit legs went to the pool vault.
	assert.Equal(t, 2, f.transfer.count())
	assert.Equal(t, "0xlp1", f.transfer.calls[0].From)

	kinds := f.sink.published()
	assert.Contains(t, kinds, models.EventLiquidityAdded)
}

func TestAddLiquidityFirstDepositTooSmall(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)

	_, err := f.service.AddLiquidity(ctx, &AddLiquidityInput{
		Caller:      "0xlp1",
		PoolID:      pool.ID,
		AmountA:     10,
		AmountB:     10,
		CommitmentA: repeatByte(0x05, 32),
		CommitmentB: repeatByte(0x06, 32),
		ProofA:      validRangeProof(),
		ProofB:      validRangeProof(),
	})
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestAddLiquiditySubsequentProvider(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)
	addTestLiquidity(t, f, ctx, pool.ID, "0xlp1", 100000, 100000)

	// 50000 * 99000 / 100000 on both sides.
	position := addTestLiquidity(t, f, ctx, pool.ID, "0xlp2", 50000, 50000)
	assert.EqualValues(t, 49500, position.Liquidity)

	got, err := f.service.GetPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 148500, got.TotalSupply)
	assert.EqualValues(t, 150000, got.ReserveA)
}

func TestAddLiquidityRejectsBadProof(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)

	bad := validRangeProof()
	for i := 0; i < 32; i++ {
		bad[i] = 0
	}
	_, err := f.service.AddLiquidity(ctx, &AddLiquidityInput{
		Caller:      "0xlp1",
		PoolID:      pool.ID,
		AmountA:     100000,
		AmountB:     100000,
		CommitmentA: repeatByte(0x05, 32),
		CommitmentB: repeatByte(0x06, 32),
		ProofA:      bad,
		ProofB:      validRangeProof(),
	})
	assert.ErrorIs(t, err, ErrInvalidProof)
}

func commitTestSwap(t *testing.T, f *swapFixture, ctx context.Context, poolID, owner string) *models.SwapCommitment {
	t.Helper()
	commitment, err := f.service.CommitSwap(ctx, &CommitSwapInput{
		Caller:           owner,
		PoolID:           poolID,
		InputCommitment:  repeatByte(0x03, 32),
		OutputCommitment: repeatByte(0x04, 32),
	})
	require.NoError(t, err)
	return commitment
}

func TestCommitRevealLifecycle(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)
	addTestLiquidity(t, f, ctx, pool.ID, "0xlp1", 100000, 100000)

	commitment := commitTestSwap(t, f, ctx, pool.ID, "0xtrader")
	assert.False(t, commitment.Revealed)

	execute := &ExecuteSwapInput{
		Caller:       "0xtrader",
		CommitmentID: commitment.ID,
		AmountIn:     1000,
		MinAmountOut: 1,
		AToB:         true,
		Proof:        validRangeProof(),
	}

	// One second short of the reveal delay.
	f.clock.Advance(59 * time.Second)
	_, _, err := f.service.ExecuteSwap(ctx, execute)
	assert.ErrorIs(t, err, ErrRevealTooEarly)

	f.clock.Advance(2 * time.Second)

	// fee 30bps on 1000 = 3; 997*997*100000 / (100000*1000 + 997*997) = 984.
	executed, amountOut, err := f.service.ExecuteSwap(ctx, execute)
	require.NoError(t, err)
	assert.EqualValues(t, 984, amountOut)
	assert.True(t, executed.Revealed)
	assert.True(t, executed.Executed)

	got, err := f.service.GetPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 101000, got.ReserveA)
	assert.EqualValues(t, 99016, got.ReserveB)

	// Output leg carries the pool capability.
	out := f.transfer.last()
	assert.Equal(t, "0xtrader", out.To)
	assert.EqualValues(t, 984, out.Amount)
	assert.NotEmpty(t, out.Capability)

	_, _, err = f.service.ExecuteSwap(ctx, execute)
	assert.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestExecuteSwapWindowExpiry(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)
	addTestLiquidity(t, f, ctx, pool.ID, "0xlp1", 100000, 100000)
	commitment := commitTestSwap(t, f, ctx, pool.ID, "0xtrader")

	f.clock.Advance(601 * time.Second)
	_, _, err := f.service.ExecuteSwap(ctx, &ExecuteSwapInput{
		Caller:       "0xtrader",
		CommitmentID: commitment.ID,
		AmountIn:     1000,
		AToB:         true,
		Proof:        validRangeProof(),
	})
	assert.ErrorIs(t, err, ErrSwapExpired)
}

func TestExecuteSwapOwnershipAndSlippage(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)
	addTestLiquidity(t, f, ctx, pool.ID, "0xlp1", 100000, 100000)
	commitment := commitTestSwap(t, f, ctx, pool.ID, "0xtrader")
	f.clock.Advance(120 * time.Second)

	_, _, err := f.service.ExecuteSwap(ctx, &ExecuteSwapInput{
		Caller:       "0xeve",
		CommitmentID: commitment.ID,
		AmountIn:     1000,
		AToB:         true,
		Proof:        validRangeProof(),
	})
	assert.ErrorIs(t, err, ErrNotSwapOwner)

	execute := &ExecuteSwapInput{
		Caller:       "0xtrader",
		CommitmentID: commitment.ID,
		AmountIn:     1000,
		MinAmountOut: 985,
		AToB:         true,
		Proof:        validRangeProof(),
	}
	_, _, err = f.service.ExecuteSwap(ctx, execute)
	assert.ErrorIs(t, err, ErrSlippageExceeded)

	// The failed attempt did not consume the commitment.
	execute.MinAmountOut = 984
	_, amountOut, err := f.service.ExecuteSwap(ctx, execute)
	require.NoError(t, err)
	assert.EqualValues(t, 984, amountOut)
}

func TestCancelSwap(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)
	commitment := commitTestSwap(t, f, ctx, pool.ID, "0xtrader")

	_, err := f.service.CancelSwap(ctx, "0xtrader", commitment.ID)
	assert.ErrorIs(t, err, ErrSwapNotExpired)

	f.clock.Advance(601 * time.Second)
	_, err = f.service.CancelSwap(ctx, "0xeve", commitment.ID)
	assert.ErrorIs(t, err, ErrNotSwapOwner)

	cancelled, err := f.service.CancelSwap(ctx, "0xtrader", commitment.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)

	_, _, err = f.service.ExecuteSwap(ctx, &ExecuteSwapInput{
		Caller:       "0xtrader",
		CommitmentID: commitment.ID,
		AmountIn:     1000,
		AToB:         true,
		Proof:        validRangeProof(),
	})
	assert.ErrorIs(t, err, ErrAlreadyExecuted)

	_, err = f.service.CancelSwap(ctx, "0xtrader", commitment.ID)
	assert.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestRemoveLiquidity(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)
	addTestLiquidity(t, f, ctx, pool.ID, "0xlp1", 100000, 100000)

	_, err := f.service.RemoveLiquidity(ctx, "0xlp1", pool.ID, 100000)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	// 49500 of 99000 shares takes half of each reserve.
	got, err := f.service.RemoveLiquidity(ctx, "0xlp1", pool.ID, 49500)
	require.NoError(t, err)
	assert.EqualValues(t, 50000, got.ReserveA)
	assert.EqualValues(t, 50000, got.ReserveB)
	assert.EqualValues(t, 49500, got.TotalSupply)

	out := f.transfer.last()
	assert.EqualValues(t, 50000, out.Amount)
	assert.NotEmpty(t, out.Capability)

	// Draining the rest removes the position entirely.
	got, err = f.service.RemoveLiquidity(ctx, "0xlp1", pool.ID, 49500)
	require.NoError(t, err)
	assert.Zero(t, got.TotalSupply)
	assert.Zero(t, got.ReserveA)

	positions, err := f.service.ListPositions(ctx, "0xlp1")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestSwapPauseGates(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)

	assert.ErrorIs(t, f.service.Pause(ctx, "0xeve"), ErrNotAuthority)
	require.NoError(t, f.service.Pause(ctx, swapAuthority))

	_, err := f.service.CreatePool(ctx, "0xcreator", "0xtokenC", "0xtokenD")
	assert.ErrorIs(t, err, ErrSwapPaused)

	_, err = f.service.CommitSwap(ctx, &CommitSwapInput{
		Caller:           "0xtrader",
		PoolID:           pool.ID,
		InputCommitment:  repeatByte(0x03, 32),
		OutputCommitment: repeatByte(0x04, 32),
	})
	assert.ErrorIs(t, err, ErrSwapPaused)

	require.NoError(t, f.service.Unpause(ctx, swapAuthority))
	_, err = f.service.CreatePool(ctx, "0xcreator", "0xtokenC", "0xtokenD")
	assert.NoError(t, err)
}

func TestUpdateSwapFee(t *testing.T) {
	f, ctx := initializedSwap(t)

	_, err := f.service.UpdateSwapFee(ctx, "0xeve", 50)
	assert.ErrorIs(t, err, ErrNotAuthority)

	_, err = f.service.UpdateSwapFee(ctx, swapAuthority, 1001)
	assert.ErrorIs(t, err, ErrFeeTooHigh)

	config, err := f.service.UpdateSwapFee(ctx, swapAuthority, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 50, config.FeeBps)
}

func TestAddLiquidityTransferFailureRollsBack(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)

	f.transfer.fail = func(from, to string, amount uint64) error {
		return errors.New("treasury unreachable")
	}
	_, err := f.service.AddLiquidity(ctx, &AddLiquidityInput{
		Caller:      "0xlp1",
		PoolID:      pool.ID,
		AmountA:     100000,
		AmountB:     100000,
		CommitmentA: repeatByte(0x05, 32),
		CommitmentB: repeatByte(0x06, 32),
		ProofA:      validRangeProof(),
		ProofB:      validRangeProof(),
	})
	assert.ErrorIs(t, err, ErrTransferFailed)

	got, err := f.service.GetPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ReserveA)
	assert.Zero(t, got.TotalSupply)

	positions, err := f.service.ListPositions(ctx, "0xlp1")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestSwapEventSequence(t *testing.T) {
	f, ctx := initializedSwap(t)
	pool := createTestPool(t, f, ctx)
	addTestLiquidity(t, f, ctx, pool.ID, "0xlp1", 100000, 100000)

	// A failed operation must not leave an event behind.
	_, err := f.service.AddLiquidity(ctx, &AddLiquidityInput{
		Caller:      "0xlp2",
		PoolID:      pool.ID,
		AmountA:     0,
		AmountB:     1,
		CommitmentA: repeatByte(0x05, 32),
		CommitmentB: repeatByte(0x06, 32),
		ProofA:      validRangeProof(),
		ProofB:      validRangeProof(),
	})
	require.Error(t, err)

	commitTestSwap(t, f, ctx, pool.ID, "0xtrader")

	events, err := f.store.Events().ListAfter(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventPoolCreated, events[0].Kind)
	assert.Equal(t, models.EventLiquidityAdded, events[1].Kind)
	assert.Equal(t, models.EventSwapCommitted, events[2].Kind)
	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].ID, events[i-1].ID)
	}

	kinds := f.sink.published()
	assert.Equal(t, []models.EventKind{
		models.EventPoolCreated,
		models.EventLiquidityAdded,
		models.EventSwapCommitted,
	}, kinds)
}
