package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"zkdex-backend/internal/models"
	"zkdex-backend/internal/repository"
	"zkdex-backend/internal/zkp"
)

type transferCall struct {
	From       string
	To         string
	Capability string
	Amount     uint64
}

// fakeTransfer records transfers and can be told to fail.
type fakeTransfer struct {
	mu    sync.Mutex
	calls []transferCall
	fail  func(from, to string, amount uint64) error
}

func (f *fakeTransfer) Transfer(_ context.Context, from, to, capability string, amount uint64) error {
	if f.fail != nil {
		if err := f.fail(from, to, amount); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, transferCall{from, to, capability, amount})
	return nil
}

func (f *fakeTransfer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransfer) last() transferCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// recordSink collects published event kinds.
type recordSink struct {
	mu    sync.Mutex
	kinds []models.EventKind
}

func (r *recordSink) Publish(_ context.Context, kind models.EventKind, _ []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *recordSink) published() []models.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.EventKind(nil), r.kinds...)
}

// testClock is a manually advanced time source.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type swapFixture struct {
	service  *SwapService
	store    *repository.MemoryStore
	transfer *fakeTransfer
	sink     *recordSink
	clock    *testClock
}

func newSwapFixture(t *testing.T) *swapFixture {
	t.Helper()
	f := &swapFixture{
		store:    repository.NewMemoryStore(),
		transfer: &fakeTransfer{},
		sink:     &recordSink{},
		clock:    newTestClock(),
	}
	f.service = NewSwapService(f.store, zkp.NewStubScheme(), zkp.NewStubVerifier(), f.transfer, f.sink)
	f.service.SetClock(f.clock.Now)
	return f
}

type bridgeFixture struct {
	service  *BridgeService
	store    *repository.MemoryStore
	transfer *fakeTransfer
	sink     *recordSink
	clock    *testClock
}

func newBridgeFixture(t *testing.T) *bridgeFixture {
	t.Helper()
	f := &bridgeFixture{
		store:    repository.NewMemoryStore(),
		transfer: &fakeTransfer{},
		sink:     &recordSink{},
		clock:    newTestClock(),
	}
	f.service = NewBridgeService(f.store, zkp.NewStubScheme(), zkp.NewStubVerifier(), f.transfer, f.sink)
	f.service.SetClock(f.clock.Now)
	return f
}

func repeatByte(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func validRangeProof() []byte {
	return repeatByte(0x11, zkp.StubRangeProofMinSize)
}

func validRelationProof() []byte {
	return repeatByte(0x22, zkp.StubRelationProofSize)
}
