package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"zkdex-backend/internal/models"
)

// MemoryStore implements Store entirely in memory. It backs service tests
// and the dev profile. Atomically serializes transactions and applies them
// copy-on-write, so a failed transaction leaves no trace.
type MemoryStore struct {
	mu   sync.Mutex
	data *memData
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData()}
}

type memData struct {
	swapConfig   *models.SwapConfig
	pools        map[string]*models.Pool
	positions    map[string]*models.LiquidityPosition
	commitments  map[string]*models.SwapCommitment
	bridgeConfig *models.BridgeConfig
	bridgeTxs    map[string]*models.BridgeTransaction
	nullifiers   map[string]*models.NullifierRecord
	relayers     map[string]*models.Relayer
	events       []models.DomainEvent
	nextPosition uint64
	nextEvent    uint64
}

func newMemData() *memData {
	return &memData{
		pools:        make(map[string]*models.Pool),
		positions:    make(map[string]*models.LiquidityPosition),
		commitments:  make(map[string]*models.SwapCommitment),
		bridgeTxs:    make(map[string]*models.BridgeTransaction),
		nullifiers:   make(map[string]*models.NullifierRecord),
		relayers:     make(map[string]*models.Relayer),
		nextPosition: 1,
		nextEvent:    1,
	}
}

// clone deep-copies the data set. Model structs are flat, so copying the
// struct value copies the record.
func (d *memData) clone() *memData {
	c := &memData{
		pools:        make(map[string]*models.Pool, len(d.pools)),
		positions:    make(map[string]*models.LiquidityPosition, len(d.positions)),
		commitments:  make(map[string]*models.SwapCommitment, len(d.commitments)),
		bridgeTxs:    make(map[string]*models.BridgeTransaction, len(d.bridgeTxs)),
		nullifiers:   make(map[string]*models.NullifierRecord, len(d.nullifiers)),
		relayers:     make(map[string]*models.Relayer, len(d.relayers)),
		events:       make([]models.DomainEvent, len(d.events)),
		nextPosition: d.nextPosition,
		nextEvent:    d.nextEvent,
	}
	if d.swapConfig != nil {
		cfg := *d.swapConfig
		c.swapConfig = &cfg
	}
	if d.bridgeConfig != nil {
		cfg := *d.bridgeConfig
		c.bridgeConfig = &cfg
	}
	for k, v := range d.pools {
		cp := *v
		c.pools[k] = &cp
	}
	for k, v := range d.positions {
		cp := *v
		c.positions[k] = &cp
	}
	for k, v := range d.commitments {
		cp := *v
		c.commitments[k] = &cp
	}
	for k, v := range d.bridgeTxs {
		cp := *v
		c.bridgeTxs[k] = &cp
	}
	for k, v := range d.nullifiers {
		cp := *v
		c.nullifiers[k] = &cp
	}
	for k, v := range d.relayers {
		cp := *v
		c.relayers[k] = &cp
	}
	copy(c.events, d.events)
	return c
}

func positionKey(poolID, provider string) string {
	return poolID + "/" + provider
}

// memView is a Store bound to one transaction's working copy. Its
// repositories touch the data directly; the store lock is already held.
type memView struct {
	data *memData
}

func (s *MemoryStore) SwapConfigs() SwapConfigRepository { return &memSwapConfigs{memRepo{s: s}} }
func (s *MemoryStore) Pools() PoolRepository             { return &memPools{memRepo{s: s}} }
func (s *MemoryStore) Positions() PositionRepository     { return &memPositions{memRepo{s: s}} }
func (s *MemoryStore) SwapCommitments() SwapCommitmentRepository {
	return &memSwapCommitments{memRepo{s: s}}
}
func (s *MemoryStore) BridgeConfigs() BridgeConfigRepository {
	return &memBridgeConfigs{memRepo{s: s}}
}
func (s *MemoryStore) BridgeTxs() BridgeTxRepository   { return &memBridgeTxs{memRepo{s: s}} }
func (s *MemoryStore) Nullifiers() NullifierRepository { return &memNullifiers{memRepo{s: s}} }
func (s *MemoryStore) Relayers() RelayerRepository     { return &memRelayers{memRepo{s: s}} }
func (s *MemoryStore) Events() EventRepository         { return &memEvents{memRepo{s: s}} }

// Atomically runs fn against a working copy of the data and swaps it in
// only when fn succeeds. The store lock is held for the whole transaction.
func (s *MemoryStore) Atomically(_ context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(&memView{data: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (v *memView) SwapConfigs() SwapConfigRepository { return &memSwapConfigs{memRepo{d: v.data}} }
func (v *memView) Pools() PoolRepository             { return &memPools{memRepo{d: v.data}} }
func (v *memView) Positions() PositionRepository     { return &memPositions{memRepo{d: v.data}} }
func (v *memView) SwapCommitments() SwapCommitmentRepository {
	return &memSwapCommitments{memRepo{d: v.data}}
}
func (v *memView) BridgeConfigs() BridgeConfigRepository {
	return &memBridgeConfigs{memRepo{d: v.data}}
}
func (v *memView) BridgeTxs() BridgeTxRepository   { return &memBridgeTxs{memRepo{d: v.data}} }
func (v *memView) Nullifiers() NullifierRepository { return &memNullifiers{memRepo{d: v.data}} }
func (v *memView) Relayers() RelayerRepository     { return &memRelayers{memRepo{d: v.data}} }
func (v *memView) Events() EventRepository         { return &memEvents{memRepo{d: v.data}} }

// Atomically nested inside a transaction keeps the outer working copy and
// rolls back to an inner snapshot on error.
func (v *memView) Atomically(_ context.Context, fn func(Store) error) error {
	snap := v.data.clone()
	if err := fn(v); err != nil {
		*v.data = *snap
		return err
	}
	return nil
}

// memRepo resolves the data set for either access mode: locked live data
// when reached through the store, the working copy inside a transaction.
type memRepo struct {
	s *MemoryStore
	d *memData
}

func (r *memRepo) access() (*memData, func()) {
	if r.d != nil {
		return r.d, func() {}
	}
	r.s.mu.Lock()
	return r.s.data, r.s.mu.Unlock
}

type memSwapConfigs struct{ memRepo }

func (r *memSwapConfigs) Get(_ context.Context) (*models.SwapConfig, error) {
	d, done := r.access()
	defer done()
	if d.swapConfig == nil {
		return nil, ErrNotFound
	}
	cfg := *d.swapConfig
	return &cfg, nil
}

func (r *memSwapConfigs) Create(_ context.Context, config *models.SwapConfig) error {
	d, done := r.access()
	defer done()
	if d.swapConfig != nil {
		return ErrDuplicate
	}
	config.ID = models.SwapConfigID
	stampNew(&config.CreatedAt, &config.UpdatedAt)
	cfg := *config
	d.swapConfig = &cfg
	return nil
}

func (r *memSwapConfigs) Update(_ context.Context, config *models.SwapConfig) error {
	d, done := r.access()
	defer done()
	config.UpdatedAt = time.Now()
	cfg := *config
	d.swapConfig = &cfg
	return nil
}

type memPools struct{ memRepo }

func (r *memPools) Create(_ context.Context, pool *models.Pool) error {
	d, done := r.access()
	defer done()
	if _, ok := d.pools[pool.ID]; ok {
		return ErrDuplicate
	}
	for _, p := range d.pools {
		if p.TokenA == pool.TokenA && p.TokenB == pool.TokenB {
			return ErrDuplicate
		}
	}
	stampNew(&pool.CreatedAt, &pool.UpdatedAt)
	cp := *pool
	d.pools[pool.ID] = &cp
	return nil
}

func (r *memPools) GetByID(_ context.Context, id string) (*models.Pool, error) {
	d, done := r.access()
	defer done()
	p, ok := d.pools[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPools) Update(_ context.Context, pool *models.Pool) error {
	d, done := r.access()
	defer done()
	pool.UpdatedAt = time.Now()
	cp := *pool
	d.pools[pool.ID] = &cp
	return nil
}

func (r *memPools) GetByTokenPair(_ context.Context, tokenA, tokenB string) (*models.Pool, error) {
	d, done := r.access()
	defer done()
	for _, p := range d.pools {
		if p.TokenA == tokenA && p.TokenB == tokenB {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memPools) List(_ context.Context, page, pageSize int) ([]models.Pool, int64, error) {
	d, done := r.access()
	defer done()
	all := make([]models.Pool, 0, len(d.pools))
	for _, p := range d.pools {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return paginate(all, page, pageSize), int64(len(d.pools)), nil
}

type memPositions struct{ memRepo }

func (r *memPositions) Get(_ context.Context, poolID, provider string) (*models.LiquidityPosition, error) {
	d, done := r.access()
	defer done()
	p, ok := d.positions[positionKey(poolID, provider)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPositions) Save(_ context.Context, position *models.LiquidityPosition) error {
	d, done := r.access()
	defer done()
	if position.ID == 0 {
		position.ID = d.nextPosition
		d.nextPosition++
		stampNew(&position.CreatedAt, &position.UpdatedAt)
	} else {
		position.UpdatedAt = time.Now()
	}
	cp := *position
	d.positions[positionKey(position.PoolID, position.Provider)] = &cp
	return nil
}

func (r *memPositions) Delete(_ context.Context, poolID, provider string) error {
	d, done := r.access()
	defer done()
	delete(d.positions, positionKey(poolID, provider))
	return nil
}

func (r *memPositions) ListByProvider(_ context.Context, provider string) ([]models.LiquidityPosition, error) {
	d, done := r.access()
	defer done()
	var out []models.LiquidityPosition
	for _, p := range d.positions {
		if p.Provider == provider {
			out = append(out, *p)
		}
	}
	sortPositions(out)
	return out, nil
}

func (r *memPositions) ListByPool(_ context.Context, poolID string) ([]models.LiquidityPosition, error) {
	d, done := r.access()
	defer done()
	var out []models.LiquidityPosition
	for _, p := range d.positions {
		if p.PoolID == poolID {
			out = append(out, *p)
		}
	}
	sortPositions(out)
	return out, nil
}

type memSwapCommitments struct{ memRepo }

func (r *memSwapCommitments) Create(_ context.Context, commitment *models.SwapCommitment) error {
	d, done := r.access()
	defer done()
	if _, ok := d.commitments[commitment.ID]; ok {
		return ErrDuplicate
	}
	stampNew(&commitment.CreatedAt, &commitment.UpdatedAt)
	cp := *commitment
	d.commitments[commitment.ID] = &cp
	return nil
}

func (r *memSwapCommitments) GetByID(_ context.Context, id string) (*models.SwapCommitment, error) {
	d, done := r.access()
	defer done()
	c, ok := d.commitments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memSwapCommitments) Update(_ context.Context, commitment *models.SwapCommitment) error {
	d, done := r.access()
	defer done()
	commitment.UpdatedAt = time.Now()
	cp := *commitment
	d.commitments[commitment.ID] = &cp
	return nil
}

func (r *memSwapCommitments) ListByOwner(_ context.Context, owner string) ([]models.SwapCommitment, error) {
	d, done := r.access()
	defer done()
	var out []models.SwapCommitment
	for _, c := range d.commitments {
		if c.Owner == owner {
			out = append(out, *c)
		}
	}
	sortCommitments(out)
	return out, nil
}

func (r *memSwapCommitments) ListByPool(_ context.Context, poolID string) ([]models.SwapCommitment, error) {
	d, done := r.access()
	defer done()
	var out []models.SwapCommitment
	for _, c := range d.commitments {
		if c.PoolID == poolID {
			out = append(out, *c)
		}
	}
	sortCommitments(out)
	return out, nil
}

type memBridgeConfigs struct{ memRepo }

func (r *memBridgeConfigs) Get(_ context.Context) (*models.BridgeConfig, error) {
	d, done := r.access()
	defer done()
	if d.bridgeConfig == nil {
		return nil, ErrNotFound
	}
	cfg := *d.bridgeConfig
	return &cfg, nil
}

func (r *memBridgeConfigs) Create(_ context.Context, config *models.BridgeConfig) error {
	d, done := r.access()
	defer done()
	if d.bridgeConfig != nil {
		return ErrDuplicate
	}
	config.ID = models.BridgeConfigID
	stampNew(&config.CreatedAt, &config.UpdatedAt)
	cfg := *config
	d.bridgeConfig = &cfg
	return nil
}

func (r *memBridgeConfigs) Update(_ context.Context, config *models.BridgeConfig) error {
	d, done := r.access()
	defer done()
	config.UpdatedAt = time.Now()
	cfg := *config
	d.bridgeConfig = &cfg
	return nil
}

type memBridgeTxs struct{ memRepo }

func (r *memBridgeTxs) Create(_ context.Context, tx *models.BridgeTransaction) error {
	d, done := r.access()
	defer done()
	if _, ok := d.bridgeTxs[tx.ID]; ok {
		return ErrDuplicate
	}
	stampNew(&tx.CreatedAt, &tx.UpdatedAt)
	cp := *tx
	d.bridgeTxs[tx.ID] = &cp
	return nil
}

func (r *memBridgeTxs) GetByID(_ context.Context, id string) (*models.BridgeTransaction, error) {
	d, done := r.access()
	defer done()
	tx, ok := d.bridgeTxs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *memBridgeTxs) Update(_ context.Context, tx *models.BridgeTransaction) error {
	d, done := r.access()
	defer done()
	tx.UpdatedAt = time.Now()
	cp := *tx
	d.bridgeTxs[tx.ID] = &cp
	return nil
}

func (r *memBridgeTxs) ListBySender(_ context.Context, sender string) ([]models.BridgeTransaction, error) {
	d, done := r.access()
	defer done()
	var out []models.BridgeTransaction
	for _, tx := range d.bridgeTxs {
		if tx.Sender == sender {
			out = append(out, *tx)
		}
	}
	sortBridgeTxs(out)
	return out, nil
}

func (r *memBridgeTxs) ListByState(_ context.Context, state models.BridgeTxState, page, pageSize int) ([]models.BridgeTransaction, int64, error) {
	d, done := r.access()
	defer done()
	var out []models.BridgeTransaction
	for _, tx := range d.bridgeTxs {
		if tx.State == state {
			out = append(out, *tx)
		}
	}
	sortBridgeTxs(out)
	total := int64(len(out))
	return paginate(out, page, pageSize), total, nil
}

type memNullifiers struct{ memRepo }

func (r *memNullifiers) Create(_ context.Context, record *models.NullifierRecord) error {
	d, done := r.access()
	defer done()
	if _, ok := d.nullifiers[record.Nullifier]; ok {
		return ErrDuplicate
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	cp := *record
	d.nullifiers[record.Nullifier] = &cp
	return nil
}

func (r *memNullifiers) Get(_ context.Context, nullifier string) (*models.NullifierRecord, error) {
	d, done := r.access()
	defer done()
	rec, ok := d.nullifiers[nullifier]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

type memRelayers struct{ memRepo }

func (r *memRelayers) Create(_ context.Context, relayer *models.Relayer) error {
	d, done := r.access()
	defer done()
	if _, ok := d.relayers[relayer.Authority]; ok {
		return ErrDuplicate
	}
	stampNew(&relayer.CreatedAt, &relayer.UpdatedAt)
	cp := *relayer
	d.relayers[relayer.Authority] = &cp
	return nil
}

func (r *memRelayers) GetByAuthority(_ context.Context, authority string) (*models.Relayer, error) {
	d, done := r.access()
	defer done()
	rel, ok := d.relayers[authority]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rel
	return &cp, nil
}

func (r *memRelayers) Update(_ context.Context, relayer *models.Relayer) error {
	d, done := r.access()
	defer done()
	relayer.UpdatedAt = time.Now()
	cp := *relayer
	d.relayers[relayer.Authority] = &cp
	return nil
}

func (r *memRelayers) List(_ context.Context) ([]models.Relayer, error) {
	d, done := r.access()
	defer done()
	out := make([]models.Relayer, 0, len(d.relayers))
	for _, rel := range d.relayers {
		out = append(out, *rel)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Authority < out[j].Authority
	})
	return out, nil
}

func (r *memRelayers) CountActive(_ context.Context) (int64, error) {
	d, done := r.access()
	defer done()
	var count int64
	for _, rel := range d.relayers {
		if rel.Active && !rel.Slashed {
			count++
		}
	}
	return count, nil
}

type memEvents struct{ memRepo }

func (r *memEvents) Append(_ context.Context, event *models.DomainEvent) error {
	d, done := r.access()
	defer done()
	event.ID = d.nextEvent
	d.nextEvent++
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now()
	}
	d.events = append(d.events, *event)
	return nil
}

func (r *memEvents) ListAfter(_ context.Context, afterID uint64, limit int) ([]models.DomainEvent, error) {
	d, done := r.access()
	defer done()
	var out []models.DomainEvent
	for _, e := range d.events {
		if e.ID > afterID {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memEvents) ListByKind(_ context.Context, kind models.EventKind, limit int) ([]models.DomainEvent, error) {
	d, done := r.access()
	defer done()
	var out []models.DomainEvent
	for i := len(d.events) - 1; i >= 0; i-- {
		if d.events[i].Kind == kind {
			out = append(out, d.events[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func stampNew(createdAt, updatedAt *time.Time) {
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []T{}
	}
	offset := (page - 1) * pageSize
	if offset >= len(items) {
		return []T{}
	}
	end := offset + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func sortPositions(out []models.LiquidityPosition) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
}

func sortCommitments(out []models.SwapCommitment) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
}

func sortBridgeTxs(out []models.BridgeTransaction) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
}
