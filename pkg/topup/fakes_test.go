package topup

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/TurnIfCode/backend-gogo/models"
	"github.com/TurnIfCode/backend-gogo/pkg/money"
)

type memStore struct {
	mu      sync.Mutex
	rows    map[string]models.TopupTransaction
	wallets map[string]money.Amount
}

func newMemStore() *memStore {
	return &memStore{
		rows:    map[string]models.TopupTransaction{},
		wallets: map[string]money.Amount{},
	}
}

func (m *memStore) Create(_ context.Context, t *models.TopupTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.ID] = *t
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (models.TopupTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return models.TopupTransaction{}, ErrNotFound
	}
	return t, nil
}

func (m *memStore) Mutate(_ context.Context, id string, fn MutateFunc) (models.TopupTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[id]
	if !ok {
		return models.TopupTransaction{}, ErrNotFound
	}
	next, events, err := fn(cur)
	if err != nil {
		return models.TopupTransaction{}, err
	}
	for _, e := range events {
		if e.Type == EventCompleted {
			m.wallets[e.WalletID] = m.wallets[e.WalletID].Add(e.CoinAmount)
		}
	}
	m.rows[id] = next
	return next, nil
}

func (m *memStore) ListByUpdatedAtDesc(_ context.Context) ([]models.TopupTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.TopupTransaction, 0, len(m.rows))
	for _, t := range m.rows {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memStore) get(id string) models.TopupTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

type fakeIngestor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeIngestor) Ingest(_ context.Context, raw string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return raw, nil
}

type fakeBanks struct {
	bank models.Bank
	ok   bool
}

func (f fakeBanks) FirstBank(context.Context) (models.Bank, bool, error) {
	return f.bank, f.ok, nil
}

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

var (
	owner    = Actor{ID: "u-1", Username: "alice", Role: models.RoleUser}
	stranger = Actor{ID: "u-2", Username: "mallory", Role: models.RoleUser}
	admin    = Actor{ID: "u-0", Username: "admin", Role: models.RoleAdministrator}
)

const proofImage = "data:image/png;base64,iVBORw0KGgo="

func newTestService(store Store, images *fakeIngestor, opts Options) *Service {
	clock := &stepClock{t: time.Date(2025, 7, 7, 10, 0, 0, 0, time.UTC)}
	if opts.Now == nil {
		opts.Now = clock.Now
	}
	return NewService(store, nil, images, opts)
}
