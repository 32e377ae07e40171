//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"celebrity-subscription/internal/domain"
	"celebrity-subscription/internal/domain/model"
	"celebrity-subscription/internal/domain/ports/adapter"
	"celebrity-subscription/internal/domain/ports/repository"
	"celebrity-subscription/internal/usecase"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) usecase.Clock { return func() time.Time { return t } }

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func tierPtr(t model.Tier) *model.Tier                   { return &t }
func durationPtr(d model.DurationType) *model.DurationType { return &d }

// =============================
// Repositories
// =============================

// ---- In-memory PricingRepository ----

type MockPricingRepo struct {
	mu   sync.Mutex
	data map[string]*model.PriceEntry

	GetActiveFunc  func(ctx context.Context, tx repository.Tx, tier model.Tier, duration model.DurationType) (*model.PriceEntry, error)
	ListActiveFunc func(ctx context.Context, tx repository.Tx) ([]*model.PriceEntry, error)
	UpsertFunc     func(ctx context.Context, tx repository.Tx, e *model.PriceEntry) error
}

var _ repository.PricingRepository = (*MockPricingRepo)(nil)

func NewMockPricingRepo() *MockPricingRepo {
	return &MockPricingRepo{data: map[string]*model.PriceEntry{}}
}

func priceKey(t model.Tier, d model.DurationType) string { return string(t) + "/" + string(d) }

func (r *MockPricingRepo) GetActive(ctx context.Context, tx repository.Tx, tier model.Tier, duration model.DurationType) (*model.PriceEntry, error) {
	if r.GetActiveFunc != nil {
		return r.GetActiveFunc(ctx, tx, tier, duration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[priceKey(tier, duration)]
	if !ok || !e.IsActive {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *MockPricingRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PriceEntry, error) {
	if r.ListActiveFunc != nil {
		return r.ListActiveFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PriceEntry
	for _, e := range r.data {
		if e.IsActive {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return priceKey(out[i].Tier, out[i].Duration) < priceKey(out[j].Tier, out[j].Duration)
	})
	return out, nil
}

func (r *MockPricingRepo) Upsert(ctx context.Context, tx repository.Tx, e *model.PriceEntry) error {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.data[priceKey(e.Tier, e.Duration)] = &cp
	return nil
}

// ---- In-memory PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.Mutex
	data  map[string]*model.PaymentRecord
	byRef map[string]string

	CreateFunc             func(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error
	FindByIDFunc           func(ctx context.Context, tx repository.Tx, id string) (*model.PaymentRecord, error)
	MarkVerifiedFunc       func(ctx context.Context, tx repository.Tx, id, verifiedBy string, at time.Time) (bool, error)
	ListByVerificationFunc func(ctx context.Context, tx repository.Tx, verified bool, limit int) ([]*model.PaymentRecord, error)
	SumVerifiedSinceFunc   func(ctx context.Context, tx repository.Tx, since time.Time) (decimal.Decimal, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{data: map[string]*model.PaymentRecord{}, byRef: map[string]string{}}
}

func (r *MockPaymentRepo) Create(ctx context.Context, tx repository.Tx, p *model.PaymentRecord) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byRef[p.ReferenceCode]; dup {
		return domain.ErrAlreadyExists
	}
	cp := *p
	r.data[p.ID] = &cp
	r.byRef[p.ReferenceCode] = p.ID
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentRecord, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPaymentRepo) MarkVerified(ctx context.Context, tx repository.Tx, id, verifiedBy string, at time.Time) (bool, error) {
	if r.MarkVerifiedFunc != nil {
		return r.MarkVerifiedFunc(ctx, tx, id, verifiedBy, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok || p.IsVerified {
		return false, nil
	}
	p.MarkVerified(verifiedBy, at)
	return true, nil
}

func (r *MockPaymentRepo) ListByVerification(ctx context.Context, tx repository.Tx, verified bool, limit int) ([]*model.PaymentRecord, error) {
	if r.ListByVerificationFunc != nil {
		return r.ListByVerificationFunc(ctx, tx, verified, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PaymentRecord
	for _, p := range r.data {
		if p.IsVerified == verified {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockPaymentRepo) CountByVerification(ctx context.Context, tx repository.Tx) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending, verified int
	for _, p := range r.data {
		if p.IsVerified {
			verified++
		} else {
			pending++
		}
	}
	return pending, verified, nil
}

func (r *MockPaymentRepo) SumVerifiedSince(ctx context.Context, tx repository.Tx, since time.Time) (decimal.Decimal, error) {
	if r.SumVerifiedSinceFunc != nil {
		return r.SumVerifiedSinceFunc(ctx, tx, since)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, p := range r.data {
		if p.IsVerified && p.VerifiedAt != nil && !p.VerifiedAt.Before(since) {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

// Count returns the number of stored payments.
func (r *MockPaymentRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// ---- In-memory SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	data map[string]*model.SubscriptionRecord // by celebrity id

	UpsertFunc              func(ctx context.Context, tx repository.Tx, s *model.SubscriptionRecord) error
	CreateFunc              func(ctx context.Context, tx repository.Tx, s *model.SubscriptionRecord) error
	FindByCelebrityFunc     func(ctx context.Context, tx repository.Tx, celebrityID string) (*model.SubscriptionRecord, error)
	ExpireByCelebritiesFunc func(ctx context.Context, tx repository.Tx, ids []string, end time.Time) (int64, error)
	DeactivateLapsedFunc    func(ctx context.Context, tx repository.Tx, now time.Time) ([]string, error)
	CountActiveByTierFunc   func(ctx context.Context, tx repository.Tx, now time.Time) (map[model.Tier]int, error)
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{data: map[string]*model.SubscriptionRecord{}}
}

func (r *MockSubscriptionRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.SubscriptionRecord) error {
	if r.UpsertFunc != nil {
		return r.UpsertFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.data[s.CelebrityID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) Create(ctx context.Context, tx repository.Tx, s *model.SubscriptionRecord) error {
	if r.CreateFunc != nil {
		return r.CreateFunc(ctx, tx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[s.CelebrityID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *s
	r.data[s.CelebrityID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByCelebrity(ctx context.Context, tx repository.Tx, celebrityID string) (*model.SubscriptionRecord, error) {
	if r.FindByCelebrityFunc != nil {
		return r.FindByCelebrityFunc(ctx, tx, celebrityID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[celebrityID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockSubscriptionRepo) ExpireByCelebrities(ctx context.Context, tx repository.Tx, ids []string, end time.Time) (int64, error) {
	if r.ExpireByCelebritiesFunc != nil {
		return r.ExpireByCelebritiesFunc(ctx, tx, ids, end)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if s, ok := r.data[id]; ok {
			s.IsActive = false
			s.End = end
			n++
		}
	}
	return n, nil
}

func (r *MockSubscriptionRepo) DeactivateLapsed(ctx context.Context, tx repository.Tx, now time.Time) ([]string, error) {
	if r.DeactivateLapsedFunc != nil {
		return r.DeactivateLapsedFunc(ctx, tx, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, s := range r.data {
		if s.IsActive && !s.End.After(now) {
			s.IsActive = false
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *MockSubscriptionRepo) CountActiveByTier(ctx context.Context, tx repository.Tx, now time.Time) (map[model.Tier]int, error) {
	if r.CountActiveByTierFunc != nil {
		return r.CountActiveByTierFunc(ctx, tx, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.Tier]int{}
	for _, s := range r.data {
		if !s.IsEffectivelyActive(now) {
			continue
		}
		var tier model.Tier
		if s.Tier != nil {
			tier = *s.Tier
		}
		out[tier]++
	}
	return out, nil
}

// Get returns a copy of the stored record, or nil.
func (r *MockSubscriptionRepo) Get(celebrityID string) *model.SubscriptionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[celebrityID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

// Len returns the number of stored records.
func (r *MockSubscriptionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// ---- In-memory CelebrityRepository ----

type MockCelebrityRepo struct {
	mu   sync.Mutex
	data map[string]*model.Celebrity

	FindByIDFunc     func(ctx context.Context, tx repository.Tx, id string) (*model.Celebrity, error)
	SetFlagsFunc     func(ctx context.Context, tx repository.Tx, id string, flags model.ProfileFlags) error
	SetFlagsBulkFunc func(ctx context.Context, tx repository.Tx, ids []string, flags model.ProfileFlags) (int64, error)
}

var _ repository.CelebrityRepository = (*MockCelebrityRepo)(nil)

func NewMockCelebrityRepo(ids ...string) *MockCelebrityRepo {
	r := &MockCelebrityRepo{data: map[string]*model.Celebrity{}}
	for _, id := range ids {
		r.data[id] = &model.Celebrity{ID: id, DisplayName: id}
	}
	return r
}

func (r *MockCelebrityRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Celebrity, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockCelebrityRepo) SetFlags(ctx context.Context, tx repository.Tx, id string, flags model.ProfileFlags) error {
	if r.SetFlagsFunc != nil {
		return r.SetFlagsFunc(ctx, tx, id, flags)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsVerified, c.IsAvailable = flags.IsVerified, flags.IsAvailable
	return nil
}

func (r *MockCelebrityRepo) SetFlagsBulk(ctx context.Context, tx repository.Tx, ids []string, flags model.ProfileFlags) (int64, error) {
	if r.SetFlagsBulkFunc != nil {
		return r.SetFlagsBulkFunc(ctx, tx, ids, flags)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if c, ok := r.data[id]; ok {
			c.IsVerified, c.IsAvailable = flags.IsVerified, flags.IsAvailable
			n++
		}
	}
	return n, nil
}

// Flags returns the stored listing flags of id.
func (r *MockCelebrityRepo) Flags(id string) model.ProfileFlags {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return model.ProfileFlags{}
	}
	return model.ProfileFlags{IsVerified: c.IsVerified, IsAvailable: c.IsAvailable}
}

// ---- In-memory AdminRepository ----

type MockAdminRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.AdminIdentity

	FindActiveByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*model.AdminIdentity, error)
}

var _ repository.AdminRepository = (*MockAdminRepo)(nil)

func NewMockAdminRepo() *MockAdminRepo {
	return &MockAdminRepo{byEmail: map[string]*model.AdminIdentity{}}
}

func (r *MockAdminRepo) FindActiveByEmail(ctx context.Context, tx repository.Tx, email string) (*model.AdminIdentity, error) {
	if r.FindActiveByEmailFunc != nil {
		return r.FindActiveByEmailFunc(ctx, tx, email)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MockAdminRepo) Save(ctx context.Context, tx repository.Tx, a *model.AdminIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.byEmail[a.Email] = &cp
	return nil
}

// ---- Transaction manager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

type MockNotifier struct {
	mu   sync.Mutex
	Sent []string

	NotifyAdminsFunc func(ctx context.Context, text string) error
}

var _ adapter.AdminNotifier = (*MockNotifier)(nil)

func (m *MockNotifier) NotifyAdmins(ctx context.Context, text string) error {
	if m.NotifyAdminsFunc != nil {
		return m.NotifyAdminsFunc(ctx, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, text)
	return nil
}

type MockVerifier struct {
	VerifyCredentialFunc func(ctx context.Context, credential string) (string, error)
}

var _ adapter.CredentialVerifier = (*MockVerifier)(nil)

func (m *MockVerifier) VerifyCredential(ctx context.Context, credential string) (string, error) {
	if m.VerifyCredentialFunc != nil {
		return m.VerifyCredentialFunc(ctx, credential)
	}
	return "", domain.ErrUnauthorized
}
