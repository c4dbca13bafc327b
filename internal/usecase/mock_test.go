//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/adapter"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/infra/worker"
)

// =============================
// Repositories
// =============================

// ---- Mock AccessCodeRepository ----

type MockAccessCodeRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.AccessCode
	byCode map[string]string

	// Writes counts every mutating call that succeeded.
	Writes int

	FindByCodeFunc     func(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error)
	IncrementUsageFunc func(ctx context.Context, tx repository.Tx, id string, now time.Time) (int, error)
	InsertFunc         func(ctx context.Context, tx repository.Tx, c *model.AccessCode) error
}

var _ repository.AccessCodeRepository = (*MockAccessCodeRepo)(nil)

func NewMockAccessCodeRepo() *MockAccessCodeRepo {
	return &MockAccessCodeRepo{byID: map[string]*model.AccessCode{}, byCode: map[string]string{}}
}

// Put stores c directly, bypassing Insert bookkeeping.
func (r *MockAccessCodeRepo) Put(c *model.AccessCode) *model.AccessCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	r.byID[cp.ID] = &cp
	r.byCode[cp.Code] = cp.ID
	return c
}

func (r *MockAccessCodeRepo) Snapshot(id string) model.AccessCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.byID[id]
}

func (r *MockAccessCodeRepo) Insert(ctx context.Context, tx repository.Tx, c *model.AccessCode) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byCode[c.Code]; dup {
		return domain.ErrAlreadyExists
	}
	cp := *c
	r.byID[cp.ID] = &cp
	r.byCode[cp.Code] = cp.ID
	r.Writes++
	return nil
}

func (r *MockAccessCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AccessCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MockAccessCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

// IncrementUsage mirrors the conditional UPDATE of the Postgres repository.
func (r *MockAccessCodeRepo) IncrementUsage(ctx context.Context, tx repository.Tx, id string, now time.Time) (int, error) {
	if r.IncrementUsageFunc != nil {
		return r.IncrementUsageFunc(ctx, tx, id, now)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || !c.IsActive || c.CurrentUses >= c.MaxUses || c.IsExpired(now) {
		return 0, domain.ErrExhaustedCode
	}
	c.CurrentUses++
	r.Writes++
	return c.CurrentUses, nil
}

func (r *MockAccessCodeRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsActive = active
	r.Writes++
	return nil
}

func (r *MockAccessCodeRepo) SetMaxUses(ctx context.Context, tx repository.Tx, id string, maxUses int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.MaxUses = maxUses
	r.Writes++
	return nil
}

func (r *MockAccessCodeRepo) List(ctx context.Context, tx repository.Tx, f repository.AccessCodeFilter) ([]*model.AccessCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AccessCode
	for _, c := range r.byID {
		if f.Active != nil && c.IsActive != *f.Active {
			continue
		}
		if f.EffectKind != "" && c.EffectKind != f.EffectKind {
			continue
		}
		if f.Search != "" && !strings.HasPrefix(c.Code, f.Search) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MockAccessCodeRepo) CountByState(ctx context.Context, tx repository.Tx, now time.Time) (map[model.CodeState]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[model.CodeState]int{}
	for _, c := range r.byID {
		out[c.State(now)]++
	}
	return out, nil
}

func (r *MockAccessCodeRepo) UsageDrift(ctx context.Context, tx repository.Tx) ([]model.UsageDrift, error) {
	return nil, nil
}

// ---- Mock ProfileRepository ----

type MockProfileRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.Profile
	Writes int

	SetRoleFunc func(ctx context.Context, tx repository.Tx, userID string, role model.Role) error
}

var _ repository.ProfileRepository = (*MockProfileRepo)(nil)

func NewMockProfileRepo() *MockProfileRepo {
	return &MockProfileRepo{byID: map[string]*model.Profile{}}
}

func (r *MockProfileRepo) Put(p *model.Profile) *model.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.byID[p.ID] = &cp
	return p
}

func (r *MockProfileRepo) RoleOf(id string) model.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		return p.Role
	}
	return ""
}

func (r *MockProfileRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == p.Email {
			return domain.ErrAlreadyExists
		}
	}
	cp := *p
	r.byID[p.ID] = &cp
	r.Writes++
	return nil
}

func (r *MockProfileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockProfileRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockProfileRepo) SetRole(ctx context.Context, tx repository.Tx, userID string, role model.Role) error {
	if r.SetRoleFunc != nil {
		return r.SetRoleFunc(ctx, tx, userID, role)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Role = role
	r.Writes++
	return nil
}

func (r *MockProfileRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Profile
	for _, p := range r.byID {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MockProfileRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

// ---- Mock ProgramRepository ----

type MockProgramRepo struct {
	mu   sync.Mutex
	data map[string]*model.Program
}

var _ repository.ProgramRepository = (*MockProgramRepo)(nil)

func NewMockProgramRepo(programs ...*model.Program) *MockProgramRepo {
	r := &MockProgramRepo{data: map[string]*model.Program{}}
	for _, p := range programs {
		r.data[p.ID] = p
	}
	return r
}

func (r *MockProgramRepo) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockProgramRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockProgramRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Program
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// ---- Mock EnrollmentRepository ----

type MockEnrollmentRepo struct {
	mu   sync.Mutex
	data map[string]*model.Enrollment // key: user|program

	InsertFunc func(ctx context.Context, tx repository.Tx, e *model.Enrollment) error
}

var _ repository.EnrollmentRepository = (*MockEnrollmentRepo)(nil)

func NewMockEnrollmentRepo() *MockEnrollmentRepo {
	return &MockEnrollmentRepo{data: map[string]*model.Enrollment{}}
}

func enrollKey(userID, programID string) string { return userID + "|" + programID }

func (r *MockEnrollmentRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

func (r *MockEnrollmentRepo) Find(ctx context.Context, tx repository.Tx, userID, programID string) (*model.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.data[enrollKey(userID, programID)]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockEnrollmentRepo) Insert(ctx context.Context, tx repository.Tx, e *model.Enrollment) error {
	if r.InsertFunc != nil {
		return r.InsertFunc(ctx, tx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := enrollKey(e.UserID, e.ProgramID)
	if _, ok := r.data[k]; ok {
		return domain.ErrAlreadyEnrolled
	}
	cp := *e
	r.data[k] = &cp
	return nil
}

func (r *MockEnrollmentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Enrollment
	for _, e := range r.data {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

func (r *MockEnrollmentRepo) UpdateProgress(ctx context.Context, tx repository.Tx, e *model.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[enrollKey(e.UserID, e.ProgramID)]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Progress = e.Progress
	cur.CompletedAt = e.CompletedAt
	return nil
}

// ---- Mock RedemptionRepository ----

type MockRedemptionRepo struct {
	mu   sync.Mutex
	rows []*model.Redemption
}

var _ repository.RedemptionRepository = (*MockRedemptionRepo)(nil)

func NewMockRedemptionRepo() *MockRedemptionRepo { return &MockRedemptionRepo{} }

func (r *MockRedemptionRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *MockRedemptionRepo) Insert(ctx context.Context, tx repository.Tx, red *model.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *red
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *MockRedemptionRepo) ListByCode(ctx context.Context, tx repository.Tx, codeID string) ([]*model.Redemption, error) {
	return r.filter(func(x *model.Redemption) bool { return x.CodeID == codeID }), nil
}

func (r *MockRedemptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Redemption, error) {
	return r.filter(func(x *model.Redemption) bool { return x.UserID == userID }), nil
}

func (r *MockRedemptionRepo) filter(keep func(*model.Redemption) bool) []*model.Redemption {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Redemption
	for _, x := range r.rows {
		if keep(x) {
			cp := *x
			out = append(out, &cp)
		}
	}
	return out
}

// ---- Mock LessonProgressRepository ----

type MockProgressRepo struct {
	mu   sync.Mutex
	data map[string]*model.LessonProgress // key: user|program|lesson
}

var _ repository.LessonProgressRepository = (*MockProgressRepo)(nil)

func NewMockProgressRepo() *MockProgressRepo {
	return &MockProgressRepo{data: map[string]*model.LessonProgress{}}
}

func (r *MockProgressRepo) Upsert(ctx context.Context, tx repository.Tx, p *model.LessonProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := p.UserID + "|" + p.ProgramID + "|" + p.LessonID
	if cur, ok := r.data[k]; ok {
		cur.Completed = cur.Completed || p.Completed
		if cur.CompletedAt == nil {
			cur.CompletedAt = p.CompletedAt
		}
		cur.TimeSpent += p.TimeSpent
		return nil
	}
	cp := *p
	r.data[k] = &cp
	return nil
}

func (r *MockProgressRepo) ListByProgram(ctx context.Context, tx repository.Tx, userID, programID string) ([]*model.LessonProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.LessonProgress
	for _, p := range r.data {
		if p.UserID == userID && p.ProgramID == programID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockProgressRepo) CountCompleted(ctx context.Context, tx repository.Tx, userID, programID string) (int, error) {
	list, _ := r.ListByProgram(ctx, tx, userID, programID)
	n := 0
	for _, p := range list {
		if p.Completed {
			n++
		}
	}
	return n, nil
}

// ---- Mock SavedContentRepository ----

type MockSavedContentRepo struct {
	mu   sync.Mutex
	data map[string]*model.SavedContent
}

var _ repository.SavedContentRepository = (*MockSavedContentRepo)(nil)

func NewMockSavedContentRepo() *MockSavedContentRepo {
	return &MockSavedContentRepo{data: map[string]*model.SavedContent{}}
}

func (r *MockSavedContentRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.SavedContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := s.UserID + "|" + string(s.ContentType) + "|" + s.ContentID
	if cur, ok := r.data[k]; ok {
		cur.ContentTitle = s.ContentTitle
		s.ID, s.SavedAt = cur.ID, cur.SavedAt
		return nil
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	cp := *s
	r.data[k] = &cp
	return nil
}

func (r *MockSavedContentRepo) Delete(ctx context.Context, tx repository.Tx, userID string, t model.ContentType, contentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := userID + "|" + string(t) + "|" + contentID
	if _, ok := r.data[k]; !ok {
		return domain.ErrNotFound
	}
	delete(r.data, k)
	return nil
}

func (r *MockSavedContentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.SavedContent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.SavedContent
	for _, s := range r.data {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// =============================
// Infrastructure ports
// =============================

// ---- Mock TransactionManager ----

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

// ---- Mock RateLimiter ----

type MockRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int

	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{counts: map[string]int{}}
}

func (l *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.AllowFunc != nil {
		return l.AllowFunc(ctx, key, limit, window)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

// ---- Mock AdminNotifier ----

type MockNotifier struct {
	mu        sync.Mutex
	Exhausted []string
	Deadlines []time.Time
	Err       error
}

var _ adapter.AdminNotifier = (*MockNotifier)(nil)

func (n *MockNotifier) NotifyCodeExhausted(ctx context.Context, code *model.AccessCode) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Exhausted = append(n.Exhausted, code.Code)
	if dl, ok := ctx.Deadline(); ok {
		n.Deadlines = append(n.Deadlines, dl)
	}
	return n.Err
}

func (n *MockNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Exhausted)
}

// inlineSubmitter runs tasks synchronously so tests can assert on their effects.
type inlineSubmitter struct{ err error }

func (s inlineSubmitter) Submit(task worker.Task) error {
	if s.err != nil {
		return s.err
	}
	return task(context.Background())
}

// ---- Mock PasswordHasher ----

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	if len(password) < 8 {
		return "", domain.ErrInvalidArgument
	}
	return "hashed:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

var errBoom = errors.New("boom")

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
