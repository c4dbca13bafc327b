//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"learning-access/internal/domain"
	"learning-access/internal/domain/model"
	"learning-access/internal/domain/ports/repository"
	"learning-access/internal/usecase"
)

// --- Mock use cases ---

type mockAuthUC struct {
	mu    sync.Mutex
	roles map[string]model.Role // stored role per user id

	RegisterFunc     func(ctx context.Context, email, password, fullName string) (*model.Profile, error)
	LoginFunc        func(ctx context.Context, email, password string) (*model.Profile, error)
	ProfileFunc      func(ctx context.Context, userID string) (*model.Profile, error)
	SetRoleFunc      func(ctx context.Context, actorID, userID string, role model.Role) (*model.Profile, error)
	ListProfilesFunc func(ctx context.Context, offset, limit int) ([]*model.Profile, int, error)
}

var _ usecase.AuthUseCase = (*mockAuthUC)(nil)

func (m *mockAuthUC) Register(ctx context.Context, email, password, fullName string) (*model.Profile, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, email, password, fullName)
	}
	return &model.Profile{ID: "new-user", Email: email, FullName: fullName, Role: model.RoleUser}, nil
}

func (m *mockAuthUC) Login(ctx context.Context, email, password string) (*model.Profile, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

// storeRole records the role the profile store holds for userID.
func (m *mockAuthUC) storeRole(userID string, role model.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles == nil {
		m.roles = map[string]model.Role{}
	}
	m.roles[userID] = role
}

func (m *mockAuthUC) storedRole(userID string) model.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.roles[userID]; ok {
		return r
	}
	return model.RoleUser
}

func (m *mockAuthUC) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx, userID)
	}
	return &model.Profile{ID: userID, Email: userID + "@demo.com", Role: m.storedRole(userID)}, nil
}

func (m *mockAuthUC) SetRole(ctx context.Context, actorID, userID string, role model.Role) (*model.Profile, error) {
	if m.SetRoleFunc != nil {
		return m.SetRoleFunc(ctx, actorID, userID, role)
	}
	m.storeRole(userID, role)
	return &model.Profile{ID: userID, Role: role}, nil
}

func (m *mockAuthUC) ListProfiles(ctx context.Context, offset, limit int) ([]*model.Profile, int, error) {
	if m.ListProfilesFunc != nil {
		return m.ListProfilesFunc(ctx, offset, limit)
	}
	return []*model.Profile{}, 0, nil
}

type mockRedemptionUC struct {
	RedeemFunc  func(ctx context.Context, userID, rawCode string) (*usecase.GrantDescription, error)
	HistoryFunc func(ctx context.Context, userID string) ([]*model.Redemption, error)
}

var _ usecase.RedemptionUseCase = (*mockRedemptionUC)(nil)

func (m *mockRedemptionUC) Redeem(ctx context.Context, userID, rawCode string) (*usecase.GrantDescription, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, userID, rawCode)
	}
	return nil, domain.ErrInvalidCode
}

func (m *mockRedemptionUC) History(ctx context.Context, userID string) ([]*model.Redemption, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID)
	}
	return nil, nil
}

type mockAccessCodeUC struct {
	CreateFunc   func(ctx context.Context, actorID string, in usecase.CreateCodeInput) (*model.AccessCode, error)
	GenerateFunc func(ctx context.Context, actorID string, in usecase.CreateCodeInput, count int) ([]*model.AccessCode, error)
	ListFunc     func(ctx context.Context, f repository.AccessCodeFilter) ([]*model.AccessCode, error)
}

var _ usecase.AccessCodeUseCase = (*mockAccessCodeUC)(nil)

func (m *mockAccessCodeUC) Create(ctx context.Context, actorID string, in usecase.CreateCodeInput) (*model.AccessCode, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actorID, in)
	}
	return &model.AccessCode{ID: "c1", Code: in.Code, EffectKind: in.EffectKind, EffectTarget: in.EffectTarget, MaxUses: in.MaxUses, IsActive: true}, nil
}

func (m *mockAccessCodeUC) Generate(ctx context.Context, actorID string, in usecase.CreateCodeInput, count int) ([]*model.AccessCode, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, actorID, in, count)
	}
	return nil, nil
}

func (m *mockAccessCodeUC) Get(ctx context.Context, id string) (*model.AccessCode, error) {
	return nil, domain.ErrNotFound
}

func (m *mockAccessCodeUC) List(ctx context.Context, f repository.AccessCodeFilter) ([]*model.AccessCode, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return []*model.AccessCode{}, nil
}

func (m *mockAccessCodeUC) SetActive(ctx context.Context, id string, active bool) (*model.AccessCode, error) {
	return &model.AccessCode{ID: id, IsActive: active, MaxUses: 1}, nil
}

func (m *mockAccessCodeUC) SetMaxUses(ctx context.Context, id string, maxUses int) (*model.AccessCode, error) {
	return &model.AccessCode{ID: id, IsActive: true, MaxUses: maxUses}, nil
}

func (m *mockAccessCodeUC) Redemptions(ctx context.Context, id string) ([]*model.Redemption, error) {
	return nil, nil
}

type mockLearningUC struct {
	RecordProgressFunc func(ctx context.Context, userID, programID, lessonID string, completed bool, timeSpent int) (*model.Enrollment, error)
}

var _ usecase.LearningUseCase = (*mockLearningUC)(nil)

func (m *mockLearningUC) Programs(ctx context.Context) ([]*model.Program, error) {
	return []*model.Program{{ID: "zaad", Title: "ZAAD", LessonCount: 8}}, nil
}

func (m *mockLearningUC) MyPrograms(ctx context.Context, userID string) ([]*model.Enrollment, error) {
	return nil, nil
}

func (m *mockLearningUC) RecordProgress(ctx context.Context, userID, programID, lessonID string, completed bool, timeSpent int) (*model.Enrollment, error) {
	if m.RecordProgressFunc != nil {
		return m.RecordProgressFunc(ctx, userID, programID, lessonID, completed, timeSpent)
	}
	return nil, domain.ErrNotEnrolled
}

func (m *mockLearningUC) LessonProgress(ctx context.Context, userID, programID string) ([]*model.LessonProgress, error) {
	return nil, nil
}

func (m *mockLearningUC) SaveContent(ctx context.Context, userID string, t model.ContentType, contentID, title string) (*model.SavedContent, error) {
	return &model.SavedContent{ID: "s1", UserID: userID, ContentType: t, ContentID: contentID, ContentTitle: title}, nil
}

func (m *mockLearningUC) RemoveSavedContent(ctx context.Context, userID string, t model.ContentType, contentID string) error {
	return nil
}

func (m *mockLearningUC) SavedContent(ctx context.Context, userID string) ([]*model.SavedContent, error) {
	return nil, nil
}

// --- Mock SessionRevoker ---

type mockRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	Err     error
}

func newMockRevoker() *mockRevoker { return &mockRevoker{revoked: map[string]time.Time{}} }

func (m *mockRevoker) Revoke(ctx context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[id] = until
	return nil
}

func (m *mockRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok, nil
}
