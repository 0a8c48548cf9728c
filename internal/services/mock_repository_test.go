package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRepository is an in-memory Repository. Results carry the same
// (user_id, level) uniqueness the database enforces.
type MockRepository struct {
	questions *mockQuestionRepository
	settings  *mockSettingsRepository
	results   *mockResultRepository
	users     *mockUserRepository

	txErr error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		questions: &mockQuestionRepository{items: map[uint]*models.Question{}},
		settings:  &mockSettingsRepository{items: map[models.Level]*models.TestSettings{}},
		results:   &mockResultRepository{},
		users:     &mockUserRepository{items: map[string]*models.User{}},
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository         { return m.questions }
func (m *MockRepository) TestSettings() repositories.TestSettingsRepository { return m.settings }
func (m *MockRepository) Result() repositories.ResultRepository             { return m.results }
func (m *MockRepository) User() repositories.UserRepository                 { return m.users }
func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }

// ===== QUESTIONS =====

type mockQuestionRepository struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]*models.Question
}

func (r *mockQuestionRepository) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	q.ID = r.nextID
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	clone := *q
	r.items[q.ID] = &clone
	return nil
}

func (r *mockQuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *q
	return &clone, nil
}

func (r *mockQuestionRepository) Update(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[q.ID]; !ok {
		return repositories.ErrNotFound
	}
	q.UpdatedAt = time.Now()
	clone := *q
	r.items[q.ID] = &clone
	return nil
}

func (r *mockQuestionRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *mockQuestionRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Question
	for _, q := range r.sorted() {
		if filters.Level != nil && q.Level != *filters.Level {
			continue
		}
		if filters.Type != nil && q.Type != *filters.Type {
			continue
		}
		if filters.IsActive != nil && q.IsActive != *filters.IsActive {
			continue
		}
		if filters.Query != "" && !strings.Contains(strings.ToLower(q.QuestionRu+q.QuestionKg), strings.ToLower(filters.Query)) {
			continue
		}
		out = append(out, q)
	}
	total := int64(len(out))
	if filters.Offset < len(out) {
		out = out[filters.Offset:]
	} else {
		out = nil
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r *mockQuestionRepository) ListActiveByLevel(ctx context.Context, tx *gorm.DB, level models.Level) ([]*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Question
	for _, q := range r.sorted() {
		if q.Level == level && q.IsActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *mockQuestionRepository) CountActiveByLevel(ctx context.Context, tx *gorm.DB, level models.Level) (int64, error) {
	active, _ := r.ListActiveByLevel(ctx, tx, level)
	return int64(len(active)), nil
}

func (r *mockQuestionRepository) GetGradingSet(ctx context.Context, tx *gorm.DB, level models.Level) ([]models.GradingItem, error) {
	active, _ := r.ListActiveByLevel(ctx, tx, level)
	items := make([]models.GradingItem, 0, len(active))
	for _, q := range active {
		items = append(items, models.GradingItem{
			ID:            q.ID,
			Type:          q.Type,
			CorrectAnswer: q.CorrectAnswer,
			QuestionRu:    q.QuestionRu,
			QuestionKg:    q.QuestionKg,
		})
	}
	return items, nil
}

// sorted returns copies in id order; callers hold the lock
func (r *mockQuestionRepository) sorted() []*models.Question {
	out := make([]*models.Question, 0, len(r.items))
	for _, q := range r.items {
		clone := *q
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ===== SETTINGS =====

type mockSettingsRepository struct {
	mu    sync.Mutex
	items map[models.Level]*models.TestSettings
}

func (r *mockSettingsRepository) GetByLevel(ctx context.Context, tx *gorm.DB, level models.Level) (*models.TestSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[level]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *mockSettingsRepository) Upsert(ctx context.Context, tx *gorm.DB, settings *models.TestSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings.UpdatedAt = time.Now()
	clone := *settings
	r.items[settings.Level] = &clone
	return nil
}

func (r *mockSettingsRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.TestSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TestSettings
	for _, level := range models.AllLevels() {
		if s, ok := r.items[level]; ok {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ===== RESULTS =====

type mockResultRepository struct {
	mu      sync.Mutex
	nextID  uint
	items   []*models.Result
	failErr error
}

func (r *mockResultRepository) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	for _, existing := range r.items {
		if existing.UserID == result.UserID && existing.Level == result.Level {
			return repositories.ErrDuplicate
		}
	}
	r.nextID++
	result.ID = r.nextID
	clone := *result
	r.items = append(r.items, &clone)
	return nil
}

func (r *mockResultRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.ID == id {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockResultRepository) ExistsByUserAndLevel(ctx context.Context, tx *gorm.DB, userID string, level models.Level) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.UserID == userID && existing.Level == level {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockResultRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Result, error) {
	userFilter := userID
	results, _, err := r.List(ctx, tx, repositories.ResultFilters{UserID: &userFilter})
	return results, err
}

func (r *mockResultRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Result
	for _, existing := range r.items {
		if filters.UserID != nil && existing.UserID != *filters.UserID {
			continue
		}
		if filters.Level != nil && existing.Level != *filters.Level {
			continue
		}
		clone := *existing
		out = append(out, &clone)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	total := int64(len(out))
	if filters.Offset < len(out) {
		out = out[filters.Offset:]
	} else {
		out = nil
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r *mockResultRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// ===== USERS =====

type mockUserRepository struct {
	items   map[string]*models.User
	failErr error
}

func (r *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	u, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (r *mockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *mockUserRepository) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	if r.failErr != nil {
		return nil, 0, r.failErr
	}
	var out []*models.User
	for _, u := range r.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

var errStorageDown = errors.New("storage unavailable")
