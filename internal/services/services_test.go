package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/logic-quiz-service/internal/events"
	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/logic-quiz-service/internal/validator"
)

type recordingMetrics struct {
	mu          sync.Mutex
	submissions []string
	rejections  []string
}

func (r *recordingMetrics) ObserveSubmission(level, colorLevel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, level+":"+colorLevel)
}

func (r *recordingMetrics) ObserveRejection(level, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections = append(r.rejections, level+":"+reason)
}

type testEnv struct {
	repo      *MockRepository
	publisher *events.MockEventPublisher
	metrics   *recordingMetrics
	manager   ServiceManager
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:      NewMockRepository(),
		publisher: events.NewMockEventPublisher(nil),
		metrics:   &recordingMetrics{},
		now:       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	env.manager = NewServiceManager(env.repo, testLogger(), validator.New(), ServiceManagerConfig{
		DefaultTimeLimitMinutes: models.DefaultTimeLimitMinutes,
		Publisher:               env.publisher,
		Metrics:                 env.metrics,
	})
	require.NoError(t, env.manager.Initialize(context.Background()))

	clock := func() time.Time { return env.now }
	env.manager.Scoring().(*scoringService).now = clock
	env.manager.Session().(*sessionService).now = clock

	return env
}

func (e *testEnv) addQuestion(t *testing.T, draft models.QuestionDraft) *models.Question {
	t.Helper()
	q, err := e.manager.Admin().CreateQuestion(context.Background(), draft)
	require.NoError(t, err)
	return q
}

func logicDraft(level models.Level, text string, options []string, correct string) models.QuestionDraft {
	return models.QuestionDraft{
		Level:         level,
		Type:          models.QuestionTypeLogic,
		QuestionRu:    text + " ru",
		QuestionKg:    text + " kg",
		OptionsRu:     options,
		OptionsKg:     options,
		CorrectAnswer: correct,
		IsActive:      true,
	}
}

func motivationalDraft(level models.Level, text string) models.QuestionDraft {
	return models.QuestionDraft{
		Level:      level,
		Type:       models.QuestionTypeMotivational,
		QuestionRu: text + " ru",
		QuestionKg: text + " kg",
		IsActive:   true,
	}
}

// ===== QUESTION BANK =====

func TestQuestionBank_CreateRejectsBrokenParity(t *testing.T) {
	env := newTestEnv(t)

	draft := logicDraft(models.LevelEasy, "q", []string{"a", "b"}, "a")
	draft.OptionsKg = []string{"a"}

	_, err := env.manager.Admin().CreateQuestion(context.Background(), draft)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.HasRule(validator.RuleOptionsParity))
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestQuestionBank_CreatePublishesEvent(t *testing.T) {
	env := newTestEnv(t)

	q := env.addQuestion(t, logicDraft(models.LevelEasy, "q", []string{"a", "b"}, "b"))
	assert.NotZero(t, q.ID)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuestionCreated, published[0].Type)
}

func TestQuestionBank_ListActiveProjection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	logic := env.addQuestion(t, models.QuestionDraft{
		Level:         models.LevelEasy,
		Type:          models.QuestionTypeLogic,
		QuestionRu:    "Вопрос",
		QuestionKg:    "Суроо",
		OptionsRu:     []string{"Да", "Нет"},
		OptionsKg:     []string{"Ооба", "Жок"},
		CorrectAnswer: "Да",
		IsActive:      true,
	})
	env.addQuestion(t, motivationalDraft(models.LevelEasy, "why"))
	inactive := logicDraft(models.LevelEasy, "hidden", []string{"a", "b"}, "a")
	inactive.IsActive = false
	env.addQuestion(t, inactive)
	env.addQuestion(t, logicDraft(models.LevelMedium, "other level", []string{"a", "b"}, "a"))

	views, err := env.manager.QuestionBank().ListActive(ctx, models.LevelEasy, models.LanguageKg)
	require.NoError(t, err)
	require.Len(t, views, 2)

	for _, v := range views {
		if v.ID == logic.ID {
			assert.Equal(t, "Суроо", v.Question)
			assert.Equal(t, []string{"Ооба", "Жок"}, v.Options)
		} else {
			assert.Equal(t, models.QuestionTypeMotivational, v.Type)
			assert.Empty(t, v.Options)
		}
	}

	payload, err := json.Marshal(views)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "correct_answer")
	assert.NotContains(t, string(payload), "Да")
}

func TestQuestionBank_ListActiveReturnsFullSetInAnyOrder(t *testing.T) {
	env := newTestEnv(t)

	var ids []uint
	for i := 0; i < 25; i++ {
		q := env.addQuestion(t, logicDraft(models.LevelMedium, "q", []string{"a", "b"}, "a"))
		ids = append(ids, q.ID)
	}

	views, err := env.manager.QuestionBank().ListActive(context.Background(), models.LevelMedium, models.LanguageRu)
	require.NoError(t, err)

	var got []uint
	for _, v := range views {
		got = append(got, v.ID)
	}
	assert.ElementsMatch(t, ids, got)
}

func TestQuestionBank_InvalidLevel(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.manager.QuestionBank().ListActive(context.Background(), models.Level("hard"), models.LanguageRu)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestQuestionBank_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q := env.addQuestion(t, logicDraft(models.LevelEasy, "q", []string{"a", "b"}, "a"))

	updated, err := env.manager.Admin().UpdateQuestion(ctx, q.ID, logicDraft(models.LevelMedium, "changed", []string{"x", "y", "z"}, "z"))
	require.NoError(t, err)
	assert.Equal(t, models.LevelMedium, updated.Level)
	assert.Equal(t, "z", updated.CorrectAnswer)

	_, err = env.manager.Admin().UpdateQuestion(ctx, 999, logicDraft(models.LevelEasy, "q", []string{"a", "b"}, "a"))
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	id, err := env.manager.Admin().DeleteQuestion(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, id)

	_, err = env.manager.Admin().DeleteQuestion(ctx, q.ID)
	assert.ErrorIs(t, err, ErrQuestionNotFound)

	types := []string{}
	for _, e := range env.publisher.GetPublishedEvents() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{events.EventQuestionCreated, events.EventQuestionUpdated, events.EventQuestionDeleted}, types)
}

func TestQuestionBank_SetActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q := env.addQuestion(t, logicDraft(models.LevelEasy, "q", []string{"a", "b"}, "a"))

	_, err := env.manager.Admin().SetQuestionActive(ctx, q.ID, false)
	require.NoError(t, err)

	views, err := env.manager.QuestionBank().ListActive(ctx, models.LevelEasy, models.LanguageRu)
	require.NoError(t, err)
	assert.Empty(t, views)

	list, err := env.manager.Admin().ListQuestions(ctx, repositories.QuestionFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 20, list.Size)
}

// ===== SESSIONS =====

func TestSession_DefaultTimeLimit(t *testing.T) {
	env := newTestEnv(t)
	env.addQuestion(t, logicDraft(models.LevelEasy, "q", []string{"a", "b"}, "a"))

	session, err := env.manager.Session().StartSession(context.Background(), "u-1", models.LevelEasy, models.LanguageRu)
	require.NoError(t, err)
	assert.Equal(t, 20, session.TimeLimitMinutes)
	assert.Equal(t, 1, session.QuestionCount)
	assert.Equal(t, env.now, session.StartedAt)
}

func TestSession_StoredSettingsAndAlreadyCompleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.manager.Admin().UpdateSettings(ctx, models.LevelMedium, 35, 15)
	require.NoError(t, err)

	session, err := env.manager.Session().StartSession(ctx, "u-1", models.LevelMedium, models.LanguageKg)
	require.NoError(t, err)
	assert.Equal(t, 35, session.TimeLimitMinutes)
	assert.Empty(t, session.Questions)

	_, err = env.manager.Scoring().Submit(ctx, "u-1", models.LevelMedium, nil, nil)
	require.NoError(t, err)

	_, err = env.manager.Session().StartSession(ctx, "u-1", models.LevelMedium, models.LanguageKg)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	// other levels stay open
	_, err = env.manager.Session().StartSession(ctx, "u-1", models.LevelEasy, models.LanguageKg)
	assert.NoError(t, err)
}

func TestSession_Status(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	q := env.addQuestion(t, logicDraft(models.LevelEasy, "q", []string{"a", "b"}, "a"))

	_, err := env.manager.Scoring().Submit(ctx, "u-1", models.LevelEasy, []models.AnswerSubmission{{QuestionID: q.ID, Answer: "a"}}, nil)
	require.NoError(t, err)

	statuses, err := env.manager.Session().Status(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Completed)
	require.NotNil(t, statuses[0].Percentage)
	assert.Equal(t, 100, *statuses[0].Percentage)
	assert.Equal(t, models.ColorHigh, statuses[0].ColorLevel)
	assert.False(t, statuses[1].Completed)
	assert.Nil(t, statuses[1].Percentage)
}

// ===== GRADING =====

func gradingSet() []models.GradingItem {
	return []models.GradingItem{
		{ID: 1, Type: models.QuestionTypeLogic, CorrectAnswer: "A", QuestionRu: "q1", QuestionKg: "k1"},
		{ID: 2, Type: models.QuestionTypeLogic, CorrectAnswer: "B"},
		{ID: 3, Type: models.QuestionTypeLogic, CorrectAnswer: "C"},
		{ID: 4, Type: models.QuestionTypeLogic, CorrectAnswer: "D"},
		{ID: 5, Type: models.QuestionTypeMotivational},
	}
}

func TestGrade(t *testing.T) {
	env := newTestEnv(t)
	scoring := env.manager.Scoring()

	tests := []struct {
		name       string
		answers    []models.AnswerSubmission
		set        []models.GradingItem
		correct    int
		total      int
		percentage int
		color      models.ColorLevel
		trail      int
	}{
		{
			name:    "three of four logic answers",
			answers: []models.AnswerSubmission{{QuestionID: 1, Answer: "A"}, {QuestionID: 2, Answer: "B"}, {QuestionID: 3, Answer: "C"}, {QuestionID: 4, Answer: "x"}, {QuestionID: 5, Answer: "because"}},
			set:     gradingSet(), correct: 3, total: 4, percentage: 75, color: models.ColorHigh, trail: 5,
		},
		{
			name:    "comparison is exact",
			answers: []models.AnswerSubmission{{QuestionID: 1, Answer: "a"}, {QuestionID: 2, Answer: " B"}, {QuestionID: 3, Answer: "C "}, {QuestionID: 4, Answer: "D"}},
			set:     gradingSet(), correct: 1, total: 4, percentage: 25, color: models.ColorWeak, trail: 4,
		},
		{
			name:    "unknown ids are ignored and duplicates count once",
			answers: []models.AnswerSubmission{{QuestionID: 1, Answer: "A"}, {QuestionID: 1, Answer: "A"}, {QuestionID: 42, Answer: "A"}},
			set:     gradingSet(), correct: 1, total: 4, percentage: 25, color: models.ColorWeak, trail: 1,
		},
		{
			name:    "motivational answer matching its empty key does not score",
			answers: []models.AnswerSubmission{{QuestionID: 5, Answer: ""}},
			set:     gradingSet(), correct: 0, total: 4, percentage: 0, color: models.ColorWeak, trail: 1,
		},
		{
			name:    "no logic questions",
			answers: []models.AnswerSubmission{{QuestionID: 5, Answer: "text"}},
			set:     []models.GradingItem{{ID: 5, Type: models.QuestionTypeMotivational}},
			correct: 0, total: 0, percentage: 0, color: models.ColorWeak, trail: 1,
		},
		{
			name:    "no answers",
			set:     gradingSet(),
			correct: 0, total: 4, percentage: 0, color: models.ColorWeak, trail: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := scoring.Grade(tt.answers, tt.set)
			assert.Equal(t, tt.correct, g.CorrectAnswers)
			assert.Equal(t, tt.total, g.TotalQuestions)
			assert.Equal(t, tt.percentage, g.Percentage)
			assert.Equal(t, tt.color, g.ColorLevel)
			assert.Len(t, g.Trail, tt.trail)

			again := scoring.Grade(tt.answers, tt.set)
			assert.Equal(t, g, again)
		})
	}
}

func TestGrade_TrailSnapshot(t *testing.T) {
	env := newTestEnv(t)

	g := env.manager.Scoring().Grade([]models.AnswerSubmission{{QuestionID: 1, Answer: "A"}}, gradingSet())
	require.Len(t, g.Trail, 1)
	assert.Equal(t, models.AnswerTrailEntry{
		QuestionID:     1,
		QuestionType:   models.QuestionTypeLogic,
		QuestionTextRu: "q1",
		QuestionTextKg: "k1",
		GivenAnswer:    "A",
		CorrectAnswer:  "A",
		IsCorrect:      true,
	}, g.Trail[0])
}

// ===== SUBMISSION =====

func seedFourLogic(t *testing.T, env *testEnv, level models.Level) []*models.Question {
	t.Helper()
	var out []*models.Question
	for _, correct := range []string{"a", "b", "a", "b"} {
		out = append(out, env.addQuestion(t, logicDraft(level, "q", []string{"a", "b"}, correct)))
	}
	env.addQuestion(t, motivationalDraft(level, "why"))
	return out
}

func TestSubmit_ScoresAndPersists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	qs := seedFourLogic(t, env, models.LevelEasy)
	env.publisher.ClearEvents()

	start := env.now.Add(-5 * time.Minute)
	score, err := env.manager.Scoring().Submit(ctx, "u-1", models.LevelEasy, []models.AnswerSubmission{
		{QuestionID: qs[0].ID, Answer: "a"},
		{QuestionID: qs[1].ID, Answer: "b"},
		{QuestionID: qs[2].ID, Answer: "a"},
		{QuestionID: qs[3].ID, Answer: "a"},
	}, &start)
	require.NoError(t, err)

	assert.Equal(t, 3, score.Score)
	assert.Equal(t, 3, score.CorrectAnswers)
	assert.Equal(t, 4, score.TotalQuestions)
	assert.Equal(t, 75, score.Percentage)
	assert.Equal(t, models.ColorHigh, score.ColorLevel)
	assert.Equal(t, 20, score.TimeLimitMinutes)
	assert.Equal(t, env.now, score.CompletedAt)

	stored, err := env.manager.Result().GetByID(ctx, score.ResultID, "u-1", false)
	require.NoError(t, err)
	assert.Len(t, stored.Answers, 4)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResultCompleted, published[0].Type)
	assert.Equal(t, []string{"easy:high"}, env.metrics.submissions)
}

func TestSubmit_TrailSurvivesQuestionEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	q := env.addQuestion(t, logicDraft(models.LevelEasy, "original", []string{"a", "b"}, "a"))

	score, err := env.manager.Scoring().Submit(ctx, "u-1", models.LevelEasy, []models.AnswerSubmission{{QuestionID: q.ID, Answer: "a"}}, nil)
	require.NoError(t, err)

	_, err = env.manager.Admin().UpdateQuestion(ctx, q.ID, logicDraft(models.LevelEasy, "rewritten", []string{"c", "d"}, "d"))
	require.NoError(t, err)
	_, err = env.manager.Admin().DeleteQuestion(ctx, q.ID)
	require.NoError(t, err)

	stored, err := env.manager.Result().GetByID(ctx, score.ResultID, "u-1", false)
	require.NoError(t, err)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, "original ru", stored.Answers[0].QuestionTextRu)
	assert.Equal(t, "a", stored.Answers[0].CorrectAnswer)
}

func TestSubmit_TimeExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	qs := seedFourLogic(t, env, models.LevelEasy)

	start := env.now.Add(-20*time.Minute - time.Second)
	_, err := env.manager.Scoring().Submit(ctx, "u-1", models.LevelEasy, []models.AnswerSubmission{{QuestionID: qs[0].ID, Answer: "a"}}, &start)
	assert.ErrorIs(t, err, ErrTimeExpired)
	assert.Equal(t, 0, env.repo.results.count())
	assert.Equal(t, []string{"easy:time_expired"}, env.metrics.rejections)

	// exactly at the limit is still on time
	start = env.now.Add(-20 * time.Minute)
	_, err = env.manager.Scoring().Submit(ctx, "u-1", models.LevelEasy, nil, &start)
	assert.NoError(t, err)
}

func TestSubmit_StartInFutureCountsAsNoElapsedTime(t *testing.T) {
	env := newTestEnv(t)

	start := env.now.Add(time.Hour)
	_, err := env.manager.Scoring().Submit(context.Background(), "u-1", models.LevelMedium, nil, &start)
	assert.NoError(t, err)
}

func TestSubmit_Twice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	qs := seedFourLogic(t, env, models.LevelMedium)
	answers := []models.AnswerSubmission{{QuestionID: qs[0].ID, Answer: "a"}}

	_, err := env.manager.Scoring().Submit(ctx, "u-1", models.LevelMedium, answers, nil)
	require.NoError(t, err)

	_, err = env.manager.Scoring().Submit(ctx, "u-1", models.LevelMedium, answers, nil)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, 1, env.repo.results.count())
	assert.Equal(t, []string{"medium:already_completed"}, env.metrics.rejections)
}

func TestSubmit_ConcurrentSubmissionsYieldOneResult(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	qs := seedFourLogic(t, env, models.LevelEasy)
	answers := []models.AnswerSubmission{{QuestionID: qs[0].ID, Answer: "a"}}

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.manager.Scoring().Submit(ctx, "u-1", models.LevelEasy, answers, nil)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, errors.Is(err, ErrAlreadyCompleted) || errors.Is(err, ErrResultConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, env.repo.results.count())
}

func TestSubmit_StorageFailureIsOpaque(t *testing.T) {
	env := newTestEnv(t)
	env.repo.results.failErr = errStorageDown

	_, err := env.manager.Scoring().Submit(context.Background(), "u-1", models.LevelEasy, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errStorageDown)
	assert.NotErrorIs(t, err, ErrResultConflict)
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestSubmit_PublishFailureDoesNotFailSubmission(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.FailWith(errors.New("broker down"))

	_, err := env.manager.Scoring().Submit(context.Background(), "u-1", models.LevelEasy, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, env.repo.results.count())
}

// ===== RESULTS =====

func TestResult_SaveConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := &models.Result{UserID: "u-1", Level: models.LevelEasy, CompletedAt: env.now}
	require.NoError(t, env.manager.Result().Save(ctx, nil, first))

	second := &models.Result{UserID: "u-1", Level: models.LevelEasy, CompletedAt: env.now}
	assert.ErrorIs(t, env.manager.Result().Save(ctx, nil, second), ErrResultConflict)
}

func TestResult_ListByUserMostRecentFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.manager.Result().Save(ctx, nil, &models.Result{UserID: "u-1", Level: models.LevelEasy, CompletedAt: env.now.Add(-time.Hour)}))
	require.NoError(t, env.manager.Result().Save(ctx, nil, &models.Result{UserID: "u-1", Level: models.LevelMedium, CompletedAt: env.now}))
	require.NoError(t, env.manager.Result().Save(ctx, nil, &models.Result{UserID: "u-2", Level: models.LevelEasy, CompletedAt: env.now}))

	results, err := env.manager.Result().ListByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.LevelMedium, results[0].Level)
	assert.Equal(t, models.LevelEasy, results[1].Level)

	empty, err := env.manager.Result().ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestResult_GetByIDAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	result := &models.Result{UserID: "u-1", Level: models.LevelEasy, CompletedAt: env.now}
	require.NoError(t, env.manager.Result().Save(ctx, nil, result))

	_, err := env.manager.Result().GetByID(ctx, result.ID, "u-2", false)
	var permErr *PermissionError
	assert.True(t, errors.As(err, &permErr))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.manager.Result().GetByID(ctx, result.ID, "admin-1", true)
	assert.NoError(t, err)

	_, err = env.manager.Result().GetByID(ctx, 999, "u-1", false)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestResult_ListAllEnrichesUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.repo.users.items["u-1"] = &models.User{ID: "u-1", FullName: "Aida Bekova", Email: "aida@example.com"}

	require.NoError(t, env.manager.Result().Save(ctx, nil, &models.Result{UserID: "u-1", Level: models.LevelEasy, CompletedAt: env.now}))
	require.NoError(t, env.manager.Result().Save(ctx, nil, &models.Result{UserID: "u-2", Level: models.LevelEasy, CompletedAt: env.now.Add(-time.Minute)}))

	list, err := env.manager.Result().ListAll(ctx, repositories.ResultFilters{})
	require.NoError(t, err)
	require.Len(t, list.Results, 2)
	require.NotNil(t, list.Results[0].User)
	assert.Equal(t, "Aida Bekova", list.Results[0].User.FullName)
	assert.Nil(t, list.Results[1].User)

	env.repo.users.failErr = errStorageDown
	list, err = env.manager.Result().ListAll(ctx, repositories.ResultFilters{})
	require.NoError(t, err)
	assert.Len(t, list.Results, 2)
	assert.Nil(t, list.Results[0].User)
}

// ===== ADMIN =====

func TestAdmin_UpdateSettingsValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.manager.Admin().UpdateSettings(ctx, models.LevelEasy, 0, 10)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.manager.Admin().UpdateSettings(ctx, models.LevelEasy, 10, -1)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.manager.Admin().UpdateSettings(ctx, models.Level("hard"), 10, 10)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestAdmin_SettingsBatchAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.manager.Admin().ListSettings(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, 20, settings[0].TimeMinutes)
	assert.Equal(t, 20, settings[1].TimeMinutes)

	_, err = env.manager.Admin().UpdateSettingsBatch(ctx, []*models.TestSettings{
		{Level: models.LevelEasy, TimeMinutes: 15, QuestionCount: 10},
		{Level: models.LevelMedium, TimeMinutes: 25, QuestionCount: 12},
	})
	require.NoError(t, err)

	settings, err = env.manager.Admin().ListSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, settings[0].TimeMinutes)
	assert.Equal(t, 25, settings[1].TimeMinutes)
	assert.Len(t, env.publisher.GetPublishedEvents(), 2)

	// one bad entry blocks the whole batch
	_, err = env.manager.Admin().UpdateSettingsBatch(ctx, []*models.TestSettings{
		{Level: models.LevelEasy, TimeMinutes: 40, QuestionCount: 10},
		{Level: models.LevelMedium, TimeMinutes: 0, QuestionCount: 12},
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
	got, err := env.manager.Session().GetSettings(ctx, models.LevelEasy)
	require.NoError(t, err)
	assert.Equal(t, 15, got.TimeMinutes)

	_, err = env.manager.Admin().UpdateSettingsBatch(ctx, []*models.TestSettings{
		{Level: models.LevelEasy, TimeMinutes: 40, QuestionCount: 10},
		{Level: models.LevelEasy, TimeMinutes: 45, QuestionCount: 10},
	})
	var ruleErr *BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "duplicate_level", ruleErr.Rule)
}

func TestAdmin_ListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.repo.users.items["u-1"] = &models.User{ID: "u-1"}
	env.repo.users.items["u-2"] = &models.User{ID: "u-2"}

	list, err := env.manager.Admin().ListUsers(context.Background(), repositories.UserFilters{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 100, list.Size)
}

// ===== EXPORT =====

func TestExportResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.repo.users.items["u-1"] = &models.User{ID: "u-1", FullName: "Aida Bekova", Email: "aida@example.com"}
	qs := seedFourLogic(t, env, models.LevelEasy)

	_, err := env.manager.Scoring().Submit(ctx, "u-1", models.LevelEasy, []models.AnswerSubmission{
		{QuestionID: qs[0].ID, Answer: "a"},
		{QuestionID: qs[1].ID, Answer: "a"},
	}, nil)
	require.NoError(t, err)

	data, err := env.manager.Export().ExportResults(ctx, repositories.ResultFilters{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Full name", rows[0][2])
	assert.Equal(t, "Aida Bekova", rows[1][2])
	assert.Equal(t, "easy", rows[1][4])
	assert.Equal(t, "25", rows[1][7])

	answers, err := f.GetRows("Answers")
	require.NoError(t, err)
	assert.Len(t, answers, 3)
}
