package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/services"
	"github.com/SAP-F-2025/logic-quiz-service/internal/utils"
	"github.com/SAP-F-2025/logic-quiz-service/internal/validator"
)

// QuizHandler serves the test taker endpoints
type QuizHandler struct {
	BaseHandler
	questionBank services.QuestionBankService
	sessions     services.SessionService
	scoring      services.ScoringService
	results      services.ResultService
	validator    *validator.Validator
}

func NewQuizHandler(
	questionBank services.QuestionBankService,
	sessions services.SessionService,
	scoring services.ScoringService,
	results services.ResultService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:  NewBaseHandler(logger),
		questionBank: questionBank,
		sessions:     sessions,
		scoring:      scoring,
		results:      results,
		validator:    validator,
	}
}

// ListQuestions returns the active questions of a level
// @Summary List active questions
// @Description Get every active question of a level in random order, localized. Correct answers are never included.
// @Tags test
// @Produce json
// @Param level path string true "Level (easy, medium)"
// @Param lang query string false "Language (ru, kg), defaults to ru"
// @Success 200 {array} models.QuestionView
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Level not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /test/questions/{level} [get]
func (h *QuizHandler) ListQuestions(c *gin.Context) {
	level, ok := h.parseLevelParam(c)
	if !ok {
		return
	}
	lang := models.ParseLanguage(c.Query("lang"))

	h.LogRequest(c, "Listing active questions", "level", level, "lang", lang)

	questions, err := h.questionBank.ListActive(c.Request.Context(), level, lang)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// StartSession opens a quiz session
// @Summary Start session
// @Description Start a session on a level. Fails with 409 when the level was already completed.
// @Tags test
// @Accept json
// @Produce json
// @Param request body validator.StartSessionRequest true "Session request"
// @Success 200 {object} models.Session
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Level already completed"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /test/sessions [post]
func (h *QuizHandler) StartSession(c *gin.Context) {
	var req validator.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	level, _ := models.ParseLevel(req.Level)
	lang := models.ParseLanguage(req.Lang)

	h.LogRequest(c, "Starting session", "user_id", userID, "level", level, "lang", lang)

	session, err := h.sessions.StartSession(c.Request.Context(), userID, level, lang)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Submit grades the answers of a session and records the result
// @Summary Submit answers
// @Description Grade a submission. Only logic questions count toward the score.
// @Tags test
// @Accept json
// @Produce json
// @Param request body validator.SubmitRequest true "Answers"
// @Success 201 {object} models.ScoreResult
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Level already completed"
// @Failure 410 {object} ErrorResponse "Time limit expired"
// @Failure 429 {object} ErrorResponse "Too many requests"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /test/submit [post]
func (h *QuizHandler) Submit(c *gin.Context) {
	var req validator.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	level, _ := models.ParseLevel(req.Level)

	h.LogRequest(c, "Submitting answers", "user_id", userID, "level", level, "answers", len(req.Answers))

	score, err := h.scoring.Submit(c.Request.Context(), userID, level, req.ToSubmissions(), req.SessionStartTime)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, score)
}

// GetSettings returns the timing of a level
// @Summary Get level settings
// @Tags test
// @Produce json
// @Param level path string true "Level (easy, medium)"
// @Success 200 {object} models.TestSettings
// @Failure 404 {object} ErrorResponse "Level not found"
// @Router /test/settings/{level} [get]
func (h *QuizHandler) GetSettings(c *gin.Context) {
	level, ok := h.parseLevelParam(c)
	if !ok {
		return
	}

	settings, err := h.sessions.GetSettings(c.Request.Context(), level)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// Status reports which levels the current user has completed
// @Summary Level status
// @Tags test
// @Produce json
// @Success 200 {array} models.LevelStatus
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /test/status [get]
func (h *QuizHandler) Status(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	statuses, err := h.sessions.Status(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, statuses)
}

// MyResults lists the results of the current user
// @Summary My results
// @Description Results of the current user, most recent first
// @Tags results
// @Produce json
// @Success 200 {array} models.Result
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /results/me [get]
func (h *QuizHandler) MyResults(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing own results", "user_id", userID)

	results, err := h.results.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetResult returns one result to its owner or an admin
// @Summary Get result
// @Tags results
// @Produce json
// @Param id path int true "Result ID"
// @Success 200 {object} models.Result
// @Failure 403 {object} ErrorResponse "Access denied"
// @Failure 404 {object} ErrorResponse "Result not found"
// @Router /results/{id} [get]
func (h *QuizHandler) GetResult(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	result, err := h.results.GetByID(c.Request.Context(), id, userID, h.isAdmin(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
