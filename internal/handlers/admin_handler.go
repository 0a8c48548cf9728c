package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/logic-quiz-service/internal/services"
	"github.com/SAP-F-2025/logic-quiz-service/internal/utils"
	"github.com/SAP-F-2025/logic-quiz-service/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves question curation, settings and result review
type AdminHandler struct {
	BaseHandler
	admin     services.AdminService
	results   services.ResultService
	export    services.ExportService
	validator *validator.Validator
}

func NewAdminHandler(
	admin services.AdminService,
	results services.ResultService,
	export services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		admin:       admin,
		results:     results,
		export:      export,
		validator:   validator,
	}
}

// ===== QUESTIONS =====

// CreateQuestion creates a new question
// @Summary Create question
// @Description Create a bilingual question. Level and type accept the aliases weak, single and text.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body validator.QuestionRequest true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/questions [post]
func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	var req validator.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	h.LogRequest(c, "Creating question", "level", req.Level, "type", req.Type)

	question, err := h.admin.CreateQuestion(c.Request.Context(), req.ToDraft())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion replaces a question
// @Summary Update question
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body validator.QuestionRequest true "Question"
// @Success 200 {object} models.Question
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Question not found"
// @Router /admin/questions/{id} [put]
func (h *AdminHandler) UpdateQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	h.LogRequest(c, "Updating question", "question_id", id)

	question, err := h.admin.UpdateQuestion(c.Request.Context(), id, req.ToDraft())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question
// @Summary Delete question
// @Tags admin
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse "Question not found"
// @Router /admin/questions/{id} [delete]
func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	deletedID, err := h.admin.DeleteQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": deletedID})
}

// SetQuestionActive shows or hides a question without deleting it
// @Summary Toggle question visibility
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body validator.SetActiveRequest true "Visibility"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse "Question not found"
// @Router /admin/questions/{id}/active [put]
func (h *AdminHandler) SetQuestionActive(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req validator.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	question, err := h.admin.SetQuestionActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// GetQuestion returns a question including its correct answer
// @Summary Get question
// @Tags admin
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse "Question not found"
// @Router /admin/questions/{id} [get]
func (h *AdminHandler) GetQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	question, err := h.admin.GetQuestion(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions lists every question, active or not
// @Summary List questions
// @Tags admin
// @Produce json
// @Param level query string false "Level"
// @Param type query string false "Question type"
// @Param is_active query bool false "Visibility"
// @Param q query string false "Search in question text"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.QuestionListResponse
// @Router /admin/questions [get]
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	filters, ok := h.parseQuestionFilters(c)
	if !ok {
		return
	}

	list, err := h.admin.ListQuestions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ===== SETTINGS =====

// ListSettings returns the settings of every level
// @Summary List level settings
// @Tags admin
// @Produce json
// @Success 200 {array} models.TestSettings
// @Router /admin/settings [get]
func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.admin.ListSettings(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings updates the timing of one level
// @Summary Update level settings
// @Tags admin
// @Accept json
// @Produce json
// @Param level path string true "Level"
// @Param request body validator.SettingsRequest true "Settings"
// @Success 200 {object} models.TestSettings
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 404 {object} ErrorResponse "Level not found"
// @Router /admin/settings/{level} [put]
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	level, ok := h.parseLevelParam(c)
	if !ok {
		return
	}

	var req validator.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	h.LogRequest(c, "Updating settings", "level", level, "time_minutes", req.TimeMinutes)

	settings, err := h.admin.UpdateSettings(c.Request.Context(), level, req.TimeMinutes, req.QuestionCount)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettingsBatch saves the settings of several levels in one transaction
// @Summary Update settings of several levels
// @Tags admin
// @Accept json
// @Produce json
// @Param request body validator.BatchSettingsRequest true "Settings"
// @Success 200 {array} models.TestSettings
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Failure 422 {object} ErrorResponse "Duplicate level"
// @Router /admin/settings [put]
func (h *AdminHandler) UpdateSettingsBatch(c *gin.Context) {
	var req validator.BatchSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request payload", err)
		return
	}
	if errs := h.validator.Validate(&req); len(errs) > 0 {
		h.handleServiceError(c, errs)
		return
	}

	h.LogRequest(c, "Updating settings batch", "levels", len(req.Settings))

	settings, err := h.admin.UpdateSettingsBatch(c.Request.Context(), req.ToModels())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// ===== RESULTS =====

// ListResults lists every recorded result
// @Summary List results
// @Tags admin
// @Produce json
// @Param user_id query string false "User ID"
// @Param level query string false "Level"
// @Param color_level query string false "Color level (weak, medium, high)"
// @Param date_from query string false "Completed on or after (RFC3339 or YYYY-MM-DD)"
// @Param date_to query string false "Completed on or before (RFC3339 or YYYY-MM-DD)"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} services.ResultListResponse
// @Router /admin/results [get]
func (h *AdminHandler) ListResults(c *gin.Context) {
	filters, ok := h.parseResultFilters(c)
	if !ok {
		return
	}
	filters.Limit, filters.Offset = h.parsePage(c)

	list, err := h.results.ListAll(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ExportResults downloads the filtered results as an xlsx workbook
// @Summary Export results
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param level query string false "Level"
// @Param color_level query string false "Color level"
// @Success 200 {file} file
// @Router /admin/results/export [get]
func (h *AdminHandler) ExportResults(c *gin.Context) {
	filters, ok := h.parseResultFilters(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting results")

	data, err := h.export.ExportResults(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("results-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ListUserResults lists the results of one user
// @Summary Results of a user
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.Result
// @Router /admin/users/{id}/results [get]
func (h *AdminHandler) ListUserResults(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	results, err := h.admin.ListUserResults(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ===== HELPER METHODS =====

func (h *AdminHandler) parseQuestionFilters(c *gin.Context) (repositories.QuestionFilters, bool) {
	filters := repositories.QuestionFilters{
		Query:     c.Query("q"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	filters.Limit, filters.Offset = h.parsePage(c)

	if raw := c.Query("level"); raw != "" {
		level, ok := models.ParseLevel(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid level filter", Details: raw})
			return filters, false
		}
		filters.Level = &level
	}

	if raw := c.Query("type"); raw != "" {
		questionType, ok := models.ParseQuestionType(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid type filter", Details: raw})
			return filters, false
		}
		filters.Type = &questionType
	}

	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.badRequest(c, "Invalid is_active filter", err)
			return filters, false
		}
		filters.IsActive = &active
	}

	return filters, true
}

func (h *AdminHandler) parseResultFilters(c *gin.Context) (repositories.ResultFilters, bool) {
	var filters repositories.ResultFilters

	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}

	if raw := c.Query("level"); raw != "" {
		level, ok := models.ParseLevel(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid level filter", Details: raw})
			return filters, false
		}
		filters.Level = &level
	}

	if raw := c.Query("color_level"); raw != "" {
		color := models.ColorLevel(raw)
		if color != models.ColorWeak && color != models.ColorMedium && color != models.ColorHigh {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid color_level filter", Details: raw})
			return filters, false
		}
		filters.ColorLevel = &color
	}

	var err error
	if filters.DateFrom, err = parseDateQuery(c.Query("date_from"), false); err != nil {
		h.badRequest(c, "Invalid date_from", err)
		return filters, false
	}
	if filters.DateTo, err = parseDateQuery(c.Query("date_to"), true); err != nil {
		h.badRequest(c, "Invalid date_to", err)
		return filters, false
	}

	return filters, true
}

// parseDateQuery accepts RFC3339 or a bare date; a bare end date covers the whole day
func parseDateQuery(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
