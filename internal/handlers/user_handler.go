package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/logic-quiz-service/internal/services"
	"github.com/SAP-F-2025/logic-quiz-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	admin services.AdminService
}

func NewUserHandler(admin services.AdminService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		admin:       admin,
	}
}

// ListUsers lists users from the identity provider
// @Summary List users
// @Description Get a paginated list of users
// @Tags admin
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search by email"
// @Success 200 {object} services.UserListResponse "User list response"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	// Check authentication
	if _, ok := h.getUserID(c); !ok {
		return
	}

	filters := h.parseUserFilters(c)

	users, err := h.admin.ListUsers(c.Request.Context(), filters)
	if err != nil {
		h.LogError(c, err, "Failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to list users",
		})
		return
	}

	c.JSON(http.StatusOK, users)
}

// ===== HELPER METHODS =====

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	limit, offset := h.parsePage(c)
	return repositories.UserFilters{
		Limit:  limit,
		Offset: offset,
		Query:  c.Query("q"),
	}
}
