package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard-gate/internal/auth"
	"dashboard-gate/internal/domain"
	"dashboard-gate/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	access service.AccessService
	tokens *auth.TokenService
	logger *logrus.Logger
}

func NewHandler(users service.UserService, access service.AccessService, tokens *auth.TokenService, logger *logrus.Logger) *Handler {
	return &Handler{
		users:  users,
		access: access,
		tokens: tokens,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger))
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/login", h.login)
		api.GET("/health", h.health)

		authed := api.Group("", h.requireToken())
		{
			authed.GET("/dashboards", h.listOwnAccess)
			authed.POST("/generate-dashboard-jwt", h.generateDashboardJWT)

			managers := authed.Group("", h.requireManager())
			{
				managers.GET("/users", h.listUsers)
				managers.POST("/toggle-access", h.toggleAccess)
				managers.GET("/user-dashboard-access/:id", h.getUserAccess)
			}
		}
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public profile returned on login.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	IsManager bool   `json:"isManager"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		failure(c, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			failure(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.internalError(c, "authenticate user", err)
		return
	}

	token, err := h.tokens.IssueSession(user)
	if err != nil {
		h.internalError(c, "issue session token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userToResponse(user),
		"token":   token,
	})
}

func (h *Handler) listOwnAccess(c *gin.Context) {
	user := currentUser(c)

	access, err := h.access.GetAccess(c.Request.Context(), user.ID)
	if err != nil {
		h.internalError(c, "load own access", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"access":  access,
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListManagedUsers(c.Request.Context())
	if err != nil {
		h.internalError(c, "list users", err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   resp,
	})
}

type toggleAccessRequest struct {
	UserID      int64  `json:"user_id" binding:"required"`
	DashboardID string `json:"dashboard_id" binding:"required"`
	CanAccess   *bool  `json:"can_access" binding:"required"`
}

func (h *Handler) toggleAccess(c *gin.Context) {
	var req toggleAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "missing required parameters")
		return
	}

	if err := h.access.SetAccess(c.Request.Context(), req.UserID, req.DashboardID, *req.CanAccess); err != nil {
		h.internalError(c, "update access", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "access updated successfully",
	})
}

func (h *Handler) getUserAccess(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		failure(c, http.StatusBadRequest, "invalid user id")
		return
	}

	access, err := h.access.GetAccess(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "load user access", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"access":  access,
	})
}

type embedTokenRequest struct {
	DashboardID string `json:"dashboard_id" binding:"required"`
}

func (h *Handler) generateDashboardJWT(c *gin.Context) {
	var req embedTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failure(c, http.StatusBadRequest, "dashboard id required")
		return
	}

	user := currentUser(c)

	allowed, err := h.access.CheckAccess(c.Request.Context(), user.ID, req.DashboardID)
	if err != nil {
		h.internalError(c, "check dashboard access", err)
		return
	}
	if !allowed {
		failure(c, http.StatusForbidden, "access denied to this dashboard")
		return
	}

	token, err := h.tokens.IssueEmbed(user, req.DashboardID)
	if err != nil {
		h.internalError(c, "issue embed token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"jwt":     token,
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) internalError(c *gin.Context, action string, err error) {
	h.logger.WithError(err).WithField("request_id", requestID(c)).Errorf("%s failed", action)
	failure(c, http.StatusInternalServerError, "internal server error")
}

func failure(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.DisplayName,
		IsManager: user.IsManager,
	}
}
