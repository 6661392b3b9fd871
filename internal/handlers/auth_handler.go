package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/cinema-service/internal/services"
	"github.com/SAP-F-2025/cinema-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// Register creates an email/password account
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.RegisterRequest true "Credentials"
// @Success 201 {object} services.AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Registering account")

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login authenticates with an email or student login id
// @Summary Login
// @Tags auth
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) LoginWithGoogle(c *gin.Context) {
	var req services.GoogleLoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.LoginWithGoogle(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CasdoorSigninURL returns the SSO page the browser should be sent to.
func (h *AuthHandler) CasdoorSigninURL(c *gin.Context) {
	url, err := h.authService.CasdoorSigninURL(c.Query("state"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *AuthHandler) LoginWithCasdoor(c *gin.Context) {
	var req services.CasdoorLoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.LoginWithCasdoor(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SendSignInLink always answers 202 once the payload is valid.
// @Summary Send passwordless sign-in link
// @Tags auth
// @Success 202 {object} SuccessResponse
// @Router /auth/sign-in-link [post]
func (h *AuthHandler) SendSignInLink(c *gin.Context) {
	var req services.SignInLinkRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Sending sign-in link")

	if err := h.authService.SendSignInLink(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{
		Message: "If the address can sign in, a link is on its way",
	})
}

func (h *AuthHandler) CompleteSignInLink(c *gin.Context) {
	var req services.CompleteSignInLinkRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.CompleteSignInLink(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the caller's account, including pending ones.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: err.Error()})
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
