package v1

import (
	"net/http"

	"resume-review-backend/internal/delivery/http/middleware"
	"resume-review-backend/internal/delivery/http/response"
	"resume-review-backend/internal/domain"
	"resume-review-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessionUC domain.SessionUsecase
	profileUC domain.ProfileUsecase
}

func NewAuthHandler(strict, protected *gin.RouterGroup, sessionUC domain.SessionUsecase, profileUC domain.ProfileUsecase) {
	handler := &AuthHandler{sessionUC: sessionUC, profileUC: profileUC}

	strict.POST("/auth/magic-link", handler.RequestMagicLink)
	protected.GET("/auth/session", handler.Session)
}

type MagicLinkRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type SessionResponse struct {
	Kind     domain.SessionKind `json:"kind"`
	User     *domain.User       `json:"user"`
	Redirect string             `json:"redirect"`
}

// RequestMagicLink godoc
// @Summary      Request a sign-in link
// @Description  Emails a passwordless sign-in link through the identity provider
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      MagicLinkRequest  true  "Email address"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Failure      503      {object}  response.Response
// @Router       /auth/magic-link [post]
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(bindError(err))
		return
	}

	security.DefaultLogger().LogMagicLinkRequested(
		c.Request.Context(),
		req.Email,
		c.ClientIP(),
		c.GetString(string(domain.KeyRequestID)),
	)

	if err := h.sessionUC.RequestMagicLink(c.Request.Context(), req.Email); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Check your inbox for a sign-in link", nil)
}

// Session godoc
// @Summary      Current session
// @Description  Resolves the caller, provisioning the local user on first sign-in, and returns the landing path
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=SessionResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/session [get]
// @Security     BearerAuth
func (h *AuthHandler) Session(c *gin.Context) {
	session := middleware.SessionFromGin(c)

	user, err := h.profileUC.GetProfile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Session active", SessionResponse{
		Kind:     session.Kind,
		User:     user,
		Redirect: session.LandingPath(),
	})
}
