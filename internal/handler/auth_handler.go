package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/excellence-college/school-portal/internal/middleware"
	"github.com/excellence-college/school-portal/internal/models"
	"github.com/excellence-college/school-portal/internal/session"
	"github.com/excellence-college/school-portal/pkg/config"
	appErrors "github.com/excellence-college/school-portal/pkg/errors"
)

type authClient interface {
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error
}

type sessionManager interface {
	Issue(c *gin.Context, token string, user models.User) (*session.Session, error)
	Load(c *gin.Context) (*session.Session, error)
	Destroy(c *gin.Context, id string)
}

type controllerDropper interface {
	Drop(sessionID string)
}

type sessionMetrics interface {
	SessionIssued()
	SessionEnded()
}

// AuthHandler serves the login flow and the change-password page.
type AuthHandler struct {
	client      authClient
	sessions    sessionManager
	controllers controllerDropper
	metrics     sessionMetrics
	site        config.SiteConfig
	logger      *zap.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(client authClient, sessions sessionManager, controllers controllerDropper, metrics sessionMetrics, site config.SiteConfig, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{client: client, sessions: sessions, controllers: controllers, metrics: metrics, site: site, logger: logger}
}

// LoginPage renders the login form. An already authenticated admin is sent
// straight to the dashboard.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, err := h.sessions.Load(c); err == nil {
		c.Redirect(http.StatusSeeOther, "/admin/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"Site": h.site, "Username": ""})
}

// Login exchanges submitted credentials for a session.
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login.tmpl", gin.H{
			"Site":     h.site,
			"Username": username,
			"Error":    "Username and password are required",
		})
		return
	}

	result, err := h.client.Login(c.Request.Context(), username, password)
	if err != nil {
		appErr := appErrors.FromError(err)
		message := appErr.Message
		if appErrors.IsNetwork(err) || message == "" {
			message = "Login failed. Please try again."
		}
		c.HTML(appErr.Status, "login.tmpl", gin.H{
			"Site":     h.site,
			"Username": username,
			"Error":    message,
		})
		return
	}

	if _, err := h.sessions.Issue(c, result.Token, result.User); err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "login.tmpl", gin.H{
			"Site":     h.site,
			"Username": username,
			"Error":    "Login failed. Please try again.",
		})
		return
	}

	if h.metrics != nil {
		h.metrics.SessionIssued()
	}
	c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

// Logout destroys the session unconditionally; no backend call is needed.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess, err := h.sessions.Load(c); err == nil {
		h.sessions.Destroy(c, sess.ID)
		if h.controllers != nil {
			h.controllers.Drop(sess.ID)
		}
		if h.metrics != nil {
			h.metrics.SessionEnded()
		}
	} else {
		h.sessions.Destroy(c, "")
	}
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

// PasswordPage renders the change-password form.
func (h *AuthHandler) PasswordPage(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}
	c.HTML(http.StatusOK, "password.tmpl", gin.H{
		"Site":    h.site,
		"User":    sess.User,
		"Changed": c.Query("changed") == "1",
	})
}

// ChangePassword forwards the password change to the backend.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	current := c.PostForm("currentPassword")
	next := c.PostForm("newPassword")
	if current == "" || next == "" {
		c.HTML(http.StatusBadRequest, "password.tmpl", gin.H{
			"Site":  h.site,
			"User":  sess.User,
			"Error": "Both current and new password are required",
		})
		return
	}

	if err := h.client.ChangePassword(c.Request.Context(), sess.Token, current, next); err != nil {
		if appErrors.IsAuth(err) {
			h.teardown(c, sess.ID)
			return
		}
		appErr := appErrors.FromError(err)
		message := appErr.Message
		if message == "" {
			message = "Password change failed. Please try again."
		}
		c.HTML(appErr.Status, "password.tmpl", gin.H{
			"Site":  h.site,
			"User":  sess.User,
			"Error": message,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/password?changed=1")
}

// teardown clears a session whose token the backend rejected.
func (h *AuthHandler) teardown(c *gin.Context, sessionID string) {
	h.sessions.Destroy(c, sessionID)
	if h.controllers != nil {
		h.controllers.Drop(sessionID)
	}
	if h.metrics != nil {
		h.metrics.SessionEnded()
	}
	c.Redirect(http.StatusSeeOther, "/admin/login")
}
