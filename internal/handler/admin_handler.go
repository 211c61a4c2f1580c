package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/excellence-college/school-portal/internal/dashboard"
	"github.com/excellence-college/school-portal/internal/middleware"
	"github.com/excellence-college/school-portal/internal/models"
	"github.com/excellence-college/school-portal/pkg/config"
	appErrors "github.com/excellence-college/school-portal/pkg/errors"
	"github.com/excellence-college/school-portal/pkg/export"
	"github.com/excellence-college/school-portal/pkg/response"
)

type controllerRegistry interface {
	For(sessionID string) *dashboard.Controller
	Drop(sessionID string)
}

type adminStatsProvider interface {
	Admin(ctx context.Context, token string) (*models.Stats, error)
}

// AdminHandler serves the protected dashboard and its actions.
type AdminHandler struct {
	controllers controllerRegistry
	stats       adminStatsProvider
	sessions    sessionManager
	metrics     sessionMetrics
	exporter    *export.PDFExporter
	site        config.SiteConfig
	logger      *zap.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(controllers controllerRegistry, stats adminStatsProvider, sessions sessionManager, metrics sessionMetrics, site config.SiteConfig, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		controllers: controllers,
		stats:       stats,
		sessions:    sessions,
		metrics:     metrics,
		exporter:    export.NewPDFExporter(),
		site:        site,
		logger:      logger,
	}
}

// Dashboard applies the request's filter and page to the session's
// controller, refreshes, and renders the resulting view.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	ctrl := h.controllers.For(sess.ID)

	search := strings.TrimSpace(c.Query("search"))
	status := c.Query("status")
	if status != "" && !models.ValidStatus(status) {
		status = ""
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	if page == 0 {
		page = ctrl.Snapshot().Query.Page
	}

	var flash string
	if err := ctrl.Apply(c.Request.Context(), sess.Token, search, status, page); err != nil {
		if appErrors.IsAuth(err) {
			h.teardown(c, sess.ID)
			return
		}
		h.logger.Warn("dashboard refresh failed", zap.Error(err))
		flash = "Failed to load inquiries"
	}

	h.renderDashboard(c, http.StatusOK, ctrl, sess.User, flash, "", "")
}

// Update applies an admin edit to one inquiry. On failure the edit flow
// stays open with the error message so the admin can retry or cancel.
func (h *AdminHandler) Update(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	id := c.Param("id")
	ctrl := h.controllers.For(sess.ID)

	update := models.InquiryUpdate{}
	if status := c.PostForm("status"); status != "" {
		if !models.ValidStatus(status) {
			h.renderDashboard(c, http.StatusBadRequest, ctrl, sess.User, "Invalid status value", id, "")
			return
		}
		update.Status = &status
	}
	if notes, exists := c.GetPostForm("adminNotes"); exists {
		update.AdminNotes = &notes
	}

	if err := ctrl.Update(c.Request.Context(), sess.Token, id, update); err != nil {
		if appErrors.IsAuth(err) {
			h.teardown(c, sess.ID)
			return
		}
		if appErrors.IsNotFound(err) {
			// Deleted elsewhere since the page was loaded; re-sync the list.
			_ = ctrl.Refresh(c.Request.Context(), sess.Token)
			h.renderDashboard(c, http.StatusNotFound, ctrl, sess.User, "Inquiry no longer exists", "", "")
			return
		}
		h.logger.Warn("inquiry update failed", zap.String("inquiry_id", id), zap.Error(err))
		h.renderDashboard(c, appErrors.FromError(err).Status, ctrl, sess.User, "Failed to update inquiry", id, "")
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

// Delete removes one inquiry. On failure the record stays listed and the
// confirmation flow stays open with the error message.
func (h *AdminHandler) Delete(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	id := c.Param("id")
	ctrl := h.controllers.For(sess.ID)

	if err := ctrl.Delete(c.Request.Context(), sess.Token, id); err != nil {
		if appErrors.IsAuth(err) {
			h.teardown(c, sess.ID)
			return
		}
		if appErrors.IsNotFound(err) {
			_ = ctrl.Refresh(c.Request.Context(), sess.Token)
			h.renderDashboard(c, http.StatusNotFound, ctrl, sess.User, "Inquiry no longer exists", "", "")
			return
		}
		h.logger.Warn("inquiry delete failed", zap.String("inquiry_id", id), zap.Error(err))
		h.renderDashboard(c, appErrors.FromError(err).Status, ctrl, sess.User, "Failed to delete inquiry", "", id)
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

// ExportCSV streams the backend's CSV for the current status filter.
func (h *AdminHandler) ExportCSV(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	ctrl := h.controllers.For(sess.ID)
	blob, filename, err := ctrl.ExportCSV(c.Request.Context(), sess.Token)
	if err != nil {
		if appErrors.IsAuth(err) {
			h.teardown(c, sess.ID)
			return
		}
		h.logger.Warn("csv export failed", zap.Error(err))
		h.renderDashboard(c, appErrors.FromError(err).Status, ctrl, sess.User, "Failed to export inquiries", "", "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", blob)
}

// StatsReport renders the aggregate stats into a downloadable PDF.
func (h *AdminHandler) StatsReport(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	ctrl := h.controllers.For(sess.ID)
	blob, filename, err := ctrl.StatsReport(c.Request.Context(), sess.Token, h.exporter)
	if err != nil {
		if appErrors.IsAuth(err) {
			h.teardown(c, sess.ID)
			return
		}
		h.logger.Warn("stats report failed", zap.Error(err))
		h.renderDashboard(c, appErrors.FromError(err).Status, ctrl, sess.User, "Failed to generate report", "", "")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", blob)
}

// StatsJSON feeds the analytics charts.
func (h *AdminHandler) StatsJSON(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.stats.Admin(c.Request.Context(), sess.Token)
	if err != nil {
		if appErrors.IsAuth(err) {
			h.sessions.Destroy(c, sess.ID)
			h.controllers.Drop(sess.ID)
			if h.metrics != nil {
				h.metrics.SessionEnded()
			}
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

func (h *AdminHandler) renderDashboard(c *gin.Context, status int, ctrl *dashboard.Controller, user models.User, flash, editingID, deletingID string) {
	snap := ctrl.Snapshot()
	c.HTML(status, "dashboard.tmpl", gin.H{
		"Site":       h.site,
		"User":       user,
		"Snapshot":   snap,
		"Statuses":   models.Statuses,
		"Flash":      flash,
		"EditingID":  editingID,
		"DeletingID": deletingID,
	})
}

func (h *AdminHandler) teardown(c *gin.Context, sessionID string) {
	h.sessions.Destroy(c, sessionID)
	h.controllers.Drop(sessionID)
	if h.metrics != nil {
		h.metrics.SessionEnded()
	}
	c.Redirect(http.StatusSeeOther, "/admin/login")
}
