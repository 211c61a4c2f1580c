package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/excellence-college/school-portal/internal/models"
	"github.com/excellence-college/school-portal/internal/validation"
	"github.com/excellence-college/school-portal/pkg/config"
	appErrors "github.com/excellence-college/school-portal/pkg/errors"
)

type inquiryCreator interface {
	CreateInquiry(ctx context.Context, form models.InquiryForm) (*models.Inquiry, error)
}

type publicStatsProvider interface {
	Public(ctx context.Context) (*models.PublicStats, error)
}

// PublicHandler serves the unauthenticated pages.
type PublicHandler struct {
	inquiries inquiryCreator
	stats     publicStatsProvider
	site      config.SiteConfig
	logger    *zap.Logger
}

// NewPublicHandler constructs the handler.
func NewPublicHandler(inquiries inquiryCreator, stats publicStatsProvider, site config.SiteConfig, logger *zap.Logger) *PublicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicHandler{inquiries: inquiries, stats: stats, site: site, logger: logger}
}

// Home renders the landing page. Public stats are decorative: the page
// renders without them when the backend is unreachable.
func (h *PublicHandler) Home(c *gin.Context) {
	var stats *models.PublicStats
	if h.stats != nil {
		s, err := h.stats.Public(c.Request.Context())
		if err != nil {
			h.logger.Warn("public stats unavailable", zap.Error(err))
		} else {
			stats = s
		}
	}

	c.HTML(http.StatusOK, "home.tmpl", gin.H{
		"Site":  h.site,
		"Stats": stats,
	})
}

// About renders the static about page.
func (h *PublicHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about.tmpl", gin.H{"Site": h.site})
}

// InquiryForm renders an empty inquiry form.
func (h *PublicHandler) InquiryForm(c *gin.Context) {
	h.renderInquiryForm(c, http.StatusOK, models.InquiryForm{}, nil, "")
}

// SubmitInquiry validates and forwards a submission. Local validation runs
// before any network call; backend field errors merge into the same display.
func (h *PublicHandler) SubmitInquiry(c *gin.Context) {
	var form models.InquiryForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderInquiryForm(c, http.StatusBadRequest, form, nil, "Please fix the errors in the form")
		return
	}

	if fieldErrs := validation.Inquiry(form); len(fieldErrs) > 0 {
		h.renderInquiryForm(c, http.StatusBadRequest, form, fieldErrs, "Please fix the errors in the form")
		return
	}

	if _, err := h.inquiries.CreateInquiry(c.Request.Context(), form); err != nil {
		appErr := appErrors.FromError(err)
		message := appErr.Message
		switch {
		case appErrors.IsValidation(err):
			message = "Please fix the errors in the form"
		case message == "" || appErrors.IsNetwork(err):
			message = "Failed to submit inquiry. Please try again."
		}
		h.renderInquiryForm(c, appErr.Status, form, appErr.Fields, message)
		return
	}

	c.HTML(http.StatusOK, "inquiry_success.tmpl", gin.H{"Site": h.site})
}

func (h *PublicHandler) renderInquiryForm(c *gin.Context, status int, form models.InquiryForm, fieldErrs map[string]string, flash string) {
	c.HTML(status, "inquiry.tmpl", gin.H{
		"Site":         h.site,
		"Form":         form,
		"Errors":       fieldErrs,
		"Flash":        flash,
		"Grades":       models.Grades,
		"Programs":     models.Programs,
		"InquiryTypes": models.InquiryTypes,
	})
}
