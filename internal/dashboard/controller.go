package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/excellence-college/school-portal/internal/models"
	"github.com/excellence-college/school-portal/pkg/export"
)

// inquiryClient is the slice of the backend client the controller consumes.
type inquiryClient interface {
	ListInquiries(ctx context.Context, token string, q models.ListQuery) ([]models.Inquiry, *models.Pagination, error)
	UpdateInquiry(ctx context.Context, token, id string, update models.InquiryUpdate) (*models.Inquiry, error)
	DeleteInquiry(ctx context.Context, token, id string) error
	ExportCSV(ctx context.Context, token, status string) ([]byte, error)
}

// statsProvider serves the dashboard's aggregate panel.
type statsProvider interface {
	Admin(ctx context.Context, token string) (*models.Stats, error)
	Invalidate(ctx context.Context)
}

// Config tunes controller behaviour.
type Config struct {
	PageSize int
}

// Controller keeps one admin session's paginated, filtered inquiry list and
// summary stats synchronized with the backend. Fetches are sequence-guarded:
// when filter or page changes supersede an in-flight refresh, the stale
// response is discarded on arrival instead of overwriting newer state.
type Controller struct {
	client inquiryClient
	stats  statsProvider
	logger *zap.Logger
	now    func() time.Time
	cfg    Config

	mu         sync.Mutex
	seq        uint64
	query      models.ListQuery
	inquiries  []models.Inquiry
	pagination *models.Pagination
	statsView  *models.Stats
}

// NewController constructs a controller with the default query.
func NewController(client inquiryClient, stats statsProvider, cfg Config, logger *zap.Logger) *Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		client: client,
		stats:  stats,
		logger: logger,
		now:    time.Now,
		cfg:    cfg,
		query: models.ListQuery{
			Page:   1,
			Limit:  cfg.PageSize,
			SortBy: "createdAt",
			Order:  "desc",
		},
	}
}

// Snapshot is the controller's view state handed to the template.
type Snapshot struct {
	Query      models.ListQuery
	Inquiries  []models.Inquiry
	Pagination *models.Pagination
	Stats      *models.Stats
	TotalPages int
}

// Snapshot returns a copy of the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Query:      c.query,
		Inquiries:  append([]models.Inquiry(nil), c.inquiries...),
		Stats:      c.statsView,
		TotalPages: 1,
	}
	if c.pagination != nil {
		p := *c.pagination
		snap.Pagination = &p
		if p.Pages > 0 {
			snap.TotalPages = p.Pages
		}
	}
	return snap
}

// Apply updates the query from the request parameters and refreshes. A
// changed search or status filter resets the page to 1 so the backend is
// never asked for an out-of-range page; otherwise the page is clamped to
// the last known range.
func (c *Controller) Apply(ctx context.Context, token, search, status string, page int) error {
	c.mu.Lock()
	if search != c.query.Search || status != c.query.Status {
		c.query.Search = search
		c.query.Status = status
		c.query.Page = 1
	} else {
		c.query.Page = c.clampLocked(page)
	}
	c.mu.Unlock()

	return c.Refresh(ctx, token)
}

// clampLocked bounds a requested page to [1, pages]. Caller holds c.mu.
func (c *Controller) clampLocked(page int) int {
	if page < 1 {
		return 1
	}
	if c.pagination != nil && c.pagination.Pages > 0 && page > c.pagination.Pages {
		return c.pagination.Pages
	}
	return page
}

// Refresh re-fetches the list for the current query plus the stats panel.
// Only the most recently issued refresh may apply its result.
func (c *Controller) Refresh(ctx context.Context, token string) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	query := c.query
	c.mu.Unlock()

	inquiries, pagination, err := c.client.ListInquiries(ctx, token, query)
	if err != nil {
		c.mu.Lock()
		superseded := seq != c.seq
		c.mu.Unlock()
		if superseded {
			// A newer fetch already owns the view; this failure is moot.
			return nil
		}
		return err
	}

	stats, statsErr := c.stats.Admin(ctx, token)
	if statsErr != nil {
		// The list is still useful without the panel; keep the stale stats.
		c.logger.Warn("stats refresh failed", zap.Error(statsErr))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// Superseded by a newer filter or page change.
		return nil
	}
	c.inquiries = inquiries
	c.pagination = pagination
	if pagination != nil && pagination.Pages > 0 && c.query.Page > pagination.Pages {
		c.query.Page = pagination.Pages
	}
	if statsErr == nil {
		c.statsView = stats
	}
	return nil
}

// Update applies an admin edit, then re-fetches list and stats so displayed
// rows and counts never go stale. On failure the view state is untouched so
// the edit flow can stay open for a retry.
func (c *Controller) Update(ctx context.Context, token, id string, update models.InquiryUpdate) error {
	if _, err := c.client.UpdateInquiry(ctx, token, id, update); err != nil {
		return err
	}
	c.stats.Invalidate(ctx)
	return c.Refresh(ctx, token)
}

// Delete removes an inquiry, then re-fetches. On failure the record stays
// visible and the error is surfaced.
func (c *Controller) Delete(ctx context.Context, token, id string) error {
	if err := c.client.DeleteInquiry(ctx, token, id); err != nil {
		return err
	}
	c.stats.Invalidate(ctx)
	return c.Refresh(ctx, token)
}

// ExportCSV downloads the backend's CSV for the current status filter. The
// suggested filename carries the current date.
func (c *Controller) ExportCSV(ctx context.Context, token string) ([]byte, string, error) {
	c.mu.Lock()
	status := c.query.Status
	c.mu.Unlock()

	blob, err := c.client.ExportCSV(ctx, token, status)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("inquiries-%s.csv", c.now().Format("2006-01-02"))
	return blob, filename, nil
}

// StatsReport renders the current aggregate stats into a printable PDF.
func (c *Controller) StatsReport(ctx context.Context, token string, exporter *export.PDFExporter) ([]byte, string, error) {
	stats, err := c.stats.Admin(ctx, token)
	if err != nil {
		return nil, "", err
	}

	overview := export.Section{
		Title: "Overview",
		Data: export.Dataset{
			Headers: []string{"Total", "Pending", "Contacted", "Resolved", "Last 7 Days", "Avg Resolution (h)"},
			Rows: []map[string]string{{
				"Total":              strconv.Itoa(stats.Overview.Total),
				"Pending":            strconv.Itoa(stats.Overview.Pending),
				"Contacted":          strconv.Itoa(stats.Overview.Contacted),
				"Resolved":           strconv.Itoa(stats.Overview.Resolved),
				"Last 7 Days":        strconv.Itoa(stats.Overview.Recent),
				"Avg Resolution (h)": strconv.FormatFloat(stats.Overview.AverageResolutionTime, 'f', 1, 64),
			}},
		},
	}

	byType := export.Section{
		Title: "Inquiries by Type",
		Data:  export.Dataset{Headers: []string{"Type", "Count"}},
	}
	for _, tc := range stats.ByType {
		byType.Data.Rows = append(byType.Data.Rows, map[string]string{
			"Type":  tc.Type,
			"Count": strconv.Itoa(tc.Count),
		})
	}

	byProgram := export.Section{
		Title: "Inquiries by Program",
		Data:  export.Dataset{Headers: []string{"Program", "Count"}},
	}
	for _, pc := range stats.ByProgram {
		byProgram.Data.Rows = append(byProgram.Data.Rows, map[string]string{
			"Program": pc.Program,
			"Count":   strconv.Itoa(pc.Count),
		})
	}

	trend := export.Section{
		Title: "Daily Trend (30 days)",
		Data:  export.Dataset{Headers: []string{"Date", "Inquiries"}},
	}
	for _, tp := range stats.DailyTrend {
		trend.Data.Rows = append(trend.Data.Rows, map[string]string{
			"Date":      tp.Date,
			"Inquiries": strconv.Itoa(tp.Count),
		})
	}

	pdf, err := exporter.Render("Inquiry Statistics", overview, byType, byProgram, trend)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("inquiry-stats-%s.pdf", c.now().Format("2006-01-02"))
	return pdf, filename, nil
}
