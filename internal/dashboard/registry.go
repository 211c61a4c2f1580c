package dashboard

import (
	"sync"

	"go.uber.org/zap"
)

// Registry hands out one controller per admin session so view state (filter,
// page, fetch sequencing) survives across requests and dies with the session.
type Registry struct {
	client inquiryClient
	stats  statsProvider
	cfg    Config
	logger *zap.Logger

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry constructs a controller registry.
func NewRegistry(client inquiryClient, stats statsProvider, cfg Config, logger *zap.Logger) *Registry {
	return &Registry{
		client:      client,
		stats:       stats,
		cfg:         cfg,
		logger:      logger,
		controllers: make(map[string]*Controller),
	}
}

// For returns the controller owned by the given session, creating it on
// first use.
func (r *Registry) For(sessionID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctrl, ok := r.controllers[sessionID]; ok {
		return ctrl
	}
	ctrl := NewController(r.client, r.stats, r.cfg, r.logger)
	r.controllers[sessionID] = ctrl
	return ctrl
}

// Drop discards a session's controller on logout or teardown.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, sessionID)
}
