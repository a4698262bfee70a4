package entitlement

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadflowhq/leadflow/pkg/billing"
	"github.com/leadflowhq/leadflow/pkg/usage"
)

// Service exposes the entitlements API and the billing webhook ingest
// boundary over HTTP.
type Service struct {
	accountant *usage.Accountant
	reconciler *billing.Reconciler
	log        *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the entitlement HTTP service. Panics if accountant or
// reconciler is nil: the module cannot serve without them.
func NewService(accountant *usage.Accountant, reconciler *billing.Reconciler, opts ...Option) *Service {
	if accountant == nil {
		panic("entitlement: accountant is required")
	}
	if reconciler == nil {
		panic("entitlement: reconciler is required")
	}

	s := &Service{
		accountant: accountant,
		reconciler: reconciler,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle returns the module router.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/entitlements", svc.Handle())
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/{userID}", s.getEntitlements)
	r.Post("/{userID}/consume", s.consume)
	r.Post("/webhooks/billing", s.billingWebhook)

	return r
}
