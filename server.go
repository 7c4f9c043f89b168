package accounts

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
)

// Server bundles the HTTP surface with its wired dependencies
type Server struct {
	srv       router.Server[*fiber.App]
	repo      RepositoryManager
	lifecycle *Lifecycle
	auther    *Auther
	cfg       Config
	logger    Logger
}

// NewServer wires the full stack: repositories, lifecycle flows,
// authenticator, mailer, and routes. The role catalog is seeded before the
// server is returned so logins never observe missing roles.
func NewServer(ctx context.Context, db *bun.DB, cfg Config, opts ...ServerOption) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: defLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.repo == nil {
		s.repo = NewRepositoryManager(db)
	}
	s.repo.MustValidate()

	if err := s.repo.Roles().EnsureCatalog(ctx); err != nil {
		return nil, err
	}

	if s.lifecycle == nil {
		notifier := NewMailer(cfg).WithLogger(s.logger)
		s.lifecycle = NewLifecycle(s.repo.Accounts(), notifier, cfg).WithLogger(s.logger)
	}

	if s.auther == nil {
		provider := NewAccountProvider(s.repo.Accounts()).WithLogger(s.logger)
		s.auther = NewAuthenticator(provider, cfg).WithLogger(s.logger)
	}

	s.srv = router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
			AppName:       cfg.GetServiceName(),
		}))
	})

	RegisterRoutes(s.srv.Router(),
		WithRepositoryManager(s.repo),
		WithLifecycle(s.lifecycle),
		WithAuthenticator(s.auther),
		WithControllerLogger(s.logger),
	)

	return s, nil
}

// ServerOption configures the server before wiring
type ServerOption func(*Server)

// WithServerLogger sets the logger used across the wired components
func WithServerLogger(logger Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServerRepositoryManager overrides the repository manager
func WithServerRepositoryManager(repo RepositoryManager) ServerOption {
	return func(s *Server) {
		s.repo = repo
	}
}

// WithServerLifecycle overrides the lifecycle controller
func WithServerLifecycle(lifecycle *Lifecycle) ServerOption {
	return func(s *Server) {
		s.lifecycle = lifecycle
	}
}

// WithServerAuthenticator overrides the authenticator
func WithServerAuthenticator(auther *Auther) ServerOption {
	return func(s *Server) {
		s.auther = auther
	}
}

// Router exposes the underlying router, mostly for additional routes
func (s *Server) Router() router.Router[*fiber.App] {
	return s.srv.Router()
}

// Repo exposes the repository manager
func (s *Server) Repo() RepositoryManager {
	return s.repo
}

// Lifecycle exposes the lifecycle controller
func (s *Server) Lifecycle() *Lifecycle {
	return s.lifecycle
}

// Serve blocks serving HTTP on addr
func (s *Server) Serve(addr string) error {
	s.logger.Info("accounts server listening on %s", addr)
	return s.srv.Serve(addr)
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
