// Package wiki is a client for the MediaWiki action API.
//
// A Session owns the endpoint, identity and cookie store. Requests and
// paginated Queries are built from it per call, and capability tokens are
// fetched through it with GetToken.
//
//	s, err := wiki.New(ctx, cfg, logger)
//	if err != nil {
//		return err
//	}
//	q := s.Query("allpages").Arg("aplimit", "500")
//	for rec, err := range q.All(ctx) {
//		...
//	}
package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/olgasafonova/mediawiki-client/internal/infra"
	"github.com/olgasafonova/mediawiki-client/metrics"
)

// Session handles communication with one MediaWiki API endpoint.
//
// Exchanges are serialised: one call is in flight at a time, and the cookies
// of a completed exchange are stored before the next request is built.
type Session struct {
	config Config
	logger *slog.Logger

	httpClient *http.Client
	policy     infra.RetryPolicy
	client     *retryablehttp.Client

	mu            sync.Mutex // Held for a whole exchange, retries included
	cookies       *cookieStore
	authenticated bool
}

// Option configures a Session
type Option func(*Session)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.httpClient = c
	}
}

// WithRetryPolicy overrides the retry policy derived from the config
func WithRetryPolicy(p infra.RetryPolicy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// New creates a session and, when credentials are configured, logs in.
// A login failure is returned and no session is produced.
func New(ctx context.Context, config *Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	s, err := NewSession(config, logger, opts...)
	if err != nil {
		return nil, err
	}

	if config.HasCredentials() {
		if err := s.Login(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewSession creates a session without logging in
func NewSession(config *Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := config.withDefaults()
	s := &Session{
		config:  cfg,
		logger:  logger,
		policy:  cfg.RetryPolicy(),
		cookies: newCookieStore(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = newHTTPClient(cfg.Timeout)
	}
	s.client = newRetryClient(s.httpClient, s.policy, logger)

	return s, nil
}

// Login authenticates with the wiki using the configured bot password.
// Any login result other than "Success" is an API error carrying the body.
func (s *Session) Login(ctx context.Context) error {
	token, err := GetToken[Login](ctx, s)
	if err != nil {
		return fmt.Errorf("failed to get login token: %w", err)
	}

	resp, err := s.Request().
		Arg("action", "login").
		Arg("lgname", s.config.Username).
		Arg("lgpassword", s.config.Password).
		Arg("lgtoken", token.Value()).
		Post(ctx)
	if err != nil {
		metrics.RecordLogin("error")
		return fmt.Errorf("login failed: %w", err)
	}

	result, err := resp.GetString("login", "result")
	if err != nil {
		metrics.RecordLogin("error")
		return fmt.Errorf("login failed: %w", err)
	}
	metrics.RecordLogin(result)

	if result != "Success" {
		reason, _ := resp.GetString("login", "reason")
		return &Error{
			Kind: KindAPI,
			Op:   "POST login",
			Code: result,
			Info: reason,
			Body: resp.Bytes(),
		}
	}

	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()

	s.logger.Info("Logged in to MediaWiki", "username", s.config.Username, "url", s.config.BaseURL)
	return nil
}

// Authenticated reports whether Login has succeeded on this session
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Config returns a copy of the session configuration
func (s *Session) Config() Config {
	return s.config
}

// Logger returns the session logger
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Cookies returns a copy of the cookie store as name -> value
func (s *Session) Cookies() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies.snapshot()
}
