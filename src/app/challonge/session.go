// Package challonge mirrors remote tournaments, participants, matches and
// match attachments as local entities.
//
// Entities are cached per parent and keep their identity across refreshes: a
// pointer obtained once observes every later update of the same remote
// record. Fetching methods take a FetchMode to choose between the cache and
// the remote service.
package challonge

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/sandai/challonge/src/domain/shared"
)

// Transport performs one request against the remote service. A successful
// call always returns a non-nil body.
type Transport interface {
	Do(ctx context.Context, req Request) (json.RawMessage, error)
}

// Request describes a call relative to the API root, e.g. "tournaments/42/start".
type Request struct {
	Method string
	Path   string
	// Prefix nests every param as prefix[key]. A prefix ending in "[]" takes
	// slice values and repeats prefix[][key] once per element.
	Prefix string
	Params Params
	Upload *Upload
}

// Params holds scalar request fields. Nil values are not sent.
type Params map[string]any

// Upload is a file sent as a multipart part named prefix[Field].
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Content     []byte
}

// FetchMode selects between cached and remote reads.
type FetchMode int

const (
	// Cached answers from the cache when it can and fetches otherwise.
	Cached FetchMode = iota
	// Forced always fetches and merges the result into the cache.
	Forced
)

// Config holds session-wide behavior.
type Config struct {
	// AutoIncludeParticipants asks tournament responses to embed participants.
	AutoIncludeParticipants bool
	// AutoIncludeMatches asks tournament responses to embed matches.
	AutoIncludeMatches bool
	// RaiseErrors returns remote failures to the caller. When false they are
	// logged and the operation returns without effect.
	RaiseErrors bool
}

// DefaultConfig includes nested batches and returns remote failures.
func DefaultConfig() Config {
	return Config{
		AutoIncludeParticipants: true,
		AutoIncludeMatches:      true,
		RaiseErrors:             true,
	}
}

// Option configures a session.
type Option func(*session)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(s *session) {
		s.config = cfg
	}
}

// WithLogger sets the logger used for suppressed failures and warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAssetSource sets where AttachFile and ChangeFile read assets from.
func WithAssetSource(src AssetSource) Option {
	return func(s *session) {
		if src != nil {
			s.assets = src
		}
	}
}

// session is shared by every entity of one Account.
type session struct {
	transport Transport
	logger    *zap.Logger
	config    Config
	assets    AssetSource
}

func newSession(t Transport, opts ...Option) *session {
	s := &session{
		transport: t,
		logger:    zap.NewNop(),
		config:    DefaultConfig(),
		assets:    FileSource{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// call issues req. It returns a nil body and a nil error when a remote failure
// was suppressed.
func (s *session) call(ctx context.Context, req Request) (json.RawMessage, error) {
	raw, err := s.transport.Do(ctx, req)
	if err == nil {
		return raw, nil
	}

	var apiErr *shared.APIError
	if !s.config.RaiseErrors && errors.As(err, &apiErr) {
		s.logger.Warn("challonge request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("kind", string(apiErr.Kind)),
			zap.Int("status", apiErr.Status),
			zap.Strings("messages", apiErr.Messages),
		)
		return nil, nil
	}
	return nil, err
}

func (s *session) includeParams(participants, matches bool) Params {
	return Params{
		"include_participants": flag(participants),
		"include_matches":      flag(matches),
	}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
