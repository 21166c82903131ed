package challonge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gosimple/slug"

	"github.com/sandai/challonge/src/domain/cache"
	"github.com/sandai/challonge/src/domain/shared"
	"github.com/sandai/challonge/src/domain/tournament"
	"github.com/sandai/challonge/src/infra/wire"
)

// Account is the root of the entity graph for one set of credentials.
type Account struct {
	session     *session
	tournaments *cache.Collection[shared.TournamentID, tournament.Tournament, *Tournament]
}

// NewAccount builds an account without contacting the remote service.
func NewAccount(t Transport, opts ...Option) *Account {
	a := &Account{session: newSession(t, opts...)}
	a.tournaments = cache.New(cache.Binding[shared.TournamentID, tournament.Tournament, *Tournament]{
		Key:     func(r tournament.Tournament) shared.TournamentID { return r.ID },
		New:     func(r tournament.Tournament) *Tournament { return newTournament(a, r) },
		Refresh: func(t *Tournament, r tournament.Tournament) { t.apply(r) },
	})
	return a
}

// Connect builds an account and checks its credentials.
func Connect(ctx context.Context, t Transport, opts ...Option) (*Account, error) {
	a := NewAccount(t, opts...)
	if err := a.Validate(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the credentials by listing tournaments. Failures are always
// returned, whatever the error policy.
func (a *Account) Validate(ctx context.Context) error {
	if _, err := a.session.transport.Do(ctx, Request{Method: http.MethodGet, Path: "tournaments"}); err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}
	return nil
}

// Tournaments returns the cached tournaments without fetching.
func (a *Account) Tournaments() []*Tournament {
	return a.tournaments.List()
}

// GetTournament returns the tournament with id, fetching it when it is not
// cached or mode is Forced.
func (a *Account) GetTournament(ctx context.Context, id shared.TournamentID, mode FetchMode) (*Tournament, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if mode == Cached {
		if t, ok := a.tournaments.Get(id); ok {
			return t, nil
		}
	}
	return a.fetchTournament(ctx, id.String())
}

// GetTournaments returns every tournament of the account. A cached listing is
// reused unless mode is Forced.
func (a *Account) GetTournaments(ctx context.Context, mode FetchMode) ([]*Tournament, error) {
	if mode == Cached && a.tournaments.Loaded() {
		return a.tournaments.List(), nil
	}

	cfg := a.session.config
	raw, err := a.session.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "tournaments",
		Params: a.session.includeParams(cfg.AutoIncludeParticipants, cfg.AutoIncludeMatches),
	})
	if err != nil || raw == nil {
		return nil, err
	}
	recs, err := wire.Tournaments(raw)
	if err != nil {
		return nil, err
	}
	a.tournaments.Merge(recs)
	return a.tournaments.List(), nil
}

// SearchTournament looks a tournament up by url and optional subdomain. The
// account listing is scanned first; tournaments owned by someone else are then
// fetched directly. It returns nil when no tournament matches.
func (a *Account) SearchTournament(ctx context.Context, url, subdomain string, mode FetchMode) (*Tournament, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	match := func(t *Tournament) bool { return t.Record().Is(url, subdomain) }
	if mode == Cached {
		if t, ok := a.tournaments.Find(match); ok {
			return t, nil
		}
	}
	if _, err := a.GetTournaments(ctx, mode); err != nil {
		return nil, err
	}
	if t, ok := a.tournaments.Find(match); ok {
		return t, nil
	}

	t, err := a.fetchTournament(ctx, tournament.Key(url, subdomain))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return t, err
}

func (a *Account) fetchTournament(ctx context.Context, key string) (*Tournament, error) {
	cfg := a.session.config
	raw, err := a.session.call(ctx, Request{
		Method: http.MethodGet,
		Path:   "tournaments/" + key,
		Params: a.session.includeParams(cfg.AutoIncludeParticipants, cfg.AutoIncludeMatches),
	})
	if err != nil || raw == nil {
		return nil, err
	}
	rec, err := wire.Tournament(raw)
	if err != nil {
		return nil, err
	}
	return a.tournaments.Upsert(rec)[0], nil
}

// CreateTournamentCommand contains parameters for creating a tournament.
type CreateTournamentCommand struct {
	Name string
	// URL defaults to a slug of Name.
	URL string
	// Type defaults to single elimination.
	Type      tournament.Type
	Subdomain string
	// Fields holds any other updatable tournament field.
	Fields map[string]any
}

// CreateTournament creates a tournament and caches it.
func (a *Account) CreateTournament(ctx context.Context, cmd CreateTournamentCommand) (*Tournament, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, tournament.ErrNameRequired
	}
	if cmd.Type == "" {
		cmd.Type = tournament.TypeSingleElimination
	}
	if !cmd.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", tournament.ErrInvalidType, cmd.Type)
	}
	if err := tournament.ValidateFields(cmd.Fields); err != nil {
		return nil, err
	}
	if cmd.URL == "" {
		cmd.URL = URLSlug(cmd.Name)
	}

	params := make(Params, len(cmd.Fields)+4)
	for k, v := range cmd.Fields {
		params[k] = v
	}
	params["name"] = cmd.Name
	params["url"] = cmd.URL
	params["tournament_type"] = string(cmd.Type)
	if cmd.Subdomain != "" {
		params["subdomain"] = cmd.Subdomain
	}

	raw, err := a.session.call(ctx, Request{
		Method: http.MethodPost,
		Path:   "tournaments",
		Prefix: "tournament",
		Params: params,
	})
	if err != nil || raw == nil {
		return nil, err
	}
	rec, err := wire.Tournament(raw)
	if err != nil {
		return nil, err
	}
	return a.tournaments.Upsert(rec)[0], nil
}

// DestroyTournament deletes the tournament remotely and evicts it. Evicting a
// tournament that was not cached is a no-op.
func (a *Account) DestroyTournament(ctx context.Context, id shared.TournamentID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	raw, err := a.session.call(ctx, Request{Method: http.MethodDelete, Path: "tournaments/" + id.String()})
	if err != nil || raw == nil {
		return err
	}
	a.tournaments.Remove(id)
	return nil
}

// URLSlug turns a tournament name into a url made of letters, digits and
// underscores.
func URLSlug(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}
