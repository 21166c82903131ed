package challonge

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sandai/challonge/src/domain/cache"
	"github.com/sandai/challonge/src/domain/shared"
	"github.com/sandai/challonge/src/domain/tournament"
	"github.com/sandai/challonge/src/infra/wire"
)

// Tournament is a cached remote tournament owning its participants and matches.
type Tournament struct {
	account *Account

	mu  sync.RWMutex
	rec tournament.Tournament

	participants *cache.Collection[shared.ParticipantID, tournament.Participant, *Participant]
	matches      *cache.Collection[shared.MatchID, tournament.Match, *Match]
}

func newTournament(a *Account, rec tournament.Tournament) *Tournament {
	t := &Tournament{account: a}
	t.participants = cache.New(cache.Binding[shared.ParticipantID, tournament.Participant, *Participant]{
		Key:     func(r tournament.Participant) shared.ParticipantID { return r.ID },
		New:     func(r tournament.Participant) *Participant { return &Participant{tournament: t, rec: r} },
		Refresh: func(p *Participant, r tournament.Participant) { p.apply(r) },
	})
	t.matches = cache.New(cache.Binding[shared.MatchID, tournament.Match, *Match]{
		Key:     func(r tournament.Match) shared.MatchID { return r.ID },
		New:     func(r tournament.Match) *Match { return newMatch(t, r) },
		Refresh: func(m *Match, r tournament.Match) { m.apply(r) },
	})
	t.apply(rec)
	return t
}

// apply copies rec onto the tournament and merges any nested batch.
func (t *Tournament) apply(rec tournament.Tournament) {
	participants, matches := rec.Participants, rec.Matches
	rec.Participants, rec.Matches = nil, nil

	t.mu.Lock()
	t.rec = rec
	t.mu.Unlock()

	if participants != nil {
		t.participants.Merge(participants)
	}
	if matches != nil {
		t.matches.Merge(matches)
	}
}

// Record returns a copy of the mirrored fields.
func (t *Tournament) Record() tournament.Tournament {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rec
}

func (t *Tournament) ID() shared.TournamentID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rec.ID
}

func (t *Tournament) Name() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rec.Name
}

func (t *Tournament) State() tournament.State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rec.State
}

// Account returns the owning account.
func (t *Tournament) Account() *Account { return t.account }

// Participants returns the cached participants without fetching.
func (t *Tournament) Participants() []*Participant { return t.participants.List() }

// Matches returns the cached matches without fetching.
func (t *Tournament) Matches() []*Match { return t.matches.List() }

func (t *Tournament) session() *session { return t.account.session }

func (t *Tournament) path(parts ...string) string {
	return path.Join(append([]string{"tournaments", t.ID().String()}, parts...)...)
}

// Start generates the bracket.
func (t *Tournament) Start(ctx context.Context) error {
	return t.transition(ctx, "start", tournament.StateUnderway, false)
}

// Reset clears scores and matches, moving the tournament back to pending.
func (t *Tournament) Reset(ctx context.Context) error {
	return t.transition(ctx, "reset", tournament.StatePending, false)
}

// Finalize settles final ranks.
func (t *Tournament) Finalize(ctx context.Context) error {
	return t.transition(ctx, "finalize", tournament.StateComplete, false)
}

// ProcessCheckIns marks every participant who did not check in as inactive.
// Participants are always merged back since every checked-in flag may change.
func (t *Tournament) ProcessCheckIns(ctx context.Context) error {
	return t.transition(ctx, "process_check_ins", tournament.StateCheckedIn, true)
}

// AbortCheckIn clears every check-in and returns to pending.
func (t *Tournament) AbortCheckIn(ctx context.Context) error {
	return t.transition(ctx, "abort_check_in", tournament.StatePending, true)
}

func (t *Tournament) transition(ctx context.Context, action string, to tournament.State, withParticipants bool) error {
	s := t.session()
	if from := t.State(); !tournament.CanTransition(from, to) {
		s.logger.Warn("unexpected tournament transition",
			zap.Int64("tournament_id", int64(t.ID())),
			zap.String("action", action),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}

	raw, err := s.call(ctx, Request{
		Method: http.MethodPost,
		Path:   t.path(action),
		Params: s.includeParams(withParticipants || s.config.AutoIncludeParticipants, s.config.AutoIncludeMatches),
	})
	if err != nil || raw == nil {
		return err
	}
	return t.refresh(raw)
}

func (t *Tournament) refresh(raw []byte) error {
	rec, err := wire.Tournament(raw)
	if err != nil {
		return err
	}
	t.apply(rec)
	return nil
}

// Update changes tournament settings. Field names outside the updatable set
// are rejected before any request is made.
func (t *Tournament) Update(ctx context.Context, fields map[string]any) error {
	if err := tournament.ValidateFields(fields); err != nil {
		return err
	}
	if v, ok := fields["tournament_type"]; ok {
		if typ := tournament.Type(fmt.Sprint(v)); !typ.Valid() {
			return fmt.Errorf("%w: %q", tournament.ErrInvalidType, typ)
		}
	}

	raw, err := t.session().call(ctx, Request{
		Method: http.MethodPut,
		Path:   t.path(),
		Prefix: "tournament",
		Params: Params(fields),
	})
	if err != nil || raw == nil {
		return err
	}
	return t.refresh(raw)
}

// AllowAttachments lets participants attach files and links to matches.
func (t *Tournament) AllowAttachments(ctx context.Context, allow bool) error {
	return t.Update(ctx, map[string]any{"accept_attachments": allow})
}

// Destroy deletes the tournament and evicts it from the account.
func (t *Tournament) Destroy(ctx context.Context) error {
	return t.account.DestroyTournament(ctx, t.ID())
}

// NewParticipant describes a participant to add. Exactly one of DisplayName
// and Username must be set.
type NewParticipant struct {
	DisplayName string
	Username    string
	Email       string
	// Seed of zero appends the participant after the current last seed.
	Seed int
	Misc string
}

// AddParticipant registers a participant and caches it.
func (t *Tournament) AddParticipant(ctx context.Context, np NewParticipant) (*Participant, error) {
	if (np.DisplayName == "") == (np.Username == "") {
		return nil, tournament.ErrParticipantIdentity
	}

	params := Params{}
	if np.DisplayName != "" {
		params["name"] = np.DisplayName
	} else {
		params["challonge_username"] = np.Username
	}
	if np.Email != "" {
		params["email"] = np.Email
	}
	if np.Seed > 0 {
		params["seed"] = np.Seed
	}
	if np.Misc != "" {
		params["misc"] = np.Misc
	}

	raw, err := t.session().call(ctx, Request{
		Method: http.MethodPost,
		Path:   t.path("participants"),
		Prefix: "participant",
		Params: params,
	})
	if err != nil || raw == nil {
		return nil, err
	}
	rec, err := wire.Participant(raw)
	if err != nil {
		return nil, err
	}
	return t.participants.Upsert(rec)[0], nil
}

// AddParticipants registers several participants by display name in one
// request. The result follows the order of names.
func (t *Tournament) AddParticipants(ctx context.Context, names ...string) ([]*Participant, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: participant names", shared.ErrMissingArgument)
	}
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return nil, tournament.ErrParticipantIdentity
		}
	}

	raw, err := t.session().call(ctx, Request{
		Method: http.MethodPost,
		Path:   t.path("participants", "bulk_add"),
		Prefix: "participants[]",
		Params: Params{"name": names},
	})
	if err != nil || raw == nil {
		return nil, err
	}
	recs, err := wire.Participants(raw)
	if err != nil {
		return nil, err
	}
	return t.participants.Upsert(recs...), nil
}

// RemoveParticipant deletes a participant remotely and evicts it. Removing a
// participant that is not cached is a no-op for the cache.
func (t *Tournament) RemoveParticipant(ctx context.Context, id shared.ParticipantID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	raw, err := t.session().call(ctx, Request{
		Method: http.MethodDelete,
		Path:   t.path("participants", id.String()),
	})
	if err != nil || raw == nil {
		return err
	}
	t.participants.Remove(id)
	return nil
}

// GetParticipant returns the participant with id, fetching it when it is not
// cached or mode is Forced.
func (t *Tournament) GetParticipant(ctx context.Context, id shared.ParticipantID, mode FetchMode) (*Participant, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if mode == Cached {
		if p, ok := t.participants.Get(id); ok {
			return p, nil
		}
	}

	raw, err := t.session().call(ctx, Request{
		Method: http.MethodGet,
		Path:   t.path("participants", id.String()),
	})
	if err != nil || raw == nil {
		return nil, err
	}
	rec, err := wire.Participant(raw)
	if err != nil {
		return nil, err
	}
	return t.participants.Upsert(rec)[0], nil
}

// GetParticipants returns every participant. A loaded cache is reused unless
// mode is Forced.
func (t *Tournament) GetParticipants(ctx context.Context, mode FetchMode) ([]*Participant, error) {
	if mode == Cached && t.participants.Loaded() {
		return t.participants.List(), nil
	}

	raw, err := t.session().call(ctx, Request{Method: http.MethodGet, Path: t.path("participants")})
	if err != nil || raw == nil {
		return nil, err
	}
	recs, err := wire.Participants(raw)
	if err != nil {
		return nil, err
	}
	t.participants.Merge(recs)
	return t.participants.List(), nil
}

// SearchParticipant returns the first participant named name, or nil.
func (t *Tournament) SearchParticipant(ctx context.Context, name string, mode FetchMode) (*Participant, error) {
	if _, err := t.GetParticipants(ctx, mode); err != nil {
		return nil, err
	}
	p, _ := t.participants.Find(func(p *Participant) bool { return p.Name() == name })
	return p, nil
}

// ParticipantForPlayer resolves a player id found in a match slot to the
// participant owning it, which is a team participant in group stages.
func (t *Tournament) ParticipantForPlayer(ctx context.Context, playerID shared.ParticipantID, mode FetchMode) (*Participant, error) {
	owns := func(p *Participant) bool { return p.Record().Owns(playerID) }
	if mode == Cached {
		if p, ok := t.participants.Find(owns); ok {
			return p, nil
		}
	}
	if _, err := t.GetParticipants(ctx, mode); err != nil {
		return nil, err
	}
	p, _ := t.participants.Find(owns)
	return p, nil
}

// ShuffleParticipants randomizes seeds remotely and merges the new seeds.
func (t *Tournament) ShuffleParticipants(ctx context.Context) ([]*Participant, error) {
	raw, err := t.session().call(ctx, Request{
		Method: http.MethodPost,
		Path:   t.path("participants", "randomize"),
	})
	if err != nil || raw == nil {
		return nil, err
	}
	recs, err := wire.Participants(raw)
	if err != nil {
		return nil, err
	}
	t.participants.Merge(recs)
	return t.participants.List(), nil
}

// GetMatch returns the match with id, fetching it with its attachments when it
// is not cached or mode is Forced.
func (t *Tournament) GetMatch(ctx context.Context, id shared.MatchID, mode FetchMode) (*Match, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if mode == Cached {
		if m, ok := t.matches.Get(id); ok {
			return m, nil
		}
	}

	raw, err := t.session().call(ctx, Request{
		Method: http.MethodGet,
		Path:   t.path("matches", id.String()),
		Params: Params{"include_attachments": 1},
	})
	if err != nil || raw == nil {
		return nil, err
	}
	rec, err := wire.Match(raw)
	if err != nil {
		return nil, err
	}
	return t.matches.Upsert(rec)[0], nil
}

// GetMatches returns every match. A loaded cache is reused unless mode is
// Forced.
func (t *Tournament) GetMatches(ctx context.Context, mode FetchMode) ([]*Match, error) {
	if mode == Cached && t.matches.Loaded() {
		return t.matches.List(), nil
	}

	raw, err := t.session().call(ctx, Request{
		Method: http.MethodGet,
		Path:   t.path("matches"),
		Params: Params{"include_attachments": 1},
	})
	if err != nil || raw == nil {
		return nil, err
	}
	recs, err := wire.Matches(raw)
	if err != nil {
		return nil, err
	}
	t.matches.Merge(recs)
	return t.matches.List(), nil
}

// GetFinalRanking groups participants by final rank, best first. It returns
// nil while the tournament is not complete.
func (t *Tournament) GetFinalRanking(ctx context.Context, mode FetchMode) ([]tournament.RankGroup[*Participant], error) {
	if !t.Record().Complete() {
		return nil, nil
	}
	participants, err := t.GetParticipants(ctx, mode)
	if err != nil {
		return nil, err
	}
	return tournament.Rank(participants, func(p *Participant) *int { return p.Record().FinalRank }), nil
}
