package challonge

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/sandai/challonge/src/domain/shared"
	"github.com/sandai/challonge/src/domain/tournament"
	"github.com/sandai/challonge/src/infra/wire"
)

// Participant is a cached tournament participant.
type Participant struct {
	tournament *Tournament

	mu  sync.RWMutex
	rec tournament.Participant
}

func (p *Participant) apply(rec tournament.Participant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rec = rec
}

// Record returns a copy of the mirrored fields.
func (p *Participant) Record() tournament.Participant {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rec
}

func (p *Participant) ID() shared.ParticipantID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rec.ID
}

func (p *Participant) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rec.Name
}

// Tournament returns the owning tournament.
func (p *Participant) Tournament() *Tournament { return p.tournament }

func (p *Participant) path(parts ...string) string {
	return p.tournament.path(append([]string{"participants", p.ID().String()}, parts...)...)
}

// ChangeDisplayName renames the participant. Names are unique per tournament.
func (p *Participant) ChangeDisplayName(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: display name", shared.ErrMissingArgument)
	}
	return p.change(ctx, Params{"name": name})
}

// ChangeUsername invites a registered user to take this slot.
func (p *Participant) ChangeUsername(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}
	return p.change(ctx, Params{"challonge_username": username})
}

// ChangeEmail sets the email used to invite the participant.
func (p *Participant) ChangeEmail(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}
	return p.change(ctx, Params{"email": email})
}

// ChangeSeed moves the participant to seed. The remote service bumps the other
// seeds; only this participant is refreshed.
func (p *Participant) ChangeSeed(ctx context.Context, seed int) error {
	if seed < 1 {
		return fmt.Errorf("%w: seed must be positive", shared.ErrInvalidInput)
	}
	return p.change(ctx, Params{"seed": seed})
}

// ChangeMisc sets the API-only misc field.
func (p *Participant) ChangeMisc(ctx context.Context, misc string) error {
	return p.change(ctx, Params{"misc": misc})
}

func (p *Participant) change(ctx context.Context, params Params) error {
	raw, err := p.tournament.session().call(ctx, Request{
		Method: http.MethodPut,
		Path:   p.path(),
		Prefix: "participant",
		Params: params,
	})
	if err != nil || raw == nil {
		return err
	}
	return p.refresh(raw)
}

func (p *Participant) refresh(raw []byte) error {
	rec, err := wire.Participant(raw)
	if err != nil {
		return err
	}
	p.apply(rec)
	return nil
}

// CheckIn checks the participant in during the check-in window.
func (p *Participant) CheckIn(ctx context.Context) error {
	return p.post(ctx, "check_in")
}

// UndoCheckIn reverts CheckIn.
func (p *Participant) UndoCheckIn(ctx context.Context) error {
	return p.post(ctx, "undo_check_in")
}

func (p *Participant) post(ctx context.Context, action string) error {
	raw, err := p.tournament.session().call(ctx, Request{Method: http.MethodPost, Path: p.path(action)})
	if err != nil || raw == nil {
		return err
	}
	return p.refresh(raw)
}

// GetMatches fetches the matches of this participant in state. Results are
// resolved through the tournament match cache.
func (p *Participant) GetMatches(ctx context.Context, state tournament.MatchState) ([]*Match, error) {
	if state == "" {
		state = tournament.MatchAll
	}
	t := p.tournament
	raw, err := t.session().call(ctx, Request{
		Method: http.MethodGet,
		Path:   t.path("matches"),
		Params: Params{
			"state":               string(state),
			"participant_id":      p.ID().String(),
			"include_attachments": 1,
		},
	})
	if err != nil || raw == nil {
		return nil, err
	}
	recs, err := wire.Matches(raw)
	if err != nil {
		return nil, err
	}
	return t.matches.Upsert(recs...), nil
}

// GetNextMatch returns the first open match of the participant, else the first
// pending one. It returns nil once the participant has a final rank.
func (p *Participant) GetNextMatch(ctx context.Context) (*Match, error) {
	if p.Record().Eliminated() {
		return nil, nil
	}
	for _, state := range []tournament.MatchState{tournament.MatchOpen, tournament.MatchPending} {
		matches, err := p.GetMatches(ctx, state)
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return nil, nil
}

// GetNextOpponent returns the participant in the other slot of the next match.
// It returns nil when there is no next match or the slot is still undecided.
func (p *Participant) GetNextOpponent(ctx context.Context) (*Participant, error) {
	m, err := p.GetNextMatch(ctx)
	if err != nil || m == nil {
		return nil, err
	}
	return p.OpponentIn(ctx, m)
}

// OpponentIn returns the participant facing p in m, or nil when p is not in m
// or the other slot is undecided.
func (p *Participant) OpponentIn(ctx context.Context, m *Match) (*Participant, error) {
	slot, ok := m.Record().OpponentSlot(p.Record())
	if !ok {
		return nil, nil
	}
	return p.tournament.ParticipantForPlayer(ctx, slot, Cached)
}
