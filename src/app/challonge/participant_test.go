package challonge_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandai/challonge/src/app/challonge"
	"github.com/sandai/challonge/src/domain/shared"
)

// bracket serves a started four player single elimination tournament. P1 beats
// P4 and P2 beats P3 to meet in the final.
type bracket struct {
	f        *fakeTransport
	reported bool
}

type bracketMatch struct {
	id     int
	state  string
	p1, p2 any
	extra  []string
}

func newBracket() *bracket {
	b := &bracket{f: newFake()}
	b.f.reply("GET", "tournaments/1", tournamentJSON(1, "Cup", "underway",
		nestedList("participants",
			participantJSON(1, "P1"), participantJSON(2, "P2"),
			participantJSON(3, "P3"), participantJSON(4, "P4"),
		),
	))
	b.f.on("GET", "tournaments/1/matches", func(req challonge.Request) (string, error) {
		return b.listing(req.Params["state"], req.Params["participant_id"]), nil
	})
	b.f.on("PUT", "tournaments/1/matches/10", func(req challonge.Request) (string, error) {
		b.reported = true
		return matchJSON(10, "complete", 1, 4, `"winner_id": 1`, `"scores_csv": "2-0"`), nil
	})
	return b
}

func (b *bracket) matches() []bracketMatch {
	if !b.reported {
		return []bracketMatch{
			{id: 10, state: "open", p1: 1, p2: 4},
			{id: 11, state: "open", p1: 2, p2: 3},
			{id: 12, state: "pending"},
		}
	}
	return []bracketMatch{
		{id: 10, state: "complete", p1: 1, p2: 4, extra: []string{`"winner_id": 1`}},
		{id: 11, state: "complete", p1: 2, p2: 3, extra: []string{`"winner_id": 2`}},
		{id: 12, state: "open", p1: 1, p2: 2},
	}
}

// listing filters by state and participant the way the remote service does.
func (b *bracket) listing(state, participant any) string {
	out := []string{}
	for _, m := range b.matches() {
		if state != nil && state != m.state {
			continue
		}
		if participant != nil && participant != fmt.Sprint(m.p1) && participant != fmt.Sprint(m.p2) {
			continue
		}
		out = append(out, matchJSON(m.id, m.state, m.p1, m.p2, m.extra...))
	}
	return list(out...)
}

func TestParticipant_NextMatchAndOpponent(t *testing.T) {
	b := newBracket()
	_, tour := loadTournament(t, b.f)
	ctx := context.Background()

	p1, err := tour.GetParticipant(ctx, 1, challonge.Cached)
	require.NoError(t, err)

	next, err := p1.GetNextMatch(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, shared.MatchID(10), next.ID())
	assert.True(t, next.Record().Involves(p1.Record()))

	opponent, err := p1.GetNextOpponent(ctx)
	require.NoError(t, err)
	require.NotNil(t, opponent)
	assert.Equal(t, "P4", opponent.Name())

	req := b.f.calls("GET", "tournaments/1/matches")[0]
	assert.Equal(t, "open", req.Params["state"])
	assert.Equal(t, "1", req.Params["participant_id"])

	require.NoError(t, next.ReportWinner(ctx, p1, "2-0"))
	assert.Equal(t, "complete", string(next.State()), "the held match observes the report")

	final, err := p1.GetNextMatch(ctx)
	require.NoError(t, err)
	require.NotNil(t, final)
	assert.Equal(t, shared.MatchID(12), final.ID())

	cached, err := tour.GetMatch(ctx, 12, challonge.Cached)
	require.NoError(t, err)
	assert.Same(t, cached, final, "filtered queries resolve through the match cache")

	opponent, err = p1.GetNextOpponent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "P2", opponent.Name())
}

func TestParticipant_NextMatch_Eliminated(t *testing.T) {
	f := newFake()
	f.reply("GET", "tournaments/1", tournamentJSON(1, "Cup", "underway",
		nestedList("participants", participantJSON(3, "P3", `"final_rank": 3`)),
	))
	_, tour := loadTournament(t, f)
	p3 := tour.Participants()[0]

	next, err := p3.GetNextMatch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, next)

	opponent, err := p3.GetNextOpponent(context.Background())
	require.NoError(t, err)
	assert.Nil(t, opponent)
	assert.Empty(t, f.calls("GET", "tournaments/1/matches"))
}

func TestParticipant_NextOpponent_Undecided(t *testing.T) {
	f := newFake()
	f.reply("GET", "tournaments/1", tournamentJSON(1, "Cup", "underway",
		nestedList("participants", participantJSON(1, "P1")),
	))
	f.on("GET", "tournaments/1/matches", func(req challonge.Request) (string, error) {
		if req.Params["state"] == "open" {
			return "[]", nil
		}
		return list(matchJSON(20, "pending", 1, nil)), nil
	})
	_, tour := loadTournament(t, f)
	p1 := tour.Participants()[0]

	next, err := p1.GetNextMatch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, shared.MatchID(20), next.ID())

	opponent, err := p1.GetNextOpponent(context.Background())
	require.NoError(t, err)
	assert.Nil(t, opponent)
}

func TestParticipant_Changes(t *testing.T) {
	tests := []struct {
		name   string
		run    func(ctx context.Context, p *challonge.Participant) error
		params challonge.Params
	}{
		{
			name:   "display name",
			run:    func(ctx context.Context, p *challonge.Participant) error { return p.ChangeDisplayName(ctx, "neo") },
			params: challonge.Params{"name": "neo"},
		},
		{
			name:   "username",
			run:    func(ctx context.Context, p *challonge.Participant) error { return p.ChangeUsername(ctx, "neo99") },
			params: challonge.Params{"challonge_username": "neo99"},
		},
		{
			name: "email",
			run: func(ctx context.Context, p *challonge.Participant) error {
				return p.ChangeEmail(ctx, "neo@example.com")
			},
			params: challonge.Params{"email": "neo@example.com"},
		},
		{
			name:   "seed",
			run:    func(ctx context.Context, p *challonge.Participant) error { return p.ChangeSeed(ctx, 2) },
			params: challonge.Params{"seed": 2},
		},
		{
			name:   "misc",
			run:    func(ctx context.Context, p *challonge.Participant) error { return p.ChangeMisc(ctx, "user:42") },
			params: challonge.Params{"misc": "user:42"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			f.reply("GET", "tournaments/1", tournamentJSON(1, "Cup", "pending",
				nestedList("participants", participantJSON(1, "old", `"seed": 1`)),
			))
			f.reply("PUT", "tournaments/1/participants/1", participantJSON(1, "neo", `"seed": 2`, `"misc": "user:42"`))
			_, tour := loadTournament(t, f)
			p := tour.Participants()[0]

			require.NoError(t, tt.run(context.Background(), p))

			req := f.calls("PUT", "tournaments/1/participants/1")[0]
			assert.Equal(t, "participant", req.Prefix)
			assert.Equal(t, tt.params, req.Params)
			assert.Equal(t, "neo", p.Name())
			assert.Same(t, p, tour.Participants()[0])
		})
	}
}

func TestParticipant_ChangeRejectsBadInput(t *testing.T) {
	f := newFake()
	f.reply("GET", "tournaments/1", tournamentJSON(1, "Cup", "pending",
		nestedList("participants", participantJSON(1, "p")),
	))
	_, tour := loadTournament(t, f)
	p := tour.Participants()[0]
	ctx := context.Background()

	assert.ErrorIs(t, p.ChangeSeed(ctx, 0), shared.ErrInvalidInput)
	assert.ErrorIs(t, p.ChangeDisplayName(ctx, ""), shared.ErrMissingArgument)
	assert.Empty(t, f.calls("PUT", "tournaments/1/participants/1"))
}

func TestParticipant_CheckIn(t *testing.T) {
	f := newFake()
	f.reply("GET", "tournaments/1", tournamentJSON(1, "Cup", "checking_in",
		nestedList("participants", participantJSON(1, "p")),
	))
	f.reply("POST", "tournaments/1/participants/1/check_in", participantJSON(1, "p", `"checked_in": true`, `"checked_in_at": "2024-03-01T10:00:00Z"`))
	f.reply("POST", "tournaments/1/participants/1/undo_check_in", participantJSON(1, "p", `"checked_in": false`))
	_, tour := loadTournament(t, f)
	p := tour.Participants()[0]
	ctx := context.Background()

	require.NoError(t, p.CheckIn(ctx))
	assert.True(t, p.Record().CheckedIn)
	assert.NotNil(t, p.Record().CheckedInAt)

	require.NoError(t, p.UndoCheckIn(ctx))
	assert.False(t, p.Record().CheckedIn)
	assert.Nil(t, p.Record().CheckedInAt)
}
