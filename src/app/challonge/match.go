package challonge

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/sandai/challonge/src/domain/cache"
	"github.com/sandai/challonge/src/domain/shared"
	"github.com/sandai/challonge/src/domain/tournament"
	"github.com/sandai/challonge/src/infra/wire"
)

// Match is a cached tournament match owning its attachments.
type Match struct {
	tournament *Tournament

	mu  sync.RWMutex
	rec tournament.Match

	attachments *cache.Collection[shared.AttachmentID, tournament.Attachment, *Attachment]
}

func newMatch(t *Tournament, rec tournament.Match) *Match {
	m := &Match{tournament: t}
	m.attachments = cache.New(cache.Binding[shared.AttachmentID, tournament.Attachment, *Attachment]{
		Key:     func(r tournament.Attachment) shared.AttachmentID { return r.ID },
		New:     func(r tournament.Attachment) *Attachment { return &Attachment{match: m, rec: r} },
		Refresh: func(a *Attachment, r tournament.Attachment) { a.apply(r) },
	})
	m.apply(rec)
	return m
}

func (m *Match) apply(rec tournament.Match) {
	attachments := rec.Attachments
	rec.Attachments = nil

	m.mu.Lock()
	m.rec = rec
	m.mu.Unlock()

	if attachments != nil {
		m.attachments.Merge(attachments)
	}
}

// Record returns a copy of the mirrored fields.
func (m *Match) Record() tournament.Match {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec
}

func (m *Match) ID() shared.MatchID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec.ID
}

func (m *Match) State() tournament.MatchState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec.State
}

// Tournament returns the owning tournament.
func (m *Match) Tournament() *Tournament { return m.tournament }

// Attachments returns the cached attachments without fetching.
func (m *Match) Attachments() []*Attachment { return m.attachments.List() }

func (m *Match) path(parts ...string) string {
	return m.tournament.path(append([]string{"matches", m.ID().String()}, parts...)...)
}

func (m *Match) session() *session { return m.tournament.session() }

func (m *Match) refresh(raw []byte) error {
	rec, err := wire.Match(raw)
	if err != nil {
		return err
	}
	m.apply(rec)
	return nil
}

// ReportLiveScores records in-progress scores without a winner, e.g. "1-3,3-0".
func (m *Match) ReportLiveScores(ctx context.Context, scores string) error {
	if err := tournament.ValidateScores(scores); err != nil {
		return err
	}
	return m.update(ctx, Params{"scores_csv": scores})
}

// ReportWinner closes the match with winner. Downstream pairings may change so
// the whole match list is refreshed afterwards.
func (m *Match) ReportWinner(ctx context.Context, winner *Participant, scores string) error {
	if winner == nil {
		return fmt.Errorf("%w: winner", shared.ErrMissingArgument)
	}
	if err := tournament.ValidateScores(scores); err != nil {
		return err
	}
	return m.report(ctx, Params{"scores_csv": scores, "winner_id": m.slotOf(winner).String()})
}

// ReportTie closes the match as a tie, for round robin and swiss formats.
func (m *Match) ReportTie(ctx context.Context, scores string) error {
	if err := tournament.ValidateScores(scores); err != nil {
		return err
	}
	return m.report(ctx, Params{"scores_csv": scores, "winner_id": tournament.TieMarker})
}

// slotOf returns the id under which p plays this match: its own id, or the
// group player id occupying a slot in group stages.
func (m *Match) slotOf(p *Participant) shared.ParticipantID {
	rec := p.Record()
	for _, slot := range m.Record().Slots() {
		if slot != nil && rec.Owns(*slot) {
			return *slot
		}
	}
	return rec.ID
}

func (m *Match) report(ctx context.Context, params Params) error {
	raw, err := m.session().call(ctx, Request{
		Method: http.MethodPut,
		Path:   m.path(),
		Prefix: "match",
		Params: params,
	})
	if err != nil || raw == nil {
		return err
	}
	if err := m.refresh(raw); err != nil {
		return err
	}
	_, err = m.tournament.GetMatches(ctx, Forced)
	return err
}

func (m *Match) update(ctx context.Context, params Params) error {
	raw, err := m.session().call(ctx, Request{
		Method: http.MethodPut,
		Path:   m.path(),
		Prefix: "match",
		Params: params,
	})
	if err != nil || raw == nil {
		return err
	}
	return m.refresh(raw)
}

// VoteChange sets the vote counts of a match. Nil counts are left untouched.
// With Add the counts are deltas applied to freshly fetched values, otherwise
// they overwrite.
type VoteChange struct {
	Player1 *int
	Player2 *int
	Add     bool
}

// ChangeVotes updates the vote counts.
func (m *Match) ChangeVotes(ctx context.Context, change VoteChange) error {
	if change.Player1 == nil && change.Player2 == nil {
		return tournament.ErrNoVotes
	}

	var base1, base2 int
	if change.Add {
		fresh, err := m.reload(ctx)
		if err != nil || !fresh {
			return err
		}
		base1, base2 = m.Record().Votes()
	}

	params := Params{}
	if change.Player1 != nil {
		params["player1_votes"] = base1 + *change.Player1
	}
	if change.Player2 != nil {
		params["player2_votes"] = base2 + *change.Player2
	}
	return m.update(ctx, params)
}

// reload fetches this match and refreshes it in place. It reports false when
// a suppressed failure left the match untouched.
func (m *Match) reload(ctx context.Context) (bool, error) {
	raw, err := m.session().call(ctx, Request{
		Method: http.MethodGet,
		Path:   m.path(),
		Params: Params{"include_attachments": 1},
	})
	if err != nil || raw == nil {
		return false, err
	}
	if err := m.refresh(raw); err != nil {
		return false, err
	}
	return true, nil
}

// MarkUnderway flags the match as being played.
func (m *Match) MarkUnderway(ctx context.Context) error {
	return m.post(ctx, "mark_as_underway")
}

// UnmarkUnderway clears the underway flag.
func (m *Match) UnmarkUnderway(ctx context.Context) error {
	return m.post(ctx, "unmark_as_underway")
}

// Reopen moves a complete match back to open. The remote service also resets
// the matches that depended on it, so the match list is refreshed.
func (m *Match) Reopen(ctx context.Context) error {
	if err := m.post(ctx, "reopen"); err != nil {
		return err
	}
	_, err := m.tournament.GetMatches(ctx, Forced)
	return err
}

func (m *Match) post(ctx context.Context, action string) error {
	raw, err := m.session().call(ctx, Request{Method: http.MethodPost, Path: m.path(action)})
	if err != nil || raw == nil {
		return err
	}
	return m.refresh(raw)
}

// attachmentContent is what an attachment carries; at least one part is set.
type attachmentContent struct {
	asset       *Asset
	url         string
	description string
}

func (c attachmentContent) validate() error {
	if c.asset == nil && c.url == "" && c.description == "" {
		return tournament.ErrAttachmentContent
	}
	return nil
}

func (c attachmentContent) request(method, path string) Request {
	req := Request{
		Method: method,
		Path:   path,
		Prefix: "match_attachment",
		Params: Params{"description": c.description},
	}
	if c.url != "" {
		req.Params["url"] = c.url
	}
	if c.asset != nil {
		req.Upload = &Upload{
			Field:       "asset",
			FileName:    c.asset.Name,
			ContentType: c.asset.ContentType,
			Content:     c.asset.Content,
		}
	}
	return req
}

// AttachURL links url to the match with an optional description.
func (m *Match) AttachURL(ctx context.Context, url, description string) (*Attachment, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}
	return m.attach(ctx, attachmentContent{url: url, description: description})
}

// AttachText adds a plain text attachment.
func (m *Match) AttachText(ctx context.Context, text string) (*Attachment, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text", shared.ErrMissingArgument)
	}
	return m.attach(ctx, attachmentContent{description: text})
}

// AttachFile uploads the asset at ref, read through the configured source at
// call time.
func (m *Match) AttachFile(ctx context.Context, ref, description string) (*Attachment, error) {
	asset, err := m.session().assets.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return m.attach(ctx, attachmentContent{asset: &asset, description: description})
}

func (m *Match) attach(ctx context.Context, content attachmentContent) (*Attachment, error) {
	if err := content.validate(); err != nil {
		return nil, err
	}
	raw, err := m.session().call(ctx, content.request(http.MethodPost, m.path("attachments")))
	if err != nil || raw == nil {
		return nil, err
	}
	rec, err := wire.Attachment(raw)
	if err != nil {
		return nil, err
	}
	return m.attachments.Upsert(rec)[0], nil
}

// GetAttachment returns the attachment with id, fetching it when it is not
// cached or mode is Forced.
func (m *Match) GetAttachment(ctx context.Context, id shared.AttachmentID, mode FetchMode) (*Attachment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if mode == Cached {
		if a, ok := m.attachments.Get(id); ok {
			return a, nil
		}
	}

	raw, err := m.session().call(ctx, Request{Method: http.MethodGet, Path: m.path("attachments", id.String())})
	if err != nil || raw == nil {
		return nil, err
	}
	rec, err := wire.Attachment(raw)
	if err != nil {
		return nil, err
	}
	return m.attachments.Upsert(rec)[0], nil
}

// GetAttachments returns every attachment of the match. A loaded cache is
// reused unless mode is Forced.
func (m *Match) GetAttachments(ctx context.Context, mode FetchMode) ([]*Attachment, error) {
	if mode == Cached && m.attachments.Loaded() {
		return m.attachments.List(), nil
	}

	raw, err := m.session().call(ctx, Request{Method: http.MethodGet, Path: m.path("attachments")})
	if err != nil || raw == nil {
		return nil, err
	}
	recs, err := wire.Attachments(raw)
	if err != nil {
		return nil, err
	}
	m.attachments.Merge(recs)
	return m.attachments.List(), nil
}

// DestroyAttachment deletes an attachment and evicts it when cached.
func (m *Match) DestroyAttachment(ctx context.Context, id shared.AttachmentID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	raw, err := m.session().call(ctx, Request{Method: http.MethodDelete, Path: m.path("attachments", id.String())})
	if err != nil || raw == nil {
		return err
	}
	m.attachments.Remove(id)
	return nil
}
