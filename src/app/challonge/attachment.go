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

// Attachment is a cached match attachment.
type Attachment struct {
	match *Match

	mu  sync.RWMutex
	rec tournament.Attachment
}

func (a *Attachment) apply(rec tournament.Attachment) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rec = rec
}

// Record returns a copy of the mirrored fields.
func (a *Attachment) Record() tournament.Attachment {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rec
}

func (a *Attachment) ID() shared.AttachmentID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rec.ID
}

// Match returns the owning match.
func (a *Attachment) Match() *Match { return a.match }

// ChangeURL points the attachment at url.
func (a *Attachment) ChangeURL(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}
	return a.change(ctx, attachmentContent{url: url, description: a.description()})
}

// ChangeText replaces the description.
func (a *Attachment) ChangeText(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("%w: text", shared.ErrMissingArgument)
	}
	return a.change(ctx, attachmentContent{description: text})
}

// ChangeFile replaces the asset with the file at ref, read at call time.
func (a *Attachment) ChangeFile(ctx context.Context, ref string) error {
	asset, err := a.match.session().assets.Load(ctx, ref)
	if err != nil {
		return err
	}
	return a.change(ctx, attachmentContent{asset: &asset, description: a.description()})
}

func (a *Attachment) description() string {
	rec := a.Record()
	if rec.Description == nil {
		return ""
	}
	return *rec.Description
}

func (a *Attachment) change(ctx context.Context, content attachmentContent) error {
	if err := content.validate(); err != nil {
		return err
	}
	path := a.match.path("attachments", a.ID().String())
	raw, err := a.match.session().call(ctx, content.request(http.MethodPut, path))
	if err != nil || raw == nil {
		return err
	}
	rec, err := wire.Attachment(raw)
	if err != nil {
		return err
	}
	a.apply(rec)
	return nil
}
