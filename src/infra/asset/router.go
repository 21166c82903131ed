package asset

import (
	"context"
	"strings"

	"github.com/sandai/challonge/src/app/challonge"
)

// Router picks a source by reference scheme ("s3", "r2", ...). References
// without a registered scheme go to the fallback.
type Router struct {
	schemes  map[string]challonge.AssetSource
	fallback challonge.AssetSource
}

// NewRouter routes unknown schemes and plain paths to fallback.
func NewRouter(fallback challonge.AssetSource) *Router {
	return &Router{schemes: make(map[string]challonge.AssetSource), fallback: fallback}
}

// Handle registers src for scheme.
func (r *Router) Handle(scheme string, src challonge.AssetSource) *Router {
	r.schemes[strings.ToLower(scheme)] = src
	return r
}

// Load resolves ref through the matching source.
func (r *Router) Load(ctx context.Context, ref string) (challonge.Asset, error) {
	if i := strings.Index(ref, "://"); i > 0 {
		if src, ok := r.schemes[strings.ToLower(ref[:i])]; ok {
			return src.Load(ctx, ref)
		}
	}
	return r.fallback.Load(ctx, ref)
}
