package challonge_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandai/challonge/src/app/challonge"
	"github.com/sandai/challonge/src/domain/shared"
)

type route func(req challonge.Request) (string, error)

// fakeTransport answers requests from routes keyed by "METHOD path" and
// records every request. Unknown routes answer 404.
type fakeTransport struct {
	mu       sync.Mutex
	routes   map[string]route
	requests []challonge.Request
}

func newFake() *fakeTransport {
	return &fakeTransport{routes: make(map[string]route)}
}

func (f *fakeTransport) on(method, path string, fn route) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = fn
}

func (f *fakeTransport) reply(method, path, body string) {
	f.on(method, path, func(challonge.Request) (string, error) { return body, nil })
}

func (f *fakeTransport) fail(method, path string, kind shared.ErrorKind, status int) {
	f.on(method, path, func(req challonge.Request) (string, error) {
		return "", &shared.APIError{Kind: kind, Status: status, Method: req.Method, Path: req.Path}
	})
}

func (f *fakeTransport) Do(_ context.Context, req challonge.Request) (json.RawMessage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn, ok := f.routes[req.Method+" "+req.Path]
	f.mu.Unlock()

	if !ok {
		return nil, &shared.APIError{Kind: shared.KindNotFound, Status: 404, Method: req.Method, Path: req.Path}
	}
	body, err := fn(req)
	if err != nil {
		return nil, err
	}
	if body == "" {
		body = "{}"
	}
	return json.RawMessage(body), nil
}

func (f *fakeTransport) calls(method, path string) []challonge.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []challonge.Request
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func tournamentJSON(id int, name, state string, nested ...string) string {
	extra := ""
	if len(nested) > 0 {
		extra = ", " + strings.Join(nested, ", ")
	}
	return fmt.Sprintf(`{"tournament": {"id": %d, "name": %q, "url": "t%d", "state": %q, "tournament_type": "single elimination"%s}}`,
		id, name, id, state, extra)
}

func participantJSON(id int, name string, extra ...string) string {
	fields := fmt.Sprintf(`"id": %d, "tournament_id": 1, "name": %q`, id, name)
	for _, e := range extra {
		fields += ", " + e
	}
	return fmt.Sprintf(`{"participant": {%s}}`, fields)
}

func matchJSON(id int, state string, p1, p2 any, extra ...string) string {
	fields := fmt.Sprintf(`"id": %d, "tournament_id": 1, "state": %q, "player1_id": %s, "player2_id": %s`,
		id, state, slotJSON(p1), slotJSON(p2))
	for _, e := range extra {
		fields += ", " + e
	}
	return fmt.Sprintf(`{"match": {%s}}`, fields)
}

func slotJSON(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v)
}

func list(items ...string) string {
	return "[" + strings.Join(items, ",") + "]"
}

func nestedList(key string, items ...string) string {
	return fmt.Sprintf("%q: %s", key, list(items...))
}

// loadTournament builds an account on f and fetches tournament 1.
func loadTournament(t *testing.T, f *fakeTransport, opts ...challonge.Option) (*challonge.Account, *challonge.Tournament) {
	t.Helper()
	account := challonge.NewAccount(f, opts...)
	tour, err := account.GetTournament(context.Background(), 1, challonge.Cached)
	require.NoError(t, err)
	require.NotNil(t, tour)
	return account, tour
}

func intp(v int) *int { return &v }
