package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sandai/challonge/src/app/challonge"
	"github.com/sandai/challonge/src/domain/shared"
)

const refreshConcurrency = 4

// watch is one configured tournament reference: a numeric id, "url" or
// "subdomain/url".
type watch struct {
	raw       string
	id        shared.TournamentID
	url       string
	subdomain string
}

func parseWatch(raw string) (watch, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return watch{}, fmt.Errorf("%w: empty tournament reference", shared.ErrInvalidInput)
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		w := watch{raw: raw, id: shared.TournamentID(id)}
		if err := w.id.Validate(); err != nil {
			return watch{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return w, nil
	}
	sub, url, found := strings.Cut(raw, "/")
	if !found {
		return watch{raw: raw, url: raw}, nil
	}
	if sub == "" || url == "" {
		return watch{}, fmt.Errorf("%w: malformed tournament reference %q", shared.ErrInvalidInput, raw)
	}
	return watch{raw: raw, url: url, subdomain: sub}, nil
}

// Syncer periodically refetches the watched tournaments so their cached
// participants and matches stay current.
type Syncer struct {
	account *challonge.Account
	watches []watch
	logger  *zap.Logger

	lastSync atomic.Time
	failures atomic.Int64
	rounds   atomic.Int64

	results  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewSyncer builds a syncer for refs. Malformed references are logged and
// skipped. Metrics are registered only when reg is not nil.
func NewSyncer(account *challonge.Account, refs []string, logger *zap.Logger, reg prometheus.Registerer) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Syncer{
		account: account,
		logger:  logger,
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "challonge",
			Subsystem: "sync",
			Name:      "refreshes_total",
			Help:      "Tournament refreshes by result",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "challonge",
			Subsystem: "sync",
			Name:      "round_duration_seconds",
			Help:      "Duration of a full refresh round",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, ref := range refs {
		w, err := parseWatch(ref)
		if err != nil {
			logger.Warn("skipping tournament reference", zap.String("ref", ref), zap.Error(err))
			continue
		}
		s.watches = append(s.watches, w)
	}
	if reg != nil {
		reg.MustRegister(s.results, s.duration)
	}
	return s
}

// Refresh refetches every watched tournament. Each tournament is fetched with
// its participants and matches embedded, so one request refreshes the whole
// subtree. The first failure is returned after all fetches finish.
func (s *Syncer) Refresh(ctx context.Context) error {
	start := time.Now()
	defer func() { s.duration.Observe(time.Since(start).Seconds()) }()

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	errs := make([]error, len(s.watches))
	for i := range s.watches {
		i := i
		g.Go(func() error {
			errs[i] = s.refreshOne(gCtx, &s.watches[i])
			return nil
		})
	}
	_ = g.Wait()

	s.rounds.Inc()
	var first error
	for i, err := range errs {
		if err == nil {
			s.results.WithLabelValues("ok").Inc()
			continue
		}
		s.results.WithLabelValues("error").Inc()
		s.failures.Inc()
		s.logger.Warn("tournament refresh failed", zap.String("ref", s.watches[i].raw), zap.Error(err))
		if first == nil {
			first = err
		}
	}
	if first == nil {
		s.lastSync.Store(time.Now())
	}
	return first
}

// refreshOne resolves url references to an id on first success and refetches
// by id afterwards. Only one goroutine touches a given watch per round.
func (s *Syncer) refreshOne(ctx context.Context, w *watch) error {
	var (
		t   *challonge.Tournament
		err error
	)
	if w.id != 0 {
		t, err = s.account.GetTournament(ctx, w.id, challonge.Forced)
	} else {
		t, err = s.account.SearchTournament(ctx, w.url, w.subdomain, challonge.Forced)
	}
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("tournament %s: %w", w.raw, shared.ErrNotFound)
	}
	w.id = t.ID()
	s.logger.Debug("tournament refreshed",
		zap.String("ref", w.raw),
		zap.Int64("tournament_id", int64(t.ID())),
		zap.Int("participants", len(t.Participants())),
		zap.Int("matches", len(t.Matches())),
	)
	return nil
}

// Status summarizes the refresh history.
type Status struct {
	Watched  int        `json:"watched"`
	Rounds   int64      `json:"rounds"`
	Failures int64      `json:"failures"`
	LastSync *time.Time `json:"last_sync,omitempty"`
}

func (s *Syncer) Status() Status {
	st := Status{
		Watched:  len(s.watches),
		Rounds:   s.rounds.Load(),
		Failures: s.failures.Load(),
	}
	if last := s.lastSync.Load(); !last.IsZero() {
		st.LastSync = &last
	}
	return st
}
