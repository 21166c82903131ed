package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sandai/challonge/src/app/challonge"
	"github.com/sandai/challonge/src/domain/shared"
	"github.com/sandai/challonge/src/domain/tournament"
)

type TournamentSummary struct {
	ID                shared.TournamentID `json:"id"`
	Name              string              `json:"name"`
	URL               string              `json:"url"`
	State             tournament.State    `json:"state"`
	Type              tournament.Type     `json:"tournament_type"`
	ParticipantsCount int                 `json:"participants_count"`
}

type TournamentResponse struct {
	tournament.Tournament
	Participants []tournament.Participant `json:"participants"`
	Matches      []tournament.Match       `json:"matches"`
}

type RankingEntry struct {
	Rank         int      `json:"rank"`
	Participants []string `json:"participants"`
}

type RankingResponse struct {
	TournamentID shared.TournamentID `json:"tournament_id"`
	Complete     bool                `json:"complete"`
	Ranking      []RankingEntry      `json:"ranking"`
}

type NextMatchResponse struct {
	Participant string                  `json:"participant"`
	Match       *tournament.Match       `json:"match"`
	Opponent    *tournament.Participant `json:"opponent"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var status Status
	if s.cfg.Syncer != nil {
		status = s.cfg.Syncer.Status()
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListTournaments(w http.ResponseWriter, r *http.Request) {
	cached := s.cfg.Account.Tournaments()
	out := make([]TournamentSummary, 0, len(cached))
	for _, t := range cached {
		rec := t.Record()
		out = append(out, TournamentSummary{
			ID:                rec.ID,
			Name:              rec.Name,
			URL:               rec.URL,
			State:             rec.State,
			Type:              rec.Type,
			ParticipantsCount: rec.ParticipantsCount,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tournament(w, r)
	if !ok {
		return
	}
	resp := TournamentResponse{
		Tournament:   t.Record(),
		Participants: make([]tournament.Participant, 0),
		Matches:      make([]tournament.Match, 0),
	}
	for _, p := range t.Participants() {
		resp.Participants = append(resp.Participants, p.Record())
	}
	for _, m := range t.Matches() {
		resp.Matches = append(resp.Matches, m.Record())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tournament(w, r)
	if !ok {
		return
	}
	groups, err := t.GetFinalRanking(r.Context(), challonge.Cached)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	resp := RankingResponse{
		TournamentID: t.ID(),
		Complete:     t.Record().Complete(),
		Ranking:      make([]RankingEntry, 0, len(groups)),
	}
	for _, g := range groups {
		entry := RankingEntry{Rank: g.Rank}
		for _, p := range g.Members {
			entry.Participants = append(entry.Participants, p.Name())
		}
		resp.Ranking = append(resp.Ranking, entry)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNextMatch(w http.ResponseWriter, r *http.Request) {
	t, ok := s.tournament(w, r)
	if !ok {
		return
	}
	pid, err := strconv.ParseInt(mux.Vars(r)["pid"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := t.GetParticipant(r.Context(), shared.ParticipantID(pid), challonge.Cached)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if p == nil {
		s.writeFailure(w, fmt.Errorf("participant %d: %w", pid, shared.ErrNotFound))
		return
	}

	resp := NextMatchResponse{Participant: p.Name()}
	match, err := p.GetNextMatch(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if match == nil {
		s.writeJSON(w, http.StatusOK, resp)
		return
	}
	rec := match.Record()
	resp.Match = &rec

	opponent, err := p.OpponentIn(r.Context(), match)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if opponent != nil {
		opp := opponent.Record()
		resp.Opponent = &opp
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// tournament resolves the {id} route variable against the cache, fetching the
// tournament on a miss.
func (s *Server) tournament(w http.ResponseWriter, r *http.Request) (*challonge.Tournament, bool) {
	raw, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	id := shared.TournamentID(raw)
	if err := id.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	t, err := s.cfg.Account.GetTournament(r.Context(), id, challonge.Cached)
	if err != nil {
		s.writeFailure(w, err)
		return nil, false
	}
	if t == nil {
		s.writeFailure(w, fmt.Errorf("tournament %d: %w", id, shared.ErrNotFound))
		return nil, false
	}
	return t, true
}
