package tournament

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sandai/challonge/src/domain/shared"
)

// State represents the tournament lifecycle as reported by the remote service.
type State string

const (
	StatePending        State = "pending"
	StateCheckingIn     State = "checking_in"
	StateCheckedIn      State = "checked_in"
	StateUnderway       State = "underway"
	StateAwaitingReview State = "awaiting_review"
	StateComplete       State = "complete"
)

// Type is the bracket format.
type Type string

const (
	TypeSingleElimination Type = "single elimination"
	TypeDoubleElimination Type = "double elimination"
	TypeRoundRobin        Type = "round robin"
	TypeSwiss             Type = "swiss"
)

// Valid reports whether t is a format the remote service accepts.
func (t Type) Valid() bool {
	switch t {
	case TypeSingleElimination, TypeDoubleElimination, TypeRoundRobin, TypeSwiss:
		return true
	}
	return false
}

// Points is a decimal configuration value. The remote service sends these
// either as JSON strings ("1.0") or numbers.
type Points string

func (p *Points) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Points(s)
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Points(f.String())
	return nil
}

// Float parses the value; empty points are zero.
func (p Points) Float() float64 {
	f, _ := strconv.ParseFloat(string(p), 64)
	return f
}

// Tournament is the mirrored state of a remote tournament.
type Tournament struct {
	ID                               shared.TournamentID `json:"id"`
	Name                             string              `json:"name"`
	URL                              string              `json:"url"`
	Subdomain                        *string             `json:"subdomain"`
	Description                      string              `json:"description"`
	DescriptionSource                string              `json:"description_source"`
	State                            State               `json:"state"`
	Type                             Type                `json:"tournament_type"`
	Category                         *string             `json:"category"`
	GameID                           *int64              `json:"game_id"`
	GameName                         *string             `json:"game_name"`
	FullChallongeURL                 string              `json:"full_challonge_url"`
	LiveImageURL                     string              `json:"live_image_url"`
	SignUpURL                        *string             `json:"sign_up_url"`
	ParticipantsCount                int                 `json:"participants_count"`
	SignupCap                        *int                `json:"signup_cap"`
	ProgressMeter                    int                 `json:"progress_meter"`
	SwissRounds                      int                 `json:"swiss_rounds"`
	RankedBy                         string              `json:"ranked_by"`
	TieBreaks                        []string            `json:"tie_breaks"`
	PredictionMethod                 int                 `json:"prediction_method"`
	MaxPredictionsPerUser            int                 `json:"max_predictions_per_user"`
	CheckInDuration                  *int                `json:"check_in_duration"`
	PtsForBye                        Points              `json:"pts_for_bye"`
	PtsForGameTie                    Points              `json:"pts_for_game_tie"`
	PtsForGameWin                    Points              `json:"pts_for_game_win"`
	PtsForMatchTie                   Points              `json:"pts_for_match_tie"`
	PtsForMatchWin                   Points              `json:"pts_for_match_win"`
	RRPtsForGameTie                  Points              `json:"rr_pts_for_game_tie"`
	RRPtsForGameWin                  Points              `json:"rr_pts_for_game_win"`
	RRPtsForMatchTie                 Points              `json:"rr_pts_for_match_tie"`
	RRPtsForMatchWin                 Points              `json:"rr_pts_for_match_win"`
	AcceptAttachments                bool                `json:"accept_attachments"`
	AcceptingPredictions             bool                `json:"accepting_predictions"`
	AllowParticipantMatchReporting   bool                `json:"allow_participant_match_reporting"`
	AnonymousVoting                  bool                `json:"anonymous_voting"`
	CreatedByAPI                     bool                `json:"created_by_api"`
	CreditCapped                     bool                `json:"credit_capped"`
	GroupStagesEnabled               bool                `json:"group_stages_enabled"`
	GroupStagesWereStarted           bool                `json:"group_stages_were_started"`
	HideForum                        bool                `json:"hide_forum"`
	HideSeeds                        bool                `json:"hide_seeds"`
	HoldThirdPlaceMatch              bool                `json:"hold_third_place_match"`
	NotifyUsersWhenMatchesOpen       bool                `json:"notify_users_when_matches_open"`
	NotifyUsersWhenTheTournamentEnds bool                `json:"notify_users_when_the_tournament_ends"`
	OpenSignup                       bool                `json:"open_signup"`
	ParticipantsLocked               bool                `json:"participants_locked"`
	ParticipantsSwappable            bool                `json:"participants_swappable"`
	Private                          bool                `json:"private"`
	QuickAdvance                     bool                `json:"quick_advance"`
	RequireScoreAgreement            bool                `json:"require_score_agreement"`
	ReviewBeforeFinalizing           bool                `json:"review_before_finalizing"`
	SequentialPairings               bool                `json:"sequential_pairings"`
	ShowRounds                       bool                `json:"show_rounds"`
	TeamConvertable                  bool                `json:"team_convertable"`
	Teams                            bool                `json:"teams"`
	CreatedAt                        *time.Time          `json:"created_at"`
	UpdatedAt                        *time.Time          `json:"updated_at"`
	StartAt                          *time.Time          `json:"start_at"`
	StartedAt                        *time.Time          `json:"started_at"`
	StartedCheckingInAt              *time.Time          `json:"started_checking_in_at"`
	CompletedAt                      *time.Time          `json:"completed_at"`
	PredictionsOpenedAt              *time.Time          `json:"predictions_opened_at"`

	// Nested batches, nil when the response did not include them.
	Participants []Participant `json:"-"`
	Matches      []Match       `json:"-"`
}

// Key identifies the tournament by its secondary (url, subdomain) index, the
// same form the remote service accepts in place of an id.
func (t Tournament) Key() string {
	return Key(t.URL, deref(t.Subdomain))
}

// Key builds the path key for a tournament url hosted under an optional subdomain.
func Key(url, subdomain string) string {
	if subdomain == "" {
		return url
	}
	return subdomain + "-" + url
}

// Is reports whether the record is the tournament at (url, subdomain).
func (t Tournament) Is(url, subdomain string) bool {
	return t.URL == url && deref(t.Subdomain) == subdomain
}

// Complete reports whether final ranks are settled.
func (t Tournament) Complete() bool {
	return t.State == StateComplete
}

// Started reports whether matches have been generated.
func (t Tournament) Started() bool {
	switch t.State {
	case StateUnderway, StateAwaitingReview, StateComplete:
		return true
	}
	return false
}

var transitions = map[State][]State{
	StatePending:        {StateCheckingIn, StateUnderway},
	StateCheckingIn:     {StateCheckedIn, StatePending},
	StateCheckedIn:      {StatePending, StateUnderway},
	StateUnderway:       {StatePending, StateAwaitingReview, StateComplete},
	StateAwaitingReview: {StatePending, StateComplete},
	StateComplete:       {StatePending},
}

// CanTransition reports whether the lifecycle allows moving from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
