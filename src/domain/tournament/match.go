package tournament

import (
	"time"

	"github.com/sandai/challonge/src/domain/shared"
)

// MatchState is the state of a single match.
type MatchState string

const (
	MatchAll      MatchState = "all"
	MatchPending  MatchState = "pending"
	MatchOpen     MatchState = "open"
	MatchComplete MatchState = "complete"
)

// TieMarker is sent in place of a winner id to report a tie.
const TieMarker = "tie"

// Match is the mirrored state of a remote match. Player slot ids hold either
// participant ids or group player ids. Round is negative in a losers bracket.
type Match struct {
	ID                        shared.MatchID        `json:"id"`
	TournamentID              shared.TournamentID   `json:"tournament_id"`
	Identifier                string                `json:"identifier"`
	Round                     int                   `json:"round"`
	State                     MatchState            `json:"state"`
	Player1ID                 *shared.ParticipantID `json:"player1_id"`
	Player2ID                 *shared.ParticipantID `json:"player2_id"`
	WinnerID                  *shared.ParticipantID `json:"winner_id"`
	LoserID                   *shared.ParticipantID `json:"loser_id"`
	Player1Votes              *int                  `json:"player1_votes"`
	Player2Votes              *int                  `json:"player2_votes"`
	Player1PrereqMatchID      *shared.MatchID       `json:"player1_prereq_match_id"`
	Player2PrereqMatchID      *shared.MatchID       `json:"player2_prereq_match_id"`
	Player1IsPrereqMatchLoser bool                  `json:"player1_is_prereq_match_loser"`
	Player2IsPrereqMatchLoser bool                  `json:"player2_is_prereq_match_loser"`
	PrerequisiteMatchIDsCSV   string                `json:"prerequisite_match_ids_csv"`
	ScoresCSV                 string                `json:"scores_csv"`
	GroupID                   *int64                `json:"group_id"`
	Location                  *string               `json:"location"`
	HasAttachment             bool                  `json:"has_attachment"`
	AttachmentCount           *int                  `json:"attachment_count"`
	ScheduledTime             *time.Time            `json:"scheduled_time"`
	StartedAt                 *time.Time            `json:"started_at"`
	UnderwayAt                *time.Time            `json:"underway_at"`
	CreatedAt                 *time.Time            `json:"created_at"`
	UpdatedAt                 *time.Time            `json:"updated_at"`

	// Nested attachments, nil when the response did not include them.
	Attachments []Attachment `json:"-"`
}

// Slots returns the two player slot ids; a nil slot is still undecided.
func (m Match) Slots() [2]*shared.ParticipantID {
	return [2]*shared.ParticipantID{m.Player1ID, m.Player2ID}
}

// Involves reports whether p occupies one of the slots.
func (m Match) Involves(p Participant) bool {
	for _, slot := range m.Slots() {
		if slot != nil && p.Owns(*slot) {
			return true
		}
	}
	return false
}

// OpponentSlot returns the id in the slot p does not occupy. It reports false
// when p is not in the match or the other slot is still undecided.
func (m Match) OpponentSlot(p Participant) (shared.ParticipantID, bool) {
	switch {
	case m.Player1ID != nil && p.Owns(*m.Player1ID):
		if m.Player2ID == nil {
			return 0, false
		}
		return *m.Player2ID, true
	case m.Player2ID != nil && p.Owns(*m.Player2ID):
		if m.Player1ID == nil {
			return 0, false
		}
		return *m.Player1ID, true
	}
	return 0, false
}

// Votes returns the vote counts, treating unset counts as zero.
func (m Match) Votes() (int, int) {
	var v1, v2 int
	if m.Player1Votes != nil {
		v1 = *m.Player1Votes
	}
	if m.Player2Votes != nil {
		v2 = *m.Player2Votes
	}
	return v1, v2
}
