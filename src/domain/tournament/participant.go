package tournament

import (
	"time"

	"github.com/sandai/challonge/src/domain/shared"
)

// Participant is the mirrored state of a tournament participant. When the
// participant stands for a team, GroupPlayerIDs lists the raw player ids the
// remote service uses for it inside group-stage matches.
type Participant struct {
	ID                                 shared.ParticipantID   `json:"id"`
	TournamentID                       shared.TournamentID    `json:"tournament_id"`
	Name                               string                 `json:"name"`
	DisplayName                        string                 `json:"display_name"`
	DisplayNameWithInvitationEmail     string                 `json:"display_name_with_invitation_email_address"`
	Seed                               int                    `json:"seed"`
	FinalRank                          *int                   `json:"final_rank"`
	Active                             bool                   `json:"active"`
	CheckedIn                          bool                   `json:"checked_in"`
	CanCheckIn                         bool                   `json:"can_check_in"`
	OnWaitingList                      bool                   `json:"on_waiting_list"`
	Removable                          bool                   `json:"removable"`
	Reactivatable                      bool                   `json:"reactivatable"`
	ConfirmRemove                      bool                   `json:"confirm_remove"`
	InvitationPending                  bool                   `json:"invitation_pending"`
	ParticipatableOrInvitationAttached bool                   `json:"participatable_or_invitation_attached"`
	ChallongeEmailAddressVerified      *bool                  `json:"challonge_email_address_verified"`
	ChallongeUsername                  *string                `json:"challonge_username"`
	Username                           *string                `json:"username"`
	InviteEmail                        *string                `json:"invite_email"`
	EmailHash                          *string                `json:"email_hash"`
	Misc                               *string                `json:"misc"`
	Icon                               *string                `json:"icon"`
	AttachedParticipatablePortraitURL  *string                `json:"attached_participatable_portrait_url"`
	GroupID                            *int64                 `json:"group_id"`
	InvitationID                       *int64                 `json:"invitation_id"`
	GroupPlayerIDs                     []shared.ParticipantID `json:"group_player_ids"`
	CheckedInAt                        *time.Time             `json:"checked_in_at"`
	CreatedAt                          *time.Time             `json:"created_at"`
	UpdatedAt                          *time.Time             `json:"updated_at"`
}

// Owns reports whether a player id found in a match slot designates this
// participant, either directly or through one of its group player ids.
func (p Participant) Owns(playerID shared.ParticipantID) bool {
	if p.ID == playerID {
		return true
	}
	for _, id := range p.GroupPlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// Eliminated reports whether the participant has a final rank and therefore
// no further matches.
func (p Participant) Eliminated() bool {
	return p.FinalRank != nil
}
