package tournament

import (
	"fmt"
	"sort"

	"github.com/sandai/challonge/src/domain/shared"
)

// Fields the remote service lets a client set on an existing tournament.
var updatableFields = map[string]struct{}{
	"name":                                  {},
	"tournament_type":                       {},
	"url":                                   {},
	"subdomain":                             {},
	"description":                           {},
	"open_signup":                           {},
	"hold_third_place_match":                {},
	"pts_for_match_win":                     {},
	"pts_for_match_tie":                     {},
	"pts_for_game_win":                      {},
	"pts_for_game_tie":                      {},
	"pts_for_bye":                           {},
	"swiss_rounds":                          {},
	"ranked_by":                             {},
	"rr_pts_for_match_win":                  {},
	"rr_pts_for_match_tie":                  {},
	"rr_pts_for_game_win":                   {},
	"rr_pts_for_game_tie":                   {},
	"accept_attachments":                    {},
	"hide_forum":                            {},
	"show_rounds":                           {},
	"private":                               {},
	"notify_users_when_matches_open":        {},
	"notify_users_when_the_tournament_ends": {},
	"sequential_pairings":                   {},
	"signup_cap":                            {},
	"start_at":                              {},
	"check_in_duration":                     {},
	"grand_finals_modifier":                 {},
	"game_name":                             {},
	"quick_advance":                         {},
}

// ValidateFields rejects any field name outside the updatable set.
func ValidateFields(fields map[string]any) error {
	var unknown []string
	for name := range fields {
		if _, ok := updatableFields[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %v", shared.ErrUnknownField, unknown)
	}
	return nil
}
