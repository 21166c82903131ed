package tournament

import (
	"fmt"
	"regexp"

	"github.com/sandai/challonge/src/domain/shared"
)

// Per-game scores with player 1 first: "2-0,1-2,2-1".
var scoresPattern = regexp.MustCompile(`^\d+-\d+(,\d+-\d+)*$`)

// ValidateScores checks a comma-separated score string.
func ValidateScores(csv string) error {
	if !scoresPattern.MatchString(csv) {
		return fmt.Errorf("%w: %q", shared.ErrBadScoreFormat, csv)
	}
	return nil
}
