package tournament

import (
	"fmt"

	"github.com/sandai/challonge/src/domain/shared"
)

var (
	ErrParticipantIdentity = fmt.Errorf("%w: exactly one of display name or username is required", shared.ErrInvalidInput)
	ErrAttachmentContent   = fmt.Errorf("%w: one of asset, url or description is required", shared.ErrInvalidInput)
	ErrNoVotes             = fmt.Errorf("%w: at least one vote count is required", shared.ErrMissingArgument)
	ErrInvalidType         = fmt.Errorf("%w: unknown tournament type", shared.ErrInvalidInput)
	ErrNameRequired        = fmt.Errorf("%w: tournament name is required", shared.ErrInvalidInput)
)
