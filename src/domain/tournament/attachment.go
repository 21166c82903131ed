package tournament

import (
	"time"

	"github.com/sandai/challonge/src/domain/shared"
)

// Attachment is the mirrored state of a match attachment.
type Attachment struct {
	ID               shared.AttachmentID `json:"id"`
	MatchID          shared.MatchID      `json:"match_id"`
	UserID           *int64              `json:"user_id"`
	Description      *string             `json:"description"`
	URL              *string             `json:"url"`
	OriginalFileName *string             `json:"original_file_name"`
	AssetFileName    *string             `json:"asset_file_name"`
	AssetContentType *string             `json:"asset_content_type"`
	AssetFileSize    *int64              `json:"asset_file_size"`
	AssetURL         *string             `json:"asset_url"`
	CreatedAt        *time.Time          `json:"created_at"`
	UpdatedAt        *time.Time          `json:"updated_at"`
}
