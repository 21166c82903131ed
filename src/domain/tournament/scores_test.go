package tournament_test

import (
	"errors"
	"testing"

	"github.com/sandai/challonge/src/domain/shared"
	"github.com/sandai/challonge/src/domain/tournament"
)

func TestValidateScores(t *testing.T) {
	tests := []struct {
		scores  string
		wantErr bool
	}{
		{scores: "2-0,1-2,2-1", wantErr: false},
		{scores: "1-0", wantErr: false},
		{scores: "10-12", wantErr: false},
		{scores: "2-0,", wantErr: true},
		{scores: "a-b", wantErr: true},
		{scores: "", wantErr: true},
		{scores: "2-0 ,1-2", wantErr: true},
		{scores: "2-0,1-2x", wantErr: true},
		{scores: "-1-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.scores, func(t *testing.T) {
			err := tournament.ValidateScores(tt.scores)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateScores(%q) error = %v, wantErr %v", tt.scores, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrBadScoreFormat) {
				t.Errorf("Expected ErrBadScoreFormat, got %v", err)
			}
		})
	}
}
