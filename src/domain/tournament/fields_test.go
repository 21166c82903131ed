package tournament_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sandai/challonge/src/domain/shared"
	"github.com/sandai/challonge/src/domain/tournament"
)

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		wantErr bool
	}{
		{name: "empty", fields: map[string]any{}, wantErr: false},
		{name: "known fields", fields: map[string]any{"name": "Cup", "accept_attachments": true, "signup_cap": 16}, wantErr: false},
		{name: "server owned field", fields: map[string]any{"state": "complete"}, wantErr: true},
		{name: "typo", fields: map[string]any{"nmae": "Cup", "name": "Cup"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tournament.ValidateFields(tt.fields)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFields() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, shared.ErrUnknownField) {
				t.Errorf("Expected ErrUnknownField, got %v", err)
			}
		})
	}
}

func TestValidateFields_ListsAllUnknown(t *testing.T) {
	err := tournament.ValidateFields(map[string]any{"b": 1, "a": 2})
	if err == nil || !strings.Contains(err.Error(), "[a b]") {
		t.Errorf("Expected sorted unknown names in %v", err)
	}
}
