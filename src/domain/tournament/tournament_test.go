package tournament_test

import (
	"encoding/json"
	"testing"

	"github.com/sandai/challonge/src/domain/tournament"
)

func TestPoints_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    tournament.Points
		wantErr bool
	}{
		{name: "string", input: `"1.5"`, want: "1.5"},
		{name: "number", input: `2`, want: "2"},
		{name: "decimal number", input: `0.5`, want: "0.5"},
		{name: "null", input: `null`, want: ""},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p tournament.Points
			err := json.Unmarshal([]byte(tt.input), &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && p != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, p)
			}
		})
	}

	if tournament.Points("1.5").Float() != 1.5 {
		t.Error("Expected Float() to parse 1.5")
	}
	if tournament.Points("").Float() != 0 {
		t.Error("Expected empty points to be zero")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from tournament.State
		to   tournament.State
		want bool
	}{
		{tournament.StatePending, tournament.StateUnderway, true},
		{tournament.StatePending, tournament.StateCheckingIn, true},
		{tournament.StateCheckingIn, tournament.StateCheckedIn, true},
		{tournament.StateCheckingIn, tournament.StatePending, true},
		{tournament.StateCheckedIn, tournament.StatePending, true},
		{tournament.StateUnderway, tournament.StatePending, true},
		{tournament.StateUnderway, tournament.StateComplete, true},
		{tournament.StateComplete, tournament.StatePending, true},
		{tournament.StatePending, tournament.StateComplete, false},
		{tournament.StateComplete, tournament.StateUnderway, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tournament.CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTournament_Key(t *testing.T) {
	sub := "league"
	tests := []struct {
		name string
		rec  tournament.Tournament
		want string
	}{
		{name: "no subdomain", rec: tournament.Tournament{URL: "cup"}, want: "cup"},
		{name: "with subdomain", rec: tournament.Tournament{URL: "cup", Subdomain: &sub}, want: "league-cup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}

	rec := tournament.Tournament{URL: "cup", Subdomain: &sub}
	if !rec.Is("cup", "league") {
		t.Error("Expected Is to match url and subdomain")
	}
	if rec.Is("cup", "") {
		t.Error("Expected Is to require the subdomain")
	}
}

func TestTournament_StateHelpers(t *testing.T) {
	rec := tournament.Tournament{State: tournament.StatePending}
	if rec.Started() || rec.Complete() {
		t.Error("Expected pending tournament to be neither started nor complete")
	}
	rec.State = tournament.StateUnderway
	if !rec.Started() {
		t.Error("Expected underway tournament to be started")
	}
	rec.State = tournament.StateComplete
	if !rec.Complete() || !rec.Started() {
		t.Error("Expected complete tournament to be started and complete")
	}
}

func TestType_Valid(t *testing.T) {
	if !tournament.TypeSwiss.Valid() {
		t.Error("Expected swiss to be valid")
	}
	if tournament.Type("ladder").Valid() {
		t.Error("Expected ladder to be invalid")
	}
}
