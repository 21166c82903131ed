package tournament_test

import (
	"testing"

	"github.com/sandai/challonge/src/domain/tournament"
)

func TestRank(t *testing.T) {
	rank := func(r int) *int { return &r }
	ps := []tournament.Participant{
		{ID: 4, Name: "d", FinalRank: rank(4)},
		{ID: 2, Name: "b", FinalRank: rank(2)},
		{ID: 1, Name: "a", FinalRank: rank(1)},
		{ID: 3, Name: "c", FinalRank: rank(2)},
		{ID: 5, Name: "e"},
	}

	groups := tournament.Rank(ps, func(p tournament.Participant) *int { return p.FinalRank })

	want := []struct {
		rank  int
		names []string
	}{
		{1, []string{"a"}},
		{2, []string{"b", "c"}},
		{4, []string{"d"}},
	}
	if len(groups) != len(want) {
		t.Fatalf("Expected %d groups, got %d", len(want), len(groups))
	}
	for i, w := range want {
		if groups[i].Rank != w.rank {
			t.Errorf("group %d: expected rank %d, got %d", i, w.rank, groups[i].Rank)
		}
		if len(groups[i].Members) != len(w.names) {
			t.Fatalf("group %d: expected %d members, got %d", i, len(w.names), len(groups[i].Members))
		}
		for j, name := range w.names {
			if groups[i].Members[j].Name != name {
				t.Errorf("group %d member %d: expected %s, got %s", i, j, name, groups[i].Members[j].Name)
			}
		}
	}
}

func TestRank_Empty(t *testing.T) {
	groups := tournament.Rank([]tournament.Participant{{ID: 1}}, func(p tournament.Participant) *int { return p.FinalRank })
	if len(groups) != 0 {
		t.Errorf("Expected no groups, got %d", len(groups))
	}
}
