package projection

import (
	"testing"

	"sequent.dev/internal/services/sequencing/domain"
)

func TestProgressByPhase_GroupsInSeedOrder(t *testing.T) {
	t.Parallel()

	roster := []domain.Participant{
		{ID: "a", Phase: "keynote", Status: domain.StatusConfirmed},
		{ID: "b", Phase: "panel", Status: domain.StatusSent},
		{ID: "c", Phase: "keynote", Status: domain.StatusDeclined},
		{ID: "d", Phase: "keynote", Status: domain.StatusSent},
		{ID: "e", Phase: "panel", Status: domain.StatusNotStarted},
		{ID: "f", Phase: "keynote", Status: domain.StatusFollowUpSent},
	}

	progress := ProgressByPhase(roster)
	if len(progress) != 2 {
		t.Fatalf("phases = %d, want 2", len(progress))
	}
	keynote := progress[0]
	if keynote.Phase != "keynote" {
		t.Fatalf("first phase = %q, want keynote (seed order)", keynote.Phase)
	}
	if keynote.Total != 4 || keynote.Confirmed != 1 || keynote.Sent != 1 || keynote.Declined != 1 {
		t.Fatalf("keynote = %+v, want total 4, confirmed 1, sent 1, declined 1", keynote)
	}

	panel := progress[1]
	if panel.Total != 2 || panel.Sent != 1 || panel.Confirmed != 0 {
		t.Fatalf("panel = %+v, want total 2, sent 1", panel)
	}
}

func TestProgressByPhase_FollowUpSentIsNotSent(t *testing.T) {
	t.Parallel()

	progress := ProgressByPhase([]domain.Participant{
		{ID: "a", Phase: "keynote", Status: domain.StatusFollowUpSent},
	})
	if progress[0].Sent != 0 {
		t.Fatalf("follow_up_sent counted as sent: %+v", progress[0])
	}
}

func TestPhaseProgress_FillPercent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		row  PhaseProgress
		want float64
	}{
		{"empty phase", PhaseProgress{}, 0},
		{"half confirmed", PhaseProgress{Total: 4, Confirmed: 2}, 50},
		{"full", PhaseProgress{Total: 3, Confirmed: 3}, 100},
		{"third", PhaseProgress{Total: 3, Confirmed: 1}, 100.0 / 3},
	}
	for _, tc := range cases {
		if got := tc.row.FillPercent(); got != tc.want {
			t.Fatalf("%s: FillPercent = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPhaseFor_UnknownPhaseYieldsZeroRow(t *testing.T) {
	t.Parallel()

	row := PhaseFor([]domain.Participant{{ID: "a", Phase: "keynote"}}, "workshop")
	if row.Phase != "workshop" || row.Total != 0 {
		t.Fatalf("row = %+v, want empty workshop row", row)
	}
}
