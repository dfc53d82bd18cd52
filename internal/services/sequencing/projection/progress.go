// Package projection derives read-only views from roster snapshots: phase
// progress counts and the confirmed-name roster fed to draft generation.
// Nothing here mutates state; callers pass the participant slice they
// already hold.
package projection

import (
	"sequent.dev/internal/services/sequencing/domain"
)

// PhaseProgress summarizes one phase group of the roster.
type PhaseProgress struct {
	Phase     string
	Total     int
	Confirmed int
	Sent      int
	Declined  int
}

// FillPercent is the confirmed share of the phase, 0 to 100.
func (p PhaseProgress) FillPercent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Confirmed) * 100 / float64(p.Total)
}

// ProgressByPhase groups the roster by phase in first-seen seed order.
// Sent counts participants whose status is exactly sent; follow-up sends are
// a separate stage of the workflow and are not folded in.
func ProgressByPhase(roster []domain.Participant) []PhaseProgress {
	index := make(map[string]int, len(roster))
	progress := make([]PhaseProgress, 0)
	for _, participant := range roster {
		at, ok := index[participant.Phase]
		if !ok {
			at = len(progress)
			index[participant.Phase] = at
			progress = append(progress, PhaseProgress{Phase: participant.Phase})
		}
		progress[at].Total++
		switch participant.Status {
		case domain.StatusConfirmed:
			progress[at].Confirmed++
		case domain.StatusSent:
			progress[at].Sent++
		case domain.StatusDeclined:
			progress[at].Declined++
		}
	}
	return progress
}

// PhaseFor returns the progress row for a single phase. A phase with no
// participants yields a zero row carrying the requested phase name.
func PhaseFor(roster []domain.Participant, phase string) PhaseProgress {
	for _, row := range ProgressByPhase(roster) {
		if row.Phase == phase {
			return row
		}
	}
	return PhaseProgress{Phase: phase}
}
