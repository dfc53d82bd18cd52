package domain

import (
	"sort"
	"strings"

	apperrors "sequent.dev/internal/platform/errors"
)

// DepsMet reports whether every dependency of p has status confirmed.
// A participant with no dependencies is always unblocked, regardless of its
// own status. Dependencies that do not resolve in the index count as unmet;
// seeded rosters never contain them.
func DepsMet(byID map[string]Participant, p Participant) bool {
	for _, dep := range p.Dependencies {
		other, ok := byID[dep]
		if !ok || other.Status != StatusConfirmed {
			return false
		}
	}
	return true
}

// IndexByID builds an id lookup for dependency checks.
func IndexByID(participants []Participant) map[string]Participant {
	byID := make(map[string]Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}
	return byID
}

// ValidateGraph checks the roster's dependency edges: every referenced id
// must exist, no participant may depend on itself, and the graph must be
// acyclic. Cycles are rejected here because a cycle leaves its members
// permanently locked with no operator remedy; the error names one cycle.
func ValidateGraph(participants []Participant) error {
	byID := make(map[string]Participant, len(participants))
	for _, p := range participants {
		if _, exists := byID[p.ID]; exists {
			return apperrors.WithMetadata(apperrors.CodeParticipantDuplicateID, "duplicate participant id "+p.ID, map[string]string{"participant_id": p.ID})
		}
		byID[p.ID] = p
	}

	for _, p := range participants {
		for _, dep := range p.Dependencies {
			if dep == p.ID {
				return apperrors.WithMetadata(apperrors.CodeDependencySelfReference, "participant "+p.ID+" depends on itself", map[string]string{"participant_id": p.ID})
			}
			if _, ok := byID[dep]; !ok {
				return apperrors.WithMetadata(apperrors.CodeDependencyUnknownParticipant, "participant "+p.ID+" depends on unknown id "+dep, map[string]string{
					"participant_id": p.ID,
					"dependency_id":  dep,
				})
			}
		}
	}

	if cycle := findCycle(participants); len(cycle) > 0 {
		return apperrors.WithMetadata(apperrors.CodeDependencyCycle, "dependency cycle: "+strings.Join(cycle, " -> "), map[string]string{"cycle": strings.Join(cycle, " -> ")})
	}
	return nil
}

// findCycle runs Kahn's algorithm over dependency edges and, when nodes
// remain unresolved, walks them depth-first to extract one deterministic
// cycle path for the error message.
func findCycle(participants []Participant) []string {
	// Edge dep -> p: p becomes ready once all deps resolved.
	indegree := make(map[string]int, len(participants))
	dependents := make(map[string][]string, len(participants))
	for _, p := range participants {
		indegree[p.ID] += 0
		for _, dep := range p.Dependencies {
			indegree[p.ID]++
			dependents[dep] = append(dependents[dep], p.ID)
		}
	}

	queue := make([]string, 0, len(participants))
	for _, p := range participants {
		if indegree[p.ID] == 0 {
			queue = append(queue, p.ID)
		}
	}
	sort.Strings(queue)

	resolved := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		resolved++
		next := append([]string(nil), dependents[id]...)
		sort.Strings(next)
		for _, dependent := range next {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}
	if resolved == len(participants) {
		return nil
	}

	// Some nodes never resolved: a cycle exists among nodes with positive
	// indegree. Walk dependency edges from the smallest stuck id until a
	// node repeats.
	stuck := make([]string, 0)
	byID := IndexByID(participants)
	for _, p := range participants {
		if indegree[p.ID] > 0 {
			stuck = append(stuck, p.ID)
		}
	}
	sort.Strings(stuck)
	if len(stuck) == 0 {
		return nil
	}

	seen := map[string]int{}
	path := []string{}
	current := stuck[0]
	for {
		if at, ok := seen[current]; ok {
			cycle := append([]string(nil), path[at:]...)
			return append(cycle, current)
		}
		seen[current] = len(path)
		path = append(path, current)

		// Follow the first dependency that is itself stuck in the cycle.
		next := ""
		for _, dep := range byID[current].Dependencies {
			if indegree[dep] > 0 {
				next = dep
				break
			}
		}
		if next == "" {
			return nil
		}
		current = next
	}
}
