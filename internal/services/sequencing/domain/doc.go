// Package domain implements the invitation sequencing engine: a fixed roster
// of outreach participants, a status state machine with two transition
// policies, a dependency cascade, and an append-only automation event log.
//
// # Transition policies
//
// Status changes enter through exactly two operations. SetStatus is the
// manual, unchecked policy: an operator may move any participant to any
// status, and the change is recorded as one status_changed event. It never
// unlocks downstream participants. ClassifyResponse is the checked policy:
// it accepts only the classifications of a verified external response and is
// the single path that can trigger the dependency cascade. Keeping manual
// confirmations out of the cascade is deliberate: only responses that
// actually arrived are trusted to start dependent outreach.
//
// # Cascade
//
// When a classified response confirms a participant, the engine scans the
// roster for participants that list the confirmed one as a dependency, are
// still not_started, and now have every dependency confirmed. Each such
// participant gets one dependency_unlocked event flagged for operator
// action. The participant's own status is never advanced automatically.
//
// # Consistency
//
// All mutations are serialized behind the service mutex and committed as one
// atomic change set, so a cascade scan always observes the confirmation that
// triggered it. The event log is append-only: records are never deleted, and
// the only permitted mutation is clearing the requires-action flag on
// dismissal.
package domain
