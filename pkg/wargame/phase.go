// Package wargame is the turn-resolution engine: domain resolvers,
// order intake, and the phase orchestrator. It is Store-coupled (every
// resolver loads and saves through an internal/store.Store) so, unlike
// a dependency-free rules library, it operates directly on
// internal/model row types rather than a parallel type family.
package wargame

// Phase is one step of the fixed per-turn sequence.
type Phase string

const (
	PhaseBeginning         Phase = "BEGINNING"
	PhaseResourceTransfer  Phase = "RESOURCE_TRANSFER"
	PhaseResourceCollect   Phase = "RESOURCE_COLLECTION"
	PhaseMovement          Phase = "MOVEMENT"
	PhaseNavalMovement     Phase = "NAVAL_MOVEMENT"
	PhaseEncirclement      Phase = "ENCIRCLEMENT"
	PhaseCombat            Phase = "COMBAT"
	PhaseNavalCombat       Phase = "NAVAL_COMBAT"
	PhaseOrganization      Phase = "ORGANIZATION"
	PhaseConstruction      Phase = "CONSTRUCTION"
	PhaseVictory           Phase = "VICTORY"
)

// Phases is the fixed turn sequence, in order.
var Phases = []Phase{
	PhaseBeginning,
	PhaseResourceTransfer,
	PhaseResourceCollect,
	PhaseMovement,
	PhaseNavalMovement,
	PhaseEncirclement,
	PhaseCombat,
	PhaseNavalCombat,
	PhaseOrganization,
	PhaseConstruction,
	PhaseVictory,
}
