package combat

import "fmt"

// ValidateReaction validates a reaction before it is resolved.
// Returns error if validation fails (reaction should not proceed).
//
// Checks:
//   - Attacker, defender and skill exist
//   - Attacker alive
//   - Defender alive
//   - Consecutive index inside the sequence
//   - Guard is not the attacker
func ValidateReaction(r Reaction) error {
	// 1. Participants exist
	if r.Attacker == nil || r.Defender == nil {
		return fmt.Errorf("reaction without attacker or defender")
	}
	if r.Skill == nil {
		return fmt.Errorf("reaction of %s without skill", r.Attacker.ID)
	}

	// 2. Attacker alive
	if r.Attacker.IsDead() {
		return fmt.Errorf("attacker %s is dead", r.Attacker.ID)
	}

	// 3. Defender alive
	if r.Defender.IsDead() {
		return fmt.Errorf("defender %s is dead", r.Defender.ID)
	}

	// 4. Sequence bounds
	if s := r.Skill; s.IsConsecutive() && (s.ConsecutiveIndex < 0 || s.ConsecutiveIndex >= s.ConsecutiveCount) {
		return fmt.Errorf("skill %s: consecutive index %d out of [0, %d)", s.ID, s.ConsecutiveIndex, s.ConsecutiveCount)
	}

	// 5. Guard belongs to the defending side
	if r.Guard != nil && r.Guard == r.Attacker {
		return fmt.Errorf("attacker %s cannot guard its own target", r.Attacker.ID)
	}

	return nil
}
