package testutils

import (
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

// FixedRoller is a dice.Roller that returns Face for every die, or loops
// through Faces when set.
type FixedRoller struct {
	Face  int
	Faces []int
	Err   error

	mu   sync.Mutex
	next int
}

var _ dice.Roller = (*FixedRoller)(nil)

// Roll returns the next configured face
func (r *FixedRoller) Roll(_ int) (int, error) {
	if r.Err != nil {
		return 0, r.Err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Faces) == 0 {
		return r.Face, nil
	}
	face := r.Faces[r.next%len(r.Faces)]
	r.next++
	return face, nil
}

// RollN rolls count dice
func (r *FixedRoller) RollN(count, size int) ([]int, error) {
	results := make([]int, count)
	for i := range results {
		face, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		results[i] = face
	}
	return results, nil
}
