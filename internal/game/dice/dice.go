// Package dice provides the randomness abstraction and d10 pool rolling used by
// the combat tracker.
package dice

import "fmt"

// Sides is the number of faces on every die in a pool.
const Sides = 10

// PoolResult holds the full audit trail for a single die pool.
//
// Invariant: Successes >= 0, Botches >= 0, len(Dice) == Botches + (dice that are not 1).
type PoolResult struct {
	Dice      []int // individual die faces in roll order
	Successes int   // 7, 8, 9 count once; 10 counts twice
	Botches   int   // number of 1s
}

// Total returns the signed pool result: the success count when positive,
// otherwise the negated botch count.
//
// Postcondition: -len(r.Dice) <= Total() <= 2*len(r.Dice).
func (r PoolResult) Total() int {
	if r.Successes > 0 {
		return r.Successes
	}
	return -r.Botches
}

// Botched reports whether the pool produced no successes and at least one 1.
func (r PoolResult) Botched() bool {
	return r.Successes == 0 && r.Botches > 0
}

// String returns a human-readable audit string such as "5d10 → [10 7 1 3 4] = 3".
func (r PoolResult) String() string {
	return fmt.Sprintf("%dd%d → %v = %d", len(r.Dice), Sides, r.Dice, r.Total())
}

// faceValue returns the successes contributed by one die face.
func faceValue(face int) int {
	switch {
	case face == 10:
		return 2
	case face >= 7:
		return 1
	default:
		return 0
	}
}

// RollPool rolls count ten-sided dice from src.
//
// Precondition: src must be non-nil.
// Postcondition: len(result.Dice) == max(count, 0); a non-positive count rolls
// nothing and totals 0.
func RollPool(count int, src Source) PoolResult {
	if count < 0 {
		count = 0
	}
	result := PoolResult{Dice: make([]int, count)}
	for i := range result.Dice {
		face := src.Intn(Sides) + 1
		result.Dice[i] = face
		if face == 1 {
			result.Botches++
			continue
		}
		result.Successes += faceValue(face)
	}
	return result
}
