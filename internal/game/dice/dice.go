// Package dice provides the randomness abstraction shared by the combat engine.
//
// Every random decision in a battle (crit rolls, flee rolls, AI choices and
// turn-order jitter) is drawn sequentially from a single Source so that a
// seeded Source replays a battle exactly.
package dice

// Source is the randomness provider for the combat engine.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// Chance draws once from src and reports whether the draw fell below p.
//
// Postcondition: returns false for p <= 0 and true for p >= 1, but always
// consumes exactly one draw so the sequence stays aligned.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}
