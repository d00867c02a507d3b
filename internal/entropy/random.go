// Package entropy provides the seeded deterministic random stream shared by
// every component of one simulation instance. Same seed + same call sequence
// gives a bit-identical sequence of draws across runs.
// See design doc Section 5 (entropy.Stream).
package entropy

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"

	"golang.org/x/exp/rand"
)

// ErrEmptyInput is returned by selection helpers called on an empty collection.
var ErrEmptyInput = errors.New("entropy: selection from empty input")

// Stream is a deterministic pseudo-random generator. A Model owns exactly one
// Stream; agents and cells reach randomness only through it, never through a
// process-wide source.
type Stream struct {
	*rand.Rand
}

// New creates a Stream seeded with the given value.
func New(seed uint64) *Stream {
	return &Stream{Rand: rand.New(rand.NewSource(seed))}
}

// Seed reinitializes the stream, discarding all prior state.
func (s *Stream) Seed(seed uint64) {
	s.Rand = rand.New(rand.NewSource(seed))
}

// PTrue returns true with probability p.
func (s *Stream) PTrue(p float64) bool {
	return s.Float64() < p
}

// DiscreteDistribution draws an index according to the given weights.
func (s *Stream) DiscreteDistribution(weights []float64) (int, error) {
	if len(weights) == 0 {
		return 0, ErrEmptyInput
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := s.Float64() * total
	sum := 0.0
	for i, w := range weights {
		sum += w
		if sum > r {
			return i, nil
		}
	}
	// Floating-point slack: the accumulated sum can land slightly under r.
	return len(weights) - 1, nil
}

// Choice returns one uniformly selected element.
func Choice[T any](s *Stream, xs []T) (T, error) {
	var zero T
	if len(xs) == 0 {
		return zero, ErrEmptyInput
	}
	return xs[s.Intn(len(xs))], nil
}

// Choices returns k independent uniform-with-replacement selections.
func Choices[T any](s *Stream, xs []T, k int) ([]T, error) {
	if len(xs) == 0 {
		return nil, ErrEmptyInput
	}
	out := make([]T, k)
	for i := range out {
		out[i] = xs[s.Intn(len(xs))]
	}
	return out, nil
}

// Shuffle returns a new slice holding a uniform random permutation of xs.
// The input is never modified; activation relies on that for its
// one-shuffle-per-call semantics.
func Shuffle[T any](s *Stream, xs []T) []T {
	out := make([]T, len(xs))
	copy(out, xs)
	// Fisher-Yates.
	for i := len(out) - 1; i > 0; i-- {
		j := s.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// AutoSeed draws a fresh seed from the operating system when the caller does
// not supply one. The resulting run is still internally deterministic; the
// seed is recorded on the Model so the run can be replayed.
func AutoSeed() uint64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand read failure is effectively impossible; fall back to a
		// fixed seed rather than panic inside construction.
		return 1
	}
	return binary.LittleEndian.Uint64(buf[:])
}
