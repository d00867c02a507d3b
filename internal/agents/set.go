package agents

import (
	"github.com/samber/lo"

	"github.com/talgya/swarmlab/internal/entropy"
)

// Set is an ordered view over agents supporting bulk activation. Order is
// insertion order unless a single activation call shuffles it. Derived sets
// (Select, GroupBy) share the parent's registry and random stream.
type Set struct {
	members  []*Agent
	registry *Registry
	stream   *entropy.Stream
}

// NewSet creates a set bound to a behavior registry and random stream.
func NewSet(registry *Registry, stream *entropy.Stream, members ...*Agent) *Set {
	s := &Set{registry: registry, stream: stream}
	s.members = append(s.members, members...)
	return s
}

// Add appends an agent to the set.
func (s *Set) Add(a *Agent) {
	s.members = append(s.members, a)
}

// Len returns the member count.
func (s *Set) Len() int { return len(s.members) }

// Members returns the members in current order. The slice is a copy; the
// agents are shared.
func (s *Set) Members() []*Agent {
	out := make([]*Agent, len(s.members))
	copy(out, s.members)
	return out
}

// Do invokes the named behavior on every member in the set's current order.
// Activation is synchronous and live: the behavior running for member i sees
// every mutation already made by members 0..i-1 in this same call. That is
// what makes direct peer-to-peer transfer in a single pass work: state is
// never snapshotted at the start of the call.
func (s *Set) Do(name string, args ...any) error {
	b, err := s.registry.Lookup(name)
	if err != nil {
		return err
	}
	for _, a := range s.members {
		if err := b(a, args...); err != nil {
			return err
		}
	}
	return nil
}

// ShuffleDo draws one random permutation of the members from the shared
// stream (one shuffle per call, not per agent) and activates in that
// order. The set's own order is untouched.
func (s *Set) ShuffleDo(name string, args ...any) error {
	b, err := s.registry.Lookup(name)
	if err != nil {
		return err
	}
	for _, a := range entropy.Shuffle(s.stream, s.members) {
		if err := b(a, args...); err != nil {
			return err
		}
	}
	return nil
}

// Select returns a new Set holding exactly the members the predicate accepts,
// preserving relative order.
func (s *Set) Select(pred func(*Agent) bool) *Set {
	return &Set{
		members:  lo.Filter(s.members, func(a *Agent, _ int) bool { return pred(a) }),
		registry: s.registry,
		stream:   s.stream,
	}
}

// GroupBy partitions the members by key. Every member lands in exactly one
// partition, partitions preserve relative order, and empty groups are
// omitted.
func (s *Set) GroupBy(key func(*Agent) string) map[string]*Set {
	groups := lo.GroupBy(s.members, key)
	out := make(map[string]*Set, len(groups))
	for k, members := range groups {
		out[k] = &Set{members: members, registry: s.registry, stream: s.stream}
	}
	return out
}
