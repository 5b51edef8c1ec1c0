package cast

import "sync/atomic"

// HashSeed is the first identity hash handed out by a fresh Sequence.
const HashSeed uint64 = 0x534E495752545250

// Sequence hands out identity hashes for newly built nodes. Hashes are unique
// per Sequence only; decoded nodes keep the hash read from the stream. It is
// safe for concurrent use.
type Sequence struct {
	next atomic.Uint64
}

func NewSequence(seed uint64) *Sequence {
	s := &Sequence{}
	s.next.Store(seed)
	return s
}

// Next returns the current hash and advances the sequence.
func (s *Sequence) Next() uint64 {
	return s.next.Add(1) - 1
}

// New builds an empty node for tag with the next hash. Children created
// through the node's Create methods draw from the same sequence.
func (s *Sequence) New(tag Tag) Node {
	return newNode(tag, s.Next(), s)
}

var defaultSequence = NewSequence(HashSeed)

// New builds an empty node for tag using the process-wide sequence.
func New(tag Tag) Node {
	return defaultSequence.New(tag)
}

// NewWithHash builds an empty node with an explicit identity hash.
func NewWithHash(tag Tag, hash uint64) Node {
	return newNode(tag, hash, nil)
}
