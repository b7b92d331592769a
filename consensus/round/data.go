package round

import "bytes"

// DataKind discriminates the variants of Data. A tagged sum keeps the
// completion algorithm in messages.go a simple switch instead of a type
// hierarchy.
type DataKind uint8

const (
	// DataNormal is a real proposal built by a round's proposer.
	DataNormal DataKind = iota
	// DataNone is the placeholder injected at the start of every round,
	// before the real proposal (if any) has arrived. It carries the
	// round's proposer but no payload.
	DataNone
)

// Data is a proposal: an immutable, content-addressed node in the
// candidate chain. NoneData for a given (epoch, round) is uniquely
// determined by that pair and carries no parent-chaining meaning beyond
// being an addressable placeholder.
type Data struct {
	Kind       DataKind
	ID         [32]byte
	PrevID     [32]byte
	ProposerID []byte
	EpochNum   uint64
	RoundNum   uint64
	Number     uint64
	PrevVotes  []Vote
	// Signature is opaque to this package: a capability's DataVerifier
	// interprets it however that capability signs (see sigcap).
	Signature []byte
}

// IsNot reports whether this Data is the synthetic NoneData for its round.
func (d Data) IsNot() bool {
	return d.Kind == DataNone
}

// Equal compares two Data by id, per spec: Candidate/Data equality is by id.
func (d Data) Equal(other Data) bool {
	return d.ID == other.ID
}

func dataIDLess(a, b [32]byte) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
