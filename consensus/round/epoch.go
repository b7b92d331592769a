package round

import "bytes"

// Epoch is an immutable descriptor of the validator set active for one
// epoch (term). It computes the proposer for a given round and the
// quorum size, and never changes after construction.
type Epoch struct {
	Num        uint64
	validators [][]byte
}

// NewEpoch builds an Epoch over an ordered, deterministic validator set.
// The slice is copied so the caller cannot mutate it out from under the
// Epoch afterward.
func NewEpoch(num uint64, validators [][]byte) Epoch {
	cp := make([][]byte, len(validators))
	for i, v := range validators {
		cp[i] = append([]byte(nil), v...)
	}
	return Epoch{Num: num, validators: cp}
}

// Validators returns the ordered validator set.
func (e Epoch) Validators() [][]byte {
	out := make([][]byte, len(e.validators))
	for i, v := range e.validators {
		out[i] = append([]byte(nil), v...)
	}
	return out
}

// Quorum returns the number of affirmative votes required to commit:
// floor(2n/3)+1, the standard BFT safe majority (n=3f+1 validators
// tolerate f faulty and commit on 2f+1 affirmative votes).
func (e Epoch) Quorum() int {
	n := len(e.validators)
	return (2*n)/3 + 1
}

// ProposerID deterministically derives the proposer for round via
// round-robin over the validator set.
func (e Epoch) ProposerID(round uint64) []byte {
	if len(e.validators) == 0 {
		return nil
	}
	idx := int(round % uint64(len(e.validators)))
	return e.validators[idx]
}

// VerifyProposer succeeds iff voterID is the proposer for round, else
// fails with ErrInvalidProposer.
func (e Epoch) VerifyProposer(voterID []byte, round uint64) error {
	proposer := e.ProposerID(round)
	if proposer == nil || !bytes.Equal(proposer, voterID) {
		return ErrInvalidProposer
	}
	return nil
}
