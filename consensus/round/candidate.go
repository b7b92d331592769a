package round

// Candidate is the most recent Data this node considers committed,
// together with the quorum certificate (Votes) that committed it. It is
// the parent for the next round's proposal.
//
// Data is a pointer because a failed round produces a Candidate with no
// data at all (distinct from NoneData, which is a real, addressable
// placeholder Data for a round that simply hasn't seen its proposal yet).
type Candidate struct {
	Data  *Data
	Votes []Vote
}

// Equal compares two Candidates by their Data id, per spec. Two
// data-less Candidates are never equal to anything, including each
// other — a failed round carries no identity to compare.
func (c Candidate) Equal(other Candidate) bool {
	if c.Data == nil || other.Data == nil {
		return false
	}
	return c.Data.Equal(*other.Data)
}
