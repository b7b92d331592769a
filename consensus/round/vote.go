package round

// VoteKind discriminates the variants of Vote.
type VoteKind uint8

const (
	// VoteAffirmative is a vote in favor of the Data identified by DataID.
	VoteAffirmative VoteKind = iota
	// VoteNot is a vote against (e.g. a timeout with no usable proposal).
	VoteNot
	// VoteNone is an explicit abstention.
	VoteNone
)

// Vote is a validator's immutable opinion on a Data for one (epoch, round).
type Vote struct {
	Kind     VoteKind
	ID       [32]byte
	DataID   [32]byte
	CommitID [32]byte
	VoterID  []byte
	EpochNum uint64
	RoundNum uint64
	// Signature is opaque to this package: a capability's VoteVerifier
	// interprets it however that capability signs (see sigcap).
	Signature []byte
}

// IsNot reports whether this is a NotVote.
func (v Vote) IsNot() bool {
	return v.Kind == VoteNot
}

// IsNone reports whether this is a NoneVote (explicit abstention).
func (v Vote) IsNone() bool {
	return v.Kind == VoteNone
}

// isAffirmativeFor reports whether v is an affirmative vote for dataID.
func (v Vote) isAffirmativeFor(dataID [32]byte) bool {
	return v.Kind == VoteAffirmative && v.DataID == dataID
}
