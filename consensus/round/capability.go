package round

import "context"

// DataFactory builds and verifies Data. Concrete implementations live
// outside this package (signing, block/payload construction); see
// consensus/round/sigcap for a reference adapter.
type DataFactory interface {
	// CreateData builds a new proposal parented on prevID.
	CreateData(ctx context.Context, number uint64, prevID [32]byte, epochNum, roundNum uint64, prevVotes []Vote) (Data, error)
	// CreateNoneData builds the synthetic placeholder for (epochNum, roundNum).
	CreateNoneData(ctx context.Context, epochNum, roundNum uint64, proposerID []byte) (Data, error)
	// CreateDataVerifier returns a verifier bound to this factory's keys.
	CreateDataVerifier(ctx context.Context) (DataVerifier, error)
}

// VoteFactory builds and verifies Vote.
type VoteFactory interface {
	// CreateVote builds an affirmative vote for dataID.
	CreateVote(ctx context.Context, dataID, commitID [32]byte, epochNum, roundNum uint64) (Vote, error)
	// CreateNoneVote builds an explicit abstention.
	CreateNoneVote(ctx context.Context, epochNum, roundNum uint64) (Vote, error)
	// CreateVoteVerifier returns a verifier bound to this factory's keys.
	CreateVoteVerifier(ctx context.Context) (VoteVerifier, error)
}

// DataVerifier validates a Data. Any failure is treated by the Round
// Layer as "invalid" — the specific error is logged, never surfaced.
type DataVerifier interface {
	Verify(ctx context.Context, data Data) error
}

// VoteVerifier validates a Vote.
type VoteVerifier interface {
	Verify(ctx context.Context, vote Vote) error
}
