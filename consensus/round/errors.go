package round

import "errors"

// Protocol precondition failures. These are control-flow signals recovered
// locally by RoundMessages/RoundLayer; they never escape a public
// RoundLayer method.
var (
	// ErrInvalidProposer is returned by Epoch.VerifyProposer when the
	// supplied voter is not the proposer for the given round.
	ErrInvalidProposer = errors.New("round: invalid proposer")

	// ErrAlreadyCompleted is returned by RoundMessages.AddData/AddVote/Complete
	// once the round has already produced a result.
	ErrAlreadyCompleted = errors.New("round: already completed")

	// ErrAlreadyVoted is returned by RoundMessages.AddVote when a second,
	// differing vote arrives from a voter who already has one counted
	// (equivocation).
	ErrAlreadyVoted = errors.New("round: voter already voted")

	// ErrCannotComplete is returned by RoundMessages.Complete when no
	// ingested Data has reached quorum yet and some DataID can still reach
	// it given the voters who have not spoken.
	ErrCannotComplete = errors.New("round: cannot complete yet")
)
