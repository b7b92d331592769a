package round

import "context"

// EventSink receives every event the Round Layer raises. The surrounding
// engine supplies the implementation; the core never assumes anything
// about delivery beyond call order (layer.go publishes each BroadcastX
// immediately before its ReceiveX loopback).
type EventSink interface {
	Publish(ctx context.Context, event any)
}

// InitializeEvent is not raised by the Round Layer itself — it is the
// inbound trigger for Initialize, included here for parity with the
// event contract's naming (spec.md §6) and for drivers that want a
// uniform event type to log alongside the outbound ones.
type InitializeEvent struct {
	PrevEpoch      *Epoch
	Epoch          Epoch
	RoundNum       uint64
	CandidateData  Data
	CandidateVotes []Vote
}

// RoundStartEvent is the inbound trigger for RoundStart.
type RoundStartEvent struct {
	Epoch    Epoch
	RoundNum uint64
}

// ReceiveDataEvent carries a Data ingested by the Round Layer, whether
// from the network or as a broadcast loopback.
type ReceiveDataEvent struct {
	Data Data
}

// ReceiveVoteEvent carries a Vote ingested by the Round Layer.
type ReceiveVoteEvent struct {
	Vote Vote
}

// ChangeCandidateEvent is the inbound trigger for ChangeCandidate.
type ChangeCandidateEvent struct {
	Candidate Candidate
}

// BroadcastDataEvent asks the network layer to ship data to peers.
type BroadcastDataEvent struct {
	Data Data
}

// BroadcastVoteEvent asks the network layer to ship vote to peers.
type BroadcastVoteEvent struct {
	Vote Vote
}

// ChangedCandidateEvent informs upstream that an externally supplied
// ChangeCandidate was adopted. A successful round adopts its candidate
// without raising this event; RoundEndEvent carries that candidate instead.
type ChangedCandidateEvent struct {
	Data  Data
	Votes []Vote
}

// RoundEndEvent reports the outcome of a round. CommitID is only
// meaningful when HasCommitID is true (i.e. IsSuccess is true): it is the
// grandparent Data id, the parent of the newly adopted candidate.
type RoundEndEvent struct {
	IsSuccess      bool
	EpochNum       uint64
	RoundNum       uint64
	CandidateData  Data
	CandidateVotes []Vote
	CommitID       [32]byte
	HasCommitID    bool
}
