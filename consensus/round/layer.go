package round

import (
	"bytes"
	"context"
	"log/slog"
)

// RoundLayer drives a single propose→vote→commit state machine for the
// active (epoch, round). It is instantiated and disposed per node; all
// public operations are expected to be called serially by the
// surrounding engine's event loop (see spec.md §5) — there is no
// internal locking.
type RoundLayer struct {
	nodeID      []byte
	dataFactory DataFactory
	voteFactory VoteFactory
	sink        EventSink
	logger      *slog.Logger
	metrics     *metricsRecorder

	dataVerifier DataVerifier
	voteVerifier VoteVerifier

	epoch     Epoch
	roundNum  uint64
	candidate Candidate
	messages  *RoundMessages
	isVoted   bool
}

// NewRoundLayer constructs a RoundLayer for nodeID. logger may be nil
// (defaults to slog.Default()); metrics may be nil (disables
// instrumentation).
func NewRoundLayer(nodeID []byte, sink EventSink, dataFactory DataFactory, voteFactory VoteFactory, logger *slog.Logger, metrics *metricsRecorder) *RoundLayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoundLayer{
		nodeID:      append([]byte(nil), nodeID...),
		sink:        sink,
		dataFactory: dataFactory,
		voteFactory: voteFactory,
		logger:      logger,
		metrics:     metrics,
	}
}

// Initialize bootstraps the layer with the parent candidate and starts
// the first round. Callable exactly once per engine boot; calling again
// is a programmer error.
func (l *RoundLayer) Initialize(ctx context.Context, prevEpoch *Epoch, epoch Epoch, round uint64, candidateData Data, candidateVotes []Vote) error {
	dataVerifier, err := l.dataFactory.CreateDataVerifier(ctx)
	if err != nil {
		return err
	}
	voteVerifier, err := l.voteFactory.CreateVoteVerifier(ctx)
	if err != nil {
		return err
	}
	l.dataVerifier = dataVerifier
	l.voteVerifier = voteVerifier
	l.candidate = Candidate{Data: &candidateData, Votes: candidateVotes}

	_ = prevEpoch // epoch-transition bookkeeping belongs to the outer engine, not this layer

	return l.startNewRound(ctx, epoch, round)
}

// RoundStart transitions to a new round, clearing is_voted.
func (l *RoundLayer) RoundStart(ctx context.Context, epoch Epoch, round uint64) error {
	l.isVoted = false
	return l.startNewRound(ctx, epoch, round)
}

// ProposeData ingests a Data message, from the network or from this
// node's own broadcast loopback.
func (l *RoundLayer) ProposeData(ctx context.Context, data Data) {
	if err := l.messages.AddData(data); err != nil {
		l.logger.Debug("round: dropped proposal", "reason", err, "epoch", l.epoch.Num, "round", l.roundNum)
		return
	}
	if !l.isVoted {
		l.verifyAndBroadcastVote(ctx, data)
		l.isVoted = true
	}
	l.updateRoundIfComplete(ctx)
}

// VoteData ingests a Vote message.
func (l *RoundLayer) VoteData(ctx context.Context, vote Vote) {
	if err := l.messages.AddVote(vote); err != nil {
		l.logger.Debug("round: dropped vote", "reason", err, "epoch", l.epoch.Num, "round", l.roundNum, "voter", string(vote.VoterID))
		if l.metrics != nil && err == ErrAlreadyVoted {
			l.metrics.recordEquivocation()
		}
		return
	}
	l.updateRoundIfComplete(ctx)
}

// ChangeCandidate lets the outer layer supply a new Candidate, either
// advancing to a later round (when the candidate is ahead of the
// current one within this epoch) or simply adopting it in place.
func (l *RoundLayer) ChangeCandidate(ctx context.Context, candidate Candidate) {
	if candidate.Data == nil {
		return
	}
	switch {
	case candidate.Data.EpochNum == l.epoch.Num && candidate.Data.RoundNum > l.roundNum:
		l.candidate = candidate
		l.sink.Publish(ctx, ChangedCandidateEvent{Data: *candidate.Data, Votes: candidate.Votes})
		_ = l.startNewRound(ctx, l.epoch, candidate.Data.RoundNum)
	case !l.messages.IsCompleted():
		l.candidate = candidate
		l.sink.Publish(ctx, ChangedCandidateEvent{Data: *candidate.Data, Votes: candidate.Votes})
	default:
		// Current round already completed and the candidate does not
		// advance it: silently dropped, per spec.md's Open Question 2.
	}
}

func (l *RoundLayer) startNewRound(ctx context.Context, epoch Epoch, round uint64) error {
	l.epoch = epoch
	l.roundNum = round
	l.messages = NewRoundMessages(epoch, round)

	noneData, err := l.dataFactory.CreateNoneData(ctx, epoch.Num, round, epoch.ProposerID(round))
	if err != nil {
		return err
	}
	// NoneData is always inserted before any external Data can arrive,
	// per spec.md invariant 4.
	_ = l.messages.AddData(noneData)

	return l.createDataIfProposer(ctx)
}

func (l *RoundLayer) createDataIfProposer(ctx context.Context) error {
	if err := l.epoch.VerifyProposer(l.nodeID, l.roundNum); err != nil {
		return nil
	}
	newData, err := l.dataFactory.CreateData(ctx, l.candidate.Data.Number+1, l.candidate.Data.ID, l.epoch.Num, l.roundNum, l.candidate.Votes)
	if err != nil {
		l.logger.Warn("round: failed to build proposal", "error", err, "epoch", l.epoch.Num, "round", l.roundNum)
		return nil
	}
	l.sink.Publish(ctx, BroadcastDataEvent{Data: newData})
	l.sink.Publish(ctx, ReceiveDataEvent{Data: newData})
	return nil
}

func (l *RoundLayer) verifyAndBroadcastVote(ctx context.Context, data Data) {
	var vote Vote
	var err error
	if l.verifyData(ctx, data) {
		vote, err = l.voteFactory.CreateVote(ctx, data.ID, l.candidate.Data.ID, l.epoch.Num, l.roundNum)
	} else {
		vote, err = l.voteFactory.CreateNoneVote(ctx, l.epoch.Num, l.roundNum)
	}
	if err != nil {
		l.logger.Warn("round: failed to build vote", "error", err, "epoch", l.epoch.Num, "round", l.roundNum)
		return
	}
	l.sink.Publish(ctx, BroadcastVoteEvent{Vote: vote})
	l.sink.Publish(ctx, ReceiveVoteEvent{Vote: vote})
}

func (l *RoundLayer) verifyData(ctx context.Context, data Data) bool {
	if bytes.Equal(data.ProposerID, l.nodeID) {
		return true
	}
	if l.candidate.Data == nil || data.PrevID != l.candidate.Data.ID {
		return false
	}
	if data.IsNot() {
		return false
	}
	if err := l.dataVerifier.Verify(ctx, data); err != nil {
		l.logger.Debug("round: proposal failed verification", "error", err, "epoch", l.epoch.Num, "round", l.roundNum)
		return false
	}
	return true
}

func (l *RoundLayer) updateRoundIfComplete(ctx context.Context) {
	if err := l.messages.Complete(); err != nil {
		return
	}
	candidate := l.messages.Result()
	l.raiseRoundEnd(ctx, candidate)
	if candidate.Data != nil {
		l.candidate = candidate
	}
}

func (l *RoundLayer) raiseRoundEnd(ctx context.Context, candidate Candidate) {
	event := RoundEndEvent{
		EpochNum:       l.epoch.Num,
		RoundNum:       l.roundNum,
		CandidateVotes: candidate.Votes,
	}
	if candidate.Data != nil {
		event.IsSuccess = true
		event.CandidateData = *candidate.Data
		event.CommitID = candidate.Data.PrevID
		event.HasCommitID = true
	}
	l.sink.Publish(ctx, event)
	if l.metrics != nil {
		l.metrics.recordOutcome(event.IsSuccess)
		l.metrics.sampleMessages(l.messages.Stats())
	}
}

