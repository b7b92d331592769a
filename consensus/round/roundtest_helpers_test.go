package round

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// recordingSink collects every published event in order, for assertions
// against spec.md's end-to-end scenarios. RoundLayer publishes a
// ReceiveDataEvent/ReceiveVoteEvent right after each BroadcastX instead of
// ingesting its own message directly (see createDataIfProposer and
// verifyAndBroadcastVote in layer.go), so routing those events back into
// the layer's ingest methods is the dispatcher's job — recordingSink
// plays that dispatcher role here, the way a real driver's event loop would.
type recordingSink struct {
	events []any
	layer  *RoundLayer
}

func (s *recordingSink) Publish(ctx context.Context, event any) {
	s.events = append(s.events, event)
	switch e := event.(type) {
	case ReceiveDataEvent:
		s.layer.ProposeData(ctx, e.Data)
	case ReceiveVoteEvent:
		s.layer.VoteData(ctx, e.Vote)
	}
}

func (s *recordingSink) kinds() []string {
	out := make([]string, len(s.events))
	for i, e := range s.events {
		switch e.(type) {
		case BroadcastDataEvent:
			out[i] = "BroadcastData"
		case BroadcastVoteEvent:
			out[i] = "BroadcastVote"
		case ReceiveDataEvent:
			out[i] = "ReceiveData"
		case ReceiveVoteEvent:
			out[i] = "ReceiveVote"
		case RoundEndEvent:
			out[i] = "RoundEnd"
		case ChangedCandidateEvent:
			out[i] = "ChangedCandidate"
		default:
			out[i] = "Unknown"
		}
	}
	return out
}

// fakeVerifier is a DataVerifier that succeeds unless fail is set, in
// which case it always fails. fakeVoteVerifier below is the VoteVerifier.
type fakeVerifier struct{ fail bool }

func (v *fakeVerifier) Verify(_ context.Context, _ Data) error {
	if v.fail {
		return errVerifyFailed
	}
	return nil
}

var errVerifyFailed = &verifyError{"verification failed"}

type verifyError struct{ msg string }

func (e *verifyError) Error() string { return e.msg }

// fakeFactory is a deterministic, in-memory DataFactory+VoteFactory for
// tests: ids are sha256 digests over the message's fields so equal
// inputs always produce equal ids, without any signing.
type fakeFactory struct {
	verifier *fakeVerifier
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{verifier: &fakeVerifier{}}
}

func (f *fakeFactory) CreateData(_ context.Context, number uint64, prevID [32]byte, epochNum, roundNum uint64, prevVotes []Vote) (Data, error) {
	d := Data{
		Kind:       DataNormal,
		PrevID:     prevID,
		ProposerID: []byte("self"),
		EpochNum:   epochNum,
		RoundNum:   roundNum,
		Number:     number,
		PrevVotes:  prevVotes,
	}
	d.ID = hashData(d)
	return d, nil
}

func (f *fakeFactory) CreateNoneData(_ context.Context, epochNum, roundNum uint64, proposerID []byte) (Data, error) {
	d := Data{
		Kind:       DataNone,
		ProposerID: proposerID,
		EpochNum:   epochNum,
		RoundNum:   roundNum,
	}
	d.ID = hashData(d)
	return d, nil
}

func (f *fakeFactory) CreateDataVerifier(_ context.Context) (DataVerifier, error) {
	return f.verifier, nil
}

func (f *fakeFactory) CreateVote(_ context.Context, dataID, commitID [32]byte, epochNum, roundNum uint64) (Vote, error) {
	v := Vote{Kind: VoteAffirmative, DataID: dataID, CommitID: commitID, VoterID: []byte("self"), EpochNum: epochNum, RoundNum: roundNum}
	v.ID = hashVote(v)
	return v, nil
}

func (f *fakeFactory) CreateNoneVote(_ context.Context, epochNum, roundNum uint64) (Vote, error) {
	v := Vote{Kind: VoteNone, VoterID: []byte("self"), EpochNum: epochNum, RoundNum: roundNum}
	v.ID = hashVote(v)
	return v, nil
}

func (f *fakeFactory) CreateVoteVerifier(_ context.Context) (VoteVerifier, error) {
	return &fakeVoteVerifier{}, nil
}

type fakeVoteVerifier struct{}

func (*fakeVoteVerifier) Verify(_ context.Context, _ Vote) error { return nil }

func hashData(d Data) [32]byte {
	h := sha256.New()
	h.Write([]byte{byte(d.Kind)})
	h.Write(d.PrevID[:])
	h.Write(d.ProposerID)
	writeUint64(h, d.EpochNum)
	writeUint64(h, d.RoundNum)
	writeUint64(h, d.Number)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashVote(v Vote) [32]byte {
	h := sha256.New()
	h.Write([]byte{byte(v.Kind)})
	h.Write(v.DataID[:])
	h.Write(v.VoterID)
	writeUint64(h, v.EpochNum)
	writeUint64(h, v.RoundNum)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeUint64(w interface{ Write([]byte) (int, error) }, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func genesisData() Data {
	d := Data{Kind: DataNormal, Number: 0}
	d.ID = hashData(d)
	return d
}

func voterVote(kind VoteKind, dataID [32]byte, voter string, epochNum, roundNum uint64) Vote {
	v := Vote{Kind: kind, DataID: dataID, VoterID: []byte(voter), EpochNum: epochNum, RoundNum: roundNum}
	v.ID = hashVote(v)
	return v
}
