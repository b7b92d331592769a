// Package sigcap is a secp256k1-backed implementation of round.DataFactory,
// round.VoteFactory, round.DataVerifier and round.VoteVerifier: it signs
// every Data and Vote it creates and recovers the signer's address to
// verify ones it didn't.
//
// Grounded on consensus/bft.go's createVote (sha256-then-sign) and
// verifySignature (secp256k1 recovery via go-ethereum's crypto package);
// canonicalization follows bft/types.go's json-then-hash Vote/Proposal
// encoding.
package sigcap

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"nhbchain/consensus/round"
	"nhbchain/crypto"
)

// Capability signs outgoing Data/Vote messages with key and verifies
// incoming ones by recovering the secp256k1 signer address. A single
// value implements all four round capability interfaces.
type Capability struct {
	key     *crypto.PrivateKey
	address []byte
}

// New builds a Capability for key. The resulting address (derived the same
// way as the rest of the repo's NHB addresses) is what this node signs as
// proposer/voter id.
func New(key *crypto.PrivateKey) *Capability {
	return &Capability{
		key:     key,
		address: key.PubKey().Address().Bytes(),
	}
}

// Address returns this capability's signing address, for wiring into
// Epoch validator sets and RoundLayer's nodeID.
func (c *Capability) Address() []byte {
	return append([]byte(nil), c.address...)
}

type dataSigningView struct {
	Kind       uint8
	PrevID     []byte
	ProposerID []byte
	EpochNum   uint64
	RoundNum   uint64
	Number     uint64
}

func dataID(d round.Data) ([32]byte, error) {
	view := dataSigningView{
		Kind:       uint8(d.Kind),
		PrevID:     d.PrevID[:],
		ProposerID: d.ProposerID,
		EpochNum:   d.EpochNum,
		RoundNum:   d.RoundNum,
		Number:     d.Number,
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return [32]byte{}, fmt.Errorf("sigcap: marshal data: %w", err)
	}
	return sha256.Sum256(payload), nil
}

type voteSigningView struct {
	Kind     uint8
	DataID   []byte
	VoterID  []byte
	EpochNum uint64
	RoundNum uint64
}

func voteID(v round.Vote) ([32]byte, error) {
	view := voteSigningView{
		Kind:     uint8(v.Kind),
		DataID:   v.DataID[:],
		VoterID:  v.VoterID,
		EpochNum: v.EpochNum,
		RoundNum: v.RoundNum,
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return [32]byte{}, fmt.Errorf("sigcap: marshal vote: %w", err)
	}
	return sha256.Sum256(payload), nil
}

// CreateData builds and signs a proposal extending prevID.
func (c *Capability) CreateData(_ context.Context, number uint64, prevID [32]byte, epochNum, roundNum uint64, prevVotes []round.Vote) (round.Data, error) {
	d := round.Data{
		Kind:       round.DataNormal,
		PrevID:     prevID,
		ProposerID: c.Address(),
		EpochNum:   epochNum,
		RoundNum:   roundNum,
		Number:     number,
		PrevVotes:  prevVotes,
	}
	id, err := dataID(d)
	if err != nil {
		return round.Data{}, err
	}
	sig, err := ethcrypto.Sign(id[:], c.key.PrivateKey)
	if err != nil {
		return round.Data{}, fmt.Errorf("sigcap: sign data: %w", err)
	}
	d.ID = id
	d.Signature = sig
	return d, nil
}

// CreateNoneData builds the unsigned synthetic placeholder for a round;
// it is never broadcast so it carries no signature.
func (c *Capability) CreateNoneData(_ context.Context, epochNum, roundNum uint64, proposerID []byte) (round.Data, error) {
	d := round.Data{
		Kind:       round.DataNone,
		ProposerID: proposerID,
		EpochNum:   epochNum,
		RoundNum:   roundNum,
	}
	id, err := dataID(d)
	if err != nil {
		return round.Data{}, err
	}
	d.ID = id
	return d, nil
}

// CreateDataVerifier returns a verifier bound to c: a Capability verifies
// the same way it signs.
func (c *Capability) CreateDataVerifier(context.Context) (round.DataVerifier, error) {
	return dataVerifier{c}, nil
}

// dataVerifier and voteVerifier exist only because round.DataVerifier and
// round.VoteVerifier both name their method Verify with a different
// argument type — Capability can't implement both directly.
type dataVerifier struct{ c *Capability }

func (d dataVerifier) Verify(ctx context.Context, data round.Data) error {
	return d.c.verifyData(ctx, data)
}

type voteVerifier struct{ c *Capability }

func (v voteVerifier) Verify(ctx context.Context, vote round.Vote) error {
	return v.c.verifyVote(ctx, vote)
}

func (c *Capability) verifyData(_ context.Context, data round.Data) error {
	want, err := dataID(data)
	if err != nil {
		return err
	}
	if want != data.ID {
		return fmt.Errorf("sigcap: data id mismatch")
	}
	pub, err := ethcrypto.SigToPub(want[:], data.Signature)
	if err != nil {
		return fmt.Errorf("sigcap: recover data signer: %w", err)
	}
	recovered := ethcrypto.PubkeyToAddress(*pub).Bytes()
	if !bytes.Equal(recovered, data.ProposerID) {
		return fmt.Errorf("sigcap: data signer mismatch")
	}
	return nil
}

// CreateVote builds and signs an affirmative vote for dataID.
func (c *Capability) CreateVote(_ context.Context, dataID32, commitID [32]byte, epochNum, roundNum uint64) (round.Vote, error) {
	v := round.Vote{
		Kind:     round.VoteAffirmative,
		DataID:   dataID32,
		CommitID: commitID,
		VoterID:  c.Address(),
		EpochNum: epochNum,
		RoundNum: roundNum,
	}
	id, err := voteID(v)
	if err != nil {
		return round.Vote{}, err
	}
	sig, err := ethcrypto.Sign(id[:], c.key.PrivateKey)
	if err != nil {
		return round.Vote{}, fmt.Errorf("sigcap: sign vote: %w", err)
	}
	v.ID = id
	v.Signature = sig
	return v, nil
}

// CreateNoneVote builds and signs an abstention.
func (c *Capability) CreateNoneVote(_ context.Context, epochNum, roundNum uint64) (round.Vote, error) {
	v := round.Vote{
		Kind:     round.VoteNone,
		VoterID:  c.Address(),
		EpochNum: epochNum,
		RoundNum: roundNum,
	}
	id, err := voteID(v)
	if err != nil {
		return round.Vote{}, err
	}
	sig, err := ethcrypto.Sign(id[:], c.key.PrivateKey)
	if err != nil {
		return round.Vote{}, fmt.Errorf("sigcap: sign vote: %w", err)
	}
	v.ID = id
	v.Signature = sig
	return v, nil
}

// CreateVoteVerifier returns a verifier bound to c.
func (c *Capability) CreateVoteVerifier(context.Context) (round.VoteVerifier, error) {
	return voteVerifier{c}, nil
}

// verifyVote checks that vote.ID matches its canonical fields and that
// vote.Signature recovers to vote.VoterID.
func (c *Capability) verifyVote(_ context.Context, vote round.Vote) error {
	want, err := voteID(vote)
	if err != nil {
		return err
	}
	if want != vote.ID {
		return fmt.Errorf("sigcap: vote id mismatch")
	}
	pub, err := ethcrypto.SigToPub(want[:], vote.Signature)
	if err != nil {
		return fmt.Errorf("sigcap: recover vote signer: %w", err)
	}
	recovered := ethcrypto.PubkeyToAddress(*pub).Bytes()
	if !bytes.Equal(recovered, vote.VoterID) {
		return fmt.Errorf("sigcap: vote signer mismatch")
	}
	return nil
}
