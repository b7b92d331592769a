package sigcap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"nhbchain/consensus/round"
	"nhbchain/crypto"
)

func newTestCapability(t *testing.T) *Capability {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	return New(key)
}

func TestCreateDataRoundTripsThroughVerify(t *testing.T) {
	ctx := context.Background()
	c := newTestCapability(t)

	data, err := c.CreateData(ctx, 1, [32]byte{}, 7, 0, nil)
	require.NoError(t, err)

	verifier, err := c.CreateDataVerifier(ctx)
	require.NoError(t, err)
	require.NoError(t, verifier.Verify(ctx, data))
}

func TestVerifyDataRejectsTamperedProposer(t *testing.T) {
	ctx := context.Background()
	c := newTestCapability(t)
	other := newTestCapability(t)

	data, err := c.CreateData(ctx, 1, [32]byte{}, 7, 0, nil)
	require.NoError(t, err)
	data.ProposerID = other.Address()

	verifier, err := c.CreateDataVerifier(ctx)
	require.NoError(t, err)
	require.Error(t, verifier.Verify(ctx, data))
}

func TestCreateVoteRoundTripsThroughVerify(t *testing.T) {
	ctx := context.Background()
	c := newTestCapability(t)

	vote, err := c.CreateVote(ctx, [32]byte{1}, [32]byte{2}, 7, 0)
	require.NoError(t, err)
	require.Equal(t, round.VoteAffirmative, vote.Kind)

	verifier, err := c.CreateVoteVerifier(ctx)
	require.NoError(t, err)
	require.NoError(t, verifier.Verify(ctx, vote))
}

func TestVerifyVoteRejectsForgedSignature(t *testing.T) {
	ctx := context.Background()
	c := newTestCapability(t)
	other := newTestCapability(t)

	vote, err := other.CreateVote(ctx, [32]byte{1}, [32]byte{2}, 7, 0)
	require.NoError(t, err)
	vote.VoterID = c.Address()

	verifier, err := c.CreateVoteVerifier(ctx)
	require.NoError(t, err)
	require.Error(t, verifier.Verify(ctx, vote))
}

func TestCreateNoneDataIsUnsigned(t *testing.T) {
	ctx := context.Background()
	c := newTestCapability(t)
	proposer := []byte("designated-proposer")

	d, err := c.CreateNoneData(ctx, 7, 3, proposer)
	require.NoError(t, err)
	require.Equal(t, round.DataNone, d.Kind)
	require.Empty(t, d.Signature)
}
