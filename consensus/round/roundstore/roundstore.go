// Package roundstore persists the candidate checkpoint a RoundLayer needs
// to resume after a restart: the last Candidate accepted for an epoch,
// keyed by epoch number.
//
// Grounded on consensus/store/store.go's Store (key-prefix + RLP encode
// over a storage.Database) and storage/db.go's Database abstraction.
package roundstore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"nhbchain/consensus/round"
	"nhbchain/storage"
)

// ErrNotFound is returned when no checkpoint has been saved for an epoch.
var ErrNotFound = errors.New("roundstore: no checkpoint for epoch")

var candidateKeyPrefix = []byte("round/candidate/")

func candidateKey(epochNum uint64) []byte {
	key := make([]byte, len(candidateKeyPrefix)+8)
	copy(key, candidateKeyPrefix)
	binary.BigEndian.PutUint64(key[len(candidateKeyPrefix):], epochNum)
	return key
}

// storedCandidate is the RLP-encodable shape of round.Candidate: RLP can't
// encode a nil pointer distinctly from a zero value, so HasData carries
// that distinction across the wire.
type storedCandidate struct {
	HasData bool
	Data    round.Data
	Votes   []round.Vote
}

// Store persists candidate checkpoints for a node's RoundLayer.
type Store struct {
	db storage.Database
}

// New creates a round store backed by db.
func New(db storage.Database) *Store {
	return &Store{db: db}
}

// SaveCandidate checkpoints candidate as the latest accepted for epochNum.
func (s *Store) SaveCandidate(epochNum uint64, candidate round.Candidate) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("roundstore: uninitialised")
	}
	stored := storedCandidate{Votes: candidate.Votes}
	if candidate.Data != nil {
		stored.HasData = true
		stored.Data = *candidate.Data
	}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return fmt.Errorf("roundstore: encode candidate: %w", err)
	}
	return s.db.Put(candidateKey(epochNum), encoded)
}

// LoadCandidate returns the checkpointed candidate for epochNum, or
// ErrNotFound if none was saved.
func (s *Store) LoadCandidate(epochNum uint64) (round.Candidate, error) {
	if s == nil || s.db == nil {
		return round.Candidate{}, fmt.Errorf("roundstore: uninitialised")
	}
	raw, err := s.db.Get(candidateKey(epochNum))
	if err != nil {
		return round.Candidate{}, ErrNotFound
	}
	var stored storedCandidate
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return round.Candidate{}, fmt.Errorf("roundstore: decode candidate: %w", err)
	}
	candidate := round.Candidate{Votes: stored.Votes}
	if stored.HasData {
		data := stored.Data
		candidate.Data = &data
	}
	return candidate, nil
}
