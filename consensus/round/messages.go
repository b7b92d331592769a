package round

import "sort"

// MessagesStats is a read-only snapshot of RoundMessages' size, exposed
// purely so metrics.go can sample gauges without reaching into
// unexported fields.
type MessagesStats struct {
	Datas     int
	Votes     int
	Completed bool
}

// RoundMessages accumulates all Data and Vote messages for one active
// (epoch, round), detects when the round can be decided, and computes
// the outcome. It is owned exclusively by RoundLayer and replaced
// wholesale on every new round; there are no cross-round references.
type RoundMessages struct {
	epoch Epoch
	round uint64

	datas map[[32]byte]Data
	votes map[string]Vote // keyed by string(voterID): at most one per voter

	completed bool
	result    *Candidate
}

// NewRoundMessages constructs an empty aggregator for (epoch, round).
func NewRoundMessages(epoch Epoch, round uint64) *RoundMessages {
	return &RoundMessages{
		epoch: epoch,
		round: round,
		datas: make(map[[32]byte]Data),
		votes: make(map[string]Vote),
	}
}

// AddData inserts data if not already present. Duplicate ids are a
// silent no-op. Fails with ErrAlreadyCompleted once the round is done.
func (m *RoundMessages) AddData(data Data) error {
	if m.completed {
		return ErrAlreadyCompleted
	}
	if _, exists := m.datas[data.ID]; exists {
		return nil
	}
	m.datas[data.ID] = data
	return nil
}

// AddVote inserts vote keyed by VoterID. An exact duplicate (same ID) is
// a no-op. A second, differing vote from the same voter fails with
// ErrAlreadyVoted — the first-seen vote remains the one counted, but the
// caller learns of the equivocation so it can log or penalize. Fails with
// ErrAlreadyCompleted once the round is done.
func (m *RoundMessages) AddVote(vote Vote) error {
	if m.completed {
		return ErrAlreadyCompleted
	}
	key := string(vote.VoterID)
	existing, exists := m.votes[key]
	if !exists {
		m.votes[key] = vote
		return nil
	}
	if existing.ID == vote.ID {
		return nil
	}
	return ErrAlreadyVoted
}

// IsCompleted reports whether Complete has already succeeded.
func (m *RoundMessages) IsCompleted() bool {
	return m.completed
}

// Result returns the Candidate computed by Complete. It is undefined
// (zero value) before completion.
func (m *RoundMessages) Result() Candidate {
	if m.result == nil {
		return Candidate{}
	}
	return *m.result
}

// Complete attempts to finalize the round. See spec.md §4.4 for the
// algorithm: a Data reaching quorum affirmative votes succeeds
// (lexicographically-smallest DataID breaks simultaneous-quorum ties);
// otherwise, once no Data can still reach quorum given the voters who
// have already spoken, the round fails with a nil-data Candidate;
// otherwise completion cannot yet be decided.
func (m *RoundMessages) Complete() error {
	if m.completed {
		return ErrAlreadyCompleted
	}

	quorum := m.epoch.Quorum()
	affirmativeByData := make(map[[32]byte][]Vote)
	for _, v := range m.votes {
		if v.Kind == VoteAffirmative {
			affirmativeByData[v.DataID] = append(affirmativeByData[v.DataID], v)
		}
	}

	winners := make([][32]byte, 0, 1)
	maxAffirmative := 0
	for dataID, votes := range affirmativeByData {
		if len(votes) > maxAffirmative {
			maxAffirmative = len(votes)
		}
		if len(votes) < quorum {
			continue
		}
		// A DataID can reach quorum before its Data arrives (AddVote never
		// requires AddData first). Leave it out of the winner set until
		// AddData catches up; maxAffirmative still counts its votes, so the
		// failure check below keeps treating the round as pending rather
		// than dead.
		if _, known := m.datas[dataID]; known {
			winners = append(winners, dataID)
		}
	}

	if len(winners) > 0 {
		sort.Slice(winners, func(i, j int) bool { return dataIDLess(winners[i], winners[j]) })
		winnerID := winners[0]
		data := m.datas[winnerID]
		votes := append([]Vote(nil), affirmativeByData[winnerID]...)
		sort.Slice(votes, func(i, j int) bool { return string(votes[i].VoterID) < string(votes[j].VoterID) })
		m.completed = true
		m.result = &Candidate{Data: &data, Votes: votes}
		return nil
	}

	n := len(m.epoch.Validators())
	castVotes := len(m.votes)
	if n-castVotes+maxAffirmative < quorum {
		allVotes := make([]Vote, 0, len(m.votes))
		for _, v := range m.votes {
			allVotes = append(allVotes, v)
		}
		sort.Slice(allVotes, func(i, j int) bool { return string(allVotes[i].VoterID) < string(allVotes[j].VoterID) })
		m.completed = true
		m.result = &Candidate{Data: nil, Votes: allVotes}
		return nil
	}

	return ErrCannotComplete
}

// Stats returns a read-only snapshot of the aggregator's size.
func (m *RoundMessages) Stats() MessagesStats {
	return MessagesStats{Datas: len(m.datas), Votes: len(m.votes), Completed: m.completed}
}
