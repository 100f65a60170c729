package feed

import (
	"context"
	"math/big"
	"sync"
	"time"
)

// Static is a Source backed by fixed, configuration-supplied prices. It is
// intended for standalone operation and tests. Each lookup stamps the round
// at the current time minus the configured age, so a Static feed with zero
// age is always fresh.
type Static struct {
	mu     sync.RWMutex
	rounds map[string]staticRound

	// Now is swapped out by tests.
	Now func() time.Time
}

type staticRound struct {
	answer   *big.Int
	decimals uint8
	age      time.Duration
	round    uint64
}

// NewStatic creates an empty static source.
func NewStatic() *Static {
	return &Static{
		rounds: make(map[string]staticRound),
		Now:    time.Now,
	}
}

// Set installs or replaces the price for a feed reference. The age is
// subtracted from the query time when the round is served, which lets tests
// and standalone configs simulate stale feeds.
func (s *Static) Set(ref string, answer *big.Int, decimals uint8, age time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[ref] = staticRound{
		answer:   new(big.Int).Set(answer),
		decimals: decimals,
		age:      age,
		round:    1,
	}
}

// SetRound installs a price with an explicit round identifier. A zero round
// simulates a feed that never completed an aggregation round.
func (s *Static) SetRound(ref string, answer *big.Int, decimals uint8, age time.Duration, round uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[ref] = staticRound{
		answer:   new(big.Int).Set(answer),
		decimals: decimals,
		age:      age,
		round:    round,
	}
}

// LatestRoundData implements Source.
func (s *Static) LatestRoundData(ctx context.Context, ref string) (Round, error) {
	s.mu.RLock()
	entry, ok := s.rounds[ref]
	s.mu.RUnlock()
	if !ok {
		return Round{}, ErrUnknownFeed
	}
	return Round{
		Answer:          new(big.Int).Set(entry.answer),
		UpdatedAt:       s.Now().Add(-entry.age),
		AnsweredInRound: entry.round,
		Decimals:        entry.decimals,
	}, nil
}
