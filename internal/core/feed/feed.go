// Package feed provides access to external price feeds. A feed is identified
// by an opaque reference string and reports rounds in the shape of an
// aggregator query: an integer answer at a fixed decimal precision, the time
// the answer was produced, and the round it was answered in.
//
// Feed data is untrusted input. Callers are responsible for validating
// positivity and freshness; this package only moves rounds around.
package feed

import (
	"context"
	"errors"
	"math/big"
	"time"
)

var (
	// ErrUnknownFeed is returned when no feed exists for the given reference.
	ErrUnknownFeed = errors.New("feed: unknown feed reference")

	// ErrNoRound is returned when a feed exists but has not produced any
	// observation yet.
	ErrNoRound = errors.New("feed: no round available")
)

// Round is a single price observation as reported by a feed.
type Round struct {
	// Answer is the raw price at Decimals precision. May be zero or
	// negative on a misbehaving feed; callers must validate.
	Answer *big.Int

	// UpdatedAt is the feed-reported production time of the answer.
	UpdatedAt time.Time

	// AnsweredInRound is the round identifier the answer was produced in.
	// A zero value indicates the feed never completed a round.
	AnsweredInRound uint64

	// Decimals is the precision of Answer.
	Decimals uint8
}

// Source resolves the latest round for a feed reference.
type Source interface {
	LatestRoundData(ctx context.Context, ref string) (Round, error)
}
