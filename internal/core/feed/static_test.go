package feed

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStaticUnknownFeed(t *testing.T) {
	s := NewStatic()
	_, err := s.LatestRoundData(context.Background(), "eth-usd")
	require.ErrorIs(t, err, ErrUnknownFeed)
}

func TestStaticServesConfiguredRound(t *testing.T) {
	s := NewStatic()
	now := time.Unix(1_700_000_000, 0)
	s.Now = func() time.Time { return now }

	s.Set("eth-usd", big.NewInt(2500_0000_0000), 8, 0)

	round, err := s.LatestRoundData(context.Background(), "eth-usd")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(2500_0000_0000), round.Answer)
	require.Equal(t, uint8(8), round.Decimals)
	require.Equal(t, uint64(1), round.AnsweredInRound)
	require.True(t, round.UpdatedAt.Equal(now))
}

func TestStaticAgeSimulatesStaleness(t *testing.T) {
	s := NewStatic()
	now := time.Unix(1_700_000_000, 0)
	s.Now = func() time.Time { return now }

	s.Set("eth-usd", big.NewInt(1), 8, 2*time.Hour)

	round, err := s.LatestRoundData(context.Background(), "eth-usd")
	require.NoError(t, err)
	require.True(t, round.UpdatedAt.Equal(now.Add(-2*time.Hour)))
}

func TestStaticRoundZeroRound(t *testing.T) {
	s := NewStatic()
	s.SetRound("eth-usd", big.NewInt(100), 8, 0, 0)

	round, err := s.LatestRoundData(context.Background(), "eth-usd")
	require.NoError(t, err)
	require.Zero(t, round.AnsweredInRound)
}

func TestStaticReturnsCopies(t *testing.T) {
	s := NewStatic()
	s.Set("eth-usd", big.NewInt(42), 8, 0)

	round, err := s.LatestRoundData(context.Background(), "eth-usd")
	require.NoError(t, err)
	round.Answer.SetInt64(7)

	again, err := s.LatestRoundData(context.Background(), "eth-usd")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), again.Answer)
}
