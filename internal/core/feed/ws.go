package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// wsMessage is the wire format pushed by a feed gateway. Answers travel as
// decimal strings so precision is never lost to JSON number parsing.
type wsMessage struct {
	Ref             string `json:"ref"`
	Answer          string `json:"answer"`
	Decimals        uint8  `json:"decimals"`
	UpdatedAt       int64  `json:"updated_at"`
	AnsweredInRound uint64 `json:"answered_in_round"`
}

// Subscriber is a Source fed by a websocket stream of rounds. It keeps the
// most recent round per feed reference and serves LatestRoundData from that
// state. The stream connection is maintained by Run, which reconnects with
// backoff until its context is cancelled.
type Subscriber struct {
	url string
	log *logrus.Entry

	mu     sync.RWMutex
	rounds map[string]Round
}

// NewSubscriber creates a subscriber for the given websocket URL. Run must be
// started before the subscriber can serve any rounds.
func NewSubscriber(url string, log *logrus.Entry) *Subscriber {
	return &Subscriber{
		url:    url,
		log:    log,
		rounds: make(map[string]Round),
	}
}

// LatestRoundData implements Source. It never blocks on the stream: a feed
// that has not pushed anything yet reports ErrNoRound.
func (s *Subscriber) LatestRoundData(ctx context.Context, ref string) (Round, error) {
	s.mu.RLock()
	round, ok := s.rounds[ref]
	s.mu.RUnlock()
	if !ok {
		return Round{}, ErrNoRound
	}
	return Round{
		Answer:          new(big.Int).Set(round.Answer),
		UpdatedAt:       round.UpdatedAt,
		AnsweredInRound: round.AnsweredInRound,
		Decimals:        round.Decimals,
	}, nil
}

// Run maintains the stream connection until ctx is cancelled. Connection
// failures are logged and retried with capped exponential backoff.
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if err := s.readLoop(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.WithError(err).Warn("feed stream disconnected, reconnecting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (s *Subscriber) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dialing feed stream %s: %w", s.url, err)
	}
	defer conn.Close()

	s.log.WithField("url", s.url).Info("feed stream connected")

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading feed stream: %w", err)
		}

		var msg wsMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.WithError(err).Warn("dropping malformed feed message")
			continue
		}
		if msg.Ref == "" {
			continue
		}

		answer, ok := new(big.Int).SetString(msg.Answer, 10)
		if !ok {
			s.log.WithField("ref", msg.Ref).Warn("dropping feed message with unparsable answer")
			continue
		}

		s.mu.Lock()
		s.rounds[msg.Ref] = Round{
			Answer:          answer,
			UpdatedAt:       time.Unix(msg.UpdatedAt, 0),
			AnsweredInRound: msg.AnsweredInRound,
			Decimals:        msg.Decimals,
		}
		s.mu.Unlock()
	}
}
