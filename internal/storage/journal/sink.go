package journal

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vaultd/internal/core/bank"
)

// Sink adapts a Store to the bank's event sink. Failures are logged, never
// propagated, so the journal cannot interfere with custody operations.
type Sink struct {
	store Store
	log   *logrus.Entry
}

// NewSink wraps store. log must not be nil.
func NewSink(store Store, log *logrus.Entry) *Sink {
	return &Sink{store: store, log: log}
}

// Publish implements bank.Sink. Balance-moving events carry the full entry;
// catalog events carry only the asset and the timestamp.
func (s *Sink) Publish(ev bank.Event) {
	var entry Entry
	switch e := ev.(type) {
	case bank.DepositEvent:
		entry = Entry{
			Kind: e.Kind(), User: string(e.User), Asset: string(e.Asset),
			Amount: e.Amount.String(), Balance: e.NewBalance.String(), At: e.At,
		}
	case bank.WithdrawalEvent:
		entry = Entry{
			Kind: e.Kind(), User: string(e.User), Asset: string(e.Asset),
			Amount: e.Amount.String(), Balance: e.NewBalance.String(), At: e.At,
		}
	case bank.TokenSupportedEvent:
		entry = Entry{Kind: e.Kind(), Asset: string(e.Asset), At: e.At}
	case bank.FeedUpdatedEvent:
		entry = Entry{Kind: e.Kind(), Asset: string(e.Asset), At: e.At}
	default:
		return
	}
	entry.ID = uuid.New()

	if err := s.store.Append(context.Background(), entry); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"kind":  entry.Kind,
			"user":  entry.User,
			"asset": entry.Asset,
		}).Error("journal append failed")
	}
}
