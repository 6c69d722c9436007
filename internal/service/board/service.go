package board

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/store"
)

// Notifier pushes a newly stored record to the notification channel.
type Notifier interface {
	Notify(ctx context.Context, msg core.Message) error
}

// View is the history page model keyed by HH:MM label.
type View map[string]store.Entry

// Service implements message submission and history.
type Service struct {
	store    store.MessageStore
	notifier Notifier
	clock    *core.Clock
	log      *zerolog.Logger
}

// New creates a board service. notifier may be nil to disable delivery.
func New(st store.MessageStore, notifier Notifier, clock *core.Clock, logger *zerolog.Logger) *Service {
	if clock == nil {
		clock = core.NewClock(nil)
	}
	return &Service{
		store:    st,
		notifier: notifier,
		clock:    clock,
		log:      logger,
	}
}

// Submit stores a message and then offers it to the notification channel.
// Delivery failures are logged and never undo or fail the stored write.
func (s *Service) Submit(ctx context.Context, username, message string) (core.Message, error) {
	msg, err := core.NewMessage(username, message, s.clock.Now())
	if err != nil {
		return core.Message{}, err
	}

	if err := s.store.Append(ctx, msg); err != nil {
		return core.Message{}, fmt.Errorf("save message: %w", err)
	}
	s.log.Info().
		Str("username", msg.Username).
		Str("timestamp", msg.Timestamp).
		Msg("saved message")

	s.deliver(ctx, msg)
	return msg, nil
}

func (s *Service) deliver(ctx context.Context, msg core.Message) {
	if s.notifier == nil {
		return
	}
	// The client hanging up must not cut the delivery short.
	if err := s.notifier.Notify(context.WithoutCancel(ctx), msg); err != nil {
		s.log.Warn().Err(err).Str("timestamp", msg.Timestamp).Msg("notification channel unreachable")
		return
	}
	s.log.Debug().Str("timestamp", msg.Timestamp).Msg("notified channel")
}

// Messages returns the stored records. Read failures yield an empty map.
func (s *Service) Messages(ctx context.Context) store.Messages {
	messages, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load messages, treating store as empty")
		return store.Messages{}
	}
	return messages
}

// History returns the display view of the store.
func (s *Service) History(ctx context.Context) View {
	messages := s.Messages(ctx)
	view := DisplayView(messages, s.log)
	s.log.Info().Int("count", len(messages)).Msg("loaded messages")
	return view
}

// DisplayView keys every entry by its HH:MM label. Entries are applied in
// timestamp order, so the latest record wins a label collision. Keys that are
// not timestamps are skipped.
func DisplayView(messages store.Messages, logger *zerolog.Logger) View {
	keys := lo.Keys(messages)
	slices.Sort(keys)

	view := make(View, len(keys))
	for _, ts := range keys {
		label, err := core.DisplayLabel(ts)
		if err != nil {
			logger.Warn().Str("key", ts).Msg("skipping entry with malformed timestamp")
			continue
		}
		view[label] = messages[ts]
	}
	return view
}
