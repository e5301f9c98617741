package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"reactledger/internal/ledger/interfaces"
	"reactledger/internal/models"
	"reactledger/internal/providers"
)

// Scanner walks the full history of a scope: every channel, every message,
// every reaction and every user behind it. It never writes to the source.
type Scanner struct {
	source interfaces.Source
	logger providers.Logger
}

func NewScanner(source interfaces.Source, logger providers.Logger) *Scanner {
	return &Scanner{source: source, logger: logger}
}

// Scan lazily yields scanned messages. Channels that deny access are
// reported through onSkip and skipped. Any other failure is yielded once
// as an error and ends the sequence.
func (s *Scanner) Scan(ctx context.Context, scope string, onSkip func(models.Channel, error)) iter.Seq2[*models.ScannedMessage, error] {
	return func(yield func(*models.ScannedMessage, error) bool) {
		channels, err := s.source.Channels(ctx, scope)
		if err != nil {
			yield(nil, fmt.Errorf("list channels of %s: %w", scope, err))
			return
		}

		for _, ch := range channels {
			stopped, err := s.scanChannel(ctx, ch, yield)
			if stopped {
				return
			}
			if err == nil {
				continue
			}
			if errors.Is(err, models.ErrForbidden) {
				s.logger.Warnf(providers.TypeScan, "Skipping channel %s (%s): %s", ch.Name, ch.ID, err)
				if onSkip != nil {
					onSkip(ch, err)
				}
				continue
			}
			yield(nil, fmt.Errorf("scan channel %s: %w", ch.ID, err))
			return
		}
	}
}

// scanChannel reports stopped when the consumer ended the iteration.
func (s *Scanner) scanChannel(ctx context.Context, ch models.Channel, yield func(*models.ScannedMessage, error) bool) (stopped bool, err error) {
	s.logger.Debugf(providers.TypeScan, "Scanning channel %s (%s)", ch.Name, ch.ID)

	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		page, err := s.source.Messages(ctx, ch, cursor)
		if err != nil {
			return false, err
		}
		for _, msg := range page.Messages {
			scanned, err := s.collect(ctx, ch, msg)
			if err != nil {
				return false, err
			}
			if !yield(scanned, nil) {
				return true, nil
			}
		}
		if page.Next == "" {
			return false, nil
		}
		if page.Next == cursor {
			return false, fmt.Errorf("message pagination stuck at %s", cursor)
		}
		cursor = page.Next
	}
}

func (s *Scanner) collect(ctx context.Context, ch models.Channel, msg models.Message) (*models.ScannedMessage, error) {
	scanned := &models.ScannedMessage{
		Channel:   ch,
		MessageID: msg.ID,
		AuthorID:  msg.AuthorID,
		Reactions: make([]models.ScannedReaction, 0, len(msg.Reactions)),
	}
	for _, emoji := range msg.Reactions {
		users, err := s.reactionUsers(ctx, ch, msg.ID, emoji)
		if err != nil {
			return nil, fmt.Errorf("reactions %s on message %s: %w", emoji.Key(), msg.ID, err)
		}
		scanned.Reactions = append(scanned.Reactions, models.ScannedReaction{Emoji: emoji, UserIDs: users})
	}
	return scanned, nil
}

func (s *Scanner) reactionUsers(ctx context.Context, ch models.Channel, messageID string, emoji models.Emoji) ([]string, error) {
	var users []string
	cursor := ""
	for {
		page, err := s.source.ReactionUsers(ctx, ch, messageID, emoji, cursor)
		if err != nil {
			return nil, err
		}
		users = append(users, page.UserIDs...)
		if page.Next == "" {
			return users, nil
		}
		if page.Next == cursor {
			return nil, fmt.Errorf("reaction pagination stuck at %s", cursor)
		}
		cursor = page.Next
	}
}
