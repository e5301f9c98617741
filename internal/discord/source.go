package discord

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reactledger/internal/ledger/interfaces"
	"reactledger/internal/models"
	"reactledger/internal/platform/retry"
	"reactledger/internal/providers"
	"reactledger/internal/structures"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// PageSize is the largest page the REST API serves for messages and
// reaction users.
const PageSize = 100

var ErrMissingToken = errors.New("discord token is not configured")

// restClient is the part of *discordgo.Session the source needs.
type restClient interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
}

// Source reads guild history over the Discord REST API. Requests are paced
// by a token bucket and transient failures are retried.
type Source struct {
	client  restClient
	limiter *rate.Limiter
	policy  retry.Policy
	logger  providers.Logger
}

func NewSource(conf *structures.Config, logger providers.Logger) (interfaces.Source, error) {
	token := strings.TrimSpace(conf.Discord.Token)
	if token == "" {
		return newSource(nil, conf, logger), nil
	}
	if !strings.HasPrefix(token, "Bot ") {
		token = "Bot " + token
	}

	session, err := discordgo.New(token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Client = &http.Client{Timeout: 30 * time.Second}
	return newSource(session, conf, logger), nil
}

func newSource(client restClient, conf *structures.Config, logger providers.Logger) *Source {
	limit := rate.Inf
	if conf.Discord.RequestsPerSecond > 0 {
		limit = rate.Limit(conf.Discord.RequestsPerSecond)
	}

	s := &Source{
		client:  client,
		limiter: rate.NewLimiter(limit, max(conf.Discord.Burst, 1)),
		logger:  logger,
	}
	s.policy = retry.Policy{
		MaxAttempts:      conf.Discord.MaxRetries + 1,
		InitialBackoff:   conf.Discord.RetryBackoff,
		RateLimitBackoff: 4 * conf.Discord.RetryBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			s.logger.Warnf(providers.TypeScan, "Discord request failed (attempt %d), retrying in %s: %s", attempt, backoff, err)
		},
	}
	return s
}

// Channels lists the text and announcement channels of a guild ordered as
// they appear in the client.
func (s *Source) Channels(ctx context.Context, guildID string) ([]models.Channel, error) {
	if s.client == nil {
		return nil, ErrMissingToken
	}
	list, err := call(ctx, s, func(opts ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
		return s.client.GuildChannels(guildID, opts...)
	})
	if err != nil {
		return nil, mapError(err)
	}

	list = slices.DeleteFunc(list, func(ch *discordgo.Channel) bool {
		return ch == nil || (ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews)
	})
	slices.SortStableFunc(list, func(a, b *discordgo.Channel) int { return a.Position - b.Position })

	channels := make([]models.Channel, 0, len(list))
	for _, ch := range list {
		channels = append(channels, models.Channel{ID: ch.ID, Name: ch.Name})
	}
	return channels, nil
}

// Messages pages backwards from the newest message. The cursor is the ID of
// the oldest message already seen.
func (s *Source) Messages(ctx context.Context, channel models.Channel, cursor string) (models.MessagePage, error) {
	if s.client == nil {
		return models.MessagePage{}, ErrMissingToken
	}
	list, err := call(ctx, s, func(opts ...discordgo.RequestOption) ([]*discordgo.Message, error) {
		return s.client.ChannelMessages(channel.ID, PageSize, cursor, "", "", opts...)
	})
	if err != nil {
		return models.MessagePage{}, mapError(err)
	}

	page := models.MessagePage{Messages: make([]models.Message, 0, len(list))}
	for _, m := range list {
		if m == nil {
			continue
		}
		page.Messages = append(page.Messages, convertMessage(channel.ID, m))
	}
	if len(list) == PageSize && len(page.Messages) > 0 {
		page.Next = page.Messages[len(page.Messages)-1].ID
	}
	return page, nil
}

// ReactionUsers pages forwards through the users behind one emoji. The
// cursor is the last user ID already seen.
func (s *Source) ReactionUsers(ctx context.Context, channel models.Channel, messageID string, emoji models.Emoji, cursor string) (models.UserPage, error) {
	if s.client == nil {
		return models.UserPage{}, ErrMissingToken
	}
	list, err := call(ctx, s, func(opts ...discordgo.RequestOption) ([]*discordgo.User, error) {
		return s.client.MessageReactions(channel.ID, messageID, emoji.APIName(), PageSize, "", cursor, opts...)
	})
	if err != nil {
		return models.UserPage{}, mapError(err)
	}

	page := models.UserPage{UserIDs: make([]string, 0, len(list))}
	for _, u := range list {
		if u == nil {
			continue
		}
		page.UserIDs = append(page.UserIDs, u.ID)
	}
	if len(list) == PageSize && len(page.UserIDs) > 0 {
		page.Next = page.UserIDs[len(page.UserIDs)-1]
	}
	return page, nil
}

func convertMessage(channelID string, m *discordgo.Message) models.Message {
	msg := models.Message{ID: m.ID, ChannelID: channelID}
	if m.ChannelID != "" {
		msg.ChannelID = m.ChannelID
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
	}
	for _, r := range m.Reactions {
		if r == nil || r.Emoji == nil {
			continue
		}
		msg.Reactions = append(msg.Reactions, models.Emoji{
			Name:     r.Emoji.Name,
			ID:       r.Emoji.ID,
			Animated: r.Emoji.Animated,
		})
	}
	return msg
}

func call[T any](ctx context.Context, s *Source, op func(opts ...discordgo.RequestOption) (T, error)) (T, error) {
	return retry.Do(ctx, s.policy, classify, func() (T, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
		return op(discordgo.WithContext(ctx))
	})
}

func classify(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response == nil {
			return retry.Retry
		}
		switch code := restErr.Response.StatusCode; {
		case code == http.StatusTooManyRequests:
			return retry.After
		case code >= http.StatusInternalServerError:
			return retry.Retry
		}
		return retry.Stop
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.Retry
	}
	return retry.Stop
}

// mapError marks permission failures with models.ErrForbidden so the
// scanner can skip the channel.
func mapError(err error) error {
	if isForbidden(err) {
		return fmt.Errorf("%w: %w", models.ErrForbidden, err)
	}
	return err
}

func isForbidden(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
}
