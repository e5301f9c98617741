package models

import "time"

type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Message is a message as listed by the platform. AuthorID is empty when the
// author cannot be resolved.
type Message struct {
	ID        string  `json:"id"`
	ChannelID string  `json:"channel_id"`
	AuthorID  string  `json:"author_id"`
	Reactions []Emoji `json:"reactions"`
}

// MessagePage is one page of channel history. An empty Next ends the channel.
type MessagePage struct {
	Messages []Message
	Next     string
}

// UserPage is one page of users behind a reaction. An empty Next ends it.
type UserPage struct {
	UserIDs []string
	Next    string
}

type ScannedReaction struct {
	Emoji   Emoji
	UserIDs []string
}

// ScannedMessage is a message with every reacting user resolved.
type ScannedMessage struct {
	Channel   Channel
	MessageID string
	AuthorID  string
	Reactions []ScannedReaction
}

type RebuildReport struct {
	Scope                 string    `json:"scope"`
	MessagesScanned       int       `json:"messages_scanned"`
	ObservationsProcessed int       `json:"observations_processed"`
	ChannelsSkipped       int       `json:"channels_skipped"`
	Entries               int       `json:"entries"`
	Aborted               bool      `json:"aborted"`
	Error                 string    `json:"error,omitempty"`
	StartedAt             time.Time `json:"started_at"`
	FinishedAt            time.Time `json:"finished_at"`
}

func (r *RebuildReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
