package ledger

import (
	"context"
	"errors"
	"fmt"
	"reactledger/internal/models"
	"reactledger/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	thumbs = models.Emoji{Name: "👍"}
	party  = models.Emoji{Name: "party", ID: "42"}
)

func messages(channelID string, n int) []models.Message {
	out := make([]models.Message, 0, n)
	for i := range n {
		out = append(out, models.Message{
			ID:        fmt.Sprintf("%s-%d", channelID, i),
			ChannelID: channelID,
			AuthorID:  "A",
		})
	}
	return out
}

func collectScan(t *testing.T, s *Scanner, ctx context.Context) ([]*models.ScannedMessage, []models.Channel, error) {
	t.Helper()
	var (
		out     []*models.ScannedMessage
		skipped []models.Channel
	)
	for msg, err := range s.Scan(ctx, "guild", func(ch models.Channel, _ error) { skipped = append(skipped, ch) }) {
		if err != nil {
			return out, skipped, err
		}
		out = append(out, msg)
	}
	return out, skipped, nil
}

func TestScanner_PagesMessagesAndUsers(t *testing.T) {
	source := &testutil.FakeSource{
		ChannelList: []models.Channel{{ID: "c1", Name: "general"}},
		History: map[string][]models.Message{
			"c1": {
				{ID: "m1", AuthorID: "A", Reactions: []models.Emoji{thumbs, party}},
				{ID: "m2", AuthorID: "B"},
				{ID: "m3", AuthorID: "C", Reactions: []models.Emoji{thumbs}},
			},
		},
		Reactors: map[string][]string{
			testutil.ReactorKey("m1", thumbs): {"B", "C", "D", "E", "F"},
			testutil.ReactorKey("m1", party):  {"A"},
			testutil.ReactorKey("m3", thumbs): {"A"},
		},
		MessagePageSize: 2,
		UserPageSize:    2,
	}

	got, skipped, err := collectScan(t, NewScanner(source, &testutil.MockLogger{}), context.Background())
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, got, 3)

	assert.Equal(t, "m1", got[0].MessageID)
	assert.Equal(t, "general", got[0].Channel.Name)
	require.Len(t, got[0].Reactions, 2)
	assert.Equal(t, []string{"B", "C", "D", "E", "F"}, got[0].Reactions[0].UserIDs)
	assert.Equal(t, party, got[0].Reactions[1].Emoji)
	assert.Empty(t, got[1].Reactions)
	assert.Equal(t, 2, source.MessageCalls)
	assert.Equal(t, 3+1+1, source.ReactionCalls)
}

func TestScanner_SkipsForbiddenChannel(t *testing.T) {
	source := &testutil.FakeSource{
		ChannelList: []models.Channel{{ID: "c1"}, {ID: "secret"}, {ID: "c2"}},
		History: map[string][]models.Message{
			"c1": messages("c1", 2),
			"c2": messages("c2", 1),
		},
		ChannelErr: map[string]error{
			"secret": fmt.Errorf("channel secret: %w", models.ErrForbidden),
		},
	}
	logger := &testutil.MockLogger{}

	got, skipped, err := collectScan(t, NewScanner(source, logger), context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, []models.Channel{{ID: "secret"}}, skipped)
	assert.Equal(t, 1, logger.Count("warn"))
}

// Messages already yielded from a channel stay yielded when access is
// lost part way through it.
func TestScanner_ForbiddenMidChannel(t *testing.T) {
	source := &testutil.FakeSource{
		ChannelList:     []models.Channel{{ID: "c1"}, {ID: "c2"}},
		History:         map[string][]models.Message{"c1": messages("c1", 4), "c2": messages("c2", 1)},
		ChannelErr:      map[string]error{"c1": models.ErrForbidden},
		ChannelErrPage:  map[string]int{"c1": 1},
		MessagePageSize: 2,
	}

	got, skipped, err := collectScan(t, NewScanner(source, &testutil.MockLogger{}), context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Len(t, skipped, 1)
}

func TestScanner_FatalErrorEndsScan(t *testing.T) {
	boom := errors.New("connection reset")
	source := &testutil.FakeSource{
		ChannelList:     []models.Channel{{ID: "c1"}, {ID: "c2"}},
		History:         map[string][]models.Message{"c1": messages("c1", 4), "c2": messages("c2", 1)},
		ChannelErr:      map[string]error{"c1": boom},
		ChannelErrPage:  map[string]int{"c1": 1},
		MessagePageSize: 2,
	}

	got, _, err := collectScan(t, NewScanner(source, &testutil.MockLogger{}), context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, got, 2)
}

func TestScanner_ChannelListError(t *testing.T) {
	source := &testutil.FakeSource{ChannelsErr: errors.New("unauthorized")}

	got, _, err := collectScan(t, NewScanner(source, &testutil.MockLogger{}), context.Background())
	assert.Error(t, err)
	assert.Empty(t, got)
}

func TestScanner_StuckCursor(t *testing.T) {
	source := &testutil.FakeSource{
		ChannelList:     []models.Channel{{ID: "c1"}},
		History:         map[string][]models.Message{"c1": messages("c1", 3)},
		MessagePageSize: 1,
		StuckCursor:     true,
	}

	_, _, err := collectScan(t, NewScanner(source, &testutil.MockLogger{}), context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stuck")
}

func TestScanner_CancelledContext(t *testing.T) {
	source := &testutil.FakeSource{
		ChannelList: []models.Channel{{ID: "c1"}},
		History:     map[string][]models.Message{"c1": messages("c1", 3)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := collectScan(t, NewScanner(source, &testutil.MockLogger{}), ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, source.MessageCalls)
}

func TestScanner_EarlyBreak(t *testing.T) {
	source := &testutil.FakeSource{
		ChannelList:     []models.Channel{{ID: "c1"}, {ID: "c2"}},
		History:         map[string][]models.Message{"c1": messages("c1", 5), "c2": messages("c2", 5)},
		MessagePageSize: 2,
	}

	n := 0
	for _, err := range NewScanner(source, &testutil.MockLogger{}).Scan(context.Background(), "guild", nil) {
		require.NoError(t, err)
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
	assert.Equal(t, 2, source.MessageCalls)
}
