package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"PixelJack/internal/game/deck"
	"PixelJack/internal/game/record"
)

func TestRoundFromRecord(t *testing.T) {
	rec := &record.Record{
		ID:            "g1",
		Host:          "Alice",
		Friend:        "Bob",
		HostBalance:   1050,
		FriendBalance: 950,
		CurrentBet:    50,
		HostHand:      []deck.Card{{Rank: "K", Suit: "spades"}, {Rank: "9", Suit: "hearts"}},
		FriendHand:    []deck.Card{{Rank: "A", Suit: "clubs"}, {Rank: "5", Suit: "diamonds"}},
		DealerHand:    []deck.Card{{Rank: "10", Suit: "spades"}, {Rank: "8", Suit: "clubs"}},
		State:         record.StateFinished,
	}

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := RoundFromRecord(rec, at)

	assert.Equal(t, "g1", r.GameID)
	assert.Equal(t, "Alice", r.Host)
	assert.Equal(t, "Bob", r.Friend)
	assert.Equal(t, 50, r.Bet)
	assert.Equal(t, 19, r.HostValue)
	assert.Equal(t, 16, r.FriendValue)
	assert.Equal(t, 18, r.DealerValue)
	assert.Equal(t, 1050, r.HostBalance)
	assert.Equal(t, 950, r.FriendBalance)
	assert.Equal(t, at, r.FinishedAt)
}

func TestNopRecorder(t *testing.T) {
	assert.NoError(t, Nop{}.Record(context.Background(), Round{}))
}
