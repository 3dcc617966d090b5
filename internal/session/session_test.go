package session

import (
	"net/url"
	"testing"

	"PixelJack/internal/game/deck"
	"PixelJack/internal/game/record"

	"github.com/stretchr/testify/assert"
)

func sample() *record.Record {
	return &record.Record{
		ID:            "g1",
		Host:          "Alice",
		Friend:        "Bob",
		HostBalance:   900,
		FriendBalance: 1100,
		HostHand:      []deck.Card{{Rank: "K", Suit: "spades"}},
		FriendHand:    []deck.Card{{Rank: "5", Suit: "hearts"}, {Rank: "6", Suit: "clubs"}},
		CurrentTurn:   record.SeatFriend,
		State:         record.StatePlaying,
	}
}

// ✅ 从 URL 参数解析 (gameId, role)
func TestResolve(t *testing.T) {
	params, _ := url.ParseQuery("gameId=abc123&role=guest")
	gameID, role, err := Resolve(params)
	assert.NoError(t, err)
	assert.Equal(t, "abc123", gameID)
	assert.Equal(t, RoleGuest, role)

	params, _ = url.ParseQuery("gameId=abc123&role=host")
	_, role, err = Resolve(params)
	assert.NoError(t, err)
	assert.Equal(t, RoleHost, role)

	// 缺参或未知角色都算无效
	_, _, err = Resolve(url.Values{"role": {"host"}})
	assert.ErrorIs(t, err, ErrBadParams)
	_, _, err = Resolve(url.Values{"gameId": {"abc"}, "role": {"dealer"}})
	assert.ErrorIs(t, err, ErrBadParams)
	_, _, err = Resolve(url.Values{"gameId": {"abc"}})
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestRoleSeat(t *testing.T) {
	assert.Equal(t, record.SeatHost, RoleHost.Seat())
	assert.Equal(t, record.SeatFriend, RoleGuest.Seat())
}

func TestAccessors(t *testing.T) {
	rec := sample()

	assert.True(t, IsHost(rec, "Alice"))
	assert.False(t, IsHost(rec, "Bob"))

	assert.Equal(t, "Alice", PlayerName(rec, RoleHost))
	assert.Equal(t, "Bob", PlayerName(rec, RoleGuest))

	assert.Equal(t, "Bob", OpponentName(rec, RoleHost))
	assert.Equal(t, "Alice", OpponentName(rec, RoleGuest))

	assert.Len(t, OwnHand(rec, RoleHost), 1)
	assert.Len(t, OwnHand(rec, RoleGuest), 2)

	assert.False(t, IsMyTurn(rec, RoleHost))
	assert.True(t, IsMyTurn(rec, RoleGuest))

	assert.Equal(t, 900, OwnBalance(rec, RoleHost))
	assert.Equal(t, 1100, OwnBalance(rec, RoleGuest))
}

// nil 记录不恐慌
func TestAccessorsNilRecord(t *testing.T) {
	assert.False(t, IsHost(nil, "Alice"))
	assert.Empty(t, PlayerName(nil, RoleHost))
	assert.Nil(t, OwnHand(nil, RoleHost))
	assert.False(t, IsMyTurn(nil, RoleHost))
	assert.Zero(t, OwnBalance(nil, RoleHost))
}
