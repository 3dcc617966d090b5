package history

import (
	"context"
	"database/sql"
	"time"

	"PixelJack/internal/game/deck"
	"PixelJack/internal/game/record"
)

// Round 一局结算完的快照，写进归档库
type Round struct {
	GameID        string
	Host          string
	Friend        string
	Bet           int
	HostValue     int
	FriendValue   int
	DealerValue   int
	HostBalance   int
	FriendBalance int
	FinishedAt    time.Time
}

type Recorder interface {
	Record(ctx context.Context, r Round) error
}

// RoundFromRecord 从已结束的牌局记录里提取归档行
func RoundFromRecord(rec *record.Record, finishedAt time.Time) Round {
	return Round{
		GameID:        rec.ID,
		Host:          rec.Host,
		Friend:        rec.Friend,
		Bet:           rec.CurrentBet,
		HostValue:     deck.HandValue(rec.HostHand),
		FriendValue:   deck.HandValue(rec.FriendHand),
		DealerValue:   deck.HandValue(rec.DealerHand),
		HostBalance:   rec.HostBalance,
		FriendBalance: rec.FriendBalance,
		FinishedAt:    finishedAt,
	}
}

// PGRecorder 把结算结果写进 Postgres
type PGRecorder struct {
	db *sql.DB
}

func NewPGRecorder(db *sql.DB) *PGRecorder {
	return &PGRecorder{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS blackjack_rounds (
	id             BIGSERIAL PRIMARY KEY,
	game_id        TEXT        NOT NULL,
	host           TEXT        NOT NULL,
	friend         TEXT        NOT NULL,
	bet            INTEGER     NOT NULL,
	host_value     INTEGER     NOT NULL,
	friend_value   INTEGER     NOT NULL,
	dealer_value   INTEGER     NOT NULL,
	host_balance   INTEGER     NOT NULL,
	friend_balance INTEGER     NOT NULL,
	finished_at    TIMESTAMPTZ NOT NULL
)`

func (p *PGRecorder) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PGRecorder) Record(ctx context.Context, r Round) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO blackjack_rounds
		 (game_id, host, friend, bet, host_value, friend_value, dealer_value, host_balance, friend_balance, finished_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.GameID, r.Host, r.Friend, r.Bet,
		r.HostValue, r.FriendValue, r.DealerValue,
		r.HostBalance, r.FriendBalance, r.FinishedAt,
	)
	return err
}

// Nop 没配归档库时用
type Nop struct{}

func (Nop) Record(context.Context, Round) error { return nil }
