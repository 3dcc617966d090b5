package record

import (
	"time"

	"PixelJack/internal/game/deck"
)

// 共享的对局聚合：一局游戏对应存储里的一行，两个客户端
// 都只通过 Transition Engine 产出的 Delta 来修改它。

type Seat string

const (
	SeatHost   Seat = "host"
	SeatFriend Seat = "friend"
)

// Other 返回对面座位
func (s Seat) Other() Seat {
	if s == SeatHost {
		return SeatFriend
	}
	return SeatHost
}

type State string

const (
	StateWaiting  State = "waiting"  // 收注阶段
	StatePlaying  State = "playing"  // 行动阶段
	StateFinished State = "finished" // 已结算，等自动重开
)

// 动作日志枚举，log 是本轮"谁做过什么"的唯一事实来源
const (
	ActionBet       = "bet"
	ActionHit       = "hit"
	ActionStand     = "stand"
	ActionDouble    = "double"
	ActionBust      = "bust"
	ActionTwentyOne = "twenty-one"
	ActionWin       = "win"
	ActionTie       = "tie"
	ActionBlackjack = "blackjack"
	ActionReset     = "reset"
	ActionNewGame   = "new_game"
	ActionError     = "error"
)

// LogEntry 一条已提交动作的追加记录，只增不改
type LogEntry struct {
	Action    string     `json:"action"`
	Player    string     `json:"player,omitempty"`
	Amount    int        `json:"amount,omitempty"`
	Card      *deck.Card `json:"card,omitempty"`
	Winnings  int        `json:"winnings,omitempty"`
	Refund    int        `json:"refund,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Record 持久化 schema，字段必须与存量数据逐字段兼容
type Record struct {
	ID            string      `json:"id"`
	Host          string      `json:"host"`
	Friend        string      `json:"friend"`
	HostBalance   int         `json:"host_balance"`
	FriendBalance int         `json:"friend_balance"`
	CurrentBet    int         `json:"current_bet"`
	Deck          []deck.Card `json:"deck"`
	HostHand      []deck.Card `json:"host_hand"`
	FriendHand    []deck.Card `json:"friend_hand"`
	DealerHand    []deck.Card `json:"dealer_hand"`
	CurrentTurn   Seat        `json:"current_turn"`
	State         State       `json:"state"`
	Log           []LogEntry  `json:"log"`
}

// SeatName 座位对应的显示名
func (r *Record) SeatName(seat Seat) string {
	if seat == SeatHost {
		return r.Host
	}
	return r.Friend
}

// Hand 座位当前手牌
func (r *Record) Hand(seat Seat) []deck.Card {
	if seat == SeatHost {
		return r.HostHand
	}
	return r.FriendHand
}

// Balance 座位当前余额
func (r *Record) Balance(seat Seat) int {
	if seat == SeatHost {
		return r.HostBalance
	}
	return r.FriendBalance
}

// BetBy 线性扫描 log，找某玩家本轮的 bet 记录
func (r *Record) BetBy(player string) *LogEntry {
	for i := range r.Log {
		if r.Log[i].Action == ActionBet && r.Log[i].Player == player {
			return &r.Log[i]
		}
	}
	return nil
}

// BetByOther 对手本轮是否已下注（player 为自己的名字）
func (r *Record) BetByOther(player string) *LogEntry {
	for i := range r.Log {
		if r.Log[i].Action == ActionBet && r.Log[i].Player != player {
			return &r.Log[i]
		}
	}
	return nil
}

// HasStood 某玩家是否已有 stand 记录
func (r *Record) HasStood(player string) bool {
	for i := range r.Log {
		if r.Log[i].Action == ActionStand && r.Log[i].Player == player {
			return true
		}
	}
	return false
}

// HasFinishedTurn stand / bust / twenty-one 任意一条即视为该玩家行动结束
func (r *Record) HasFinishedTurn(player string) bool {
	for i := range r.Log {
		e := &r.Log[i]
		if e.Player != player {
			continue
		}
		if e.Action == ActionStand || e.Action == ActionBust || e.Action == ActionTwentyOne {
			return true
		}
	}
	return false
}

// Clone 深拷贝，引擎以此保证对快照的纯函数性
func (r *Record) Clone() *Record {
	out := *r
	out.Deck = append([]deck.Card(nil), r.Deck...)
	out.HostHand = append([]deck.Card(nil), r.HostHand...)
	out.FriendHand = append([]deck.Card(nil), r.FriendHand...)
	out.DealerHand = append([]deck.Card(nil), r.DealerHand...)
	out.Log = append([]LogEntry(nil), r.Log...)
	return &out
}
