package record

import "PixelJack/internal/game/deck"

// Delta 一次状态迁移要写回的字段集合。nil 表示"不动该字段"，
// 被拒绝的动作产出 nil Delta，绝不会只写一半。
type Delta struct {
	HostBalance   *int
	FriendBalance *int
	CurrentBet    *int
	Deck          []deck.Card
	HostHand      []deck.Card
	FriendHand    []deck.Card
	DealerHand    []deck.Card
	CurrentTurn   *Seat
	State         *State
	Log           []LogEntry // 整体替换（append-only 语义由引擎保证）

	deckSet, hostHandSet, friendHandSet, dealerHandSet bool
}

// 切片字段要区分"未设置"和"置空"，用显式 setter 标记
func (d *Delta) SetDeck(cards []deck.Card)       { d.Deck, d.deckSet = cards, true }
func (d *Delta) SetHostHand(cards []deck.Card)   { d.HostHand, d.hostHandSet = cards, true }
func (d *Delta) SetFriendHand(cards []deck.Card) { d.FriendHand, d.friendHandSet = cards, true }
func (d *Delta) SetDealerHand(cards []deck.Card) { d.DealerHand, d.dealerHandSet = cards, true }

func (d *Delta) SetBalance(seat Seat, v int) {
	if seat == SeatHost {
		d.HostBalance = &v
	} else {
		d.FriendBalance = &v
	}
}

func (d *Delta) SetHand(seat Seat, cards []deck.Card) {
	if seat == SeatHost {
		d.SetHostHand(cards)
	} else {
		d.SetFriendHand(cards)
	}
}

func (d *Delta) SetTurn(seat Seat)   { d.CurrentTurn = &seat }
func (d *Delta) SetState(s State)    { d.State = &s }
func (d *Delta) SetCurrentBet(v int) { d.CurrentBet = &v }

// Apply 把 Delta 合并到快照副本上，返回完整的下一个状态；入参不被修改
func (r *Record) Apply(d *Delta) *Record {
	next := r.Clone()
	if d == nil {
		return next
	}
	if d.HostBalance != nil {
		next.HostBalance = *d.HostBalance
	}
	if d.FriendBalance != nil {
		next.FriendBalance = *d.FriendBalance
	}
	if d.CurrentBet != nil {
		next.CurrentBet = *d.CurrentBet
	}
	if d.deckSet {
		next.Deck = append([]deck.Card(nil), d.Deck...)
	}
	if d.hostHandSet {
		next.HostHand = append([]deck.Card(nil), d.HostHand...)
	}
	if d.friendHandSet {
		next.FriendHand = append([]deck.Card(nil), d.FriendHand...)
	}
	if d.dealerHandSet {
		next.DealerHand = append([]deck.Card(nil), d.DealerHand...)
	}
	if d.CurrentTurn != nil {
		next.CurrentTurn = *d.CurrentTurn
	}
	if d.State != nil {
		next.State = *d.State
	}
	if d.Log != nil {
		next.Log = append([]LogEntry(nil), d.Log...)
	}
	return next
}
