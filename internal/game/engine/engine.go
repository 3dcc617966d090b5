package engine

import (
	"math/rand"
	"time"

	"PixelJack/internal/game/deck"
	"PixelJack/internal/game/record"
	"PixelJack/internal/session"
)

// Engine 状态迁移引擎：给定当前记录快照 + 会话 + 动作，
// 计算要写回的 Delta。除洗牌用的随机源和时间戳外完全纯函数，
// 快照本身从不被修改。
type Engine struct {
	rnd *rand.Rand
	now func() time.Time
}

func New(seed int64) *Engine {
	return &Engine{
		rnd: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// WithClock 测试用：固定时间戳来源
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// StartingBalance 新建对局时双方的起始筹码
const StartingBalance = 1000

// NewRecord 全新对局：waiting、空手牌、满副洗好的牌、零注
func (e *Engine) NewRecord(id, host, friend string) *record.Record {
	if friend == "" {
		friend = "Guest"
	}
	return &record.Record{
		ID:            id,
		Host:          host,
		Friend:        friend,
		HostBalance:   StartingBalance,
		FriendBalance: StartingBalance,
		CurrentBet:    0,
		Deck:          deck.Shuffle(deck.New(), e.rnd),
		HostHand:      []deck.Card{},
		FriendHand:    []deck.Card{},
		DealerHand:    []deck.Card{},
		CurrentTurn:   record.SeatHost,
		State:         record.StateWaiting,
		Log:           []record.LogEntry{},
	}
}

// draw 从牌顶抽一张；抽出的牌必须恰好进入一只手，不会凭空造牌
func draw(cards []deck.Card) (deck.Card, []deck.Card, error) {
	if len(cards) == 0 {
		return deck.Card{}, nil, ErrEmptyDeck
	}
	return cards[0], cards[1:], nil
}

// PlaceBet 收注。先手下注后仍停留在 waiting；第二个注一到
// 立即发牌（host 2 张、friend 2 张、庄家 1 张，固定顺序），
// current_bet 取两注的较大值（不补齐也不退差价，既定行为），
// 进入 playing 且 host 先行动。下注方拿到天生 blackjack 时
// 直接结束：补庄家暗牌、赔 floor(amount*2.5)。
func (e *Engine) PlaceBet(rec *record.Record, sess session.Context, amount int) (*record.Delta, error) {
	if rec.State != record.StateWaiting {
		return nil, ErrInvalidAction
	}
	if amount <= 0 {
		return nil, ErrInvalidAction
	}
	seat := sess.Role.Seat()
	if amount > rec.Balance(seat) {
		return nil, ErrInsufficientFunds
	}
	if rec.BetBy(sess.PlayerName) != nil {
		return nil, ErrDuplicateBet
	}

	d := &record.Delta{}
	d.SetBalance(seat, rec.Balance(seat)-amount)
	log := append(append([]record.LogEntry(nil), rec.Log...), record.LogEntry{
		Action: record.ActionBet, Player: sess.PlayerName, Amount: amount, Timestamp: e.now(),
	})

	otherBet := rec.BetByOther(sess.PlayerName)
	if otherBet == nil {
		// 等对手下注
		d.SetState(record.StateWaiting)
		d.Log = log
		return d, nil
	}

	// 双注齐了，开局发牌
	cards := append([]deck.Card(nil), rec.Deck...)
	var c deck.Card
	var err error
	hands := map[record.Seat][]deck.Card{}
	for _, s := range []record.Seat{record.SeatHost, record.SeatFriend} {
		for i := 0; i < 2; i++ {
			if c, cards, err = draw(cards); err != nil {
				return nil, err
			}
			hands[s] = append(hands[s], c)
		}
	}
	var dealer []deck.Card
	if c, cards, err = draw(cards); err != nil {
		return nil, err
	}
	dealer = append(dealer, c)

	d.SetHostHand(hands[record.SeatHost])
	d.SetFriendHand(hands[record.SeatFriend])
	d.SetDealerHand(dealer)
	d.SetCurrentBet(max(amount, otherBet.Amount))
	d.SetState(record.StatePlaying)
	d.SetTurn(record.SeatHost) // 发牌后永远 host 先手

	// 只检查"下这注的人"的起手 blackjack，对面的不看 —— 保持原样
	if deck.IsBlackjack(hands[seat]) {
		if c, cards, err = draw(cards); err != nil {
			return nil, err
		}
		d.SetDealerHand(append(dealer, c))
		d.SetState(record.StateFinished)
		winnings := amount * 5 / 2 // floor(amount * 2.5)
		d.SetBalance(seat, rec.Balance(seat)-amount+winnings)
		log = append(log, record.LogEntry{
			Action: record.ActionBlackjack, Player: sess.PlayerName, Winnings: winnings, Timestamp: e.now(),
		})
	}

	d.SetDeck(cards)
	d.Log = log
	return d, nil
}

// Hit 当前回合玩家抽一张。爆牌或正好 21 点时记录 bust/twenty-one
// 并把回合交给对面；若对面已行动结束（stand/bust/twenty-one），
// 或者行动的是 guest（后手），本轮到此为止，进入结算。
func (e *Engine) Hit(rec *record.Record, sess session.Context) (*record.Delta, error) {
	seat := sess.Role.Seat()
	if rec.State != record.StatePlaying || rec.CurrentTurn != seat {
		return nil, ErrInvalidAction
	}

	c, cards, err := draw(rec.Deck)
	if err != nil {
		return nil, err
	}
	hand := append(append([]deck.Card(nil), rec.Hand(seat)...), c)

	d := &record.Delta{}
	d.SetHand(seat, hand)
	card := c
	log := append(append([]record.LogEntry(nil), rec.Log...), record.LogEntry{
		Action: record.ActionHit, Player: sess.PlayerName, Card: &card, Timestamp: e.now(),
	})

	if value := deck.HandValue(hand); value >= 21 {
		terminal := record.ActionTwentyOne
		if value > 21 {
			terminal = record.ActionBust
		}
		log = append(log, record.LogEntry{Action: terminal, Player: sess.PlayerName, Timestamp: e.now()})
		d.SetTurn(seat.Other())

		if rec.HasFinishedTurn(rec.SeatName(seat.Other())) || seat == record.SeatFriend {
			d.Log = e.settle(rec, d, cards, seat, hand, log)
			return d, nil
		}
	}

	d.SetDeck(cards)
	d.Log = log
	return d, nil
}

// Stand 停牌并交出回合。对面已有 stand 记录、或行动方是 guest 时结算。
func (e *Engine) Stand(rec *record.Record, sess session.Context) (*record.Delta, error) {
	seat := sess.Role.Seat()
	if rec.State != record.StatePlaying || rec.CurrentTurn != seat {
		return nil, ErrInvalidAction
	}

	d := &record.Delta{}
	d.SetTurn(seat.Other())
	log := append(append([]record.LogEntry(nil), rec.Log...), record.LogEntry{
		Action: record.ActionStand, Player: sess.PlayerName, Timestamp: e.now(),
	})

	if rec.HasStood(rec.SeatName(seat.Other())) || seat == record.SeatFriend {
		d.Log = e.settle(rec, d, rec.Deck, seat, rec.Hand(seat), log)
		return d, nil
	}

	d.SetDeck(rec.Deck)
	d.Log = log
	return d, nil
}

// Double 只允许起手两张且余额够再押一份 current_bet：扣一份注、
// 抽恰好一张，然后按 stand 规则自动停牌结算。host 先手带来的
// 不对称（谁结束本轮）原样保留，不做对称化。赔付仍按 stand 规则
// 的 current_bet*2 / 退 current_bet 计，加倍的那份注不参与赔付。
func (e *Engine) Double(rec *record.Record, sess session.Context) (*record.Delta, error) {
	seat := sess.Role.Seat()
	if rec.State != record.StatePlaying || rec.CurrentTurn != seat {
		return nil, ErrInvalidAction
	}
	if len(rec.Hand(seat)) != 2 {
		return nil, ErrInvalidAction
	}
	bet := rec.CurrentBet
	if rec.Balance(seat) < bet {
		return nil, ErrInsufficientFunds
	}

	c, cards, err := draw(rec.Deck)
	if err != nil {
		return nil, err
	}
	hand := append(append([]deck.Card(nil), rec.Hand(seat)...), c)

	d := &record.Delta{}
	d.SetBalance(seat, rec.Balance(seat)-bet)
	d.SetHand(seat, hand)
	d.SetTurn(seat.Other())
	card := c
	log := append(append([]record.LogEntry(nil), rec.Log...),
		record.LogEntry{Action: record.ActionDouble, Player: sess.PlayerName, Amount: bet, Card: &card, Timestamp: e.now()},
		record.LogEntry{Action: record.ActionStand, Player: sess.PlayerName, Timestamp: e.now()},
	)

	if rec.HasStood(rec.SeatName(seat.Other())) || seat == record.SeatFriend {
		d.Log = e.settle(rec, d, cards, seat, hand, log)
		return d, nil
	}

	d.SetDeck(cards)
	d.Log = log
	return d, nil
}

// Split 合同里承认但未实现的动作，永远显式拒绝，不会静默成功
func (e *Engine) Split(rec *record.Record, sess session.Context) (*record.Delta, error) {
	return nil, ErrUnimplemented
}

// Reset 任意状态可调，但只有 host 座位有权执行，guest 的请求被
// 拒绝。换新洗好的牌、清手牌、log 只留一条 reset、清注、回到
// waiting。余额跨轮保留，只有新建对局才回到起始筹码。对已是
// waiting 的对局再调一次也安全（幂等的重新初始化）。
func (e *Engine) Reset(rec *record.Record, sess session.Context) (*record.Delta, error) {
	if sess.Role != session.RoleHost {
		return nil, ErrInvalidAction
	}

	d := &record.Delta{}
	d.SetDeck(deck.Shuffle(deck.New(), e.rnd))
	d.SetHostHand([]deck.Card{})
	d.SetFriendHand([]deck.Card{})
	d.SetDealerHand([]deck.Card{})
	d.SetCurrentBet(0)
	d.SetTurn(record.SeatHost)
	d.SetState(record.StateWaiting)
	d.Log = []record.LogEntry{{Action: record.ActionReset, Timestamp: e.now()}}
	return d, nil
}

// settle 结算：庄家先补暗牌再按 <17 规则连续抽（牌抽光就停），
// 然后两个座位各自独立和庄家比。赢家拿 current_bet*2 并记 win，
// 平局退 current_bet 记 tie，输家什么都不拿。actingSeat/actingHand
// 是本次动作后行动方的最终手牌（Delta 尚未落库，快照里还是旧的）。
func (e *Engine) settle(rec *record.Record, d *record.Delta, cards []deck.Card, actingSeat record.Seat, actingHand []deck.Card, log []record.LogEntry) []record.LogEntry {
	dealer := append([]deck.Card(nil), rec.DealerHand...)
	for len(cards) > 0 && deck.DealerShouldHit(dealer) {
		var c deck.Card
		c, cards, _ = draw(cards)
		dealer = append(dealer, c)
	}
	d.SetDealerHand(dealer)
	d.SetDeck(cards)
	d.SetState(record.StateFinished)

	bet := rec.CurrentBet
	for _, seat := range []record.Seat{record.SeatHost, record.SeatFriend} {
		hand := rec.Hand(seat)
		balance := rec.Balance(seat)
		if seat == actingSeat {
			hand = actingHand
			// double 已经在 Delta 里扣掉了加倍的那份注
			if seat == record.SeatHost && d.HostBalance != nil {
				balance = *d.HostBalance
			} else if seat == record.SeatFriend && d.FriendBalance != nil {
				balance = *d.FriendBalance
			}
		}
		switch deck.Winner(hand, dealer) {
		case deck.OutcomePlayer:
			winnings := bet * 2
			d.SetBalance(seat, balance+winnings)
			log = append(log, record.LogEntry{
				Action: record.ActionWin, Player: rec.SeatName(seat), Winnings: winnings, Timestamp: e.now(),
			})
		case deck.OutcomeTie:
			d.SetBalance(seat, balance+bet)
			log = append(log, record.LogEntry{
				Action: record.ActionTie, Player: rec.SeatName(seat), Refund: bet, Timestamp: e.now(),
			})
		}
	}
	return log
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
