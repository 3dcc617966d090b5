package deck

import (
	"math/rand"
	"strconv"
)

// Card 不可变值类型：rank "2".."10","J","Q","K","A"；suit 四种花色
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

var suits = []string{"hearts", "diamonds", "clubs", "spades"}

var ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Outcome 单手 vs 庄家的结算结果
type Outcome string

const (
	OutcomePlayer Outcome = "player"
	OutcomeDealer Outcome = "dealer"
	OutcomeTie    Outcome = "tie"
)

// New 初始化一副有序的 52 张牌（固定顺序，不洗牌）
func New() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle 返回洗过的副本（Fisher–Yates），不修改入参
func Shuffle(deck []Card, rnd *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// HandValue 计算手牌点数。A 先按 11 计，超 21 时逐张降为 1
func HandValue(hand []Card) int {
	value := 0
	aces := 0
	for _, c := range hand {
		switch c.Rank {
		case "A":
			aces++
		case "K", "Q", "J":
			value += 10
		default:
			n, _ := strconv.Atoi(c.Rank)
			value += n
		}
	}
	for i := 0; i < aces; i++ {
		if value+11 <= 21 {
			value += 11
		} else {
			value++
		}
	}
	return value
}

// IsBlackjack 恰好两张且 21 点
func IsBlackjack(hand []Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}

func IsBust(hand []Card) bool {
	return HandValue(hand) > 21
}

// DealerShouldHit 庄家 16 点及以下必须要牌（软硬 17 都停牌）
func DealerShouldHit(hand []Card) bool {
	return HandValue(hand) < 17
}

// Winner 判定玩家 vs 庄家。先查玩家爆牌，再查庄家爆牌，
// 两边都爆时判庄家赢 —— 这个优先级是既定行为，不要改
func Winner(playerHand, dealerHand []Card) Outcome {
	playerValue := HandValue(playerHand)
	dealerValue := HandValue(dealerHand)

	if playerValue > 21 {
		return OutcomeDealer
	}
	if dealerValue > 21 {
		return OutcomePlayer
	}
	if playerValue > dealerValue {
		return OutcomePlayer
	}
	if dealerValue > playerValue {
		return OutcomeDealer
	}
	return OutcomeTie
}

// String 用于日志与测试输出，例如 "A♠"
func (c Card) String() string {
	symbols := map[string]string{
		"hearts":   "♥",
		"diamonds": "♦",
		"clubs":    "♣",
		"spades":   "♠",
	}
	s, ok := symbols[c.Suit]
	if !ok {
		s = "?"
	}
	return c.Rank + s
}
