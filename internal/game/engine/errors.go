package engine

import "errors"

// 引擎级拒绝都是本地的：纯函数返回错误，不产出任何 Delta，
// 记录保持原样。Store 层的冲突/未找到在 gamestore 包里。
var (
	// ErrInvalidAction 状态或回合不对（非自己回合 hit、三张牌 double 等）
	ErrInvalidAction = errors.New("engine: action not valid in current state")
	// ErrInsufficientFunds 下注/加倍超出余额
	ErrInsufficientFunds = errors.New("engine: insufficient funds")
	// ErrDuplicateBet 本轮已有 bet 记录，绝不允许二次扣款
	ErrDuplicateBet = errors.New("engine: bet already placed this round")
	// ErrEmptyDeck 牌堆抽空，本轮作废，提示开新局
	ErrEmptyDeck = errors.New("engine: deck is empty")
	// ErrUnimplemented split 的固定答复
	ErrUnimplemented = errors.New("engine: not implemented")
)
