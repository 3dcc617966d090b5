package session

import (
	"errors"
	"net/url"

	"PixelJack/internal/game/deck"
	"PixelJack/internal/game/record"
)

// Role 客户端占据的座位。guest 在持久化记录里叫 friend。
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Context 一次引擎调用所需的全部会话信息，显式传参，没有环境态
type Context struct {
	GameID     string
	Role       Role
	PlayerName string
}

var ErrBadParams = errors.New("session: missing or invalid gameId/role")

// Resolve 从 URL 参数推导 (gameId, role)，对应两个浏览器各自打开的链接
func Resolve(params url.Values) (string, Role, error) {
	gameID := params.Get("gameId")
	role := Role(params.Get("role"))
	if gameID == "" {
		return "", "", ErrBadParams
	}
	if role != RoleHost && role != RoleGuest {
		return "", "", ErrBadParams
	}
	return gameID, role, nil
}

// Seat role → 记录里的座位枚举
func (r Role) Seat() record.Seat {
	if r == RoleHost {
		return record.SeatHost
	}
	return record.SeatFriend
}

// IsHost 按显示名判断，原版就是这么比的
func IsHost(rec *record.Record, playerName string) bool {
	return rec != nil && rec.Host == playerName
}

// PlayerName 座位对应的显示名
func PlayerName(rec *record.Record, role Role) string {
	if rec == nil {
		return ""
	}
	return rec.SeatName(role.Seat())
}

func OwnHand(rec *record.Record, role Role) []deck.Card {
	if rec == nil {
		return nil
	}
	return rec.Hand(role.Seat())
}

func OpponentName(rec *record.Record, role Role) string {
	if rec == nil {
		return ""
	}
	return rec.SeatName(role.Seat().Other())
}

// IsMyTurn 只在 playing 态有意义
func IsMyTurn(rec *record.Record, role Role) bool {
	if rec == nil {
		return false
	}
	return rec.CurrentTurn == role.Seat()
}

func OwnBalance(rec *record.Record, role Role) int {
	if rec == nil {
		return 0
	}
	return rec.Balance(role.Seat())
}
