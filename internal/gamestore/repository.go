package gamestore

import (
	"context"
	"errors"
	"time"

	"PixelJack/internal/game/record"
)

// 对局存储的抽象。引擎算出的 Delta 在上层合并成完整记录后，
// 通过 Update 做"带版本号的条件写入"：版本过期即拒绝，调用方
// 必须基于最新记录重算 —— 这是防止双抽牌/双扣款的关键缝。
var (
	ErrNotFound = errors.New("gamestore: game not found")
	ErrConflict = errors.New("gamestore: record changed since read")
	ErrExists   = errors.New("gamestore: game already exists")
)

type Repo interface {
	// Create 新建对局，id 已存在时报 ErrExists
	Create(ctx context.Context, rec *record.Record) error
	// Get 返回记录快照和它的版本号
	Get(ctx context.Context, id string) (*record.Record, uint64, error)
	// Update 条件写入：仅当存储中的版本仍是 expected 时落库并广播，
	// 否则 ErrConflict。成功返回新版本号。
	Update(ctx context.Context, id string, rec *record.Record, expected uint64) (uint64, error)
	// Subscribe 订阅该对局每次提交后的完整记录；返回取消函数
	Subscribe(ctx context.Context, id string) (<-chan *record.Record, func(), error)
	// Delete 运维性删除，核心逻辑从不调用
	Delete(ctx context.Context, id string) error
	// Sweep 清理闲置超过 maxIdle 的对局，返回清掉的数量
	Sweep(ctx context.Context, maxIdle time.Duration) (int, error)
}
