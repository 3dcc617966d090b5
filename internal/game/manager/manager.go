package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"PixelJack/internal/game/engine"
	"PixelJack/internal/game/record"
	"PixelJack/internal/gamestore"
	"PixelJack/internal/history"
	"PixelJack/internal/session"
	"PixelJack/internal/utils"
	"PixelJack/internal/websocket"
)

type Options struct {
	AutoResetAfter time.Duration // 结算后多久自动开新一轮
	MaxRetries     int           // 写冲突时的重算上限
}

// GameManager 管理所有对局：把引擎算出的 Delta 合并落库，
// 冲突就基于最新记录重算；结算后起倒计时自动重置；
// 有人看着的对局把每次提交推到 WebSocket 房间
type GameManager struct {
	repo     gamestore.Repo
	engine   *engine.Engine
	hub      websocket.HubInterface
	clock    quartz.Clock
	recorder history.Recorder
	opts     Options

	mu      sync.Mutex
	timers  map[string]*quartz.Timer // gameID → 自动重置倒计时
	watches map[string]func()        // gameID → 订阅取消
}

func NewGameManager(repo gamestore.Repo, eng *engine.Engine, hub websocket.HubInterface, clock quartz.Clock, recorder history.Recorder, opts Options) *GameManager {
	if opts.AutoResetAfter <= 0 {
		opts.AutoResetAfter = 5 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if recorder == nil {
		recorder = history.Nop{}
	}
	return &GameManager{
		repo:     repo,
		engine:   eng,
		hub:      hub,
		clock:    clock,
		recorder: recorder,
		opts:     opts,
		timers:   make(map[string]*quartz.Timer),
		watches:  make(map[string]func()),
	}
}

// CreateGame 建新对局，双方各 1000 起步
func (m *GameManager) CreateGame(ctx context.Context, host, friend string) (*record.Record, error) {
	rec := m.engine.NewRecord(uuid.NewString(), host, friend)
	if err := m.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	utils.Info.Printf("game created: id=%s host=%s friend=%s", rec.ID, rec.Host, rec.Friend)
	return rec, nil
}

func (m *GameManager) Get(ctx context.Context, id string) (*record.Record, error) {
	rec, _, err := m.repo.Get(ctx, id)
	return rec, err
}

// HandleAction 读-算-条件写。版本过期说明对手先提交了，
// 拿最新记录整个重算，绝不重放旧 Delta
func (m *GameManager) HandleAction(ctx context.Context, sess session.Context, action string, amount int) (*record.Record, error) {
	var lastErr error
	for attempt := 0; attempt < m.opts.MaxRetries; attempt++ {
		rec, ver, err := m.repo.Get(ctx, sess.GameID)
		if err != nil {
			return nil, err
		}
		if sess.PlayerName == "" {
			sess.PlayerName = session.PlayerName(rec, sess.Role)
		}

		var d *record.Delta
		switch action {
		case record.ActionBet:
			d, err = m.engine.PlaceBet(rec, sess, amount)
		case record.ActionHit:
			d, err = m.engine.Hit(rec, sess)
		case record.ActionStand:
			d, err = m.engine.Stand(rec, sess)
		case record.ActionDouble:
			d, err = m.engine.Double(rec, sess)
		case "split":
			d, err = m.engine.Split(rec, sess)
		case record.ActionReset:
			d, err = m.engine.Reset(rec, sess)
		default:
			err = engine.ErrInvalidAction
		}
		if err != nil {
			return nil, err
		}

		next := rec.Apply(d)
		if _, err := m.repo.Update(ctx, sess.GameID, next, ver); err != nil {
			if errors.Is(err, gamestore.ErrConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}

		m.afterCommit(rec, next)
		return next, nil
	}
	utils.Error.Printf("action %q on game %s gave up after %d conflicts", action, sess.GameID, m.opts.MaxRetries)
	return nil, lastErr
}

// afterCommit 落库成功后的副作用：倒计时开关、历史归档
func (m *GameManager) afterCommit(prev, next *record.Record) {
	if next.State == record.StateFinished {
		if prev.State != record.StateFinished {
			m.scheduleAutoReset(next.ID)
			round := history.RoundFromRecord(next, m.clock.Now())
			go func() {
				if err := m.recorder.Record(context.Background(), round); err != nil {
					utils.Error.Printf("archive round for game %s: %v", next.ID, err)
				}
			}()
		}
		return
	}
	m.cancelAutoReset(next.ID)
}

func (m *GameManager) scheduleAutoReset(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[gameID]; ok {
		t.Stop()
	}
	m.timers[gameID] = m.clock.AfterFunc(m.opts.AutoResetAfter, func() {
		m.mu.Lock()
		delete(m.timers, gameID)
		m.mu.Unlock()

		// 自动重置以房主身份走正常动作通道
		sess := session.Context{GameID: gameID, Role: session.RoleHost}
		if _, err := m.HandleAction(context.Background(), sess, record.ActionReset, 0); err != nil {
			if !errors.Is(err, gamestore.ErrNotFound) {
				utils.Error.Printf("auto reset game %s: %v", gameID, err)
			}
		}
	})
}

func (m *GameManager) cancelAutoReset(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.timers[gameID]; ok {
		t.Stop()
		delete(m.timers, gameID)
	}
}

// WatchGame 订阅存储层的提交流，推给该局的 WebSocket 房间。
// 房间第一个观众进来时由 Hub 回调触发
func (m *GameManager) WatchGame(gameID string) {
	m.mu.Lock()
	if _, ok := m.watches[gameID]; ok {
		m.mu.Unlock()
		return
	}
	ch, cancel, err := m.repo.Subscribe(context.Background(), gameID)
	if err != nil {
		m.mu.Unlock()
		utils.Error.Printf("subscribe game %s: %v", gameID, err)
		return
	}
	m.watches[gameID] = cancel
	m.mu.Unlock()

	go func() {
		// 先推一份当前状态，新进来的观众不用等下一次提交
		if rec, _, err := m.repo.Get(context.Background(), gameID); err == nil {
			m.hub.BroadcastToGame(gameID, websocket.OutgoingMessage{Event: "game_state", Data: rec})
		}
		for rec := range ch {
			m.hub.BroadcastToGame(gameID, websocket.OutgoingMessage{Event: "game_state", Data: rec})
		}
	}()
}

func (m *GameManager) UnwatchGame(gameID string) {
	m.mu.Lock()
	cancel, ok := m.watches[gameID]
	if ok {
		delete(m.watches, gameID)
	}
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

// HandlePlayerMessage 统一入口（来自 Hub.Incoming）
func (m *GameManager) HandlePlayerMessage(msg websocket.IncomingMessage) {
	switch msg.Event {

	case "player_action":
		sess := session.Context{GameID: msg.GameID, Role: session.Role(msg.Role)}
		if _, err := m.HandleAction(context.Background(), sess, msg.Action, msg.Amount); err != nil {
			// 成功路径由 store 订阅流广播，这里只播拒绝原因
			m.hub.BroadcastToGame(msg.GameID, websocket.OutgoingMessage{
				Event: "action_rejected",
				Data: map[string]any{
					"role":   msg.Role,
					"action": msg.Action,
					"reason": err.Error(),
				},
			})
		}
	}
}

func (m *GameManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
	for id, cancel := range m.watches {
		cancel()
		delete(m.watches, id)
	}
}
