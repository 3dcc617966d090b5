package gamestore

import (
	"context"
	"sync"
	"time"

	"PixelJack/internal/game/record"
)

// 内存实现：语义与 Redis 版对齐，测试用

type memEntry struct {
	rec     *record.Record
	ver     uint64
	touched time.Time
}

type memRepo struct {
	mu    sync.Mutex
	games map[string]*memEntry
	subs  map[string][]chan *record.Record
}

func NewMemoryRepo() Repo {
	return &memRepo{
		games: make(map[string]*memEntry),
		subs:  make(map[string][]chan *record.Record),
	}
}

func (m *memRepo) Create(ctx context.Context, rec *record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[rec.ID]; ok {
		return ErrExists
	}
	m.games[rec.ID] = &memEntry{rec: rec.Clone(), ver: 1, touched: time.Now()}
	return nil
}

func (m *memRepo) Get(ctx context.Context, id string) (*record.Record, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok {
		return nil, 0, ErrNotFound
	}
	return e.rec.Clone(), e.ver, nil
}

func (m *memRepo) Update(ctx context.Context, id string, rec *record.Record, expected uint64) (uint64, error) {
	m.mu.Lock()
	e, ok := m.games[id]
	if !ok {
		m.mu.Unlock()
		return 0, ErrNotFound
	}
	if e.ver != expected {
		m.mu.Unlock()
		return 0, ErrConflict
	}
	e.rec = rec.Clone()
	e.ver++
	e.touched = time.Now()
	ver := e.ver
	subs := append([]chan *record.Record(nil), m.subs[id]...)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- rec.Clone():
		default:
			// 订阅方不消费就丢，和 hub 的慢客户端策略一致
		}
	}
	return ver, nil
}

func (m *memRepo) Subscribe(ctx context.Context, id string) (<-chan *record.Record, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	ch := make(chan *record.Record, 16)
	m.subs[id] = append(m.subs[id], ch)

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		list := m.subs[id]
		for i, c := range list {
			if c == ch {
				m.subs[id] = append(list[:i], list[i+1:]...)
				close(ch)
				break
			}
		}
	}
	return ch, cancel, nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memRepo) Sweep(ctx context.Context, maxIdle time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxIdle)
	swept := 0
	for id, e := range m.games {
		if e.touched.Before(cutoff) {
			delete(m.games, id)
			swept++
		}
	}
	return swept, nil
}
