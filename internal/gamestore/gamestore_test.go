package gamestore

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"PixelJack/internal/game/record"
)

func sampleRecord(id string) *record.Record {
	return &record.Record{
		ID:          id,
		Host:        "Alice",
		Friend:      "Bob",
		HostBalance: 1000, FriendBalance: 1000,
		CurrentTurn: record.SeatHost,
		State:       record.StateWaiting,
	}
}

// 两种实现共用同一组行为测试
func runRepoSuite(t *testing.T, repo Repo) {
	ctx := context.Background()

	// 读不存在的对局
	_, _, err := repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	// 创建 + 读取
	rec := sampleRecord("g1")
	assert.NoError(t, repo.Create(ctx, rec))
	assert.ErrorIs(t, repo.Create(ctx, rec), ErrExists)

	got, ver, err := repo.Get(ctx, "g1")
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), ver)
	assert.Equal(t, "Alice", got.Host)
	assert.Equal(t, record.StateWaiting, got.State)

	// 条件写入：正确版本成功，版本号递增
	got.State = record.StatePlaying
	newVer, err := repo.Update(ctx, "g1", got, ver)
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), newVer)

	// ✅ 过期版本必须拒绝：双提交的第二个写入方必须重算
	stale := got.Clone()
	stale.HostBalance = 1
	_, err = repo.Update(ctx, "g1", stale, ver)
	assert.ErrorIs(t, err, ErrConflict)

	// 冲突写入没有落库
	got2, _, err := repo.Get(ctx, "g1")
	assert.NoError(t, err)
	assert.Equal(t, 1000, got2.HostBalance)
	assert.Equal(t, record.StatePlaying, got2.State)

	// 更新不存在的对局
	_, err = repo.Update(ctx, "nope", got, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	// 删除后读不到
	assert.NoError(t, repo.Delete(ctx, "g1"))
	_, _, err = repo.Get(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func runSubscribeSuite(t *testing.T, repo Repo) {
	ctx := context.Background()
	rec := sampleRecord("g2")
	assert.NoError(t, repo.Create(ctx, rec))

	ch, cancel, err := repo.Subscribe(ctx, "g2")
	assert.NoError(t, err)
	defer cancel()

	rec.State = record.StatePlaying
	rec.CurrentBet = 25
	_, err = repo.Update(ctx, "g2", rec, 1)
	assert.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, record.StatePlaying, got.State)
		assert.Equal(t, 25, got.CurrentBet)
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a change notification")
	}
}

func TestMemoryRepo(t *testing.T) {
	runRepoSuite(t, NewMemoryRepo())
}

func TestMemoryRepoSubscribe(t *testing.T) {
	runSubscribeSuite(t, NewMemoryRepo())
}

func TestMemoryRepoSweep(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	assert.NoError(t, repo.Create(ctx, sampleRecord("old")))

	// 一小时空闲阈值下新对局不会被清
	n, err := repo.Sweep(ctx, time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	time.Sleep(10 * time.Millisecond)
	n, err = repo.Sweep(ctx, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	_, _, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------- Redis（miniredis）实现 ----------

func newRedisRepo(t *testing.T) (Repo, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	assert.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisRepo(rdb), mr
}

func TestRedisRepo(t *testing.T) {
	repo, _ := newRedisRepo(t)
	runRepoSuite(t, repo)
}

func TestRedisRepoSubscribe(t *testing.T) {
	repo, _ := newRedisRepo(t)
	runSubscribeSuite(t, repo)
}

func TestRedisRepoKeys(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()
	assert.NoError(t, repo.Create(ctx, sampleRecord("gk")))

	assert.True(t, mr.Exists("bj:game:gk"))
	assert.True(t, mr.Exists("bj:game:gk:ver"))
	assert.True(t, mr.Exists("bj:game:gk:touched"))
}

func TestRedisRepoSweep(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.Create(ctx, sampleRecord("idle")))
	assert.NoError(t, repo.Create(ctx, sampleRecord("live")))

	// 手动把 idle 的最后写入时间拨到一小时前
	old := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	mr.Set("bj:game:idle:touched", old)

	n, err := repo.Sweep(ctx, 30*time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	_, _, err = repo.Get(ctx, "idle")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = repo.Get(ctx, "live")
	assert.NoError(t, err)
}
