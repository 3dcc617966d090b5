package gamestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"PixelJack/internal/game/record"
)

type redisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) Repo {
	return &redisRepo{rdb: rdb}
}

// key 约定：
//
//	kv : bj:game:{id}          -> 记录 JSON（完整 GameRecord）
//	kv : bj:game:{id}:ver      -> 单调递增版本号，条件写入用
//	kv : bj:game:{id}:touched  -> 最后写入的 unix 秒，Sweep 用
//	pub: bj:game:{id}:changes  -> 每次提交广播完整记录 JSON
func gameKey(id string) string    { return fmt.Sprintf("bj:game:%s", id) }
func verKey(id string) string     { return fmt.Sprintf("bj:game:%s:ver", id) }
func touchedKey(id string) string { return fmt.Sprintf("bj:game:%s:touched", id) }
func changesKey(id string) string { return fmt.Sprintf("bj:game:%s:changes", id) }

// Lua：不存在才创建，record/ver/touched 三个 key 原子落盘
// KEYS[1]=game KEYS[2]=ver KEYS[3]=touched ARGV[1]=json ARGV[2]=now
var createScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[2]) == 1 then
		return 0
	end
	redis.call("SET", KEYS[1], ARGV[1])
	redis.call("SET", KEYS[2], 1)
	redis.call("SET", KEYS[3], ARGV[2])
	return 1
`)

// Lua：版本匹配才写入并广播，否则返回 -1 让调用方重算
// KEYS[1]=game KEYS[2]=ver KEYS[3]=touched KEYS[4]=channel
// ARGV[1]=json ARGV[2]=expected ARGV[3]=now
var casScript = redis.NewScript(`
	local ver = redis.call("GET", KEYS[2])
	if not ver then
		return -2
	end
	if ver ~= ARGV[2] then
		return -1
	end
	redis.call("SET", KEYS[1], ARGV[1])
	local new = redis.call("INCR", KEYS[2])
	redis.call("SET", KEYS[3], ARGV[3])
	redis.call("PUBLISH", KEYS[4], ARGV[1])
	return new
`)

func (r *redisRepo) Create(ctx context.Context, rec *record.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := createScript.Run(ctx, r.rdb,
		[]string{gameKey(rec.ID), verKey(rec.ID), touchedKey(rec.ID)},
		data, time.Now().Unix(),
	).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return ErrExists
	}
	return nil
}

func (r *redisRepo) Get(ctx context.Context, id string) (*record.Record, uint64, error) {
	vals, err := r.rdb.MGet(ctx, gameKey(id), verKey(id)).Result()
	if err != nil {
		return nil, 0, err
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, 0, ErrNotFound
	}
	verStr, ok := vals[1].(string)
	if !ok {
		return nil, 0, ErrNotFound
	}
	var rec record.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, 0, err
	}
	ver, err := strconv.ParseUint(verStr, 10, 64)
	if err != nil {
		return nil, 0, err
	}
	return &rec, ver, nil
}

func (r *redisRepo) Update(ctx context.Context, id string, rec *record.Record, expected uint64) (uint64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	res, err := casScript.Run(ctx, r.rdb,
		[]string{gameKey(id), verKey(id), touchedKey(id), changesKey(id)},
		data, strconv.FormatUint(expected, 10), time.Now().Unix(),
	).Int64()
	if err != nil {
		return 0, err
	}
	switch res {
	case -2:
		return 0, ErrNotFound
	case -1:
		return 0, ErrConflict
	}
	return uint64(res), nil
}

func (r *redisRepo) Subscribe(ctx context.Context, id string) (<-chan *record.Record, func(), error) {
	pubsub := r.rdb.Subscribe(ctx, changesKey(id))
	// 确认订阅建立，避免漏掉紧跟着的第一次提交
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan *record.Record, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var rec record.Record
			if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
				continue
			}
			out <- &rec
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return out, cancel, nil
}

func (r *redisRepo) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, gameKey(id), verKey(id), touchedKey(id)).Err()
}

func (r *redisRepo) Sweep(ctx context.Context, maxIdle time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxIdle).Unix()
	swept := 0

	iter := r.rdb.Scan(ctx, 0, "bj:game:*:touched", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := r.rdb.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ts > cutoff {
			continue
		}
		// bj:game:{id}:touched -> id
		id := key[len("bj:game:") : len(key)-len(":touched")]
		if err := r.Delete(ctx, id); err == nil {
			swept++
		}
	}
	return swept, iter.Err()
}
