package manager

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"PixelJack/internal/utils"
)

// StartSweeper 定时清掉没人动过的对局，省得 Redis 里堆死局
func (m *GameManager) StartSweeper(interval, maxIdle time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := m.repo.Sweep(context.Background(), maxIdle)
			if err != nil {
				utils.Error.Printf("sweep idle games: %v", err)
				return
			}
			if n > 0 {
				utils.Info.Printf("swept %d idle games", n)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
