package main

import (
	"PixelJack/config"
	"PixelJack/internal/game/engine"
	"PixelJack/internal/game/manager"
	"PixelJack/internal/gamestore"
	"PixelJack/internal/history"
	"PixelJack/internal/storage"
	"PixelJack/internal/utils"
	"PixelJack/internal/websocket"
	"net/http"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()
	utils.Init()

	//-------------------------------------------------------
	// 1. 初始化 Redis（牌局记录的真身在这里）
	//-------------------------------------------------------
	if err := storage.InitRedis(
		config.C.Redis.Addr,
		config.C.Redis.Password,
		config.C.Redis.DB,
	); err != nil {
		utils.Error.Fatalf("Redis init failed: %v", err)
	}

	//-------------------------------------------------------
	// 2. 初始化 Postgres 归档库（可选）
	//-------------------------------------------------------
	var recorder history.Recorder = history.Nop{}
	if config.C.Database.DSN != "" {
		if err := storage.InitPostgres(config.C.Database.DSN); err != nil {
			utils.Error.Fatalf("Postgres init failed: %v", err)
		}
		pg := history.NewPGRecorder(storage.DB)
		if err := pg.EnsureSchema(storage.Ctx); err != nil {
			utils.Error.Fatalf("History schema failed: %v", err)
		}
		recorder = pg
	}

	//-------------------------------------------------------
	// 3. 初始化 Gin + CORS
	//-------------------------------------------------------
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	//-------------------------------------------------------
	// 4. 初始化 Hub（必须最先启动）
	//-------------------------------------------------------
	hub := websocket.NewHub()
	go hub.Run()

	//-------------------------------------------------------
	// 5. 初始化 GameManager
	//-------------------------------------------------------
	repo := gamestore.NewRedisRepo(storage.Rdb)
	eng := engine.New(time.Now().UnixNano())

	gameMgr := manager.NewGameManager(repo, eng, hub, quartz.NewReal(), recorder, manager.Options{
		AutoResetAfter: time.Duration(config.C.Game.AutoResetSeconds) * time.Second,
		MaxRetries:     config.C.Game.MaxRetries,
	})

	// 💡 玩家消息和房间观众的回调都挂到 Manager 上
	hub.OnIncoming = gameMgr.HandlePlayerMessage
	hub.OnFirstViewer = gameMgr.WatchGame
	hub.OnLastViewer = gameMgr.UnwatchGame

	//-------------------------------------------------------
	// 6. 闲置对局清扫
	//-------------------------------------------------------
	sched, err := gameMgr.StartSweeper(
		time.Duration(config.C.Sweep.IntervalMinutes)*time.Minute,
		time.Duration(config.C.Sweep.MaxIdleMinutes)*time.Minute,
	)
	if err != nil {
		utils.Error.Fatalf("Sweeper init failed: %v", err)
	}
	defer func() { _ = sched.Shutdown() }()

	//-------------------------------------------------------
	// 7. 路由
	//-------------------------------------------------------
	gh := manager.NewHandler(gameMgr)
	r.POST("/games", gh.CreateGame)
	r.GET("/games/:id", gh.GetGame)
	r.POST("/games/:id/action", gh.Action)

	r.GET("/ws", websocket.ServeWS(hub))

	//-------------------------------------------------------
	// 8. 启动服务器
	//-------------------------------------------------------
	utils.Info.Printf("Server running on %s", config.C.Server.Port)
	r.Run(config.C.Server.Port)
}
