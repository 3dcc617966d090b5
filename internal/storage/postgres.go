package storage

import (
	"database/sql"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitPostgres 连接对局归档库。dsn 为空时跳过，服务照常跑，只是不留历史。
func InitPostgres(dsn string) error {
	if dsn == "" {
		return nil
	}
	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	return DB.Ping()
}
