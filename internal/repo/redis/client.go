package redis

import (
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// NewClient connects lazily; an unreachable server surfaces as errors on first use.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}
