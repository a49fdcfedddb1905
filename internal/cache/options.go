package cache

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options holds the connection settings shared by the redis-backed caches.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

func (o Options) client() (*redis.Client, error) {
	if o.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	return redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	}), nil
}
