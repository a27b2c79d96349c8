package testkit

import (
	"context"
	"fmt"
	"net/url"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// RedisModule provides the Redis instance backing the rate cache in
// integration tests, either a dedicated container or an external instance
// named by RATESVC_TEST_REDIS_ADDR.
type RedisModule struct {
	container testcontainers.Container
	addr      string
}

// Addr returns the host:port the go-redis client should dial.
func (m *RedisModule) Addr() string { return m.addr }

// Terminate stops the backing container, if one was started.
func (m *RedisModule) Terminate(ctx context.Context) error {
	if m.container == nil {
		return nil
	}
	return m.container.Terminate(ctx)
}

// StartRedis provisions Redis for the suite. When RATESVC_TEST_REDIS_ADDR is
// set that instance is reused and no container is started.
func StartRedis(ctx context.Context, cfg *Config) (*RedisModule, error) {
	if cfg.RedisAddr != "" {
		return &RedisModule{addr: cfg.RedisAddr}, nil
	}

	ctr, err := tcredis.Run(ctx, cfg.RedisImage)
	if err != nil {
		return nil, fmt.Errorf("start redis container: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("get redis connection string: %w", err)
	}

	// go-redis takes a bare host:port, not the redis:// URL testcontainers
	// hands back.
	addr, err := redisHostPort(connStr)
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, fmt.Errorf("parse redis connection string %q: %w", connStr, err)
	}

	return &RedisModule{container: ctr, addr: addr}, nil
}

func redisHostPort(connStr string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", err
	}
	return u.Host, nil
}
