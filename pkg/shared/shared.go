// Package shared holds the small cross-cutting helpers the hub's wiring
// needs: env fallbacks, log-safe connection strings, validated Redis
// clients.
package shared

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisDialTimeout bounds both the dial and the validation ping.
const redisDialTimeout = 5 * time.Second

// GetEnvOrDefault reads an environment variable, falling back when it is
// unset or empty.
func GetEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MaskDSN renders a connection string safe for logs: credentials are
// redacted, everything else kept so the target stays identifiable.
// Anything that does not parse as a URL is masked wholesale.
func MaskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

// ConnectRedis dials Redis and validates the connection with a ping before
// handing the client out, so a bad address fails at startup instead of on
// the first token lookup.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: redisDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis at %s is unreachable: %w", addr, err)
	}

	return client, nil
}
