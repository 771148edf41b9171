package session

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/cache"
	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
)

var sessionStore *session.Store

// RedisAddress returns host and port of the configured cache, so sessions,
// OAuth state and rate limits share one Redis with separate databases.
func RedisAddress() (string, int, string) {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	cacheClient := cache.GetClient()
	if cacheClient != nil {
		addr := cacheClient.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}
	return host, port, password
}

func NewSessionStore() *session.Store {
	host, port, password := RedisAddress()

	// cache uses DB 0, sessions DB 1
	storage := redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})

	sessionStore = session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSecure:   !env.IsDev(),
		CookieSameSite: "Lax",
		Expiration:     env.GetEnvDuration("SESSION_TTL", 24*time.Hour),
		KeyLookup:      "cookie:session_id",
	})

	return sessionStore
}

func GetSessionStore() *session.Store {
	return sessionStore
}

// SetSessionStore replaces the store, e.g. with a memory-backed one in tests.
func SetSessionStore(store *session.Store) {
	sessionStore = store
}
