package middleware

import (
	"bearer-auth-server/config"
	"bearer-auth-server/internal/util"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript : пополнение и списание за один вызов, атомарно на стороне Redis
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimiter : token bucket на Redis по ключу ip + маршрут.
// Если Redis недоступен, запрос пропускается.
type RateLimiter struct {
	cfg    *config.RateLimitConfig
	client *redis.Client
	now    func() time.Time
}

func NewRateLimiter(cfg *config.RateLimitConfig, client *redis.Client) *RateLimiter {
	return &RateLimiter{
		cfg:    cfg,
		client: client,
		now:    time.Now,
	}
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	if l == nil || !l.cfg.Enabled || l.client == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.key(r)
		args := []interface{}{
			l.now().UnixMilli(),
			l.cfg.Capacity,
			l.cfg.RefillTokens,
			l.cfg.RefillIntervalDuration.Milliseconds(),
			l.keyTTLSeconds(),
		}

		vals, err := tokenBucketScript.Run(r.Context(), l.client, []string{key}, args...).Int64Slice()
		if err != nil || len(vals) != 3 {
			slog.WarnContext(r.Context(), "[ratelimit] ошибка Redis, запрос пропущен", "key", key, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(math.Ceil(float64(retryMs) / 1000.0))
			if secs < 0 {
				secs = 0
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			slog.InfoContext(r.Context(), "[ratelimit] запрос отклонен", "key", key, "retry_ms", retryMs)
			util.HandleError(w, "Too many requests", "RATE_LIMITED", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// keyTTLSeconds : время полного восполнения ведра, не меньше секунды
func (l *RateLimiter) keyTTLSeconds() int64 {
	refills := math.Ceil(float64(l.cfg.Capacity) / float64(l.cfg.RefillTokens))
	ttl := int64(refills * l.cfg.RefillIntervalDuration.Seconds())
	if ttl < 1 {
		return 1
	}
	return ttl + 1
}

func (l *RateLimiter) key(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || ip == "" {
		ip = r.RemoteAddr
	}
	if ip == "" {
		ip = "unknown"
	}

	return strings.Join([]string{l.cfg.Prefix, "ip", ip, "route", fmt.Sprintf("%s %s", r.Method, r.URL.Path)}, ":")
}
