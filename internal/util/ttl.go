package util

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ttlPattern = regexp.MustCompile(`^(\d+)\s*([smhdwy])$`)

var ttlUnits = map[string]time.Duration{
	"s": time.Second,
	"m": time.Minute,
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
	"y": 365 * 24 * time.Hour,
}

// ParseTTL : разбирает срок жизни токена.
// Поддерживаются "60m", "30d", "1y" (суффиксы s/m/h/d/w/y), число секунд ("3600")
// и формат time.ParseDuration ("1h30m"). Пустая строка дает fallback.
func ParseTTL(value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}

	var ttl time.Duration
	if match := ttlPattern.FindStringSubmatch(value); match != nil {
		amount, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("некорректный TTL %q: %w", value, err)
		}
		if ttl, err = multiplyTTL(value, amount, ttlUnits[match[2]]); err != nil {
			return 0, err
		}
	} else if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if ttl, err = multiplyTTL(value, seconds, time.Second); err != nil {
			return 0, err
		}
	} else if parsed, err := time.ParseDuration(value); err == nil {
		ttl = parsed
	} else {
		return 0, fmt.Errorf("некорректный TTL %q", value)
	}

	if ttl <= 0 {
		return 0, fmt.Errorf("TTL должен быть положительным: %q", value)
	}

	return ttl, nil
}

// multiplyTTL : amount * unit без переполнения int64
func multiplyTTL(value string, amount int64, unit time.Duration) (time.Duration, error) {
	if amount > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("TTL слишком большой: %q", value)
	}
	return time.Duration(amount) * unit, nil
}
