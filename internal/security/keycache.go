package security

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

const DefaultKeyCacheTTL = 30 * 24 * time.Hour

// KeySource : источник JWKS издателя
type KeySource interface {
	FetchKeys(ctx context.Context) (*JSONWebKeySet, error)
}

type cachedKeySet struct {
	keys      *KeySet
	expiresAt time.Time
}

// KeyCache : кэш набора ключей проверяющей стороны.
// Снимок неизменяемый и подменяется атомарно, поэтому читатели не блокируются.
// Параллельные обновления допустимы, побеждает последняя запись.
type KeyCache struct {
	source  KeySource
	ttl     time.Duration
	now     func() time.Time
	current atomic.Pointer[cachedKeySet]
}

func NewKeyCache(source KeySource, ttl time.Duration) *KeyCache {
	if ttl <= 0 {
		ttl = DefaultKeyCacheTTL
	}
	return &KeyCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
}

// GetKeys : свежий снимок отдается без обращения к источнику.
// Если обновить ключи не удалось, отдается устаревший снимок;
// ошибка возвращается только когда кэша еще нет.
func (c *KeyCache) GetKeys(ctx context.Context) (*KeySet, error) {
	snapshot := c.current.Load()
	if snapshot != nil && c.now().Before(snapshot.expiresAt) {
		return snapshot.keys, nil
	}

	keys, err := c.fetch(ctx)
	if err != nil {
		if snapshot != nil {
			slog.WarnContext(ctx, "не удалось обновить JWKS, используется кэш", "error", err)
			return snapshot.keys, nil
		}
		return nil, fmt.Errorf("не удалось получить JWKS: %w", err)
	}

	c.current.Store(&cachedKeySet{
		keys:      keys,
		expiresAt: c.now().Add(c.ttl),
	})

	return keys, nil
}

// Invalidate : следующий GetKeys обязательно сходит к источнику.
// Прежние ключи остаются запасным вариантом на случай ошибки загрузки.
func (c *KeyCache) Invalidate() {
	snapshot := c.current.Load()
	if snapshot == nil {
		return
	}
	c.current.CompareAndSwap(snapshot, &cachedKeySet{keys: snapshot.keys})
}

func (c *KeyCache) fetch(ctx context.Context) (*KeySet, error) {
	jwks, err := c.source.FetchKeys(ctx)
	if err != nil {
		return nil, err
	}

	return NewKeySet(jwks)
}

// LocalKeySource : ключи издателя, работающего в том же процессе
type LocalKeySource struct {
	manager *KeyManager
}

func NewLocalKeySource(manager *KeyManager) *LocalKeySource {
	return &LocalKeySource{manager: manager}
}

func (s *LocalKeySource) FetchKeys(_ context.Context) (*JSONWebKeySet, error) {
	return s.manager.JWKS(), nil
}

// HTTPKeySource : JWKS удаленного издателя (/.well-known/jwks.json)
type HTTPKeySource struct {
	url    string
	client *http.Client
}

func NewHTTPKeySource(url string, timeout time.Duration) *HTTPKeySource {
	return &HTTPKeySource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPKeySource) FetchKeys(ctx context.Context) (*JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса JWKS: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("JWKS: статус %d, ответ: %s", resp.StatusCode, string(body))
	}

	var jwks JSONWebKeySet
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("ошибка разбора JWKS: %w", err)
	}

	return &jwks, nil
}
