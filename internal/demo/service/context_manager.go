package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/demoforge/demoforge/internal/demo/model"
	"github.com/redis/go-redis/v9"
)

const (
	contextKeyPrefix = "bizctx:"
	contextTTL       = 24 * time.Hour
)

// ContextManager holds the per-site business context. It is constructed in
// main and injected into handlers; there is no process-wide singleton. A
// redis client is used when available, otherwise a mutex-guarded in-memory
// map serves the same API. The state is advisory only.
type ContextManager struct {
	rdb *redis.Client

	mu  sync.RWMutex
	mem map[string]*model.BusinessContext
}

func NewContextManager(rdb *redis.Client) *ContextManager {
	return &ContextManager{rdb: rdb, mem: make(map[string]*model.BusinessContext)}
}

// NormalizeSite canonicalizes a website URL into the context key: scheme and
// trailing slash stripped, host lowercased.
func NormalizeSite(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSuffix(raw, "/"))
	}
	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	path := strings.TrimSuffix(u.Path, "/")
	return host + path
}

func (m *ContextManager) Get(ctx context.Context, site string) (*model.BusinessContext, error) {
	key := NormalizeSite(site)
	if key == "" {
		return nil, errors.New("empty site")
	}
	if m.rdb != nil {
		val, err := m.rdb.Get(ctx, contextKeyPrefix+key).Result()
		if err == redis.Nil {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		var bc model.BusinessContext
		if err := json.Unmarshal([]byte(val), &bc); err != nil {
			return nil, err
		}
		return &bc, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if bc, ok := m.mem[key]; ok {
		cp := *bc
		return &cp, nil
	}
	return nil, nil
}

func (m *ContextManager) Set(ctx context.Context, site string, bc *model.BusinessContext) error {
	key := NormalizeSite(site)
	if key == "" {
		return errors.New("empty site")
	}
	bc.WebsiteURL = site
	bc.UpdatedAt = time.Now().UTC()
	if m.rdb != nil {
		data, err := json.Marshal(bc)
		if err != nil {
			return err
		}
		return m.rdb.Set(ctx, contextKeyPrefix+key, data, contextTTL).Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *bc
	m.mem[key] = &cp
	return nil
}

// Merge overlays non-empty fields of in onto the stored context. Keywords
// are unioned; Extra entries are overwritten key by key.
func (m *ContextManager) Merge(ctx context.Context, site string, in *model.BusinessContext) (*model.BusinessContext, error) {
	cur, err := m.Get(ctx, site)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		cur = &model.BusinessContext{WebsiteURL: site}
	}
	if in.Name != "" {
		cur.Name = in.Name
	}
	if in.Description != "" {
		cur.Description = in.Description
	}
	if in.Industry != "" {
		cur.Industry = in.Industry
	}
	if len(in.Keywords) > 0 {
		seen := make(map[string]struct{}, len(cur.Keywords))
		for _, k := range cur.Keywords {
			seen[k] = struct{}{}
		}
		for _, k := range in.Keywords {
			if _, ok := seen[k]; !ok {
				cur.Keywords = append(cur.Keywords, k)
				seen[k] = struct{}{}
			}
		}
	}
	if len(in.Extra) > 0 {
		if cur.Extra == nil {
			cur.Extra = make(map[string]string, len(in.Extra))
		}
		for k, v := range in.Extra {
			cur.Extra[k] = v
		}
	}
	if err := m.Set(ctx, site, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (m *ContextManager) Clear(ctx context.Context, site string) error {
	key := NormalizeSite(site)
	if key == "" {
		return errors.New("empty site")
	}
	if m.rdb != nil {
		return m.rdb.Del(ctx, contextKeyPrefix+key).Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mem, key)
	return nil
}
