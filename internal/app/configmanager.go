package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/cafedesk/cafedesk/internal/domain"
)

const configCacheTTL = 30 * time.Second

// ConfigManager reads sys_config rows from the mirror database with a short
// cache. Unreachable mirror yields zero values, so every consumer needs a
// sane default.
type ConfigManager struct {
	app      *Application
	mu       sync.Mutex
	cache    map[string]string
	cachedAt time.Time
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app, cache: map[string]string{}}
}

func (c *ConfigManager) load() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.cachedAt) < configCacheTTL {
		return c.cache
	}
	if c.app.gormDB == nil {
		return c.cache
	}
	var rows []domain.SysConfig
	if err := c.app.gormDB.Find(&rows).Error; err != nil {
		return c.cache
	}
	fresh := make(map[string]string, len(rows))
	for _, r := range rows {
		fresh[r.Type+"."+r.Name] = r.Value
	}
	c.cache = fresh
	c.cachedAt = time.Now()
	return c.cache
}

func (c *ConfigManager) GetString(category, key string) string {
	return c.load()[category+"."+key]
}

func (c *ConfigManager) GetInt64(category, key string) int64 {
	return cast.ToInt64(c.load()[category+"."+key])
}

func (c *ConfigManager) GetInt(category, key string) int {
	return cast.ToInt(c.load()[category+"."+key])
}

func (c *ConfigManager) GetBool(category, key string) bool {
	return cast.ToBool(c.load()[category+"."+key])
}

func (c *ConfigManager) GetFloat64(category, key string) float64 {
	return cast.ToFloat64(c.load()[category+"."+key])
}
