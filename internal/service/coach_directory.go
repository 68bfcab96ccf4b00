package service

import (
	"encoding/json"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte        = 1024 * 1024
	coachesCacheKey = "directory::coaches"
)

// CoachDirectoryCache keeps the serialized coach list so the public directory
// does not hit the database on every page load.
type CoachDirectoryCache struct {
	cache     *freecache.Cache
	expireSec int
}

func NewCoachDirectoryCache(sizeMB int, ttl time.Duration) *CoachDirectoryCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	expire := int(ttl.Seconds())
	if expire <= 0 {
		expire = 60
	}
	return &CoachDirectoryCache{
		cache:     freecache.NewCache(sizeMB * megabyte),
		expireSec: expire,
	}
}

func (c *CoachDirectoryCache) Get() ([]PublicProfile, bool) {
	data, err := c.cache.Get([]byte(coachesCacheKey))
	if err != nil {
		return nil, false
	}
	var coaches []PublicProfile
	if err := json.Unmarshal(data, &coaches); err != nil {
		log.Errorf("unmarshal cached coaches: %s", err)
		return nil, false
	}
	return coaches, true
}

func (c *CoachDirectoryCache) Set(coaches []PublicProfile) {
	data, err := json.Marshal(coaches)
	if err != nil {
		log.Errorf("marshal coaches for cache: %s", err)
		return
	}
	if err := c.cache.Set([]byte(coachesCacheKey), data, c.expireSec); err != nil {
		log.Errorf("set coaches cache: %s", err)
	}
}

func (c *CoachDirectoryCache) Invalidate() {
	c.cache.Del([]byte(coachesCacheKey))
}
