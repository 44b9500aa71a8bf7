package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// CatalogueKey returns the cache key for the module catalogue payload.
func (r *CacheKeyStruct) CatalogueKey() string {
	return "catalogue:modules"
}

// ModuleEngagementChannel returns the Redis PubSub channel name for a
// module's live engagement updates (stars, votes).
func (r *CacheKeyStruct) ModuleEngagementChannel(moduleID int) string {
	return fmt.Sprintf("module:%d:engagement", moduleID)
}

var CacheKey = NewCacheKeyStruct()
