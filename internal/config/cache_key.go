package config

import "fmt"

// CacheKeyStruct namespaces all Redis key builders.
type CacheKeyStruct struct{}

// CacheKey is the shared key builder instance.
var CacheKey = CacheKeyStruct{}

// AccountProfileKey returns the cache key for an account projection.
func (CacheKeyStruct) AccountProfileKey(accountID string) string {
	return fmt.Sprintf("account:%s:profile", accountID)
}

// AccountChangesChannel is the pub/sub channel carrying account mutation events.
func (CacheKeyStruct) AccountChangesChannel() string {
	return "accounts:changes"
}
