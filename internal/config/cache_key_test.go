package config

import "testing"

func TestCacheKeyFormats(t *testing.T) {
	if got := CacheKey.UserSessionKey(42); got != "login:42" {
		t.Fatalf("session key: %q", got)
	}
	if got := CacheKey.CatalogueKey(); got != "catalogue:modules" {
		t.Fatalf("catalogue key: %q", got)
	}
	if got := CacheKey.ModuleEngagementChannel(7); got != "module:7:engagement" {
		t.Fatalf("engagement channel: %q", got)
	}
}
