package testutil

import (
	"testing"

	"github.com/cory-johannsen/charsheet/content"
	"github.com/cory-johannsen/charsheet/internal/game/ruleset"
)

// Catalog loads the embedded rule catalog or fails the test.
func Catalog(t testing.TB) *ruleset.Catalog {
	t.Helper()
	c, err := ruleset.Load(content.FS)
	if err != nil {
		t.Fatalf("loading embedded catalog: %v", err)
	}
	return c
}
