package testutil

import (
	"context"
	"strings"
	"testing"

	"snippets/internal/db"
	"snippets/internal/logging"
)

// OpenStore opens a private in-memory SQLite store with the schema migrated.
// The store is closed via t.Cleanup.
func OpenStore(t *testing.T) *db.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	store, err := db.Open(context.Background(), "sqlite", "file:"+name+"?mode=memory&cache=shared", logging.Nop())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}
