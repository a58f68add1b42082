package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

// storeUnderTest exercises the Store contract shared by every driver.
func storeUnderTest(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	payload := []byte(`{"version": 1}`)
	info, err := store.Put(ctx, "exports/depot.site.json", bytes.NewReader(payload), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"target": "site"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("put size = %d, want %d", info.Size, len(payload))
	}

	got, rc, err := store.Get(ctx, "exports/depot.site.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	_ = rc.Close()
	if !bytes.Equal(data, payload) {
		t.Fatalf("get returned %q", data)
	}
	if got.ContentType != "application/json" {
		t.Fatalf("content type = %q", got.ContentType)
	}
	if got.Metadata["target"] != "site" {
		t.Fatalf("metadata lost: %v", got.Metadata)
	}

	// overwriting the same key replaces the artifact
	next := []byte(`{"version": 1, "site": {}}`)
	if _, err := store.Put(ctx, "exports/depot.site.json", bytes.NewReader(next), PutOptions{}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	head, err := store.Head(ctx, "exports/depot.site.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Size != int64(len(next)) {
		t.Fatalf("head size = %d after overwrite", head.Size)
	}

	if _, err := store.Put(ctx, "exports/depot.urdf", strings.NewReader("<robot/>"), PutOptions{}); err != nil {
		t.Fatalf("put second key: %v", err)
	}
	infos, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("list returned %d entries, want 2", len(infos))
	}
	infos, err = store.List(ctx, "other/")
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("prefix filter leaked %d entries", len(infos))
	}

	removed, err := store.Delete(ctx, "exports/depot.urdf")
	if err != nil || !removed {
		t.Fatalf("delete = %v, %v", removed, err)
	}
	removed, err = store.Delete(ctx, "exports/depot.urdf")
	if err != nil || removed {
		t.Fatalf("second delete = %v, %v", removed, err)
	}
	if _, err := store.Head(ctx, "exports/depot.urdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("head of deleted key = %v, want ErrNotFound", err)
	}
	if _, _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get of missing key = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemory()
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
	storeUnderTest(t, store)
}

func TestFilesystemStoreContract(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
	storeUnderTest(t, store)
}

func TestFilesystemStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"../outside", "a/../../b", ""} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q should have been rejected", key)
		}
	}
}

func TestFactorySelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Setenv("SITEFORGE_BLOB_DRIVER", "memory")
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s, want memory", store.Driver())
	}

	t.Setenv("SITEFORGE_BLOB_DRIVER", "fs")
	t.Setenv("SITEFORGE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s, want fs", store.Driver())
	}

	t.Setenv("SITEFORGE_BLOB_DRIVER", "carrier-pigeon")
	if _, err := Open(ctx); err == nil {
		t.Fatal("unknown driver must be rejected")
	}
}
