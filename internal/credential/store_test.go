package credential

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"credwallet/go-core/internal/testutil/fsperm"
)

func TestMemoryStoreSaveGet(t *testing.T) {
	store := NewMemoryStore()
	cred := mustParse(t, sampleVC)
	want, _ := Hash(cred)

	key, err := store.Save(cred)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if key != want {
		t.Fatalf("store key must be the credential hash: %s != %s", key, want)
	}
	got, ok, err := store.Get(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got["_syncStatus"] != SyncStatusPending || got["_storedAt"] == nil || got["_localId"] == nil {
		t.Fatalf("stored copy must carry storage metadata: %v", got)
	}
	if _, ok := cred["_storedAt"]; ok {
		t.Fatal("save must not mutate the caller's credential")
	}
	if h, _ := Hash(got); h != key {
		t.Fatal("stored copy must hash like the original")
	}

	if err := store.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(key); ok {
		t.Fatal("credential must be gone after delete")
	}
}

func TestStoreExclusionsAlwaysCoverStampedFields(t *testing.T) {
	store := NewMemoryStore("_walletLabel", " _walletLabel ", "_storedAt")
	if got := store.Exclusions(); !SameExclusions(got, []string{"_storedAt", "_localId", "_syncStatus", "_walletLabel"}) {
		t.Fatalf("unexpected exclusions %v", got)
	}
	if !SameExclusions(NewMemoryStore().Exclusions(), ExclusionSet(StorageOnlyFields)) {
		t.Fatal("default store must exclude StorageOnlyFields")
	}

	cred := mustParse(t, sampleVC)
	cred["_walletLabel"] = "work"
	key, err := store.Save(cred)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Get(key)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	delete(got, "_walletLabel")
	if h, _ := HashExcluding(got, store.Exclusions()); h != key {
		t.Fatal("stamped copy must hash to its key under the store's exclusions")
	}
}

func TestFileStoreEncryptedPersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "wallet")
	path := filepath.Join(dir, "creds.enc")
	store := NewEncryptedFileStore(path, "secret")
	key, err := store.Save(mustParse(t, sampleVC))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	fsperm.AssertPrivateDirPerm(t, dir)
	fsperm.AssertPrivateFilePerm(t, path)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(raw), "DegreeCredential") {
		t.Fatal("encrypted store must not contain plaintext")
	}

	reopened := NewEncryptedFileStore(path, "secret")
	got, ok, err := reopened.Get(key)
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if h, _ := Hash(got); h != key {
		t.Fatal("reloaded credential must hash to its key")
	}
	all, err := reopened.All()
	if err != nil || len(all) != 1 {
		t.Fatalf("all: len=%d err=%v", len(all), err)
	}

	if _, _, err := NewEncryptedFileStore(path, "wrong").Get(key); err == nil {
		t.Fatal("expected error with wrong secret")
	}
}

func TestFileStoreMigratesPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.json")
	plain := NewFileStore(path)
	key, err := plain.Save(mustParse(t, sampleVC))
	if err != nil {
		t.Fatalf("save plaintext: %v", err)
	}

	encrypted := NewEncryptedFileStore(path, "secret")
	if _, ok, err := encrypted.Get(key); err != nil || !ok {
		t.Fatalf("plaintext cache must be readable: ok=%v err=%v", ok, err)
	}
	if _, err := encrypted.Save(mustParse(t, `{"id":"urn:uuid:1"}`)); err != nil {
		t.Fatalf("save encrypted: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "DegreeCredential") {
		t.Fatal("next write must encrypt the cache")
	}
	all, err := encrypted.All()
	if err != nil || len(all) != 2 {
		t.Fatalf("all: len=%d err=%v", len(all), err)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	all, err := store.All()
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty cache: len=%d err=%v", len(all), err)
	}
	if err := store.Delete("nope"); err != nil {
		t.Fatalf("delete on empty: %v", err)
	}
}
