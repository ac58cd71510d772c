package identity

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSeedLifecycleCreateExportImport(t *testing.T) {
	mgr := NewSeedManager()

	words, err := mgr.Create(128, "pass-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !ValidateMnemonic(words) {
		t.Fatal("created mnemonic must be valid")
	}

	exported, err := mgr.Export("pass-1")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Join(exported, " ") != strings.Join(words, " ") {
		t.Fatal("exported mnemonic should match created mnemonic")
	}

	other := NewSeedManager()
	if err := other.Import(words, "pass-2"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	reexported, err := other.Export("pass-2")
	if err != nil {
		t.Fatalf("export after import failed: %v", err)
	}
	if strings.Join(reexported, " ") != strings.Join(words, " ") {
		t.Fatal("importing same mnemonic should reproduce same words")
	}
}

func TestSeedLifecycleInvalidInputs(t *testing.T) {
	mgr := NewSeedManager()
	if _, err := mgr.Export("p"); !errors.Is(err, ErrSeedNotAvailable) {
		t.Fatalf("expected ErrSeedNotAvailable, got %v", err)
	}
	if _, err := mgr.Create(128, ""); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
	if err := mgr.Import(ParseMnemonic("not a mnemonic"), "p"); !errors.Is(err, ErrInvalidMnemonic) {
		t.Fatalf("expected ErrInvalidMnemonic, got %v", err)
	}
	if err := mgr.Import(nil, "p"); !errors.Is(err, ErrMnemonicRequired) {
		t.Fatalf("expected ErrMnemonicRequired, got %v", err)
	}
	if _, err := mgr.Create(100, "p"); err == nil {
		t.Fatal("expected error for unsupported entropy size")
	}
}

func TestSeedLifecycleChangePassword(t *testing.T) {
	mgr := NewSeedManager()
	words, err := mgr.Create(256, "old-pass")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := mgr.ChangePassword("old-pass", "new-pass"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	exported, err := mgr.Export("new-pass")
	if err != nil {
		t.Fatalf("new password export failed: %v", err)
	}
	if strings.Join(exported, " ") != strings.Join(words, " ") {
		t.Fatal("mnemonic should stay unchanged after password change")
	}
	if _, err := mgr.Export("old-pass"); err == nil {
		t.Fatal("expected old password to fail after password change")
	}
}

func TestSeedLifecycleRestoreEnvelope(t *testing.T) {
	mgr := NewSeedManager()
	words, err := mgr.Create(128, "pass")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	restored := NewSeedManager()
	restored.Restore(mgr.Envelope())
	got, err := restored.Export("pass")
	if err != nil {
		t.Fatalf("export from restored envelope failed: %v", err)
	}
	if strings.Join(got, " ") != strings.Join(words, " ") {
		t.Fatal("restored envelope should yield the same mnemonic")
	}
}

func TestSeedLifecyclePasswordLockout(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	sm := newSeedManagerWithClock(clock)

	words, err := sm.Create(128, "good-pass")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !ValidateMnemonic(words) {
		t.Fatal("mnemonic should be valid")
	}

	if _, err := sm.Export("wrong-pass"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := sm.Export("wrong-pass"); !errors.Is(err, ErrPasswordLocked) {
		t.Fatalf("expected ErrPasswordLocked, got %v", err)
	}

	now = now.Add(2 * time.Second)
	if _, err := sm.Export("good-pass"); err != nil {
		t.Fatalf("expected unlock after backoff, got %v", err)
	}
}

func TestFailedAttemptBackoffCaps(t *testing.T) {
	if got := failedAttemptBackoff(0); got != 0 {
		t.Fatalf("expected zero backoff, got %v", got)
	}
	if got := failedAttemptBackoff(3); got != 4*time.Second {
		t.Fatalf("expected 4s, got %v", got)
	}
	if got := failedAttemptBackoff(20); got != 32*time.Second {
		t.Fatalf("expected 32s cap, got %v", got)
	}
}
