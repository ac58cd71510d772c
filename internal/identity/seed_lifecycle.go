package identity

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrSeedNotAvailable = errors.New("seed is not available")
	ErrPasswordRequired = errors.New("password is required")
	ErrMnemonicRequired = errors.New("mnemonic is required")
	ErrPasswordLocked   = errors.New("password attempts are temporarily locked")
)

// SeedManager keeps the password-encrypted mnemonic backup of the active wallet and
// throttles password guesses. It never holds the plaintext mnemonic or the seed.
type SeedManager struct {
	mu             sync.RWMutex
	envelope       *EncryptedSeedEnvelope
	failedAttempts int
	lockedUntil    time.Time
	now            func() time.Time
}

func NewSeedManager() *SeedManager {
	return &SeedManager{now: time.Now}
}

func newSeedManagerWithClock(now func() time.Time) *SeedManager {
	return &SeedManager{now: now}
}

// Create generates a fresh mnemonic of the given entropy size and stores its backup.
// The returned words are meant to be shown once.
func (s *SeedManager) Create(bits int, password string) ([]string, error) {
	if strings.TrimSpace(password) == "" {
		return nil, ErrPasswordRequired
	}
	words, err := GenerateMnemonic(bits)
	if err != nil {
		return nil, err
	}
	if err := s.Import(words, password); err != nil {
		return nil, err
	}
	return words, nil
}

// Import validates words and replaces the stored backup.
func (s *SeedManager) Import(words []string, password string) error {
	if len(words) == 0 {
		return ErrMnemonicRequired
	}
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	if !ValidateMnemonic(words) {
		return ErrInvalidMnemonic
	}
	env, err := EncryptSeed(words, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = env
	s.resetPasswordAttemptState()
	return nil
}

// Export decrypts the stored backup.
func (s *SeedManager) Export(password string) ([]string, error) {
	if strings.TrimSpace(password) == "" {
		return nil, ErrPasswordRequired
	}
	env, err := s.unlockedEnvelope()
	if err != nil {
		return nil, err
	}

	words, err := DecryptSeed(env, password)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.onFailedPasswordAttempt()
		return nil, ErrInvalidPassword
	}
	s.mu.Lock()
	s.resetPasswordAttemptState()
	s.mu.Unlock()

	if !ValidateMnemonic(words) {
		return nil, fmt.Errorf("%w: corrupted mnemonic", ErrInvalidMnemonic)
	}
	return words, nil
}

func (s *SeedManager) ChangePassword(oldPassword, newPassword string) error {
	oldPassword = strings.TrimSpace(oldPassword)
	newPassword = strings.TrimSpace(newPassword)
	if oldPassword == "" || newPassword == "" {
		return ErrPasswordRequired
	}
	env, err := s.unlockedEnvelope()
	if err != nil {
		return err
	}

	words, err := DecryptSeed(env, oldPassword)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.onFailedPasswordAttempt()
		return ErrInvalidPassword
	}

	newEnv, err := EncryptSeed(words, newPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = newEnv
	s.resetPasswordAttemptState()
	return nil
}

// Envelope returns the stored backup for persistence by the caller, or nil.
func (s *SeedManager) Envelope() *EncryptedSeedEnvelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.envelope
}

// Restore installs a previously persisted backup.
func (s *SeedManager) Restore(env *EncryptedSeedEnvelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = env
	s.resetPasswordAttemptState()
}

func (s *SeedManager) unlockedEnvelope() (*EncryptedSeedEnvelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUnlocked(); err != nil {
		return nil, err
	}
	if s.envelope == nil {
		return nil, ErrSeedNotAvailable
	}
	return s.envelope, nil
}

func (s *SeedManager) ensureUnlocked() error {
	if s.lockedUntil.IsZero() {
		return nil
	}
	if s.now().Before(s.lockedUntil) {
		return ErrPasswordLocked
	}
	return nil
}

func (s *SeedManager) onFailedPasswordAttempt() {
	s.failedAttempts++
	backoff := failedAttemptBackoff(s.failedAttempts)
	s.lockedUntil = s.now().Add(backoff)
}

func (s *SeedManager) resetPasswordAttemptState() {
	s.failedAttempts = 0
	s.lockedUntil = time.Time{}
}

func failedAttemptBackoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	// 1s, 2s, 4s... up to 32s max.
	shift := attempt - 1
	if shift > 5 {
		shift = 5
	}
	return time.Second * time.Duration(1<<shift)
}
