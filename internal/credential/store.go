package credential

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"credwallet/go-core/internal/securestore"

	"github.com/google/uuid"
)

const SyncStatusPending = "pending"

// Store caches credentials keyed by their hash without the store's exclusion set.
// Saved copies carry storage-only metadata; the key does not change because the
// metadata fields are always excluded.
type Store interface {
	Save(cred Credential) (string, error)
	Get(hash string) (Credential, bool, error)
	All() ([]Credential, error)
	Delete(hash string) error
	Exclusions() []string
}

// StampedFields are written by Save and belong to every exclusion set.
var StampedFields = []string{"_storedAt", "_localId", "_syncStatus"}

// ExclusionSet is StampedFields followed by extra, trimmed and deduplicated. An
// empty extra means StorageOnlyFields.
func ExclusionSet(extra []string) []string {
	if len(extra) == 0 {
		extra = StorageOnlyFields
	}
	out := make([]string, 0, len(StampedFields)+len(extra))
	seen := make(map[string]struct{}, len(StampedFields)+len(extra))
	for _, list := range [][]string{StampedFields, extra} {
		for _, f := range list {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// SameExclusions reports whether a and b name the same fields in any order.
func SameExclusions(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, f := range a {
		set[f] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, f := range b {
		if _, ok := set[f]; !ok {
			return false
		}
		other[f] = struct{}{}
	}
	return len(set) == len(other)
}

// stamp returns the cache key and a copy of cred with storage metadata filled in.
func stamp(cred Credential, exclude []string, now time.Time) (string, Credential, error) {
	key, err := HashExcluding(cred, exclude)
	if err != nil {
		return "", nil, err
	}
	out := cred.Without()
	out["_storedAt"] = now.UTC().Format(CreatedLayout)
	if _, ok := out["_localId"]; !ok {
		out["_localId"] = uuid.NewString()
	}
	if _, ok := out["_syncStatus"]; !ok {
		out["_syncStatus"] = SyncStatusPending
	}
	return key, out, nil
}

func sortedValues(all map[string]Credential) []Credential {
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Credential, 0, len(keys))
	for _, k := range keys {
		out = append(out, all[k])
	}
	return out
}

type MemoryStore struct {
	mu      sync.RWMutex
	creds   map[string]Credential
	exclude []string
	now     func() time.Time
}

// NewMemoryStore keys entries without ExclusionSet(storageOnly).
func NewMemoryStore(storageOnly ...string) *MemoryStore {
	return &MemoryStore{creds: make(map[string]Credential), exclude: ExclusionSet(storageOnly), now: time.Now}
}

func (s *MemoryStore) Exclusions() []string {
	return append([]string(nil), s.exclude...)
}

func (s *MemoryStore) Save(cred Credential) (string, error) {
	key, stamped, err := stamp(cred, s.exclude, s.now())
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[key] = stamped
	return key, nil
}

func (s *MemoryStore) Get(hash string) (Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[hash]
	return cred, ok, nil
}

func (s *MemoryStore) All() ([]Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.creds), nil
}

func (s *MemoryStore) Delete(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, hash)
	return nil
}

// FileStore keeps the cache in one JSON file, encrypted when a secret is set.
// Plaintext files from before encryption was enabled are read and re-encrypted on
// the next write.
type FileStore struct {
	mu      sync.Mutex
	path    string
	secret  string
	exclude []string
	now     func() time.Time
}

func NewFileStore(path string, storageOnly ...string) *FileStore {
	return &FileStore{path: path, exclude: ExclusionSet(storageOnly), now: time.Now}
}

func NewEncryptedFileStore(path, secret string, storageOnly ...string) *FileStore {
	path, secret = securestore.NormalizeStorageConfig(path, secret)
	return &FileStore{path: path, secret: secret, exclude: ExclusionSet(storageOnly), now: time.Now}
}

func (s *FileStore) Exclusions() []string {
	return append([]string(nil), s.exclude...)
}

func (s *FileStore) Save(cred Credential) (string, error) {
	key, stamped, err := stamp(cred, s.exclude, s.now())
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadAllLocked()
	if err != nil {
		return "", err
	}
	all[key] = stamped
	if err := securestore.WriteJSON(s.path, s.secret, all); err != nil {
		return "", err
	}
	return key, nil
}

func (s *FileStore) Get(hash string) (Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadAllLocked()
	if err != nil {
		return nil, false, err
	}
	cred, ok := all[hash]
	return cred, ok, nil
}

func (s *FileStore) All() ([]Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadAllLocked()
	if err != nil {
		return nil, err
	}
	return sortedValues(all), nil
}

func (s *FileStore) Delete(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadAllLocked()
	if err != nil {
		return err
	}
	if _, ok := all[hash]; !ok {
		return nil
	}
	delete(all, hash)
	return securestore.WriteJSON(s.path, s.secret, all)
}

func (s *FileStore) loadAllLocked() (map[string]Credential, error) {
	result := make(map[string]Credential)
	data, err := securestore.ReadFile(s.path, s.secret)
	if errors.Is(err, securestore.ErrLegacyData) {
		data, err = securestore.ReadFile(s.path, "")
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return result, nil
	}
	if err := decodeJSON(data, &result); err != nil {
		return nil, fmt.Errorf("credential store %s: %w", s.path, err)
	}
	return result, nil
}
