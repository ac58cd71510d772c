// Package privacylog wraps slog handlers so key material never reaches a log sink and
// identifiers are only logged as per-process fingerprints.
package privacylog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const redactedValue = "[REDACTED]"

type treatment int

const (
	keepPlain treatment = iota
	redact
	fingerprint
)

var (
	// fingerprintKey is drawn once per process, so fingerprints correlate lines of
	// one run and nothing across runs.
	fingerprintKey = newFingerprintKey()

	// Identifiers that tie a line to a holder or issuer.
	identifierKeys = map[string]struct{}{
		"did":                 {},
		"kid":                 {},
		"identity_id":         {},
		"issuer":              {},
		"subject":             {},
		"holder":              {},
		"recipient":           {},
		"verification_method": {},
		"credential_id":       {},
	}
	sensitiveKeyParts = []string{
		"token", "secret", "password", "passphrase", "authorization", "auth",
		"private", "seed", "mnemonic", "plaintext", "scalar",
	}
)

type SanitizingHandler struct {
	next slog.Handler
}

func WrapHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &SanitizingHandler{next: next}
}

func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SanitizingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(SanitizeAttr(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SanitizingHandler{next: h.next.WithAttrs(sanitizeAttrs(attrs))}
}

func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{next: h.next.WithGroup(name)}
}

// SanitizeAttr redacts secret-looking keys, replaces identifiers with fingerprints
// under a "_fp" key and logs byte slices by length only. Groups are walked.
func SanitizeAttr(attr slog.Attr) slog.Attr {
	value := attr.Value.Resolve()
	switch classify(attr.Key) {
	case redact:
		return slog.String(attr.Key, redactedValue)
	case fingerprint:
		return slog.String(attr.Key+"_fp", FingerprintID(value.String()))
	}
	switch value.Kind() {
	case slog.KindGroup:
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(sanitizeAttrs(value.Group())...)}
	case slog.KindAny:
		if b, ok := value.Any().([]byte); ok {
			return slog.String(attr.Key, fmt.Sprintf("[%d bytes]", len(b)))
		}
	}
	return slog.Attr{Key: attr.Key, Value: value}
}

// FingerprintID is a short keyed BLAKE2b digest of value, stable within the process.
func FingerprintID(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	h, err := blake2b.New256(fingerprintKey)
	if err != nil {
		return redactedValue
	}
	h.Write([]byte(trimmed))
	return "fp_" + hex.EncodeToString(h.Sum(nil)[:8])
}

func classify(key string) treatment {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, part := range sensitiveKeyParts {
		if strings.Contains(k, part) {
			return redact
		}
	}
	if _, ok := identifierKeys[k]; ok {
		return fingerprint
	}
	return keepPlain
}

func sanitizeAttrs(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, SanitizeAttr(attr))
	}
	return out
}

func newFingerprintKey() []byte {
	key := make([]byte, 32)
	// crypto/rand.Read does not fail on supported platforms.
	_, _ = rand.Read(key)
	return key
}
