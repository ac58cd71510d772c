package ecies

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"reflect"
	"testing"

	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/internal/platform/cryptoerr"
)

type recipient struct {
	priv       []byte
	pub        []byte
	compressed []byte
}

func newRecipient(t *testing.T, fill byte) recipient {
	t.Helper()
	priv := bytes.Repeat([]byte{fill}, keyformat.PrivateKeySize)
	pub, err := keyformat.PublicKeyFromPrivate(priv)
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	compressed, err := keyformat.CompressPublicKey(pub)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	return recipient{priv: priv, pub: pub, compressed: compressed}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	r := newRecipient(t, 0x42)
	messages := []any{
		map[string]any{"hello": "world", "n": float64(42), "nested": map[string]any{"ok": true}},
		[]any{"a", float64(1), nil},
		"plain string",
		float64(0),
		map[string]any{},
	}
	for _, msg := range messages {
		for _, pub := range [][]byte{r.pub, r.compressed} {
			env, err := Encrypt(msg, pub)
			if err != nil {
				t.Fatalf("encrypt %v: %v", msg, err)
			}
			var got any
			if err := Decrypt(env, r.priv, &got); err != nil {
				t.Fatalf("decrypt %v: %v", msg, err)
			}
			if !reflect.DeepEqual(got, msg) {
				t.Fatalf("round trip mismatch: got %#v want %#v", got, msg)
			}
		}
	}
}

func TestEnvelopeLayout(t *testing.T) {
	r := newRecipient(t, 0x42)
	msg := []byte(`{"a":1}`)
	env, err := EncryptBytes(msg, r.pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	data, err := base64.RawURLEncoding.DecodeString(env)
	if err != nil {
		t.Fatalf("envelope must be unpadded base64url: %v", err)
	}
	if len(data) != MinEnvelopeSize+len(msg) {
		t.Fatalf("expected %d bytes, got %d", MinEnvelopeSize+len(msg), len(data))
	}
	if data[0] != 0x04 {
		t.Fatalf("ephemeral key must be uncompressed, prefix 0x%02x", data[0])
	}

	again, err := EncryptBytes(msg, r.pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if again == env {
		t.Fatal("each encryption must use a fresh ephemeral key and IV")
	}
}

func TestSingleByteFlipFailsAuthentication(t *testing.T) {
	r := newRecipient(t, 0x42)
	env, err := EncryptBytes([]byte(`{"secret":"value"}`), r.pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	data, _ := base64.RawURLEncoding.DecodeString(env)
	for i := ephemeralSize; i < len(data); i++ {
		tampered := append([]byte(nil), data...)
		tampered[i] ^= 0x01
		var out any
		err := Decrypt(base64.RawURLEncoding.EncodeToString(tampered), r.priv, &out)
		if !errors.Is(err, cryptoerr.ErrAuthentication) {
			t.Fatalf("byte %d: expected ErrAuthentication, got %v", i, err)
		}
		if out != nil {
			t.Fatalf("byte %d: no plaintext may be produced", i)
		}
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	r := newRecipient(t, 0x42)
	other := newRecipient(t, 0x24)
	env, err := Encrypt(map[string]any{"a": "b"}, r.pub)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	var out any
	if err := Decrypt(env, other.priv, &out); !errors.Is(err, cryptoerr.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestDecryptRejectsShortEnvelope(t *testing.T) {
	r := newRecipient(t, 0x42)
	short := base64.RawURLEncoding.EncodeToString(make([]byte, MinEnvelopeSize-1))
	var out any
	if err := Decrypt(short, r.priv, &out); !errors.Is(err, cryptoerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := Decrypt("***", r.priv, &out); !errors.Is(err, cryptoerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad encoding, got %v", err)
	}
	if err := Decrypt(short, r.priv[:31], &out); !errors.Is(err, cryptoerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short key, got %v", err)
	}
}

func TestOpenWithImportedHandle(t *testing.T) {
	ctx := context.Background()
	r := newRecipient(t, 0x42)
	env, err := Encrypt(map[string]any{"k": "v"}, r.compressed)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	handle, err := keyformat.ImportPrivateKey(ctx, keyformat.NewSoftwareProvider(), append([]byte(nil), r.priv...))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var got map[string]any
	if err := Open(ctx, env, handle, &got); err != nil {
		t.Fatalf("open: %v", err)
	}
	if got["k"] != "v" {
		t.Fatalf("unexpected plaintext %v", got)
	}
}

func TestEncryptRejectsBadRecipient(t *testing.T) {
	if _, err := Encrypt("x", make([]byte, 33)); !errors.Is(err, cryptoerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := Encrypt(func() {}, newRecipient(t, 0x42).pub); !errors.Is(err, cryptoerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unserializable plaintext, got %v", err)
	}
}

func TestParseRecipientKey(t *testing.T) {
	r := newRecipient(t, 0x42)
	for _, in := range []string{hex.EncodeToString(r.pub), "0x" + hex.EncodeToString(r.compressed)} {
		got, err := ParseRecipientKey(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if _, err := Encrypt("x", got); err != nil {
			t.Fatalf("encrypt to parsed key: %v", err)
		}
	}
	if _, err := ParseRecipientKey("zz"); !errors.Is(err, cryptoerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := ParseRecipientKey("04ab"); !errors.Is(err, cryptoerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short key, got %v", err)
	}
}
