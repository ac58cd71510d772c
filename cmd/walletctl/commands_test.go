package main

import (
	"errors"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestAddressIndexRejectsOutOfRange(t *testing.T) {
	for _, v := range []uint{0, 7, 1<<31 - 1} {
		got, err := addressIndex(v)
		if err != nil {
			t.Fatalf("index %d: %v", v, err)
		}
		if uint(got) != v {
			t.Fatalf("index %d narrowed to %d", v, got)
		}
	}
	for _, v := range []uint64{1 << 31, 1 << 32, 1<<32 + 5} {
		_, err := addressIndex(uint(v))
		var coder cli.ExitCoder
		if !errors.As(err, &coder) || coder.ExitCode() != exitInvalidInput {
			t.Fatalf("index %d: expected invalid input exit, got %v", v, err)
		}
	}
}

func TestExitCodeMapsErrors(t *testing.T) {
	if got := exitCode(cli.Exit("bad", exitRejected)); got != exitRejected {
		t.Fatalf("exit coder: got %d", got)
	}
	if got := exitCode(errors.New("boom")); got != exitCryptoFailed {
		t.Fatalf("plain error: got %d", got)
	}
}
