package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"credwallet/go-core/internal/config"
	"credwallet/go-core/internal/platform/cryptoerr"
	"credwallet/go-core/internal/platform/metrics"
	"credwallet/go-core/internal/platform/privacylog"
	"credwallet/go-core/internal/platform/ratelimiter"
	"credwallet/go-core/internal/wallet"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

const (
	exitOK           = 0
	exitInvalidInput = 10
	exitCryptoFailed = 20
	exitRejected     = 30
	exitLimited      = 40
)

var flagConfig = &cli.StringFlag{
	Name:    "config",
	Usage:   "path to walletctl.yaml",
	EnvVars: []string{"CREDWALLET_CONFIG"},
}
var flagLogJSON = &cli.BoolFlag{
	Name:  "log-json",
	Usage: "write logs as JSON",
}
var flagLogDebug = &cli.BoolFlag{
	Name:  "log-debug",
	Usage: "enable debug logs",
}
var flagPrintMetrics = &cli.BoolFlag{
	Name:  "print-metrics",
	Usage: "print the operation metrics snapshot to stderr on exit",
}

type session struct {
	cfg  config.Config
	core *wallet.Core
}

func main() {
	rt := &session{}
	app := &cli.App{
		Name:  "walletctl",
		Usage: "credential wallet key, token, credential and envelope operations",
		Flags: []cli.Flag{flagConfig, flagLogJSON, flagLogDebug, flagPrintMetrics},
		Before: func(cCtx *cli.Context) error {
			return rt.init(cCtx)
		},
		After: func(cCtx *cli.Context) error {
			if rt.core != nil && cCtx.Bool(flagPrintMetrics.Name) {
				enc := json.NewEncoder(os.Stderr)
				enc.SetIndent("", "  ")
				return enc.Encode(rt.core.Metrics())
			}
			return nil
		},
		Commands: []*cli.Command{
			mnemonicCommand(rt),
			identityCommand(rt),
			jwtCommand(rt),
			vcCommand(rt),
			eciesCommand(rt),
			keyCommand(rt),
		},
		ExitErrHandler: func(_ *cli.Context, err error) {
			if err == nil {
				return
			}
			writeStderrln(err.Error(), exitCode(err))
		},
	}
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		writeStderrln(err.Error(), exitCode(err))
	}
	os.Exit(exitOK)
}

func (rt *session) init(cCtx *cli.Context) error {
	cfg, err := config.LoadFromPath(cCtx.String(flagConfig.Name))
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}
	if cCtx.IsSet(flagLogJSON.Name) {
		cfg.LogJSON = cCtx.Bool(flagLogJSON.Name)
	}
	if cCtx.IsSet(flagLogDebug.Name) {
		cfg.LogDebug = cCtx.Bool(flagLogDebug.Name)
	}
	core, err := wallet.New(cfg, wallet.Options{
		Logger:  privacylog.New(os.Stderr, cfg.LogJSON, cfg.LogDebug),
		Metrics: metrics.New(prometheus.DefaultRegisterer),
	})
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}
	rt.cfg = cfg
	rt.core = core
	return nil
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	switch {
	case errors.As(err, &coder):
		return coder.ExitCode()
	case errors.Is(err, cryptoerr.ErrInvalidInput), errors.Is(err, cryptoerr.ErrSignatureFormat):
		return exitInvalidInput
	case errors.Is(err, cryptoerr.ErrAuthentication):
		return exitRejected
	case errors.Is(err, ratelimiter.ErrLimited):
		return exitLimited
	case errors.Is(err, wallet.ErrNoIdentity), errors.Is(err, wallet.ErrNoStore):
		return exitInvalidInput
	default:
		return exitCryptoFailed
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeStderrln(msg string, code int) {
	_, _ = fmt.Fprintln(os.Stderr, strings.TrimSpace(msg))
	os.Exit(code)
}
