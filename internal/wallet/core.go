// Package wallet composes the crypto packages into the operations a wallet front end
// calls: identity creation and import, token and credential signing, verification,
// hashing, caching and envelope encryption.
package wallet

import (
	"errors"
	"log/slog"
	"time"

	"credwallet/go-core/internal/config"
	"credwallet/go-core/internal/credential"
	"credwallet/go-core/internal/did"
	"credwallet/go-core/internal/identity"
	"credwallet/go-core/internal/jwt"
	"credwallet/go-core/internal/keyformat"
	"credwallet/go-core/internal/platform/metrics"
	"credwallet/go-core/internal/platform/privacylog"
	"credwallet/go-core/internal/platform/ratelimiter"
	"credwallet/go-core/internal/securestore"
	"credwallet/go-core/pkg/models"
)

var (
	ErrNoIdentity = errors.New("no active identity")
	ErrNoStore    = errors.New("credential store is not configured")
	// ErrStoreExclusions means a supplied store would key credentials with a
	// different storage-only field set than HashCredential uses.
	ErrStoreExclusions = errors.New("credential store exclusions differ from configuration")
)

type Options struct {
	Provider keyformat.Provider
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Limiter  *ratelimiter.MapLimiter
	Store    credential.Store
}

type Core struct {
	codec       *did.Codec
	path        identity.Path
	entity      did.Entity
	tokenTTL    time.Duration
	storageOnly []string

	provider keyformat.Provider
	tokens   *jwt.Engine
	seeds    *identity.SeedManager
	store    credential.Store
	logger   *slog.Logger
	metrics  *metrics.Recorder
	limiter  *ratelimiter.MapLimiter
	now      func() time.Time
}

// New builds a Core from cfg. Unset options get a software provider, a discarding
// logger, an unregistered recorder, a limiter from cfg and, when cfg.StorePath is
// set, a file-backed credential cache. Hashes and cache keys both leave out
// credential.ExclusionSet(cfg.StorageOnlyFields).
func New(cfg config.Config, opts Options) (*Core, error) {
	if err := cfg.Derivation.Validate(); err != nil {
		return nil, err
	}
	codec, err := did.NewCodec(cfg.DIDMethod)
	if err != nil {
		return nil, err
	}
	if opts.Provider == nil {
		opts.Provider = keyformat.NewSoftwareProvider()
	}
	if opts.Logger == nil {
		opts.Logger = privacylog.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimiter.New(cfg.OpsPerSecond, cfg.Burst, 0)
	}
	storageOnly := credential.ExclusionSet(cfg.StorageOnlyFields)
	if opts.Store == nil && cfg.StorePath != "" {
		if securestore.IsStorageConfigured(cfg.StorePath, cfg.StoreSecret) {
			opts.Store = credential.NewEncryptedFileStore(cfg.StorePath, cfg.StoreSecret, storageOnly...)
		} else {
			opts.Store = credential.NewFileStore(cfg.StorePath, storageOnly...)
		}
	}
	if opts.Store != nil && !credential.SameExclusions(opts.Store.Exclusions(), storageOnly) {
		return nil, ErrStoreExclusions
	}
	entity := cfg.Entity
	if !entity.Valid() {
		entity = did.EntityUser
	}
	return &Core{
		codec:       codec,
		path:        cfg.Derivation,
		entity:      entity,
		tokenTTL:    cfg.TokenTTL,
		storageOnly: storageOnly,
		provider:    opts.Provider,
		tokens:      jwt.NewEngine(opts.Provider, cfg.ClockSkew),
		seeds:       identity.NewSeedManager(),
		store:       opts.Store,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		limiter:     opts.Limiter,
		now:         time.Now,
	}, nil
}

func (c *Core) Codec() *did.Codec {
	return c.codec
}

func (c *Core) Metrics() models.MetricsSnapshot {
	return c.metrics.Snapshot()
}

// track starts timing op; the returned func records and logs its outcome.
func (c *Core) track(op string) func(error) {
	record := c.metrics.Track(op)
	return func(err error) {
		record(err)
		if err != nil {
			c.logger.Debug("crypto operation failed", "op", op, "error", err)
			return
		}
		c.logger.Debug("crypto operation", "op", op, "result", metrics.ResultOK)
	}
}

func (c *Core) observeVerify(op string, ok bool, started time.Time, attrs ...any) {
	result := metrics.ResultOK
	if !ok {
		result = metrics.ResultRejected
		c.logger.Warn("verification failed", append([]any{"op", op}, attrs...)...)
	}
	c.metrics.Observe(op, result, time.Since(started))
}

func (c *Core) take(id *Identity) error {
	if id == nil || id.handle == nil {
		return ErrNoIdentity
	}
	return c.limiter.Take(id.DID)
}
