// Package config loads walletctl settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"credwallet/go-core/internal/credential"
	"credwallet/go-core/internal/did"
	"credwallet/go-core/internal/identity"
	"credwallet/go-core/internal/jwt"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DIDMethod         string
	Entity            did.Entity
	Derivation        identity.Path
	ClockSkew         time.Duration
	TokenTTL          time.Duration
	StorageOnlyFields []string
	StorePath         string
	StoreSecret       string
	OpsPerSecond      float64
	Burst             int
	LogJSON           bool
	LogDebug          bool
}

func Default() Config {
	return Config{
		DIDMethod:         did.DefaultMethod,
		Entity:            did.EntityUser,
		Derivation:        identity.DefaultPath(),
		ClockSkew:         jwt.DefaultClockSkew,
		TokenTTL:          15 * time.Minute,
		StorageOnlyFields: append([]string(nil), credential.StorageOnlyFields...),
		OpsPerSecond:      20,
		Burst:             40,
	}
}

type FileConfig struct {
	DID        FileDIDConfig        `yaml:"did"`
	Derivation FileDerivationConfig `yaml:"derivation"`
	JWT        FileJWTConfig        `yaml:"jwt"`
	Credential FileCredentialConfig `yaml:"credential"`
	Store      FileStoreConfig      `yaml:"store"`
	Limits     FileLimitsConfig     `yaml:"limits"`
	Log        FileLogConfig        `yaml:"log"`
}

type FileDIDConfig struct {
	Method    string `yaml:"method"`
	EntityTag string `yaml:"entityTag"`
}

type FileDerivationConfig struct {
	Purpose       *uint32 `yaml:"purpose"`
	CoinType      *uint32 `yaml:"coinType"`
	Account       *uint32 `yaml:"account"`
	SigningChange *uint32 `yaml:"signingChange"`
	DIDChange     *uint32 `yaml:"didChange"`
	DIDIndex      *uint32 `yaml:"didIndex"`
}

type FileJWTConfig struct {
	ClockSkew time.Duration `yaml:"clockSkew"`
	TTL       time.Duration `yaml:"ttl"`
}

type FileCredentialConfig struct {
	StorageOnlyFields []string `yaml:"storageOnlyFields"`
}

type FileStoreConfig struct {
	Path   string `yaml:"path"`
	Secret string `yaml:"secret"`
}

type FileLimitsConfig struct {
	OpsPerSecond float64 `yaml:"opsPerSecond"`
	Burst        int     `yaml:"burst"`
}

type FileLogConfig struct {
	JSON  *bool `yaml:"json"`
	Debug *bool `yaml:"debug"`
}

// LoadFromPath reads configPath, or the first default location that exists when it
// is empty. A missing explicit file or a YAML error is returned; missing defaults
// are not an error.
func LoadFromPath(configPath string) (Config, error) {
	cfg := Default()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"configs/walletctl.yaml",
			"walletctl.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if configPath != "" {
				return Config{}, err
			}
			continue
		}

		var parsed FileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		if err := Merge(&cfg, parsed); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
		break
	}

	ApplyEnvOverrides(&cfg)
	return cfg, cfg.Derivation.Validate()
}

func Merge(dst *Config, src FileConfig) error {
	if src.DID.Method != "" {
		dst.DIDMethod = src.DID.Method
	}
	if src.DID.EntityTag != "" {
		entity, err := did.ParseEntity(src.DID.EntityTag)
		if err != nil {
			return err
		}
		dst.Entity = entity
	}
	mergeUint32(&dst.Derivation.Purpose, src.Derivation.Purpose)
	mergeUint32(&dst.Derivation.CoinType, src.Derivation.CoinType)
	mergeUint32(&dst.Derivation.Account, src.Derivation.Account)
	mergeUint32(&dst.Derivation.SigningChange, src.Derivation.SigningChange)
	mergeUint32(&dst.Derivation.DIDChange, src.Derivation.DIDChange)
	mergeUint32(&dst.Derivation.DIDIndex, src.Derivation.DIDIndex)
	if src.JWT.ClockSkew != 0 {
		dst.ClockSkew = src.JWT.ClockSkew
	}
	if src.JWT.TTL != 0 {
		dst.TokenTTL = src.JWT.TTL
	}
	if src.Credential.StorageOnlyFields != nil {
		dst.StorageOnlyFields = src.Credential.StorageOnlyFields
	}
	if src.Store.Path != "" {
		dst.StorePath = src.Store.Path
	}
	if src.Store.Secret != "" {
		dst.StoreSecret = src.Store.Secret
	}
	if src.Limits.OpsPerSecond != 0 {
		dst.OpsPerSecond = src.Limits.OpsPerSecond
	}
	if src.Limits.Burst != 0 {
		dst.Burst = src.Limits.Burst
	}
	if src.Log.JSON != nil {
		dst.LogJSON = *src.Log.JSON
	}
	if src.Log.Debug != nil {
		dst.LogDebug = *src.Log.Debug
	}
	return nil
}

func mergeUint32(dst *uint32, src *uint32) {
	if src != nil {
		*dst = *src
	}
}

func ApplyEnvOverrides(cfg *Config) {
	if method := strings.TrimSpace(os.Getenv("CREDWALLET_DID_METHOD")); method != "" {
		cfg.DIDMethod = method
	}
	if path := strings.TrimSpace(os.Getenv("CREDWALLET_STORE_PATH")); path != "" {
		cfg.StorePath = path
	}
	if secret := strings.TrimSpace(os.Getenv("CREDWALLET_STORE_SECRET")); secret != "" {
		cfg.StoreSecret = secret
	}

	raw := strings.TrimSpace(os.Getenv("CREDWALLET_LOG_DEBUG"))
	if raw == "" {
		return
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return
	}
	cfg.LogDebug = v
}
