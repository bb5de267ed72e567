package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/keycustody/internal/flagx"
	"github.com/dmitrijs2005/keycustody/internal/timex"
)

// JsonConfig is the on-disk shape of the server config. Durations accept
// both "15m" style strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SigningAlgorithm             string         `json:"signing_algorithm"`
	SigningKeySeed               string         `json:"signing_key_seed"`
	TokenIssuer                  string         `json:"token_issuer"`
	TokenAudience                string         `json:"token_audience"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	KeyAlgorithm                 string         `json:"key_algorithm"`
	RSAKeyBits                   int            `json:"rsa_key_bits"`
	KDFVersion                   int            `json:"kdf_version"`
	KDFWorkers                   int            `json:"kdf_workers"`
}

// parseJson overlays the file named by -c/-config onto config. Fields
// missing from the file keep their current values.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SigningAlgorithm, c.SigningAlgorithm)
	setString(&config.SigningKeySeed, c.SigningKeySeed)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.TokenAudience, c.TokenAudience)
	setString(&config.KeyAlgorithm, c.KeyAlgorithm)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.RSAKeyBits != 0 {
		config.RSAKeyBits = c.RSAKeyBits
	}
	if c.KDFVersion != 0 {
		config.KDFVersion = c.KDFVersion
	}
	if c.KDFWorkers != 0 {
		config.KDFWorkers = c.KDFWorkers
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
