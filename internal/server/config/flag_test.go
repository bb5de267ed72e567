package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{name: "all flags", args: []string{
			"-a", "127.0.0.1:9090", "-d", "db", "-s", "secret", "-m", "EdDSA", "-k", "00ff",
			"-i", "iss", "-u", "aud", "-t", "5", "-r", "60",
			"-g", "mlkem768", "-b", "3072", "-v", "1", "-w", "4",
		},
			expected: &Config{
				EndpointAddrGRPC:             "127.0.0.1:9090",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				SigningAlgorithm:             "EdDSA",
				SigningKeySeed:               "00ff",
				TokenIssuer:                  "iss",
				TokenAudience:                "aud",
				AccessTokenValidityDuration:  5 * time.Minute,
				RefreshTokenValidityDuration: time.Hour,
				KeyAlgorithm:                 "mlkem768",
				RSAKeyBits:                   3072,
				KDFVersion:                   1,
				KDFWorkers:                   4,
			}},
		{name: "foreign flags ignored", args: []string{"-x", "1", "-a", ":1", "--verbose"},
			expected: &Config{EndpointAddrGRPC: ":1"}},
		{name: "bad int", args: []string{"-w", "many"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
