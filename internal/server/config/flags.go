package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/keycustody/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-s", "-m", "-k", "-i", "-u", "-t", "-r", "-g", "-b", "-v", "-w"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-m string   token signing algorithm (HS256 or EdDSA)
//	-k string   hex Ed25519 seed for EdDSA
//	-i string   token issuer
//	-u string   token audience
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-g string   identity key algorithm for new accounts
//	-b int      RSA modulus size in bits
//	-v int      KDF version for new accounts
//	-w int      concurrent key derivations (0 = one per CPU)
//
// Notes:
//   - The function first filters args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningAlgorithm, "m", config.SigningAlgorithm, "token signing algorithm")
	fs.StringVar(&config.SigningKeySeed, "k", config.SigningKeySeed, "hex Ed25519 signing seed")
	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "token issuer")
	fs.StringVar(&config.TokenAudience, "u", config.TokenAudience, "token audience")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.KeyAlgorithm, "g", config.KeyAlgorithm, "identity key algorithm")
	fs.IntVar(&config.RSAKeyBits, "b", config.RSAKeyBits, "RSA key size in bits")
	fs.IntVar(&config.KDFVersion, "v", config.KDFVersion, "KDF version for new accounts")
	fs.IntVar(&config.KDFWorkers, "w", config.KDFWorkers, "concurrent key derivations")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	return nil
}
