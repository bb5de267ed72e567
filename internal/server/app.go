// Package server wires configuration, storage, token issuing and the gRPC
// transport into a runnable key-custody server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/keycustody/internal/logging"
	"github.com/dmitrijs2005/keycustody/internal/server/auth"
	"github.com/dmitrijs2005/keycustody/internal/server/config"
	"github.com/dmitrijs2005/keycustody/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/keycustody/internal/server/services"
	"github.com/dmitrijs2005/keycustody/internal/server/workerpool"

	gs "github.com/dmitrijs2005/keycustody/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	server   *gs.GRPCServer
	migrator func(context.Context, *sql.DB) error

	// kdfWorkers is the resolved pool size; 0 in config means NumCPU.
	kdfWorkers int
}

// issuerConfig maps server settings onto the token issuer.
func issuerConfig(c *config.Config) (auth.IssuerConfig, error) {
	ic := auth.IssuerConfig{
		Algorithm: c.SigningAlgorithm,
		Issuer:    c.TokenIssuer,
		Audience:  c.TokenAudience,
		Validity:  c.AccessTokenValidityDuration,
	}

	switch c.SigningAlgorithm {
	case auth.AlgEdDSA:
		seed, err := c.SigningSeed()
		if err != nil {
			return auth.IssuerConfig{}, err
		}
		ic.Ed25519Seed = seed
	default:
		ic.Secret = []byte(c.SecretKey)
	}
	return ic, nil
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ic, err := issuerConfig(c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	issuer, err := auth.NewIssuer(ic)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	pool := workerpool.New(c.KDFWorkers)

	us, err := services.NewUserService(db, repos, issuer, pool, c, logger.With("service", "users"))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	vs := services.NewVaultKeyService(db, repos, logger.With("service", "vaultkeys"))

	s := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, vs, issuer)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		server:   s,
		migrator: repos.RunMigrations,

		kdfWorkers: pool.Size(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run migrates the schema and serves until a termination signal arrives
// or ctx ends.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)
	defer app.db.Close()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrGRPC,
		"key_algorithm", app.config.KeyAlgorithm, "kdf_version", app.config.KDFVersion,
		"kdf_workers", app.kdfWorkers)

	if err := app.migrator(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migrations failed", "error", err)
		return fmt.Errorf("migrations: %w", err)
	}

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server stopped", "error", err)
		return err
	}

	app.logger.Info(ctx, "app stopped")
	return nil
}
