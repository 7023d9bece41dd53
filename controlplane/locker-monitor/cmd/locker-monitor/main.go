package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/malbeclabs/locker/config"
	"github.com/malbeclabs/locker/controlplane/locker-monitor/internal/worker"
	"github.com/malbeclabs/locker/smartcontract/sdk/go/locker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultInterval = 1 * time.Minute
)

var (
	env             = flag.String("env", "", "the environment to run the component in (devnet, testnet, mainnet)")
	ledgerRPCURL    = flag.String("ledger-rpc-url", "", "the url of the ledger rpc")
	lockerProgramID = flag.String("program-id", "", "the id of the locker program, required unless env is localnet")
	interval        = flag.Duration("interval", defaultInterval, "interval to execute watcher ticks")
	batchSize       = flag.Int("batch-size", locker.MaxMultipleAccounts, "number of vault accounts fetched per rpc request")
	poolSize        = flag.Int("pool-size", 4, "number of vault batches fetched concurrently")
	maxRetries      = flag.Uint("max-retries", 5, "attempts per rpc call within a tick")
	verbose         = flag.Bool("verbose", false, "enable verbose logging")
	showVersion     = flag.Bool("version", false, "Print the version of the locker-monitor and exit")
	metricsAddr     = flag.String("metrics-addr", ":8080", "Address to listen on for prometheus metrics")

	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("version: %s, commit: %s, date: %s\n", version, commit, date)
		os.Exit(0)
	}

	// A missing .env is fine; flags and the process environment still apply.
	_ = godotenv.Load()

	// Initialize logger.
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.RFC3339,
	}))

	// Initialize program ID and ledger RPC URL.
	var networkConfig *config.NetworkConfig
	if *env == "" {
		if *ledgerRPCURL == "" {
			log.Error("Missing required flag", "flag", "ledger-rpc-url")
			flag.Usage()
			os.Exit(1)
		}
		if *lockerProgramID == "" {
			log.Error("Missing required flag", "flag", "program-id")
			flag.Usage()
			os.Exit(1)
		}
		programID, err := solana.PublicKeyFromBase58(*lockerProgramID)
		if err != nil {
			log.Error("Failed to parse locker program id", "error", err)
			flag.Usage()
			os.Exit(1)
		}
		networkConfig = &config.NetworkConfig{
			LedgerPublicRPCURL: *ledgerRPCURL,
			LockerProgramID:    programID,
		}
	} else {
		// Flags take precedence over the environment-variable overrides.
		if *lockerProgramID != "" {
			os.Setenv(config.ProgramIDEnvVar, *lockerProgramID)
		}
		if *ledgerRPCURL != "" {
			os.Setenv(config.LedgerRPCURLEnvVar, *ledgerRPCURL)
		}
		var err error
		networkConfig, err = config.NetworkConfigForEnv(*env)
		if err != nil {
			log.Error("Failed to get network config", "error", err)
			flag.Usage()
			os.Exit(1)
		}
	}

	// Initialize ledger client. The monitor never signs.
	rpcClient := solanarpc.New(networkConfig.LedgerPublicRPCURL)
	lockerClient := locker.New(log, rpcClient, nil, networkConfig.LockerProgramID)

	// Initialize prometheus metrics server.
	worker.MetricBuildInfo.WithLabelValues(version, commit, date).Set(1)
	go func() {
		listener, err := net.Listen("tcp", *metricsAddr)
		if err != nil {
			log.Error("Failed to start prometheus metrics server listener", "error", err)
			return
		}
		log.Info("Prometheus metrics server listening", "address", listener.Addr().String())
		http.Handle("/metrics", promhttp.Handler())
		if err := http.Serve(listener, nil); err != nil {
			log.Error("Failed to start prometheus metrics server", "error", err)
		}
	}()

	// Initialize worker.
	w, err := worker.New(&worker.Config{
		Logger:     log,
		Client:     lockerClient,
		Interval:   *interval,
		BatchSize:  *batchSize,
		PoolSize:   *poolSize,
		MaxRetries: *maxRetries,
	})
	if err != nil {
		log.Error("Failed to create worker", "error", err)
		os.Exit(1)
	}

	// Start the worker.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("Starting locker monitor", "env", networkConfig.Moniker, "programID", networkConfig.LockerProgramID.String())
	err = w.Run(ctx)
	if err != nil {
		log.Error("Failed to run worker", "error", err)
		os.Exit(1)
	}
}
