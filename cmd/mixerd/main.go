// main.go - Mixer daemon entry point.
//
// mixerd hosts the shielded-pool state machine behind a small REST surface.
// On first start it runs the Groth16 trusted setup (or loads cached keys),
// initializes the pool with the configured policy, and then serves deposits
// and withdrawals, snapshotting state after every mutation.
//
// Usage:
//
//	mixerd -config mixerd.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"mixer/internal/mixer"
)

const version = "0.3.1"

func main() {
	configPath := flag.String("config", "mixerd.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	log.WithFields(logrus.Fields{
		"version": version,
		"listen":  cfg.ListenAddr,
	}).Info("mixerd starting")

	// Circuit and keys. Setup runs once; afterwards keys load from disk.
	start := time.Now()
	ccs, err := mixer.CompileWithdrawalCircuit()
	if err != nil {
		log.WithError(err).Fatal("circuit compilation failed")
	}
	log.WithField("elapsed", time.Since(start)).Info("withdrawal circuit compiled")

	if err := os.MkdirAll(cfg.KeyDir, 0755); err != nil {
		log.WithError(err).Fatal("key directory creation failed")
	}
	pkPath := filepath.Join(cfg.KeyDir, "withdrawal_pk.bin")
	vkPath := filepath.Join(cfg.KeyDir, "withdrawal_vk.bin")
	start = time.Now()
	_, vk, err := mixer.SetupOrLoadKeys(ccs, pkPath, vkPath)
	if err != nil {
		log.WithError(err).Fatal("key setup failed")
	}
	log.WithField("elapsed", time.Since(start)).Info("proving keys ready")

	verifier := mixer.NewGroth16Verifier(vk)
	bank := mixer.NewMemoryBank()

	// Restore from snapshot or initialize a fresh pool.
	var m *mixer.Mixer
	if _, err := os.Stat(cfg.SnapshotPath); err == nil {
		m, err = mixer.LoadFromFile(cfg.SnapshotPath, verifier, bank)
		if err != nil {
			log.WithError(err).Fatal("snapshot restore failed")
		}
		log.WithFields(logrus.Fields{
			"leaves": m.TreeSize(),
			"spent":  m.SpentNullifiers(),
		}).Info("state restored from snapshot")
	} else {
		m = mixer.New(verifier, bank)
		if err := m.Init(mixer.AccountID(cfg.Owner), cfg.FeeBasisPoints); err != nil {
			log.WithError(err).Fatal("initialization failed")
		}
		if cfg.MinDelaySeconds != mixer.DefaultMinDelay {
			if err := m.UpdateMinDelay(mixer.AccountID(cfg.Owner), cfg.MinDelaySeconds); err != nil {
				log.WithError(err).Fatal("min delay configuration failed")
			}
		}
		log.WithFields(logrus.Fields{
			"owner":   cfg.Owner,
			"fee_bps": cfg.FeeBasisPoints,
		}).Info("fresh pool initialized")
	}

	health := NewHealthChecker(version)
	health.RegisterComponent("snapshot", func() error {
		dir := filepath.Dir(cfg.SnapshotPath)
		f, err := os.CreateTemp(dir, ".mixerd-health-*")
		if err != nil {
			return fmt.Errorf("snapshot directory not writable: %w", err)
		}
		f.Close()
		return os.Remove(f.Name())
	})
	health.RegisterComponent("verifying_key", func() error {
		_, err := os.Stat(vkPath)
		return err
	})

	server := NewServer(cfg, log, m, health)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}

// newLogger builds the daemon logger from config. The returned closer
// releases the log file, if any.
func newLogger(cfg *Config) (*logrus.Logger, func(), error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	closer := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		closer = func() { f.Close() }
	}
	return log, closer, nil
}
