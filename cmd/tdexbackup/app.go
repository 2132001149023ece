package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-backup/internal/config"
	"github.com/tdex-network/tdex-backup/internal/core/application"
	"github.com/tdex-network/tdex-backup/internal/core/ports"
	"github.com/tdex-network/tdex-backup/internal/interfaces/terminal"
	"github.com/tdex-network/tdex-backup/pkg/stats"
)

// newAppConfig builds the application config from the global configuration.
// The returned cleanup func closes the storage and, if enabled, dumps the
// gathered stats.
func newAppConfig(ctx context.Context) (*application.Config, *terminal.Terminal, func()) {
	term := terminal.New(os.Stdin, os.Stdout)

	appConfig := &application.Config{
		DbDir:                  config.GetDbDir(),
		KeystoreDir:            config.GetKeystoreDir(),
		ScratchDir:             config.GetScratchDir(),
		LegacyDbPath:           config.GetLegacyDbPath(),
		PresenceLockAvailable:  config.GetBool(config.PresenceLockAvailableKey),
		RequireShareCompletion: config.GetBool(config.RequireShareCompletionKey),
		SuccessOverlayDelay:    config.GetSuccessOverlayDelay(),
		MinPasswordLength:      config.GetInt(config.MinPasswordLengthKey),
		Authenticator:          term,
		ShareSheet:             term,
		Presenter:              term,
		Flows: func(km ports.KeyManager) (ports.FlowFactory, error) {
			return terminal.NewFlowFactory(ctx, terminal.FlowFactoryOpts{
				Terminal:          term,
				KeyManager:        km,
				SeedVerifyWords:   config.GetInt(config.SeedVerifyWordsKey),
				MinPasswordLength: config.GetInt(config.MinPasswordLengthKey),
			})
		},
	}

	stopStats := func() {}
	if config.GetBool(config.EnableStatsKey) {
		statsCtx, cancel := context.WithCancel(ctx)
		dumpPath := filepath.Join(
			config.GetProfilerDir(),
			"stats_"+time.Now().Format("20060102150405"),
		)
		done := stats.EnableMemoryStatistics(
			statsCtx, config.GetStatsInterval(), dumpPath,
		)
		stopStats = func() {
			cancel()
			<-done
			log.Debugf("stats dumped to %s", dumpPath)
		}
	}

	cleanup := func() {
		appConfig.Close()
		stopStats()
	}
	return appConfig, term, cleanup
}
