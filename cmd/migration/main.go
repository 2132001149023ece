package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tdex-network/tdex-backup/cmd/migration/service"
	v0migration "github.com/tdex-network/tdex-backup/cmd/migration/v0-v1"
)

var (
	versionFlag          = "source-version"
	datadirFlag          = "datadir"
	legacyDbFlag         = "legacy-db"
	noBackupFlag         = "no-backup"
	defaultSourceVersion = "v0"
	defaultDatadir       = btcutil.AppDataDir("tdex-backup", false)
	allowedVersions      = map[string]service.Service{
		"v0": v0migration.NewService(),
	}

	version = "dev"
	commit  = "none"
	date    = "unknown"

	app = &cobra.Command{
		Use:           "migration",
		Short:         "migration service",
		Long:          "this service imports the address record of a previous version of the wallet into the tdex-backup datadir",
		Version:       formatVersion(),
		RunE:          action,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	sourceVersion string
	datadir       string
	legacyDbPath  string
	noBackup      bool
)

func init() {
	app.Flags().StringVarP(&sourceVersion, versionFlag, "", defaultSourceVersion, "the version of the wallet whose address record is migrated")
	app.Flags().StringVarP(&datadir, datadirFlag, "", defaultDatadir, "the datadir of tdex-backup")
	app.Flags().StringVarP(&legacyDbPath, legacyDbFlag, "", "", "the path of the legacy address store, defaults to addresses.db in the datadir")
	app.Flags().BoolVarP(&noBackup, noBackupFlag, "", false, "do not backup the legacy store as compressed archive .tar.gz")
}

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}

func action(cmd *cobra.Command, _ []string) (err error) {
	migrationSvc, ok := allowedVersions[sourceVersion]
	if !ok {
		return fmt.Errorf("migration from version %s not supported", sourceVersion)
	}

	ctx, stop := signal.NotifyContext(
		cmd.Context(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer stop()

	opts := service.Opts{
		Datadir:      cleanAndExpandPath(datadir),
		LegacyDbPath: cleanAndExpandPath(legacyDbPath),
		NoBackup:     noBackup,
	}
	if opts.LegacyDbPath == "" {
		opts.LegacyDbPath = filepath.Join(opts.Datadir, "addresses.db")
	}

	start := time.Now()
	log.Info("starting migration...")

	defer func(start time.Time) {
		if err == nil {
			elapsedTime := time.Since(start).Seconds()
			log.Infof("migration ended in %fs", elapsedTime)
		}
	}(start)

	err = migrationSvc.Migrate(ctx, opts)
	return
}

func formatVersion() string {
	return fmt.Sprintf(
		"Version: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}

	return filepath.Clean(os.ExpandEnv(path))
}
