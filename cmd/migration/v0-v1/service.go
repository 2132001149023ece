package v0migration

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	serviceinterface "github.com/tdex-network/tdex-backup/cmd/migration/service"
	"github.com/tdex-network/tdex-backup/internal/core/application"
)

const (
	dbDir = "db"
)

type service struct{}

func NewService() serviceinterface.Service {
	return &service{}
}

// Migrate copies the address lists of the v0 bolt store into the badger db
// of the datadir. Unless disabled, the v0 store is first archived in the
// datadir as a .tar.gz.
func (s *service) Migrate(ctx context.Context, opts serviceinterface.Opts) error {
	if opts.Datadir == "" {
		return fmt.Errorf("missing datadir")
	}
	if _, err := os.Stat(opts.LegacyDbPath); os.IsNotExist(err) {
		return fmt.Errorf("legacy store not found: %s", opts.LegacyDbPath)
	}
	if err := os.MkdirAll(opts.Datadir, os.ModeDir|0755); err != nil {
		return err
	}

	if !opts.NoBackup {
		if _, err := archiveAndCompress(opts.LegacyDbPath, opts.Datadir); err != nil {
			return fmt.Errorf(
				"failed to created compressed archive of legacy store: %s", err,
			)
		}
	}

	appConfig := &application.Config{
		DbDir:        filepath.Join(opts.Datadir, dbDir),
		LegacyDbPath: opts.LegacyDbPath,
	}
	defer appConfig.Close()

	migrationSvc, err := appConfig.MigrationService()
	if err != nil {
		return err
	}

	_, err = migrationSvc.Migrate(ctx)
	return err
}

// archiveAndCompress makes a <name>.tar.gz archive of source in the dest dir
// and returns its path.
func archiveAndCompress(source, dest string) (string, error) {
	start := time.Now()
	log.Info("making compressed archive out of the legacy store...")

	info, err := os.Stat(source)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", source)
	}

	filename := filepath.Base(source)
	target := filepath.Join(dest, fmt.Sprintf("%s.tar.gz", filename))
	writer, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer writer.Close()

	archiver := gzip.NewWriter(writer)
	archiver.Name = fmt.Sprintf("%s.tar", filename)
	tarball := tar.NewWriter(archiver)

	header, err := tar.FileInfoHeader(info, info.Name())
	if err != nil {
		return "", err
	}
	if err := tarball.WriteHeader(header); err != nil {
		return "", err
	}

	file, err := os.Open(source)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(tarball, file); err != nil {
		return "", err
	}
	if err := tarball.Close(); err != nil {
		return "", err
	}
	if err := archiver.Close(); err != nil {
		return "", err
	}

	elapsedTime := time.Since(start).Seconds()
	log.Infof("done in %fs", elapsedTime)
	return target, nil
}
