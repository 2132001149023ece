package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-backup/internal/core/domain"
)

const (
	// DatadirKey is the local data directory where wallets and backup history
	// are stored
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// ScratchDirKey is the directory where backup files are temporarily
	// written before being shared. Defaults to a subdir of the datadir
	ScratchDirKey = "SCRATCH_DIR"
	// PresenceLockAvailableKey tells whether the device can protect accounts
	// with a user presence lock
	PresenceLockAvailableKey = "PRESENCE_LOCK_AVAILABLE"
	// RequireShareCompletionKey makes a dismissed share keep the backup open
	// instead of completing it
	RequireShareCompletionKey = "REQUIRE_SHARE_COMPLETION"
	// SuccessOverlayDelayKey is the delay in milliseconds before showing the
	// success message at the end of a backup
	SuccessOverlayDelayKey = "SUCCESS_OVERLAY_DELAY"
	// MinPasswordLengthKey is the min length of wallet and backup passwords
	MinPasswordLengthKey = "MIN_PASSWORD_LENGTH"
	// SeedVerifyWordsKey is the number of words the user is asked to type back
	// when backing up a seed phrase
	SeedVerifyWordsKey = "SEED_VERIFY_WORDS"
	// EnableStatsKey enables dumping backup and runtime metrics into the datadir
	EnableStatsKey = "ENABLE_STATS"
	// StatsIntervalKey defines interval in seconds for printing runtime statistics
	StatsIntervalKey = "STATS_INTERVAL"
	// LegacyDbPathKey is the path of the legacy bolt address store to migrate
	LegacyDbPathKey = "LEGACY_DB_PATH"

	DbLocation       = "db"
	KeystoreLocation = "keystore"
	ScratchLocation  = "scratch"
	ProfilerLocation = "stats"
	LegacyDbLocation = "addresses.db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("tdex-backup", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("TDEX_BACKUP")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(PresenceLockAvailableKey, false)
	vip.SetDefault(RequireShareCompletionKey, false)
	vip.SetDefault(SuccessOverlayDelayKey, 400)
	vip.SetDefault(MinPasswordLengthKey, domain.MinPasswordLength)
	vip.SetDefault(SeedVerifyWordsKey, 3)
	vip.SetDefault(EnableStatsKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	log.SetLevel(log.Level(GetInt(LogLevelKey)))
	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetKeystoreDir() string {
	return filepath.Join(GetDatadir(), KeystoreLocation)
}

func GetProfilerDir() string {
	return filepath.Join(GetDatadir(), ProfilerLocation)
}

func GetScratchDir() string {
	if dir := GetString(ScratchDirKey); dir != "" {
		return dir
	}
	return filepath.Join(GetDatadir(), ScratchLocation)
}

func GetLegacyDbPath() string {
	if path := GetString(LegacyDbPathKey); path != "" {
		return path
	}
	return filepath.Join(GetDatadir(), LegacyDbLocation)
}

func GetSuccessOverlayDelay() time.Duration {
	return time.Duration(GetInt(SuccessOverlayDelayKey)) * time.Millisecond
}

func GetStatsInterval() time.Duration {
	return time.Duration(GetInt(StatsIntervalKey)) * time.Second
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	logLevel := GetInt(LogLevelKey)
	if logLevel < int(log.PanicLevel) || logLevel > int(log.TraceLevel) {
		return fmt.Errorf(
			"%s must be in range [%d, %d]",
			LogLevelKey, log.PanicLevel, log.TraceLevel,
		)
	}

	if GetInt(SuccessOverlayDelayKey) < 0 {
		return fmt.Errorf("%s must not be negative", SuccessOverlayDelayKey)
	}

	if GetInt(MinPasswordLengthKey) < domain.MinPasswordLength {
		return fmt.Errorf(
			"%s must be equal or greater than %d",
			MinPasswordLengthKey, domain.MinPasswordLength,
		)
	}

	seedVerifyWords := GetInt(SeedVerifyWordsKey)
	if seedVerifyWords < 1 || seedVerifyWords > 12 {
		return fmt.Errorf("%s must be in range [1, 12]", SeedVerifyWordsKey)
	}

	if GetBool(EnableStatsKey) && GetInt(StatsIntervalKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", StatsIntervalKey)
	}

	return nil
}

func initDatadir() error {
	if err := makeDirectoryIfNotExists(GetDbDir(), 0755); err != nil {
		return err
	}
	if err := makeDirectoryIfNotExists(GetKeystoreDir(), 0700); err != nil {
		return err
	}
	if err := makeDirectoryIfNotExists(GetScratchDir(), 0700); err != nil {
		return err
	}

	if GetBool(EnableStatsKey) {
		if err := makeDirectoryIfNotExists(GetProfilerDir(), 0755); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string, perm os.FileMode) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|perm)
	}
	return nil
}
