package database

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"

	"github.com/kyprware/synapse/config"
)

const defaultMigrationDir = "database/migrations"

func openMigrator(cfg *config.Config) (*migrate.Migrate, source.Driver, error) {
	migrationDir := cfg.MigrationDir
	if migrationDir == "" {
		migrationDir = defaultMigrationDir
	}
	sourceURL := fmt.Sprintf("file://%s", migrationDir)

	driver, err := (&file.File{}).Open(sourceURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "couldn't open the migration source")
	}

	databaseURL := fmt.Sprintf("mysql://%s", withMultiStatements(cfg.DatabaseURL))
	migrator, err := migrate.NewWithSourceInstance("file", driver, databaseURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "couldn't open the database migrator")
	}
	return migrator, driver, nil
}

// isCurrent resolves whether the database is on the latest known migration.
func isCurrent(migrator *migrate.Migrate, driver source.Driver) (bool, uint, error) {
	version, isDirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, errors.Wrap(err, "couldn't read the database version")
	}
	if isDirty {
		return false, version, errors.New("database is dirty")
	}

	// A version is current when the source has no migration after it.
	_, err = driver.Next(version)
	if err == nil {
		return false, version, nil
	}
	if pathErr, ok := err.(*os.PathError); ok && errors.Is(pathErr.Err, os.ErrNotExist) {
		return true, version, nil
	}
	return false, version, errors.Wrap(err, "couldn't resolve the next migration version")
}

func withParseTime(databaseURL string) string {
	return withQueryParameter(databaseURL, "parseTime", "true")
}

func withMultiStatements(databaseURL string) string {
	return withQueryParameter(databaseURL, "multiStatements", "true")
}

func withQueryParameter(databaseURL, key, value string) string {
	if strings.Contains(databaseURL, key+"=") {
		return databaseURL
	}
	separator := "?"
	if strings.Contains(databaseURL, "?") {
		separator = "&"
	}
	return databaseURL + separator + key + "=" + value
}

func redactedURL(databaseURL string) string {
	atIndex := strings.LastIndex(databaseURL, "@")
	if atIndex < 0 {
		return databaseURL
	}
	return "***" + databaseURL[atIndex:]
}
