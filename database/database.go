package database

import (
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"

	"github.com/kyprware/synapse/config"
)

// db is the hub database, or nil if the database connection is closed.
var db *gorm.DB

// DB returns a reference to the database connection
func DB() (*gorm.DB, error) {
	if db == nil {
		return nil, errors.New("database is not connected")
	}
	return db, nil
}

// Connect connects to the database mandated by the given config.
func Connect(cfg *config.Config) error {
	migrator, driver, err := openMigrator(cfg)
	if err != nil {
		return err
	}
	current, version, err := isCurrent(migrator, driver)
	if err != nil {
		return errors.Wrapf(err, "error checking whether the database is current")
	}
	if !current {
		return errors.Errorf("Database is not current (version %d). Please migrate"+
			" the database by running the application with --migrate flag and then run it again", version)
	}

	log.Infof("Connecting to database %s", redactedURL(cfg.DatabaseURL))
	db, err = gorm.Open("mysql", withParseTime(cfg.DatabaseURL))
	if err != nil {
		return errors.Wrap(err, "couldn't connect to the database")
	}
	db.SetLogger(gormLogger{})
	db.LogMode(true)
	return nil
}

// Close closes the connection to the database
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// Migrate applies all pending migrations to the database.
func Migrate(cfg *config.Config) error {
	migrator, driver, err := openMigrator(cfg)
	if err != nil {
		return err
	}
	current, version, err := isCurrent(migrator, driver)
	if err != nil {
		return errors.Wrapf(err, "error checking whether the database is current")
	}
	if current {
		log.Infof("Database is already up-to-date (version %d)", version)
		return nil
	}
	err = migrator.Up()
	if err != nil {
		return errors.Wrap(err, "couldn't migrate the database")
	}
	version, isDirty, err := migrator.Version()
	if err != nil {
		return errors.Wrap(err, "couldn't read the migrated database version")
	}
	if isDirty {
		return errors.New("error migrating database: database is dirty")
	}
	log.Infof("Migrated database to version %d", version)
	return nil
}
