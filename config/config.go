package config

import (
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"github.com/kyprware/synapse/logger"
)

const (
	logFilename = "synapsed.log"

	defaultLogLevel = "info"
	debugLogLevel   = "debug"
)

var (
	// Default configuration options
	defaultLogDir       = "logs"
	defaultHost         = "localhost"
	defaultPort         = uint16(8080)
	defaultTLSKey       = "certs/key.pem"
	defaultTLSCert      = "certs/cert.pem"
	defaultJWTAlgorithm = "HS256"
	defaultAPIListen    = "0.0.0.0:8081"

	activeConfig *Config
)

// ActiveConfig returns the active configuration struct
func ActiveConfig() *Config {
	return activeConfig
}

// Config defines the configuration options for the hub.
type Config struct {
	Host         string `long:"host" env:"HOST" description:"Address to bind the hub to"`
	Port         uint16 `long:"port" env:"PORT" description:"Port to bind the hub to"`
	TLSKey       string `long:"tlskey" env:"TLS_KEY" description:"Path to the TLS private key PEM file"`
	TLSCert      string `long:"tlscert" env:"TLS_CERT" description:"Path to the TLS certificate PEM file"`
	DatabaseURL  string `long:"dburl" env:"DATABASE_URL" description:"Database connection URL (user:password@tcp(host:port)/dbname)"`
	MigrationDir string `long:"migrationdir" env:"MIGRATION_DIR" description:"Directory of database migration files"`
	FernetKey    string `long:"fernetkey" env:"FERNET_KEY" description:"Base64 Fernet key used to encrypt stored authentication tokens"`
	JWTSecret    string `long:"jwtsecret" env:"JWT_SECRET" description:"Secret used to verify session tokens"`
	JWTAlgorithm string `long:"jwtalgorithm" env:"JWT_ALGORITHM" description:"Signing algorithm expected on session tokens"`
	APIListen    string `long:"apilisten" env:"API_LISTEN" description:"Address the admin HTTP API listens on"`
	LogDir       string `long:"logdir" env:"LOG_DIR" description:"Directory to write log files to"`
	LogLevel     string `long:"loglevel" env:"LOG_LEVEL" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	Debug        bool   `long:"debug" env:"DEBUG" description:"Shorthand for --loglevel=debug"`
	Migrate      bool   `long:"migrate" description:"Run database migrations and exit"`
}

// Parse parses the CLI arguments and environment, initializes logging, and
// returns a config struct.
func Parse() (*Config, error) {
	cfg := &Config{
		Host:         defaultHost,
		Port:         defaultPort,
		TLSKey:       defaultTLSKey,
		TLSCert:      defaultTLSCert,
		JWTSecret:    "secret",
		JWTAlgorithm: defaultJWTAlgorithm,
		APIListen:    defaultAPIListen,
		LogDir:       defaultLogDir,
	}
	parser := flags.NewParser(cfg, flags.PrintErrors|flags.HelpFlag)
	_, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("--dburl or DATABASE_URL is required")
	}
	if cfg.FernetKey == "" {
		return nil, errors.New("--fernetkey or FERNET_KEY is required")
	}

	err = cfg.resolveLogging()
	if err != nil {
		return nil, err
	}

	activeConfig = cfg
	return cfg, nil
}

func (cfg *Config) resolveLogging() error {
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
		if cfg.Debug {
			cfg.LogLevel = debugLogLevel
		}
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	logFile := filepath.Join(cfg.LogDir, logFilename)
	logger.InitLogRotator(logFile)

	return logger.ParseAndSetDebugLevels(cfg.LogLevel)
}

// HubListenAddress returns the host:port the hub binds to.
func (cfg *Config) HubListenAddress() string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port)))
}
