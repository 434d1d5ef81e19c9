package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/blog/internal/logger"
)

// Supported storage backends
const (
	StoragePostgres = "postgres"
	StorageBadger   = "badger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultStorage      = StoragePostgres
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the blog service will be run
	ListenAddr string

	// Storage backend: postgres or badger
	Storage string

	// Database to connect to (postgres storage)
	DatabaseDSN string

	// Directory with badger files. Empty means in-memory storage, data is lost on stop
	DataDir string

	// Origins allowed to call API from browser, '*' allows any
	CORSOrigins []string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Storage:     defaultStorage,
		CORSOrigins: []string{"*"},
		Environment: defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	setList := func(o *[]string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = splitList(value)
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":  setString(&c.ListenAddr),
		"DATABASE_URI": setString(&c.DatabaseDSN),
		"STORAGE":      setString(&c.Storage),
		"DATA_DIR":     setString(&c.DataDir),
		"LOG_LEVEL":    setString(&c.LogLevel),
		"ENVIRONMENT":  setString(&c.Environment),
		"CORS_ORIGINS": setList(&c.CORSOrigins),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("blog", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.Storage, "storage", "t", c.Storage, "Storage backend (postgres, badger)")
	fs.StringVarP(&c.DataDir, "data-dir", "D", c.DataDir, "Badger data directory, in-memory if empty")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringSliceVarP(&c.CORSOrigins, "cors-origins", "c", c.CORSOrigins, "Allowed CORS origins, comma separated")

	return fs.Parse(args)
}

// Check options are consistent
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseDSN == "" {
			return errors.New("database connection string is required for postgres storage")
		}
	case StorageBadger:
	default:
		return fmt.Errorf("unknown storage %q, expected one of: %s, %s", c.Storage, StoragePostgres, StorageBadger)
	}

	return nil
}

func splitList(value string) []string {
	items := strings.Split(value, ",")
	list := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
