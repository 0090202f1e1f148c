package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/foodlog/internal/constants"
	"github.com/julianstephens/foodlog/internal/keyring"
	"github.com/julianstephens/foodlog/internal/logger"
	"github.com/julianstephens/foodlog/internal/storage"
	"github.com/julianstephens/foodlog/internal/storage/postgres"
	"github.com/julianstephens/foodlog/internal/storage/sqlite"
)

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ConfigDir returns the directory used for logs and locks when running
// with the given --config value.
func ConfigDir(config string) string {
	if config == storage.MemoryPath || storage.IsPostgres(config) {
		config = constants.DefaultConfigPath
	}
	return filepath.Dir(ExpandPath(config))
}

// OpenProvider picks the storage backend for a --config value:
// PostgreSQL for connection strings, JSON for *.json, an in-process store
// for ":memory:" and SQLite otherwise. When config is the default path, a
// connection string from FOODLOG_DB_CONNECTION or the keyring takes
// precedence.
func OpenProvider(config string) storage.Provider {
	if config == constants.DefaultConfigPath {
		connStr, err := keyring.ResolveConnectionString()
		switch {
		case err == nil:
			logger.Debug("Using stored PostgreSQL connection string")
			return postgres.New(connStr)
		case !errors.Is(err, keyring.ErrNotFound):
			logger.Debug("Keyring lookup failed, using default storage", "error", err)
		}
	}

	switch {
	case config == storage.MemoryPath:
		return storage.NewMemoryStore()
	case storage.IsPostgres(config):
		return postgres.New(config)
	case storage.IsJSON(config):
		return storage.NewJSONStore(ExpandPath(config))
	default:
		return sqlite.NewStore(ExpandPath(config))
	}
}
