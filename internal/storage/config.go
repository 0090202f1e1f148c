package storage

import (
	"net/url"
	"path/filepath"
	"strings"
)

// PostgresPath is the config path a PostgreSQL provider reports in place
// of its connection string.
const PostgresPath = "postgresql"

// IsPostgres reports whether a --config value is a PostgreSQL connection URL.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://")
}

// IsLocalFile reports whether a provider config path names a file on
// disk that can be copied for backups.
func IsLocalFile(path string) bool {
	return path != "" && path != MemoryPath && path != PostgresPath
}

// IsJSON reports whether a --config value names a JSON file store.
func IsJSON(config string) bool {
	return strings.EqualFold(filepath.Ext(config), ".json")
}

// HasEmbeddedCredentials reports whether a connection string carries a
// password, either in the URL userinfo or as a DSN password= pair.
func HasEmbeddedCredentials(connStr string) bool {
	if IsPostgres(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		_, isSet := u.User.Password()
		return isSet
	}
	for _, pair := range strings.Fields(connStr) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "password") {
			return true
		}
	}
	return false
}
