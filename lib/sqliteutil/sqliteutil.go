package sqliteutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	devenv "registrylens-backend/dev/env"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config is the database section shared by service configs. File takes
// a local path (optionally <dev_state>-prefixed) or a libsql:// url
// pointing at a hosted replica.
type Config struct {
	File string `json:"file"`
}

func (config Config) OpenDB(schema string) (*sql.DB, error) {
	if config.File == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}
	return Open(config.File, schema)
}

// Open opens the database and applies the embedded schema. Schemas are
// written to be re-runnable so an existing database passes through
// untouched.
func Open(path, schema string) (*sql.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(path, "libsql://") {
		driver = "libsql"
	} else if path != ":memory:" {
		resolved, err := devenv.ResolvePath(path)
		if err != nil {
			return nil, err
		}
		path = resolved
		os.MkdirAll(filepath.Dir(path), 0777)
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == "sqlite" {
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
	}

	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return db, nil
}
