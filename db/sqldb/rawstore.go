package sqldb

import (
	"embed"
	"fmt"
	"log"
	"path/filepath"
	"strings"
)

// RawSQLStore holds raw SQL statements keyed "group.name". Statements live in
// embedded `sql/` directories next to the code that owns them; one file per
// statement.
//
// File resolution per statement name:
//   - `name.<dbtype>` (e.g. name.pgsql) wins: used verbatim for that dialect
//   - `name.sql` is the portable fallback, written with '?' markers which are
//     converted to the backend's ordinal markers at load time
type RawSQLStore struct {
	stmts map[string]string
}

func NewRawSQLStore() *RawSQLStore {
	return &RawSQLStore{stmts: make(map[string]string)}
}

func (s *RawSQLStore) Set(key string, rawStmt string) {
	s.stmts[key] = rawStmt
}

func (s *RawSQLStore) Get(key string) (string, bool) {
	stmt, exists := s.stmts[key]
	return stmt, exists
}

// MustGet fetches a statement that is known to be embedded; a miss is a
// packaging bug, not a runtime condition.
func (s *RawSQLStore) MustGet(key string) string {
	stmt, exists := s.stmts[key]
	if !exists {
		log.Panicf("[PANIC] raw sql stmt missing: %s", key)
	}
	return stmt
}

// LoadGroup reads one embedded `sql/` dir into the store under the group
// prefix, applying the dialect resolution above for the given backend type.
func (s *RawSQLStore) LoadGroup(fsys embed.FS, group string, dbType string) error {
	prefix := PlaceholderPrefix(dbType)
	files, err := fsys.ReadDir("sql")
	if err != nil {
		return fmt.Errorf("failed to read embedded `sql` dir for group %s: %w", group, err)
	}
	cnt := 0
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		filename := f.Name()
		ext := strings.TrimPrefix(filepath.Ext(filename), ".")
		name := strings.TrimSuffix(filename, filepath.Ext(filename))
		key := group + "." + name

		data, err := fsys.ReadFile(filepath.Join("sql", filename))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filename, err)
		}

		switch ext {
		case dbType:
			// dialect-specific file wins over the portable one
			s.Set(key, string(data))
			cnt++
		case "sql":
			if _, exists := s.Get(key); !exists {
				s.Set(key, ReplaceStaticPlaceholders(string(data), prefix))
				cnt++
			}
		}
	}
	log.Printf("[INFO] %d raw sql stmts loaded for group %s", cnt, group)
	return nil
}
