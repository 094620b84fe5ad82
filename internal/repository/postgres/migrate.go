package postgres

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// prefixToken is replaced with the environment table prefix when a
// migration file is read. Static SQL files cannot carry the dev_/test_/
// prod_ prefix themselves.
const prefixToken = "{{PREFIX}}"

// RunMigrations applies embedded schema migrations. The migrations
// bookkeeping table is prefixed too, so each environment tracks its own
// schema version inside the shared database.
func RunMigrations(databaseURL, tablePrefix string) error {
	src, err := iofs.New(&prefixFS{inner: migrationFiles, prefix: tablePrefix}, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	q.Set("x-migrations-table", tablePrefix+"schema_migrations")
	u.RawQuery = q.Encode()

	m, err := migrate.NewWithSourceInstance("iofs", src, u.String())
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// prefixFS serves the embedded migration files with the table prefix
// substituted into their contents.
type prefixFS struct {
	inner  embed.FS
	prefix string
}

func (p *prefixFS) Open(name string) (fs.File, error) {
	f, err := p.inner.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		return f, nil
	}

	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	rendered := bytes.ReplaceAll(data, []byte(prefixToken), []byte(p.prefix))
	return &renderedFile{Reader: bytes.NewReader(rendered), info: info, size: int64(len(rendered))}, nil
}

func (p *prefixFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return p.inner.ReadDir(name)
}

// renderedFile is an in-memory fs.File over substituted contents.
type renderedFile struct {
	*bytes.Reader
	info fs.FileInfo
	size int64
}

func (r *renderedFile) Stat() (fs.FileInfo, error) { return renderedInfo{r.info, r.size}, nil }
func (r *renderedFile) Close() error               { return nil }

type renderedInfo struct {
	fs.FileInfo
	size int64
}

func (r renderedInfo) Size() int64 { return r.size }
