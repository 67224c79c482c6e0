package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // driver "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // driver "sqlite", 100% Go
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS productos (
  pos         INTEGER PRIMARY KEY,
  id          INTEGER NOT NULL,
  nombre      TEXT NOT NULL DEFAULT '',
  marca       TEXT NOT NULL DEFAULT '',
  precio      REAL NOT NULL DEFAULT 0,
  descripcion TEXT NOT NULL DEFAULT '',
  imagen      TEXT NOT NULL DEFAULT ''
);`

// SQLiteStore guarda el snapshot en una tabla; pos conserva el orden del arreglo.
type SQLiteStore struct{ db *sql.DB }

func OpenSQLiteStore(driver, path string) (*SQLiteStore, error) {
	if driver == "" {
		driver = "sqlite"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, sqliteDSN(driver, path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Busy timeout + WAL; cada driver usa su propia sintaxis de DSN.
func sqliteDSN(driver, path string) string {
	if driver == "sqlite3" {
		return path + "?_busy_timeout=5000&_journal_mode=WAL"
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *SQLiteStore) Load(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nombre, marca, precio, descripcion, imagen
		FROM productos ORDER BY pos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Marca, &p.Precio, &p.Descripcion, &p.Imagen); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, products []Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM productos`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO productos(pos, id, nombre, marca, precio, descripcion, imagen)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range products {
		if _, err := stmt.ExecContext(ctx, i, p.ID, p.Nombre, p.Marca, p.Precio, p.Descripcion, p.Imagen); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
