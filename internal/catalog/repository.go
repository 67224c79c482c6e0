package catalog

import (
	"context"
	"fmt"
)

// Store carga y guarda el catálogo completo. No hay actualizaciones parciales:
// Save reemplaza todo lo guardado con el snapshot recibido, en el mismo orden.
type Store interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
}

type StoreOptions struct {
	Backend   string // json | sqlite | badger | memory
	JSONPath  string
	DBPath    string
	SQLDriver string // sqlite (modernc) | sqlite3 (mattn, cgo)
	BadgerDir string
}

func OpenStore(opts StoreOptions) (Store, error) {
	switch opts.Backend {
	case "", "json":
		return NewJSONFileStore(opts.JSONPath), nil
	case "sqlite":
		return OpenSQLiteStore(opts.SQLDriver, opts.DBPath)
	case "badger":
		return OpenBadgerStore(opts.BadgerDir)
	case "memory":
		return NewMemoryStore(nil), nil
	}
	return nil, fmt.Errorf("catalog backend desconocido: %q", opts.Backend)
}

// Close cierra el store si mantiene recursos abiertos.
func Close(s Store) error {
	if c, ok := s.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
