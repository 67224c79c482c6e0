package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

var productosKey = []byte("catalog/productos")

// BadgerStore guarda el snapshot entero bajo una sola clave.
type BadgerStore struct{ db *badger.DB }

// OpenBadgerStore abre una base en dir; dir vacío abre una base en memoria.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create badger dir %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(badgerLogger{})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Load(ctx context.Context) ([]Product, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(productosKey)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return []Product{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := []Product{}
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Msg("catalog: snapshot badger ilegible, catálogo vacío")
		return []Product{}, nil
	}
	return out, nil
}

func (s *BadgerStore) Save(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(productosKey, raw)
	})
}

func (s *BadgerStore) Close() error { return s.db.Close() }

// badgerLogger manda los mensajes internos de badger a zerolog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Error().Msgf("badger: "+format, args...)
}
func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warn().Msgf("badger: "+format, args...)
}
func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Debug().Msgf("badger: "+format, args...)
}
func (badgerLogger) Debugf(format string, args ...interface{}) {
	log.Trace().Msgf("badger: "+format, args...)
}
