package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// JSONFileStore guarda el catálogo como un arreglo JSON con sangría de 4 espacios.
// Un archivo ausente o corrupto se lee como catálogo vacío.
type JSONFileStore struct {
	path string
}

func NewJSONFileStore(path string) *JSONFileStore { return &JSONFileStore{path: path} }

func (s *JSONFileStore) Path() string { return s.path }

func (s *JSONFileStore) Load(ctx context.Context) ([]Product, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("catalog: no se pudo crear el directorio")
		}
		return []Product{}, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("catalog: lectura fallida, catálogo vacío")
		return []Product{}, nil
	}

	var out []Product
	if err := json.Unmarshal(b, &out); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("catalog: JSON inválido, catálogo vacío")
		return []Product{}, nil
	}
	if out == nil {
		out = []Product{}
	}
	return out, nil
}

func (s *JSONFileStore) Save(ctx context.Context, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(products); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	// Escribe a un temporal y renombra para no dejar un archivo a medias.
	tmp, err := os.CreateTemp(dir, ".productos-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
