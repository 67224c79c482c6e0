package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
)

const (
	RKProductCreated = "catalog.product.created"
	RKProductUpdated = "catalog.product.updated"
	RKProductDeleted = "catalog.product.deleted"
)

type Events interface {
	Publish(ctx context.Context, routingKey string, v any) error
}

type ProductEvent struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre,omitempty"`
}

// Service aplica las reglas del catálogo sobre un Store. Cada operación carga el
// snapshot completo y lo reescribe; el mutex serializa las escrituras de este
// proceso, entre procesos gana el último que escribe.
type Service struct {
	store  Store
	events Events
	mu     sync.Mutex
}

func NewService(store Store, events Events) *Service {
	return &Service{store: store, events: events}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.store.Load(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	p, ok := FindByID(products, id)
	if !ok {
		return Product{}, apperr.NotFound("Producto no encontrado")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	p := Product{ID: NextID(products)}
	in.apply(&p)
	if err := s.save(ctx, append(products, p)); err != nil {
		return Product{}, err
	}
	s.publish(ctx, RKProductCreated, ProductEvent{ID: p.ID, Nombre: p.Nombre})
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.List(ctx)
	if err != nil {
		return Product{}, err
	}
	idx := -1
	for i := range products {
		if products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Product{}, apperr.NotFound("Producto no encontrado")
	}
	in.apply(&products[idx])
	if err := s.save(ctx, products); err != nil {
		return Product{}, err
	}
	s.publish(ctx, RKProductUpdated, ProductEvent{ID: id, Nombre: products[idx].Nombre})
	return products[idx], nil
}

// Delete no falla si el id no existe.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := make([]Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if err := s.save(ctx, kept); err != nil {
		return err
	}
	if len(kept) != len(products) {
		s.publish(ctx, RKProductDeleted, ProductEvent{ID: id})
	}
	return nil
}

func (s *Service) save(ctx context.Context, products []Product) error {
	if err := s.store.Save(ctx, products); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, key string, ev ProductEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, ev); err != nil {
		log.Error().Err(err).Str("rk", key).Int64("id", ev.ID).Msg("catalog: publish failed")
	}
}
