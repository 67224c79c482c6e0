package catalog

import "math"

// Product es un registro del catálogo tal como se guarda en productos.json.
type Product struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Marca       string  `json:"marca"`
	Precio      float64 `json:"precio"`
	Descripcion string  `json:"descripcion"`
	Imagen      string  `json:"imagen"`
}

// Money guarda montos en céntimos para que los totales no acumulen error.
type Money struct{ Cents int64 }

func MoneyFromFloat(v float64) Money { return Money{Cents: int64(math.Round(v * 100))} }

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Mul(qty int) Money { return Money{Cents: m.Cents * int64(qty)} }
func (m Money) Float() float64    { return float64(m.Cents) / 100 }

// Price devuelve el precio unitario del producto en céntimos.
func (p Product) Price() Money { return MoneyFromFloat(p.Precio) }

// FindByID busca por id en un snapshot ya cargado.
func FindByID(products []Product, id int64) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// NextID es max(id)+1, o 1 en un catálogo vacío. Los ids borrados no se reutilizan
// mientras exista un id mayor.
func NextID(products []Product) int64 {
	var maxID int64
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}
