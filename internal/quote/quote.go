// Package quote arma cotizaciones a partir de un carrito y un snapshot del catálogo.
package quote

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
	"github.com/ahinestrog/ferreriwork/internal/catalog"
)

var ErrEmptyCart = apperr.Validation("Carrito vacío")

// CartItem es una línea del carrito que el navegador guarda en localStorage.
type CartItem struct {
	ID  int64 `json:"id"`
	Qty int   `json:"qty"`
}

type Line struct {
	Product  catalog.Product
	Unit     catalog.Money
	Qty      int
	Subtotal catalog.Money
}

type Quote struct {
	Lines    []Line
	Total    catalog.Money
	IssuedAt time.Time
}

// Build calcula las líneas y el total. Los ids que no están en products se
// omiten sin error; un carrito vacío se rechaza antes de calcular nada.
func Build(cart []CartItem, products []catalog.Product, now time.Time) (Quote, error) {
	if len(cart) == 0 {
		return Quote{}, ErrEmptyCart
	}
	q := Quote{IssuedAt: now}
	for _, item := range cart {
		p, ok := catalog.FindByID(products, item.ID)
		if !ok {
			continue
		}
		qty := item.Qty
		if qty <= 0 {
			qty = 1
		}
		unit := p.Price()
		line := Line{Product: p, Unit: unit, Qty: qty, Subtotal: unit.Mul(qty)}
		q.Total = q.Total.Add(line.Subtotal)
		q.Lines = append(q.Lines, line)
	}
	return q, nil
}

// FormatMoney pinta soles con dos decimales y sin separador de miles: "S/ 1234.50".
func FormatMoney(m catalog.Money) string {
	return fmt.Sprintf("S/ %.2f", m.Float())
}

// FileName es el nombre del adjunto descargado.
func FileName(now time.Time) string {
	return fmt.Sprintf("cotizacion_%s.pdf", now.Format("20060102_150405"))
}

// IsEmptyCart reporta si err viene de un carrito vacío.
func IsEmptyCart(err error) bool { return errors.Is(err, ErrEmptyCart) }
