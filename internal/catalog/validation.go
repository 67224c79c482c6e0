package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
)

const (
	msgDatosInvalidos = "Datos inválidos"
	msgPrecioNumero   = "El precio debe ser un número"
)

var validate = validator.New()

// ProductInput son los campos del formulario de alta/edición.
type ProductInput struct {
	Nombre      string `validate:"required"`
	Marca       string
	Precio      float64 `validate:"gt=0"`
	Descripcion string
	Imagen      string
}

// ParseProductForm lee los campos con get (p.ej. r.PostFormValue) y los valida.
// El input se devuelve aun con error para volver a pintar el formulario.
func ParseProductForm(get func(string) string) (ProductInput, error) {
	in := ProductInput{
		Nombre:      strings.TrimSpace(get("nombre")),
		Marca:       strings.TrimSpace(get("marca")),
		Descripcion: strings.TrimSpace(get("descripcion")),
		Imagen:      strings.TrimSpace(get("imagen")),
	}
	precio, err := strconv.ParseFloat(strings.TrimSpace(get("precio")), 64)
	if err != nil || math.IsInf(precio, 0) {
		return in, apperr.Validation(msgPrecioNumero)
	}
	in.Precio = precio
	return in, in.Validate()
}

func (in ProductInput) Validate() error {
	in.Nombre = strings.TrimSpace(in.Nombre)
	if math.IsNaN(in.Precio) {
		return apperr.Validation(msgDatosInvalidos)
	}
	if err := validate.Struct(in); err != nil {
		return apperr.Validation(msgDatosInvalidos)
	}
	return nil
}

func (in ProductInput) apply(p *Product) {
	p.Nombre = strings.TrimSpace(in.Nombre)
	p.Marca = in.Marca
	p.Precio = in.Precio
	p.Descripcion = in.Descripcion
	p.Imagen = in.Imagen
}
