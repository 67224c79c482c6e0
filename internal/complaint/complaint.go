// Package complaint valida los reclamos de clientes y los reenvía por correo.
// Los reclamos no se guardan: si el envío falla, se pierden.
package complaint

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
)

const (
	msgFaltanDatos = "Faltan datos obligatorios"
	msgEnvio       = "Error al enviar el reclamo"
)

var validate = validator.New()

type Complaint struct {
	Nombre      string `json:"nombre" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Telefono    string `json:"telefono"`
	TipoReclamo string `json:"tipo_reclamo" validate:"required"`
	Descripcion string `json:"descripcion" validate:"required"`
}

func (c Complaint) Normalize() Complaint {
	c.Nombre = strings.TrimSpace(c.Nombre)
	c.Email = strings.TrimSpace(c.Email)
	c.Telefono = strings.TrimSpace(c.Telefono)
	c.TipoReclamo = strings.TrimSpace(c.TipoReclamo)
	c.Descripcion = strings.TrimSpace(c.Descripcion)
	return c
}

// Validate exige nombre, email, tipo y descripción; el teléfono es opcional.
func (c Complaint) Validate() error {
	if err := validate.Struct(c.Normalize()); err != nil {
		return apperr.Validation(msgFaltanDatos)
	}
	return nil
}

func (c Complaint) Subject() string { return "Nuevo Reclamo - " + c.TipoReclamo }

//go:embed reclamo.html
var reclamoHTML string

var reclamoTpl = template.Must(template.New("reclamo").Parse(reclamoHTML))

// HTML arma el cuerpo del correo; html/template escapa los datos del cliente.
func (c Complaint) HTML() (string, error) {
	var buf bytes.Buffer
	if err := reclamoTpl.Execute(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (c Complaint) Text() string {
	tel := c.Telefono
	if tel == "" {
		tel = "No proporcionado"
	}
	return fmt.Sprintf("Nuevo reclamo recibido\n\nNombre: %s\nEmail: %s\nTeléfono: %s\n\nTipo: %s\nDescripción:\n%s\n",
		c.Nombre, c.Email, tel, c.TipoReclamo, c.Descripcion)
}

// Notifier manda cada reclamo a una dirección fija.
type Notifier struct {
	client EmailClient
	from   string
	to     string
}

func NewNotifier(client EmailClient, from, to string) *Notifier {
	return &Notifier{client: client, from: from, to: to}
}

// Submit valida y envía. No reintenta.
func (n *Notifier) Submit(ctx context.Context, c Complaint) error {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return err
	}
	body, err := c.HTML()
	if err != nil {
		return apperr.Transport(msgEnvio, err)
	}
	msg := Message{
		From:    n.from,
		To:      n.to,
		ReplyTo: c.Email,
		Subject: c.Subject(),
		HTML:    body,
		Text:    c.Text(),
	}
	if err := n.client.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("tipo", c.TipoReclamo).Msg("complaint: envío fallido")
		return apperr.Transport(msgEnvio, err)
	}
	log.Info().Str("tipo", c.TipoReclamo).Str("to", n.to).Msg("complaint: reclamo enviado")
	return nil
}
