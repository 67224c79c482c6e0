package complaint

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
)

type fakeClient struct {
	sent []Message
	err  error
}

func (f *fakeClient) Send(ctx context.Context, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func validComplaint() Complaint {
	return Complaint{
		Nombre:      "Ana Quispe",
		Email:       "ana@example.com",
		TipoReclamo: "Producto defectuoso",
		Descripcion: "El taladro no enciende",
	}
}

func TestSubmitSendsOneMessage(t *testing.T) {
	fc := &fakeClient{}
	n := NewNotifier(fc, "tienda@example.com", "Ferreri-work@hotmail.com")

	require.NoError(t, n.Submit(context.Background(), validComplaint()))
	require.Len(t, fc.sent, 1)

	msg := fc.sent[0]
	assert.Equal(t, "tienda@example.com", msg.From)
	assert.Equal(t, "Ferreri-work@hotmail.com", msg.To)
	assert.Equal(t, "ana@example.com", msg.ReplyTo)
	assert.Equal(t, "Nuevo Reclamo - Producto defectuoso", msg.Subject)
	assert.Contains(t, msg.HTML, "Ana Quispe")
	assert.Contains(t, msg.HTML, "No proporcionado")
	assert.Contains(t, msg.HTML, "El taladro no enciende")
	assert.Contains(t, msg.Text, "Teléfono: No proporcionado")
}

func TestSubmitMissingFields(t *testing.T) {
	cases := map[string]func(*Complaint){
		"nombre":      func(c *Complaint) { c.Nombre = "" },
		"email":       func(c *Complaint) { c.Email = "  " },
		"tipo":        func(c *Complaint) { c.TipoReclamo = "" },
		"descripcion": func(c *Complaint) { c.Descripcion = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			fc := &fakeClient{}
			c := validComplaint()
			mutate(&c)

			err := NewNotifier(fc, "a@b", "c@d").Submit(context.Background(), c)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, "Faltan datos obligatorios", apperr.Message(err))
			assert.Empty(t, fc.sent)
		})
	}
}

func TestSubmitPhoneIsOptionalButShown(t *testing.T) {
	fc := &fakeClient{}
	c := validComplaint()
	c.Telefono = "987654321"

	require.NoError(t, NewNotifier(fc, "a@b", "c@d").Submit(context.Background(), c))
	require.Len(t, fc.sent, 1)
	assert.Contains(t, fc.sent[0].HTML, "987654321")
	assert.NotContains(t, fc.sent[0].HTML, "No proporcionado")
}

func TestSubmitTransportFailure(t *testing.T) {
	fc := &fakeClient{err: errors.New("535 auth failed")}
	err := NewNotifier(fc, "a@b", "c@d").Submit(context.Background(), validComplaint())

	require.Error(t, err)
	assert.Equal(t, apperr.KindTransport, apperr.KindOf(err))
	assert.Equal(t, "Error al enviar el reclamo", apperr.Message(err))
}

func TestHTMLEscapesInput(t *testing.T) {
	c := validComplaint()
	c.Descripcion = `<script>alert("x")</script>`

	body, err := c.HTML()
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestNewEmailClient(t *testing.T) {
	c, err := NewEmailClient(MailOptions{Transport: "log"})
	require.NoError(t, err)
	assert.IsType(t, LogClient{}, c)

	c, err = NewEmailClient(MailOptions{Transport: "smtp", SMTPHost: "smtp.gmail.com", SMTPPort: 465})
	require.NoError(t, err)
	require.IsType(t, &SMTPClient{}, c)
	assert.True(t, c.(*SMTPClient).dialer.SSL)

	c, err = NewEmailClient(MailOptions{Transport: "sendgrid", SendGridAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &SendGridClient{}, c)

	_, err = NewEmailClient(MailOptions{Transport: "pigeon"})
	assert.Error(t, err)
}

func TestSendGridClient(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		if r.URL.Path != "/v3/mail/send" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := &SendGridClient{apiKey: "SG.test", host: srv.URL}
	err := c.Send(context.Background(), Message{
		From: "tienda@example.com", To: "dueno@example.com", ReplyTo: "ana@example.com",
		Subject: "Nuevo Reclamo - Otro", HTML: "<p>hola</p>", Text: "hola",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer SG.test", auth)
	assert.Equal(t, "Nuevo Reclamo - Otro", got["subject"])
}

func TestSendGridClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	msg := Message{From: "a@b", To: "c@d", Subject: "s", HTML: "h"}
	assert.Error(t, (&SendGridClient{host: srv.URL}).Send(context.Background(), msg))
	assert.Error(t, (&SendGridClient{apiKey: "k", host: srv.URL}).Send(context.Background(), msg))
}
