package quote

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
	"github.com/ahinestrog/ferreriwork/internal/catalog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var issued = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

func catalogFixture() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Nombre: "Taladro", Precio: 10.00},
		{ID: 2, Nombre: "Brocas", Precio: 5.50},
	}
}

func TestBuildSkipsUnknownIDs(t *testing.T) {
	cart := []CartItem{{ID: 1, Qty: 2}, {ID: 2, Qty: 1}, {ID: 99, Qty: 5}}
	q, err := Build(cart, catalogFixture(), issued)
	require.NoError(t, err)

	require.Len(t, q.Lines, 2)
	assert.Equal(t, "Taladro", q.Lines[0].Product.Nombre)
	assert.Equal(t, catalog.Money{Cents: 2000}, q.Lines[0].Subtotal)
	assert.Equal(t, catalog.Money{Cents: 550}, q.Lines[1].Subtotal)
	assert.Equal(t, catalog.Money{Cents: 2550}, q.Total)
	assert.Equal(t, "S/ 25.50", FormatMoney(q.Total))
}

func TestBuildEmptyCart(t *testing.T) {
	for _, cart := range [][]CartItem{nil, {}} {
		_, err := Build(cart, catalogFixture(), issued)
		require.Error(t, err)
		assert.True(t, IsEmptyCart(err))
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestBuildOnlyUnknownIDs(t *testing.T) {
	q, err := Build([]CartItem{{ID: 7, Qty: 1}}, catalogFixture(), issued)
	require.NoError(t, err)
	assert.Empty(t, q.Lines)
	assert.Equal(t, catalog.Money{}, q.Total)
}

func TestBuildDefaultsQuantity(t *testing.T) {
	q, err := Build([]CartItem{{ID: 2}}, catalogFixture(), issued)
	require.NoError(t, err)
	require.Len(t, q.Lines, 1)
	assert.Equal(t, 1, q.Lines[0].Qty)
	assert.Equal(t, catalog.Money{Cents: 550}, q.Total)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "S/ 0.00", FormatMoney(catalog.Money{}))
	assert.Equal(t, "S/ 20.00", FormatMoney(catalog.Money{Cents: 2000}))
	assert.Equal(t, "S/ 1234.50", FormatMoney(catalog.Money{Cents: 123450}))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "cotizacion_20250314_092653.pdf", FileName(issued))
}

func TestPDFRenderer(t *testing.T) {
	q, err := Build([]CartItem{{ID: 1, Qty: 2}, {ID: 2, Qty: 1}}, catalogFixture(), issued)
	require.NoError(t, err)

	r := &PDFRenderer{Letterhead: DefaultLetterhead}
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, q))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "(FERRERI-WORK)")
	assert.Contains(t, out, "(Taladro)")
	assert.Contains(t, out, "(S/ 5.50)")
	assert.Contains(t, out, "(TOTAL: S/ 25.50)")
	assert.Contains(t, out, "(14/03/2025)")
}

func TestPDFRendererLongNamesAndEmptyQuote(t *testing.T) {
	long := strings.Repeat("Escalera telescópica de aluminio ", 5)
	q, err := Build([]CartItem{{ID: 1, Qty: 1}}, []catalog.Product{{ID: 1, Nombre: long, Precio: 899}}, issued)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(&buf, q))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, NewPDFRenderer().Render(&buf, Quote{IssuedAt: issued}))
	assert.NotZero(t, buf.Len())
}

func TestUnencodable(t *testing.T) {
	assert.Empty(t, Unencodable("Llave inglesa Ñandú 1/2\" · ©"))
	assert.Equal(t, []rune{'🔨'}, Unencodable("Taladro 🔨 Pro 🔨"))
	assert.Equal(t, []rune{'Ω', '→'}, Unencodable("Resistencia 10Ω → 20Ω"))
}

func TestPDFRendererWarnsOnUnencodableNames(t *testing.T) {
	var logs bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = prev })

	q, err := Build([]CartItem{{ID: 9, Qty: 1}}, []catalog.Product{{ID: 9, Nombre: "Taladro 🔨 Pro", Precio: 120}}, issued)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(&buf, q))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), `"caracteres":"🔨"`)
	assert.Contains(t, logs.String(), `"id":9`)
}
