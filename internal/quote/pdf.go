package quote

import (
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

// Letterhead son los datos fijos de la empresa impresos en la cotización.
type Letterhead struct {
	Title     string
	Company   string
	Phone     string
	Email     string
	ValidDays int
}

var DefaultLetterhead = Letterhead{
	Title:     "FERRERI-WORK",
	Company:   "Ferreri-Work",
	Phone:     "+51 999 999 999",
	Email:     "info@ferreri-work.com",
	ValidDays: 30,
}

// Renderer escribe una cotización en w.
type Renderer interface {
	Render(w io.Writer, q Quote) error
}

type rgb struct{ r, g, b int }

var (
	colorTitle    = rgb{0xdf, 0x59, 0x00}
	colorAccent   = rgb{0xd1, 0x70, 0x00}
	colorSubtitle = rgb{0x66, 0x66, 0x66}
	colorFooter   = rgb{0x99, 0x99, 0x99}
	colorRowAlt   = rgb{0xf6, 0xf7, 0xfb}
	colorWhite    = rgb{0xff, 0xff, 0xff}
	colorBlack    = rgb{0, 0, 0}
)

const inch = 72.0

// Columnas: Producto, Precio Unit., Cantidad, Subtotal.
var colWidths = []float64{2.5 * inch, 1.2 * inch, 0.8 * inch, 1.2 * inch}

// PDFRenderer genera la cotización en tamaño carta con fpdf.
type PDFRenderer struct {
	Letterhead Letterhead
	Compress   bool
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Letterhead: DefaultLetterhead, Compress: true}
}

func (r *PDFRenderer) Render(w io.Writer, q Quote) error {
	lh := r.Letterhead
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(r.Compress)
	pdf.SetMargins(inch, 0.5*inch, inch)
	pdf.SetAutoPageBreak(true, 0.5*inch)
	pdf.SetCreationDate(q.IssuedAt)
	pdf.SetTitle("Cotización "+lh.Company, true)
	pdf.SetAuthor(lh.Company, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 para las fuentes base
	pdf.AddPage()

	// Encabezado
	setColor(pdf.SetTextColor, colorTitle)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 30, tr(lh.Title), "", 1, "C", false, 0, "")
	setColor(pdf.SetTextColor, colorSubtitle)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, tr("Cotización Comercial"), "", 1, "C", false, 0, "")
	pdf.Ln(12 + 0.2*inch)

	// Datos de la empresa
	setColor(pdf.SetTextColor, colorBlack)
	writeFields(pdf, tr, []field{
		{"Empresa:", lh.Company},
		{"Teléfono:", lh.Phone},
		{"Email:", lh.Email},
	})
	writeFields(pdf, tr, []field{
		{"Fecha:", q.IssuedAt.Format("02/01/2006")},
		{"Válida por:", strconv.Itoa(lh.ValidDays) + " días"},
	})
	pdf.Ln(0.2 * inch)

	// Tabla
	var tableW float64
	for _, cw := range colWidths {
		tableW += cw
	}
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	x0 := left + (pageW-left-right-tableW)/2

	pdf.SetLineWidth(1)
	setColor(pdf.SetDrawColor, colorBlack)
	setColor(pdf.SetFillColor, colorAccent)
	setColor(pdf.SetTextColor, colorWhite)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetX(x0)
	for i, h := range []string{"Producto", "Precio Unit.", "Cantidad", "Subtotal"} {
		pdf.CellFormat(colWidths[i], 24, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	setColor(pdf.SetTextColor, colorBlack)
	pdf.SetFont("Helvetica", "", 10)
	for n, line := range q.Lines {
		if n%2 == 0 {
			setColor(pdf.SetFillColor, colorWhite)
		} else {
			setColor(pdf.SetFillColor, colorRowAlt)
		}
		if lost := Unencodable(line.Product.Nombre); len(lost) > 0 {
			log.Warn().Int64("id", line.Product.ID).Str("nombre", line.Product.Nombre).
				Str("caracteres", string(lost)).Msg("quote: caracteres fuera de cp1252 se imprimen como '.'")
		}
		cells := []string{
			fitText(pdf, tr(line.Product.Nombre), colWidths[0]-6),
			tr(FormatMoney(line.Unit)),
			strconv.Itoa(line.Qty),
			tr(FormatMoney(line.Subtotal)),
		}
		pdf.SetX(x0)
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], 18, c, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(0.3 * inch)

	// Total
	setColor(pdf.SetTextColor, colorAccent)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 18, tr("TOTAL: "+FormatMoney(q.Total)), "", 1, "R", false, 0, "")
	pdf.Ln(0.3 * inch)

	// Pie
	setColor(pdf.SetTextColor, colorFooter)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 12, tr("Gracias por su interés. Para confirmar pedido, contáctenos."), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 12, tr("© "+strconv.Itoa(q.IssuedAt.Year())+" "+lh.Company+" · Todos los derechos reservados"), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

// Unencodable devuelve los caracteres de s que las fuentes base (cp1252) no
// pueden dibujar, sin repetidos.
func Unencodable(s string) []rune {
	var out []rune
	seen := map[rune]bool{}
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

type field struct{ label, value string }

// writeFields escribe "Etiqueta: valor | Etiqueta: valor" en una sola línea.
func writeFields(pdf *fpdf.Fpdf, tr func(string) string, fields []field) {
	const h = 14
	for i, f := range fields {
		if i > 0 {
			pdf.SetFont("Helvetica", "", 10)
			pdf.Write(h, " | ")
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Write(h, tr(f.label)+" ")
		pdf.SetFont("Helvetica", "", 10)
		pdf.Write(h, tr(f.value))
	}
	pdf.Ln(h)
}

// fitText recorta s con "..." para que quepa en width.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return strings.TrimRight(s, " ") + "..."
}

func setColor(set func(r, g, b int), c rgb) { set(c.r, c.g, c.b) }
