package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
	"github.com/ahinestrog/ferreriwork/internal/catalog"
	"github.com/ahinestrog/ferreriwork/internal/complaint"
	"github.com/ahinestrog/ferreriwork/internal/metrics"
	"github.com/ahinestrog/ferreriwork/internal/quote"
)

type pageData struct {
	IsAdmin   bool
	Productos []catalog.Product
	Producto  *catalog.Product
	Form      productForm
	Error     string
}

func (s *Server) page(r *http.Request) pageData {
	return pageData{IsAdmin: s.guard.IsAdmin(r)}
}

func (s *Server) listOrFail(w http.ResponseWriter, r *http.Request) ([]catalog.Product, bool) {
	products, err := s.catalog.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("catalog list")
		httpError(w, "No se pudo obtener el catálogo", http.StatusInternalServerError)
		return nil, false
	}
	return products, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	products, ok := s.listOrFail(w, r)
	if !ok {
		return
	}
	if len(products) > homeProducts {
		products = products[:homeProducts]
	}
	data := s.page(r)
	data.Productos = products
	s.render(w, "index.html", data, http.StatusOK)
}

func (s *Server) handleProductos(w http.ResponseWriter, r *http.Request) {
	products, ok := s.listOrFail(w, r)
	if !ok {
		return
	}
	data := s.page(r)
	data.Productos = products
	s.render(w, "productos.html", data, http.StatusOK)
}

func (s *Server) handleProducto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpError(w, "Producto no encontrado", http.StatusNotFound)
		return
	}
	p, err := s.catalog.Get(r.Context(), id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			httpError(w, "Producto no encontrado", http.StatusNotFound)
			return
		}
		httpError(w, "No se pudo obtener el producto", http.StatusInternalServerError)
		return
	}
	data := s.page(r)
	data.Producto = &p
	s.render(w, "producto_detalle.html", data, http.StatusOK)
}

func (s *Server) handleCotizacion(w http.ResponseWriter, r *http.Request) {
	products, ok := s.listOrFail(w, r)
	if !ok {
		return
	}
	data := s.page(r)
	data.Productos = products
	s.render(w, "cotizacion.html", data, http.StatusOK)
}

func (s *Server) handleMas(w http.ResponseWriter, r *http.Request) {
	s.render(w, "mas.html", s.page(r), http.StatusOK)
}

type quoteRequest struct {
	Carrito   []quote.CartItem  `json:"carrito"`
	Productos []catalog.Product `json:"productos"`
}

func (s *Server) handleDescargarCotizacion(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		metrics.QuoteDone(metrics.ResultInvalid)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Solicitud inválida"})
		return
	}
	if len(req.Carrito) == 0 {
		metrics.QuoteDone(metrics.ResultInvalid)
		writeError(w, quote.ErrEmptyCart)
		return
	}

	products := req.Productos
	if s.pricing == PricingServer {
		var err error
		if products, err = s.catalog.List(r.Context()); err != nil {
			metrics.QuoteDone(metrics.ResultError)
			writeError(w, err)
			return
		}
	}

	now := s.now()
	q, err := quote.Build(req.Carrito, products, now)
	if err != nil {
		metrics.QuoteDone(metrics.ResultInvalid)
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, q); err != nil {
		metrics.QuoteDone(metrics.ResultError)
		writeError(w, apperr.Transport("No se pudo generar la cotización", err))
		return
	}

	metrics.QuoteDone(metrics.ResultOK)
	log.Info().Int("lineas", len(q.Lines)).Str("total", quote.FormatMoney(q.Total)).Msg("quote generated")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+quote.FileName(now))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleEnviarReclamo(w http.ResponseWriter, r *http.Request) {
	var c complaint.Complaint
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&c); err != nil {
		metrics.ComplaintDone(metrics.ResultInvalid)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Solicitud inválida"})
		return
	}
	if err := s.notifier.Submit(r.Context(), c); err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			metrics.ComplaintDone(metrics.ResultInvalid)
		} else {
			metrics.ComplaintDone(metrics.ResultError)
		}
		writeError(w, err)
		return
	}
	metrics.ComplaintDone(metrics.ResultOK)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"mensaje": "Reclamo enviado exitosamente",
	})
}
