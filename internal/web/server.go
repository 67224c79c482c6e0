// Package web sirve la tienda: páginas públicas, descarga de cotizaciones,
// reclamos y el panel de administración.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/ahinestrog/ferreriwork/internal/auth"
	"github.com/ahinestrog/ferreriwork/internal/catalog"
	"github.com/ahinestrog/ferreriwork/internal/complaint"
	"github.com/ahinestrog/ferreriwork/internal/metrics"
	"github.com/ahinestrog/ferreriwork/internal/quote"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	PricingServer = "server" // precios del catálogo actual
	PricingClient = "client" // precios enviados por el navegador

	homeProducts = 8
	maxBodyBytes = 1 << 20
)

type Deps struct {
	Catalog     *catalog.Service
	Guard       *auth.Guard
	Notifier    *complaint.Notifier
	Renderer    quote.Renderer
	Pricing     string
	CORSOrigins []string
	Now         func() time.Time
}

type Server struct {
	catalog  *catalog.Service
	guard    *auth.Guard
	notifier *complaint.Notifier
	renderer quote.Renderer
	pricing  string
	origins  []string
	now      func() time.Time
	pages    map[string]*template.Template
}

var pageFiles = []string{
	"index.html",
	"productos.html",
	"producto_detalle.html",
	"cotizacion.html",
	"mas.html",
	"admin/login.html",
	"admin/dashboard.html",
	"admin/productos.html",
	"admin/form.html",
	"admin/ventas.html",
}

func New(d Deps) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		catalog:  d.Catalog,
		guard:    d.Guard,
		notifier: d.Notifier,
		renderer: d.Renderer,
		pricing:  d.Pricing,
		origins:  d.CORSOrigins,
		now:      d.Now,
		pages:    pages,
	}
	if s.renderer == nil {
		s.renderer = quote.NewPDFRenderer()
	}
	if s.pricing == "" {
		s.pricing = PricingServer
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"money": func(v float64) string { return quote.FormatMoney(catalog.MoneyFromFloat(v)) },
		"year":  func() int { return time.Now().Year() },
	}
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		base, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		t, err := base.ParseFS(templatesFS, "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	admin := s.guard.RequireAdmin

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /productos", s.handleProductos)
	mux.HandleFunc("GET /producto/{id}", s.handleProducto)
	mux.HandleFunc("GET /cotizacion", s.handleCotizacion)
	mux.HandleFunc("GET /mas", s.handleMas)
	mux.HandleFunc("POST /descargar-cotizacion", s.handleDescargarCotizacion)
	mux.HandleFunc("POST /enviar-reclamo", s.handleEnviarReclamo)

	mux.HandleFunc("GET /admin", s.handleAdminLogin)
	mux.HandleFunc("POST /admin", s.handleAdminLogin)
	mux.HandleFunc("GET /admin/logout", s.handleAdminLogout)
	mux.Handle("GET /admin/dashboard", admin(http.HandlerFunc(s.handleAdminDashboard)))
	mux.Handle("GET /admin/productos", admin(http.HandlerFunc(s.handleAdminProductos)))
	mux.Handle("GET /admin/ventas", admin(http.HandlerFunc(s.handleAdminVentas)))
	mux.Handle("GET /admin/add", admin(http.HandlerFunc(s.handleAdminAdd)))
	mux.Handle("POST /admin/add", admin(http.HandlerFunc(s.handleAdminAdd)))
	mux.Handle("GET /admin/edit/{id}", admin(http.HandlerFunc(s.handleAdminEdit)))
	mux.Handle("POST /admin/edit/{id}", admin(http.HandlerFunc(s.handleAdminEdit)))
	mux.Handle("POST /admin/eliminar/{id}", admin(http.HandlerFunc(s.handleAdminEliminar)))

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

// Handler arma la cadena recover → log → CORS → métricas → rutas.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	})
	return recoverer(withLog(c.Handler(metrics.Instrument(s.routes()))))
}
