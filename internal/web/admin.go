package web

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
	"github.com/ahinestrog/ferreriwork/internal/auth"
	"github.com/ahinestrog/ferreriwork/internal/catalog"
	"github.com/ahinestrog/ferreriwork/internal/metrics"
)

// productForm guarda lo que escribió el usuario para volver a mostrarlo.
type productForm struct {
	Nombre      string
	Marca       string
	Precio      string
	Descripcion string
	Imagen      string
}

func formFromRequest(r *http.Request) productForm {
	return productForm{
		Nombre:      r.PostFormValue("nombre"),
		Marca:       r.PostFormValue("marca"),
		Precio:      r.PostFormValue("precio"),
		Descripcion: r.PostFormValue("descripcion"),
		Imagen:      r.PostFormValue("imagen"),
	}
}

func formFromProduct(p catalog.Product) productForm {
	return productForm{
		Nombre:      p.Nombre,
		Marca:       p.Marca,
		Precio:      strconv.FormatFloat(p.Precio, 'f', -1, 64),
		Descripcion: p.Descripcion,
		Imagen:      p.Imagen,
	}
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if s.guard.IsAdmin(r) {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	if r.Method != http.MethodPost {
		s.render(w, "admin/login.html", pageData{}, http.StatusOK)
		return
	}
	token, err := s.guard.ValidateFrom(r.Context(), clientIP(r), r.PostFormValue("password"))
	if err != nil {
		s.render(w, "admin/login.html", pageData{Error: apperr.Message(err)}, http.StatusOK)
		return
	}
	auth.SetSession(w, r, token)
	log.Info().Msg("admin: login")
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.guard.Revoke(auth.TokenFrom(r))
	auth.ClearSession(w)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, "admin/dashboard.html", pageData{IsAdmin: true}, http.StatusOK)
}

func (s *Server) handleAdminVentas(w http.ResponseWriter, r *http.Request) {
	s.render(w, "admin/ventas.html", pageData{IsAdmin: true}, http.StatusOK)
}

func (s *Server) handleAdminProductos(w http.ResponseWriter, r *http.Request) {
	products, ok := s.listOrFail(w, r)
	if !ok {
		return
	}
	s.render(w, "admin/productos.html", pageData{IsAdmin: true, Productos: products}, http.StatusOK)
}

func (s *Server) handleAdminAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, "admin/form.html", pageData{IsAdmin: true}, http.StatusOK)
		return
	}
	form := formFromRequest(r)
	in, err := catalog.ParseProductForm(r.PostFormValue)
	if err == nil {
		_, err = s.catalog.Create(r.Context(), in)
	}
	if err != nil {
		s.formError(w, form, nil, err)
		return
	}
	metrics.CatalogMutation("create")
	http.Redirect(w, r, "/admin/productos", http.StatusSeeOther)
}

func (s *Server) handleAdminEdit(w http.ResponseWriter, r *http.Request) {
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
	if r.Method != http.MethodPost {
		s.render(w, "admin/form.html", pageData{IsAdmin: true, Producto: &p, Form: formFromProduct(p)}, http.StatusOK)
		return
	}

	form := formFromRequest(r)
	in, err := catalog.ParseProductForm(r.PostFormValue)
	if err == nil {
		_, err = s.catalog.Update(r.Context(), id, in)
	}
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			httpError(w, "Producto no encontrado", http.StatusNotFound)
			return
		}
		s.formError(w, form, &p, err)
		return
	}
	metrics.CatalogMutation("update")
	http.Redirect(w, r, "/admin/productos", http.StatusSeeOther)
}

// formError vuelve a pintar el formulario; los errores de validación van con 200.
func (s *Server) formError(w http.ResponseWriter, form productForm, p *catalog.Product, err error) {
	status := http.StatusOK
	if apperr.KindOf(err) != apperr.KindValidation {
		log.Error().Err(err).Msg("admin: guardar producto")
		status = http.StatusInternalServerError
	}
	s.render(w, "admin/form.html", pageData{IsAdmin: true, Producto: p, Form: form, Error: apperr.Message(err)}, status)
}

func (s *Server) handleAdminEliminar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Producto no encontrado"})
		return
	}
	if err := s.catalog.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	metrics.CatalogMutation("delete")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
