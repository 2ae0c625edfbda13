package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handler assembles the router: request id and access log outermost, then
// CORS, then routes. Route metrics are recorded per matched route template.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/me", s.me).Methods(http.MethodGet)

	api.HandleFunc("/products", s.createProduct).Methods(http.MethodPost)
	api.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", s.deleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/messages", s.sendMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages", s.listMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id}/read", s.markRead).Methods(http.MethodPut)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	if s.opts.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", noDirListing(http.FileServer(http.Dir(s.opts.UploadDir)))))
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, false, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, false, "method not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	return s.requestLogger(c.Handler(r))
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			writeMessage(w, http.StatusNotFound, false, "not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}
