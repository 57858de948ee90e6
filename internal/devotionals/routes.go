// internal/devotionals/routes.go
package devotionals

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
)

// RegisterRoutes mounts the devotional endpoints. Reading is public,
// creating requires a signed-in caller.
func RegisterRoutes(router *mux.Router, h *Handlers, authMw *auth.Middleware) {
	router.HandleFunc("/devotionals", h.List).Methods("GET")
	router.HandleFunc("/devotionals/today", h.Today).Methods("GET")
	router.Handle("/devotionals",
		authMw.Authenticate(http.HandlerFunc(h.Create))).Methods("POST")
}
