// internal/profile/routes.go
package profile

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
)

// RegisterRoutes mounts the profile endpoints.
func RegisterRoutes(router *mux.Router, h *Handlers, authMw *auth.Middleware) {
	router.Handle("/profile",
		authMw.Authenticate(http.HandlerFunc(h.GetOwn))).Methods("GET")
	router.Handle("/profile",
		authMw.Authenticate(http.HandlerFunc(h.Update))).Methods("PUT")
	router.Handle("/profile/avatar",
		authMw.Authenticate(http.HandlerFunc(h.UploadAvatar))).Methods("POST")

	router.Handle("/profiles/{username}",
		authMw.OptionalAuthenticate(http.HandlerFunc(h.GetByUsername))).Methods("GET")
}
