// internal/posts/routes.go
package posts

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/koinoniahq/koinonia-backend/internal/auth"
)

// RegisterRoutes mounts the feed endpoints. Reads take optional auth so
// anonymous browsing works; every mutation requires a signed-in caller.
func RegisterRoutes(router *mux.Router, h *Handlers, authMw *auth.Middleware) {
	router.Handle("/posts",
		authMw.OptionalAuthenticate(http.HandlerFunc(h.GetFeed))).Methods("GET")
	router.Handle("/posts",
		authMw.Authenticate(http.HandlerFunc(h.CreatePost))).Methods("POST")
	router.Handle("/posts/{id}",
		authMw.OptionalAuthenticate(http.HandlerFunc(h.GetPost))).Methods("GET")

	router.Handle("/posts/{id}/liked",
		authMw.OptionalAuthenticate(http.HandlerFunc(h.GetLiked))).Methods("GET")
	router.Handle("/posts/{id}/like",
		authMw.Authenticate(http.HandlerFunc(h.ToggleLike))).Methods("POST")

	router.Handle("/posts/{id}/comments",
		authMw.OptionalAuthenticate(http.HandlerFunc(h.ListComments))).Methods("GET")
	router.Handle("/posts/{id}/comments",
		authMw.Authenticate(http.HandlerFunc(h.AddComment))).Methods("POST")

	router.Handle("/comments/{id}",
		authMw.Authenticate(http.HandlerFunc(h.UpdateComment))).Methods("PUT")
	router.Handle("/comments/{id}",
		authMw.Authenticate(http.HandlerFunc(h.DeleteComment))).Methods("DELETE")
}
