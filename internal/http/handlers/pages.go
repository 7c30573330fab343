package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/http/respond"
	"github.com/hongminglow/clubcore/internal/middleware"
)

// PagesHandler returns the props bundle a page would render with, plus the
// landing bodies for the three redirect destinations.
type PagesHandler struct{}

// NewPagesHandler constructs the handler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Register attaches page routes. Call it last: /{clubId} matches any single segment.
func (h *PagesHandler) Register(r *mux.Router, guard *middleware.ClubAuth) {
	r.HandleFunc(access.LoginPath, landing("login", "Sign in to continue")).Methods(http.MethodGet)
	r.HandleFunc(access.NotAuthorizedPath, landing("not-authorized", "You do not have access to this club")).Methods(http.MethodGet)
	r.HandleFunc(access.CheckoutPath, landing("checkout", "Your trial has ended")).Methods(http.MethodGet)

	r.Handle("/{clubId}", guard.Page("")(http.HandlerFunc(h.handlePage))).Methods(http.MethodGet)
	r.Handle("/{clubId}/{section}", guard.Page("")(http.HandlerFunc(h.handlePage))).Methods(http.MethodGet)
}

func (h *PagesHandler) handlePage(w http.ResponseWriter, r *http.Request) {
	props, _ := access.PropsFrom(r.Context())
	respond.JSON(w, http.StatusOK, access.Result{Props: props})
}

func landing(page, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"page": page, "message": message})
	}
}
