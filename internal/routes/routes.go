package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/9-8-7-6/vito/internal/handlers"
	appmw "github.com/9-8-7-6/vito/internal/middleware"
)

func New(h *handlers.Handler, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(appmw.Authenticated(jwtSecret))

		r.Get("/auth/me", h.Me)

		r.Get("/accounts", h.ListAccounts)
		r.Get("/accounts/{username}", h.GetAccount)
		r.Get("/accounts/{username}/assets", h.ListAssets)
		r.Get("/accounts/{username}/transactions", h.ListTransactions)

		r.Post("/assets", h.CreateAsset)
		r.Patch("/assets/{id}", h.UpdateAsset)
		r.Delete("/assets/{id}", h.DeleteAsset)

		r.Post("/transactions", h.CreateTransaction)
		r.Get("/transactions/{id}", h.GetTransaction)
		r.Patch("/transactions/{id}", h.UpdateTransaction)
		r.Delete("/transactions/{id}", h.DeleteTransaction)
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	return r
}
