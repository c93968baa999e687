package server

import (
	"context"
	"net/http"

	"barcraft/internal/handlers"
	applog "barcraft/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/login", handlers.Login)
	mux.HandleFunc("/signup", handlers.Signup)
	mux.HandleFunc("/logout", handlers.Logout)

	protect := func(h http.HandlerFunc) http.Handler {
		return handlers.RequireAuthentication(h)
	}
	mux.Handle("/api/ingredients", protect(handlers.IngredientResource))
	mux.Handle("/api/ingredients/", protect(handlers.IngredientResource))
	mux.Handle("/api/suppliers", protect(handlers.SupplierResource))
	mux.Handle("/api/suppliers/", protect(handlers.SupplierResource))
	mux.Handle("/api/cocktails", protect(handlers.CocktailResource))
	mux.Handle("/api/cocktails/", protect(handlers.CocktailResource))
	mux.Handle("/api/orders", protect(handlers.OrderResource))
	mux.Handle("/api/orders/", protect(handlers.OrderResource))
	mux.Handle("/api/tools/import-recipe", protect(handlers.ToolsImportRecipe))

	applog.Debug(context.Background(), "http routes registered")
	return mux
}
