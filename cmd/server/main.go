package main

import (
	"net/http"

	"github.com/isaac-const/upple/internal/app"
	"github.com/isaac-const/upple/internal/auth"
	"github.com/isaac-const/upple/internal/db"
	"github.com/isaac-const/upple/internal/httpapi"
	"github.com/isaac-const/upple/internal/log"
	"github.com/isaac-const/upple/internal/storage"
	"github.com/isaac-const/upple/internal/store"
)

func main() {
	cfg := app.LoadConfig()
	d, err := db.Open(cfg.DatabaseURL)
	app.Must(err)
	app.Must(db.Migrate(d, cfg.SchemaPath))

	authSvc := &auth.Service{DB: d, Lifetime: cfg.SessionLifetime}
	blobs := storage.NewDisk(cfg.StorageRoot, cfg.PublicBaseURL)

	srv := httpapi.NewServer(authSvc, store.New(d), blobs, cfg)
	log.Info.Printf("listening on %s", cfg.Addr)
	app.Must(http.ListenAndServe(cfg.Addr, httpapi.WithAccessLog(httpapi.WithTimeout(srv))))
}
