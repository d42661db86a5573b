package main

import (
	"context"
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"bazibench/internal/httpapi"
	"bazibench/internal/migrations"
	"bazibench/internal/storage"
	"bazibench/internal/store"
)

func main() {
	_ = godotenv.Load()

	// Run embedded migrations (idempotent)
	migrations.Run()

	dbase := store.MustOpen()
	s3c, err := storage.New(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	asq := asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("REDIS_ADDR")})
	srv := httpapi.NewServer(dbase, s3c, asq)
	log.Printf("api listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
