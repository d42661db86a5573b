package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"bazibench/internal/migrations"
	"bazibench/internal/storage"
	"bazibench/internal/store"
	"bazibench/internal/worker"
)

func main() {
	_ = godotenv.Load()

	migrations.Run()

	db := store.MustOpen()
	s3c, err := storage.New(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	if err := worker.Run(os.Getenv("REDIS_ADDR"), db, s3c); err != nil {
		log.Fatal(err)
	}
}
