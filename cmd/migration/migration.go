package main

import (
	"context"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/drivers/database"
	"farmstay-service/internal/app/services/core/bookings"
	"farmstay-service/internal/app/services/core/payments"
	"log"
	"time"
)

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// Applies the Mongo indexes the service relies on, including the unique payment reference index.
func main() {
	driverConfig := config.NewDriverConfig()
	mongoDB := database.NewMongoDB(driverConfig)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	defer mongoDB.Client().Disconnect(context.Background())

	collections := map[string]indexer{
		"bookings":         bookings.NewBookingMongoRepository(mongoDB),
		"payment_requests": payments.NewPaymentRequestMongoRepository(mongoDB),
	}

	for name, repository := range collections {
		if err := repository.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Error ensuring indexes for %s: %v", name, err)
		}
		log.Printf("Applied indexes for %s", name)
	}
}
