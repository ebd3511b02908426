package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"cryptofolio/config"
	"cryptofolio/internal/domain/entity"
	"cryptofolio/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@cryptofolio.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, avatar_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name
		RETURNING id
	`, email, hash, "Demo User", "").Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", userID, email, password)

	now := time.Now().UTC()
	assets := []entity.Asset{
		{ID: uuid.NewString(), Symbol: "BTC", Name: "Bitcoin", Quantity: 0.5, BuyPrice: 30000, CurrentPrice: 30000, Wallet: "ledger", LastUpdated: now},
		{ID: uuid.NewString(), Symbol: "ETH", Name: "Ethereum", Quantity: 4, BuyPrice: 2500, CurrentPrice: 2500, Wallet: "metamask", LastUpdated: now},
	}
	raw, err := json.Marshal(assets)
	if err != nil {
		log.Fatalf("failed to marshal assets: %v", err)
	}
	var invested float64
	for _, a := range assets {
		invested += a.Quantity * a.BuyPrice
	}

	var portfolioID string
	err = db.QueryRow(`
		INSERT INTO portfolios (user_id, name, assets, total_invested_value, total_current_value, target_amount, currency, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, userID, "Long Term", raw, invested, invested, 50000.0, "USD", now).Scan(&portfolioID)
	if err != nil {
		log.Fatalf("failed to seed portfolio: %v", err)
	}
	fmt.Printf("seeded portfolio: id=%s assets=%d\n", portfolioID, len(assets))
}
