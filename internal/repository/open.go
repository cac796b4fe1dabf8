package repository

import (
	"fmt"
	"net/http"
	"strings"

	"snp/internal/config"
	"snp/internal/infra"
)

// Open returns the ticket backend selected by STORE_DRIVER.
func Open(cfg *config.Config, httpClient *http.Client) (TicketRepository, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StoreDriver)) {
	case "", "firebase":
		if cfg.FirebaseURL == "" {
			return nil, fmt.Errorf("store: FIREBASE_URL is empty")
		}
		client := infra.NewFirebaseClient(cfg.FirebaseURL, cfg.FirebaseAuth, httpClient)
		return NewFirebaseTicketRepository(client, cfg.FirebaseCollection), nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("store: DATABASE_URL is empty")
		}
		db, err := infra.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("store: postgres: %w", err)
		}
		return NewGormTicketRepository(db), nil
	default:
		return nil, fmt.Errorf("store: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
