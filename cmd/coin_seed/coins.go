package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/TurnIfCode/backend-gogo/models"
)

// parseCoins reads a JSON array of coin packages. Entries without an id get
// one derived from their coin amount so re-seeding the same file upserts.
func parseCoins(r io.Reader, now time.Time) ([]models.Coin, error) {
	var coins []models.Coin
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&coins); err != nil {
		return nil, fmt.Errorf("decode coins: %w", err)
	}
	for i := range coins {
		c := &coins[i]
		if !c.CoinAmount.IsPositive() || !c.Price.IsPositive() {
			return nil, fmt.Errorf("coin #%d: coin_amount and price must be greater than 0", i+1)
		}
		if c.FinalPrice.IsZero() {
			c.FinalPrice = c.Price
		}
		if c.ID == "" {
			c.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("coin:"+c.CoinAmount.String())).String()
		}
		c.CreatedBy, c.UpdatedBy = "coin_seed", "coin_seed"
		c.CreatedAt, c.UpdatedAt = now, now
	}
	return coins, nil
}

func loadCoins(path string) ([]models.Coin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseCoins(f, time.Now())
}
