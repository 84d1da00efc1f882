package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Secret returns the API signing key, generating and storing one on first use.
func Secret(ctx context.Context, slots Slots) (string, error) {
	existing, err := slots.Get(ctx, SlotSecret)
	if err != nil {
		return "", fmt.Errorf("querying secret: %w", err)
	}
	if len(existing) > 0 {
		return string(existing), nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	if err := slots.Set(ctx, SlotSecret, []byte(secret)); err != nil {
		return "", fmt.Errorf("storing secret: %w", err)
	}
	return secret, nil
}
