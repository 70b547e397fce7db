package redis

import (
	"fmt"

	"github.com/tetranet/tetranet/internal/model"
)

// Key prefix for all stored data
const keyPrefix = "tetranet"

// historyKey returns the Redis key for a seed's match-history list.
func historyKey(seed model.Seed) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, seed)
}
