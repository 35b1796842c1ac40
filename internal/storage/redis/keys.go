package redis

import (
	"fmt"

	"github.com/KingdomVR/kvr-go-database/internal/model"
)

// Key prefix for all ledger data
const keyPrefix = "kvrdb"

// accountKey returns the Redis key for an Account record
func accountKey(username model.Username) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, username)
}

// pinIndexKey returns the Redis key for the pin -> username index entry
func pinIndexKey(pin string) string {
	return fmt.Sprintf("%s:idx:pin:%s", keyPrefix, pin)
}

// accountsIndexKey returns the Redis key for the SET of all usernames
func accountsIndexKey() string {
	return fmt.Sprintf("%s:idx:accounts", keyPrefix)
}
