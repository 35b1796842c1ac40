package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KingdomVR/kvr-go-database/internal/model"
	"github.com/KingdomVR/kvr-go-database/internal/storage"
)

// Storage is a Redis-backed implementation of the account store.
//
// Optimistic concurrency is mapped onto Redis WATCH/MULTI/EXEC: every
// write watches the keys it touches and re-checks the account version
// inside the transaction. A failed EXEC or a stale version surfaces as
// model.ErrConflict so callers can retry with fresh state. The account
// record and its PIN index entry always commit in the same transaction.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, wrapInfraErr(err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.AccountStore = (*Storage)(nil)

func (s *Storage) CreateAccount(ctx context.Context, acct *model.Account) error {
	stored := *acct
	if stored.Version == 0 {
		stored.Version = 1
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}

	aKey := accountKey(stored.Username)
	pKey := pinIndexKey(stored.PIN)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, aKey).Result()
		if err != nil {
			return wrapInfraErr(err)
		}
		if exists > 0 {
			return model.ErrAccountExists
		}

		owner, err := tx.Get(ctx, pKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return wrapInfraErr(err)
		}
		if err == nil && model.Username(owner) != stored.Username {
			return model.ErrPinInUse
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, aKey, data, 0)
			pipe.Set(ctx, pKey, string(stored.Username), 0)
			pipe.SAdd(ctx, accountsIndexKey(), string(stored.Username))
			return nil
		})
		return err
	}, aKey, pKey)

	return mapTxErr(err)
}

func (s *Storage) GetAccount(ctx context.Context, username model.Username) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, wrapInfraErr(err)
	}

	var acct model.Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, username model.Username) error {
	aKey := accountKey(username)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		acct, err := getWatched(ctx, tx, username)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, aKey)
			pipe.Del(ctx, pinIndexKey(acct.PIN))
			pipe.SRem(ctx, accountsIndexKey(), string(username))
			return nil
		})
		return err
	}, aKey)

	return mapTxErr(err)
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	usernames, err := s.client.SMembers(ctx, accountsIndexKey()).Result()
	if err != nil {
		return nil, wrapInfraErr(err)
	}

	if len(usernames) == 0 {
		return []*model.Account{}, nil
	}

	keys := make([]string, len(usernames))
	for i, u := range usernames {
		keys[i] = accountKey(model.Username(u))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, wrapInfraErr(err)
	}

	accounts := make([]*model.Account, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // deleted between SMEMBERS and MGET
		}
		var acct model.Account
		if err := json.Unmarshal([]byte(val.(string)), &acct); err != nil {
			continue // skip invalid data
		}
		accounts = append(accounts, &acct)
	}

	return accounts, nil
}

func (s *Storage) LookupPIN(ctx context.Context, pin string) (model.Username, error) {
	username, err := s.client.Get(ctx, pinIndexKey(pin)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrPinNotFound
		}
		return "", wrapInfraErr(err)
	}
	return model.Username(username), nil
}

func (s *Storage) UpdateAccount(ctx context.Context, username model.Username, expectedVersion uint64, mutate storage.Mutator) (*model.Account, error) {
	// Dry-run on a snapshot first: the set of keys the transaction must
	// watch depends on whether mutate changes the PIN, which cannot be
	// known before running it. Any PIN change by a concurrent writer
	// also bumps the version, so the version check inside the watched
	// transaction still catches every race.
	current, err := s.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return nil, model.ErrConflict
	}

	scratch := *current
	if err := mutate(&scratch); err != nil {
		return nil, err
	}
	pinChanged := scratch.PIN != current.PIN

	aKey := accountKey(username)
	watchKeys := []string{aKey}
	if pinChanged {
		watchKeys = append(watchKeys, pinIndexKey(current.PIN), pinIndexKey(scratch.PIN))
	}

	var updated model.Account
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := getWatched(ctx, tx, username)
		if err != nil {
			return err
		}
		if stored.Version != expectedVersion {
			return model.ErrConflict
		}

		next := *stored
		if err := mutate(&next); err != nil {
			return err
		}
		next.Username = stored.Username // immutable
		if next.Balance < 0 {
			return model.ErrInsufficientFunds
		}

		if next.PIN != stored.PIN {
			owner, err := tx.Get(ctx, pinIndexKey(next.PIN)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return wrapInfraErr(err)
			}
			if err == nil && model.Username(owner) != username {
				return model.ErrPinInUse
			}
		}

		next.Version = stored.Version + 1

		data, err := json.Marshal(&next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, aKey, data, 0)
			if next.PIN != stored.PIN {
				pipe.Del(ctx, pinIndexKey(stored.PIN))
				pipe.Set(ctx, pinIndexKey(next.PIN), string(username), 0)
			}
			return nil
		})
		if err != nil {
			return err
		}

		updated = next
		return nil
	}, watchKeys...)

	if err := mapTxErr(err); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Storage) UpdateAccountPair(ctx context.Context, first model.Username, firstVersion uint64, second model.Username, secondVersion uint64, mutate storage.PairMutator) (*model.Account, *model.Account, error) {
	firstKey := accountKey(first)
	secondKey := accountKey(second)

	// Watch in deterministic order so concurrent transfers over the same
	// accounts cannot interleave their key acquisition
	watchKeys := []string{firstKey, secondKey}
	sort.Strings(watchKeys)

	var updatedFirst, updatedSecond model.Account
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		a, err := getWatched(ctx, tx, first)
		if err != nil {
			return err
		}
		b, err := getWatched(ctx, tx, second)
		if err != nil {
			return err
		}
		if a.Version != firstVersion || b.Version != secondVersion {
			return model.ErrConflict
		}

		nextA, nextB := *a, *b
		if err := mutate(&nextA, &nextB); err != nil {
			return err
		}
		// Identity and PIN are off-limits through the pair path
		nextA.Username, nextA.PIN = a.Username, a.PIN
		nextB.Username, nextB.PIN = b.Username, b.PIN
		if nextA.Balance < 0 || nextB.Balance < 0 {
			return model.ErrInsufficientFunds
		}

		nextA.Version = a.Version + 1
		nextB.Version = b.Version + 1

		dataA, err := json.Marshal(&nextA)
		if err != nil {
			return err
		}
		dataB, err := json.Marshal(&nextB)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, firstKey, dataA, 0)
			pipe.Set(ctx, secondKey, dataB, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updatedFirst, updatedSecond = nextA, nextB
		return nil
	}, watchKeys...)

	if err := mapTxErr(err); err != nil {
		return nil, nil, err
	}
	return &updatedFirst, &updatedSecond, nil
}

// getWatched reads an account inside a WATCH transaction
func getWatched(ctx context.Context, tx *redis.Tx, username model.Username) (*model.Account, error) {
	data, err := tx.Get(ctx, accountKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, wrapInfraErr(err)
	}

	var acct model.Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// mapTxErr converts a failed EXEC into the domain conflict error
func mapTxErr(err error) error {
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConflict
	}
	return err
}

// wrapInfraErr tags infrastructure faults (timeouts, broken connections)
// as ErrStoreUnavailable so the service layer can surface them distinctly
// from domain errors
func wrapInfraErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(model.ErrStoreUnavailable, err)
}
