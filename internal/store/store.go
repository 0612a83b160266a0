package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DriverInMemory = "store-inmemory"
	DriverRedis    = "store-redis"
	DriverDynamoDB = "store-dynamodb"
)

// Item is a stored value together with its key, without the key prefix
type Item struct {
	Key   string
	Value []byte
}

// StoreProvider interface defines the contract for store implementations.
// GetAllValues returns items ordered by key.
type StoreProvider interface {
	InitStores(ctx context.Context) error
	GetValue(ctx context.Context, storeName, key string) ([]byte, bool, error)
	StoreValue(ctx context.Context, storeName, key string, value []byte) error
	GetAllValues(ctx context.Context, storeName, keyPrefix string) ([]Item, error)
	DeleteValue(ctx context.Context, storeName, key string) error
	DeleteStore(ctx context.Context, storeName string) error
}

// Options configures the store provider
type Options struct {
	Driver    string
	KeyPrefix string

	RedisAddr     string
	RedisPassword string
	RedisExpiry   time.Duration

	DynamoDBTable string
	AWSRegion     string
}

// Store represents a handle to a specific named store
type Store struct {
	name     string
	provider StoreProvider
}

// Open returns a handle to a specific store
func Open(storeName string, provider StoreProvider) *Store {
	return &Store{
		name:     storeName,
		provider: provider,
	}
}

// Name returns the name of the store
func (s *Store) Name() string {
	return s.name
}

// GetValue retrieves a value from the store
func (s *Store) GetValue(ctx context.Context, key string) ([]byte, bool, error) {
	return s.provider.GetValue(ctx, s.name, key)
}

// StoreValue stores a value in the store
func (s *Store) StoreValue(ctx context.Context, key string, value []byte) error {
	return s.provider.StoreValue(ctx, s.name, key, value)
}

// GetAllValues retrieves all values from the store with an optional prefix
func (s *Store) GetAllValues(ctx context.Context, keyPrefix string) ([]Item, error) {
	return s.provider.GetAllValues(ctx, s.name, keyPrefix)
}

// DeleteValue removes a value from the store
func (s *Store) DeleteValue(ctx context.Context, key string) error {
	return s.provider.DeleteValue(ctx, s.name, key)
}

// DeleteStore removes the entire store
func (s *Store) DeleteStore(ctx context.Context) error {
	return s.provider.DeleteStore(ctx, s.name)
}

// NewStoreProvider creates and initialises the provider named by opts.Driver.
// An empty driver selects the in-memory provider.
func NewStoreProvider(ctx context.Context, opts Options) (StoreProvider, error) {
	keys := keyPrefixer{prefix: opts.KeyPrefix}

	var provider StoreProvider
	switch opts.Driver {
	case "", DriverInMemory:
		provider = &InMemoryStoreProvider{keys: keys}
	case DriverRedis:
		provider = &RedisStoreProvider{
			keys:     keys,
			addr:     opts.RedisAddr,
			password: opts.RedisPassword,
			expiry:   opts.RedisExpiry,
		}
	case DriverDynamoDB:
		provider = &DynamoDBStoreProvider{
			keys:      keys,
			tableName: opts.DynamoDBTable,
			region:    opts.AWSRegion,
		}
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", opts.Driver)
	}

	if err := provider.InitStores(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialise %s: %w", opts.Driver, err)
	}
	return provider, nil
}

type keyPrefixer struct {
	prefix string
}

func (k keyPrefixer) apply(key string) string {
	if k.prefix != "" {
		return k.prefix + "." + key
	}
	return key
}

func (k keyPrefixer) remove(key string) string {
	if k.prefix != "" {
		return strings.TrimPrefix(key, k.prefix+".")
	}
	return key
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})
}
