package store

import (
	"context"
	"strings"
	"sync"
)

type InMemoryStoreProvider struct {
	keys   keyPrefixer
	mu     sync.RWMutex
	stores map[string]map[string][]byte
}

func (p *InMemoryStoreProvider) InitStores(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stores = make(map[string]map[string][]byte)
	return nil
}

func (p *InMemoryStoreProvider) GetValue(ctx context.Context, storeName, key string) ([]byte, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.stores[storeName]
	if !ok {
		return nil, false, nil
	}
	val, found := data[p.keys.apply(key)]
	return val, found, nil
}

func (p *InMemoryStoreProvider) StoreValue(ctx context.Context, storeName, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stores == nil {
		p.stores = make(map[string]map[string][]byte)
	}
	data, ok := p.stores[storeName]
	if !ok {
		data = make(map[string][]byte)
		p.stores[storeName] = data
	}
	data[p.keys.apply(key)] = value
	return nil
}

func (p *InMemoryStoreProvider) GetAllValues(ctx context.Context, storeName, keyPrefix string) ([]Item, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.stores[storeName]
	if !ok {
		return nil, nil
	}
	keyPrefix = p.keys.apply(keyPrefix)
	items := make([]Item, 0, len(data))
	for k, v := range data {
		if strings.HasPrefix(k, keyPrefix) {
			items = append(items, Item{Key: p.keys.remove(k), Value: v})
		}
	}
	sortItems(items)
	return items, nil
}

func (p *InMemoryStoreProvider) DeleteValue(ctx context.Context, storeName, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if data, ok := p.stores[storeName]; ok {
		delete(data, p.keys.apply(key))
	}
	return nil
}

func (p *InMemoryStoreProvider) DeleteStore(ctx context.Context, storeName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.stores, storeName)
	return nil
}
