package local

import (
	"sync"

	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
)

func New() Client {
	return &local{
		store: make(map[string]*cache.Lookup),
		mut:   &sync.RWMutex{},
	}
}

// Client is an in-process phrase store.
type Client interface {
	Get(key string) *cache.Lookup
	// Add records that the phrase key belongs to rule.
	Add(key, rule string)
	Len() int
}

type local struct {
	store map[string]*cache.Lookup
	mut   *sync.RWMutex
}

func (l *local) Get(key string) *cache.Lookup {
	l.mut.RLock()
	defer l.mut.RUnlock()

	lookup, ok := l.store[key]
	if !ok {
		return nil
	}

	return lookup
}

func (l *local) Add(key, rule string) {
	l.mut.Lock()
	defer l.mut.Unlock()

	lookup, ok := l.store[key]
	if !ok {
		lookup = &cache.Lookup{Key: key}
		l.store[key] = lookup
	}
	lookup.AddRule(rule)
}

func (l *local) Len() int {
	l.mut.RLock()
	defer l.mut.RUnlock()

	return len(l.store)
}
