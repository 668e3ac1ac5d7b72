package matcher

import (
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache/remote"
)

// DefaultPipelineSize is the number of keys sent to a remote store per request.
const DefaultPipelineSize = 5000

// Store resolves normalised phrase keys to rule ids. Keys without rules are left out of the result.
type Store interface {
	Lookup(keys []string) (map[string][]string, error)
}

type localStore struct {
	client local.Client
}

func (s *localStore) Lookup(keys []string) (map[string][]string, error) {
	found := make(map[string][]string)
	for _, key := range keys {
		if lookup := s.client.Get(key); lookup != nil {
			found[key] = lookup.Rules
		}
	}
	return found, nil
}

type remoteStore struct {
	client       remote.Client
	pipelineSize int
}

func (s *remoteStore) Lookup(keys []string) (map[string][]string, error) {
	size := s.pipelineSize
	if size <= 0 {
		size = DefaultPipelineSize
	}

	found := make(map[string][]string)
	onResult := func(key string, lookup *cache.Lookup) error {
		if lookup != nil && len(lookup.Rules) > 0 {
			found[key] = lookup.Rules
		}
		return nil
	}

	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		pipe := s.client.NewGetPipeline(end - start)
		for _, key := range keys[start:end] {
			pipe.Get(key)
		}
		if err := pipe.ExecGet(onResult); err != nil {
			return nil, err
		}
	}
	return found, nil
}
