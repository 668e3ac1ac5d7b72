package testhelpers

import (
	"github.com/stretchr/testify/mock"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache/remote"
)

// RemoteClient is a mock remote.Client.
type RemoteClient struct {
	mock.Mock
}

func (m *RemoteClient) NewGetPipeline(size int) remote.GetPipeline {
	ret := m.Called(size)
	return ret.Get(0).(remote.GetPipeline)
}

func (m *RemoteClient) NewSetPipeline(size int) remote.SetPipeline {
	ret := m.Called(size)
	return ret.Get(0).(remote.SetPipeline)
}

func (m *RemoteClient) Ready() bool {
	return m.Called().Bool(0)
}

// GetPipeline is a fake remote.GetPipeline backed by a map of stored lookups.
type GetPipeline struct {
	mock.Mock
	Stored map[string]*cache.Lookup
	queued []string
}

func (p *GetPipeline) Get(key string) {
	p.Called(key)
	p.queued = append(p.queued, key)
}

func (p *GetPipeline) ExecGet(onResult func(string, *cache.Lookup) error) error {
	if err := p.Called().Error(0); err != nil {
		return err
	}
	for _, key := range p.queued {
		if err := onResult(key, p.Stored[key]); err != nil {
			return err
		}
	}
	p.queued = nil
	return nil
}

func (p *GetPipeline) Size() int {
	return len(p.queued)
}

// SetPipeline is a mock remote.SetPipeline recording the data set per key.
type SetPipeline struct {
	mock.Mock
	Data map[string][]byte
}

func (p *SetPipeline) Set(key string, data []byte) {
	p.Called(key, data)
	if p.Data == nil {
		p.Data = map[string][]byte{}
	}
	p.Data[key] = data
}

func (p *SetPipeline) ExecSet() error {
	return p.Called().Error(0)
}

func (p *SetPipeline) Size() int {
	return len(p.Data)
}
