package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/elastic/go-elasticsearch/v7"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
)

type ElasticsearchConfig struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Index string `mapstructure:"index"`
}

type esResponse struct {
	Took      int `json:"took"`
	Responses []struct {
		Took     int  `json:"took"`
		TimedOut bool `json:"timed_out"`
		Hits     struct {
			Total struct {
				Value    int    `json:"value"`
				Relation string `json:"relation"`
			} `json:"total"`
			Hits []struct {
				Index  string       `json:"_index"`
				ID     string       `json:"_id"`
				Source cache.Lookup `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Error  json.RawMessage `json:"error,omitempty"`
		Status int             `json:"status"`
	} `json:"responses"`
}

type esBulkResponse struct {
	Took   int  `json:"took"`
	Errors bool `json:"errors"`
}

func NewElasticsearchClient(conf ElasticsearchConfig) (Client, error) {
	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{fmt.Sprintf("http://%s:%d", conf.Host, conf.Port)},
	})
	if err != nil {
		return nil, err
	}
	return &esClient{
		Client: c,
		index:  conf.Index,
	}, nil
}

type esClient struct {
	*elasticsearch.Client
	index string
}

func (e *esClient) Ready() bool {
	res, err := e.Info()
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == 200
}

func (e *esClient) NewGetPipeline(size int) GetPipeline {
	return &esPipeline{
		esClient:     e,
		buf:          bytes.NewBuffer(nil),
		currentQuery: make([]string, 0, size),
	}
}

func (e *esClient) NewSetPipeline(size int) SetPipeline {
	return &esPipeline{
		esClient:     e,
		buf:          bytes.NewBuffer(nil),
		currentQuery: make([]string, 0, size),
	}
}

// esPipeline builds a bulk request (Set) or a multi search request (Get). Phrase keys are document ids.
type esPipeline struct {
	*esClient
	buf          *bytes.Buffer
	currentQuery []string
}

func (p *esPipeline) Set(key string, data []byte) {
	p.buf.WriteString(fmt.Sprintf(`{"index":{"_id":"%s"}}%s`, jsonEscape(key), "\n"))
	p.buf.WriteString(fmt.Sprintf("%s%s", string(data), "\n"))
	p.currentQuery = append(p.currentQuery, key)
}

func (p *esPipeline) ExecSet() error {
	if len(p.currentQuery) == 0 {
		return nil
	}
	res, err := p.Bulk(p.buf, p.Bulk.WithIndex(p.index))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return errors.New(res.String())
	}

	var bulk esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return err
	}
	if bulk.Errors {
		return fmt.Errorf("bulk upload to %s reported errors", p.index)
	}
	return nil
}

func (p *esPipeline) Get(key string) {
	p.buf.WriteString(fmt.Sprintf(`{}%s`, "\n"))
	p.buf.WriteString(fmt.Sprintf(`{"size": 1, "query" : {"ids" : { "values": ["%s"] }}}%s`, jsonEscape(key), "\n"))
	p.currentQuery = append(p.currentQuery, key)
}

func jsonEscape(i string) string {
	b, err := json.Marshal(i)
	if err != nil {
		panic(err)
	}
	s := string(b)
	return s[1 : len(s)-1]
}

func (p *esPipeline) ExecGet(onResult func(string, *cache.Lookup) error) error {
	if len(p.currentQuery) == 0 {
		return nil
	}
	res, err := p.Msearch(p.buf, p.Msearch.WithIndex(p.index))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return errors.New(res.String())
	}

	b, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return err
	}
	var esresponse esResponse
	if err := json.Unmarshal(b, &esresponse); err != nil {
		return err
	}
	if len(esresponse.Responses) != len(p.currentQuery) {
		return fmt.Errorf("expected %d search responses, got %d", len(p.currentQuery), len(esresponse.Responses))
	}

	for i, response := range esresponse.Responses {
		if response.Status != 0 && response.Status != 200 {
			return fmt.Errorf("search for %q failed with status %d: %s", p.currentQuery[i], response.Status, response.Error)
		}

		var lookup *cache.Lookup
		if len(response.Hits.Hits) > 0 {
			source := response.Hits.Hits[0].Source
			lookup = &source
		}
		if err := onResult(p.currentQuery[i], lookup); err != nil {
			return err
		}
	}
	return nil
}

func (p *esPipeline) Size() int {
	return len(p.currentQuery)
}
