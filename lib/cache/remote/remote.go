/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package remote

import (
	"fmt"

	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
)

// Client is a remote phrase store. Lookups and uploads are batched in pipelines.
type Client interface {
	NewGetPipeline(size int) GetPipeline
	NewSetPipeline(size int) SetPipeline
	Ready() bool
}

type Pipeline interface {
	Size() int
}

type GetPipeline interface {
	Get(key string)
	// ExecGet runs the queued lookups. onResult is called once per queued key, with a nil lookup for unknown keys.
	ExecGet(onResult func(key string, lookup *cache.Lookup) error) error
	Pipeline
}

type SetPipeline interface {
	Set(key string, data []byte)
	ExecSet() error
	Pipeline
}

type Config struct {
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

// NewClient returns the client for a remote store type.
func NewClient(storeType cache.Type, conf Config) (Client, error) {
	switch storeType {
	case cache.Redis:
		return NewRedisClient(conf.Redis), nil
	case cache.Elasticsearch:
		return NewElasticsearchClient(conf.Elasticsearch)
	default:
		return nil, fmt.Errorf("unknown remote phrase store %q", storeType)
	}
}
