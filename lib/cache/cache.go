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

package cache

// Lookup is the value stored against a normalised phrase key: the rule ids (lexicon names) the phrase belongs to.
type Lookup struct {
	Key   string   `json:"key"`
	Rules []string `json:"rules"`
}

// AddRule appends rule unless the lookup already holds it.
func (l *Lookup) AddRule(rule string) {
	for _, r := range l.Rules {
		if r == rule {
			return
		}
	}
	l.Rules = append(l.Rules, rule)
}

type Type string

const (
	Local         Type = "local"
	Redis         Type = "redis"
	Elasticsearch Type = "elasticsearch"
)
