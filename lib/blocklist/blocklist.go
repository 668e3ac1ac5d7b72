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

package blocklist

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/matcher"
	"gopkg.in/yaml.v2"
)

// Blocklist holds matched terms that are never reported, e.g. known false positives.
type Blocklist struct {
	CaseSensitive   map[string]bool
	CaseInsensitive map[string]bool
	// Rules restricts terms to a single lexicon: a term listed under a rule id is only blocked for that rule.
	Rules map[string]map[string]bool
}

// Allowed returns true if term is not blocklisted for rule.
func (blocklist Blocklist) Allowed(term, rule string) bool {
	if _, ok := blocklist.CaseSensitive[term]; ok {
		return false
	}

	lower := strings.ToLower(term)
	if _, ok := blocklist.CaseInsensitive[lower]; ok {
		return false
	}

	if _, ok := blocklist.Rules[rule][lower]; ok {
		return false
	}

	return true
}

// FilterMatches filters []matcher.Match based on blocklist.
func (blocklist Blocklist) FilterMatches(matches []matcher.Match) []matcher.Match {
	res := make([]matcher.Match, 0, len(matches))
	for _, match := range matches {
		if blocklist.Allowed(match.Text, match.RuleID) {
			res = append(res, match)
		}
	}
	return res
}

// Load returns an unmarshalled blocklist from a YAML file at the given path.
func Load(path string) (*Blocklist, error) {

	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not find blocklist at %v", path))
		return nil, err
	}

	bl, err := Parse(bytes)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("could not load blocklist from %v", path))
		return nil, err
	}

	log.Info().Msg(fmt.Sprintf("blocklist set from %v", path))

	return bl, nil
}

// Parse unmarshals a YAML blocklist.
func Parse(data []byte) (*Blocklist, error) {
	type yamlBlocklist struct {
		CaseSensitive   []string            `yaml:"case_sensitive"`
		CaseInsensitive []string            `yaml:"case_insensitive"`
		Rules           map[string][]string `yaml:"rules"`
	}

	yamlBl := yamlBlocklist{}
	if err := yaml.UnmarshalStrict(data, &yamlBl); err != nil {
		return nil, err
	}

	res := Blocklist{
		CaseSensitive:   map[string]bool{},
		CaseInsensitive: map[string]bool{},
		Rules:           map[string]map[string]bool{},
	}

	for _, v := range yamlBl.CaseSensitive {
		res.CaseSensitive[v] = true
	}
	for _, v := range yamlBl.CaseInsensitive {
		res.CaseInsensitive[strings.ToLower(v)] = true
	}
	for rule, terms := range yamlBl.Rules {
		res.Rules[rule] = make(map[string]bool, len(terms))
		for _, v := range terms {
			res.Rules[rule][strings.ToLower(v)] = true
		}
	}

	return &res, nil
}
