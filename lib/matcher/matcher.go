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

package matcher

import (
	"sort"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/cache/remote"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/lexicon"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/text"
)

// Match is one occurrence of a lexicon phrase in a text.
type Match struct {
	// Text is the matched span as it appears in the source.
	Text string `json:"text"`
	// Start and End are byte offsets into the source, End is exclusive.
	Start int `json:"start"`
	End   int `json:"end"`
	// TokenStart and TokenEnd index the tokens of the source, TokenEnd is exclusive.
	TokenStart int `json:"tokenStart"`
	TokenEnd   int `json:"tokenEnd"`
	// RuleID is the name of the lexicon the phrase belongs to.
	RuleID string `json:"ruleId"`
}

type Option func(*Matcher)

// WithRemoteStore looks phrase keys up in a remote store instead of the in-process map.
// The store must have been populated with the same lexicons, e.g. by the lexicon importer.
func WithRemoteStore(client remote.Client, pipelineSize int) Option {
	return func(m *Matcher) {
		m.store = &remoteStore{client: client, pipelineSize: pipelineSize}
	}
}

/**
	Matcher finds the phrases of a lexicon set in text. Phrases and text are tokenized the same way and compared
	on their normalised keys, so matching is exact per token and case-insensitive.

	A Matcher is immutable once compiled and safe for concurrent use.
**/
type Matcher struct {
	store     Store
	rules     []string
	ruleOrder map[string]int
	maxTokens int
	phrases   int
}

// Compile builds a Matcher for every phrase of every lexicon in set. Each phrase is tagged with its lexicon name.
func Compile(set *lexicon.Set, opts ...Option) (*Matcher, error) {
	m := &Matcher{
		ruleOrder: make(map[string]int, set.Len()),
	}
	for _, lex := range set.Lexicons {
		m.ruleOrder[lex.Name] = len(m.rules)
		m.rules = append(m.rules, lex.Name)
	}

	phraseStore := local.New()
	maxTokens, phrases, err := index(set, phraseStore.Add)
	if err != nil {
		return nil, err
	}
	m.maxTokens, m.phrases = maxTokens, phrases
	m.store = &localStore{client: phraseStore}
	keys := phraseStore.Len()

	for _, opt := range opts {
		opt(m)
	}

	log.Info().Strs("rules", m.rules).Int("phrases", m.phrases).Int("keys", keys).Int("max_tokens", m.maxTokens).Msg("compiled matcher")
	return m, nil
}

// Lookups returns one lookup per distinct phrase key in set, in the order keys are first seen. These are the
// values a remote phrase store must hold for WithRemoteStore.
func Lookups(set *lexicon.Set) ([]*cache.Lookup, error) {
	byKey := make(map[string]*cache.Lookup)
	var lookups []*cache.Lookup
	_, _, err := index(set, func(key, rule string) {
		lookup, ok := byKey[key]
		if !ok {
			lookup = &cache.Lookup{Key: key}
			byKey[key] = lookup
			lookups = append(lookups, lookup)
		}
		lookup.AddRule(rule)
	})
	return lookups, err
}

// index tokenizes every phrase in set and calls add with its key and lexicon name.
func index(set *lexicon.Set, add func(key, rule string)) (maxTokens, phrases int, err error) {
	for _, lex := range set.Lexicons {
		for _, phrase := range lex.Phrases {
			tokens, err := text.Tokenize(phrase)
			if err != nil {
				return 0, 0, err
			}
			if len(tokens) == 0 {
				log.Debug().Str("lexicon", lex.Name).Str("phrase", phrase).Msg("skipping phrase without tokens")
				continue
			}
			if len(tokens) > maxTokens {
				maxTokens = len(tokens)
			}
			add(text.Key(tokens), lex.Name)
			phrases++
		}
	}
	return maxTokens, phrases, nil
}

// Rules returns the rule ids of the matcher in lexicon order.
func (m *Matcher) Rules() []string {
	rules := make([]string, len(m.rules))
	copy(rules, m.rules)
	return rules
}

// Apply tokenizes src and returns every phrase occurrence in it, see ApplyTokens.
func (m *Matcher) Apply(src string) ([]Match, error) {
	tokens, err := text.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return m.ApplyTokens(src, tokens)
}

type candidate struct {
	key        string
	start, end int
}

/**
	ApplyTokens returns every (rule, start, end) occurrence of a phrase in the tokens of src, overlapping
	occurrences included. A phrase matches when its tokens appear contiguously and in order.

	Matches are ordered by start token, then end token, then lexicon order.
**/
func (m *Matcher) ApplyTokens(src string, tokens []text.Token) ([]Match, error) {
	if m.maxTokens == 0 || len(tokens) == 0 {
		return nil, nil
	}

	var candidates []candidate
	seen := make(map[string]bool)
	var keys []string
	for i := range tokens {
		for n := 1; n <= m.maxTokens && i+n <= len(tokens); n++ {
			key := text.Key(tokens[i : i+n])
			candidates = append(candidates, candidate{key: key, start: i, end: i + n})
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	found, err := m.store.Lookup(keys)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, c := range candidates {
		for _, rule := range found[c.key] {
			if _, ok := m.ruleOrder[rule]; !ok {
				continue
			}
			matches = append(matches, Match{
				Text:       src[tokens[c.start].Start:tokens[c.end-1].End],
				Start:      tokens[c.start].Start,
				End:        tokens[c.end-1].End,
				TokenStart: c.start,
				TokenEnd:   c.end,
				RuleID:     rule,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.TokenStart != b.TokenStart {
			return a.TokenStart < b.TokenStart
		}
		if a.TokenEnd != b.TokenEnd {
			return a.TokenEnd < b.TokenEnd
		}
		return m.ruleOrder[a.RuleID] < m.ruleOrder[b.RuleID]
	})
	return matches, nil
}
