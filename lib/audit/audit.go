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

package audit

import (
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/blocklist"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/matcher"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/record"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/text"
)

const (
	// MaxFieldLength is the longest field, in characters, that is matched.
	MaxFieldLength = 1000000
	// OverflowMessage is the term reported for fields longer than MaxFieldLength.
	OverflowMessage = "Text too long to process, please search node manually"
)

// MatchResult holds the matches of one field. Terms, ContextSnippets and RuleIDs are index aligned.
type MatchResult struct {
	Type            string   `json:"type"`
	Terms           []string `json:"terms"`
	ContextSnippets []string `json:"context_snippets"`
	RuleIDs         []string `json:"rule_ids"`
}

// Add appends a single match.
func (r *MatchResult) Add(term, context, rule string) {
	r.Terms = append(r.Terms, term)
	r.ContextSnippets = append(r.ContextSnippets, context)
	r.RuleIDs = append(r.RuleIDs, rule)
}

func (r *MatchResult) Len() int {
	return len(r.Terms)
}

// overflowResult is reported instead of matches for a field too long to match, so it still gets reviewed.
func overflowResult(field record.TextField) MatchResult {
	result := MatchResult{Type: field.ExceptionType()}
	result.Add(OverflowMessage, "", "")
	return result
}

// AnnotatedRecord is a record with at least one match result.
type AnnotatedRecord struct {
	Record  record.Record `json:"record"`
	Results []MatchResult `json:"results"`
}

type Option func(*Auditor)

// WithWorkers matches records on n goroutines.
func WithWorkers(n int) Option {
	return func(a *Auditor) {
		a.workers = n
	}
}

// WithBlocklist drops blocklisted terms before results are built.
func WithBlocklist(bl *blocklist.Blocklist) Option {
	return func(a *Auditor) {
		a.blocklist = bl
	}
}

// Auditor matches the records of one archival format against a compiled matcher.
type Auditor struct {
	matcher   *matcher.Matcher
	extractor record.Extractor
	blocklist *blocklist.Blocklist
	workers   int
}

func New(m *matcher.Matcher, extractor record.Extractor, opts ...Option) *Auditor {
	a := &Auditor{
		matcher:   m,
		extractor: extractor,
		workers:   1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

/**
	MatchFields matches every present text field of rec and returns nil when no field has a match.

	Fields longer than MaxFieldLength are not matched, they get the overflow result instead, which counts as a
	match. Context snippets are the match widened by the extractor's context window, or the whole field text.
**/
func (a *Auditor) MatchFields(rec record.Record) (*AnnotatedRecord, error) {
	var results []MatchResult
	for _, field := range rec.TextFields() {
		if !field.Present {
			continue
		}

		if utf8.RuneCountInString(field.Text) > MaxFieldLength {
			log.Warn().Str("record", rec.ID()).Str("field", field.Type).Msg("field too long to match")
			results = append(results, overflowResult(field))
			continue
		}

		result, err := a.matchField(field)
		if err != nil {
			return nil, err
		}
		if result.Len() > 0 {
			results = append(results, result)
		}
	}

	if len(results) == 0 {
		return nil, nil
	}
	return &AnnotatedRecord{Record: rec, Results: results}, nil
}

func (a *Auditor) matchField(field record.TextField) (MatchResult, error) {
	result := MatchResult{Type: field.Type}

	tokens, err := text.Tokenize(field.Text)
	if err != nil {
		return result, err
	}
	matches, err := a.matcher.ApplyTokens(field.Text, tokens)
	if err != nil {
		return result, err
	}
	if a.blocklist != nil {
		matches = a.blocklist.FilterMatches(matches)
	}

	window := a.extractor.ContextWindow()
	for _, match := range matches {
		context := field.Text
		if window != record.WholeField {
			context = text.Window(field.Text, tokens, match.TokenStart, match.TokenEnd, window)
		}
		result.Add(match.Text, context, match.RuleID)
	}
	return result, nil
}

// Audit loads every raw record under path and builds their annotated records.
func (a *Auditor) Audit(path string) ([]*AnnotatedRecord, error) {
	raws, err := a.extractor.Load(path)
	if err != nil {
		return nil, err
	}
	return a.Build(raws)
}

/**
	Build extracts and matches every raw record, keeping the records with matches in input order.

	Records that fail extraction are logged and skipped, any other error aborts the build.
**/
func (a *Auditor) Build(raws []record.Raw) ([]*AnnotatedRecord, error) {
	annotated := make([]*AnnotatedRecord, len(raws))

	if a.workers <= 1 {
		for i, raw := range raws {
			result, err := a.process(raw)
			if err != nil {
				return nil, err
			}
			annotated[i] = result
		}
	} else if err := a.fanOut(raws, annotated); err != nil {
		return nil, err
	}

	results := make([]*AnnotatedRecord, 0, len(raws))
	for _, result := range annotated {
		if result != nil {
			results = append(results, result)
		}
	}

	log.Info().
		Str("format", string(a.extractor.Format())).
		Int("records", len(raws)).
		Int("matched", len(results)).
		Msg("built annotated records")
	return results, nil
}

// fanOut processes raws on a.workers goroutines, each result written at the index of its raw record.
func (a *Auditor) fanOut(raws []record.Raw, annotated []*AnnotatedRecord) error {
	jobs := make(chan int)
	errChan := make(chan error, a.workers)

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result, err := a.process(raws[i])
				if err != nil {
					errChan <- err
					return
				}
				annotated[i] = result
			}
		}()
	}

	for i := range raws {
		select {
		case jobs <- i:
		case err := <-errChan:
			close(jobs)
			wg.Wait()
			return err
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

func (a *Auditor) process(raw record.Raw) (*AnnotatedRecord, error) {
	rec, err := a.extractor.Extract(raw)
	if err != nil {
		var malformed *lib.MalformedRecordError
		if errors.As(err, &malformed) {
			log.Warn().Err(err).Msg("skipping record")
			return nil, nil
		}
		return nil, err
	}
	return a.MatchFields(rec)
}
