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

package lexicon

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
)

// All selects every column of the lexicon table.
const All = "ALL"

// SelectionSeparator joins column names in a selection string, e.g. "Slurs_Outdated".
const SelectionSeparator = "_"

// DefaultRestricted are the lexicons only used when a run opts in to restricted lexicons.
var DefaultRestricted = []string{"HateBaseFull", "HateBaseUnambiguous"}

// Lexicon is a named list of phrases. The name is the rule id reported for its matches.
type Lexicon struct {
	Name    string   `json:"name"`
	Phrases []string `json:"phrases"`
}

// Set is an ordered collection of lexicons with unique names.
type Set struct {
	Lexicons []Lexicon
}

func (s *Set) Names() []string {
	names := make([]string, len(s.Lexicons))
	for i, lexicon := range s.Lexicons {
		names[i] = lexicon.Name
	}
	return names
}

func (s *Set) Get(name string) (Lexicon, bool) {
	for _, lexicon := range s.Lexicons {
		if lexicon.Name == name {
			return lexicon, true
		}
	}
	return Lexicon{}, false
}

func (s *Set) Len() int {
	return len(s.Lexicons)
}

// ParseSelection splits a selection string into column names. It returns nil for All.
func ParseSelection(selection string) []string {
	if selection == All {
		return nil
	}
	return strings.Split(selection, SelectionSeparator)
}

/**
	Load reads the lexicon CSV at path and returns the selected lexicons.

	selection is either All or column names joined with SelectionSeparator. The result follows the column
	order of the file, not the order of the selection. Columns named in restricted are left out unless
	includeRestricted is true, even when the selection names them.

	Errors: lib.ErrSourceNotFound when path does not exist, *lib.InvalidColumnError when a selected column
	is not in the file.
**/
func Load(path, selection string, includeRestricted bool, restricted []string) (*Set, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("lexicon %s: %w", path, lib.ErrSourceNotFound)
	}

	table, err := ReadTableFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon %s: %w", path, err)
	}

	set, err := FromTable(table, selection, includeRestricted, restricted)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Strs("lexicons", set.Names()).Msg("loaded lexicons")
	return set, nil
}

// FromTable selects lexicons from an already read table, see Load.
func FromTable(table *Table, selection string, includeRestricted bool, restricted []string) (*Set, error) {
	var wanted map[string]bool
	if names := ParseSelection(selection); names != nil {
		wanted = make(map[string]bool, len(names))
		for _, name := range names {
			if _, ok := table.Column(name); !ok {
				return nil, &lib.InvalidColumnError{Column: name}
			}
			wanted[name] = true
		}
	}

	excluded := make(map[string]bool, len(restricted))
	if !includeRestricted {
		for _, name := range restricted {
			excluded[name] = true
		}
	}

	set := &Set{}
	for i, header := range table.Headers {
		if wanted != nil && !wanted[header] {
			continue
		}
		if excluded[header] {
			log.Debug().Str("lexicon", header).Msg("restricted lexicon excluded")
			continue
		}
		set.Lexicons = append(set.Lexicons, Lexicon{Name: header, Phrases: table.Columns[i]})
	}
	return set, nil
}
