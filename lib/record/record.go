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

package record

import (
	"fmt"
	"io"
	"strings"

	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib"
	"gitlab.mdcatapult.io/informatics/software-engineering/description-audit/lib/xmltree"
)

type Format string

const (
	EADFormat  Format = "EAD"
	MARCFormat Format = "MARCXML"
)

// Null is reported for metadata fields missing from a record.
const Null = "NULL"

// WholeField is the context window of formats whose snippet is the entire field text.
const WholeField = -1

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(s) {
	case string(EADFormat):
		return EADFormat, nil
	case string(MARCFormat), "MARC":
		return MARCFormat, nil
	}
	return "", fmt.Errorf("%w: unknown record format %q", lib.ErrInvalidInput, s)
}

// TextField is a field of a record that is matched against the lexicons.
type TextField struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Present bool   `json:"present"`
}

// ExceptionType tags the advisory result reported when the field is too long to match.
func (f TextField) ExceptionType() string {
	if f.Type == NotesField {
		return "note_exception"
	}
	return f.Type + "_exception"
}

// Record is a normalized archival record. Records are never modified once extracted.
type Record interface {
	Format() Format
	// ID identifies the record in logs.
	ID() string
	// TextFields returns the fields to match, in report order.
	TextFields() []TextField
	// Metadata returns the values of the report columns repeated on every row of the record.
	Metadata() []string
}

// Raw is an unparsed record: an EAD document or a single MARCXML record element.
type Raw struct {
	Source string
	Root   *xmltree.Node
}

type Options struct {
	// BibnumberType is the type attribute of the EAD num element holding the catalogue number.
	BibnumberType string `mapstructure:"bibnumber_type"`
}

var DefaultOptions = Options{
	BibnumberType: "aleph",
}

// Extractor reads the raw records of one archival format and normalizes them.
type Extractor interface {
	Format() Format
	// Load reads every raw record under path.
	Load(path string) ([]Raw, error)
	// Parse reads the raw records of a single document.
	Parse(source string, r io.Reader) ([]Raw, error)
	Extract(raw Raw) (Record, error)
	// ContextWindow is the number of tokens either side of a match included in its context snippet,
	// or WholeField.
	ContextWindow() int
}

// NewExtractor returns the extractor for format.
func NewExtractor(format Format, opts Options) (Extractor, error) {
	if opts.BibnumberType == "" {
		opts.BibnumberType = DefaultOptions.BibnumberType
	}
	switch format {
	case EADFormat:
		return &eadExtractor{opts: opts}, nil
	case MARCFormat:
		return &marcExtractor{}, nil
	}
	return nil, fmt.Errorf("%w: unknown record format %q", lib.ErrInvalidInput, format)
}
