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

package lib

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when a lexicon file, EAD directory or MARCXML file does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrInvalidInput is returned when run parameters fail validation.
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidColumnError is returned when a requested lexicon column is not in the lexicon table.
type InvalidColumnError struct {
	Column string
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("lexicon column %q does not exist", e.Column)
}

// MalformedRecordError wraps a parse failure for a single archival source (an EAD file or a MARCXML document).
type MalformedRecordError struct {
	Source string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %v", e.Source, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
