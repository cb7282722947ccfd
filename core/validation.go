// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateModality validates that a modality has one of the two supported
// values. Any other value is a programming or configuration mistake.
func ValidateModality(modality Modality) error {
	if modality != ModalityText && modality != ModalityImage {
		return fmt.Errorf("%w: got %q", ErrInvalidModality, string(modality))
	}
	return nil
}

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - RecordID must not be empty
//
// NOT validated (empty is a legal degraded state for source data):
//   - Names, Description, Taxonomy, ImgLoc and the derived image fields
//   - TextVector/ImageVector (populated by the pipeline)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if record.RecordID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyRecordID)
	}
	return nil
}

// CollapseWhitespace replaces every run of whitespace with a single space
// and trims the ends. The canonical table is persisted as row/column text,
// so embedded newlines and tabs must never survive normalization.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// JoinFragments trims each fragment, joins them with "; " and collapses
// the result. This is the canonical encoding for multi-valued source
// fields such as descriptions, name variants and taxonomy terms.
func JoinFragments(fragments []string) string {
	trimmed := make([]string, len(fragments))
	for i, f := range fragments {
		trimmed[i] = strings.TrimSpace(f)
	}
	return CollapseWhitespace(strings.Join(trimmed, "; "))
}

// LowerText lower-cases text the way the encoder expects its input.
func LowerText(s string) string {
	return strings.ToLower(s)
}

// FlattenLocation turns a remote location string into a filename safe for a
// single flat cache directory by replacing path separators with a pipe.
func FlattenLocation(loc string) string {
	loc = strings.ReplaceAll(loc, "/", "|")
	return strings.ReplaceAll(loc, "\\", "|")
}
