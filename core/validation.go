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
	"time"
)

// ValidateFaqRecord validates a FaqRecord according to domain rules.
//
// Validation rules:
//   - Question must be non-empty after normalization
//   - Answer must not be empty
//   - UpdatedAt must not be in the future
//
// NOT validated (populated later):
//   - Vector (can be empty until the ingest pipeline runs)
//   - ID (0 is valid before storage assigns the content-based ID)
//   - Category and Metadata (both optional)
func ValidateFaqRecord(record *FaqRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidFaqRecord)
	}

	if NormalizeText(record.Question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFaqRecord, ErrEmptyQuestion)
	}

	if record.Answer == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFaqRecord, ErrEmptyAnswer)
	}

	if !IsValidTimestamp(record.UpdatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidFaqRecord, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
