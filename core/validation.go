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

// DecodeRecord coerces a loosely-typed raw record into a ConversationRecord.
//
// Validation rules:
//   - message_id, user_id, campaign_id, timestamp, intent and message must
//     all be present, of string type, and non-empty
//   - timestamp must parse as RFC 3339
//
// NOT validated (populated by the ingestion pipeline):
//   - Embedding (empty until the transform stage runs)
//
// Records that fail decoding are rejected at the ingestion boundary and
// never reach a store.
func DecodeRecord(raw map[string]any) (*ConversationRecord, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	record := &ConversationRecord{}
	fields := []struct {
		name string
		dst  *string
	}{
		{"message_id", &record.MessageID},
		{"user_id", &record.UserID},
		{"campaign_id", &record.CampaignID},
		{"timestamp", &record.Timestamp},
		{"intent", &record.Intent},
		{"message", &record.Message},
	}

	for _, field := range fields {
		value, ok := raw[field.name]
		if !ok {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidRecord, ErrMissingField, field.name)
		}
		s, ok := value.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%w: %w: %s", ErrInvalidRecord, ErrMissingField, field.name)
		}
		*field.dst = s
	}

	if _, err := time.Parse(time.RFC3339, record.Timestamp); err != nil {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidRecord, ErrInvalidTimestamp, record.Timestamp)
	}

	return record, nil
}
