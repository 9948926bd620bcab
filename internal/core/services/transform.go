package services

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
)

// Ensure UUIDGenerator implements the interface.
var _ driven.IDGenerator = UUIDGenerator{}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewID returns a new UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// RecordTransformer stamps each message with a fresh identifier.
type RecordTransformer struct {
	ids driven.IDGenerator
}

// NewRecordTransformer creates a transformer. A nil generator uses UUIDs.
func NewRecordTransformer(ids driven.IDGenerator) *RecordTransformer {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &RecordTransformer{ids: ids}
}

// Transform returns a copy of payload in which every message carries an
// identifier under domain.IDKey. An identifier already present in the
// source is replaced. The input payload is left untouched.
func (t *RecordTransformer) Transform(payload *domain.LogPayload) *domain.LogPayload {
	out := payload.Clone()
	for i := range out.Messages {
		// Marshalling a string cannot fail.
		id, _ := json.Marshal(t.ids.NewID())
		out.Messages[i] = out.Messages[i].With(domain.IDKey, id)
	}
	return out
}
