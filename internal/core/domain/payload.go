package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MessagesKey is the top-level payload field holding the message array.
const MessagesKey = "messages"

// IDKey is the field injected into every message before it is persisted.
// It doubles as the primary key in the document store.
const IDKey = "_id"

// jsonNull is the JSON representation of null.
var jsonNull = json.RawMessage("null")

// Field is one key/value pair of a JSON object.
// Value is kept as compacted raw JSON so nested content passes through untouched.
type Field struct {
	Key   string
	Value json.RawMessage
}

// MessageRecord is one chat message as returned by the source.
// Fields keep their source order; no schema is assumed.
type MessageRecord struct {
	Fields []Field
}

// Get returns the raw value for key.
func (r MessageRecord) Get(key string) (json.RawMessage, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a copy of r with key set to value.
// An existing key keeps its position; a new key is appended.
func (r MessageRecord) With(key string, value json.RawMessage) MessageRecord {
	fields := make([]Field, 0, len(r.Fields)+1)
	replaced := false
	for _, f := range r.Fields {
		if f.Key == key {
			f.Value = value
			replaced = true
		}
		fields = append(fields, f)
	}
	if !replaced {
		fields = append(fields, Field{Key: key, Value: value})
	}
	return MessageRecord{Fields: fields}
}

// Clone returns a deep copy of r.
func (r MessageRecord) Clone() MessageRecord {
	return MessageRecord{Fields: cloneFields(r.Fields)}
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r MessageRecord) MarshalJSON() ([]byte, error) {
	return encodeObject(r.Fields, nil)
}

// UnmarshalJSON decodes a JSON object, keeping field order.
func (r *MessageRecord) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("message record: %w", err)
	}
	r.Fields = fields
	return nil
}

// LogPayload is the source's response for one day.
// Fields holds the top-level fields in order; the messages slot has a nil
// Value and its content lives in Messages.
type LogPayload struct {
	Fields   []Field
	Messages []MessageRecord
}

// Clone returns a deep copy of p.
func (p *LogPayload) Clone() *LogPayload {
	msgs := make([]MessageRecord, len(p.Messages))
	for i := range p.Messages {
		msgs[i] = p.Messages[i].Clone()
	}
	return &LogPayload{Fields: cloneFields(p.Fields), Messages: msgs}
}

// MarshalJSON encodes the payload with messages in their original position.
func (p LogPayload) MarshalJSON() ([]byte, error) {
	msgs := p.Messages
	if msgs == nil {
		msgs = []MessageRecord{}
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return nil, err
	}

	fields := p.Fields
	hasMessages := false
	for _, f := range fields {
		if f.Key == MessagesKey {
			hasMessages = true
			break
		}
	}
	if !hasMessages {
		fields = append(cloneFields(fields), Field{Key: MessagesKey})
	}
	return encodeObject(fields, map[string]json.RawMessage{MessagesKey: encoded})
}

// UnmarshalJSON decodes a payload. The body must be an object whose
// messages field is an array of objects.
func (p *LogPayload) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	var msgs []MessageRecord
	found := false
	for i := range fields {
		if fields[i].Key != MessagesKey {
			continue
		}
		raw := fields[i].Value
		if bytes.Equal(raw, jsonNull) || len(raw) == 0 || raw[0] != '[' {
			return fmt.Errorf("payload: %q is not an array", MessagesKey)
		}
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
		fields[i].Value = nil
		found = true
	}
	if !found {
		return fmt.Errorf("payload: missing %q field", MessagesKey)
	}
	if msgs == nil {
		msgs = []MessageRecord{}
	}

	p.Fields = fields
	p.Messages = msgs
	return nil
}

func cloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = Field{Key: f.Key}
		if f.Value != nil {
			out[i].Value = append(json.RawMessage(nil), f.Value...)
		}
	}
	return out
}

// decodeObject reads a JSON object into ordered fields.
func decodeObject(data []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("expected a JSON object")
	}

	fields := []Field{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		fields = append(fields, Field{Key: key, Value: buf.Bytes()})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// encodeObject writes fields as a JSON object. Values found in overrides
// replace the field's own value.
func encodeObject(fields []Field, overrides map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value := f.Value
		if v, ok := overrides[f.Key]; ok {
			value = v
		}
		if len(value) == 0 {
			value = jsonNull
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
