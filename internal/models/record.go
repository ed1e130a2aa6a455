package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// Record is one row of a configuration table (operational_metadata,
// screen_config) selected with all of its columns, keyed by column name.
// Column sets drift between deployments, so rows are kept dynamic.
type Record map[string]any

// CustomFieldsColumn is the column holding the free-form field bag.
const CustomFieldsColumn = "custom_fields"

// String returns the column as a string, or "" when absent or not textual.
func (r Record) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// CustomFields parses the custom_fields column of the record.
func (r Record) CustomFields() CustomFields {
	return ParseCustomFields(r[CustomFieldsColumn])
}

// CustomFieldsKind tags the shape the custom_fields column arrived in.
type CustomFieldsKind int

const (
	// CustomFieldsAbsent means the column was null, empty or missing.
	CustomFieldsAbsent CustomFieldsKind = iota
	// CustomFieldsStructured means the driver already decoded a JSON object.
	CustomFieldsStructured
	// CustomFieldsText means the column held text that parsed as a JSON object.
	CustomFieldsText
	// CustomFieldsInvalid means the column held something that is not a JSON
	// object. Fields is empty and Err says why.
	CustomFieldsInvalid
)

func (k CustomFieldsKind) String() string {
	switch k {
	case CustomFieldsAbsent:
		return "absent"
	case CustomFieldsStructured:
		return "structured"
	case CustomFieldsText:
		return "text"
	default:
		return "invalid"
	}
}

var errNotObject = errors.New("custom fields are not a JSON object")

// CustomFields is the open bag of additional fields attached to a
// configuration record. Fields is never nil.
type CustomFields struct {
	Kind   CustomFieldsKind
	Fields map[string]any
	Err    error
}

// Bool reports whether key is present and is the boolean true.
// Truthy strings or numbers do not count.
func (c CustomFields) Bool(key string) bool {
	b, ok := c.Fields[key].(bool)
	return ok && b
}

// ParseCustomFields accepts whatever the driver produced for the column.
// Parse failures never escape: they yield an empty bag tagged
// CustomFieldsInvalid so callers can log them.
func ParseCustomFields(v any) CustomFields {
	switch val := v.(type) {
	case nil:
		return CustomFields{Kind: CustomFieldsAbsent, Fields: map[string]any{}}
	case map[string]any:
		fields := make(map[string]any, len(val))
		for k, fv := range val {
			fields[k] = fv
		}
		return CustomFields{Kind: CustomFieldsStructured, Fields: fields}
	case string:
		return parseCustomFieldsText([]byte(val))
	case []byte:
		return parseCustomFieldsText(val)
	default:
		return CustomFields{
			Kind:   CustomFieldsInvalid,
			Fields: map[string]any{},
			Err:    fmt.Errorf("%w: got %T", errNotObject, v),
		}
	}
}

func parseCustomFieldsText(data []byte) CustomFields {
	if len(data) == 0 {
		return CustomFields{Kind: CustomFieldsAbsent, Fields: map[string]any{}}
	}

	obj, dataType, end, err := jsonparser.Get(data)
	if err != nil {
		return invalidCustomFields(err)
	}
	if dataType != jsonparser.Object {
		return invalidCustomFields(fmt.Errorf("%w: got %s", errNotObject, dataType))
	}
	if len(bytes.TrimSpace(data[end:])) != 0 {
		return invalidCustomFields(fmt.Errorf("%w: trailing data after object", errNotObject))
	}

	fields := map[string]any{}
	err = jsonparser.ObjectEach(obj, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
		name := string(key)
		v, err := decodeValue(value, vt)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		fields[name] = v
		return nil
	})
	if err != nil {
		return invalidCustomFields(err)
	}
	return CustomFields{Kind: CustomFieldsText, Fields: fields}
}

func invalidCustomFields(err error) CustomFields {
	return CustomFields{Kind: CustomFieldsInvalid, Fields: map[string]any{}, Err: err}
}

// decodeValue converts one raw member into the same Go value encoding/json
// would produce for it.
func decodeValue(value []byte, vt jsonparser.ValueType) (any, error) {
	switch vt {
	case jsonparser.String:
		return jsonparser.ParseString(value)
	case jsonparser.Number:
		return jsonparser.ParseFloat(value)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Object, jsonparser.Array:
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected %s value", vt)
	}
}
