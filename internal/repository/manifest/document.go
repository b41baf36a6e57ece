package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"
)

// Manifest field names.
const (
	FieldVersion  = "version"
	FieldUpstream = "upstream"
)

// indent matches the two-space layout of the published manifests.
const indent = "  "

var (
	// errNotObject is returned when the manifest root is not a JSON object.
	errNotObject = errors.New("manifest root must be a JSON object")
	// errNotString is returned when a version field holds a non-string value.
	errNotString = errors.New("field must be a string")
	// errTrailingData is returned when anything but whitespace follows the root object.
	errTrailingData = errors.New("trailing data after root object")
)

// field is one top-level member of the manifest, in file order.
type field struct {
	key   string
	value json.RawMessage
}

// Document is a manifest decoded into its ordered top-level members.
type Document struct {
	fields []field
}

// Decode parses a manifest. Comments and trailing commas are tolerated.
func Decode(raw []byte) (*Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(raw)))

	token, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	doc := new(Document)

	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("decode manifest key: %w", err)
		}

		key, ok := token.(string)
		if !ok {
			return nil, fmt.Errorf("decode manifest: unexpected token %v", token)
		}

		var value json.RawMessage
		if err = decoder.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode manifest field %q: %w", key, err)
		}

		doc.fields = append(doc.fields, field{key: key, value: value})
	}

	// Closing brace.
	if _, err = decoder.Token(); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if _, err = decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode manifest: %w", errTrailingData)
	}

	return doc, nil
}

// Keys returns the top-level keys in file order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		keys = append(keys, f.key)
	}

	return keys
}

// String returns the string value of key. A missing key yields "".
func (d *Document) String(key string) (string, error) {
	raw, ok := d.lookup(key)
	if !ok {
		return "", nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("%s: %w", key, errNotString)
	}

	return value, nil
}

// SetString sets key to value, in place when present and appended otherwise.
// A key repeated in the source collapses into its first position.
func (d *Document) SetString(key, value string) error {
	raw, err := marshalString(value)
	if err != nil {
		return err
	}

	kept := d.fields[:0]
	found := false

	for _, f := range d.fields {
		if f.key != key {
			kept = append(kept, f)
			continue
		}

		if !found {
			kept = append(kept, field{key: key, value: raw})
			found = true
		}
	}

	d.fields = kept

	if !found {
		d.fields = append(d.fields, field{key: key, value: raw})
	}

	return nil
}

// Encode renders the document with two-space indentation and exactly one
// trailing newline.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer

	if len(d.fields) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("{\n")

	for i, f := range d.fields {
		key, err := marshalString(f.key)
		if err != nil {
			return nil, err
		}

		buf.WriteString(indent)
		buf.Write(key)
		buf.WriteString(": ")

		if err = json.Indent(&buf, f.value, indent, indent); err != nil {
			return nil, fmt.Errorf("encode manifest field %q: %w", f.key, err)
		}

		if i < len(d.fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")

	return buf.Bytes(), nil
}

func (d *Document) lookup(key string) (json.RawMessage, bool) {
	var (
		value json.RawMessage
		found bool
	)

	// The last occurrence wins, as with any JSON decoder.
	for _, f := range d.fields {
		if f.key == key {
			value, found = f.value, true
		}
	}

	return value, found
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) (json.RawMessage, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(s); err != nil {
		return nil, fmt.Errorf("encode string: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
