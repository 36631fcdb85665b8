// Package docfile decodes small JSON or YAML documents (item payloads,
// publisher registries) picking the format from the file extension.
package docfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned when no decoder accepts the document.
var ErrUnknownFormat = errors.New("document format not recognized (expected YAML or JSON)")

type decoder struct {
	name string
	ext  string
	fn   func([]byte, any) error
}

// JSON is tried first for extension-less input: every JSON document is also
// YAML, but the JSON decoder keeps number and key semantics exact.
var decoders = []decoder{
	{name: "json", ext: ".json", fn: decodeJSON},
	{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
	{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
}

// decodeJSON behaves like json.Unmarshal but keeps numbers as json.Number when
// decoding into interface values, so integers beyond 2^53 are not rounded.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return err
	}
	return nil
}

// Read loads path and decodes it into v.
func Read(path string, v any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(raw, filepath.Ext(path), v)
}

// Decode decodes data into v. ext selects the decoder (".json", ".yaml",
// ".yml"); an empty ext tries each in turn.
func Decode(data []byte, ext string, v any) error {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		err := d.fn(data, v)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("decode %s: %w", d.name, err))
	}
	if len(errs) == 0 {
		return fmt.Errorf("%w: unsupported extension %q", ErrUnknownFormat, ext)
	}
	return fmt.Errorf("%w: %w", ErrUnknownFormat, errors.Join(errs...))
}
