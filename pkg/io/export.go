package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// WritePeople encodes people as an indented JSON array. A nil slice is
// written as an empty array so the output always re-imports.
func WritePeople(people []person.Person, w io.Writer) error {
	if people == nil {
		people = []person.Person{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(people); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode person array")
	}
	return nil
}

// ExportFile writes people to path, creating parent directories. The file
// is replaced atomically.
func ExportFile(people []person.Person, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", dir)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := WritePeople(people, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "replace %s", path)
	}
	return nil
}
