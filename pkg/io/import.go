package io

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// ReadPeople decodes a JSON array of person records from r.
//
// ReadPeople returns an INVALID_FORMAT error when the input is not a JSON
// array of objects, and an INVALID_RECORD error naming the offending index
// when a record has no id. References are normalized with
// [person.Normalize]; dangling references are kept so a later merge can
// resolve them. ReadPeople does not close r.
func ReadPeople(r io.Reader) ([]person.Person, error) {
	var people []person.Person
	if err := json.NewDecoder(r).Decode(&people); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode person array")
	}
	for i, p := range people {
		if err := person.Validate(p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "record %d", i)
		}
		people[i] = person.Normalize(p)
	}
	return people, nil
}

// ImportFile reads the JSON array at path.
func ImportFile(path string) ([]person.Person, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadPeople(f)
}
