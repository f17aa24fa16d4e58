// Package vocabulary loads the query vocabulary from a YAML file.
//
//	brands: [acer, apple, asus, dell]
//	use_cases: [gaming, office]
//	features: [long battery, portable]
//	sub_categories:
//	  - {keyword: laptop, canonical: laptop}
//	  - {keyword: mobile, canonical: phone}
//
// Sections left out of the file keep the built-in defaults.
package vocabulary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/productfinder/backend/internal/usecase"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a vocabulary file. An empty path returns the defaults.
func LoadFile(path string) (usecase.Vocabulary, error) {
	if path == "" {
		return usecase.DefaultVocabulary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return usecase.Vocabulary{}, fmt.Errorf("read vocabulary file: %w", err)
	}

	v, err := Parse(data)
	if err != nil {
		return usecase.Vocabulary{}, fmt.Errorf("vocabulary file %s: %w", path, err)
	}
	return v, nil
}

// Parse decodes a YAML vocabulary on top of the defaults and validates it
func Parse(data []byte) (usecase.Vocabulary, error) {
	v := usecase.DefaultVocabulary()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return usecase.Vocabulary{}, fmt.Errorf("decode: %w", err)
	}

	if err := v.Validate(); err != nil {
		return usecase.Vocabulary{}, err
	}

	return v.Normalize(), nil
}
