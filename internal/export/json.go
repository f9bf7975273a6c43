/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"pagebuilder/internal/domain"
)

// ErrImportParse reports an import file that is not a valid document.
var ErrImportParse = errors.New("import parse failure")

//go:embed document.schema.json
var documentSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(documentSchema)

// Filename returns the download name of an export made at t.
func Filename(t time.Time) string {
	return "utopia-urbana-" + t.Format("2006-01-02") + ".json"
}

// WriteJSON writes doc as compact JSON.
func WriteJSON(w io.Writer, doc domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// ReadJSON parses and validates an exported document. Any failure wraps ErrImportParse.
// The result always holds every page.
func ReadJSON(r io.Reader) (domain.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrImportParse, err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrImportParse, err)
	}
	return domain.Normalize(doc), nil
}

// Validate checks raw JSON against the document schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImportParse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrImportParse, strings.Join(msgs, "; "))
	}
	return nil
}

// ExportFile writes doc to path, or to Filename(now) inside path when path is a directory.
// It returns the file written.
func ExportFile(path string, doc domain.Document, now time.Time) (string, error) {
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, Filename(now))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := WriteJSON(f, doc); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	return path, nil
}

// ImportFile reads and validates the document at path.
func ImportFile(path string) (domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", ErrImportParse, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
