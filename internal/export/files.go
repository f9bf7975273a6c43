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
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"pagebuilder/internal/domain"
)

// writeFile writes data to path, creating the parent directory.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WritePNGFile renders one page thumbnail to path.
func WritePNGFile(path string, doc domain.Document, page domain.PageID, opt PNGOptions) error {
	var buf bytes.Buffer
	if err := WritePNG(&buf, doc, page, opt); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
