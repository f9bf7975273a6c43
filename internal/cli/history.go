/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"io"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/undo"
)

// runUndoDemo edits a scratch session seeded with doc. Nothing it does is persisted.
func runUndoDemo(w io.Writer, doc domain.Document, page domain.PageID, limit int) error {
	s := editor.NewSession(doc, editor.Options{
		History: undo.NewManager(undo.Config{MaxEntries: limit}),
		Page:    page,
	})
	step := func(label string) error {
		entries, cursor := s.History().Stats()
		_, err := fmt.Fprintf(w, "%-10s elements=%-3d history=%d cursor=%d undo=%t redo=%t\n",
			label, len(s.Document()[page].Elements), entries, cursor, s.History().CanUndo(), s.History().CanRedo())
		return err
	}

	if err := step("start"); err != nil {
		return err
	}
	for i := 1; i <= 3; i++ {
		s.AddText(page)
		if err := step(fmt.Sprintf("add #%d", i)); err != nil {
			return err
		}
	}
	for i := 0; i < 2; i++ {
		s.Undo()
		if err := step("undo"); err != nil {
			return err
		}
	}
	s.Redo()
	if err := step("redo"); err != nil {
		return err
	}
	s.AddText(page)
	return step("add (redo dropped)")
}
