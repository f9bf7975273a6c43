/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

// Selection is an ordered set of element ids on the open page.
type Selection struct {
	ids []string
}

func (s *Selection) indexOf(id string) int {
	for i, v := range s.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool { return s.indexOf(id) >= 0 }

// Set replaces the selection with ids.
func (s *Selection) Set(ids ...string) {
	s.ids = s.ids[:0]
	s.Add(ids...)
}

// Add appends ids that are not yet selected. It never removes.
func (s *Selection) Add(ids ...string) {
	for _, id := range ids {
		if id != "" && !s.Has(id) {
			s.ids = append(s.ids, id)
		}
	}
}

// Toggle flips the membership of id.
func (s *Selection) Toggle(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
		return
	}
	s.Add(id)
}

// Remove drops ids from the selection.
func (s *Selection) Remove(ids ...string) {
	kept := s.ids[:0]
	for _, v := range s.ids {
		drop := false
		for _, id := range ids {
			if v == id {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, v)
		}
	}
	s.ids = kept
}

func (s *Selection) Clear() { s.ids = s.ids[:0] }

func (s *Selection) Len() int { return len(s.ids) }

// IDs returns a copy of the selected ids in selection order.
func (s *Selection) IDs() []string { return append([]string(nil), s.ids...) }
