/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import "slices"

// DefaultPage returns the settings every page starts with.
func DefaultPage() PageSettings {
	return PageSettings{Background: DefaultBackground, BgType: BackgroundColor, Elements: []Element{}}
}

// InitialDocument returns the empty document used when nothing has been persisted.
func InitialDocument() Document {
	doc := make(Document, len(Pages))
	for _, p := range Pages {
		doc[p] = DefaultPage()
	}
	return doc
}

// Clone returns a deep copy that shares no element storage with d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for id, ps := range d {
		out[id] = ps.clone()
	}
	return out
}

func (ps PageSettings) clone() PageSettings {
	c := ps
	c.Elements = make([]Element, len(ps.Elements))
	copy(c.Elements, ps.Elements)
	return c
}

// Normalize returns a document holding exactly the fixed pages: missing pages get the
// default settings, unknown keys are dropped, and nil element lists become empty.
func Normalize(d Document) Document {
	out := make(Document, len(Pages))
	for _, p := range Pages {
		ps, ok := d[p]
		if !ok {
			out[p] = DefaultPage()
			continue
		}
		ps = ps.clone()
		if ps.BgType == "" {
			ps.BgType = BackgroundColor
		}
		out[p] = ps
	}
	return out
}

// ContentSize is the total number of elements across all pages.
func ContentSize(d Document) int {
	n := 0
	for _, ps := range d {
		n += len(ps.Elements)
	}
	return n
}

// Page returns the settings for id and whether the page exists.
func (d Document) Page(id PageID) (PageSettings, bool) {
	ps, ok := d[id]
	return ps, ok
}

// FindElement looks an element up by id on one page.
func (d Document) FindElement(page PageID, id string) (Element, bool) {
	ps, ok := d[page]
	if !ok {
		return Element{}, false
	}
	for _, el := range ps.Elements {
		if el.ID == id {
			return el, true
		}
	}
	return Element{}, false
}

// PaintOrder returns the page's elements sorted by ZIndex, ties in insertion order.
func (d Document) PaintOrder(page PageID) []Element {
	ps, ok := d[page]
	if !ok {
		return nil
	}
	out := slices.Clone(ps.Elements)
	slices.SortStableFunc(out, func(a, b Element) int { return a.ZIndex - b.ZIndex })
	return out
}

// maxZ returns the highest ZIndex on the page, 0 for an empty page.
func (ps PageSettings) maxZ() int {
	m := 0
	for _, el := range ps.Elements {
		if el.ZIndex > m {
			m = el.ZIndex
		}
	}
	return m
}
