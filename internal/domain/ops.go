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

// Document update operations. Every function returns a new Document and leaves its
// input untouched; pages that are not affected are shared with the input, which is
// safe because nothing in this package writes to a Document in place.
//
// Unknown pages and element ids are ignored: the editor routinely sends ids of elements
// that were deleted a moment ago and those must not bring it down.

// ElementPatch carries the fields to merge into an element; nil fields are left alone.
type ElementPatch struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
	Content  *string
	Link     *string
	FontSize *float64
	ZIndex   *int
}

// Empty reports whether the patch changes nothing.
func (p ElementPatch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil && p.Rotation == nil &&
		p.Content == nil && p.Link == nil && p.FontSize == nil && p.ZIndex == nil
}

func (p ElementPatch) apply(el Element) Element {
	if p.X != nil {
		el.X = *p.X
	}
	if p.Y != nil {
		el.Y = *p.Y
	}
	if p.Width != nil {
		el.Width = *p.Width
	}
	if p.Height != nil {
		el.Height = *p.Height
	}
	if p.Rotation != nil {
		el.Rotation = *p.Rotation
	}
	if p.Content != nil {
		el.Content = *p.Content
	}
	if p.Link != nil {
		el.Link = *p.Link
	}
	if p.FontSize != nil {
		el.FontSize = *p.FontSize
	}
	if p.ZIndex != nil {
		el.ZIndex = *p.ZIndex
	}
	return el
}

// Ptr is a small helper for building patches.
func Ptr[T any](v T) *T { return &v }

// withPage copies doc and replaces one page with fn's result. Unknown pages yield doc as is.
func withPage(doc Document, page PageID, fn func(PageSettings) PageSettings) Document {
	ps, ok := doc[page]
	if !ok {
		return doc
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	out[page] = fn(ps)
	return out
}

func idSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// anyOn reports whether page holds at least one element from set.
func anyOn(doc Document, page PageID, set map[string]struct{}) bool {
	for _, el := range doc[page].Elements {
		if _, ok := set[el.ID]; ok {
			return true
		}
	}
	return false
}

// AddElements appends one element per content payload. Positions are staggered so
// that a batch does not stack perfectly, and z-indexes continue above the current max
// of the page, so the index of a deleted top element is handed out again.
func AddElements(doc Document, page PageID, typ ElementType, contents []string, newID func() string) Document {
	if len(contents) == 0 || !typ.Valid() {
		return doc
	}
	return withPage(doc, page, func(ps PageSettings) PageSettings {
		base := ps.maxZ()
		w, h := float64(MediaWidth), float64(MediaHeight)
		if typ == ElementText {
			w, h = TextWidth, TextHeight
		}
		els := make([]Element, len(ps.Elements), len(ps.Elements)+len(contents))
		copy(els, ps.Elements)
		for i, c := range contents {
			off := float64(StaggerOrigin + i*StaggerStep)
			el := Element{
				ID:      newID(),
				Type:    typ,
				X:       off,
				Y:       off,
				Width:   w,
				Height:  h,
				Content: c,
				ZIndex:  base + i + 1,
			}
			if typ == ElementText {
				el.FontSize = DefaultFontSize
			}
			els = append(els, el)
		}
		ps.Elements = els
		return ps
	})
}

// UpdateElement merges patch into the element with the given id.
func UpdateElement(doc Document, page PageID, id string, patch ElementPatch) Document {
	if patch.Empty() {
		return doc
	}
	if _, ok := doc.FindElement(page, id); !ok {
		return doc
	}
	return withPage(doc, page, func(ps PageSettings) PageSettings {
		els := make([]Element, len(ps.Elements))
		for i, el := range ps.Elements {
			if el.ID == id {
				el = patch.apply(el)
			}
			els[i] = el
		}
		ps.Elements = els
		return ps
	})
}

// MoveElements shifts every listed element by (dx, dy).
func MoveElements(doc Document, page PageID, ids []string, dx, dy float64) Document {
	if len(ids) == 0 || (dx == 0 && dy == 0) {
		return doc
	}
	set := idSet(ids)
	if !anyOn(doc, page, set) {
		return doc
	}
	return withPage(doc, page, func(ps PageSettings) PageSettings {
		els := make([]Element, len(ps.Elements))
		for i, el := range ps.Elements {
			if _, ok := set[el.ID]; ok {
				el.X += dx
				el.Y += dy
			}
			els[i] = el
		}
		ps.Elements = els
		return ps
	})
}

// DeleteElements removes the listed elements from one page.
func DeleteElements(doc Document, page PageID, ids []string) Document {
	if len(ids) == 0 {
		return doc
	}
	set := idSet(ids)
	if !anyOn(doc, page, set) {
		return doc
	}
	return withPage(doc, page, func(ps PageSettings) PageSettings {
		els := make([]Element, 0, len(ps.Elements))
		for _, el := range ps.Elements {
			if _, ok := set[el.ID]; !ok {
				els = append(els, el)
			}
		}
		ps.Elements = els
		return ps
	})
}

// SetBackground changes the background of page, or of every page when applyToAll is set.
func SetBackground(doc Document, page PageID, background string, bgType BackgroundType, applyToAll bool) Document {
	set := func(ps PageSettings) PageSettings {
		ps.Background = background
		ps.BgType = bgType
		return ps
	}
	if !applyToAll {
		return withPage(doc, page, set)
	}
	out := doc
	for _, p := range Pages {
		out = withPage(out, p, set)
	}
	return out
}

// ShiftZIndex moves an element forward (delta > 0) or backward in paint order.
// The result never drops below 1.
func ShiftZIndex(doc Document, page PageID, id string, delta int) Document {
	el, ok := doc.FindElement(page, id)
	if !ok {
		return doc
	}
	z := max(1, el.ZIndex+delta)
	if z == el.ZIndex {
		return doc
	}
	return UpdateElement(doc, page, id, ElementPatch{ZIndex: Ptr(z)})
}

// SetLink points an element at a page id or URL; an empty link removes it.
func SetLink(doc Document, page PageID, id, link string) Document {
	return UpdateElement(doc, page, id, ElementPatch{Link: &link})
}

// SetText replaces the content of an element.
func SetText(doc Document, page PageID, id, text string) Document {
	return UpdateElement(doc, page, id, ElementPatch{Content: &text})
}

// SetFontSize changes the font size of an element; non-positive sizes are ignored.
func SetFontSize(doc Document, page PageID, id string, size float64) Document {
	if size <= 0 {
		return doc
	}
	return UpdateElement(doc, page, id, ElementPatch{FontSize: &size})
}
