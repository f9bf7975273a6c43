/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package gesture turns pointer events into editor operations.
// Moves during a gesture are live updates; releasing the pointer commits the gesture as a
// single history entry.
package gesture

import (
	"math"
	"strings"

	"pagebuilder/internal/domain"
)

// DefaultToolbarOffset is the height of the toolbar above the canvas.
const DefaultToolbarOffset = 64

const (
	minWidth  = 50
	minHeight = 20
)

// Mode is the state of the controller.
type Mode int

const (
	Idle Mode = iota
	Dragging
	Resizing
	Rotating
	Marquee
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Rotating:
		return "rotating"
	case Marquee:
		return "marquee"
	default:
		return "idle"
	}
}

// Handle names a resize corner. A handle containing 'e' grows the width, one containing 's' the height.
type Handle string

const (
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
)

func (h Handle) horizontal() bool { return strings.ContainsRune(string(h), 'e') }
func (h Handle) vertical() bool   { return strings.ContainsRune(string(h), 's') }

// Editor is what the controller drives. *editor.Session implements it.
type Editor interface {
	Document() domain.Document
	Element(page domain.PageID, id string) (domain.Element, bool)
	UpdateElement(page domain.PageID, id string, patch domain.ElementPatch, commit bool)
	MoveElements(page domain.PageID, ids []string, dx, dy float64, commit bool)
	Commit()
	Select(id string, multi bool)
	AddToSelection(ids []string)
	ClearSelection()
	Selected() []string
	IsSelected(id string) bool
	Preview() bool
	ActivateLink(page domain.PageID, id string) bool
}

type Options struct {
	// ToolbarOffset is subtracted from viewport Y to get canvas Y.
	ToolbarOffset float64
}

// Controller tracks one pointer gesture at a time. It is not safe for concurrent use;
// pointer events arrive in order from one source.
type Controller struct {
	ed     Editor
	offset float64

	mode    Mode
	page    domain.PageID
	id      string
	handle  Handle
	last    domain.Pt
	start   domain.Pt
	changed bool
	multi   bool
}

func New(ed Editor, opts Options) *Controller {
	return &Controller{ed: ed, offset: opts.ToolbarOffset}
}

// Mode returns the active gesture state.
func (c *Controller) Mode() Mode { return c.mode }

// ToCanvas converts a viewport point into canvas-local coordinates.
func (c *Controller) ToCanvas(p domain.Pt) domain.Pt {
	return domain.Pt{X: p.X, Y: p.Y - c.offset}
}

// PointerDownElement handles a press on an element body.
// In preview mode it activates the element link. With multi set it toggles membership.
// An unselected element becomes the only selection; a selected one starts a drag.
func (c *Controller) PointerDownElement(page domain.PageID, id string, p domain.Pt, multi bool) {
	if c.ed.Preview() {
		c.ed.ActivateLink(page, id)
		return
	}
	if _, ok := c.ed.Element(page, id); !ok {
		return
	}
	if multi {
		c.ed.Select(id, true)
		return
	}
	if !c.ed.IsSelected(id) {
		c.ed.Select(id, false)
		return
	}
	c.begin(Dragging, page, id, p)
}

// PointerDownHandle starts resizing one element from a corner handle.
func (c *Controller) PointerDownHandle(page domain.PageID, id string, h Handle, p domain.Pt) {
	if c.ed.Preview() {
		return
	}
	if _, ok := c.ed.Element(page, id); !ok {
		return
	}
	c.begin(Resizing, page, id, p)
	c.handle = h
}

// PointerDownRotate starts rotating one element.
func (c *Controller) PointerDownRotate(page domain.PageID, id string, p domain.Pt) {
	if c.ed.Preview() {
		return
	}
	if _, ok := c.ed.Element(page, id); !ok {
		return
	}
	c.begin(Rotating, page, id, p)
}

// PointerDownCanvas starts a marquee on the empty canvas background.
func (c *Controller) PointerDownCanvas(page domain.PageID, p domain.Pt, multi bool) {
	if c.ed.Preview() {
		return
	}
	c.begin(Marquee, page, "", p)
	c.multi = multi
}

func (c *Controller) begin(m Mode, page domain.PageID, id string, p domain.Pt) {
	cp := c.ToCanvas(p)
	*c = Controller{ed: c.ed, offset: c.offset, mode: m, page: page, id: id, last: cp, start: cp}
}

// PointerMove applies a live update for the active gesture.
func (c *Controller) PointerMove(p domain.Pt) {
	cp := c.ToCanvas(p)
	switch c.mode {
	case Dragging:
		dx, dy := cp.X-c.last.X, cp.Y-c.last.Y
		c.last = cp
		if dx == 0 && dy == 0 {
			return
		}
		ids := []string{c.id}
		if c.ed.IsSelected(c.id) {
			ids = c.ed.Selected()
		}
		c.ed.MoveElements(c.page, ids, dx, dy, false)
		c.changed = true
	case Resizing:
		el, ok := c.ed.Element(c.page, c.id)
		if !ok {
			return
		}
		w, h := ResizedSize(el, c.handle, cp)
		if w == el.Width && h == el.Height {
			return
		}
		c.ed.UpdateElement(c.page, c.id, domain.ElementPatch{Width: &w, Height: &h}, false)
		c.changed = true
	case Rotating:
		el, ok := c.ed.Element(c.page, c.id)
		if !ok {
			return
		}
		deg := RotationAngle(el.Box().Center(), cp)
		if deg == el.Rotation {
			return
		}
		c.ed.UpdateElement(c.page, c.id, domain.ElementPatch{Rotation: &deg}, false)
		c.changed = true
	case Marquee:
		c.last = cp
	}
}

// PointerUp ends the active gesture. Drag, resize and rotate commit one history entry
// when they changed anything. A marquee adds every intersecting element to the selection;
// a plain click on the canvas clears it. It returns the ids a marquee added.
func (c *Controller) PointerUp(p domain.Pt) []string {
	defer func() { *c = Controller{ed: c.ed, offset: c.offset} }()
	cp := c.ToCanvas(p)
	switch c.mode {
	case Dragging, Resizing, Rotating:
		c.PointerMove(p)
		if c.changed {
			c.ed.Commit()
		}
	case Marquee:
		r := domain.RectFromCorners(c.start, cp)
		if r.W == 0 && r.H == 0 {
			if !c.multi {
				c.ed.ClearSelection()
			}
			return nil
		}
		ps := c.ed.Document()[c.page]
		hits := MarqueeHits(ps.Elements, r)
		c.ed.AddToSelection(hits)
		return hits
	}
	return nil
}

// MarqueeRect returns the canvas rectangle of an active marquee.
func (c *Controller) MarqueeRect() (domain.Rect, bool) {
	if c.mode != Marquee {
		return domain.Rect{}, false
	}
	return domain.RectFromCorners(c.start, c.last), true
}

// MarqueeHits returns the ids of elements whose box intersects r, in page order.
func MarqueeHits(els []domain.Element, r domain.Rect) []string {
	var ids []string
	for _, el := range els {
		if r.Intersects(el.Box()) {
			ids = append(ids, el.ID)
		}
	}
	return ids
}

// ResizedSize computes the new size of el for a pointer at p (canvas coordinates).
func ResizedSize(el domain.Element, h Handle, p domain.Pt) (w, ht float64) {
	w, ht = el.Width, el.Height
	if h.horizontal() {
		w = math.Max(minWidth, p.X-el.X)
	}
	if h.vertical() {
		ht = math.Max(minHeight, p.Y-el.Y)
	}
	return w, ht
}

// RotationAngle is the clockwise angle in degrees from center to p, with straight up at 0.
// The result lies in (-180, 180].
func RotationAngle(center, p domain.Pt) float64 {
	deg := math.Atan2(p.Y-center.Y, p.X-center.X)*180/math.Pi + 90
	if deg > 180 {
		deg -= 360
	}
	if deg <= -180 {
		deg += 360
	}
	return deg
}
