/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"math"
	"testing"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
)

const offset = DefaultToolbarOffset

// vp converts canvas coordinates into the viewport coordinates pointer events carry.
func vp(x, y float64) domain.Pt { return domain.Pt{X: x, Y: y + offset} }

func sessionWith(els ...domain.Element) *editor.Session {
	doc := domain.InitialDocument()
	ps := doc[domain.PageHome]
	ps.Elements = els
	doc[domain.PageHome] = ps
	return editor.NewSession(doc, editor.Options{})
}

func box(id string, x, y, w, h float64) domain.Element {
	return domain.Element{ID: id, Type: domain.ElementImage, X: x, Y: y, Width: w, Height: h, ZIndex: 1}
}

func historyLen(s *editor.Session) int {
	n, _ := s.History().Stats()
	return n
}

func TestMarqueeSelectsIntersecting(t *testing.T) {
	s := sessionWith(box("a", 10, 10, 50, 50), box("b", 200, 200, 50, 50))
	c := New(s, Options{ToolbarOffset: offset})

	c.PointerDownCanvas(domain.PageHome, vp(0, 0), false)
	c.PointerMove(vp(100, 100))
	if c.Mode() != Marquee {
		t.Fatalf("expected marquee mode, got %s", c.Mode())
	}
	if r, ok := c.MarqueeRect(); !ok || r != (domain.Rect{X: 0, Y: 0, W: 100, H: 100}) {
		t.Fatalf("unexpected marquee rect %+v", r)
	}
	hits := c.PointerUp(vp(100, 100))
	if len(hits) != 1 || hits[0] != "a" {
		t.Fatalf("expected only a, got %v", hits)
	}
	if got := s.Selected(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("selection = %v", got)
	}

	c.PointerDownCanvas(domain.PageHome, vp(300, 300), false)
	c.PointerUp(vp(0, 0))
	if got := s.Selected(); len(got) != 2 {
		t.Fatalf("expected both selected, got %v", got)
	}

	c.PointerDownCanvas(domain.PageHome, vp(500, 500), false)
	if hits := c.PointerUp(vp(600, 600)); len(hits) != 0 {
		t.Fatalf("empty marquee should hit nothing, got %v", hits)
	}
	if got := s.Selected(); len(got) != 2 {
		t.Fatalf("marquee must never remove members, got %v", got)
	}
	if c.Mode() != Idle {
		t.Fatalf("expected idle after release, got %s", c.Mode())
	}
}

func TestMarqueeAppliesToolbarOffset(t *testing.T) {
	s := sessionWith(box("a", 10, 100, 50, 50))
	c := New(s, Options{ToolbarOffset: offset})
	// Viewport y 150 is canvas y 86, above the element.
	c.PointerDownCanvas(domain.PageHome, domain.Pt{X: 0, Y: 64}, false)
	if hits := c.PointerUp(domain.Pt{X: 100, Y: 150}); len(hits) != 0 {
		t.Fatalf("marquee should be translated into canvas space, got %v", hits)
	}
	c.PointerDownCanvas(domain.PageHome, domain.Pt{X: 0, Y: 64}, false)
	if hits := c.PointerUp(domain.Pt{X: 100, Y: 180}); len(hits) != 1 {
		t.Fatalf("expected a hit once the marquee reaches canvas y 116, got %v", hits)
	}
}

func TestCanvasClickClearsSelection(t *testing.T) {
	s := sessionWith(box("a", 10, 10, 50, 50))
	s.Select("a", false)
	c := New(s, Options{ToolbarOffset: offset})

	c.PointerDownCanvas(domain.PageHome, vp(400, 400), true)
	c.PointerUp(vp(400, 400))
	if !s.IsSelected("a") {
		t.Fatalf("modifier click should keep the selection")
	}
	c.PointerDownCanvas(domain.PageHome, vp(400, 400), false)
	c.PointerUp(vp(400, 400))
	if len(s.Selected()) != 0 {
		t.Fatalf("plain click should clear the selection")
	}
}

func TestGroupDragCommitsOnce(t *testing.T) {
	s := sessionWith(box("a", 10, 10, 50, 50), box("b", 200, 200, 50, 50), box("c", 400, 400, 10, 10))
	c := New(s, Options{ToolbarOffset: offset})

	c.PointerDownElement(domain.PageHome, "a", vp(20, 20), false)
	c.PointerDownElement(domain.PageHome, "b", vp(210, 210), true)
	if c.Mode() != Idle {
		t.Fatalf("selecting must not start a drag")
	}
	before := historyLen(s)

	c.PointerDownElement(domain.PageHome, "a", vp(20, 20), false)
	if c.Mode() != Dragging {
		t.Fatalf("expected dragging, got %s", c.Mode())
	}
	for i := 1; i <= 10; i++ {
		c.PointerMove(vp(20+float64(i)*20, 20))
	}
	c.PointerUp(vp(220, 20))

	a, _ := s.Element(domain.PageHome, "a")
	b, _ := s.Element(domain.PageHome, "b")
	other, _ := s.Element(domain.PageHome, "c")
	if a.X != 210 || b.X != 400 || a.Y != 10 || b.Y != 200 {
		t.Fatalf("group not moved by 200px: a=%+v b=%+v", a, b)
	}
	if other.X != 400 {
		t.Fatalf("unselected element moved: %+v", other)
	}
	if got := historyLen(s); got != before+1 {
		t.Fatalf("drag should add exactly one history entry, got %d -> %d", before, got)
	}
	if !s.Undo() {
		t.Fatalf("undo failed")
	}
	a, _ = s.Element(domain.PageHome, "a")
	if a.X != 10 {
		t.Fatalf("undo should revert the whole drag, got x=%v", a.X)
	}
}

func TestClickWithoutMoveDoesNotCommit(t *testing.T) {
	s := sessionWith(box("a", 10, 10, 50, 50))
	s.Select("a", false)
	c := New(s, Options{ToolbarOffset: offset})
	before := historyLen(s)
	c.PointerDownElement(domain.PageHome, "a", vp(20, 20), false)
	c.PointerUp(vp(20, 20))
	if historyLen(s) != before {
		t.Fatalf("a click should not create history")
	}
}

func TestResizeClampsAndOnlyTouchesHandledElement(t *testing.T) {
	s := sessionWith(box("a", 100, 100, 200, 100), box("b", 400, 400, 50, 50))
	s.Select("a", false)
	s.Select("b", true)
	c := New(s, Options{ToolbarOffset: offset})

	c.PointerDownHandle(domain.PageHome, "a", HandleSE, vp(300, 200))
	c.PointerMove(vp(350, 260))
	a, _ := s.Element(domain.PageHome, "a")
	if a.Width != 250 || a.Height != 160 {
		t.Fatalf("expected 250x160, got %vx%v", a.Width, a.Height)
	}
	c.PointerUp(vp(105, 101))
	a, _ = s.Element(domain.PageHome, "a")
	if a.Width != 50 || a.Height != 20 {
		t.Fatalf("expected clamp to 50x20, got %vx%v", a.Width, a.Height)
	}
	b, _ := s.Element(domain.PageHome, "b")
	if b.Width != 50 || b.Height != 50 {
		t.Fatalf("group member resized: %+v", b)
	}

	c.PointerDownHandle(domain.PageHome, "a", HandleNE, vp(150, 100))
	c.PointerUp(vp(300, 0))
	a, _ = s.Element(domain.PageHome, "a")
	if a.Width != 200 || a.Height != 20 {
		t.Fatalf("ne handle should only change width, got %vx%v", a.Width, a.Height)
	}
}

func TestRotateFromCenter(t *testing.T) {
	s := sessionWith(box("a", 0, 0, 100, 100))
	c := New(s, Options{ToolbarOffset: offset})
	before := historyLen(s)

	c.PointerDownRotate(domain.PageHome, "a", vp(50, -30))
	c.PointerMove(vp(150, 50))
	a, _ := s.Element(domain.PageHome, "a")
	if math.Abs(a.Rotation-90) > 1e-9 {
		t.Fatalf("pointing right should be 90deg, got %v", a.Rotation)
	}
	c.PointerUp(vp(50, -30))
	a, _ = s.Element(domain.PageHome, "a")
	if math.Abs(a.Rotation) > 1e-9 {
		t.Fatalf("pointing up should be 0deg, got %v", a.Rotation)
	}
	if historyLen(s) != before+1 {
		t.Fatalf("rotation should commit one entry")
	}
}

func TestRotationAngle(t *testing.T) {
	center := domain.Pt{X: 0, Y: 0}
	cases := []struct {
		p    domain.Pt
		want float64
	}{
		{domain.Pt{X: 0, Y: -1}, 0},
		{domain.Pt{X: 1, Y: 0}, 90},
		{domain.Pt{X: 0, Y: 1}, 180},
		{domain.Pt{X: -1, Y: 0}, -90},
		{domain.Pt{X: 1, Y: -1}, 45},
	}
	for _, tc := range cases {
		if got := RotationAngle(center, tc.p); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("RotationAngle(%+v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestPreviewActivatesLinks(t *testing.T) {
	el := box("a", 0, 0, 10, 10)
	el.Link = "mapa"
	s := sessionWith(el)
	s.SetPreview(true)
	c := New(s, Options{ToolbarOffset: offset})
	c.PointerDownElement(domain.PageHome, "a", vp(5, 5), false)
	if c.Mode() != Idle || len(s.Selected()) != 0 {
		t.Fatalf("preview must not select or drag")
	}
	if s.Page() != domain.PageMapa {
		t.Fatalf("link should navigate to mapa, got %s", s.Page())
	}
	c.PointerDownCanvas(domain.PageHome, vp(0, 0), false)
	if c.Mode() != Idle {
		t.Fatalf("preview must not start a marquee")
	}
}
