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

// This file defines the data model persisted by the page builder: a fixed set of
// pages, each with a background and a freeform list of positioned elements.

// PageID names one of the fixed canvases.
type PageID string

const (
	PageHome      PageID = "home"
	PageSobre     PageID = "sobre"
	PageUtopia    PageID = "utopia"
	PageContribua PageID = "contribua"
	PageMapa      PageID = "mapa"
)

// Pages is the closed set of page ids, in navigation order.
var Pages = []PageID{PageHome, PageSobre, PageUtopia, PageContribua, PageMapa}

var pageLabels = map[PageID]string{
	PageHome:      "Home",
	PageSobre:     "Sobre",
	PageUtopia:    "Utopia Urbana",
	PageContribua: "Contribua",
	PageMapa:      "Mapa",
}

// Valid reports whether p belongs to the fixed page set.
func (p PageID) Valid() bool {
	_, ok := pageLabels[p]
	return ok
}

// Label returns the navigation label, or the raw id for unknown pages.
func (p PageID) Label() string {
	if l, ok := pageLabels[p]; ok {
		return l
	}
	return string(p)
}

// ElementType is the kind of content an element carries.
type ElementType string

const (
	ElementImage ElementType = "image"
	ElementText  ElementType = "text"
	ElementVideo ElementType = "video"
)

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	return t == ElementImage || t == ElementText || t == ElementVideo
}

// BackgroundType tells how PageSettings.Background is interpreted.
type BackgroundType string

const (
	BackgroundColor BackgroundType = "color"
	BackgroundImage BackgroundType = "image"
)

// Element is one positioned, sized and rotatable unit on a page.
// Coordinates are canvas-local; Rotation is in degrees, clockwise.
// Content is text for text elements and an encoded media payload otherwise.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`
	Content  string      `json:"content"`
	Link     string      `json:"link,omitempty"` // page id or external URL
	FontSize float64     `json:"fontSize,omitempty"`
	ZIndex   int         `json:"zIndex"`
}

// Box returns the element's unrotated bounding box.
func (e Element) Box() Rect { return Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height} }

// PageSettings holds the background and the elements of one page.
// Elements keep insertion order; paint order comes from ZIndex.
type PageSettings struct {
	Background string         `json:"background"`
	BgType     BackgroundType `json:"bgType"`
	Elements   []Element      `json:"elements"`
}

// Document is the whole application state, the unit of persistence and undo.
type Document map[PageID]PageSettings

// Layout defaults used when elements are created.
const (
	DefaultBackground = "#ffffff"
	DefaultTextLabel  = "NOVA CAIXA DE TEXTO"
	DefaultFontSize   = 18

	StaggerOrigin = 150
	StaggerStep   = 30

	TextWidth   = 300
	TextHeight  = 100
	MediaWidth  = 400
	MediaHeight = 300
)

// ExternalLinkPrefix marks links that leave the site.
const ExternalLinkPrefix = "http"
