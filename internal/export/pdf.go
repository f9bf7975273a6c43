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
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/media"
)

// Canvas size used when no element reaches further.
const (
	DefaultCanvasWidth  = 1280
	DefaultCanvasHeight = 800
	canvasMargin        = 40
)

// PDFOptions controls PDF proof export.
// Units are points, mapped 1:1 from canvas pixels. Page origin is top-left.
type PDFOptions struct {
	// Pages to include, in order; empty means every page.
	Pages []domain.PageID
	Title string
	// CanvasWidth and CanvasHeight give the minimum page size.
	CanvasWidth  float64
	CanvasHeight float64
}

type rgb struct{ R, G, B int }

var (
	white       = rgb{255, 255, 255}
	placeholder = rgb{226, 232, 240}
	labelColor  = rgb{100, 116, 139}
	textColor   = rgb{15, 23, 42}
)

// WritePDF renders the document as a proof sheet, one PDF page per site page.
// Elements are drawn in paint order with their rotation; links become PDF link annotations,
// internal ones pointing at the matching page of the proof.
func WritePDF(w io.Writer, doc domain.Document, opt PDFOptions) error {
	pages := opt.Pages
	if len(pages) == 0 {
		pages = domain.Pages
	}
	minW, minH := opt.CanvasWidth, opt.CanvasHeight
	if minW <= 0 {
		minW = DefaultCanvasWidth
	}
	if minH <= 0 {
		minH = DefaultCanvasHeight
	}
	title := opt.Title
	if title == "" {
		title = "Page builder proof"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: minW, Ht: minH},
	})
	pdf.SetTitle(title, true)
	pdf.SetAuthor("pagebuilder", false)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	links := make(map[domain.PageID]int, len(pages))
	for _, p := range pages {
		links[p] = pdf.AddLink()
	}

	for _, p := range pages {
		ps, ok := doc[p]
		if !ok {
			continue
		}
		pw, ph := PageSize(ps.Elements, minW, minH)
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pw, Ht: ph})
		pdf.SetLink(links[p], 0, -1)

		drawBackground(pdf, p, ps, pw, ph)
		for _, el := range doc.PaintOrder(p) {
			drawElement(pdf, p, el, tr)
			linkElement(pdf, el, links)
		}
		pdf.SetFont("Helvetica", "", 8)
		setTextColor(pdf, labelColor)
		pdf.Text(6, ph-6, tr(p.Label()))
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PageSize returns the page size needed to show every element, at least minW x minH.
func PageSize(els []domain.Element, minW, minH float64) (float64, float64) {
	w, h := minW, minH
	for _, el := range els {
		b := el.Box().Max()
		w = max(w, b.X+canvasMargin)
		h = max(h, b.Y+canvasMargin)
	}
	return w, h
}

func drawBackground(pdf *gofpdf.Fpdf, p domain.PageID, ps domain.PageSettings, w, h float64) {
	if ps.BgType == domain.BackgroundImage {
		if name, ok := registerImage(pdf, "bg-"+string(p), ps.Background); ok {
			pdf.ImageOptions(name, 0, 0, w, h, false, gofpdf.ImageOptions{}, 0, "")
			return
		}
	}
	c, ok := ParseHexColor(ps.Background)
	if !ok {
		c = white
	}
	setFillColor(pdf, c)
	pdf.Rect(0, 0, w, h, "F")
}

func drawElement(pdf *gofpdf.Fpdf, p domain.PageID, el domain.Element, tr func(string) string) {
	ctr := el.Box().Center()
	pdf.TransformBegin()
	defer pdf.TransformEnd()
	if el.Rotation != 0 {
		// gofpdf rotates counter-clockwise; element rotation is clockwise.
		pdf.TransformRotate(-el.Rotation, ctr.X, ctr.Y)
	}
	switch el.Type {
	case domain.ElementImage:
		if name, ok := registerImage(pdf, fmt.Sprintf("el-%s-%s", p, el.ID), el.Content); ok {
			pdf.ImageOptions(name, el.X, el.Y, el.Width, el.Height, false, gofpdf.ImageOptions{}, 0, "")
			return
		}
		drawPlaceholder(pdf, el, "IMAGE")
	case domain.ElementVideo:
		drawPlaceholder(pdf, el, "VIDEO")
	case domain.ElementText:
		size := el.FontSize
		if size <= 0 {
			size = domain.DefaultFontSize
		}
		pdf.SetFont("Helvetica", "B", size)
		setTextColor(pdf, textColor)
		pdf.SetXY(el.X, el.Y)
		pdf.MultiCell(el.Width, size*1.2, tr(el.Content), "", "C", false)
	}
}

func drawPlaceholder(pdf *gofpdf.Fpdf, el domain.Element, label string) {
	setFillColor(pdf, placeholder)
	setDrawColor(pdf, labelColor)
	pdf.SetLineWidth(0.5)
	pdf.Rect(el.X, el.Y, el.Width, el.Height, "FD")
	pdf.SetFont("Helvetica", "", 10)
	setTextColor(pdf, labelColor)
	pdf.SetXY(el.X, el.Y+el.Height/2-6)
	pdf.CellFormat(el.Width, 12, label, "", 0, "C", false, 0, "")
}

func linkElement(pdf *gofpdf.Fpdf, el domain.Element, links map[domain.PageID]int) {
	target, external, ok := editor.LinkTarget(el.Link)
	if !ok {
		return
	}
	if external {
		pdf.LinkString(el.X, el.Y, el.Width, el.Height, strings.TrimSpace(el.Link))
		return
	}
	if id, found := links[target]; found {
		pdf.Link(el.X, el.Y, el.Width, el.Height, id)
	}
}

// registerImage registers a data URL payload with the PDF. Unsupported formats report false.
func registerImage(pdf *gofpdf.Fpdf, name, content string) (string, bool) {
	mt, data, err := media.DecodeDataURL(content)
	if err != nil {
		return "", false
	}
	var typ string
	switch mt {
	case "image/jpeg", "image/jpg":
		typ = "JPG"
	case "image/png":
		typ = "PNG"
	case "image/gif":
		typ = "GIF"
	default:
		return "", false
	}
	info := pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
	if info == nil || !pdf.Ok() {
		pdf.ClearError()
		return "", false
	}
	return name, true
}

// ParseHexColor parses #rgb or #rrggbb.
func ParseHexColor(s string) (rgb, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

func setDrawColor(pdf *gofpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.R, c.G, c.B) }
func setFillColor(pdf *gofpdf.Fpdf, c rgb) { pdf.SetFillColor(c.R, c.G, c.B) }
func setTextColor(pdf *gofpdf.Fpdf, c rgb) { pdf.SetTextColor(c.R, c.G, c.B) }

// WritePDFFile renders doc to path.
func WritePDFFile(path string, doc domain.Document, opt PDFOptions) error {
	var buf bytes.Buffer
	if err := WritePDF(&buf, doc, opt); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
