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
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/media"
)

// PNGOptions controls page thumbnail rendering.
// - Scale: output pixels per canvas pixel; zero means 0.25
// - CanvasWidth/CanvasHeight: minimum canvas size, as for PDF
//
// Thumbnails are axis-aligned: rotation is not applied.
type PNGOptions struct {
	Scale        float64
	CanvasWidth  float64
	CanvasHeight float64
}

// WritePNG renders one page as a PNG thumbnail.
func WritePNG(w io.Writer, doc domain.Document, page domain.PageID, opt PNGOptions) error {
	if _, ok := doc[page]; !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if err := png.Encode(w, RenderPage(doc, page, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// RenderPage rasterizes one page. Unknown pages render as a blank default canvas.
func RenderPage(doc domain.Document, page domain.PageID, opt PNGOptions) *image.RGBA {
	scale := opt.Scale
	if scale <= 0 {
		scale = 0.25
	}
	minW, minH := opt.CanvasWidth, opt.CanvasHeight
	if minW <= 0 {
		minW = DefaultCanvasWidth
	}
	if minH <= 0 {
		minH = DefaultCanvasHeight
	}
	ps, ok := doc[page]
	if !ok {
		ps = domain.DefaultPage()
	}
	cw, ch := PageSize(ps.Elements, minW, minH)
	pixW := max(1, int(math.Round(cw*scale)))
	pixH := max(1, int(math.Round(ch*scale)))
	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))

	bg := toRGBA(white)
	if c, ok := ParseHexColor(ps.Background); ok {
		bg = toRGBA(c)
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	if ps.BgType == domain.BackgroundImage {
		if src, ok := decodeImage(ps.Background); ok {
			draw.ApproxBiLinear.Scale(img, img.Bounds(), src, src.Bounds(), draw.Over, nil)
		}
	}

	for _, el := range doc.PaintOrder(page) {
		r := image.Rect(
			int(math.Round(el.X*scale)), int(math.Round(el.Y*scale)),
			int(math.Round((el.X+el.Width)*scale)), int(math.Round((el.Y+el.Height)*scale)),
		)
		switch el.Type {
		case domain.ElementImage:
			if src, ok := decodeImage(el.Content); ok {
				draw.ApproxBiLinear.Scale(img, r, src, src.Bounds(), draw.Over, nil)
				continue
			}
			fillRect(img, r, toRGBA(placeholder))
			strokeRect(img, r, toRGBA(labelColor))
		case domain.ElementVideo:
			fillRect(img, r, toRGBA(placeholder))
			strokeRect(img, r, toRGBA(labelColor))
			drawLabel(img, r, "VIDEO", toRGBA(labelColor))
		case domain.ElementText:
			drawText(img, r, el.Content, toRGBA(textColor))
		}
	}
	return img
}

func decodeImage(content string) (image.Image, bool) {
	_, data, err := media.DecodeDataURL(content)
	if err != nil {
		return nil, false
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	return src, true
}

// drawLabel writes s centered in r with the fixed 7x13 face, cut to the box width.
func drawLabel(img *image.RGBA, r image.Rectangle, s string, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face}
	runes := []rune(s)
	for len(runes) > 0 && d.MeasureString(string(runes)).Ceil() > r.Dx() {
		runes = runes[:len(runes)-1]
	}
	if len(runes) == 0 {
		return
	}
	w := d.MeasureString(string(runes)).Ceil()
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()+face.Ascent-face.Descent)/2
	d.Dot = fixed.P(x, y)
	d.DrawString(string(runes))
}

func toRGBA(c rgb) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

// strokeRect draws a 1px border just inside r.
func strokeRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, col)
		img.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, col)
		img.SetRGBA(r.Max.X-1, y, col)
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}
