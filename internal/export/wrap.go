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
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// WrapText breaks s into lines no wider than maxWidth pixels when drawn with face.
// Lines break at spaces and at newlines; a single word wider than maxWidth gets a line of its own.
// A non-positive maxWidth disables wrapping.
func WrapText(face font.Face, s string, maxWidth int) []string {
	d := &font.Drawer{Face: face}
	space := d.MeasureString(" ").Ceil()
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		var cur strings.Builder
		width := 0
		for _, word := range strings.Fields(para) {
			w := d.MeasureString(word).Ceil()
			if cur.Len() > 0 && maxWidth > 0 && width+space+w > maxWidth {
				lines = append(lines, cur.String())
				cur.Reset()
				width = 0
			}
			if cur.Len() > 0 {
				cur.WriteByte(' ')
				width += space
			}
			cur.WriteString(word)
			width += w
		}
		lines = append(lines, cur.String())
	}
	return lines
}

// drawText writes s into r with the fixed 7x13 face, wrapped to the box width
// and cut at the box bottom.
func drawText(img *image.RGBA, r image.Rectangle, s string, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: face}
	y := r.Min.Y + face.Ascent
	for _, line := range WrapText(face, s, r.Dx()) {
		if y+face.Descent > r.Max.Y {
			return
		}
		d.Dot = fixed.P(r.Min.X, y)
		d.DrawString(line)
		y += face.Height
	}
}
