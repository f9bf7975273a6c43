/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package media turns user files into the opaque data URL payloads stored in element content
// and page backgrounds. Images are downsampled and re-encoded as JPEG; video is passed through.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	// Decoders registered for image.Decode
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/image/draw"

	"pagebuilder/internal/domain"
)

const (
	// DefaultMaxDimension bounds the longer side of an encoded image.
	DefaultMaxDimension = 1200
	// DefaultQuality is the JPEG quality of encoded images.
	DefaultQuality = 70
)

var (
	ErrBadDataURL  = errors.New("malformed data URL")
	ErrUnsupported = errors.New("unsupported media type")
)

// Encoder converts raw media into data URLs.
type Encoder struct {
	MaxDimension int
	Quality      int
}

// Default is the encoder used by the editor.
var Default = Encoder{MaxDimension: DefaultMaxDimension, Quality: DefaultQuality}

// Image decodes r, scales it to fit MaxDimension keeping the aspect ratio and
// returns a JPEG data URL. Transparent areas become white.
func (e Encoder) Image(r io.Reader) (string, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	w, h := FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), e.maxDim())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: e.quality()}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return EncodeDataURL("image/jpeg", buf.Bytes()), nil
}

// Video returns r unchanged as a data URL. An empty mimeType is sniffed from the content.
func (e Encoder) Video(r io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read video: %w", err)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return EncodeDataURL(mimeType, data), nil
}

// File encodes the file at path and reports which element type it should become.
func (e Encoder) File(path string) (string, domain.ElementType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read media: %w", err)
	}
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		s, err := e.Image(bytes.NewReader(data))
		return s, domain.ElementImage, err
	case strings.HasPrefix(mt, "video/"):
		s, err := e.Video(bytes.NewReader(data), mt)
		return s, domain.ElementVideo, err
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupported, mt)
	}
}

func (e Encoder) maxDim() int {
	if e.MaxDimension <= 0 {
		return DefaultMaxDimension
	}
	return e.MaxDimension
}

func (e Encoder) quality() int {
	if e.Quality <= 0 || e.Quality > 100 {
		return DefaultQuality
	}
	return e.Quality
}

// FitWithin scales w x h down so the longer side is at most limit. Smaller sizes are kept.
func FitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its media type and payload.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadDataURL
	}
	mt, isB64 := strings.CutSuffix(meta, ";base64")
	if !isB64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrBadDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBadDataURL, err)
	}
	return mt, data, nil
}

// IsDataURL reports whether s looks like a data URL.
func IsDataURL(s string) bool { return strings.HasPrefix(s, "data:") }
