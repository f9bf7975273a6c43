/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/export"
	"pagebuilder/internal/gesture"
	"pagebuilder/internal/media"
	"pagebuilder/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func newShowCmd(g *Globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every page with its background and elements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app.App, _ domain.PageID) error {
				doc := a.Session().Document()
				if asJSON {
					return export.WriteJSON(cmd.OutOrStdout(), doc)
				}
				return writeSummary(cmd.OutOrStdout(), a, doc)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the document as exported JSON")
	return cmd
}

func writeSummary(w io.Writer, a *app.App, doc domain.Document) error {
	var b strings.Builder
	fmt.Fprintf(&b, "source: %s\n", a.Source())
	fmt.Fprintf(&b, "store:  %s\n", a.Persister().Store().Path())
	fmt.Fprintf(&b, "backup: %s\n", a.Persister().Backup().Path())
	for _, p := range domain.Pages {
		ps := doc[p]
		fmt.Fprintf(&b, "\n%s (%s) background=%s [%s] elements=%d\n", p.Label(), p, shorten(ps.Background), ps.BgType, len(ps.Elements))
		for _, el := range doc.PaintOrder(p) {
			fmt.Fprintf(&b, "  %-12s %-5s z=%-3d at %.0f,%.0f size %.0fx%.0f rot %.0f",
				el.ID, el.Type, el.ZIndex, el.X, el.Y, el.Width, el.Height, el.Rotation)
			if el.Link != "" {
				fmt.Fprintf(&b, " link=%s", el.Link)
			}
			if el.Type == domain.ElementText {
				fmt.Fprintf(&b, " %q", shorten(el.Content))
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// shorten keeps data URLs and long texts readable in listings.
func shorten(s string) string {
	if media.IsDataURL(s) {
		if i := strings.IndexByte(s, ','); i > 0 {
			return s[:i] + ",…"
		}
	}
	if r := []rune(s); len(r) > 40 {
		return string(r[:40]) + "…"
	}
	return s
}

func printIDs(w io.Writer, ids []string) error {
	for _, id := range ids {
		if _, err := fmt.Fprintln(w, id); err != nil {
			return err
		}
	}
	return nil
}

func newAddTextCmd(g *Globals) *cobra.Command {
	var fontSize float64
	cmd := &cobra.Command{
		Use:   "add-text [text...]",
		Short: "Add one text box per argument (a placeholder box when none is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				var ids []string
				if len(args) == 0 {
					ids = []string{a.Session().AddText(page)}
				} else {
					ids = a.Session().AddElements(page, domain.ElementText, args)
				}
				if fontSize > 0 {
					for _, id := range ids {
						a.Session().SetFontSize(page, id, fontSize)
					}
				}
				return printIDs(cmd.OutOrStdout(), ids)
			})
		},
	}
	cmd.Flags().Float64Var(&fontSize, "font-size", 0, "Font size in pixels")
	return cmd
}

func newAddMediaCmd(g *Globals, typ domain.ElementType) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("add-%s <file...>", typ),
		Short: fmt.Sprintf("Encode files and add one %s element per file", typ),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payloads := make([]string, 0, len(args))
			for _, path := range args {
				content, got, err := media.Default.File(path)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("%s: %w", path, err))
				}
				if got != typ {
					return writeErr(cmd, fmt.Errorf("%s: %w: expected %s, got %s", path, media.ErrUnsupported, typ, got))
				}
				payloads = append(payloads, content)
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				return printIDs(cmd.OutOrStdout(), a.Session().AddElements(page, typ, payloads))
			})
		},
	}
}

func newMoveCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "move <dx> <dy> <id...>",
		Short: "Move elements by an offset as one undoable step",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseFloats(args[0], args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				ids := args[2:]
				if err := requireElements(a, page, ids...); err != nil {
					return err
				}
				a.Session().MoveElements(page, ids, d[0], d[1], true)
				return nil
			})
		},
	}
}

func newResizeCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "resize <id> <width> <height>",
		Short: "Resize an element by dragging its bottom-right handle (min 50x20)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseFloats(args[1], args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				id := args[0]
				el, ok := a.Session().Element(page, id)
				if !ok {
					return notFoundError{page: page, id: id}
				}
				gc := a.Gestures()
				gc.PointerDownHandle(page, id, gesture.HandleSE, toViewport(a, el.X+el.Width, el.Y+el.Height))
				gc.PointerUp(toViewport(a, el.X+size[0], el.Y+size[1]))
				el, _ = a.Session().Element(page, id)
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %.0fx%.0f\n", id, el.Width, el.Height)
				return err
			})
		},
	}
}

// toViewport maps a canvas point to where the pointer would be on screen.
func toViewport(a *app.App, x, y float64) domain.Pt {
	return domain.Pt{X: x, Y: y + a.Config().Editor.ToolbarOffset}
}

func newRotateCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate <id> <degrees>",
		Short: "Set the clockwise rotation of an element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deg, err := parseFloats(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				if err := requireElements(a, page, args[0]); err != nil {
					return err
				}
				a.Session().UpdateElement(page, args[0], domain.ElementPatch{Rotation: &deg[0]}, true)
				return nil
			})
		},
	}
}

func newDeleteCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id...>",
		Short: "Delete elements from the page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				if err := requireElements(a, page, args...); err != nil {
					return err
				}
				a.Session().DeleteElements(page, args)
				return nil
			})
		},
	}
}

func newBackgroundCmd(g *Globals) *cobra.Command {
	var imagePath string
	var all bool
	cmd := &cobra.Command{
		Use:   "background [color]",
		Short: "Set the page background to a color or, with --image, to an image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, bgType := "", domain.BackgroundColor
			switch {
			case imagePath != "":
				content, typ, err := media.Default.File(imagePath)
				if err != nil {
					return writeErr(cmd, err)
				}
				if typ != domain.ElementImage {
					return writeErr(cmd, fmt.Errorf("%s: %w", imagePath, media.ErrUnsupported))
				}
				value, bgType = content, domain.BackgroundImage
			case len(args) == 1:
				value = args[0]
			default:
				return writeErr(cmd, fmt.Errorf("a color or --image is required"))
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				a.Session().SetBackground(page, value, bgType, all)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "Image file to use as background")
	cmd.Flags().BoolVar(&all, "all", false, "Apply to every page")
	return cmd
}

func newLinkCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "link <id> [target]",
		Short: "Link an element to a page id or an http(s) URL; no target removes the link",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 2 {
				target = strings.TrimSpace(args[1])
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				if err := requireElements(a, page, args[0]); err != nil {
					return err
				}
				a.Session().SetLink(page, args[0], target)
				return nil
			})
		},
	}
}

func newZIndexCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:       "zindex <id> <forward|backward>",
		Short:     "Bring an element forward or send it backward one step",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"forward", "backward"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var delta int
			switch strings.ToLower(args[1]) {
			case "forward", "up":
				delta = 1
			case "backward", "down":
				delta = -1
			default:
				return writeErr(cmd, fmt.Errorf("direction must be forward or backward, got %q", args[1]))
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				if err := requireElements(a, page, args[0]); err != nil {
					return err
				}
				a.Session().ShiftZIndex(page, args[0], delta)
				el, _ := a.Session().Element(page, args[0])
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s z=%d\n", el.ID, el.ZIndex)
				return err
			})
		},
	}
}

func newTextCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "text <id> <content>",
		Short: "Replace the content of a text element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				if err := requireElements(a, page, args[0]); err != nil {
					return err
				}
				a.Session().SetText(page, args[0], args[1], true)
				return nil
			})
		},
	}
}

func newFontSizeCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "font-size <id> <size>",
		Short: "Set the font size of a text element",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := parseFloats(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				if err := requireElements(a, page, args[0]); err != nil {
					return err
				}
				a.Session().SetFontSize(page, args[0], size[0])
				return nil
			})
		},
	}
}

func newSelectCmd(g *Globals) *cobra.Command {
	var del bool
	cmd := &cobra.Command{
		Use:   "select <x1> <y1> <x2> <y2>",
		Short: "Marquee-select the elements touching a canvas rectangle and print their ids",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseFloats(args...)
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				gc := a.Gestures()
				gc.PointerDownCanvas(page, toViewport(a, c[0], c[1]), false)
				gc.PointerMove(toViewport(a, c[2], c[3]))
				gc.PointerUp(toViewport(a, c[2], c[3]))
				ids := a.Session().Selected()
				if del && len(ids) > 0 {
					a.Session().DeleteElements(page, ids)
				}
				return printIDs(cmd.OutOrStdout(), ids)
			})
		},
	}
	cmd.Flags().BoolVar(&del, "delete", false, "Delete the selected elements")
	return cmd
}

func newFollowCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <id>",
		Short: "Click an element in preview mode and report where its link leads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				el, ok := a.Session().Element(page, args[0])
				if !ok {
					return notFoundError{page: page, id: args[0]}
				}
				if _, _, ok := editor.LinkTarget(el.Link); !ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "no link")
					return err
				}
				a.Session().SetPreview(true)
				defer a.Session().SetPreview(false)
				a.Gestures().PointerDownElement(page, el.ID, toViewport(a, el.X, el.Y), false)
				return nil
			})
		},
	}
}

func newUndoDemoCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "undo-demo",
		Short: "Replay add, undo and redo on a scratch copy and print the history at each step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				return runUndoDemo(cmd.OutOrStdout(), a.Session().Document(), page, a.Config().Editor.HistoryLimit)
			})
		},
	}
}
