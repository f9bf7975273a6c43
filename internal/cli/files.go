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
	"strings"

	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/export"
)

func newExportCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the document as JSON (a directory gets utopia-urbana-YYYY-MM-DD.json)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := "."
			if len(args) == 1 {
				dest = args[0]
			}
			return withApp(cmd, g, func(a *app.App, _ domain.PageID) error {
				path, err := a.Export(dest)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			})
		},
	}
}

func newImportCmd(g *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole document with an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app.App, _ domain.PageID) error {
				if err := a.Import(args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "imported %d elements\n", domain.ContentSize(a.Session().Document()))
				return err
			})
		},
	}
}

func newPDFCmd(g *Globals) *cobra.Command {
	var pages []string
	var title string
	cmd := &cobra.Command{
		Use:   "pdf <out.pdf>",
		Short: "Render a PDF proof sheet, one PDF page per site page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePages(pages)
			if err != nil {
				return writeErr(cmd, err)
			}
			return withApp(cmd, g, func(a *app.App, _ domain.PageID) error {
				if err := export.WritePDFFile(args[0], a.Session().Document(), export.PDFOptions{Pages: ids, Title: title}); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), args[0])
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&pages, "pages", nil, "Pages to include, in order (default: all)")
	cmd.Flags().StringVar(&title, "title", "Utopia Urbana", "Document title")
	return cmd
}

func newPNGCmd(g *Globals) *cobra.Command {
	var scale float64
	cmd := &cobra.Command{
		Use:   "png <out.png>",
		Short: "Render a thumbnail of the selected page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app.App, page domain.PageID) error {
				if err := export.WritePNGFile(args[0], a.Session().Document(), page, export.PNGOptions{Scale: scale}); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), args[0])
				return err
			})
		},
	}
	cmd.Flags().Float64Var(&scale, "scale", 0.25, "Output pixels per canvas pixel")
	return cmd
}

func parsePages(names []string) ([]domain.PageID, error) {
	var out []domain.PageID
	for _, n := range names {
		p := domain.PageID(strings.ToLower(strings.TrimSpace(n)))
		if !p.Valid() {
			return nil, fmt.Errorf("unknown page %q", n)
		}
		out = append(out, p)
	}
	return out, nil
}
