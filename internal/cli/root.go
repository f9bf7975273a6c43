/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package cli is the scriptable command line host of the builder.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
	"pagebuilder/internal/config"
	"pagebuilder/internal/crash"
	"pagebuilder/internal/domain"
	applog "pagebuilder/internal/log"
)

// Globals holds persistent flags and the resolved configuration.
type Globals struct {
	DataDir   string
	BackupDir string
	Page      string

	cfg config.AppConfig
}

func NewRootCmd() *cobra.Command {
	g := &Globals{}

	cmd := &cobra.Command{
		Use:          "pagebuilder",
		Short:        "Local-first page builder: edit, persist and export a five-page site",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Show every page and its elements
  pagebuilder show

  # Add a text box to the "sobre" page and move it
  pagebuilder --page sobre add-text "Quem somos"
  pagebuilder --page sobre move 40 0 <id>

  # Export for another machine, then import there
  pagebuilder export ~/Desktop
  pagebuilder import ~/Desktop/utopia-urbana-2025-01-31.json
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		if s := strings.TrimSpace(g.DataDir); s != "" {
			cfg.Storage.DataDir = s
		}
		if s := strings.TrimSpace(g.BackupDir); s != "" {
			cfg.Storage.BackupDir = s
		}
		applog.Init(applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
			Writer:    cmd.ErrOrStderr(),
		})
		g.cfg = cfg
		return nil
	}

	cmd.PersistentFlags().StringVar(&g.DataDir, "data-dir", "", "Directory of the primary store (overrides config and "+config.EnvDataDir+")")
	cmd.PersistentFlags().StringVar(&g.BackupDir, "backup-dir", "", "Directory of the emergency backup (overrides config and "+config.EnvBackupDir+")")
	cmd.PersistentFlags().StringVar(&g.Page, "page", string(domain.PageHome), "Page to act on (home|sobre|utopia|contribua|mapa)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newShowCmd(g))
	cmd.AddCommand(newAddTextCmd(g))
	cmd.AddCommand(newAddMediaCmd(g, domain.ElementImage))
	cmd.AddCommand(newAddMediaCmd(g, domain.ElementVideo))
	cmd.AddCommand(newMoveCmd(g))
	cmd.AddCommand(newResizeCmd(g))
	cmd.AddCommand(newRotateCmd(g))
	cmd.AddCommand(newDeleteCmd(g))
	cmd.AddCommand(newBackgroundCmd(g))
	cmd.AddCommand(newLinkCmd(g))
	cmd.AddCommand(newZIndexCmd(g))
	cmd.AddCommand(newTextCmd(g))
	cmd.AddCommand(newFontSizeCmd(g))
	cmd.AddCommand(newSelectCmd(g))
	cmd.AddCommand(newFollowCmd(g))
	cmd.AddCommand(newExportCmd(g))
	cmd.AddCommand(newImportCmd(g))
	cmd.AddCommand(newPDFCmd(g))
	cmd.AddCommand(newPNGCmd(g))
	cmd.AddCommand(newUndoDemoCmd(g))

	return cmd
}

func (g *Globals) page() (domain.PageID, error) {
	p := domain.PageID(strings.ToLower(strings.TrimSpace(g.Page)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown page %q", g.Page)
	}
	return p, nil
}

// withApp opens the builder, runs fn and closes it, which writes any pending change.
// A panic inside fn is turned into a crash report plus an emergency copy.
func withApp(cmd *cobra.Command, g *Globals, fn func(a *app.App, page domain.PageID) error) error {
	page, err := g.page()
	if err != nil {
		return writeErr(cmd, err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Open(ctx, g.cfg, app.Options{Router: printRouter{w: cmd.OutOrStdout()}})
	if err != nil {
		return writeErr(cmd, err)
	}
	defer crash.Recover(a.CrashTarget())

	runErr := fn(a, page)
	if cerr := a.Close(ctx); cerr != nil {
		return writeErr(cmd, errors.Join(runErr, fmt.Errorf("save: %w", cerr)))
	}
	if a.Status().Skipped {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: refusing to replace a populated project with an empty one; the saved copy was kept")
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	return nil
}

// printRouter reports navigation on the command output instead of switching views.
type printRouter struct{ w io.Writer }

func (r printRouter) Navigate(page domain.PageID) {
	_, _ = fmt.Fprintf(r.w, "navigate %s\n", page)
}

func (r printRouter) OpenExternal(url string) {
	_, _ = fmt.Fprintf(r.w, "open %s\n", url)
}

func parseFloats(args ...string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func writeErr(cmd *cobra.Command, err error) error {
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
