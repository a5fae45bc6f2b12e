package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/isomorph/app"
	"github.com/vango-dev/isomorph/internal/errors"
	"github.com/vango-dev/isomorph/pkg/hydrate"
	"github.com/vango-dev/isomorph/pkg/router"
)

func checkCmd(flags *globalFlags) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Verify that pages hydrate without mismatches",
		Long: `Render each path on the server, then resume the document the way a
browser would: restore the embedded state, render the matched routes
again and compare the result with the server markup node by node.

Without arguments every static route pattern is checked.

Examples:
  isomorph check
  isomorph check / /login`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, flags, o, args)
		},
	}

	cmd.Flags().StringVar(&o.upstream, "upstream", "", "Data API base URL")
	return cmd
}

func runCheck(cmd *cobra.Command, flags *globalFlags, o overrides, paths []string) error {
	cfg, err := loadConfig(flags, o)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	ctx := context.Background()
	a, err := buildApp(ctx, cfg, false, nil, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(paths) == 0 {
		paths = staticPaths(a.Tree())
	}

	w := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		page, err := a.Pipeline().Render(ctx, path)
		if err != nil {
			return fmt.Errorf("render %s: %w", path, err)
		}

		root, err := hydrate.Resume(ctx, page.HTML, a.Tree(), path, hydrate.Options{
			Reducer: app.Reducer,
			Default: app.DefaultState,
			Client:  a.Client(),
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("resume %s: %w", path, err)
		}
		mismatches := root.Mismatches
		root.Close()

		if len(mismatches) == 0 {
			success(w, "%s hydrates cleanly (%d bytes)", path, len(page.HTML))
			continue
		}
		failed++
		warn(w, "%s: %d mismatch(es)", path, len(mismatches))
		for _, m := range mismatches {
			info(w, "%s", m.String())
		}
	}

	if failed > 0 {
		return errors.New("E040").WithDetail(fmt.Sprintf("%d of %d pages did not hydrate cleanly.", failed, len(paths)))
	}
	return nil
}

// staticPaths lists the parameter-free patterns of exact or leaf routes.
func staticPaths(t *router.Tree) []string {
	var out []string
	seen := make(map[string]bool)
	t.Walk(func(n *router.RouteNode, _ int) {
		if !n.Exact && len(n.Routes) > 0 {
			return
		}
		if strings.ContainsAny(n.Path, ":*") || seen[n.Path] {
			return
		}
		seen[n.Path] = true
		out = append(out, n.Path)
	})
	return out
}
