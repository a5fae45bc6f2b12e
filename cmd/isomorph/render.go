package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		o      overrides
		output string
	)

	cmd := &cobra.Command{
		Use:   "render [path]",
		Short: "Render one page to stdout",
		Long: `Render the document for a path exactly as serve would, without
starting a server. The path defaults to "/".

Examples:
  isomorph render
  isomorph render /login -o login.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			return runRender(cmd, flags, o, path, output)
		},
	}

	cmd.Flags().StringVar(&o.upstream, "upstream", "", "Data API base URL")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func runRender(cmd *cobra.Command, flags *globalFlags, o overrides, path, output string) error {
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

	page, err := a.Pipeline().Render(ctx, path)
	if err != nil {
		return err
	}

	if output == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), page.HTML)
		return err
	}
	if err := os.WriteFile(output, []byte(page.HTML), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	success(cmd.ErrOrStderr(), "Wrote %s (%d bytes, %d loaders)", output, len(page.HTML), page.Report.Awaited)
	return nil
}
