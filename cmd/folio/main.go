package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/kevinmichaelchen/folio/internal/config"
	"github.com/kevinmichaelchen/folio/internal/metrics"
	"github.com/kevinmichaelchen/folio/internal/models"
	"github.com/kevinmichaelchen/folio/internal/pipeline"
	"github.com/kevinmichaelchen/folio/internal/render"
	"github.com/kevinmichaelchen/folio/internal/server"
	"github.com/kevinmichaelchen/folio/internal/shared"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "folio",
		Short:        "GitHub repos + LLM copy → static portfolio site",
		SilenceUsage: true,
	}

	root.AddCommand(generateCmd(), serveCmd(), contrastCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var req models.Request
	var resumePath, out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a portfolio zip for a GitHub user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()
			logger := shared.NewLogger(os.Stderr, cfg.LogLevel)
			if req.APIKey == "" {
				req.APIKey = cfg.LLMAPIKey
			}

			if resumePath != "" {
				data, err := os.ReadFile(resumePath)
				if err != nil {
					return fmt.Errorf("reading resume: %w", err)
				}
				req.Resume = data
			}

			res, err := pipeline.Generate(ctx, cfg, logger, req)
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, res.Archive, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(res.Archive))
			if res.Fallback {
				fmt.Println("Note: projects could not be categorized and were grouped under \"Other\".")
			}

			printInstructions(res.Instructions)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Handle, "user", "u", "", "GitHub username")
	cmd.Flags().StringVarP(&req.Interests, "interests", "i", "", "Your interests (comma separated)")
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to your resume PDF")
	cmd.Flags().StringVarP(&req.AccentColor, "color", "c", models.DefaultAccentColor, "Accent color (#RRGGBB)")
	cmd.Flags().StringVar(&req.APIKey, "api-key", "", "LLM API key (defaults to $LLM_API_KEY)")
	cmd.Flags().StringVarP(&out, "out", "o", "portfolio.zip", "Output archive path")
	return cmd
}

func printInstructions(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		if styled, err := r.Render(md); err == nil {
			fmt.Print(styled)
			return
		}
	}
	fmt.Print(md)
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload form and return portfolio zips over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := config.Load()
			if addr == "" {
				addr = cfg.ServerAddr
			}
			logger := shared.NewLogger(os.Stderr, cfg.LogLevel)

			srv := server.New(logger, metrics.New(), func(ctx context.Context, req models.Request) (*pipeline.Result, error) {
				return pipeline.Generate(ctx, cfg, logger, req)
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to $SERVER_ADDR or :8080)")
	return cmd
}

func contrastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contrast [#RRGGBB]",
		Short: "Print the header text color chosen for an accent color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := render.ContrastColor(args[0])
			if err != nil {
				return err
			}
			fmt.Println(c)
			return nil
		},
	}
}
