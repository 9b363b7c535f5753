package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/skintellect/storefront/internal/catalog"
	"github.com/skintellect/storefront/internal/gatewayclient"
	"github.com/skintellect/storefront/internal/model"
)

// remote bundles what the gateway-backed commands need.
type remote struct {
	catalog *catalog.Catalog
	client  *gatewayclient.Client
}

func newRemote(rootOpts *RootOptions, url string) (*remote, error) {
	cfg, err := LoadConfig(rootOpts.EnvFile)
	if err != nil {
		return nil, err
	}
	if url != "" {
		cfg.Gateway.URL = url
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load catalog", err)
	}
	return &remote{catalog: cat, client: gatewayclient.New(cfg.Gateway)}, nil
}

func (r *remote) product(id string) (model.Product, error) {
	p, ok := r.catalog.Get(id)
	if !ok {
		return model.Product{}, NewExitError(ExitCommandError, fmt.Sprintf("unknown product %q", id))
	}
	return p, nil
}

func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "compare <source-id> <target-id>",
		Short: "Ask the AI gateway to compare two catalog products",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRemote(rootOpts, url)
			if err != nil {
				return err
			}
			source, err := r.product(args[0])
			if err != nil {
				return err
			}
			target, err := r.product(args[1])
			if err != nil {
				return err
			}

			analysis, err := r.client.Compare(cmd.Context(), source, target)
			if err != nil {
				return WrapExitError(ExitFailure, "compare", err)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), analysis)
			}
			return printAnalysis(cmd.OutOrStdout(), source, target, analysis)
		},
	}

	cmd.Flags().StringVar(&url, "gateway", "", "gateway API root (overrides GATEWAY_URL)")
	return cmd
}

func printAnalysis(w io.Writer, source, target model.Product, a *model.AIAnalysis) error {
	_, err := fmt.Fprintf(w, "%s %s  vs  %s %s\n\nMatch score: %.0f%%\nVerdict:     %s\n\n%s\n\n%s\n",
		source.Brand, source.Name, target.Brand, target.Name,
		a.MatchScore, a.Verdict, a.Summary, a.PriceAnalysis)
	if err != nil {
		return err
	}
	for _, ing := range a.KeyIngredients {
		marker := " "
		if ing.IsKeyActive {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "  %s %s: %s\n", marker, ing.Name, ing.Benefit); err != nil {
			return err
		}
	}
	return nil
}

func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		url   string
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "audit <product-id>",
		Short: "Request an ingredient safety report for a catalog product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRemote(rootOpts, url)
			if err != nil {
				return err
			}
			p, err := r.product(args[0])
			if err != nil {
				return err
			}

			report, err := r.client.SafetyReport(cmd.Context(), p.Ingredients)
			if err != nil {
				return WrapExitError(ExitFailure, "safety audit", err)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), model.SafetyReport{Report: report})
			}
			return renderMarkdown(cmd.OutOrStdout(), report, plain)
		},
	}

	cmd.Flags().StringVar(&url, "gateway", "", "gateway API root (overrides GATEWAY_URL)")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the raw markdown report")
	return cmd
}

// renderMarkdown styles a report for the terminal, falling back to the raw text.
func renderMarkdown(w io.Writer, md string, plain bool) error {
	if !plain {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			if out, err := renderer.Render(md); err == nil {
				_, err = io.WriteString(w, out)
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, md)
	return err
}

func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the AI gateway is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRemote(rootOpts, url)
			if err != nil {
				return err
			}
			h, err := r.client.Health(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "health", err)
			}
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), h)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", h.Status, h.Timestamp.Format("2006-01-02 15:04:05 MST"))
			return err
		},
	}

	cmd.Flags().StringVar(&url, "gateway", "", "gateway API root (overrides GATEWAY_URL)")
	return cmd
}
