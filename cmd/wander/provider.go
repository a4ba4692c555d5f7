package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/4thel00z/wander/internal"
	"github.com/spf13/cobra"
)

// NewProviderCmd groups the commands that edit the providers section of config.yaml.
func NewProviderCmd(svc func() *internal.ProviderService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Manage LLM providers used by explain",
		Long: `Providers are stored in the scope's config.yaml. The provider marked
as default is used by "wander explain" when --provider is not given.

Supported kinds: ` + strings.Join(internal.SupportedProviderKinds, ", "),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List configured providers",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return listProviders(cmd, svc()) },
		},
		newProviderAddCmd(svc),
		providerAction(svc, "remove <name>", "Remove a provider", "Removed provider %s\n",
			(*internal.ProviderService).Remove),
		providerAction(svc, "default <name>", "Make a provider the default", "Default provider set to %s\n",
			(*internal.ProviderService).SetDefault),
		&cobra.Command{
			Use:   "test <name>",
			Short: "Send a short prompt to check the provider answers",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				scopeHint, _ := cmd.Flags().GetString("scope")
				if err := svc().Test(cmd.Context(), args[0], scopeHint); err != nil {
					return fmt.Errorf("test provider %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Provider %s is working\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func listProviders(cmd *cobra.Command, svc *internal.ProviderService) error {
	scopeHint, _ := cmd.Flags().GetString("scope")
	asJSON, _ := cmd.Flags().GetBool("json")

	infos, err := svc.List(scopeHint)
	if err != nil {
		return fmt.Errorf("list providers: %w", err)
	}
	if asJSON {
		return encodeJSON(cmd, infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No providers configured.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, p := range infos {
		marker := " "
		if p.Default {
			marker = "*"
		}
		model := p.Model
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\n", marker, p.Name, p.Kind, model)
	}
	return tw.Flush()
}

func newProviderAddCmd(svc func() *internal.ProviderService) *cobra.Command {
	var pc internal.ProviderConfig

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or replace a provider",
		Example: `  wander provider add local --kind openai --base-url http://localhost:11434/v1 --model llama3
  wander provider add anthropic --api-key $ANTHROPIC_API_KEY --model claude-sonnet-4-5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			if err := svc().Add(args[0], pc, scopeHint); err != nil {
				return fmt.Errorf("add provider %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added provider %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&pc.Kind, "kind", "", "backend kind (defaults to the provider name)")
	cmd.Flags().StringVar(&pc.APIKey, "api-key", "", "API key")
	cmd.Flags().StringVar(&pc.BaseURL, "base-url", "", "override the backend's base URL")
	cmd.Flags().StringVar(&pc.Model, "model", "", "model name")
	return cmd
}

// providerAction builds a single-argument command around a ProviderService method.
func providerAction(
	svc func() *internal.ProviderService,
	use, short, done string,
	action func(*internal.ProviderService, string, string) error,
) *cobra.Command {
	verb := strings.Fields(use)[0]
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			if err := action(svc(), args[0], scopeHint); err != nil {
				return fmt.Errorf("%s provider %s: %w", verb, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), done, args[0])
			return nil
		},
	}
}
