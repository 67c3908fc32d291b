package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var includeWarnings bool
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyzes one storefront and prints the profile and report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			res, err := appInstance.Analyzer().Analyze(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("analyze %s: %w", args[0], err)
			}

			out := map[string]any{
				"data":     res.Profile,
				"analysis": res.Report,
			}
			if includeWarnings {
				warnings := make([]string, 0, len(res.Warnings))
				for _, w := range res.Warnings {
					warnings = append(warnings, w.Error())
				}
				out["warnings"] = warnings
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().BoolVar(&includeWarnings, "warnings", false, "include partial extraction warnings in the output")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <url>",
		Short: "Reports whether a URL is a Shopify storefront",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			valid, err := appInstance.Analyzer().Validate(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("validate %s: %w", args[0], err)
			}
			return writeJSON(cmd, map[string]any{
				"is_valid_shopify_store": valid,
				"website_url":            args[0],
			})
		},
	}
}

func writeJSON(cmd *cobra.Command, payload any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
