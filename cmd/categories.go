package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadfilter-cli/internal/model"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List supported service types and their rule coverage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ruleSet, err := loadRuleSet(cfg)
		if err != nil {
			return err
		}

		for _, st := range model.AllServiceTypes() {
			name := string(st)
			terms := len(ruleSet.ServiceTerms(name))
			whitelist, exclude := ruleSet.SpecialPatterns(name)

			line := fmt.Sprintf("%-35s %d exclusion terms", name, terms)
			if len(whitelist) > 0 || len(exclude) > 0 {
				line += fmt.Sprintf(", %d whitelist / %d exclude patterns", len(whitelist), len(exclude))
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d universal exclusion terms apply to every service type\n",
			len(ruleSet.UniversalTerms()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
