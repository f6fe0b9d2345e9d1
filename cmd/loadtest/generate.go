package main

import (
	"github.com/spf13/cobra"

	"github.com/okian/skillmatch/internal/loadtest"
)

var genCfg loadtest.GenerateConfig

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fixture of synthetic users and skills",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := loadtest.Generate(cmd.Context(), genCfg)
		if err != nil {
			return err
		}
		return loadtest.WriteFixture(cmd.Context(), genCfg.Output, f)
	},
}

func init() {
	generateCmd.Flags().IntVar(&genCfg.Users, "users", 1000, "number of users to generate")
	generateCmd.Flags().IntVar(&genCfg.MaxSkills, "max-skills", 4, "maximum skills per direction")
	generateCmd.Flags().Uint64Var(&genCfg.Seed, "seed", 42, "profile generator seed")
	generateCmd.Flags().StringVarP(&genCfg.Output, "output", "o", "fixture.json", "fixture file")
}
