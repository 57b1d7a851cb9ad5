package main

import (
	"fmt"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/spf13/cobra"
)

type stepLine struct {
	Index       int      `json:"index" yaml:"index"`
	Name        string   `json:"name" yaml:"name"`
	Title       string   `json:"title" yaml:"title"`
	Forms       []string `json:"forms,omitempty" yaml:"forms,omitempty"`
	Collections []string `json:"collections,omitempty" yaml:"collections,omitempty"`
	Assets      bool     `json:"assets,omitempty" yaml:"assets,omitempty"`
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the wizard steps in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defs := intake.AgriCredSteps(time.Now().Year())
		lines := make([]stepLine, len(defs))
		for i, def := range defs {
			line := stepLine{Index: i, Name: def.Name, Title: def.Title, Assets: def.Assets != nil}
			for _, f := range def.Forms {
				line.Forms = append(line.Forms, f.Name)
			}
			for _, c := range def.Collections {
				line.Collections = append(line.Collections, c.Schema.Name)
			}
			lines[i] = line
		}
		return render(cmd.OutOrStdout(), lines)
	},
}

var schemaYear int

var schemaCmd = &cobra.Command{
	Use:   "schema [step]",
	Short: "Print the field schemas of one step or of all steps",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs := intake.AgriCredSteps(schemaYear)
		if len(args) == 0 {
			return render(cmd.OutOrStdout(), defs)
		}
		for _, def := range defs {
			if def.Name == args[0] {
				return render(cmd.OutOrStdout(), def)
			}
		}
		return fmt.Errorf("unknown step %q", args[0])
	},
}

func init() {
	schemaCmd.Flags().IntVar(&schemaYear, "year", time.Now().Year(), "default for year fields")
}
