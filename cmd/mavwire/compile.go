package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DanWilson00/mavwire/dialect"
)

var (
	compileOutput string
	compilePretty bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <definition.xml>",
	Short: "Compile XML definitions into a JSON document",
	Long: `Compile resolves includes, reorders fields into wire order, assigns
offsets and integrity bytes, and emits the result as a JSON document
that can be loaded without the XML sources.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver, name := dialect.FileResolver(args[0])
		c := dialect.NewCompiler(resolver)
		d, err := c.Compile(cmd.Context(), name)
		if err != nil {
			return err
		}
		for _, diag := range c.Diagnostics() {
			fmt.Fprintf(os.Stderr, "warning: %v\n", diag)
		}

		data, err := dialect.NewDocument(d).Marshal(compilePretty)
		if err != nil {
			return err
		}

		if compileOutput == "" || compileOutput == "-" {
			_, err := os.Stdout.Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(compileOutput, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Compiled %s: %d messages, %d enums -> %s\n",
			d.Name, len(d.Messages), len(d.Enums), compileOutput)
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: stdout)")
	compileCmd.Flags().BoolVar(&compilePretty, "pretty", false, "indent the JSON output")
}
