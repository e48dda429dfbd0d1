package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured source adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := initRegistry(nil)
		if err != nil {
			return err
		}
		for _, name := range reg.Names() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
