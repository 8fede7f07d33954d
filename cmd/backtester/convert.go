package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/feed"
)

var convertCmd = &cobra.Command{
	Use:   "convert <bars.csv> <bars.parquet>",
	Short: "Convert a CSV bar file to Parquet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bars, err := feed.LoadCSV(args[0])
		if err != nil {
			return err
		}
		if err := feed.WriteParquet(args[1], bars); err != nil {
			return err
		}
		fmt.Printf("wrote %d bars to %s\n", len(bars), args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
