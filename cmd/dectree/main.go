package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose    bool
	partitions int
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dectree",
		Short: "dectree is a tool to grow decision trees and random forests",
		Long:  `A tool to grow decision trees and random forests from partitioned delimited data, resume interrupted builds, and use the results to classify or regress unseen records`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "")
	rootCmd.PersistentFlags().IntVar(&(config.partitions), "partitions", 4, "number of partitions the engine splits datasets into")
	rootCmd.AddCommand(versionCmd(), growCmd(config), resumeCmd(config), predictCmd(config), forestCmd(config), testCmd(config))
	return rootCmd
}
