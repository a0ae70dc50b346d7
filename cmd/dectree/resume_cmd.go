package main

import (
	"context"
	"fmt"
	"os"

	dectree "github.com/dilo00o/spark-dectree"
	"github.com/spf13/cobra"
)

type resumeCmdConfig struct {
	*rootCmdConfig
	dataInputConfig
	modelInput string
	output     string
	strategy   string
	useCache   bool
}

func resumeCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &resumeCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Resume the build of an incomplete tree",
		Long:  `Load a previously saved, possibly incomplete model and re-enter the growth loop on its open nodes using the given training data. Already-decided nodes are not re-derived.`,
		Run: func(cmd *cobra.Command, args []string) {
			if config.modelInput == "" {
				fmt.Fprintln(os.Stderr, "required model flag was not set")
				os.Exit(1)
			}
			ctx := context.Background()
			eng := config.engine()
			data, err := config.dataset(ctx, eng, &config.dataInputConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			strategy, err := splittingStrategy(config.strategy)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			store, key, err := modelStore(config.modelInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			grower := dectree.NewGrower(strategy)
			grower.SetLogger(config.rootCmdConfig)
			grower.SetCache(config.useCache)
			grower.SetCheckpoint(store, key)
			model, err := grower.Resume(ctx, data, store, key)
			if err != nil {
				fmt.Fprintf(os.Stderr, "resuming the build: %v\n", err)
				os.Exit(5)
			}
			config.Logf("Done")
			config.Logf("%v", model)
			output := config.output
			if output == "" {
				output = config.modelInput
			}
			outStore, outKey, err := modelStore(output)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			err = outStore.Save(ctx, outKey, model)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a delimited text file, a SQLite3 (.db) file, or a PostgreSQL/MongoDB connection URL with the training data (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.modelInput), "model", "m", "", "path or redis:// URL of the saved model to resume (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path or redis:// URL to save the completed model to (defaults to the model flag)")
	cmd.PersistentFlags().StringVarP(&(config.delimiter), "delimiter", "d", ",", "single-character delimiter separating the fields of a record")
	cmd.PersistentFlags().StringVar(&(config.strategy), "strategy", "id3", "splitting strategy to keep growing with, one of: id3, cart")
	cmd.PersistentFlags().BoolVar(&(config.useCache), "cache", false, "pin the training dataset on the engine for the duration of the build")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "", "table or collection to read records from on database inputs")
	cmd.PersistentFlags().StringVar(&(config.columns), "columns", "", "comma-separated column names to read on database inputs")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}
