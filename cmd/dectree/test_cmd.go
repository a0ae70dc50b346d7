package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dilo00o/spark-dectree/tree"
	"github.com/spf13/cobra"
)

type testCmdConfig struct {
	*rootCmdConfig
	dataInputConfig
	modelInput string
	ignore     string
}

func testCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &testCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Measure the success rate of a model on a dataset",
		Long:  `Predict the target feature for every record of a labelled dataset with a saved model and report how many predictions match the recorded value.`,
		Run: func(cmd *cobra.Command, args []string) {
			if config.modelInput == "" {
				fmt.Fprintln(os.Stderr, "required model flag was not set")
				os.Exit(1)
			}
			ctx := context.Background()
			store, key, err := modelStore(config.modelInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			model, err := store.Load(ctx, key)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			eng := config.engine()
			data, err := config.dataset(ctx, eng, &config.dataInputConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			ignore, err := ignoredBranches(config.ignore)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			records, err := data.Collect(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "collecting test records: %v\n", err)
				os.Exit(6)
			}
			delimiter := config.delimiter
			if delimiter == "" {
				delimiter = model.Delimiter
			}
			var hits, unknown int
			for _, record := range records {
				fields := strings.Split(record, delimiter)
				prediction := model.PredictRecord(fields, ignore)
				if prediction == tree.Unknown {
					unknown++
					continue
				}
				if model.YIndex < len(fields) && prediction == fields[model.YIndex] {
					hits++
				}
			}
			total := len(records)
			if total == 0 {
				fmt.Fprintln(os.Stderr, "test dataset is empty")
				os.Exit(7)
			}
			fmt.Printf("%d/%d records predicted correctly (%.2f%% success rate), %d predictions unknown\n",
				hits, total, 100*float64(hits)/float64(total), unknown)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a delimited text file, a SQLite3 (.db) file, or a PostgreSQL/MongoDB connection URL with the labelled test data (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.modelInput), "model", "m", "", "path or redis:// URL of the saved model to test (required)")
	cmd.PersistentFlags().StringVarP(&(config.delimiter), "delimiter", "d", "", "single-character delimiter separating the fields of a record (defaults to the model's)")
	cmd.PersistentFlags().StringVar(&(config.ignore), "ignore-branches", "", "comma-separated node IDs whose branches are treated as absent, to evaluate partial or pruned trees")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "", "table or collection to read records from on database inputs")
	cmd.PersistentFlags().StringVar(&(config.columns), "columns", "", "comma-separated column names to read on database inputs")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}
