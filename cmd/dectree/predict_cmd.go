package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	dectree "github.com/dilo00o/spark-dectree"
	"github.com/dilo00o/spark-dectree/tree"
	"github.com/spf13/cobra"
)

type predictCmdConfig struct {
	*rootCmdConfig
	dataInputConfig
	modelInput string
	output     string
	ignore     string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the target feature of a dataset",
		Long:  `Use a saved model to predict the target feature value for every record of a dataset, one prediction per line in record order.`,
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
			predictions, err := dectree.Predict(ctx, model, data, config.delimiter, ignore)
			if err != nil {
				fmt.Fprintf(os.Stderr, "predicting dataset: %v\n", err)
				os.Exit(6)
			}
			lines, err := predictions.Collect(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "collecting predictions: %v\n", err)
				os.Exit(7)
			}
			err = writeLines(config.output, lines)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a delimited text file, a SQLite3 (.db) file, or a PostgreSQL/MongoDB connection URL with the records to predict (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.modelInput), "model", "m", "", "path or redis:// URL of the saved model to predict with (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path the predictions will be written to, one per line (defaults to STDOUT)")
	cmd.PersistentFlags().StringVarP(&(config.delimiter), "delimiter", "d", "", "single-character delimiter separating the fields of a record (defaults to the model's)")
	cmd.PersistentFlags().StringVar(&(config.ignore), "ignore-branches", "", "comma-separated node IDs whose branches are treated as absent, to evaluate partial or pruned trees")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "", "table or collection to read records from on database inputs")
	cmd.PersistentFlags().StringVar(&(config.columns), "columns", "", "comma-separated column names to read on database inputs")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func ignoredBranches(flag string) (map[tree.ID]bool, error) {
	if flag == "" {
		return nil, nil
	}
	ignore := make(map[tree.ID]bool)
	for _, s := range strings.Split(flag, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing ignore-branches flag: %v", err)
		}
		ignore[tree.ID(id)] = true
	}
	return ignore, nil
}

func writeLines(outputPath string, lines []string) error {
	f := os.Stdout
	if outputPath != "" {
		var err error
		f, err = os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	return nil
}
