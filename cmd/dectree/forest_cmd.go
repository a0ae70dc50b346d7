package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	dectree "github.com/dilo00o/spark-dectree"
	treejson "github.com/dilo00o/spark-dectree/tree/json"
	"github.com/spf13/cobra"
)

type forestCmdConfig struct {
	*rootCmdConfig
	dataInputConfig
	output        string
	yFeature      string
	xFeatures     string
	strategy      string
	trees         int
	seed          int64
	bootstrap     bool
	minSplit      int
	cvThreshold   float64
	maxDepth      int
	maxComplexity float64
}

func forestCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &forestCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "forest",
		Short: "Grow a random forest from a dataset",
		Long:  `Grow a forest of decision trees from a dataset of delimited records, each tree on an independent bootstrap sample, and save the member trees as a JSON array.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			eng := config.engine()
			data, err := config.dataset(ctx, eng, &config.dataInputConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			if _, err = splittingStrategy(config.strategy); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			forestGrower := dectree.NewForestGrower(config.grower)
			forestGrower.SetLogger(config.rootCmdConfig)
			forestGrower.SetTrainingData(data)
			forestGrower.SetTreeCount(config.trees)
			forestGrower.SetBootstrap(config.bootstrap)
			forestGrower.SetSeed(config.seed)
			config.Logf("Growing a forest of %d trees...", config.trees)
			forest, err := forestGrower.Grow(ctx, config.yFeature, config.predictors())
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the forest: %v\n", err)
				os.Exit(4)
			}
			config.Logf("Done, %d trees grown", len(forest.Trees))
			f, err := os.Create(config.output)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			defer f.Close()
			err = treejson.WriteModels(ctx, forest.Trees, f)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a delimited text file, a SQLite3 (.db) file, or a PostgreSQL/MongoDB connection URL with the training data (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "forest.json", "path the grown forest will be saved to as a JSON array of models")
	cmd.PersistentFlags().StringVarP(&(config.delimiter), "delimiter", "d", ",", "single-character delimiter separating the fields of a record")
	cmd.PersistentFlags().StringVarP(&(config.yFeature), "target", "c", "", "name of the feature the forest should predict (defaults to the last feature)")
	cmd.PersistentFlags().StringVarP(&(config.xFeatures), "predictors", "x", "", "comma-separated names of the features to branch on (defaults to all features except the target)")
	cmd.PersistentFlags().StringVar(&(config.strategy), "strategy", "id3", "splitting strategy the member trees grow with, one of: id3, cart")
	cmd.PersistentFlags().IntVarP(&(config.trees), "trees", "t", 10, "number of member trees to grow")
	cmd.PersistentFlags().Int64Var(&(config.seed), "seed", 0, "seed the bootstrap samples are drawn from, for reproducible forests")
	cmd.PersistentFlags().BoolVar(&(config.bootstrap), "bootstrap", true, "draw an independent bootstrap sample per tree (disable to train every tree on the full dataset)")
	cmd.PersistentFlags().IntVar(&(config.minSplit), "minsplit", 1, "record count at or under which a node becomes a leaf")
	cmd.PersistentFlags().Float64Var(&(config.cvThreshold), "threshold", 0, "target coefficient of variation (impurity for categorical targets) under which a node becomes a leaf")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", 0, "depth at which nodes become leaves (0 for no cap)")
	cmd.PersistentFlags().Float64Var(&(config.maxComplexity), "max-complexity", 0, "minimum impurity reduction a split must achieve")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "", "table or collection to read records from on database inputs")
	cmd.PersistentFlags().StringVar(&(config.columns), "columns", "", "comma-separated column names to read on database inputs")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

// grower is the factory handed to the forest grower; the strategy name
// is validated once before growing starts.
func (fcc *forestCmdConfig) grower() *dectree.Grower {
	strategy, _ := splittingStrategy(fcc.strategy)
	grower := dectree.NewGrower(strategy)
	grower.SetLogger(fcc.rootCmdConfig)
	grower.SetParameters(dectree.Parameters{
		MinSplit:      fcc.minSplit,
		CVThreshold:   fcc.cvThreshold,
		MaxDepth:      fcc.maxDepth,
		MaxComplexity: fcc.maxComplexity,
		Delimiter:     fcc.delimiter,
	})
	return grower
}

func (fcc *forestCmdConfig) predictors() []string {
	if fcc.xFeatures == "" {
		return nil
	}
	return strings.Split(fcc.xFeatures, ",")
}
