package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	dectree "github.com/dilo00o/spark-dectree"
	featureyaml "github.com/dilo00o/spark-dectree/feature/yaml"
	"github.com/spf13/cobra"
)

type growCmdConfig struct {
	*rootCmdConfig
	dataInputConfig
	metadata      string
	output        string
	yFeature      string
	xFeatures     string
	featureNames  string
	strategy      string
	minSplit      int
	cvThreshold   float64
	maxDepth      int
	maxComplexity float64
	useCache      bool
	checkpoint    string
}

func growCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &growCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree from a dataset",
		Long:  `Grow a decision tree from a dataset of delimited records to predict a certain feature.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			eng := config.engine()
			data, err := config.dataset(ctx, eng, &config.dataInputConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			grower, err := config.grower()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			err = grower.SetTrainingData(ctx, data)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			if config.metadata != "" {
				catalog, err := featureyaml.ReadCatalogFromFile(config.metadata)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(5)
				}
				if err = grower.SetCatalog(catalog); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(5)
				}
			}
			if config.featureNames != "" {
				err = grower.Catalog().Rename(strings.Split(config.featureNames, ","))
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(5)
				}
			}
			count, err := data.Count(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "counting training records: %v\n", err)
				os.Exit(6)
			}
			config.Logf("Growing tree from a dataset with %d records and %d features...", count, grower.Catalog().Len())
			model, err := grower.Grow(ctx, config.yFeature, config.predictors())
			if err != nil {
				fmt.Fprintf(os.Stderr, "growing the tree: %v\n", err)
				os.Exit(7)
			}
			config.Logf("Done")
			config.Logf("%v", model)
			store, key, err := modelStore(config.output)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			err = store.Save(ctx, key, model)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a delimited text file, a SQLite3 (.db) file, or a PostgreSQL/MongoDB connection URL with the training data (defaults to STDIN)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "model.json", "path or redis:// URL the grown model will be saved to as JSON")
	cmd.PersistentFlags().StringVarP(&(config.delimiter), "delimiter", "d", ",", "single-character delimiter separating the fields of a record")
	cmd.PersistentFlags().StringVarP(&(config.yFeature), "target", "c", "", "name of the feature the tree should predict (defaults to the last feature)")
	cmd.PersistentFlags().StringVarP(&(config.xFeatures), "predictors", "x", "", "comma-separated names of the features to branch on (defaults to all features except the target)")
	cmd.PersistentFlags().StringVar(&(config.metadata), "metadata", "", "path to a YML file declaring the name and type of every feature, overriding the inferred schema")
	cmd.PersistentFlags().StringVar(&(config.featureNames), "names", "", "comma-separated names for all features, replacing the synthetic Column<i> names")
	cmd.PersistentFlags().StringVar(&(config.strategy), "strategy", "id3", "splitting strategy to grow with, one of: id3, cart")
	cmd.PersistentFlags().IntVar(&(config.minSplit), "minsplit", 1, "record count at or under which a node becomes a leaf")
	cmd.PersistentFlags().Float64Var(&(config.cvThreshold), "threshold", 0, "target coefficient of variation (impurity for categorical targets) under which a node becomes a leaf")
	cmd.PersistentFlags().IntVar(&(config.maxDepth), "max-depth", 0, "depth at which nodes become leaves (0 for no cap)")
	cmd.PersistentFlags().Float64Var(&(config.maxComplexity), "max-complexity", 0, "minimum impurity reduction a split must achieve")
	cmd.PersistentFlags().BoolVar(&(config.useCache), "cache", false, "pin the training dataset on the engine for the duration of the build")
	cmd.PersistentFlags().StringVar(&(config.checkpoint), "checkpoint", "", "path or redis:// URL to save the model to after every level, for later resuming")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "", "table or collection to read records from on database inputs")
	cmd.PersistentFlags().StringVar(&(config.columns), "columns", "", "comma-separated column names to read on database inputs")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (gcc *growCmdConfig) grower() (*dectree.Grower, error) {
	strategy, err := splittingStrategy(gcc.strategy)
	if err != nil {
		return nil, err
	}
	grower := dectree.NewGrower(strategy)
	grower.SetLogger(gcc.rootCmdConfig)
	grower.SetCache(gcc.useCache)
	grower.SetParameters(dectree.Parameters{
		MinSplit:      gcc.minSplit,
		CVThreshold:   gcc.cvThreshold,
		MaxDepth:      gcc.maxDepth,
		MaxComplexity: gcc.maxComplexity,
		Delimiter:     gcc.delimiter,
	})
	if gcc.checkpoint != "" {
		store, key, err := modelStore(gcc.checkpoint)
		if err != nil {
			return nil, err
		}
		grower.SetCheckpoint(store, key)
	}
	return grower, nil
}

func (gcc *growCmdConfig) predictors() []string {
	if gcc.xFeatures == "" {
		return nil
	}
	return strings.Split(gcc.xFeatures, ",")
}

func splittingStrategy(name string) (dectree.Strategy, error) {
	switch name {
	case "id3":
		return dectree.NewID3Strategy(), nil
	case "cart":
		return dectree.NewCARTStrategy(), nil
	}
	return nil, fmt.Errorf("unknown splitting strategy %s", name)
}
