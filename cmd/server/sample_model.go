package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"smart-irrigation/internal/ml"
)

var sampleModelOut string

// sampleModelCmd writes a demo moisture-rule artifact
var sampleModelCmd = &cobra.Command{
	Use:   "sample-model",
	Short: "Write a demo model artifact",
	Long: `Write a moisture_rule model artifact that turns a sprinkler ON when its
parcel's sensor reads below a per-parcel cutoff. Useful for running the
dashboard without a trained model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ml.CreateSampleModel(sampleModelOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sample model written to %s\n", sampleModelOut)
		return nil
	},
}

func init() {
	sampleModelCmd.Flags().StringVarP(&sampleModelOut, "out", "o", "./model/irrigation_model.json", "Artifact output path")
}
