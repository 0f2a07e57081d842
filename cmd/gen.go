package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cottand/recpat/fixture"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var GenCmd = &cobra.Command{
	Use:          "gen fixture.yaml",
	Short:        "Generate Go dispatch functions for the switches of a fixture",
	RunE:         runGen,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	genOutPath *string
	genPackage *string
)

func init() {
	genOutPath = GenCmd.Flags().StringP("out", "o", "", "output file, stdout when empty")
	genPackage = GenCmd.Flags().StringP("package", "p", "main", "package of the generated file")
}

func generate(ctx context.Context, target, pkg string) (*fixture.Fixture, []fixture.Result, []byte, error) {
	f, err := loadFixture(target)
	if err != nil {
		return nil, nil, nil, err
	}
	results, err := fixture.Run(ctx, f, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	src, err := f.Generate(pkg, results)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "could not generate code for %s", target)
	}
	return f, results, src, nil
}

func runGen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, _, src, err := generate(ctx, args[0], *genPackage)
	if err != nil {
		return err
	}
	if *genOutPath == "" {
		_, err = cmd.OutOrStdout().Write(src)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*genOutPath), os.ModePerm); err != nil {
		return errors.Wrap(err, "could not create output directory")
	}
	if err := os.WriteFile(*genOutPath, src, 0o644); err != nil {
		return errors.Wrap(err, "could not write generated code")
	}
	logger.Info("generated dispatch code", "fixture", args[0], "out", *genOutPath)
	return nil
}
