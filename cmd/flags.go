package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cottand/recpat/fixture"
	"github.com/cottand/recpat/internal/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logger = log.DefaultLogger.With("section", "cmd")

var (
	logLevel    *int
	logSections *string
)

// AddLogFlags registers the logging flags shared by every subcommand on root
func AddLogFlags(root *cobra.Command) {
	logLevel = root.PersistentFlags().IntP("log-level", "l", int(slog.LevelWarn), "log level")
	logSections = root.PersistentFlags().String("log-sections", "", "comma-separated sections to log at debug level, * for all")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		configureLogging()
	}
}

func configureLogging() {
	if logLevel != nil {
		log.SetLevel(slog.Level(*logLevel))
	}
	if logSections != nil && *logSections != "" {
		log.EnableSections(strings.Split(*logSections, ",")...)
	}
}

// loadFixture loads the fixture file at target
func loadFixture(target string) (*fixture.Fixture, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, errors.Wrap(err, "could not get absolute path of target")
	}
	stat, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(err, "could not stat target")
	}
	if stat.IsDir() {
		return nil, errors.Errorf("%s is a directory, expected a fixture file", target)
	}
	return fixture.Load(os.DirFS(filepath.Dir(abs)), filepath.Base(abs))
}
