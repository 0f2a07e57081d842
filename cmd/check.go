package cmd

import (
	"context"
	"io"
	"path/filepath"

	"github.com/cottand/recpat/fixture"
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check fixture.yaml...",
	Short:        "Check the switches of fixtures for exhaustiveness and dominance",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	checkJobs  *int
	checkWatch *bool
)

func init() {
	checkJobs = CheckCmd.Flags().IntP("jobs", "j", 0, "switches analyzed concurrently, 0 for GOMAXPROCS")
	checkWatch = CheckCmd.Flags().BoolP("watch", "w", false, "check again whenever a fixture changes")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	if !*checkWatch {
		return checkAll(ctx, out, args, *checkJobs)
	}
	return watch(ctx, args, func() {
		if err := checkAll(ctx, out, args, *checkJobs); err != nil {
			logger.Warn("check failed", "err", err)
		}
	})
}

func checkAll(ctx context.Context, out io.Writer, paths []string, jobs int) error {
	var failed []string
	for _, path := range paths {
		f, err := loadFixture(path)
		if err != nil {
			return err
		}
		results, err := fixture.Run(ctx, f, jobs)
		if err != nil {
			return errors.Wrapf(err, "analyzing %s", path)
		}
		if err := f.Format(out, results); err != nil {
			return err
		}
		if fixture.HasErrors(results) {
			failed = append(failed, path)
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("errors found in %v", failed)
	}
	return nil
}

// watch calls onChange once, and then whenever one of paths is written or
// replaced, until ctx is done
func watch(ctx context.Context, paths []string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "could not start watching")
	}
	defer func() { _ = w.Close() }()

	watched := set.New[string](len(paths))
	dirs := set.New[string](len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrapf(err, "could not get absolute path of %s", p)
		}
		watched.Insert(abs)
		// editors often replace files, so the directory is watched instead
		if dirs.Insert(filepath.Dir(abs)) {
			if err := w.Add(filepath.Dir(abs)); err != nil {
				return errors.Wrapf(err, "could not watch %s", p)
			}
		}
	}

	onChange()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !watched.Contains(filepath.Clean(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("fixture changed", "path", ev.Name, "op", ev.Op.String())
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
