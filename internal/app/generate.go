package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/filelistgen/internal/config"
	"github.com/blackwell-systems/filelistgen/internal/filelist"
	"github.com/blackwell-systems/filelistgen/internal/jobdir"
	"github.com/blackwell-systems/filelistgen/internal/logging"
	"github.com/blackwell-systems/filelistgen/internal/output"
	"github.com/blackwell-systems/filelistgen/internal/store"
)

func runGenerate(flags *globalFlags, projectPath, jobPath string, stdout, stderr io.Writer) error {
	if _, err := os.Stat(projectPath); err != nil {
		if os.IsNotExist(err) {
			return &MissingProjectError{Path: projectPath}
		}
		return fmt.Errorf("checking project path: %w", err)
	}

	cfg, err := config.Load(flags.config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyColor(flags, cfg)

	logger, closer, err := logging.New(logging.Options{
		Verbose: flags.verbose,
		Stderr:  stderr,
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
	})
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer func() { _ = closer.Close() }()

	run := store.Run{
		RunID:       uuid.NewString(),
		StartedAt:   time.Now(),
		ProjectPath: projectPath,
		JobPath:     jobPath,
	}
	logger = logger.With("run_id", run.RunID)
	logger.Info("generate", "project", projectPath, "job", jobPath)

	if err := os.MkdirAll(jobPath, 0o755); err != nil {
		return fmt.Errorf("creating job directory: %w", err)
	}

	res, genErr := generate(cfg, logger, projectPath, jobPath, stderr)
	if genErr != nil {
		run.Status = store.StatusFailed
		run.Error = genErr.Error()
		logger.Error("generation failed", "err", genErr)
	} else {
		run.Status = store.StatusOK
		m := res.Metadata
		run.SrcCount = len(m.SrcFiles)
		run.TbCount = len(m.TbFiles)
		run.IncludeCount = len(m.IncludeFiles)
		run.IncludeDirCount = len(m.IncludeDirs)
		run.TotalFiles = m.TotalFiles
	}

	if cfg.History.Enabled || flags.record {
		recordRun(cfg.History.DBPath, &run, logger)
	}

	if genErr != nil {
		return &GenerationError{Err: genErr}
	}

	if flags.json {
		data, err := filelist.EncodeMetadata(&res.Metadata)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	for _, line := range filelist.Summary(&res.Metadata) {
		_, _ = fmt.Fprintln(stdout, line)
	}
	_, _ = fmt.Fprintf(stdout, "%s %s\n", output.StyleSuccess.Render("Successfully generated:"), res.FilelistPath)
	return nil
}

// generate runs one scan, holding the job directory lock when it can be
// taken. Locking is best-effort: an unusable lock directory is logged and
// the scan proceeds unlocked.
func generate(cfg *config.Config, logger *slog.Logger, projectPath, jobPath string, stderr io.Writer) (*filelist.Result, error) {
	lock := lockJob(cfg.LockDir, jobPath, logger, stderr)
	if lock != nil {
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("releasing job lock", "err", err)
			}
		}()
	}

	gen := filelist.NewGenerator(cfg.Layout.FilelistLayout(), logger)
	return gen.Generate(filelist.Request{ProjectPath: projectPath, JobPath: jobPath})
}

// lockJob takes the job lock, waiting with a notice on stderr if another
// run holds it. It returns nil when locking is unavailable.
func lockJob(lockDir, jobPath string, logger *slog.Logger, stderr io.Writer) *jobdir.Lock {
	if lockDir == "" {
		return nil
	}
	lock, err := jobdir.TryAcquire(lockDir, jobPath)
	if err != nil {
		logger.Warn("job lock unavailable, continuing unlocked", "err", err)
		return nil
	}
	if lock == nil {
		_, _ = fmt.Fprintf(stderr, "waiting for another run on %s\n", jobPath)
		lock, err = jobdir.Acquire(lockDir, jobPath)
		if err != nil {
			logger.Warn("job lock unavailable, continuing unlocked", "err", err)
			return nil
		}
	}
	logger.Debug("job lock held", "lock", lock.Path())
	return lock
}

// recordRun appends run to the history database. Failures are logged only;
// history never changes the outcome of a generation.
func recordRun(dbPath string, run *store.Run, logger *slog.Logger) {
	db, err := store.Open(dbPath)
	if err != nil {
		logger.Warn("opening history database", "path", dbPath, "err", err)
		return
	}
	defer func() { _ = db.Close() }()

	if _, err := db.InsertRun(run); err != nil {
		logger.Warn("recording run", "err", err)
	}
}

// applyColor turns styling off for --no-color, a config opt-out, or a
// non-terminal stdout.
func applyColor(flags *globalFlags, cfg *config.Config) {
	if flags.noColor || !cfg.Output.Color || !output.StdoutIsTerminal() {
		output.SetNoColor(true)
	}
}
