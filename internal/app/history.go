package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/blackwell-systems/filelistgen/internal/config"
	"github.com/blackwell-systems/filelistgen/internal/output"
	"github.com/blackwell-systems/filelistgen/internal/store"
)

// runHistory lists recorded runs, newest first, optionally only those for
// one job directory.
func runHistory(flags *globalFlags, stdout io.Writer) error {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyColor(flags, cfg)

	db, err := store.Open(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	runs, err := db.ListRuns(store.RunFilter{JobPath: flags.historyJob, Limit: flags.historyLimit})
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if flags.json {
		if runs == nil {
			runs = []store.Run{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	_, _ = fmt.Fprintln(stdout, output.Section("Filelist History"))
	_, _ = fmt.Fprintln(stdout)
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(stdout, output.StyleMuted.Render(" No runs recorded."))
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			output.StatusText(r.Status, r.Status == store.StatusOK),
			strconv.Itoa(r.SrcCount),
			strconv.Itoa(r.TbCount),
			strconv.Itoa(r.IncludeDirCount),
			r.JobPath,
		})
	}
	_, _ = fmt.Fprint(stdout, output.RunTable(rows))
	return nil
}
