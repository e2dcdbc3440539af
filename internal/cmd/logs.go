package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/capstanhq/capstan/internal/config"
	"github.com/capstanhq/capstan/internal/notify"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the capstan debug log",
	Long: `Logs prints recent entries from the shared debug log. Entries are JSON
lines; each pipeline run stamps its own run_id so interleaved runs stay
separable.

Examples:
  # Show the last 50 entries
  capstan logs

  # Show everything from one run
  capstan logs --run 1b4e28ba -n 0

  # Just print where the log lives
  capstan logs --path

  # Follow new entries
  capstan logs -f`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsTail     int
	logsRunID    string
	logsPathOnly bool
	logsFollow   bool
)

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "Number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsRunID, "run", "", "Only show entries from runs whose ID starts with this prefix")
	logsCmd.Flags().BoolVar(&logsPathOnly, "path", false, "Print the log file path and exit")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow new entries (like tail -f)")
}

// logEntry is one decoded line of the JSON debug log. Attributes beyond the
// known set are rendered as key=value pairs.
type logEntry struct {
	Time  time.Time `json:"time"`
	Level string    `json:"level"`
	Msg   string    `json:"msg"`
	RunID string    `json:"run_id,omitempty"`
	Stage string    `json:"stage,omitempty"`
	Step  int       `json:"step,omitempty"`
	Extra map[string]any
}

func (e *logEntry) UnmarshalJSON(data []byte) error {
	type alias logEntry
	aux := (*alias)(e)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, known := range []string{"time", "level", "msg", "run_id", "stage", "step"} {
		delete(all, known)
	}
	if len(all) > 0 {
		e.Extra = all
	}
	return nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logPath := filepath.Join(cfg.Logging.ResolveDir(), "debug.log")
	out := cmd.OutOrStdout()

	if logsPathOnly {
		fmt.Fprintln(out, logPath)
		return nil
	}

	file, err := os.Open(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no debug log at %s (has a pipeline run logged yet?)", logPath)
		}
		return fmt.Errorf("failed to open debug log: %w", err)
	}
	defer file.Close()

	lines, err := collectLines(file, logsRunID, logsTail)
	if err != nil {
		return err
	}
	for _, entry := range lines {
		fmt.Fprintln(out, formatEntry(entry))
	}

	if logsFollow {
		return followLog(cmd, file)
	}
	return nil
}

// collectLines reads and filters the log, keeping the last tail entries
// (all of them when tail is 0).
func collectLines(r io.Reader, runPrefix string, tail int) ([]logEntry, error) {
	var entries []logEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		entry, ok := parseEntry(scanner.Bytes(), runPrefix)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read debug log: %w", err)
	}

	if tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}
	return entries, nil
}

func parseEntry(line []byte, runPrefix string) (logEntry, bool) {
	var entry logEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return entry, false
	}
	if runPrefix != "" && !strings.HasPrefix(entry.RunID, runPrefix) {
		return entry, false
	}
	return entry, true
}

// followLog polls the already-open log file for appended entries until the
// command's context is canceled.
func followLog(cmd *cobra.Command, file *os.File) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(file)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
			for {
				line, err := reader.ReadBytes('\n')
				if len(line) > 0 {
					if entry, ok := parseEntry(line, logsRunID); ok {
						fmt.Fprintln(out, formatEntry(entry))
					}
				}
				if err != nil {
					break
				}
			}
		}
	}
}

// formatEntry renders one entry on a single line.
func formatEntry(e logEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Time.Format("15:04:05"), levelStyle(e.Level).Render(fmt.Sprintf("%-5s", e.Level)))
	if e.RunID != "" {
		fmt.Fprintf(&b, " [%s]", shortRunID(e.RunID))
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " %s:", e.Stage)
	}
	fmt.Fprintf(&b, " %s", e.Msg)
	if e.Step > 0 {
		fmt.Fprintf(&b, " step=%d", e.Step)
	}
	for k, v := range e.Extra {
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	return b.String()
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func levelStyle(level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case "WARN":
		return notify.WarnStyle
	case "ERROR":
		return notify.FailStyle
	case "DEBUG":
		return notify.MutedStyle
	default:
		return notify.AccentStyle
	}
}
