package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/miztl"
	"github.com/ZaguanLabs/miztl/config"
)

func (a *app) diffCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "diff <old.miz|old.json> <new.miz|new.json>",
		Short: "Show which text changed between two revisions of a mission",
		Long: `Show which text changed between two revisions of a mission.

Either side may be a file written by "miztl extract --json" instead of a
mission archive.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return a.runDiff(cmd.Context(), cfg, args[0], args[1], jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

type diffModified struct {
	Address string `json:"address"`
	Old     string `json:"old"`
	New     string `json:"new"`
}

type diffOutput struct {
	OldFile string `json:"old_file"`
	NewFile string `json:"new_file"`
	Stats   struct {
		Added     int `json:"added"`
		Removed   int `json:"removed"`
		Modified  int `json:"modified"`
		Unchanged int `json:"unchanged"`
	} `json:"stats"`
	NeedsTranslation []string       `json:"needs_translation"`
	Added            []extractEntry `json:"added,omitempty"`
	Removed          []extractEntry `json:"removed,omitempty"`
	Modified         []diffModified `json:"modified,omitempty"`
}

func (a *app) runDiff(ctx context.Context, cfg *config.Config, oldPath, newPath string, jsonOut bool) error {
	oldEx, err := loadExtraction(ctx, cfg, oldPath)
	if err != nil {
		return err
	}
	newEx, err := loadExtraction(ctx, cfg, newPath)
	if err != nil {
		return err
	}

	diff := miztl.DiffEntries(oldEx.merged(), newEx.merged())
	stats := diff.Stats()

	if jsonOut {
		out := diffOutput{
			OldFile:          filepath.Base(oldPath),
			NewFile:          filepath.Base(newPath),
			NeedsTranslation: diff.NeedsTranslation(),
		}
		if out.NeedsTranslation == nil {
			out.NeedsTranslation = []string{}
		}
		out.Stats.Added = stats.Added
		out.Stats.Removed = stats.Removed
		out.Stats.Modified = stats.Modified
		out.Stats.Unchanged = stats.Unchanged
		for _, e := range diff.Added {
			out.Added = append(out.Added, extractEntry{Address: e.Address.String(), Text: e.Text})
		}
		for _, e := range diff.Removed {
			out.Removed = append(out.Removed, extractEntry{Address: e.Address.String(), Text: e.Text})
		}
		for _, m := range diff.Modified {
			out.Modified = append(out.Modified, diffModified{Address: m.Address.String(), Old: m.Old, New: m.New})
		}

		enc := json.NewEncoder(a.stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(a.stdout, "Diff: %s vs %s\n\n", filepath.Base(oldPath), filepath.Base(newPath))
	fmt.Fprintf(a.stdout, "Summary:\n")
	fmt.Fprintf(a.stdout, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(a.stdout, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(a.stdout, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(a.stdout, "  Modified:  %d\n", stats.Modified)
	fmt.Fprintf(a.stdout, "\n")

	if !diff.HasChanges() {
		fmt.Fprintf(a.stdout, "No changes detected. All translations are up to date.\n")
		return nil
	}

	fmt.Fprintf(a.stdout, "Needs translation: %d strings\n\n", len(diff.NeedsTranslation()))

	if len(diff.Added) > 0 {
		fmt.Fprintf(a.stdout, "Added:\n")
		for _, e := range diff.Added {
			fmt.Fprintf(a.stdout, "  + %s: %q\n", e.Address, shorten(e.Text, 50))
		}
		fmt.Fprintf(a.stdout, "\n")
	}

	if len(diff.Modified) > 0 {
		fmt.Fprintf(a.stdout, "Modified:\n")
		for _, m := range diff.Modified {
			fmt.Fprintf(a.stdout, "  ~ %s: %q -> %q\n", m.Address, shorten(m.Old, 30), shorten(m.New, 30))
		}
		fmt.Fprintf(a.stdout, "\n")
	}

	if len(diff.Removed) > 0 {
		fmt.Fprintf(a.stdout, "Removed:\n")
		for _, e := range diff.Removed {
			fmt.Fprintf(a.stdout, "  - %s: %q\n", e.Address, shorten(e.Text, 50))
		}
		fmt.Fprintf(a.stdout, "\n")
	}

	return nil
}
