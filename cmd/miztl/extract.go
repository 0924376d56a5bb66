package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/miztl"
	"github.com/ZaguanLabs/miztl/archive"
	"github.com/ZaguanLabs/miztl/config"
	"github.com/ZaguanLabs/miztl/processor"
)

// extraction is the output of every processor over one mission.
type extraction struct {
	names []string
	sets  map[string]*miztl.EntrySet
}

// merged returns all entries in processor order. Addresses of different
// processors never collide.
func (e *extraction) merged() *miztl.EntrySet {
	out := miztl.NewEntrySet()
	for _, name := range e.names {
		for addr, text := range e.sets[name].All() {
			out.Add(addr, text)
		}
	}
	return out
}

func extractMission(ctx context.Context, cfg *config.Config, path string) (*extraction, error) {
	idents, err := cfg.ParsedIdentifiers()
	if err != nil {
		return nil, err
	}

	m, err := archive.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer m.Close()

	procs := []miztl.EntriesProcessor{processor.NewDictionaryProcessor(), processor.NewTokenProcessor(idents...)}
	out := &extraction{sets: make(map[string]*miztl.EntrySet)}
	for _, p := range procs {
		set, err := p.Extract(ctx, m)
		if err != nil {
			return nil, err
		}
		out.names = append(out.names, p.Name())
		out.sets[p.Name()] = set
	}
	return out, nil
}

func (a *app) extractCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "extract <mission.miz>",
		Short: "List the translatable text of a mission without translating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return a.runExtract(cmd.Context(), cfg, args[0], jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

type extractEntry struct {
	Address string `json:"address"`
	Text    string `json:"text"`
}

type extractProcessor struct {
	Name     string         `json:"name"`
	Distinct int            `json:"distinct"`
	Entries  []extractEntry `json:"entries"`
}

type extractOutput struct {
	File       string             `json:"file"`
	Processors []extractProcessor `json:"processors"`
}

// readExtraction loads the output of "extract --json" back into entry sets.
func readExtraction(path string) (*extraction, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is user-provided
	if err != nil {
		return nil, err
	}
	var saved extractOutput
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("parsing extraction %s: %w", path, err)
	}

	out := &extraction{sets: make(map[string]*miztl.EntrySet)}
	for _, p := range saved.Processors {
		set := miztl.NewEntrySet()
		for _, e := range p.Entries {
			set.Add(miztl.ParseAddress(e.Address), e.Text)
		}
		out.names = append(out.names, p.Name)
		out.sets[p.Name] = set
	}
	return out, nil
}

// loadExtraction extracts a mission, or reads a saved extraction when path
// ends in .json.
func loadExtraction(ctx context.Context, cfg *config.Config, path string) (*extraction, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return readExtraction(path)
	}
	return extractMission(ctx, cfg, path)
}

func (a *app) runExtract(ctx context.Context, cfg *config.Config, path string, jsonOut bool) error {
	ex, err := extractMission(ctx, cfg, path)
	if err != nil {
		return err
	}

	if jsonOut {
		out := extractOutput{File: filepath.Base(path)}

		for _, name := range ex.names {
			set := ex.sets[name]
			ep := extractProcessor{Name: name, Distinct: len(set.Contents()), Entries: []extractEntry{}}
			for addr, text := range set.All() {
				ep.Entries = append(ep.Entries, extractEntry{Address: addr.String(), Text: text})
			}
			out.Processors = append(out.Processors, ep)
		}

		enc := json.NewEncoder(a.stdout)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(a.stdout, "Mission: %s\n", filepath.Base(path))
	for _, name := range ex.names {
		set := ex.sets[name]
		fmt.Fprintf(a.stdout, "\n%s: %d entries (%d distinct)\n", name, set.Len(), len(set.Contents()))
		for addr, text := range set.All() {
			fmt.Fprintf(a.stdout, "  %s: %q\n", addr, shorten(text, 60))
		}
	}
	return nil
}

func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
