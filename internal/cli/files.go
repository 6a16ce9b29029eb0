package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fleetshift/imagemgmt/internal/domain"
)

// planFile is the on-disk form of a rampup plan.
type planFile struct {
	ImageType   string      `yaml:"imageType"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Entries     []planEntry `yaml:"entries"`
}

type planEntry struct {
	Version      string `yaml:"version"`
	Percentage   int    `yaml:"percentage"`
	StabilityTag string `yaml:"stabilityTag"`
}

func (p planFile) entries() []domain.RampupEntry {
	out := make([]domain.RampupEntry, len(p.Entries))
	for i, e := range p.Entries {
		tag := domain.StabilityTag(e.StabilityTag)
		if tag == "" {
			tag = domain.StabilityStable
		}
		out[i] = domain.RampupEntry{Version: e.Version, Percentage: e.Percentage, StabilityTag: tag}
	}
	return out
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// newTable returns a borderless table writer that renders to the
// command's output.
func newTable(cmd *cobra.Command, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row(header))
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}
