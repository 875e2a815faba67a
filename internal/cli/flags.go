package cli

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

// stdio is the path that selects stdin or stdout.
const stdio = "-"

// =============================================================================
// Layout Flags
// =============================================================================

// layoutFlags are the layout settings shared by layout, render and view.
// Only flags the user set override the configuration.
type layoutFlags struct {
	mode   string
	hspace float64
	vspace float64
	pspace float64
	depth  int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	d := layout.DefaultOptions()
	cmd.Flags().StringVar(&f.mode, "mode", string(d.Mode), "layout mode: full (both sides), side (right only)")
	cmd.Flags().Float64Var(&f.hspace, "hspace", d.HSpace, "horizontal gap between a parent and its children")
	cmd.Flags().Float64Var(&f.vspace, "vspace", d.VSpace, "vertical gap between siblings")
	cmd.Flags().Float64Var(&f.pspace, "pspace", d.PSpace, "expander size")
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, "show this many levels below the root (0: as stored)")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		opts.Layout.Mode = layout.Mode(f.mode)
	}
	if flags.Changed("hspace") {
		opts.Layout.HSpace = f.hspace
	}
	if flags.Changed("vspace") {
		opts.Layout.VSpace = f.vspace
	}
	if flags.Changed("pspace") {
		opts.Layout.PSpace = f.pspace
	}
	opts.Depth = f.depth
}

// =============================================================================
// Input / Output
// =============================================================================

// readInput reads path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == stdio {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeNotFound, err, "read %s", path)
	}
	return data, nil
}

// writeOutput writes data to path, or stdout for "" and "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == stdio {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// basePath derives the base output path from the output and input file
// paths. A known artifact extension on output is stripped; without output
// the input's extension is.
func basePath(output, input string) string {
	if output == "" {
		if input == stdio {
			return appName
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	exts := make([]string, 0, len(pipeline.ValidFormats))
	for _, f := range pipeline.FormatNames() {
		exts = append(exts, pipeline.Extension(f))
	}
	// Longest first so ".node_tree.json" wins over ".json".
	slices.SortFunc(exts, func(a, b string) int { return len(b) - len(a) })
	for _, ext := range exts {
		if strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// artifactPaths maps each format to its output file. A single format with
// an explicit output writes exactly there.
func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + pipeline.Extension(f)
	}
	return paths
}
