package verbose

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/chriscorrea/qctx/internal/config"
	"github.com/chriscorrea/qctx/internal/resolve"

	"github.com/fatih/color"
)

// OutputConfig contains parameters for verbose output formatting
type OutputConfig struct {
	Writer       io.Writer
	KeyColor     *color.Color
	ValueColor   *color.Color
	HeaderColor  *color.Color
	EnableColors bool
}

// DefaultOutputConfig returns a default configuration for verbose output
func DefaultOutputConfig(writer io.Writer) *OutputConfig {
	return &OutputConfig{
		Writer:       writer,
		KeyColor:     color.New(color.FgCyan, color.Bold),
		ValueColor:   color.New(color.FgMagenta),
		HeaderColor:  color.New(color.FgYellow, color.Bold),
		EnableColors: true,
	}
}

// RunParameters are the values shown before a verbose run
type RunParameters struct {
	Context          string
	Files            int
	MaxLines         int
	WarningThreshold int
	Patterns         int
	Exclude          int
}

// PrintRunParameters displays run parameters in a formatted, multi-column table.
func PrintRunParameters(p RunParameters, outputCfg *OutputConfig) {
	if outputCfg == nil {
		outputCfg = DefaultOutputConfig(os.Stderr)
	}

	w := tabwriter.NewWriter(outputCfg.Writer, 0, 0, 3, ' ', 0)

	type param struct {
		Key   string
		Value string
	}

	params := []param{
		{Key: "Context", Value: p.Context},
		{Key: "Matched Files", Value: fmt.Sprintf("%d", p.Files)},
		{Key: "Max Lines", Value: fmt.Sprintf("%d", p.MaxLines)},
		{Key: "Warning Threshold", Value: fmt.Sprintf("%d", p.WarningThreshold)},
		{Key: "Patterns", Value: fmt.Sprintf("%d", p.Patterns)},
	}
	if p.Exclude > 0 {
		params = append(params, param{Key: "Excludes", Value: fmt.Sprintf("%d", p.Exclude)})
	}

	for i := 0; i < len(params); i += 2 {
		p1 := params[i]
		if (i + 1) < len(params) {
			p2 := params[i+1]
			printRow(w, outputCfg, p1.Key, p1.Value, p2.Key, p2.Value)
		} else {
			printRow(w, outputCfg, p1.Key, p1.Value, "", "")
		}
	}

	fmt.Fprintf(w, "\n")
	w.Flush()
}

// PrintContexts lists every context with its rule counts, marking current with '*'
func PrintContexts(cfg *config.Config, current string, outputCfg *OutputConfig) {
	if outputCfg == nil {
		outputCfg = DefaultOutputConfig(os.Stdout)
	}
	header, key, value := sprinters(outputCfg)

	w := tabwriter.NewWriter(outputCfg.Writer, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
		header("NAME"), header("PATTERNS"), header("EXCLUDE"), header("INCLUDE"), header("DESCRIPTION"))

	for _, name := range cfg.Names() {
		ctx := cfg.Contexts[name]
		marker := "  "
		if name == current {
			marker = "* "
		}
		includes := "-"
		if len(ctx.Include) > 0 {
			includes = strings.Join(ctx.Include, ",")
		}
		fmt.Fprintf(w, "%s%s\t%d\t%d\t%s\t%s\n",
			marker, key(name), len(ctx.Patterns), len(ctx.Exclude), value(includes), ctx.Description)
	}
	w.Flush()
}

// PrintResolution shows the flattened globs and the files they select
func PrintResolution(name string, set resolve.Set, files []string, outputCfg *OutputConfig) {
	if outputCfg == nil {
		outputCfg = DefaultOutputConfig(os.Stdout)
	}
	header, _, value := sprinters(outputCfg)
	out := outputCfg.Writer

	fmt.Fprintf(out, "%s %s\n", header("Context:"), name)

	fmt.Fprintf(out, "%s\n", header("Patterns:"))
	for _, p := range set.Patterns {
		fmt.Fprintf(out, "  %s\n", value(p))
	}

	if len(set.Exclude) > 0 {
		fmt.Fprintf(out, "%s\n", header("Exclude:"))
		for _, p := range set.Exclude {
			fmt.Fprintf(out, "  %s\n", value(p))
		}
	}

	fmt.Fprintf(out, "%s %d\n", header("Files:"), len(files))
	for _, f := range files {
		fmt.Fprintf(out, "  %s\n", f)
	}
}

func sprinters(outputCfg *OutputConfig) (header, key, value func(a ...interface{}) string) {
	if !outputCfg.EnableColors {
		return fmt.Sprint, fmt.Sprint, fmt.Sprint
	}
	return outputCfg.HeaderColor.SprintFunc(), outputCfg.KeyColor.SprintFunc(), outputCfg.ValueColor.SprintFunc()
}

// printRow prints a multi-column row for one or two key-value pairs
// and handles color formatting and alignment via tabwriter
func printRow(w io.Writer, outputCfg *OutputConfig, key1, value1, key2, value2 string) {
	_, keySprint, valueSprint := sprinters(outputCfg)

	if key2 != "" {
		fmt.Fprintf(w, "%s:\t%s\t%s:\t%s\n",
			keySprint(key1),
			valueSprint(value1),
			keySprint(key2),
			valueSprint(value2),
		)
	} else {
		fmt.Fprintf(w, "%s:\t%s\n",
			keySprint(key1),
			valueSprint(value1),
		)
	}
}
