package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/exoplanet-popsynth/pkg/analysis"
	"github.com/oxygene76/exoplanet-popsynth/pkg/catalog"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/observable"
	"github.com/oxygene76/exoplanet-popsynth/pkg/population/physical"
)

var observableCmd = &cobra.Command{
	Use:   "observable [planets.csv]",
	Short: "Count planets above each telescope's contrast floor and IWA",
	Long: `Count the planets of a generated table whose contrast exceeds a
telescope's contrast floor and whose angular separation exceeds its inner
working angle. Defaults to the table configured under output.planets.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runObservable,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [planets.csv]",
	Short: "Summarize a generated planet table",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummarize,
}

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "Show the classification table in effect",
	Long: `Print the classification table used by generate. With --write the
table is saved as CSV so it can be edited and passed back with
--classification.`,
	Args: cobra.NoArgs,
	RunE: runClasses,
}

func init() {
	observableCmd.Flags().StringP("telescope", "t", "", "Telescope name (default: all configured)")
	observableCmd.Flags().String("type", "", "Restrict the count to one planet type")

	summarizeCmd.Flags().String("format", "text", "Output format (text|yaml)")

	classesCmd.Flags().String("write", "", "Write the table to this CSV file")
}

func planetsPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return config.Output.Planets
}

func runObservable(cmd *cobra.Command, args []string) error {
	telescope, _ := cmd.Flags().GetString("telescope")
	planetType, _ := cmd.Flags().GetString("type")

	planets, err := catalog.LoadPlanets(planetsPath(args), nil)
	if err != nil {
		return fmt.Errorf("failed to load planets: %w", err)
	}

	constraints, err := config.Constraints()
	if err != nil {
		return err
	}
	names := observable.Names(constraints)
	if telescope != "" {
		if _, ok := constraints[telescope]; !ok {
			return fmt.Errorf("unknown telescope %q (configured: %s)", telescope, strings.Join(names, ", "))
		}
		names = []string{telescope}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TELESCOPE\tCONTRAST FLOOR\tIWA (arcsec)\tTYPE\tOBSERVABLE")
	for _, name := range names {
		c := constraints[name]
		if planetType != "" {
			fmt.Fprintf(w, "%s\t%.1e\t%.4f\t%s\t%d\n", name, c.ContrastFloor, c.IWA, planetType,
				observable.Count(planets, c, planetType))
			continue
		}
		counts := observable.CountByType(planets, c)
		for _, t := range sortedKeys(counts) {
			fmt.Fprintf(w, "%s\t%.1e\t%.4f\t%s\t%d\n", name, c.ContrastFloor, c.IWA, t, counts[t])
		}
		fmt.Fprintf(w, "%s\t%.1e\t%.4f\t%s\t%d\n", name, c.ContrastFloor, c.IWA, "total",
			observable.Count(planets, c, ""))
	}
	return w.Flush()
}

func runSummarize(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	planets, err := catalog.LoadPlanets(planetsPath(args), nil)
	if err != nil {
		return fmt.Errorf("failed to load planets: %w", err)
	}
	constraints, err := config.Constraints()
	if err != nil {
		return err
	}
	summary := analysis.Summarize(planets, constraints)

	if format == "yaml" {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		return enc.Close()
	}

	fmt.Printf("Planets: %d around %d host stars\n\n", summary.Planets, summary.Hosts)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCOUNT")
	for _, t := range summary.TypeNames() {
		fmt.Fprintf(w, "%s\t%d\n", t, summary.ByType[t])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(summary.Issues) > 0 {
		fmt.Println("\nIssues:")
		for _, issue := range sortedKeys(summary.Issues) {
			fmt.Printf("  %-20s %d\n", issue, summary.Issues[issue])
		}
	}

	fmt.Println()
	printDistribution("Contrast", summary.Contrast, "%.3e")
	printDistribution("Angular separation (arcsec)", summary.Separation, "%.4f")
	return nil
}

func printDistribution(label string, d analysis.Distribution, verb string) {
	if d.Count == 0 {
		fmt.Printf("%s: no defined values\n", label)
		return
	}
	f := func(v float64) string { return fmt.Sprintf(verb, v) }
	fmt.Printf("%s (n=%d): mean %s, std %s, median %s, range [%s, %s]\n",
		label, d.Count, f(d.Mean), f(d.StdDev), f(d.Median), f(d.Min), f(d.Max))
}

func runClasses(cmd *cobra.Command, args []string) error {
	write, _ := cmd.Flags().GetString("write")

	table := physical.DefaultTable()
	if config.Catalog.Classification != "" {
		t, err := catalog.LoadClassification(config.Catalog.Classification)
		if err != nil {
			return fmt.Errorf("failed to load classification table: %w", err)
		}
		table = t
	}

	if write != "" {
		f, err := os.Create(write)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", write, err)
		}
		if err := catalog.WriteClassification(f, table); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Classification table written to %s\n", write)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tRADIUS (R⊕)\tEFF. ORBIT (AU)\tALBEDO")
	for _, b := range table {
		fmt.Fprintf(w, "%s\t%g-%g\t%g-%g\t%g-%g\n", b.Type,
			b.RadiusLower, b.RadiusUpper, b.OrbitalRadiusLower, b.OrbitalRadiusUpper, b.AlbedoLower, b.AlbedoUpper)
	}
	return w.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
