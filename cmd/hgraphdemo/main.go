// Command hgraphdemo is a small CLI harness around the hgraph core: it
// builds an index over a CSV corpus of vectors, runs queries against it,
// and prints the traversal metadata the core records for visual
// inspection. It is a demo host, not part of the core — the core never
// touches a terminal, a CSV corpus, or a flag.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tfmv/hgraph"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// fileParams mirrors hgraph.Params for YAML (de)serialization, since the
// core's Params intentionally carries no struct tags of its own.
type fileParams struct {
	M      int     `yaml:"m"`
	RMid   float64 `yaml:"r_mid"`
	RTop   float64 `yaml:"r_top"`
	Radius float32 `yaml:"radius"`
	CMax   int     `yaml:"c_max"`
	Seed   int64   `yaml:"seed"`
}

func (f fileParams) toParams() hgraph.Params {
	return hgraph.Params{M: f.M, RMid: f.RMid, RTop: f.RTop, Radius: f.Radius, CMax: f.CMax, Seed: f.Seed}
}

func loadParams(path string, override hgraph.Params, overridden bool) (hgraph.Params, error) {
	if path == "" {
		if overridden {
			return override, nil
		}
		return hgraph.DefaultParams, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return hgraph.Params{}, fmt.Errorf("read params file: %w", err)
	}
	var fp fileParams
	if err := yaml.Unmarshal(b, &fp); err != nil {
		return hgraph.Params{}, fmt.Errorf("parse params file: %w", err)
	}
	return fp.toParams(), nil
}

func loadCorpus(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read corpus csv: %w", err)
	}

	rows := make([][]float32, 0, len(records))
	for i, rec := range records {
		row := make([]float32, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			row[j] = float32(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func main() {
	var (
		corpusPath string
		indexPath  string
		paramsPath string
	)

	root := &cobra.Command{
		Use:   "hgraphdemo",
		Short: "Build and query an HGraph/RGraph vector index",
		Long:  headerStyle.Render("hgraphdemo") + " — build a layered proximity graph and its radius-augmented companion over a vector corpus, then walk it.",
	}
	root.PersistentFlags().StringVar(&corpusPath, "corpus", "", "CSV file of N rows x D float columns")
	root.PersistentFlags().StringVar(&indexPath, "index", "index.bin", "path to the persisted index blob")
	root.PersistentFlags().StringVar(&paramsPath, "params", "", "optional YAML params file (overridden by explicit flags)")

	var m, cMax int
	var rMid, rTop float64
	var radius float32
	var seed int64
	root.PersistentFlags().IntVar(&m, "m", hgraph.DefaultParams.M, "HGraph target out-degree")
	root.PersistentFlags().Float64Var(&rMid, "r-mid", hgraph.DefaultParams.RMid, "L1 sampling ratio")
	root.PersistentFlags().Float64Var(&rTop, "r-top", hgraph.DefaultParams.RTop, "L2 sampling ratio")
	root.PersistentFlags().Float32Var(&radius, "radius", hgraph.DefaultParams.Radius, "RGraph cosine-distance threshold")
	root.PersistentFlags().IntVar(&cMax, "c-max", hgraph.DefaultParams.CMax, "RGraph per-vertex neighbor cap")
	root.PersistentFlags().Int64Var(&seed, "seed", hgraph.DefaultParams.Seed, "RNG seed")

	resolveParams := func(cmd *cobra.Command) (hgraph.Params, error) {
		flagsTouched := cmd.Flags().Changed("m") || cmd.Flags().Changed("r-mid") ||
			cmd.Flags().Changed("r-top") || cmd.Flags().Changed("radius") ||
			cmd.Flags().Changed("c-max") || cmd.Flags().Changed("seed")
		override := hgraph.Params{M: m, RMid: rMid, RTop: rTop, Radius: radius, CMax: cMax, Seed: seed}
		p, err := loadParams(paramsPath, override, flagsTouched)
		if err != nil || paramsPath == "" {
			return p, err
		}
		setters := map[string]func(){
			"m": func() { p.M = m }, "r-mid": func() { p.RMid = rMid },
			"r-top": func() { p.RTop = rTop }, "radius": func() { p.Radius = radius },
			"c-max": func() { p.CMax = cMax }, "seed": func() { p.Seed = seed },
		}
		for name, set := range setters {
			if cmd.Flags().Changed(name) {
				set()
			}
		}
		return p, nil
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build an index from --corpus and save it to --index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if corpusPath == "" {
				return fmt.Errorf("--corpus is required")
			}
			rows, err := loadCorpus(corpusPath)
			if err != nil {
				return err
			}
			params, err := resolveParams(cmd)
			if err != nil {
				return err
			}

			index, err := hgraph.BuildIndex(rows, params)
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}

			saved := &hgraph.SavedIndexHandle{IndexHandle: index, Path: indexPath}
			if err := saved.Save(); err != nil {
				return fmt.Errorf("save index: %w", err)
			}

			fmt.Println(headerStyle.Render(fmt.Sprintf(
				"built index: %d vertices, %d dims, entry=%d, build=%s",
				index.Vertices(), index.Dimension(), index.EntryVertex(), index.BuildID(),
			)))
			return nil
		},
	}
	root.AddCommand(buildCmd)

	queryCmd := &cobra.Command{
		Use:   "query <v1,v2,...,vD>",
		Short: "Run a query against the saved index and print the traversal log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := hgraph.LoadSavedIndex(indexPath)
			if err != nil {
				return fmt.Errorf("load index: %w", err)
			}
			if saved.IndexHandle == nil {
				return fmt.Errorf("no index found at %s; run 'build' first", indexPath)
			}

			fields := strings.Split(args[0], ",")
			q := make([]float32, len(fields))
			for i, f := range fields {
				v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
				if err != nil {
					return fmt.Errorf("parse query component %d: %w", i, err)
				}
				q[i] = float32(v)
			}

			result, err := saved.Search(q)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			fmt.Println(headerStyle.Render("entry vertex:"), result.Entry)
			fmt.Println(headerStyle.Render("hgraph best:"), result.HGraph.Best)
			for layer := 2; layer >= 0; layer-- {
				fmt.Printf("%s L%d: %s\n", dimStyle.Render("  layer"), layer, pathStyle.Render(fmt.Sprint(result.HGraph.Log[layer])))
			}
			fmt.Println(headerStyle.Render("rgraph best:"), result.RGraph.Best)
			fmt.Println(dimStyle.Render("  path:"), pathStyle.Render(fmt.Sprint(result.RGraph.Path)))
			return nil
		},
	}
	root.AddCommand(queryCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print layer topography and connectivity for the saved index",
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := hgraph.LoadSavedIndex(indexPath)
			if err != nil {
				return fmt.Errorf("load index: %w", err)
			}
			if saved.IndexHandle == nil {
				return fmt.Errorf("no index found at %s; run 'build' first", indexPath)
			}

			a := &hgraph.Analyzer{Handle: saved.IndexHandle}
			topo := a.Topography()
			conn := a.HGraphConnectivity()

			fmt.Println(headerStyle.Render("HGraph layers"))
			for layer := 0; layer < 3; layer++ {
				fmt.Printf("  L%d: %d vertices, avg degree %.2f\n", layer, topo[layer], conn[layer])
			}
			fmt.Printf("%s %.2f\n", headerStyle.Render("RGraph avg degree:"), a.RGraphConnectivity())
			return nil
		},
	}
	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
