// Package cmds implements the graphmat command tree.
package cmds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jac3km4/graphmat/internal/config"
	"github.com/jac3km4/graphmat/internal/editseq"
	"github.com/jac3km4/graphmat/internal/logflags"
	"github.com/jac3km4/graphmat/internal/match"
	"github.com/jac3km4/graphmat/internal/objfile"
	"github.com/jac3km4/graphmat/internal/output"
	"github.com/jac3km4/graphmat/internal/render"
	"github.com/jac3km4/graphmat/internal/seed"
	"github.com/jac3km4/graphmat/internal/star"
)

// Version is the release version, overridable at link time.
var Version = "dev"

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should
	// produce debug output.
	logOutput string
	// logDest is the file path where logs should go.
	logDest string

	// configFile is the path of the YAML config with the matcher
	// tunables.
	configFile string
	// seedPrefix restricts seed discovery to symbols with this prefix.
	seedPrefix string
)

const graphmatLongDesc = `graphmat matches the call graphs of two versions of a binary.

Starting from functions that can be paired by symbol name, the matching
propagates outward along call edges, comparing functions by opcode edit
distance, until no more pairs can be confirmed. The result is a mapping
from addresses of the first binary to addresses of the second.`

// New returns the root command.
func New() *cobra.Command {
	root := &cobra.Command{
		Use:           "graphmat",
		Short:         "graphmat matches call graphs across binary versions.",
		Long:          graphmatLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logflags.Setup(log, logOutput, logDest)
		},
	}
	root.PersistentFlags().BoolVar(&log, "log", false, "Enable debug logging.")
	root.PersistentFlags().StringVar(&logOutput, "log-output", "", "Comma separated list of components that should produce debug output (matcher, objfile, all).")
	root.PersistentFlags().StringVar(&logDest, "log-dest", "", "Write logs to the specified file instead of stderr.")

	root.AddCommand(matchCommand())
	root.AddCommand(graphCommand())
	root.AddCommand(seedsCommand())
	root.AddCommand(versionCommand())
	return root
}

func loadConfig() (config.Config, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

// openPair opens the two binaries and extracts their call graphs,
// symbols and seed pairs.
func openPair(first, second string) (lhsFile, rhsFile *objfile.File, seeds [][2]uint64, err error) {
	lhsFile, err = objfile.Open(first)
	if err != nil {
		return nil, nil, nil, err
	}
	rhsFile, err = objfile.Open(second)
	if err != nil {
		lhsFile.Close()
		return nil, nil, nil, err
	}

	lhsSyms := lhsFile.Symbols()
	rhsSyms := rhsFile.Symbols()
	seeds = seed.Discover(lhsSyms, rhsSyms, seedPrefix)
	if len(seeds) == 0 {
		// Stripped binaries: fall back to pairing the entrypoints.
		seeds = [][2]uint64{{lhsFile.Entry(), rhsFile.Entry()}}
	}
	return lhsFile, rhsFile, seeds, nil
}

func symbolRoots(syms []objfile.Symbol) []uint64 {
	roots := make([]uint64, len(syms))
	for i, s := range syms {
		roots[i] = s.Addr
	}
	return roots
}

func matchCommand() *cobra.Command {
	var (
		first, second string
		outCSV        string
		outDir        string
		outDOT        string
	)
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match two binaries and write the address mapping.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if first == "" || second == "" {
				return errors.New("--first and --second are required")
			}
			if outCSV == "" {
				return errors.New("--output is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			lhsFile, rhsFile, seeds, err := openPair(first, second)
			if err != nil {
				return err
			}
			defer lhsFile.Close()
			defer rhsFile.Close()

			lhs := lhsFile.Graph(symbolRoots(lhsFile.Symbols())...)
			rhs := rhsFile.Graph(symbolRoots(rhsFile.Symbols())...)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			corr, err := match.NewMatcher(cfg).Match(ctx, lhs, rhs, seeds)
			if err != nil {
				return err
			}
			seq := editseq.Build(lhs, rhs, corr)

			if err := output.WriteMappingFile(outCSV, seq, lhsFile.TextBase(), rhsFile.TextBase()); err != nil {
				return err
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return err
				}
				if err := output.WriteEditSequenceJSON(outDir, seq); err != nil {
					return err
				}
				if err := output.WriteGraphJSON(outDir, "callgraph_a", lhs); err != nil {
					return err
				}
				if err := output.WriteGraphJSON(outDir, "callgraph_b", rhs); err != nil {
					return err
				}
			}
			if outDOT != "" {
				cmp := star.NewComparator(lhs, rhs, cfg.OpcodeWeight, cfg.DegreeWeight, cfg.ScoreCacheSize)
				title := fmt.Sprintf("%s vs %s", first, second)
				dot := render.DiffDOT(lhs, corr, cmp, title, render.Plain, 0)
				if err := os.WriteFile(outDOT, []byte(dot), 0644); err != nil {
					return err
				}
			}

			matches, insA, insB := seq.Counts()
			fmt.Printf("matched %d functions (%d only in %s, %d only in %s)\n",
				matches, insA, first, insB, second)
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "first", "", "The first binary to compare.")
	cmd.Flags().StringVar(&second, "second", "", "The second binary to compare.")
	cmd.Flags().StringVarP(&outCSV, "output", "o", "", "Path of the CSV mapping to write.")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for JSON artifacts (edit sequence, call graphs).")
	cmd.Flags().StringVar(&outDOT, "dot", "", "Path of a DOT diff graph to write.")
	cmd.Flags().StringVar(&configFile, "config", "", "Path of the matcher config file.")
	cmd.Flags().StringVar(&seedPrefix, "seed-prefix", "", "Only seed from symbols with this prefix.")
	return cmd
}

func graphCommand() *cobra.Command {
	var (
		bin    string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Extract one binary's call graph and write it as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if bin == "" {
				return errors.New("--bin is required")
			}
			if outDir == "" {
				return errors.New("--out is required")
			}

			f, err := objfile.Open(bin)
			if err != nil {
				return err
			}
			defer f.Close()

			g := f.Graph(symbolRoots(f.Symbols())...)
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return err
			}
			if err := output.WriteGraphJSON(outDir, "callgraph", g); err != nil {
				return err
			}
			fmt.Printf("extracted %d functions\n", g.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&bin, "bin", "", "The binary to analyze.")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory.")
	return cmd
}

func seedsCommand() *cobra.Command {
	var first, second string
	cmd := &cobra.Command{
		Use:   "seeds",
		Short: "Print the seed pairs discoverable from symbol names.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if first == "" || second == "" {
				return errors.New("--first and --second are required")
			}

			lhsFile, rhsFile, seeds, err := openPair(first, second)
			if err != nil {
				return err
			}
			defer lhsFile.Close()
			defer rhsFile.Close()

			for _, p := range seeds {
				fmt.Printf("%#x, %#x\n", lhsFile.TextBase()+p[0], rhsFile.TextBase()+p[1])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "first", "", "The first binary to compare.")
	cmd.Flags().StringVar(&second, "second", "", "The second binary to compare.")
	cmd.Flags().StringVar(&seedPrefix, "seed-prefix", "", "Only seed from symbols with this prefix.")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphmat %s\n", Version)
		},
	}
}
