package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jward/recast"
	"github.com/jward/recast/internal/cache"
	"github.com/jward/recast/internal/config"
	"github.com/jward/recast/lang"
)

var (
	errColor     = color.New(color.FgRed, color.Bold)
	summaryColor = color.New(color.FgGreen)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintf(os.Stderr, "Error: ")
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "recast",
	Short:         "Translate source code between scripting languages",
	Long:          "Recast parses source files into a language-agnostic representation and re-emits them as idiomatic code in another language.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

var (
	flagFrom        string
	flagTo          string
	flagOutput      string
	flagCache       bool
	flagConcurrency int
)

func init() {
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(languagesCmd)
}

var translateCmd = &cobra.Command{
	Use:   "translate <input>",
	Short: "Translate a file, directory, or stdin",
	Long: "Translates the input into the target language. A file input writes to --output " +
		"(or stdout); a directory input translates every supported file in the tree, " +
		"writing each output next to its source. Use \"-\" to read from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&flagFrom, "from", "", "source language (default: inferred from file extension)")
	translateCmd.Flags().StringVar(&flagTo, "to", "", "target language")
	translateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output path (default: stdout)")
	translateCmd.Flags().BoolVar(&flagCache, "cache", false, "cache translations in a SQLite database")
	translateCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "worker count for directory translation (default: one per CPU)")

	checkCmd.Flags().StringVar(&flagFrom, "from", "", "source language (default: inferred from file extension)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, _, err := config.Load(".")
	if err != nil {
		return err
	}
	target := flagTo
	if target == "" {
		target = cfg.Translate.Target
	}
	if target == "" {
		return fmt.Errorf("no target language: pass --to or set translate.target in %s", config.FileName)
	}

	opts := []recast.Option{}
	if flagFrom != "" {
		opts = append(opts, recast.WithSourceLanguage(flagFrom))
	}
	if n := concurrency(cfg); n > 0 {
		opts = append(opts, recast.WithConcurrency(n))
	}
	if flagCache || cfg.Cache.Enabled {
		path := cfg.Cache.Path
		if path == "" {
			path = ".recast-cache.db"
		}
		c, err := cache.Open(path)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer c.Close()
		opts = append(opts, recast.WithCache(c))
	}
	t := recast.New(target, opts...)

	if input == "-" {
		if flagFrom == "" {
			return fmt.Errorf("reading from stdin requires --from")
		}
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		out, err := t.TranslateSource(string(src), flagFrom)
		if err != nil {
			return err
		}
		return writeOutput(out)
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input not found: %s", input)
	}
	if info.IsDir() {
		return translateDir(t, input)
	}
	return t.TranslateFile(input, flagOutput)
}

func translateDir(t *recast.Translator, dir string) error {
	start := time.Now()
	res, err := t.TranslateDir(context.Background(), dir)
	if res != nil {
		summaryColor.Fprintf(os.Stderr, "Translated %d file(s) to %s in %s (%d skipped, %d failed)\n",
			len(res.Translated), t.Target(), time.Since(start).Round(time.Millisecond),
			res.Skipped, len(res.Failed))
	}
	return err
}

func writeOutput(out string) error {
	if flagOutput == "" {
		_, err := os.Stdout.WriteString(out)
		return err
	}
	if err := os.WriteFile(flagOutput, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flagOutput, err)
	}
	return nil
}

func concurrency(cfg *config.Config) int {
	if flagConcurrency > 0 {
		return flagConcurrency
	}
	return cfg.Translate.Concurrency
}

var checkCmd = &cobra.Command{
	Use:   "check <input>",
	Short: "Parse a file without emitting anything",
	Long:  "Parses the input and reports whether it is fully representable. Useful as a pre-flight before translating a tree.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	input := args[0]
	from := flagFrom
	if from == "" {
		var ok bool
		from, ok = recast.InferLanguage(input)
		if !ok {
			return fmt.Errorf("cannot infer source language from %q: pass --from", input)
		}
	}
	reader := lang.ReaderForLanguage(from)
	if reader == nil {
		return fmt.Errorf("no reader registered for language %q", from)
	}
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	if _, err := reader.Parse(string(src)); err != nil {
		return err
	}
	summaryColor.Fprintf(os.Stderr, "OK: %s parses as %s\n", input, from)
	return nil
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List registered readers and writers",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Readers:")
		for _, r := range lang.Readers() {
			fmt.Printf("  %-12s (.%s)\n", r.Language(), joinExts(r.Extensions()))
		}
		fmt.Println("Writers:")
		for _, w := range lang.Writers() {
			fmt.Printf("  %-12s (.%s)\n", w.Language(), w.Extension())
		}
		return nil
	},
}

func joinExts(exts []string) string {
	out := ""
	for i, e := range exts {
		if i > 0 {
			out += ", ."
		}
		out += e
	}
	return out
}
