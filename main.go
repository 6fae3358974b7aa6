package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/twolodzko/canard/config"
	"github.com/twolodzko/canard/eval"
	"github.com/twolodzko/canard/message"
	"github.com/twolodzko/canard/parser"
	"github.com/twolodzko/canard/search"
	"github.com/twolodzko/canard/session"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	depth := flag.Int("depth", search.DefaultDepth, "maximal depth of the search")
	jsonOutput := flag.Bool("json", false, "print the results as JSON")
	trace := flag.Bool("trace", false, "trace the search on stderr")
	dedup := flag.Bool("dedup", false, "skip the equivalent queries during the search")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [FLAGS] [FILE]...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			printError(err, cfg.Format)
			os.Exit(1)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "depth":
			cfg.Depth = *depth
		case "json":
			if *jsonOutput {
				cfg.Format = config.JSON
			}
		case "trace":
			cfg.Trace = *trace
		case "dedup":
			cfg.Deduplicate = *dedup
		}
	})
	if err := cfg.Validate(); err != nil {
		printError(err, cfg.Format)
		os.Exit(2)
	}

	evaluator := newEvaluator(cfg)
	out := printer(cfg.Format)

	for _, path := range cfg.Preload {
		if err := evaluator.EvalFile(path, out); err != nil {
			printError(err, cfg.Format)
			os.Exit(1)
		}
	}

	if flag.NArg() > 0 {
		if err := evalFiles(flag.Args(), evaluator, out); err != nil {
			if errors.Is(err, eval.ErrExit) {
				return
			}
			printError(err, cfg.Format)
			os.Exit(1)
		}
	} else {
		repl(evaluator, out, cfg)
	}
}

func newEvaluator(cfg config.Config) *eval.Evaluator {
	var opts []search.Option
	if cfg.Trace {
		opts = append(opts, search.WithLogger(log.New(os.Stderr, "search: ", 0)))
	}
	if cfg.Deduplicate {
		opts = append(opts, search.WithDeduplication())
	}
	return eval.New(
		session.New(),
		eval.WithDepth(cfg.Depth),
		eval.WithSearchOptions(opts...),
	)
}

func printer(format string) func(message.Message) {
	return func(msg message.Message) {
		if format == config.JSON {
			fmt.Println(msg.JSON())
		} else {
			fmt.Println(msg.Plain())
		}
	}
}

func printError(err error, format string) {
	msg := message.FromError(err)
	if format == config.JSON {
		fmt.Println(msg.JSON())
	} else {
		fmt.Println(msg.Plain())
	}
}

func evalFiles(paths []string, evaluator *eval.Evaluator, out func(message.Message)) error {
	for _, path := range paths {
		if err := evaluator.EvalFile(path, out); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func repl(evaluator *eval.Evaluator, out func(message.Message), cfg config.Config) {
	fmt.Println("Press ^D to exit.")
	fmt.Println()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.History != "" {
		if f, err := os.Open(cfg.History); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(cfg.History); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	for {
		code, ok := readStatements(ln)
		if !ok {
			fmt.Println()
			return
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		err := evaluator.EvalAll(strings.NewReader(code), out)
		if errors.Is(err, eval.ErrExit) {
			return
		}
		if err != nil {
			printError(err, cfg.Format)
		}
	}
}

// Read the lines until they form complete statements.
func readStatements(ln *liner.State) (string, bool) {
	var sb strings.Builder
	for {
		prompt := "| "
		if sb.Len() > 0 {
			prompt = ". "
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// ^C drops the unfinished input
			return "", true
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)

		code := sb.String()
		if !incomplete(code) {
			return code, true
		}
	}
}

func incomplete(code string) bool {
	parser := parser.NewParser(strings.NewReader(code))
	for {
		_, err := parser.Next()
		if err == nil {
			continue
		}
		return errors.Is(err, io.ErrUnexpectedEOF)
	}
}
