package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/calyra/flowaudit/internal/analyzer"
	"github.com/calyra/flowaudit/internal/diagram"
	"github.com/calyra/flowaudit/internal/expressions"
	"github.com/calyra/flowaudit/internal/logging"
	"github.com/calyra/flowaudit/internal/normalize"
	"github.com/calyra/flowaudit/internal/rules"
	"github.com/calyra/flowaudit/internal/scheduler"
	"github.com/calyra/flowaudit/internal/store"
	"github.com/calyra/flowaudit/internal/validation"
	"github.com/calyra/flowaudit/pkg/mcp"
	"github.com/calyra/flowaudit/pkg/schema"
)

const usage = `flowaudit - static health analysis for workflow graphs

Usage:
  flowaudit analyze <file> [--query <jq>] [--diagram] [--rules <file>]
  flowaudit serve
  flowaudit version

Commands:
  analyze   Analyze a workflow document and print the result as JSON.
  serve     Run the MCP server on stdio with the scan scheduler.
  version   Print the build version.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "analyze":
		err = runAnalyze(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg Config) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})
	return slog.New(logging.NewCorrelationHandler(handler))
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	query := fs.String("query", "", "jq expression applied to the analysis result")
	renderDiagram := fs.Bool("diagram", false, "print a Mermaid diagram instead of JSON")
	rulesFile := fs.String("rules", "", "JSON file with custom CEL lint rules")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("analyze: expected exactly one document file")
	}

	cfg := loadConfig()
	logger := newLogger(cfg)
	ctx := context.Background()

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	validator, err := validation.NewDocumentValidator()
	if err != nil {
		return err
	}
	if err := validator.ValidateRaw(data); err != nil {
		return err
	}

	doc, err := schema.ParseDocument(data)
	if err != nil {
		return err
	}

	extra, err := loadCustomRules(*rulesFile)
	if err != nil {
		return err
	}

	result := analyzer.New(logger, extra...).Analyze(ctx, doc)

	if *renderDiagram {
		graph := normalize.Normalize(doc)
		fmt.Println(diagram.RenderMermaid(diagram.Build(doc.Name, graph, result.Issues)))
		return nil
	}

	if *query != "" {
		return printQuery(ctx, result, *query)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func loadCustomRules(path string) ([]rules.Rule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var specs []rules.CustomRuleSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	engine, err := expressions.NewCELEngine()
	if err != nil {
		return nil, err
	}
	extra := make([]rules.Rule, 0, len(specs))
	for _, spec := range specs {
		rule, err := rules.NewCustomRule(spec, engine)
		if err != nil {
			return nil, err
		}
		extra = append(extra, rule)
	}
	return extra, nil
}

func printQuery(ctx context.Context, result *schema.AnalysisResult, expression string) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return err
	}
	value, err := expressions.NewGoJQEngine().Evaluate(ctx, expression, asMap)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	noScheduler := fs.Bool("no-scheduler", false, "disable the background scan scheduler")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := loadConfig()
	logger := newLogger(cfg)

	if err := os.MkdirAll(flowauditDir(), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := store.NewLibSQLStore("file:" + cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	validator, err := validation.NewDocumentValidator()
	if err != nil {
		return err
	}

	an := analyzer.New(logger)

	if !*noScheduler {
		sched := scheduler.NewScheduler(db, scheduler.FileSource{}, an, logger)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := mcp.NewFlowauditServer(mcp.ServerDeps{
		Analyzer:  an,
		Store:     db,
		Validator: validator,
		Logger:    logger,
	})
	return srv.Serve(ctx)
}
