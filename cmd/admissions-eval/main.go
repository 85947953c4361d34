package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mikey/admissions-mail-filter/internal/core"
	"github.com/mikey/admissions-mail-filter/internal/eval"
	"github.com/mikey/admissions-mail-filter/internal/logging"
	"go.uber.org/zap"
)

var (
	datasetFile = flag.String("dataset", "", "Path to a JSON dataset of labeled emails")
	showMisses  = flag.Bool("show-misses", true, "Print each misclassified record")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog     = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *datasetFile == "" {
		fmt.Println("Usage: admissions-eval -dataset <file.json>")
		os.Exit(1)
	}

	records, err := eval.LoadDataset(*datasetFile)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	logger.Info("Loaded dataset", zap.Int("records", len(records)), zap.String("file", *datasetFile))

	report := eval.Evaluate(core.NewEngine(), records)

	fmt.Printf("\n=== Evaluation ===\n")
	fmt.Printf("Records:   %d\n", report.Total)
	fmt.Printf("Accuracy:  %.4f\n", report.Accuracy())
	fmt.Printf("Precision: %.4f\n", report.Precision())
	fmt.Printf("Recall:    %.4f\n", report.Recall())
	fmt.Printf("F1:        %.4f\n", report.F1())
	fmt.Printf("\nConfusion matrix (positive = pertains):\n")
	fmt.Printf("  TP: %-5d FP: %d\n", report.TruePositives, report.FalsePositives)
	fmt.Printf("  FN: %-5d TN: %d\n", report.FalseNegatives, report.TrueNegatives)

	if *showMisses && len(report.Misclassified) > 0 {
		fmt.Printf("\n=== Misclassified (%d) ===\n", len(report.Misclassified))
		for _, m := range report.Misclassified {
			fmt.Printf("- subject=%q from=%q expected=%t got=%t\n", m.Subject, m.From, m.Expected, m.Got)
			fmt.Printf("  reason: %s; rules: %s\n", m.Reason, strings.Join(m.MatchedRules, ", "))
		}
	}
}
