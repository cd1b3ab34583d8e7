// Command modelcheck scores a CSV of feature rows through a model artifact
// and compares the results with expected labels. Use it to vet a newly
// delivered artifact before pointing the service at it.
//
// The CSV header must name the eight API fields. Optional columns "expected"
// (0 or 1) and "expected_probability" are checked when present.
//
// Usage:
//
//	go run ./cmd/modelcheck \
//	  -model models/thunderstorm_model.json \
//	  -rows models/golden.csv
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-inference-service/internal/domain"
	"github.com/couchcryptid/storm-inference-service/internal/model"
	"github.com/couchcryptid/storm-inference-service/internal/predictor"
)

const probabilityTolerance = 1e-6

// phase tracks pass/fail for a check phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	modelPath := flag.String("model", "models/thunderstorm_model.json", "path to the model artifact")
	rowsPath := flag.String("rows", "", "CSV file of feature rows")
	flag.Parse()

	if *rowsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*modelPath, *rowsPath, os.Stdout))
}

func run(modelPath, rowsPath string, out io.Writer) int {
	fmt.Fprintln(out, "=== Model Artifact Check ===")

	m, err := model.Load(modelPath, domain.ColumnNames())
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	p, err := predictor.New(m)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Model: %s (%s, probability=%t)\n\n", m.Name(), m.Kind(), m.SupportsProbability())

	rows, err := loadRows(rowsPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load rows: %v\n", err)
		return 1
	}

	scoring := &phase{name: "Row scoring"}
	labels := &phase{name: "Expected labels"}
	probas := &phase{name: "Expected probabilities"}

	for _, r := range rows {
		got, err := p.PredictVector(context.Background(), r.vector)
		if err != nil {
			scoring.errorf("line %d: %v", r.line, err)
			continue
		}
		fmt.Fprintf(out, "  line %-4d prediction=%d probability=%s\n", r.line, got.Label, formatProbability(got.Probability))

		if r.expected != nil && got.Label != *r.expected {
			labels.errorf("line %d: prediction %d, expected %d", r.line, got.Label, *r.expected)
		}
		if r.expectedProba != nil {
			switch {
			case got.Probability == nil:
				probas.errorf("line %d: no probability, expected %.9f", r.line, *r.expectedProba)
			case math.Abs(*got.Probability-*r.expectedProba) > probabilityTolerance:
				probas.errorf("line %d: probability %.9f, expected %.9f", r.line, *got.Probability, *r.expectedProba)
			}
		}
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, ph := range []*phase{scoring, labels, probas} {
		status := "PASS"
		if !ph.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(ph.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-28s %s\n", ph.name, status)
	}
	fmt.Fprintf(out, "\nRows: %d\n", len(rows))

	for _, ph := range []*phase{scoring, labels, probas} {
		if ph.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", ph.name)
		for i, e := range ph.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(out, "\nCheck FAILED.")
	return 1
}

func formatProbability(p *float64) string {
	if p == nil {
		return "null"
	}
	return strconv.FormatFloat(*p, 'f', 6, 64)
}

// row is one parsed CSV line.
type row struct {
	line          int
	vector        domain.FeatureVector
	expected      *int
	expectedProba *float64
}

func loadRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	index := make(map[string]int, len(all[0]))
	for i, h := range all[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, name := range domain.FieldNames() {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("header is missing column %q", name)
		}
	}

	rows := make([]row, 0, len(all)-1)
	for i, rec := range all[1:] {
		r, err := parseRow(rec, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}
		r.line = i + 2
		rows = append(rows, r)
	}
	return rows, nil
}

func parseRow(rec []string, index map[string]int) (row, error) {
	values := make(map[string]float64, domain.FeatureCount)
	for _, name := range domain.FieldNames() {
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[index[name]]), 64)
		if err != nil {
			return row{}, fmt.Errorf("%s: %w", name, err)
		}
		values[name] = x
	}
	v, err := domain.FeatureVectorFromMap(values)
	if err != nil {
		return row{}, err
	}
	r := row{vector: v}

	if i, ok := index["expected"]; ok && strings.TrimSpace(rec[i]) != "" {
		label, err := strconv.Atoi(strings.TrimSpace(rec[i]))
		if err != nil {
			return row{}, fmt.Errorf("expected: %w", err)
		}
		r.expected = &label
	}
	if i, ok := index["expected_probability"]; ok && strings.TrimSpace(rec[i]) != "" {
		p, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
		if err != nil {
			return row{}, fmt.Errorf("expected_probability: %w", err)
		}
		r.expectedProba = &p
	}
	return r, nil
}
