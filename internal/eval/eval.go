package eval

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mikey/admissions-mail-filter/internal/core"
)

// LabeledEmail is one dataset record: an email plus its expected verdict
type LabeledEmail struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	From     string `json:"from"`
	To       string `json:"to"`
	Cc       string `json:"cc"`
	Pertains bool   `json:"pertains"`
}

// Misclassification records one disagreement between the engine and the
// label, with the engine's audit trail for the rule-authoring workflow
type Misclassification struct {
	Subject      string
	From         string
	Expected     bool
	Got          bool
	Reason       string
	MatchedRules []string
}

// Report holds the confusion-matrix counts for one evaluation run.
// "Positive" means pertains (kept in inbox).
type Report struct {
	Total          int
	TruePositives  int
	FalsePositives int
	TrueNegatives  int
	FalseNegatives int
	Misclassified  []Misclassification
}

// LoadDataset reads a JSON array of labeled records
func LoadDataset(path string) ([]LabeledEmail, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var records []LabeledEmail
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return records, nil
}

// Evaluate runs the engine over every labeled record. The engine is a
// pure client call; the dataset imposes no contract on it beyond one
// classification per record.
func Evaluate(engine *core.Engine, records []LabeledEmail) Report {
	report := Report{Total: len(records)}

	for _, rec := range records {
		email := &core.Email{
			Subject: rec.Subject,
			Body:    rec.Body,
			From:    rec.From,
			To:      rec.To,
			Cc:      rec.Cc,
		}
		result := engine.Classify(email)

		switch {
		case rec.Pertains && result.Pertains:
			report.TruePositives++
		case !rec.Pertains && !result.Pertains:
			report.TrueNegatives++
		case !rec.Pertains && result.Pertains:
			report.FalsePositives++
		default:
			report.FalseNegatives++
		}

		if result.Pertains != rec.Pertains {
			report.Misclassified = append(report.Misclassified, Misclassification{
				Subject:      rec.Subject,
				From:         rec.From,
				Expected:     rec.Pertains,
				Got:          result.Pertains,
				Reason:       result.Reason,
				MatchedRules: result.MatchedRules,
			})
		}
	}

	return report
}

// Accuracy is the fraction of records classified correctly
func (r Report) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.TruePositives+r.TrueNegatives) / float64(r.Total)
}

// Precision is TP / (TP + FP)
func (r Report) Precision() float64 {
	denom := r.TruePositives + r.FalsePositives
	if denom == 0 {
		return 0
	}
	return float64(r.TruePositives) / float64(denom)
}

// Recall is TP / (TP + FN)
func (r Report) Recall() float64 {
	denom := r.TruePositives + r.FalseNegatives
	if denom == 0 {
		return 0
	}
	return float64(r.TruePositives) / float64(denom)
}

// F1 is the harmonic mean of precision and recall
func (r Report) F1() float64 {
	p, rec := r.Precision(), r.Recall()
	if p+rec == 0 {
		return 0
	}
	return 2 * p * rec / (p + rec)
}
