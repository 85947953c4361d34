package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/admissions-mail-filter/internal/core"
)

func TestEvaluateMetrics(t *testing.T) {
	records := []LabeledEmail{
		{
			// Correctly kept.
			Subject:  "Password Reset Required",
			Body:     "Your password needs to be reset immediately",
			Pertains: true,
		},
		{
			// Correctly filtered.
			Subject:  "Student Life Blog: K9s at the Ville",
			Body:     "Discover one of Cedarville's student ministries!",
			Pertains: false,
		},
		{
			// Labeled relevant but carries no trigger vocabulary, so the
			// engine falls through to the default and misses it.
			Subject:  "Quick question about your essay",
			Body:     "Could you resend the draft when you get a chance?",
			Pertains: true,
		},
		{
			// Phishing-style mail labeled irrelevant; the security rule keeps
			// it anyway.
			Subject:  "Suspicious activity on your account",
			Body:     "We detected suspicious activity. Click here.",
			Pertains: false,
		},
	}

	report := Evaluate(core.NewEngine(), records)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.TruePositives)
	assert.Equal(t, 1, report.TrueNegatives)
	assert.Equal(t, 1, report.FalseNegatives)
	assert.Equal(t, 1, report.FalsePositives)

	assert.InDelta(t, 0.5, report.Accuracy(), 1e-9)
	assert.InDelta(t, 0.5, report.Precision(), 1e-9)
	assert.InDelta(t, 0.5, report.Recall(), 1e-9)
	assert.InDelta(t, 0.5, report.F1(), 1e-9)

	require.Len(t, report.Misclassified, 2)
}

func TestEvaluateEmptyDataset(t *testing.T) {
	report := Evaluate(core.NewEngine(), nil)

	assert.Zero(t, report.Total)
	assert.Zero(t, report.Accuracy())
	assert.Zero(t, report.Precision())
	assert.Zero(t, report.Recall())
	assert.Zero(t, report.F1())
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	data := `[
		{"subject": "Application Received", "body": "Thank you for submitting your application", "from": "admissions@example.edu", "pertains": true},
		{"subject": "Open House Invitation", "body": "Join us on campus!", "pertains": false}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	records, err := LoadDataset(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Application Received", records[0].Subject)
	assert.True(t, records[0].Pertains)
	assert.False(t, records[1].Pertains)
}

func TestLoadDatasetErrors(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = LoadDataset(path)
	assert.Error(t, err)
}
