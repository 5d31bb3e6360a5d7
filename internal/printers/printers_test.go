package printers

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"cloudpick/internal/domain"
)

func rule(t *testing.T) domain.Entity {
	t.Helper()
	e, err := domain.NewEntityFromFields("Name",
		domain.Field{Name: "Name", Value: "nightly-report"},
		domain.Field{Name: "State", Value: "ENABLED"},
		domain.Field{Name: "Created", Value: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		domain.Field{Name: "Targets", Value: []any{map[string]any{"Id": "t1"}}},
	)
	require.NoError(t, err)
	return e
}

func TestYAMLPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLPrinter().PrintObj(rule(t), &buf))

	out := buf.String()
	assert.Contains(t, out, "Name: nightly-report\n")
	assert.Contains(t, out, "State: ENABLED\n")
	assert.Contains(t, out, "Targets:\n- Id: t1\n")

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "2024-03-01T12:00:00Z", back["Created"])
}

func TestJSONPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONPrinter().PrintObj([]domain.Entity{rule(t)}, &buf))
	assert.Contains(t, buf.String(), `"Name": "nightly-report"`)
	assert.Equal(t, byte('['), buf.Bytes()[0])
}

func TestNamePrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewNamePrinter().PrintObj([]domain.Entity{rule(t)}, &buf))
	assert.Equal(t, "nightly-report\n", buf.String())

	assert.Error(t, NewNamePrinter().PrintObj(map[string]any{}, &buf))
}

func TestNewPrinter(t *testing.T) {
	for _, f := range SupportedFormats() {
		p, err := NewPrinter(f)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	_, err := NewPrinter("table")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPrintBatchSummary(t *testing.T) {
	out := domain.BatchOutcome{
		Operation: "purge-queue",
		Items: []domain.ItemOutcome{
			{ID: "q1"},
			{ID: "q2", Err: errors.New("AccessDenied")},
			{ID: "q3"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, PrintBatchSummary(&buf, out))
	assert.Equal(t, `purge-queue: 2 succeeded, 1 failed
succeeded:
  q1
  q3
failed:
  q2: purge-queue: AccessDenied
`, buf.String())
}

func TestPrintBreakdown(t *testing.T) {
	res := domain.AggregationResult{Outcomes: []domain.PartitionOutcome{
		{Label: "RUNNING", Count: 3},
		{Label: "FAILED", Err: errors.New("throttled")},
	}}
	var buf bytes.Buffer
	require.NoError(t, PrintBreakdown(&buf, res))
	assert.Equal(t, "RUNNING      3\nFAILED       failed: throttled\n", buf.String())
}
