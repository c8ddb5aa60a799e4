package workflow

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ppa/pkg/calculator"
	"ppa/pkg/models"
	"ppa/pkg/normalize"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var th = models.ThresholdSet{ValueMax: 0.13, MainstreamMax: 0.17, PremiumMax: 1.0}

func datasets() (company, competitor []models.RawRecord) {
	company = []models.RawRecord{
		{"SKU": "A1", "Price": "10", "Number of Washes": "50", "Classification": "Fabric",
			"Previous Net Sales": "1000", "Present Net Sales": "1200"},
		{"SKU": "A2", "Price": "6", "Number of Washes": "50", "Classification": "Dish",
			"Previous Net Sales": "500", "Present Net Sales": "400"},
	}
	competitor = []models.RawRecord{
		{"SKU": "C1", "Price": "8", "Number of Washes": "50", "Classification": "Fabric"},
	}
	return company, competitor
}

func TestSession_Lifecycle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	company, competitor := datasets()
	s, err := NewSession(company, competitor, WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, AwaitingThresholds, s.State())
	r := s.Ranges()
	assert.Equal(t, models.Range{Min: 0.12, Max: 0.2, Valid: true}, r.Company)
	assert.Equal(t, models.Range{Min: 0.16, Max: 0.16, Valid: true}, r.Competitor)

	_, err = s.Compare("A1", "C1")
	assert.ErrorIs(t, err, ErrNotClassified)
	_, _, err = s.Analysis()
	assert.ErrorIs(t, err, ErrNotClassified)

	a, err := s.Classify(th)
	require.NoError(t, err)
	assert.Equal(t, Classified, s.State())
	assert.Equal(t, []string{"Dish", "Fabric"}, a.Classifications)

	got, runID, err := s.Analysis()
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.NotEmpty(t, runID)

	runs := logs.FilterMessage("classification run").All()
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ContextMap()["run_id"])

	p, err := s.Compare("A1", "C1")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, p.Index.Float64, 1e-9)

	_, err = s.Compare("A1", "A1")
	assert.ErrorIs(t, err, calculator.ErrSameSkuSelected)

	skus, err := s.SKUs()
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2", "C1"}, skus)

	s.Reset()
	assert.Equal(t, AwaitingThresholds, s.State())
	_, err = s.Compare("A1", "C1")
	assert.ErrorIs(t, err, ErrNotClassified)
	assert.Equal(t, r, s.Ranges(), "datasets survive reset")
}

func TestSession_ReclassifyIsIdempotent(t *testing.T) {
	s, err := NewSession(datasets())
	require.NoError(t, err)

	first, err := s.Classify(th)
	require.NoError(t, err)
	_, err = s.Classify(models.ThresholdSet{ValueMax: 0.5, MainstreamMax: 0.6, PremiumMax: 1})
	require.NoError(t, err)
	again, err := s.Classify(th)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.NotSame(t, first, again)
}

func TestNewSession_TooManyClassifications(t *testing.T) {
	var company []models.RawRecord
	for _, cls := range []string{"A", "B", "C", "D", "E"} {
		company = append(company, models.RawRecord{"SKU": cls, "Classification": cls})
	}
	_, err := NewSession(company, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, normalize.ErrTooManyClassifications))
}

func TestSession_ConcurrentUse(t *testing.T) {
	company, competitor := datasets()
	s, err := NewSession(company, competitor, WithShelfRows(4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := s.Classify(th)
			assert.NoError(t, err)
			assert.Equal(t, 4, a.ShelfRows)
			_, _ = s.Compare("A1", "A2")
		}()
	}
	wg.Wait()
	assert.Equal(t, Classified, s.State())
}
