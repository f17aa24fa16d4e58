package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequests.WithLabelValues(OutcomeServed))

	RecordRecommendation(OutcomeServed, 5*time.Millisecond, 3)

	after := testutil.ToFloat64(RecommendRequests.WithLabelValues(OutcomeServed))
	assert.Equal(t, before+1, after)
}

func TestRecordCatalogLoad(t *testing.T) {
	okBefore := testutil.ToFloat64(CatalogLoads.WithLabelValues("file", "success"))
	errBefore := testutil.ToFloat64(CatalogLoads.WithLabelValues("file", "error"))

	RecordCatalogLoad("file", nil)
	RecordCatalogLoad("file", errors.New("boom"))
	RecordCatalogLoad("file", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(CatalogLoads.WithLabelValues("file", "success")))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(CatalogLoads.WithLabelValues("file", "error")))
}
