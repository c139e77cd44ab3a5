package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCatalogQuery(t *testing.T) {
	before := testutil.ToFloat64(CatalogQueriesTotal.WithLabelValues("ready", "hit"))
	RecordCatalogQuery("ready", true)
	after := testutil.ToFloat64(CatalogQueriesTotal.WithLabelValues("ready", "hit"))
	assert.InDelta(t, 1, after-before, 1e-9)
}

func TestRecordTransition(t *testing.T) {
	c := BookingTransitionsTotal.WithLabelValues("closed", "open", "form_open")
	before := testutil.ToFloat64(c)
	RecordTransition("closed", "open", "form_open")
	assert.InDelta(t, 1, testutil.ToFloat64(c)-before, 1e-9)
}

func TestRecordRejection(t *testing.T) {
	c := BookingRejectionsTotal.WithLabelValues("sold_out")
	before := testutil.ToFloat64(c)
	RecordRejection("sold_out")
	assert.InDelta(t, 1, testutil.ToFloat64(c)-before, 1e-9)
}
