package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveInstantiation(t *testing.T) {
	ok := testutil.ToFloat64(instantiations.WithLabelValues("ok"))
	failed := testutil.ToFloat64(instantiations.WithLabelValues("error"))

	ObserveInstantiation(time.Now(), nil)
	ObserveInstantiation(time.Now(), errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(instantiations.WithLabelValues("ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(instantiations.WithLabelValues("error")))
}

func TestObserveTransition(t *testing.T) {
	before := testutil.ToFloat64(taskTransitions.WithLabelValues("COMPLETED", "ok"))
	ObserveTransition("COMPLETED", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(taskTransitions.WithLabelValues("COMPLETED", "ok")))
}
