package obslog

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedRedRyan/NairobiBlockExchange/pkg/events"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveIncrementsMatchingCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	bus := events.NewBus()
	m.Observe(bus.Subscribe(16))

	bus.Publish(events.OrderCreated{OrderID: 1})
	bus.Publish(events.OrderFilled{RestingOrderID: 1})
	bus.Publish(events.FeesCollected{Amount: 5})

	require.Eventually(t, func() bool {
		return counterValue(t, m.OrdersSubmitted) == 1 &&
			counterValue(t, m.OrdersFilled) == 1 &&
			counterValue(t, m.FeesCollected) == 5
	}, time.Second, time.Millisecond)
}

func TestNewLoggerDevAndProd(t *testing.T) {
	_, err := NewLogger(true)
	assert.NoError(t, err)
	_, err = NewLogger(false)
	assert.NoError(t, err)
}
