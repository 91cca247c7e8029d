package services

// Metrics receives business counters from the services. The prometheus
// registry in internal/pkg/metrics implements it.
type Metrics interface {
	OrderPlaced()
	CartClearFailed()
	ComplaintRegistered()
	NotificationFailed()
}

type noopMetrics struct{}

func (noopMetrics) OrderPlaced()         {}
func (noopMetrics) CartClearFailed()     {}
func (noopMetrics) ComplaintRegistered() {}
func (noopMetrics) NotificationFailed()  {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
