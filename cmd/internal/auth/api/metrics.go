package authapi

import "github.com/prometheus/client_golang/prometheus"

func newOperationsCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authgate",
		Name:      "auth_operations_total",
		Help:      "Account operations by outcome.",
	}, []string{"operation", "result"})
	reg.MustRegister(c)
	return c
}

func (h *Handler) count(operation, result string) {
	if h.ops == nil {
		return
	}
	h.ops.WithLabelValues(operation, result).Inc()
}
