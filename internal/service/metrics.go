package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "redirector_resolutions_total",
	Help: "Short id resolutions by outcome and expiry reason",
}, []string{"outcome", "reason"})
