package obs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics groups Prometheus collectors for the pricing pipeline.
type PricingMetrics struct {
	QuotesTotal       *prometheus.CounterVec
	CouponsApplied    *prometheus.CounterVec
	GiftCouponsIssued prometheus.Counter
	GiftBagsIssued    prometheus.Counter
	QuoteDuration     *prometheus.HistogramVec
}

// NewPricingMetrics registers and returns pricing collectors. Collectors that
// are already registered on reg are reused.
func NewPricingMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	} else {
		sort.Float64s(buckets)
	}
	m := &PricingMetrics{
		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quotes_total",
			Help:      "Count of pricing quotes by payment method and outcome.",
		}, []string{"payment_method", "result"}),
		CouponsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_coupons_applied_total",
			Help:      "Count of coupons applied to quotes by family.",
		}, []string{"family"}),
		GiftCouponsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_gift_coupons_issued_total",
			Help:      "Total number of gift coupons issued.",
		}),
		GiftBagsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_gift_bags_issued_total",
			Help:      "Total number of gift bags granted.",
		}),
		QuoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_quote_duration_ms",
			Help:      "Pricing quote latency distribution in milliseconds.",
			Buckets:   buckets,
		}, []string{"payment_method"}),
	}

	mustRegisterCollector(reg, m.QuotesTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.QuotesTotal = v
		}
	})
	mustRegisterCollector(reg, m.CouponsApplied, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.CouponsApplied = v
		}
	})
	mustRegisterCollector(reg, m.GiftCouponsIssued, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.GiftCouponsIssued = v
		}
	})
	mustRegisterCollector(reg, m.GiftBagsIssued, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Counter); ok {
			m.GiftBagsIssued = v
		}
	})
	mustRegisterCollector(reg, m.QuoteDuration, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.HistogramVec); ok {
			m.QuoteDuration = v
		}
	})
	return m
}

// ParseBucketsCSV converts a comma-separated list of bucket boundaries (milliseconds) into floats.
func ParseBucketsCSV(csv string) []float64 {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			continue
		}
		if v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register pricing metric: %w", err))
	}
}
