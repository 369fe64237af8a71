package service

import (
	"time"

	"github.com/yaddak/yaddak/internal/observability/metrics"
)

func observeRegistration(outcome string) {
	metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
}

func observeLogin(outcome string) {
	metrics.LoginsTotal.WithLabelValues(outcome).Inc()
}

func observeHash(start time.Time) {
	metrics.CredentialHashDurationSeconds.Observe(time.Since(start).Seconds())
}

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}
