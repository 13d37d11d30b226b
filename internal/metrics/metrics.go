// Package metrics exposes Prometheus counters for the confirmation lifecycle
// and outgoing mail.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Redemption results used as the "result" label.
const (
	ResultConfirmed    = "confirmed"
	ResultNotFound     = "not_found"
	ResultExpired      = "expired"
	ResultKindMismatch = "kind_mismatch"
	ResultError        = "error"
)

var (
	ConfirmationsIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "confirm_mailer_codes_issued_total",
		Help: "Total number of confirmation codes issued",
	}, []string{"type"})
	ConfirmationsRedeemed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "confirm_mailer_redemptions_total",
		Help: "Total number of redemption attempts grouped by outcome",
	}, []string{"type", "result"})
	ConfirmationsSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "confirm_mailer_codes_swept_total",
		Help: "Total number of expired confirmation codes removed by the sweeper",
	})
	SweepRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "confirm_mailer_sweep_runs_total",
		Help: "Total number of sweeper runs grouped by outcome",
	}, []string{"result"})
	// Mail metrics
	MailSendSuccess = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "confirm_mailer_mail_send_success_total",
		Help: "Total number of confirmation emails accepted by the SMTP server",
	}, []string{"host"})
	MailSendFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "confirm_mailer_mail_send_failure_total",
		Help: "Total number of confirmation emails the SMTP server did not accept",
	}, []string{"host"})
)

func init() {
	prometheus.MustRegister(ConfirmationsIssued)
	prometheus.MustRegister(ConfirmationsRedeemed)
	prometheus.MustRegister(ConfirmationsSwept)
	prometheus.MustRegister(SweepRuns)
	prometheus.MustRegister(MailSendSuccess)
	prometheus.MustRegister(MailSendFailure)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
