package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		PaymentOutcomes,
		RecurrentCharges,
		WalletConfirmations,
	)
}

var (
	// outcome: redirect|success|fail|error
	PaymentOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_outcomes_total",
			Help: "Begin and complete outcomes by gateway.",
		},
		[]string{"gateway", "outcome"},
	)

	// result: ok|stop|retry|error
	RecurrentCharges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recurrent_charges_total",
			Help: "Off-session charges by result.",
		},
		[]string{"result"},
	)

	// result: paid|rejected|error
	WalletConfirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_confirmations_total",
			Help: "Wallet confirmations by result.",
		},
		[]string{"result"},
	)
)

func IncPaymentOutcome(gateway, outcome string) {
	if gateway == "" {
		gateway = "unknown"
	}
	PaymentOutcomes.WithLabelValues(norm(gateway), norm(outcome)).Inc()
}

func IncRecurrentCharge(result string) {
	RecurrentCharges.WithLabelValues(norm(result)).Inc()
}

func IncWalletConfirmation(result string) {
	WalletConfirmations.WithLabelValues(norm(result)).Inc()
}
