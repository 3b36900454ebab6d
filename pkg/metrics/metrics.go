package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var LeadsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "estatedeal_leads_created_total",
	Help: "Leads created by brokers",
})

// LockConflicts counts creations refused by an active cooldown, by entity.
var LockConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "estatedeal_lock_conflicts_total",
	Help: "Creations refused because a cooldown lock was active",
}, []string{"entity"})

var OTPVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "estatedeal_otp_verifications_total",
	Help: "OTP verification attempts by flow and result",
}, []string{"flow", "result"})

var TransactionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "estatedeal_transaction_transitions_total",
	Help: "Transaction status transitions by target status",
}, []string{"status"})

var CommissionPayouts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "estatedeal_commission_payouts_total",
	Help: "Commission payout attempts by result",
}, []string{"result"})

var VisitCancellations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "estatedeal_visit_cancellations_total",
	Help: "Visit cancellation attempts by actor and result",
}, []string{"actor", "result"})

func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
