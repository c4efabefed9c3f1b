package service

import "github.com/prometheus/client_golang/prometheus"

var (
	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "usercenter_login_attempts_total", Help: "Login attempts by outcome"},
		[]string{"result"},
	)
	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "usercenter_user_status_transitions_total", Help: "User status transitions"},
		[]string{"from", "to"},
	)
)

func init() { prometheus.MustRegister(loginAttempts, statusTransitions) }
