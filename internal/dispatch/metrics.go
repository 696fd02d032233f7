package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	poolWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrbridge_dispatch_workers",
			Help: "Number of running dispatch workers",
		},
	)

	poolBusyWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrbridge_dispatch_busy_workers",
			Help: "Number of dispatch workers currently running a task",
		},
	)

	poolQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qrbridge_dispatch_queue_depth",
			Help: "Number of tasks waiting for a worker",
		},
	)

	poolTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbridge_dispatch_tasks_total",
			Help: "Total number of dispatch tasks by outcome",
		},
		[]string{"outcome"}, // done, panicked, rejected
	)
)
