// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every u2kit metric family.
const Namespace = "u2kit"

var (
	// RecordsReadTotal counts records decoded by type
	RecordsReadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_read_total",
			Help:      "Total number of records decoded",
		},
		[]string{"type"},
	)

	// RecordsSkippedTotal counts records of unsupported types skipped by length
	RecordsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_skipped_total",
			Help:      "Total number of records skipped because their type is not decoded",
		},
		[]string{"type"},
	)

	// RecordsWrittenTotal counts records encoded by type
	RecordsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "records_written_total",
			Help:      "Total number of records written",
		},
		[]string{"type"},
	)

	// ReadWarningsTotal counts soft failures (partial packet data)
	ReadWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "read_warnings_total",
			Help:      "Total number of records returned with a warning",
		},
	)

	// ReadErrorsTotal counts hard read failures by reason
	ReadErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "read_errors_total",
			Help:      "Total number of hard read failures",
		},
		[]string{"reason"},
	)

	// BytesReadTotal counts header and payload bytes consumed, skipped records included
	BytesReadTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_read_total",
			Help:      "Total number of bytes consumed from record sources",
		},
	)
)

// Read error reasons.
const (
	ReasonTruncated = "truncated"
	ReasonDecode    = "decode"
	ReasonIO        = "io"
)
