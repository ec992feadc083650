// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics exposes Prometheus counters for vote admission, tallying
and HTTP traffic.

	m := metrics.New()
	mux.Handle("GET /metrics", m.Handler())
	handler := m.Instrument(mux)

# Series

  - votesecure_ballots_admitted_total
  - votesecure_ballots_rejected_total{reason}
  - votesecure_tally_duration_seconds
  - votesecure_http_requests_total{method,code}

Go runtime and process collectors are registered as well.

A nil *Metrics is a no-op, which keeps handler tests free of registry
setup.
*/
package metrics
