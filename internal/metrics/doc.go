// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

/*
Package metrics provides Prometheus metrics collection and export for observability.

The package exposes metrics for:
  - HTTP request latency and throughput
  - Model training runs and duration
  - Feedback ingestion outcomes
  - Recommendation serving volume by mode
  - Agent tool routing and LLM fallbacks

All metrics are registered with the default Prometheus registry via promauto
and served on /metrics by the API router.
*/
package metrics
