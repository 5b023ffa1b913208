// Mentormatch - Hybrid Mentor, Session and Group Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mentormatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed in Prometheus text format at GET /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Requests in flight (gauge)

The endpoint label is the chi route pattern (for example
/api/v1/recommend/{kind}), never the raw path, so label cardinality stays
bounded.

Recommendation Metrics:
  - recommend_requests_total: Served requests (counter)
    Labels: kind, method
  - recommend_duration_seconds: Serving latency (histogram)
    Labels: kind, method
  - recommend_result_size: Recommendations per response (histogram)
    Labels: kind
  - recommend_cache_hits_total / recommend_cache_misses_total (counters)
  - recommend_errors_total: Failed requests (counter)
    Labels: kind, reason

Training Metrics:
  - recommend_training_runs_total: Training runs (counter)
    Labels: model, status (success, error, skipped)
  - recommend_training_duration_seconds: Training time (histogram)
    Labels: model
  - recommend_model_ready: 1 when a model takes part in fusion (gauge)
    Labels: model
  - recommend_model_evaluation: Latest holdout metric (gauge)
    Labels: model, metric (precision@k, recall@k, ndcg@k, ...)

Data Metrics:
  - recommend_interactions_ingested_total: Interactions stored (counter)
  - graph_exports_total: Neo4j exports (counter)
    Labels: status

# Usage Example

	start := time.Now()
	recs, err := coordinator.Recommend(ctx, method, req)
	if err != nil {
	    metrics.RecordRecommendError(string(req.Kind), "model_error")
	    return err
	}
	metrics.RecordRecommendation(string(req.Kind), string(method), len(recs), time.Since(start))

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
