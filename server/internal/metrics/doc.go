// Package metrics keeps the server's request counters and exposes them, with
// any registered gauges, in the Prometheus text exposition format.
//
// Families served at /metrics:
//
//	todo_http_requests_total{method,route,code}           counter
//	todo_http_request_duration_seconds{method,route}      summary (sum/count)
//	todo_items_stored                                     gauge
//	todo_stream_clients                                   gauge
//
// Gauges are sampled at scrape time through the functions passed to
// RegisterGauge.
package metrics
