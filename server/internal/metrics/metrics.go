package metrics

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const namespace = "todo"

type requestKey struct {
	method string
	route  string
	code   int
}

type routeKey struct {
	method string
	route  string
}

type duration struct {
	count uint64
	sum   float64
}

type gauge struct {
	name string
	help string
	fn   func() float64
}

// Registry accumulates request observations. It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	requests  map[requestKey]float64
	durations map[routeKey]*duration
	gauges    []gauge
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		requests:  make(map[requestKey]float64),
		durations: make(map[routeKey]*duration),
	}
}

// ObserveRequest records one completed HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests[requestKey{method: method, route: route, code: status}]++

	k := routeKey{method: method, route: route}
	agg, ok := r.durations[k]
	if !ok {
		agg = &duration{}
		r.durations[k] = agg
	}
	agg.count++
	agg.sum += d.Seconds()
}

// RegisterGauge adds a gauge named todo_<name> whose value is read from fn on
// every Gather. fn must be safe to call from any goroutine.
func (r *Registry) RegisterGauge(name, help string, fn func() float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gauges = append(r.gauges, gauge{name: namespace + "_" + name, help: help, fn: fn})
}

// Gather returns every non-empty metric family, sorted by name, with metrics
// inside a family sorted by label values.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	reqs := r.requestFamily()
	durs := r.durationFamily()
	gauges := make([]gauge, len(r.gauges))
	copy(gauges, r.gauges)
	r.mu.Unlock()

	// Gauge callbacks may take other locks; call them outside r.mu.
	// The text format rejects families without samples, so empty ones are
	// left out.
	out := make([]*dto.MetricFamily, 0, 2+len(gauges))
	for _, mf := range []*dto.MetricFamily{reqs, durs} {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	for _, g := range gauges {
		out = append(out, &dto.MetricFamily{
			Name:   proto.String(g.name),
			Help:   proto.String(g.help),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(g.fn())}}},
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// ServeHTTP writes the gathered families in the Prometheus text format.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	w.WriteHeader(http.StatusOK)

	enc := expfmt.NewEncoder(w, format)
	for _, mf := range r.Gather() {
		if err := enc.Encode(mf); err != nil {
			return
		}
	}
}

// --- family builders (callers hold r.mu) ------------------------------------

func (r *Registry) requestFamily() *dto.MetricFamily {
	keys := make([]requestKey, 0, len(r.requests))
	for k := range r.requests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.route != b.route {
			return a.route < b.route
		}
		if a.method != b.method {
			return a.method < b.method
		}
		return a.code < b.code
	})

	metrics := make([]*dto.Metric, 0, len(keys))
	for _, k := range keys {
		metrics = append(metrics, &dto.Metric{
			Label: labels("code", strconv.Itoa(k.code), "method", k.method, "route", k.route),
			Counter: &dto.Counter{
				Value: proto.Float64(r.requests[k]),
			},
		})
	}
	return &dto.MetricFamily{
		Name:   proto.String(namespace + "_http_requests_total"),
		Help:   proto.String("HTTP requests served, by method, route template and status code."),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: metrics,
	}
}

func (r *Registry) durationFamily() *dto.MetricFamily {
	keys := make([]routeKey, 0, len(r.durations))
	for k := range r.durations {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].route != keys[j].route {
			return keys[i].route < keys[j].route
		}
		return keys[i].method < keys[j].method
	})

	metrics := make([]*dto.Metric, 0, len(keys))
	for _, k := range keys {
		agg := r.durations[k]
		metrics = append(metrics, &dto.Metric{
			Label: labels("method", k.method, "route", k.route),
			Summary: &dto.Summary{
				SampleCount: proto.Uint64(agg.count),
				SampleSum:   proto.Float64(agg.sum),
			},
		})
	}
	return &dto.MetricFamily{
		Name:   proto.String(namespace + "_http_request_duration_seconds"),
		Help:   proto.String("Time spent serving HTTP requests."),
		Type:   dto.MetricType_SUMMARY.Enum(),
		Metric: metrics,
	}
}

// labels builds label pairs from alternating name/value arguments.
func labels(kv ...string) []*dto.LabelPair {
	out := make([]*dto.LabelPair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, &dto.LabelPair{Name: proto.String(kv[i]), Value: proto.String(kv[i+1])})
	}
	return out
}
