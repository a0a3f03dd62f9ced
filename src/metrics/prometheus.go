// Package metrics contains support for reporting metrics about a run to Prometheus.
// Because the analysis tool runs as a transient process we can't wait around for
// Prometheus to scrape us, so we push to a pushgateway instead.
package metrics

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/thought-machine/analysis/src/cli/logging"
	"github.com/thought-machine/analysis/src/issues"
)

var log = logging.Log

// jobName is the job that metrics are pushed under.
const jobName = "analysis"

const defaultTimeout = 5 * time.Second

// Metrics records metrics about parsing inputs.
// All its methods are safe for concurrent use, and are no-ops on a nil *Metrics.
type Metrics struct {
	url            string
	timeout        time.Duration
	registry       *prometheus.Registry
	client         *retryablehttp.Client
	issueCounter   *prometheus.CounterVec
	failureCounter *prometheus.CounterVec
	inputHistogram *prometheus.HistogramVec
	mutex          sync.Mutex
	newMetrics     bool
	pushes         int
}

// New creates a new Metrics which pushes to the given URL.
// customLabels maps label names to commands; each command is run once now and its output
// becomes the value of that label on every metric.
func New(url string, timeout time.Duration, customLabels map[string]string) (*Metrics, error) {
	u, err := user.Current()
	if err != nil {
		log.Warning("Can't determine current user name for metrics")
		u = &user.User{Username: "unknown"}
	}
	constLabels := prometheus.Labels{
		"user": u.Username,
		"arch": runtime.GOOS + "_" + runtime.GOARCH,
	}
	for k, v := range customLabels {
		value, err := deriveLabelValue(v)
		if err != nil {
			return nil, err
		}
		constLabels[k] = value
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 2
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.HTTPClient.Timeout = timeout

	m := &Metrics{
		url:      url,
		timeout:  timeout,
		registry: prometheus.NewRegistry(),
		client:   client,
	}

	// Count of issues found, by parser & priority.
	m.issueCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "analysis_issues_total",
		Help:        "Count of issues found in tool output",
		ConstLabels: constLabels,
	}, []string{"parser", "priority"})

	// Count of inputs we failed to read.
	m.failureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "analysis_parse_failures_total",
		Help:        "Count of inputs that could not be parsed",
		ConstLabels: constLabels,
	}, []string{"parser"})

	// Time taken to parse each input.
	m.inputHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "analysis_parse_duration_seconds",
		Help:        "Durations of parsing individual inputs",
		Buckets:     prometheus.ExponentialBuckets(0.001, 2, 16),
		ConstLabels: constLabels,
	}, []string{"parser"})

	m.registry.MustRegister(m.issueCounter, m.failureCounter, m.inputHistogram)
	return m, nil
}

// Record records the results of successfully parsing one input.
func (m *Metrics) Record(parserID string, is *issues.Issues, duration time.Duration) {
	if m == nil {
		return
	}
	for _, prio := range issues.Priorities() {
		if n := is.SizeOf(prio); n > 0 {
			m.issueCounter.WithLabelValues(parserID, strings.ToLower(prio.String())).Add(float64(n))
		}
	}
	m.inputHistogram.WithLabelValues(parserID).Observe(duration.Seconds())
	m.markNew()
}

// RecordFailure records a failure to parse one input.
func (m *Metrics) RecordFailure(parserID string, duration time.Duration) {
	if m == nil {
		return
	}
	m.failureCounter.WithLabelValues(parserID).Inc()
	m.inputHistogram.WithLabelValues(parserID).Observe(duration.Seconds())
	m.markNew()
}

func (m *Metrics) markNew() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.newMetrics = true
}

// Push sends any new metrics to the pushgateway.
// It does nothing if there's no URL or nothing has been recorded since the last push.
func (m *Metrics) Push() error {
	if m == nil || m.url == "" {
		return nil
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if !m.newMetrics {
		return nil
	}
	start := time.Now()
	hostname, _ := os.Hostname()
	pusher := push.New(m.url, jobName).
		Gatherer(m.registry).
		Grouping("instance", hostname).
		Client(m.client.StandardClient())
	if err := deadline(pusher.Add, m.timeout); err != nil {
		return fmt.Errorf("could not push metrics to %s: %w", m.url, err)
	}
	m.newMetrics = false
	m.pushes++
	log.Debug("Push #%d of metrics in %0.3fs", m.pushes, time.Since(start).Seconds())
	return nil
}

// deadline applies a deadline to an arbitrary function and returns when either the function
// completes or the deadline expires.
func deadline(f func() error, timeout time.Duration) error {
	c := make(chan error, 1)
	go func() {
		c <- f()
	}()
	select {
	case err := <-c:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("metrics push timed out")
	}
}

// deriveLabelValue runs a command and returns its output.
func deriveLabelValue(cmd string) (string, error) {
	parts, err := shlex.Split(cmd)
	if err != nil {
		return "", fmt.Errorf("invalid custom metric command [%s]: %w", cmd, err)
	} else if len(parts) == 0 {
		return "", fmt.Errorf("empty custom metric command")
	}
	log.Debug("Running custom label command: %s", cmd)
	b, err := exec.Command(parts[0], parts[1:]...).Output()
	if err != nil {
		return "", fmt.Errorf("custom metric command [%s] failed: %w", cmd, err)
	}
	value := strings.TrimSpace(string(b))
	if strings.Contains(value, "\n") {
		return "", fmt.Errorf("return value of custom metric command [%s] contains newlines: %s", cmd, value)
	}
	return value, nil
}
