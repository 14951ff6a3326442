package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/startupai/startupai-backend/internal/domain"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

// Metrics holds the process-local counters exposed in Prometheus text
// format. Disabled (nil) unless METRICS_ENABLED is set; every method is
// nil-safe so call sites never have to guard.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec

	stageAdvance   *CounterVec
	sessionStarted *Counter
	sessionDone    *Counter

	gateDecision  *CounterVec
	gateReadiness *HistogramVec

	rateLimited *CounterVec

	jobRuns    *CounterVec
	jobTime    *HistogramVec
	queueDepth *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = &Metrics{
			apiRequests: NewCounterVec("sa_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
			apiLatency: NewHistogramVec(
				"sa_api_request_duration_seconds",
				"API request latency in seconds by method/route/status.",
				[]string{"method", "route", "status"},
				[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			),
			apiInflight: NewGauge("sa_api_inflight_requests", "In-flight API requests."),
			llmRequests: NewCounterVec("sa_llm_requests_total", "Model requests by model/endpoint/status.", []string{"model", "endpoint", "status"}),
			llmLatency: NewHistogramVec(
				"sa_llm_request_duration_seconds",
				"Model request latency in seconds by model/endpoint/status.",
				[]string{"model", "endpoint", "status"},
				[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
			),
			stageAdvance: NewCounterVec(
				"sa_onboarding_stage_advance_total",
				"Onboarding stage transitions by from-stage and reason.",
				[]string{"stage", "reason"},
			),
			sessionStarted: NewCounter("sa_onboarding_sessions_started_total", "Onboarding sessions started."),
			sessionDone:    NewCounter("sa_onboarding_sessions_completed_total", "Onboarding sessions completed."),
			gateDecision: NewCounterVec(
				"sa_gate_evaluations_total",
				"Gate evaluations by validation stage and status.",
				[]string{"stage", "status"},
			),
			gateReadiness: NewHistogramVec(
				"sa_gate_readiness_score",
				"Gate readiness score distribution by validation stage.",
				[]string{"stage"},
				[]float64{0.05, 0.1, 0.2, 0.35, 0.5, 0.65, 0.8, 0.9, 0.95, 0.99, 1},
			),
			rateLimited: NewCounterVec(
				"sa_rate_limited_total",
				"Requests denied by the per-user rate limiter, by action.",
				[]string{"action"},
			),
			jobRuns: NewCounterVec(
				"sa_job_runs_total",
				"Job executions by job type and terminal status.",
				[]string{"job_type", "status"},
			),
			jobTime: NewHistogramVec(
				"sa_job_run_duration_seconds",
				"Job execution duration in seconds by job type and status.",
				[]string{"job_type", "status"},
				[]float64{0.05, 0.25, 1, 5, 15, 30, 60, 120, 300, 600},
			),
			queueDepth: NewGaugeVec("sa_job_queue_depth", "job_run rows by status.", []string{"status"}),
		}
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(model, endpoint, status)
	m.llmLatency.Observe(dur.Seconds(), model, endpoint, status)
}

func (m *Metrics) IncStageAdvance(stage int, reason string) {
	if m != nil {
		m.stageAdvance.Inc(strconv.Itoa(stage), reason)
	}
}

func (m *Metrics) IncSessionStarted() {
	if m != nil {
		m.sessionStarted.Inc()
	}
}

func (m *Metrics) IncSessionCompleted() {
	if m != nil {
		m.sessionDone.Inc()
	}
}

func (m *Metrics) ObserveGateEvaluation(stage, status string, readiness float64) {
	if m == nil {
		return
	}
	m.gateDecision.Inc(stage, status)
	m.gateReadiness.Observe(readiness, stage)
}

func (m *Metrics) IncRateLimited(action string) {
	if m != nil {
		m.rateLimited.Inc(action)
	}
}

func (m *Metrics) ObserveJobRun(jobType, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.Inc(jobType, status)
	m.jobTime.Observe(dur.Seconds(), jobType, status)
}

// StartJobQueueCollector samples job_run counts by status on a fixed
// interval so queue depth shows up on the scrape endpoint.
func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	statuses := []string{
		domain.JobStatusQueued, domain.JobStatusRunning, domain.JobStatusWaitingUser,
		domain.JobStatusSucceeded, domain.JobStatusFailed, domain.JobStatusCanceled,
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, s := range statuses {
					m.queueDepth.Set(0, s)
				}
				var rows []struct {
					Status string
					Count  int64
				}
				if err := db.WithContext(ctx).
					Model(&domain.JobRun{}).
					Select("status, count(*) as count").
					Group("status").
					Scan(&rows).Error; err != nil {
					if log != nil {
						log.Warn("metrics: job queue depth query failed", "error", err)
					}
					continue
				}
				for _, row := range rows {
					status := strings.TrimSpace(row.Status)
					if status == "" {
						status = "unknown"
					}
					m.queueDepth.Set(float64(row.Count), status)
				}
			}
		}
	}()
}

// StartServer exposes the scrape endpoint on its own listener.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.stageAdvance, m.sessionStarted, m.sessionDone,
		m.gateDecision, m.gateReadiness,
		m.rateLimited,
		m.jobRuns, m.jobTime, m.queueDepth,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 10 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}
