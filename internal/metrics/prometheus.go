package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serenoa_assessments_total",
			Help: "Total assessments scored, by scoring path",
		},
		[]string{"path"},
	)

	AssessmentDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "serenoa_assessment_duration_seconds",
			Help:    "End-to-end assessment pipeline duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	ModelLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "serenoa_model_load_seconds",
			Help:    "Classifier artifact load duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)

	FallbackUsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "serenoa_fallback_used_total",
			Help: "Total assessments scored by the traditional fallback path",
		},
	)

	SeverityPredicted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serenoa_severity_predicted_total",
			Help: "Predicted severity labels by condition",
		},
		[]string{"condition", "label"},
	)

	ChatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serenoa_chat_messages_total",
			Help: "Chat messages processed, by role",
		},
		[]string{"role"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serenoa_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"provider", "type"},
	)

	JournalEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "serenoa_journal_entries_total",
			Help: "Total journal entries created",
		},
	)

	DirectorySearches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serenoa_directory_searches_total",
			Help: "Psychologist directory searches, by result source",
		},
		[]string{"source"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serenoa_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serenoa_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(AssessmentsTotal)
	prometheus.MustRegister(AssessmentDuration)
	prometheus.MustRegister(ModelLoadDuration)
	prometheus.MustRegister(FallbackUsed)
	prometheus.MustRegister(SeverityPredicted)
	prometheus.MustRegister(ChatMessagesTotal)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(JournalEntriesTotal)
	prometheus.MustRegister(DirectorySearches)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
