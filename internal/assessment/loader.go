package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/serenoa/backend/internal/metrics"
	"github.com/serenoa/backend/pkg/config"
	"github.com/serenoa/backend/pkg/logger"
	"github.com/serenoa/backend/pkg/retry"
)

// ModelProvider hands out the resident classifier. The pipeline takes this
// interface rather than the loader itself so tests can inject fakes.
type ModelProvider interface {
	Model(ctx context.Context) (Model, error)
}

// Loader lazily loads the classifier artifact and scaler parameters from
// their static sources. First call loads, subsequent calls reuse; a failed
// load is not cached, so the next request retries.
type Loader struct {
	artifactSource string
	scalerSource   string
	schemaVersion  int
	timeout        time.Duration
	retryConfig    retry.Config
	httpClient     *http.Client

	mu     sync.Mutex
	cached *Classifier
}

func NewLoader(cfg config.ModelConfig) *Loader {
	timeout := time.Duration(cfg.LoadTimeoutSec) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	return &Loader{
		artifactSource: cfg.ArtifactSource,
		scalerSource:   cfg.ScalerSource,
		schemaVersion:  cfg.SchemaVersion,
		timeout:        timeout,
		retryConfig:    retryConfig,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

func (l *Loader) Model(ctx context.Context) (Model, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()

	// The artifact and the scaler are independent read-only resources; fetch
	// them concurrently and wait for both.
	type fetched struct {
		name string
		data []byte
		err  error
	}
	results := make(chan fetched, 2)

	go func() {
		data, err := l.fetch(ctx, l.artifactSource)
		results <- fetched{name: "artifact", data: data, err: err}
	}()
	go func() {
		data, err := l.fetch(ctx, l.scalerSource)
		results <- fetched{name: "scaler", data: data, err: err}
	}()

	var artifactData, scalerData []byte
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err != nil {
			return nil, fmt.Errorf("%w: failed to load %s: %v", ErrModelUnavailable, r.name, r.err)
		}
		if r.name == "artifact" {
			artifactData = r.data
		} else {
			scalerData = r.data
		}
	}

	var artifact Artifact
	if err := json.Unmarshal(artifactData, &artifact); err != nil {
		return nil, fmt.Errorf("%w: failed to parse artifact: %v", ErrModelUnavailable, err)
	}

	var scaler Scaler
	if err := json.Unmarshal(scalerData, &scaler); err != nil {
		return nil, fmt.Errorf("%w: failed to parse scaler: %v", ErrModelUnavailable, err)
	}

	classifier, err := newClassifier(&artifact, &scaler, l.schemaVersion)
	if err != nil {
		// Schema mismatches are deployment bugs, not transient failures, and
		// must not be masked behind the fallback path.
		return nil, err
	}

	l.cached = classifier

	metrics.ModelLoadDuration.Observe(time.Since(start).Seconds())
	logger.Info("Classifier loaded",
		zap.String("artifact", l.artifactSource),
		zap.Int("schema_version", l.schemaVersion),
		zap.String("layout", artifact.OutputLayout),
		zap.Duration("elapsed", time.Since(start)),
	)

	return classifier, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return retry.DoWithResult(ctx, l.retryConfig, func() ([]byte, error) {
			return l.fetchHTTP(ctx, source)
		})
	}
	return os.ReadFile(source)
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
