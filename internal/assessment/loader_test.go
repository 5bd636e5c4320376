package assessment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenoa/backend/pkg/config"
)

func writeArtifactFiles(t *testing.T, artifact *Artifact, scaler *Scaler) (string, string) {
	t.Helper()
	dir := t.TempDir()

	artifactPath := filepath.Join(dir, "classifier.json")
	data, err := json.Marshal(artifact)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(artifactPath, data, 0o644))

	scalerPath := filepath.Join(dir, "scaler.json")
	data, err = json.Marshal(scaler)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(scalerPath, data, 0o644))

	return artifactPath, scalerPath
}

func TestLoader_LoadsAndCaches(t *testing.T) {
	artifactPath, scalerPath := writeArtifactFiles(t, combinedArtifact(), identityScaler())

	l := NewLoader(config.ModelConfig{
		ArtifactSource: artifactPath,
		ScalerSource:   scalerPath,
		SchemaVersion:  1,
		LoadTimeoutSec: 5,
	})

	first, err := l.Model(context.Background())
	require.NoError(t, err)

	// Deleting the files must not matter: the classifier is resident now.
	require.NoError(t, os.Remove(artifactPath))
	require.NoError(t, os.Remove(scalerPath))

	second, err := l.Model(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoader_MissingArtifactIsRecoverable(t *testing.T) {
	_, scalerPath := writeArtifactFiles(t, combinedArtifact(), identityScaler())

	l := NewLoader(config.ModelConfig{
		ArtifactSource: filepath.Join(t.TempDir(), "nope.json"),
		ScalerSource:   scalerPath,
		SchemaVersion:  1,
		LoadTimeoutSec: 5,
	})

	_, err := l.Model(context.Background())
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestLoader_SchemaMismatchIsNotRecoverable(t *testing.T) {
	artifact := combinedArtifact()
	artifact.SchemaVersion = 2
	scaler := identityScaler()
	scaler.SchemaVersion = 2

	artifactPath, scalerPath := writeArtifactFiles(t, artifact, scaler)

	l := NewLoader(config.ModelConfig{
		ArtifactSource: artifactPath,
		ScalerSource:   scalerPath,
		SchemaVersion:  1,
		LoadTimeoutSec: 5,
	})

	_, err := l.Model(context.Background())
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.NotErrorIs(t, err, ErrModelUnavailable)
}

func TestLoader_FailedLoadIsNotCached(t *testing.T) {
	dir := t.TempDir()
	artifactPath := filepath.Join(dir, "classifier.json")
	scalerPath := filepath.Join(dir, "scaler.json")

	scalerData, err := json.Marshal(identityScaler())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(scalerPath, scalerData, 0o644))
	require.NoError(t, os.WriteFile(artifactPath, []byte("not json"), 0o644))

	l := NewLoader(config.ModelConfig{
		ArtifactSource: artifactPath,
		ScalerSource:   scalerPath,
		SchemaVersion:  1,
		LoadTimeoutSec: 5,
	})

	_, err = l.Model(context.Background())
	require.ErrorIs(t, err, ErrModelUnavailable)

	artifactData, err := json.Marshal(combinedArtifact())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(artifactPath, artifactData, 0o644))

	model, err := l.Model(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, model)
}

func TestLoader_HTTPSources(t *testing.T) {
	artifactData, err := json.Marshal(splitArtifact())
	require.NoError(t, err)
	scalerData, err := json.Marshal(identityScaler())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/classifier.json":
			w.Write(artifactData)
		case "/scaler.json":
			w.Write(scalerData)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	l := NewLoader(config.ModelConfig{
		ArtifactSource: srv.URL + "/classifier.json",
		ScalerSource:   srv.URL + "/scaler.json",
		SchemaVersion:  1,
		LoadTimeoutSec: 5,
	})

	model, err := l.Model(context.Background())
	require.NoError(t, err)
	require.NotNil(t, model.Scaler())

	raw, err := model.Predict(make([]float64, FeatureCount))
	require.NoError(t, err)
	assert.Len(t, raw.Split, 3)
}
