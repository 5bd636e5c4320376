package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/serenoa/backend/pkg/logger"
)

type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

// EntryVector is one journal entry's embedding, keyed by the entry ID so
// similarity hits can be resolved back to sqlite rows.
type EntryVector struct {
	EntryID   string
	UserID    string
	Embedding []float32
	CreatedAt time.Time
}

type SimilarEntry struct {
	EntryID string
	Score   float32
}

func NewClient(endpoint, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(
		context.Background(),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Journal entry embeddings",
		Fields: []*entity.Field{
			{
				Name:       "entry_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "user_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "created_at",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, _ := entity.NewIndexIvfFlat(entity.L2, 1024)
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

func (m *Client) Insert(ctx context.Context, v EntryVector) error {
	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("entry_id", []string{v.EntryID}),
		entity.NewColumnVarChar("user_id", []string{v.UserID}),
		entity.NewColumnFloatVector("embedding", m.vectorDim, [][]float32{v.Embedding}),
		entity.NewColumnInt64("created_at", []int64{v.CreatedAt.Unix()}),
	)

	if err != nil {
		return fmt.Errorf("failed to insert entry vector: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Debug("Entry vector inserted", zap.String("entry_id", v.EntryID))

	return nil
}

func (m *Client) Delete(ctx context.Context, entryID string) error {
	expr := fmt.Sprintf(`entry_id == "%s"`, entryID)
	err := m.client.Delete(ctx, m.collectionName, "", expr)
	if err != nil {
		return fmt.Errorf("failed to delete entry vector: %w", err)
	}
	return nil
}

// SearchSimilar returns the user's nearest journal entries for the given
// embedding, excluding nothing; callers filter out the query entry itself.
func (m *Client) SearchSimilar(ctx context.Context, userID string, embedding []float32, topK int) ([]SimilarEntry, error) {
	expr := fmt.Sprintf(`user_id == "%s"`, userID)

	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		expr,
		[]string{"entry_id"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SimilarEntry, 0)
	for _, sr := range searchResult {
		idCol := sr.Fields.GetColumn("entry_id")
		for i := 0; i < sr.ResultCount; i++ {
			id, _ := idCol.Get(i)
			results = append(results, SimilarEntry{
				EntryID: id.(string),
				Score:   sr.Scores[i],
			})
		}
	}

	logger.Debug("Similarity search completed",
		zap.String("user_id", userID),
		zap.Int("results", len(results)),
	)

	return results, nil
}
