package vectorstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/sirupsen/logrus"

	"gopherai-docqa/internal/apperror"
)

const (
	FieldID        = "id"
	FieldEmbedding = "embedding"

	DefaultCollection = "document_embeddings"
	idMaxLength       = 64
)

// Gateway is the subset of the Milvus client the index needs.
type Gateway interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	Upsert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Delete(ctx context.Context, collName string, partitionName string, expr string) error
}

var _ Gateway = (client.Client)(nil)

// Index stores one embedding per document, keyed by the document id.
type Index struct {
	gw         Gateway
	collection string
	dim        int

	mu    sync.Mutex
	ready bool
}

func NewIndex(gw Gateway, collection string, dim int) *Index {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Index{gw: gw, collection: collection, dim: dim}
}

func (i *Index) Collection() string {
	return i.collection
}

// Ensure creates, indexes and loads the collection if needed. Safe to call
// repeatedly; after the first success it is a no-op.
func (i *Index) Ensure(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.ready {
		return nil
	}

	exists, err := i.gw.HasCollection(ctx, i.collection)
	if err != nil {
		return apperror.Wrap(apperror.EmbeddingStorage, fmt.Errorf("check collection %s failed: %w", i.collection, err))
	}
	if !exists {
		if err := i.gw.CreateCollection(ctx, i.schema(), entity.DefaultShardNumber); err != nil {
			return apperror.Wrap(apperror.EmbeddingStorage, fmt.Errorf("create collection %s failed: %w", i.collection, err))
		}
		idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			return apperror.Wrap(apperror.EmbeddingStorage, fmt.Errorf("build index failed: %w", err))
		}
		if err := i.gw.CreateIndex(ctx, i.collection, FieldEmbedding, idx, false); err != nil {
			return apperror.Wrap(apperror.EmbeddingStorage, fmt.Errorf("create index on %s failed: %w", FieldEmbedding, err))
		}
		logrus.WithField("collection", i.collection).Info("vector collection created")
	}
	if err := i.gw.LoadCollection(ctx, i.collection, false); err != nil {
		return apperror.Wrap(apperror.EmbeddingStorage, fmt.Errorf("load collection %s failed: %w", i.collection, err))
	}

	i.ready = true
	return nil
}

// Upsert writes the vector for documentID, replacing any previous one.
func (i *Index) Upsert(ctx context.Context, documentID uint, vector []float32) error {
	if i.dim > 0 && len(vector) != i.dim {
		return apperror.Wrap(apperror.EmbeddingStorage,
			fmt.Errorf("vector dimension %d, want %d", len(vector), i.dim))
	}
	if err := i.Ensure(ctx); err != nil {
		return err
	}

	idCol := entity.NewColumnVarChar(FieldID, []string{vectorKey(documentID)})
	vecCol := entity.NewColumnFloatVector(FieldEmbedding, len(vector), [][]float32{vector})
	if _, err := i.gw.Upsert(ctx, i.collection, "", idCol, vecCol); err != nil {
		return apperror.Wrap(apperror.EmbeddingStorage, fmt.Errorf("upsert vector %d failed: %w", documentID, err))
	}
	return nil
}

// Delete removes the vector for documentID. Deleting a missing id is not an error.
func (i *Index) Delete(ctx context.Context, documentID uint) error {
	if err := i.Ensure(ctx); err != nil {
		return err
	}
	expr := fmt.Sprintf("%s in [%q]", FieldID, vectorKey(documentID))
	if err := i.gw.Delete(ctx, i.collection, "", expr); err != nil {
		return apperror.Wrap(apperror.EmbeddingStorage, fmt.Errorf("delete vector %d failed: %w", documentID, err))
	}
	return nil
}

// Ping reports whether the collection is reachable.
func (i *Index) Ping(ctx context.Context) error {
	if _, err := i.gw.HasCollection(ctx, i.collection); err != nil {
		return fmt.Errorf("milvus unreachable: %w", err)
	}
	return nil
}

func (i *Index) schema() *entity.Schema {
	return entity.NewSchema().
		WithName(i.collection).
		WithDescription("one embedding per uploaded document").
		WithField(entity.NewField().
			WithName(FieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithIsPrimaryKey(true).
			WithMaxLength(idMaxLength)).
		WithField(entity.NewField().
			WithName(FieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(i.dim)))
}

func vectorKey(documentID uint) string {
	return strconv.FormatUint(uint64(documentID), 10)
}
