package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// newOfflineStore returns a store whose client never reaches a server.
// mongo.Connect does not dial, so operations that fail before I/O can be tested.
func newOfflineStore(t *testing.T) *FileStore {
	t.Helper()
	cfg := DefaultConfig("mongodb://127.0.0.1:1")
	cfg.ConnectTimeout = 200 * time.Millisecond

	store, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("mongodb://localhost:27017")
	assert.Equal(t, "csv_database", cfg.Database)
	assert.Equal(t, "files", cfg.Collection)
	assert.Equal(t, "mongodb://localhost:27017", cfg.URI)
}

func TestConnect_UsesConfiguredCollection(t *testing.T) {
	store := newOfflineStore(t)
	assert.Equal(t, "csv_database", store.collection.Database().Name())
	assert.Equal(t, "files", store.collection.Name())
}

func TestParseID(t *testing.T) {
	oid := primitive.NewObjectID()

	parsed, err := parseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)

	for _, bad := range []string{"", "123", "not-an-object-id", oid.Hex() + "00"} {
		_, err := parseID(bad)
		assert.ErrorIs(t, err, domain.ErrNotFound, bad)
	}
}

func TestFileStore_MalformedIDIsNotFound(t *testing.T) {
	store := newOfflineStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.Delete(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileStore_UnreachableServerIsStoreError(t *testing.T) {
	store := newOfflineStore(t)

	err := store.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrStore)

	_, err = store.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrStore)
}

func TestRecordBSONShape(t *testing.T) {
	mean, lo, hi := 2.0, 1.0, 3.0
	doc := &domain.FileDocument{
		ID:       "ignored",
		FileName: "data.csv",
		Content:  "a,b\n1,\n3,\n",
		Summary:  "This CSV file contains 2 rows and 2 columns.",
		Metadata: domain.Metadata{
			FileName:    "data.csv",
			UploadDate:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			RowCount:    2,
			ColumnCount: 2,
			Columns:     []string{"a", "b"},
			DataTypes:   map[string]string{"a": domain.TypeInt64, "b": domain.TypeFloat64},
			SampleRows: []map[string]any{
				{"a": int64(1), "b": nil},
				{"a": int64(3), "b": nil},
			},
			NumericColumnsStats: map[string]domain.ColumnStats{
				"a": {Mean: &mean, Min: &lo, Max: &hi},
				"b": {},
			},
		},
	}

	raw, err := bson.Marshal(toRecord(doc))
	require.NoError(t, err)

	var generic bson.M
	require.NoError(t, bson.Unmarshal(raw, &generic))
	assert.NotContains(t, generic, "_id", "empty ObjectID is omitted so the server assigns one")
	assert.Equal(t, "data.csv", generic["file_name"])

	metadata := generic["metadata"].(bson.M)
	for _, key := range []string{"file_name", "upload_date", "row_count", "column_count", "columns", "data_types", "sample_rows", "numeric_columns_stats"} {
		assert.Contains(t, metadata, key)
	}
	stats := metadata["numeric_columns_stats"].(bson.M)["b"].(bson.M)
	assert.Nil(t, stats["mean"])

	var rec fileRecord
	require.NoError(t, bson.Unmarshal(raw, &rec))
	rec.ID = primitive.NewObjectID()

	got := fromRecord(&rec)
	assert.Equal(t, rec.ID.Hex(), got.ID)
	assert.Equal(t, doc.Content, got.Content)
	assert.True(t, doc.Metadata.UploadDate.Equal(got.Metadata.UploadDate))
	assert.Equal(t, doc.Metadata.NumericColumnsStats, got.Metadata.NumericColumnsStats)
	assert.Equal(t, int64(1), got.Metadata.SampleRows[0]["a"])
	assert.Nil(t, got.Metadata.SampleRows[0]["b"])
}
