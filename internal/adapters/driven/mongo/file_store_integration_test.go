package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/custodia-labs/csvrag/internal/core/domain"
)

// newIntegrationStore connects to CSVRAG_TEST_MONGODB_URL and uses a
// throwaway collection that is dropped when the test ends
func newIntegrationStore(t *testing.T) *FileStore {
	t.Helper()
	uri := os.Getenv("CSVRAG_TEST_MONGODB_URL")
	if uri == "" || testing.Short() {
		t.Skip("set CSVRAG_TEST_MONGODB_URL to run MongoDB integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := DefaultConfig(uri)
	cfg.Collection = "files_test_" + primitive.NewObjectID().Hex()
	store, err := Connect(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))

	t.Cleanup(func() {
		_ = store.collection.Drop(context.Background())
		_ = store.Close()
	})
	return store
}

func integrationDocument(name string) *domain.FileDocument {
	mean, lo, hi := 2.0, 1.0, 3.0
	return &domain.FileDocument{
		FileName: name,
		Content:  "n,x\n1,1.5\n3,\n",
		Summary:  "This CSV file contains 2 rows and 2 columns.",
		Metadata: domain.Metadata{
			FileName:    name,
			UploadDate:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			RowCount:    2,
			ColumnCount: 2,
			Columns:     []string{"n", "x"},
			DataTypes:   map[string]string{"n": domain.TypeInt64, "x": domain.TypeFloat64},
			SampleRows: []map[string]any{
				{"n": int64(9007199254740993), "x": 1.5},
				{"n": int64(3), "x": nil},
			},
			NumericColumnsStats: map[string]domain.ColumnStats{
				"n": {Mean: &mean, Min: &lo, Max: &hi},
				"x": {},
			},
		},
	}
}

func TestIntegration_FileStoreRoundTrip(t *testing.T) {
	store := newIntegrationStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, integrationDocument("sales.csv"))
	require.NoError(t, err)

	files, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, &domain.FileSummary{ID: id, FileName: "sales.csv"}, files[0])

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "n,x\n1,1.5\n3,\n", got.Content)
	assert.True(t, got.Metadata.UploadDate.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, got.Metadata.UploadDate.Location())
	assert.Equal(t, int64(9007199254740993), got.Metadata.SampleRows[0]["n"])
	assert.Equal(t, 1.5, got.Metadata.SampleRows[0]["x"])
	assert.Nil(t, got.Metadata.SampleRows[1]["x"])
	assert.Equal(t, 2.0, *got.Metadata.NumericColumnsStats["n"].Mean)
	assert.False(t, got.Metadata.NumericColumnsStats["x"].Complete())

	require.NoError(t, store.Delete(ctx, id))
	assert.ErrorIs(t, store.Delete(ctx, id), domain.ErrNotFound)

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	files, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestIntegration_UnknownIDIsNotFound(t *testing.T) {
	store := newIntegrationStore(t)

	_, err := store.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
