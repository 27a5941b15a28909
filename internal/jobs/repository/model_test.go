package repository

import (
	"testing"
	"time"

	"github.com/Mantequilla-Soft/monitor-3speak-tv/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func rawValue(t *testing.T, v interface{}) bson.RawValue {
	t.Helper()
	doc, err := bson.Marshal(bson.M{"v": v})
	require.NoError(t, err)
	return bson.Raw(doc).Lookup("v")
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want models.JobStatus
	}{
		{"canonical completed", "completed", models.JobStatusCompleted},
		{"legacy complete spelling", "complete", models.JobStatusCompleted},
		{"missing status defaults to pending", "", models.JobStatusPending},
		{"running passes through", "running", models.JobStatusRunning},
		{"failed passes through", "failed", models.JobStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeStatus(tt.in))
		})
	}
}

func TestNormalizeProgress(t *testing.T) {
	t.Run("structured progress document", func(t *testing.T) {
		p := normalizeProgress(rawValue(t, bson.M{"download_pct": 100.0, "pct": 40.0}))
		require.NotNil(t, p)
		assert.Equal(t, 100.0, p.DownloadPct)
		assert.Equal(t, 40.0, p.Pct)
	})

	t.Run("legacy numeric progress", func(t *testing.T) {
		p := normalizeProgress(rawValue(t, 75.0))
		require.NotNil(t, p)
		assert.Equal(t, 75.0, p.Pct)
		assert.Equal(t, 75.0, p.DownloadPct)
	})

	t.Run("legacy int progress", func(t *testing.T) {
		p := normalizeProgress(rawValue(t, int32(50)))
		require.NotNil(t, p)
		assert.Equal(t, 50.0, p.Pct)
	})

	t.Run("absent progress", func(t *testing.T) {
		assert.Nil(t, normalizeProgress(bson.RawValue{}))
	})
}

func TestFromJobModel(t *testing.T) {
	created := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("external id preferred over store id", func(t *testing.T) {
		m := &jobModel{
			OID:       bson.NewObjectID(),
			ID:        "job-abc",
			Status:    "pending",
			CreatedAt: created,
		}
		j := fromJobModel(m)
		assert.Equal(t, "job-abc", j.ID)
	})

	t.Run("store id exposed as plain hex string", func(t *testing.T) {
		oid := bson.NewObjectID()
		m := &jobModel{OID: oid, Status: "pending", CreatedAt: created}
		j := fromJobModel(m)
		assert.Equal(t, oid.Hex(), j.ID)
	})

	t.Run("missing optional fields get defaults", func(t *testing.T) {
		m := &jobModel{ID: "job-1", Status: "complete", CreatedAt: created}
		j := fromJobModel(m)
		assert.Equal(t, models.JobStatusCompleted, j.Status)
		assert.Equal(t, models.JobMetadata{}, j.Metadata)
		assert.Equal(t, models.JobInput{}, j.Input)
		assert.Nil(t, j.Progress)
		assert.Nil(t, j.Result)
	})

	t.Run("populated document carries through", func(t *testing.T) {
		assigned := created.Add(time.Minute)
		m := &jobModel{
			ID:            "job-2",
			Status:        "running",
			CreatedAt:     created,
			AssignedTo:    "did:key:z6MkEncoder",
			AssignedDate:  &assigned,
			Metadata:      &models.JobMetadata{VideoOwner: "alice", VideoPermlink: "my-video"},
			Input:         &models.JobInput{URI: "ipfs://Qm123", Size: 1024},
			ServicedByAid: true,
		}
		j := fromJobModel(m)
		assert.Equal(t, "did:key:z6MkEncoder", j.AssignedTo)
		assert.Equal(t, "alice", j.Metadata.VideoOwner)
		assert.Equal(t, int64(1024), j.Input.Size)
		assert.True(t, j.ServicedByAid)
	})
}

func TestIDFilter(t *testing.T) {
	t.Run("non-hex id matches external id only", func(t *testing.T) {
		f := idFilter("job-abc")
		or, ok := f["$or"].(bson.A)
		require.True(t, ok)
		assert.Len(t, or, 1)
		assert.Equal(t, bson.M{"id": "job-abc"}, or[0])
	})

	t.Run("hex id matches either convention", func(t *testing.T) {
		oid := bson.NewObjectID()
		f := idFilter(oid.Hex())
		or, ok := f["$or"].(bson.A)
		require.True(t, ok)
		require.Len(t, or, 2)
		assert.Equal(t, bson.M{"id": oid.Hex()}, or[0])
		assert.Equal(t, bson.M{"_id": oid}, or[1])
	})
}
