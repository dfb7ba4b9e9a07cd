package services

import (
	"fmt"
	"sync"
	"testing"

	"tubegrab/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreate(t *testing.T) {
	registry := NewRegistry()

	job := registry.Create("https://example.com/watch?v=abc", "136")

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, types.JobStatusStarting, job.Status)
	assert.Equal(t, 0.0, job.Percent)
	assert.Equal(t, "https://example.com/watch?v=abc", job.URL)
	assert.Equal(t, "136", job.FormatID)
	assert.False(t, job.CreatedAt.IsZero())

	// Ids are unique per job
	other := registry.Create("https://example.com/watch?v=def", "140")
	assert.NotEqual(t, job.ID, other.ID)
}

func TestRegistryGetUnknownJob(t *testing.T) {
	registry := NewRegistry()

	_, exists := registry.Get("no-such-job")
	assert.False(t, exists)
}

func TestRegistryProgressTransition(t *testing.T) {
	registry := NewRegistry()
	job := registry.Create("https://example.com/watch?v=abc", "136")

	snapshot, ok := registry.SetProgress(job.ID, 37, "2.1 MB/s", "00:12")
	require.True(t, ok)
	assert.Equal(t, types.JobStatusDownloading, snapshot.Status)
	assert.Equal(t, 37.0, snapshot.Percent)
	assert.Equal(t, "2.1 MB/s", snapshot.Speed)
	assert.Equal(t, "00:12", snapshot.ETA)
}

func TestRegistryPercentNeverRegresses(t *testing.T) {
	registry := NewRegistry()
	job := registry.Create("https://example.com/watch?v=abc", "136")

	_, ok := registry.SetProgress(job.ID, 50, "", "")
	require.True(t, ok)

	// A stale lower percent must not pull the job backwards
	snapshot, ok := registry.SetProgress(job.ID, 20, "", "")
	require.True(t, ok)
	assert.Equal(t, 50.0, snapshot.Percent)

	// Values above 100 are clamped
	snapshot, ok = registry.SetProgress(job.ID, 250, "", "")
	require.True(t, ok)
	assert.Equal(t, 100.0, snapshot.Percent)
}

func TestRegistryFinishedIsTerminal(t *testing.T) {
	registry := NewRegistry()
	job := registry.Create("https://example.com/watch?v=abc", "136")

	registry.SetProgress(job.ID, 88, "", "")
	snapshot, ok := registry.SetFinished(job.ID, "video.mp4")
	require.True(t, ok)
	assert.Equal(t, types.JobStatusFinished, snapshot.Status)
	assert.Equal(t, 100.0, snapshot.Percent)
	assert.Equal(t, "video.mp4", snapshot.Filename)
	require.NotNil(t, snapshot.CompletedAt)

	// No transition out of finished
	_, ok = registry.SetProgress(job.ID, 99, "", "")
	assert.False(t, ok)
	_, ok = registry.SetError(job.ID, "late failure")
	assert.False(t, ok)

	current, exists := registry.Get(job.ID)
	require.True(t, exists)
	assert.Equal(t, types.JobStatusFinished, current.Status)
	assert.Empty(t, current.Error)
}

func TestRegistryErrorIsTerminal(t *testing.T) {
	registry := NewRegistry()
	job := registry.Create("https://example.com/watch?v=abc", "136")

	registry.SetProgress(job.ID, 50, "", "")
	snapshot, ok := registry.SetError(job.ID, "network dropped")
	require.True(t, ok)
	assert.Equal(t, types.JobStatusError, snapshot.Status)
	assert.Equal(t, "network dropped", snapshot.Error)
	require.NotNil(t, snapshot.CompletedAt)

	// No transition out of error
	_, ok = registry.SetFinished(job.ID, "video.mp4")
	assert.False(t, ok)

	current, _ := registry.Get(job.ID)
	assert.Equal(t, types.JobStatusError, current.Status)
	assert.Empty(t, current.Filename)
}

func TestRegistryErrorFromStarting(t *testing.T) {
	registry := NewRegistry()
	job := registry.Create("https://example.com/watch?v=abc", "136")

	snapshot, ok := registry.SetError(job.ID, "unreachable before first byte")
	require.True(t, ok)
	assert.Equal(t, types.JobStatusError, snapshot.Status)
	assert.Equal(t, 0.0, snapshot.Percent)
}

func TestRegistryList(t *testing.T) {
	registry := NewRegistry()
	registry.Create("https://example.com/a", "136")
	registry.Create("https://example.com/b", "140")

	jobs := registry.List()
	assert.Len(t, jobs, 2)
}

// TestRegistryConcurrentJobs exercises independent writers on independent
// jobs racing with readers across all jobs.
func TestRegistryConcurrentJobs(t *testing.T) {
	registry := NewRegistry()

	const numJobs = 16
	ids := make([]string, numJobs)
	for i := range ids {
		ids[i] = registry.Create(fmt.Sprintf("https://example.com/%d", i), "136").ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for p := 1; p <= 100; p++ {
				registry.SetProgress(id, float64(p), "", "")
			}
			registry.SetFinished(id, "video.mp4")
		}(id)

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if job, ok := registry.Get(id); ok {
					// A snapshot must never be half-applied
					if job.Status == types.JobStatusFinished {
						assert.Equal(t, 100.0, job.Percent)
						assert.Equal(t, "video.mp4", job.Filename)
					}
				}
				registry.List()
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		job, exists := registry.Get(id)
		require.True(t, exists)
		assert.Equal(t, types.JobStatusFinished, job.Status)
		assert.Equal(t, 100.0, job.Percent)
	}
}
