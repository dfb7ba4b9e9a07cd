package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tubegrab/extractor"
	"tubegrab/types"
	"tubegrab/websocket"
)

// Orchestrator exposes the public download operations: probe a URL for
// formats, or enqueue a background download whose progress fans out over the
// hub.
type Orchestrator interface {
	Probe(ctx context.Context, url string) (*types.MediaInfo, error)
	Enqueue(url, formatID string) (types.DownloadJob, error)
}

type orchestrator struct {
	registry  Registry
	hub       websocket.Hub
	extractor extractor.Extractor

	// sem bounds concurrent transfers when configured; nil means unbounded,
	// which is the default.
	sem chan struct{}
}

// NewOrchestrator wires the registry, hub and extractor together.
// maxConcurrent <= 0 leaves the number of in-flight transfers unbounded.
func NewOrchestrator(registry Registry, hub websocket.Hub, ex extractor.Extractor, maxConcurrent int) Orchestrator {
	o := &orchestrator{
		registry:  registry,
		hub:       hub,
		extractor: ex,
	}
	if maxConcurrent > 0 {
		o.sem = make(chan struct{}, maxConcurrent)
	}
	return o
}

// Probe delegates to the extractor. Extraction failures propagate unchanged.
func (o *orchestrator) Probe(ctx context.Context, url string) (*types.MediaInfo, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &ValidationError{Field: "url", Reason: "must not be empty"}
	}
	return o.extractor.Probe(ctx, url)
}

// Enqueue registers a job and starts its transfer in the background. It
// returns as soon as the job exists; progress is delivered only through the
// hub.
func (o *orchestrator) Enqueue(url, formatID string) (types.DownloadJob, error) {
	if strings.TrimSpace(url) == "" {
		return types.DownloadJob{}, &ValidationError{Field: "url", Reason: "must not be empty"}
	}
	if strings.TrimSpace(formatID) == "" {
		return types.DownloadJob{}, &ValidationError{Field: "format_id", Reason: "must not be empty"}
	}

	job := o.registry.Create(url, formatID)
	o.hub.Publish(messageFor(job, "status", ""))

	go o.run(job.ID, url, formatID)

	return job, nil
}

// run drives one download to a terminal state. It is the only writer for its
// job. Extractor failures never propagate to a caller; they become the job's
// terminal error event.
func (o *orchestrator) run(jobID, url, formatID string) {
	if o.sem != nil {
		o.sem <- struct{}{}
		defer func() { <-o.sem }()
	}

	filename, err := o.extractor.Download(context.Background(), url, formatID, func(percent float64, speed, eta string) {
		if snapshot, ok := o.registry.SetProgress(jobID, percent, speed, eta); ok {
			o.hub.Publish(messageFor(snapshot, "progress", ""))
		}
	})

	if err != nil {
		log.Printf("job %s failed: %v", jobID, err)
		if snapshot, ok := o.registry.SetError(jobID, err.Error()); ok {
			o.hub.Publish(messageFor(snapshot, "error", err.Error()))
		}
		return
	}

	log.Printf("job %s completed: %s", jobID, filename)
	if snapshot, ok := o.registry.SetFinished(jobID, filename); ok {
		o.hub.Publish(messageFor(snapshot, "complete", fmt.Sprintf("%s download completed", filename)))
	}
}

// messageFor builds the push-channel payload for a job snapshot.
func messageFor(job types.DownloadJob, msgType, message string) types.ProgressMessage {
	return types.ProgressMessage{
		JobID:     job.ID,
		Type:      msgType,
		Status:    job.Status,
		Percent:   job.Percent,
		Speed:     job.Speed,
		ETA:       job.ETA,
		Filename:  job.Filename,
		Message:   message,
		Timestamp: time.Now(),
	}
}
