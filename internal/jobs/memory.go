// Package jobs provides the injectable job-status stores. The pipeline only
// talks to ports.JobStore; nothing here is process-global.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pulsecut/pulsecut/internal/types"
)

// MemoryStore keeps job records in a mutex-guarded map. Suitable for
// single-process use and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]types.JobRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]types.JobRecord)}
}

func (s *MemoryStore) Create(_ context.Context, job types.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	now := time.Now().UTC()
	job.Status = types.JobQueued
	job.CreatedAt = now
	job.UpdatedAt = now
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id string, status types.JobStatus, progress int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	job.Status = status
	job.Progress = progress
	job.Message = message
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

func (s *MemoryStore) Complete(_ context.Context, id string, manifest types.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	job.Status = types.JobCompleted
	job.Progress = 100
	job.Message = fmt.Sprintf("completed with %d clips", len(manifest.Clips))
	job.Manifest = &manifest
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

func (s *MemoryStore) Fail(_ context.Context, id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	job.Status = types.JobFailed
	job.Message = message
	job.UpdatedAt = time.Now().UTC()
	s.jobs[id] = job
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (types.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return types.JobRecord{}, fmt.Errorf("job %s not found", id)
	}
	return job, nil
}
