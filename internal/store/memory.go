package store

import (
	"errors"
	"sync"
	"time"

	"github.com/AngelCh415/GA4_REPORT/internal/report"
)

var ErrNoReport = errors.New("no report uploaded yet")

// Upload is the report of the last processed file.
type Upload struct {
	Source     string
	UploadedAt time.Time
	Report     *report.Report
}

// MemoryStore keeps only the latest upload; each Put discards the previous one.
type MemoryStore struct {
	mu  sync.RWMutex
	cur *Upload
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Put(source string, r *report.Report) Upload {
	u := &Upload{Source: source, UploadedAt: s.now().UTC(), Report: r}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = u
	return *u
}

func (s *MemoryStore) Current() (Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Upload{}, ErrNoReport
	}
	return *s.cur, nil
}
