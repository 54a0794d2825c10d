package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/Team-SSOK/ssom-backend-sub001/internal/alert"
	"github.com/Team-SSOK/ssom-backend-sub001/internal/events"
)

type fakeRepo struct {
	mu sync.Mutex

	createdRecords []*alert.Record
	createErr      error

	deleted   []string
	deleteErr error

	readMarks   []string
	unreadMarks []string
	markErr     error

	listViews []alert.StatusView
	listErr   error
	lastLimit int
	lastOff   int
}

func (f *fakeRepo) CreateAlert(_ context.Context, record *alert.Record) (*alert.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdRecords = append(f.createdRecords, record)
	return &alert.Alert{
		ID:         "alert-1",
		Title:      record.Title,
		Message:    record.Message,
		Kind:       record.Kind,
		OccurredAt: record.OccurredAt,
		App:        record.App,
		Level:      record.Level,
		CreatedAt:  time.Now(),
	}, nil
}

func (f *fakeRepo) DeleteAlert(_ context.Context, alertID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, alertID)
	return nil
}

func (f *fakeRepo) MarkRead(_ context.Context, statusID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.readMarks = append(f.readMarks, statusID+"/"+userID)
	return nil
}

func (f *fakeRepo) MarkUnread(_ context.Context, statusID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.unreadMarks = append(f.unreadMarks, statusID+"/"+userID)
	return nil
}

func (f *fakeRepo) ListForUser(_ context.Context, _ string, limit, offset int) ([]alert.StatusView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.lastLimit = limit
	f.lastOff = offset
	return f.listViews, nil
}

type fakeAlertPublisher struct {
	mu        sync.Mutex
	published []*events.AlertCreated
	err       error
}

func (f *fakeAlertPublisher) PublishAlertCreated(_ context.Context, created *events.AlertCreated) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, created)
	return nil
}

type fakeTokenRegistrar struct {
	mu         sync.Mutex
	registered map[string]string
	err        error
}

func (f *fakeTokenRegistrar) Register(_ context.Context, userID, deviceToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.registered == nil {
		f.registered = make(map[string]string)
	}
	f.registered[userID] = deviceToken
	return nil
}
