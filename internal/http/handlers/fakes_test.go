package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"portal/internal/domain"
)

type statusUpdate struct {
	id            string
	status        domain.TaskStatus
	revisionCycle int
	expectedCycle int
	req           *domain.RevisionRequest
}

// fakeTaskRepo is an in-memory task store. GetByID returns copies so handler
// mutations never leak into the stored state before UpdateStatus.
type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   map[string]*domain.Task
	updates []statusUpdate
}

func newFakeTaskRepo(tasks ...*domain.Task) *fakeTaskRepo {
	repo := &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
	for _, task := range tasks {
		repo.tasks[task.ID] = task
	}
	return repo
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *task
	copied.AssetVersions = append([]domain.AssetVersion(nil), task.AssetVersions...)
	copied.RevisionHistory = append([]domain.RevisionRequest(nil), task.RevisionHistory...)
	return &copied, nil
}

func (f *fakeTaskRepo) UpdateStatus(_ context.Context, id string, status domain.TaskStatus, revisionCycle, expectedCycle int, req *domain.RevisionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	if task.RevisionCycle != expectedCycle {
		return &domain.StaleTaskError{TaskID: id}
	}
	task.Status = status
	task.RevisionCycle = revisionCycle
	if req != nil {
		task.RevisionHistory = append(task.RevisionHistory, *req)
	}
	f.updates = append(f.updates, statusUpdate{id: id, status: status, revisionCycle: revisionCycle, expectedCycle: expectedCycle, req: req})
	return nil
}

type fakeAssetRepo struct {
	mu       sync.Mutex
	versions map[string][]domain.AssetVersion
}

func newFakeAssetRepo() *fakeAssetRepo {
	return &fakeAssetRepo{versions: make(map[string][]domain.AssetVersion)}
}

func (f *fakeAssetRepo) RegisterVersion(_ context.Context, taskID string, version *domain.AssetVersion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.versions[taskID]

	// The store owns numbering; recompute from the persisted lineage the way
	// the Postgres repository does.
	next := 1
	for _, v := range stored {
		if v.FolderCategory == version.FolderCategory && v.VersionNumber >= next {
			next = v.VersionNumber + 1
		}
	}
	version.VersionNumber = next

	for i := range stored {
		if stored[i].FolderCategory == version.FolderCategory && stored[i].IsActive {
			stored[i].IsActive = false
			at := version.UploadedAt
			stored[i].SupersededAt = &at
			stored[i].SupersededBy = version.ID
		}
	}
	f.versions[taskID] = append(stored, *version)
	return nil
}

func (f *fakeAssetRepo) ListByTaskID(_ context.Context, taskID string) ([]domain.AssetVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AssetVersion(nil), f.versions[taskID]...), nil
}

type fakeAuditLog struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (f *fakeAuditLog) Record(_ context.Context, event domain.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
