package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portal/internal/domain"
)

func postUpload(t *testing.T, app *App, taskID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/v1/tasks/"+taskID+"/uploads", strings.NewReader(body))
	req = withURLParam(req, "id", taskID)
	rr := httptest.NewRecorder()
	app.UploadNotify(rr, req)
	return rr
}

func TestUploadNotifySupersedesPriorVersion(t *testing.T) {
	task := &domain.Task{ID: "task-1", Status: domain.TaskStatusInQC, OriginRole: domain.RoleEditor}
	app, _ := newTestApp(newFakeTaskRepo(task))

	rr := postUpload(t, app, "task-1",
		`{"folder_category":"thumbnails","file_id":"f1","display_name":"thumb_a.png","mime_type":"image/png","size_bytes":2048,"uploaded_by":"editor-1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first upload: %d body %s", rr.Code, rr.Body.String())
	}
	var first map[string]any
	json.NewDecoder(rr.Body).Decode(&first)
	if first["version_number"] != float64(1) || first["is_active"] != true {
		t.Fatalf("first version payload: %v", first)
	}

	rr = postUpload(t, app, "task-1",
		`{"folder_category":"thumbnails","file_id":"f2","display_name":"thumb_b.png","mime_type":"image/png","size_bytes":2048,"uploaded_by":"editor-1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("second upload: %d body %s", rr.Code, rr.Body.String())
	}
	var second map[string]any
	json.NewDecoder(rr.Body).Decode(&second)
	if second["version_number"] != float64(2) || second["is_active"] != true {
		t.Fatalf("second version payload: %v", second)
	}

	persisted, _ := app.Assets.(*fakeAssetRepo).ListByTaskID(nil, "task-1")
	if len(persisted) != 2 {
		t.Fatalf("persisted versions: %d", len(persisted))
	}
	if persisted[0].IsActive {
		t.Fatal("first version still active after supersession")
	}
	if persisted[0].SupersededBy != persisted[1].ID {
		t.Fatalf("supersession pair mismatch: %q vs %q", persisted[0].SupersededBy, persisted[1].ID)
	}
}

// Two uploads whose requests each loaded the task before the other's version
// was stored must still come out numbered 1 and 2. The store owns the final
// number; the snapshot the handler computed from is only a proposal.
func TestUploadNotifyStaleSnapshotsGetDistinctVersions(t *testing.T) {
	task := &domain.Task{ID: "task-1", Status: domain.TaskStatusInQC, OriginRole: domain.RoleEditor}
	tasks := newFakeTaskRepo(task)
	app, _ := newTestApp(tasks)

	// The stored task never learns about registered versions here, so each
	// request computes its number from the same empty lineage.
	body := `{"folder_category":"thumbnails","file_id":"%s","mime_type":"image/png","uploaded_by":"editor-1"}`
	numbers := make(map[float64]bool)
	for _, fileID := range []string{"f1", "f2"} {
		rr := postUpload(t, app, "task-1", strings.Replace(body, "%s", fileID, 1))
		if rr.Code != http.StatusCreated {
			t.Fatalf("upload %s: %d body %s", fileID, rr.Code, rr.Body.String())
		}
		var payload map[string]any
		json.NewDecoder(rr.Body).Decode(&payload)
		numbers[payload["version_number"].(float64)] = true
	}

	if len(numbers) != 2 || !numbers[1] || !numbers[2] {
		t.Fatalf("version numbers not {1, 2}: %v", numbers)
	}

	persisted, _ := app.Assets.(*fakeAssetRepo).ListByTaskID(nil, "task-1")
	active := 0
	for _, v := range persisted {
		if v.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("active versions after both uploads: %d", active)
	}
}

func TestUploadNotifyValidatesPayload(t *testing.T) {
	app, _ := newTestApp(newFakeTaskRepo(&domain.Task{ID: "task-1"}))

	rr := postUpload(t, app, "task-1", `{"folder_category":"main"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing file_id: %d", rr.Code)
	}
	rr = postUpload(t, app, "task-1", `{"file_id":"f1"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing folder_category: %d", rr.Code)
	}
}

func TestTaskAssetsListsActiveInPrecedenceOrder(t *testing.T) {
	app, _ := newTestApp(newFakeTaskRepo(&domain.Task{ID: "task-1"}))
	assets := app.Assets.(*fakeAssetRepo)
	assets.versions["task-1"] = []domain.AssetVersion{
		{ID: "v1", FolderCategory: domain.FolderCategoryCovers, VersionNumber: 1, IsActive: true},
		{ID: "v2", FolderCategory: domain.FolderCategoryMain, VersionNumber: 1, IsActive: false},
		{ID: "v3", FolderCategory: domain.FolderCategoryMain, VersionNumber: 2, IsActive: true},
	}

	req := httptest.NewRequest("GET", "/v1/tasks/task-1/assets", nil)
	req = withURLParam(req, "id", "task-1")
	rr := httptest.NewRecorder()
	app.TaskAssets(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rr.Code)
	}
	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("active item count: %d", len(payload.Items))
	}
	if payload.Items[0]["id"] != "v3" || payload.Items[1]["id"] != "v1" {
		t.Fatalf("ordering: %v", payload.Items)
	}
}
