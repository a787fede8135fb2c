package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"portal/internal/domain"
	"portal/internal/versions"
)

// uploadNotification is posted by the upload transport once a file has landed
// in object storage. The portal only tracks the resulting version lineage.
type uploadNotification struct {
	FolderCategory string `json:"folder_category"`
	FileID         string `json:"file_id"`
	DisplayName    string `json:"display_name"`
	MimeType       string `json:"mime_type"`
	SizeBytes      int64  `json:"size_bytes"`
	UploadedBy     string `json:"uploaded_by"`
}

func (a *App) UploadNotify(w http.ResponseWriter, r *http.Request) {
	var req uploadNotification
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.FileID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "file_id is required")
		return
	}
	if req.FolderCategory == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "folder_category is required")
		return
	}

	task, ok := a.loadTask(w, r)
	if !ok {
		return
	}

	version := versions.RegisterUpload(task, domain.FolderCategory(req.FolderCategory), versions.Upload{
		FileID:      req.FileID,
		DisplayName: req.DisplayName,
		MimeType:    req.MimeType,
		SizeBytes:   req.SizeBytes,
		UploadedBy:  req.UploadedBy,
	}, time.Now())

	// The store serializes concurrent uploads and assigns the final version
	// number into the struct.
	if err := a.Assets.RegisterVersion(r.Context(), task.ID, &version); err != nil {
		a.domainError(w, err)
		return
	}

	a.json(w, http.StatusCreated, versionPayload(version))
}

func (a *App) TaskAssets(w http.ResponseWriter, r *http.Request) {
	task, ok := a.loadTask(w, r)
	if !ok {
		return
	}
	stored, err := a.Assets.ListByTaskID(r.Context(), task.ID)
	if err != nil {
		a.domainError(w, err)
		return
	}

	var listed []domain.AssetVersion
	if r.URL.Query().Get("all") == "true" {
		listed = versions.ListAll(stored)
	} else {
		listed = versions.ListActive(stored)
	}

	items := make([]map[string]any, len(listed))
	for i, v := range listed {
		items[i] = versionPayload(v)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func versionPayload(v domain.AssetVersion) map[string]any {
	payload := map[string]any{
		"id":              v.ID,
		"file_id":         v.FileID,
		"display_name":    v.DisplayName,
		"mime_class":      v.MimeClass,
		"size_bytes":      v.SizeBytes,
		"folder_category": v.FolderCategory,
		"version_number":  v.VersionNumber,
		"is_active":       v.IsActive,
		"uploaded_at":     v.UploadedAt,
		"uploaded_by":     v.UploadedBy,
	}
	if v.SupersededAt != nil {
		payload["superseded_at"] = v.SupersededAt
		payload["superseded_by"] = v.SupersededBy
	}
	return payload
}
