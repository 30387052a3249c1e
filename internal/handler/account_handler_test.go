package handler_test

import (
	"net/http"
	"testing"

	"github.com/smuct-dev/studentbase-backend/internal/response"
)

func TestStudentCRUD(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)

	// Create
	w := env.do(t, http.MethodPost, "/api/v1/students", adminToken, map[string]string{
		"id": "S1", "name": "Alice", "email": "a@x.com",
		"password": "pw123", "department": "CS",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Read
	w = env.do(t, http.MethodGet, "/api/v1/students/S1", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	if containsPasswordField(w.Body.Bytes()) {
		t.Fatal("get: response must not contain a password field")
	}

	// Update
	w = env.do(t, http.MethodPut, "/api/v1/students/S1", adminToken, map[string]string{
		"name": "Alice Rahman", "email": "a@x.com", "department": "EEE",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.store.accounts["S1"].Department != "EEE" {
		t.Fatal("update did not apply")
	}

	// Delete
	if w := env.do(t, http.MethodDelete, "/api/v1/students/S1", adminToken, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/students/S1", adminToken, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestStudentMutationsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", registerBody("S1", "a@x.com"))
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", w.Code)
	}
	studentToken, _ := dataField(t, decode(t, w), "token").(string)

	// Students can read.
	if w := env.do(t, http.MethodGet, "/api/v1/students", studentToken, nil); w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	// But not mutate.
	if w := env.do(t, http.MethodDelete, "/api/v1/students/S1", studentToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("delete: expected 403, got %d", w.Code)
	}
	if w := env.do(t, http.MethodPatch, "/api/v1/students/S1/status", studentToken, map[string]string{
		"status": "suspended",
	}); w.Code != http.StatusForbidden {
		t.Fatalf("status: expected 403, got %d", w.Code)
	}
}

func TestStatusAndRolePatches(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)

	if w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", registerBody("S1", "a@x.com")); w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", w.Code)
	}

	if w := env.do(t, http.MethodPatch, "/api/v1/students/S1/status", adminToken, map[string]string{
		"status": "suspended",
	}); w.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.store.accounts["S1"].Status != "suspended" {
		t.Fatal("status patch did not apply")
	}

	// Out-of-enum value is a validation error.
	w := env.do(t, http.MethodPatch, "/api/v1/students/S1/status", adminToken, map[string]string{
		"status": "expelled",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", w.Code)
	}
	if body := decode(t, w); body.Error == nil || body.Error.Code != response.ErrValidation {
		t.Fatalf("bad status: unexpected error body: %+v", body.Error)
	}

	if w := env.do(t, http.MethodPatch, "/api/v1/students/S1/role", adminToken, map[string]string{
		"role": "teacher",
	}); w.Code != http.StatusOK {
		t.Fatalf("role: expected 200, got %d", w.Code)
	}
	if env.store.accounts["S1"].Role != "teacher" {
		t.Fatal("role patch did not apply")
	}
	// Role never implies privilege.
	if env.store.accounts["S1"].IsAdmin {
		t.Fatal("role patch must not grant admin")
	}
}

func TestBulkDelete(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)

	for _, id := range []string{"S1", "S2", "S3"} {
		if w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", registerBody(id, id+"@x.com")); w.Code != http.StatusCreated {
			t.Fatalf("register %s: expected 201, got %d", id, w.Code)
		}
	}

	w := env.do(t, http.MethodPost, "/api/v1/students/bulk-delete", adminToken, map[string]interface{}{
		"ids": []string{"S1", "S3", "ghost"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("bulk delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if count, _ := dataField(t, decode(t, w), "deleted_count").(float64); count != 2 {
		t.Fatalf("expected deleted_count 2, got %v", count)
	}
	if _, ok := env.store.accounts["S2"]; !ok {
		t.Fatal("S2 should survive bulk delete")
	}
}

func TestAttachmentUpload(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", registerBody("S1", "a@x.com"))
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", w.Code)
	}
	ownerToken, _ := dataField(t, decode(t, w), "token").(string)

	if w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", registerBody("S2", "b@x.com")); w.Code != http.StatusCreated {
		t.Fatalf("register S2: expected 201, got %d", w.Code)
	}

	// Owner can attach.
	w = env.doMultipart(t, "/api/v1/students/S1/attachment", ownerToken, "image/png", []byte("png-bytes"))
	if w.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if env.store.accounts["S1"].AttachmentPath == "" {
		t.Fatal("attachment path not persisted")
	}

	// But not to someone else's record.
	if w := env.doMultipart(t, "/api/v1/students/S2/attachment", ownerToken, "image/png", []byte("png-bytes")); w.Code != http.StatusForbidden {
		t.Fatalf("cross-account upload: expected 403, got %d", w.Code)
	}

	// Disallowed content type.
	w = env.doMultipart(t, "/api/v1/students/S1/attachment", ownerToken, "text/plain", []byte("notes"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad type: expected 400, got %d", w.Code)
	}
	if body := decode(t, w); body.Error == nil || body.Error.Code != response.ErrUnsupportedFile {
		t.Fatalf("bad type: unexpected error body: %+v", body.Error)
	}

	// Admin can attach to any record.
	adminToken := env.seedAdmin(t)
	if w := env.doMultipart(t, "/api/v1/students/S2/attachment", adminToken, "application/pdf", []byte("pdf-bytes")); w.Code != http.StatusOK {
		t.Fatalf("admin upload: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListDepartmentFilter(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.seedAdmin(t)

	for _, s := range []struct{ id, name, email, dept string }{
		{"S1", "Alice", "a@x.com", "CS"},
		{"S2", "Bob", "b@x.com", "EEE"},
	} {
		w := env.do(t, http.MethodPost, "/api/v1/students", adminToken, map[string]string{
			"id": s.id, "name": s.name, "email": s.email, "password": "pw123", "department": s.dept,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d", s.id, w.Code)
		}
	}

	w := env.do(t, http.MethodGet, "/api/v1/students?department=EEE", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body.Pagination == nil || body.Pagination.TotalItems != 1 {
		t.Fatalf("expected 1 EEE student, got %+v", body.Pagination)
	}
}
