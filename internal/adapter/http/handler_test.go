package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/domain"
	"resume-builder/internal/fonts"
	"resume-builder/internal/layout"
	"resume-builder/internal/model"
	"resume-builder/internal/preview"
	"resume-builder/internal/store"
	"resume-builder/internal/style"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/infrastructure"
	"resume-builder/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// memHistory keeps export runs in memory, newest last.
type memHistory struct {
	mu   sync.Mutex
	jobs []domain.ExportJob
}

func (m *memHistory) Save(_ context.Context, j *domain.ExportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, *j)
	return nil
}

func (m *memHistory) Get(_ context.Context, id uuid.UUID) (*domain.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.ID == id {
			return &j, nil
		}
	}
	return nil, nil
}

func (m *memHistory) Recent(_ context.Context, limit int) ([]domain.ExportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.jobs)
	slices.Reverse(out)
	return out[:min(limit, len(out))], nil
}

func newTestApp(t *testing.T) (*fiber.App, *store.Store, *usecase.Exporter) {
	return newTestAppWithHistory(t, &memHistory{})
}

type history interface {
	usecase.ExportsRepo
	ExportHistory
}

func newTestAppWithHistory(t *testing.T, hist history) (*fiber.App, *store.Store, *usecase.Exporter) {
	t.Helper()
	log := logger.NewNop()
	st, err := store.Open(context.Background(), repository.NewMemoryKV(), "", log)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	reg, err := fonts.Default()
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	exp := usecase.NewExporter(st, infrastructure.NewNativeAssembler(), hist, reg, usecase.Options{
		OutDir:   t.TempDir(),
		Attempts: 1,
		Backoff:  time.Millisecond,
		Scale:    1,
	}, log)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	NewHandler(st, exp, hist, preview.NewRenderer(style.Canonical(), layout.A4(), reg), log).Register(app)
	return app, st, exp
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func TestReplaceSectionAndReadBack(t *testing.T) {
	app, st, _ := newTestApp(t)

	code, body := do(t, app, "PUT", "/sections/personalInfo", `{"name":"Jane Doe","email":"jane@example.com"}`)
	if code != fiber.StatusOK {
		t.Fatalf("replace: %d %s", code, body)
	}
	if got := st.Document().PersonalInfo.Name; got != "Jane Doe" {
		t.Fatalf("store not updated, name=%q", got)
	}

	code, body = do(t, app, "GET", "/document", "")
	if code != fiber.StatusOK {
		t.Fatalf("document: %d", code)
	}
	var doc model.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.PersonalInfo.Email != "jane@example.com" {
		t.Fatalf("unexpected document %+v", doc.PersonalInfo)
	}
}

func TestUnknownSectionIsNotFound(t *testing.T) {
	app, _, _ := newTestApp(t)
	if code, _ := do(t, app, "PUT", "/sections/hobbies", `[]`); code != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestInvalidSectionValueIsRejected(t *testing.T) {
	app, st, _ := newTestApp(t)
	code, _ := do(t, app, "PUT", "/sections/skills", `[{"name":"Go"}]`)
	if code != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if len(st.Document().Skills) != 0 {
		t.Fatalf("rejected write changed the store")
	}
}

func TestRecordLifecycle(t *testing.T) {
	app, st, _ := newTestApp(t)

	code, body := do(t, app, "POST", "/sections/experience/records", "")
	if code != fiber.StatusCreated {
		t.Fatalf("add: %d %s", code, body)
	}
	var created model.Experience
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		t.Fatalf("decode created record: %v %s", err, body)
	}

	update := `{"company":"Acme","position":"Engineer","startDate":"2021-03","description":"Built X\n\nShipped Y"}`
	if code, body := do(t, app, "PUT", "/sections/experience/records/"+created.ID, update); code != fiber.StatusOK {
		t.Fatalf("update: %d %s", code, body)
	}

	code, body = do(t, app, "GET", "/render-tree", "")
	if code != fiber.StatusOK {
		t.Fatalf("render tree: %d", code)
	}
	for _, want := range []string{"Mar 2021 - Present", "Built X", "Shipped Y"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("render tree missing %q: %s", want, body)
		}
	}

	if code, _ := do(t, app, "DELETE", "/sections/experience/records/"+created.ID, ""); code != fiber.StatusNoContent {
		t.Fatalf("delete: %d", code)
	}
	if len(st.Document().Experience) != 0 {
		t.Fatalf("record not removed")
	}
	if code, _ := do(t, app, "DELETE", "/sections/experience/records/"+created.ID, ""); code != fiber.StatusNotFound {
		t.Fatalf("second delete should be 404, got %d", code)
	}
}

func TestRecordsOnSingletonSectionAreRejected(t *testing.T) {
	app, _, _ := newTestApp(t)
	if code, _ := do(t, app, "POST", "/sections/personalInfo/records", ""); code != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestPreviewUsesSharedFormatting(t *testing.T) {
	app, st, _ := newTestApp(t)
	exp := model.NewExperience()
	exp.Company = "Acme"
	exp.StartDate = model.NewPeriod(2021, 3)
	if err := st.Replace(model.SectionExperience, []model.Experience{exp}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	code, body := do(t, app, "GET", "/preview", "")
	if code != fiber.StatusOK {
		t.Fatalf("preview: %d", code)
	}
	if !strings.Contains(string(body), "Mar 2021 - Present") || !strings.Contains(string(body), ".resume") {
		t.Fatalf("preview missing content: %s", body)
	}
}

func TestSkillCategories(t *testing.T) {
	app, _, _ := newTestApp(t)
	code, body := do(t, app, "GET", "/skills/categories", "")
	var cats []string
	if code != fiber.StatusOK || json.Unmarshal(body, &cats) != nil || len(cats) != len(model.SuggestedSkillCategories) {
		t.Fatalf("unexpected categories: %d %s", code, body)
	}
}

func TestExportFlow(t *testing.T) {
	app, st, exp := newTestApp(t)
	if err := st.Replace(model.SectionPersonalInfo, model.PersonalInfo{Name: "Jane Doe"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if code, _ := do(t, app, "GET", "/export/download", ""); code != fiber.StatusNotFound {
		t.Fatalf("download before export should be 404, got %d", code)
	}

	code, body := do(t, app, "POST", "/export", "")
	if code != fiber.StatusAccepted {
		t.Fatalf("start export: %d %s", code, body)
	}

	deadline := time.Now().Add(30 * time.Second)
	for exp.Running() {
		if time.Now().After(deadline) {
			t.Fatalf("export did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}

	code, body = do(t, app, "GET", "/export/status", "")
	var job domain.ExportJob
	if code != fiber.StatusOK || json.Unmarshal(body, &job) != nil {
		t.Fatalf("status: %d %s", code, body)
	}
	if job.Status != domain.ExportStatusCompleted || job.FileName != "Jane_Doe_Resume.pdf" {
		t.Fatalf("unexpected job %+v", job)
	}

	code, body = do(t, app, "GET", "/export/download", "")
	if code != fiber.StatusOK {
		t.Fatalf("download: %d", code)
	}
	if err := infrastructure.VerifyPDF(body, 1); err != nil {
		t.Fatalf("downloaded artifact: %v", err)
	}
}

func TestExportHistory(t *testing.T) {
	hist := &memHistory{}
	app, st, exp := newTestAppWithHistory(t, hist)
	if err := st.Replace(model.SectionPersonalInfo, model.PersonalInfo{Name: "Jane Doe"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	first, err := exp.Export(context.Background(), "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	second, err := exp.Export(context.Background(), "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	code, body := do(t, app, "GET", "/exports?limit=1", "")
	var jobs []domain.ExportJob
	if code != fiber.StatusOK || json.Unmarshal(body, &jobs) != nil {
		t.Fatalf("list: %d %s", code, body)
	}
	if len(jobs) != 1 || jobs[0].ID != second.ID {
		t.Fatalf("expected newest export only, got %+v", jobs)
	}

	code, body = do(t, app, "GET", "/exports/"+first.ID.String(), "")
	var job domain.ExportJob
	if code != fiber.StatusOK || json.Unmarshal(body, &job) != nil || job.ID != first.ID {
		t.Fatalf("get: %d %s", code, body)
	}

	if code, _ := do(t, app, "GET", "/exports/"+uuid.NewString(), ""); code != fiber.StatusNotFound {
		t.Fatalf("unknown export should be 404, got %d", code)
	}
	if code, _ := do(t, app, "GET", "/exports/not-a-uuid", ""); code != fiber.StatusBadRequest {
		t.Fatalf("malformed id should be 400, got %d", code)
	}
	if code, _ := do(t, app, "GET", "/exports?limit=0", ""); code != fiber.StatusBadRequest {
		t.Fatalf("zero limit should be 400, got %d", code)
	}
}

func TestExportHistoryWithoutDatabase(t *testing.T) {
	app, _, _ := newTestAppWithHistory(t, repository.NewExportsRepo(nil))
	code, body := do(t, app, "GET", "/exports", "")
	if code != fiber.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("expected empty history, got %d %s", code, body)
	}
	if code, _ := do(t, app, "GET", "/exports/"+uuid.NewString(), ""); code != fiber.StatusNotFound {
		t.Fatalf("expected 404 without a database, got %d", code)
	}
}
