package http

import (
	"context"
	"errors"

	"resume-builder/internal/domain"
	"resume-builder/internal/model"
	"resume-builder/internal/normalize"
	"resume-builder/internal/preview"
	"resume-builder/internal/store"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/apperror"
	"resume-builder/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ExportHistory reads past export runs. Get returns nil for an unknown id.
type ExportHistory interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.ExportJob, error)
	Recent(ctx context.Context, limit int) ([]domain.ExportJob, error)
}

type Handler struct {
	store    *store.Store
	exporter *usecase.Exporter
	history  ExportHistory
	memo     *normalize.Memo
	preview  *preview.Renderer
	log      logger.Logger
}

func NewHandler(s *store.Store, e *usecase.Exporter, history ExportHistory, p *preview.Renderer, log logger.Logger) *Handler {
	return &Handler{
		store:    s,
		exporter: e,
		history:  history,
		memo:     normalize.NewMemo(),
		preview:  p,
		log:      log.With(zap.String("component", "http")),
	}
}

// Register mounts every route on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/document", h.GetDocument)
	app.Get("/render-tree", h.GetRenderTree)
	app.Get("/preview", h.GetPreview)
	app.Get("/skills/categories", h.GetSkillCategories)

	sections := app.Group("/sections/:section")
	sections.Put("/", h.ReplaceSection)
	sections.Post("/records", h.AddRecord)
	sections.Put("/records/:id", h.UpdateRecord)
	sections.Delete("/records/:id", h.RemoveRecord)

	app.Post("/export", h.StartExport)
	app.Get("/export/status", h.ExportStatus)
	app.Get("/export/download", h.DownloadExport)

	app.Get("/exports", h.ListExports)
	app.Get("/exports/:id", h.GetExport)
}

// ErrorHandler maps domain and app errors onto HTTP statuses.
func ErrorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		if errors.Is(err, usecase.ErrExportInProgress) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		status := apperror.ToHTTPStatus(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("Request failed", err, zap.String("path", c.Path()))
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return c.Status(status).JSON(fiber.Map{"error": appErr.Message, "details": appErr.Details})
		}
		return c.Status(status).JSON(fiber.Map{"error": apperror.Message(err)})
	}
}

func (h *Handler) section(c *fiber.Ctx) (model.Section, error) {
	name := c.Params("section")
	sec, ok := model.ParseSection(name)
	if !ok {
		return "", apperror.NewNotFound("section", name)
	}
	return sec, nil
}

func (h *Handler) tree() normalize.RenderTree {
	doc, versions := h.store.Snapshot()
	return h.memo.Tree(doc, versions)
}

func (h *Handler) GetDocument(c *fiber.Ctx) error {
	return c.JSON(h.store.Document())
}

func (h *Handler) GetRenderTree(c *fiber.Ctx) error {
	return c.JSON(h.tree())
}

func (h *Handler) GetPreview(c *fiber.Ctx) error {
	html, err := h.preview.HTML(h.tree())
	if err != nil {
		return apperror.NewInternal("render preview", err)
	}
	c.Type("html", "utf-8")
	return c.SendString(html)
}

func (h *Handler) GetSkillCategories(c *fiber.Ctx) error {
	return c.JSON(model.SuggestedSkillCategories)
}

// ReplaceSection takes the complete new value of a section.
func (h *Handler) ReplaceSection(c *fiber.Ctx) error {
	sec, err := h.section(c)
	if err != nil {
		return err
	}
	if err := h.store.ReplaceJSON(sec, c.Body()); err != nil {
		return err
	}
	return c.JSON(h.store.Section(sec))
}

func (h *Handler) AddRecord(c *fiber.Ctx) error {
	sec, err := h.section(c)
	if err != nil {
		return err
	}
	rec, err := h.store.Add(sec)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	sec, err := h.section(c)
	if err != nil {
		return err
	}
	rec, err := h.store.UpdateJSON(sec, c.Params("id"), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *Handler) RemoveRecord(c *fiber.Ctx) error {
	sec, err := h.section(c)
	if err != nil {
		return err
	}
	if err := h.store.Remove(sec, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type exportReq struct {
	FileName string `json:"fileName,omitempty"`
}

// StartExport launches a background export. A second request while one is
// running gets 409.
func (h *Handler) StartExport(c *fiber.Ctx) error {
	var req exportReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperror.NewInvalidInput("invalid payload", err)
		}
	}
	out := ""
	if req.FileName != "" {
		out = h.exporter.OutPath(req.FileName)
	}
	job, err := h.exporter.Start(c.UserContext(), out)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"jobId": job.ID.String(), "status": job.Status})
}

func (h *Handler) ExportStatus(c *fiber.Ctx) error {
	return c.JSON(h.exporter.Status())
}

func (h *Handler) DownloadExport(c *fiber.Ctx) error {
	job := h.exporter.Status()
	if job.Status != domain.ExportStatusCompleted || job.FilePath == "" {
		return apperror.NewNotFound("export", "latest")
	}
	return c.Download(job.FilePath, job.FileName)
}

// ListExports returns the most recent export runs, newest first.
func (h *Handler) ListExports(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit < 1 || limit > maxHistoryLimit {
		return apperror.NewInvalidInput("limit must be between 1 and 100", nil)
	}
	jobs, err := h.history.Recent(c.UserContext(), limit)
	if err != nil {
		return apperror.NewUnavailable("read export history", err)
	}
	if jobs == nil {
		jobs = []domain.ExportJob{}
	}
	return c.JSON(jobs)
}

func (h *Handler) GetExport(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NewInvalidInput("invalid export id", err)
	}
	job, err := h.history.Get(c.UserContext(), id)
	if err != nil {
		return apperror.NewUnavailable("read export history", err)
	}
	if job == nil {
		return apperror.NewNotFound("export", id.String())
	}
	return c.JSON(job)
}
