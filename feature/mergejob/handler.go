package mergejob

import (
	"errors"
	"io"
	"mime/multipart"

	"arxml-merger/core/logger"
	"arxml-merger/core/merge"
	"arxml-merger/core/utils"
	"arxml-merger/feature/validate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for merge sessions.
type Handler struct {
	service   *Service
	validator *validate.Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, validator *validate.Service) *Handler {
	return &Handler{service: service, validator: validator}
}

// RegisterRoutes registers the merge routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/merge")
	group.Post("/sessions", h.HandleCreateSession)
	group.Get("/sessions/:id", h.HandleSessionStatus)
	group.Post("/sessions/:id/files", h.HandleUpload)
	group.Post("/sessions/:id/merge", h.HandleStartMerge)
	group.Get("/sessions/:id/download", h.HandleDownload)
	group.Get("/sessions/:id/report", h.HandleReport)
	group.Delete("/sessions/:id", h.HandleRemoveSession)
	group.Get("/jobs", h.HandleHistory)
	group.Post("/validate", h.HandleValidate)
}

// HandleCreateSession creates a new merge session.
func (h *Handler) HandleCreateSession(c *fiber.Ctx) error {
	id := h.service.CreateSession()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session_id": id})
}

// HandleSessionStatus returns the current state of a session.
func (h *Handler) HandleSessionStatus(c *fiber.Ctx) error {
	info, err := h.service.Status(c.Params("id"))
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(info)
}

// HandleUpload attaches one or more ARXML files to a session. Files are sent
// as multipart form data under the "files" field.
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	id := c.Params("id")

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "multipart form expected"})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no files in upload"})
	}

	count := 0
	for _, fh := range files {
		text, err := readUpload(fh)
		if err != nil {
			l.Error("Failed to read upload", zap.String("file", fh.Filename), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read upload"})
		}

		count, err = h.service.AddFile(id, utils.SanitizeFileName(fh.Filename), text)
		if err != nil {
			return h.sessionError(c, err)
		}
	}

	l.Info("Files uploaded",
		zap.String("session_id", id),
		zap.Int("added", len(files)),
		zap.Int("total", count))

	return c.JSON(fiber.Map{"status": "uploaded", "file_count": count})
}

type startMergeRequest struct {
	Strategy string `json:"strategy"`
}

// HandleStartMerge starts the merge for a session in the background.
func (h *Handler) HandleStartMerge(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	id := c.Params("id")

	var req startMergeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}

	strategy := merge.Strategy(req.Strategy)
	if strategy != "" && !strategy.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown strategy: " + req.Strategy})
	}
	if strategy == merge.StrategyInteractive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "interactive strategy is not available over HTTP"})
	}

	if err := h.service.StartMerge(id, strategy, nil); err != nil {
		return h.sessionError(c, err)
	}

	l.Info("Merge started", zap.String("session_id", id), zap.String("strategy", string(strategy)))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "merging"})
}

// HandleDownload serves the merged document of a completed session.
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	output, err := h.service.Output(c.Params("id"))
	if err != nil {
		return h.sessionError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="merged.arxml"`)
	return c.SendString(output)
}

// HandleReport serves the merge report. The format query parameter selects
// json (default), html, signals-csv or conflicts-csv.
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	rep, err := h.service.Report(c.Params("id"))
	if err != nil {
		return h.sessionError(c, err)
	}

	switch c.Query("format", "json") {
	case "json":
		return c.JSON(rep)
	case "html":
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return rep.WriteHTML(c.Response().BodyWriter())
	case "signals-csv":
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="signal_inventory.csv"`)
		return rep.WriteSignalCSV(c.Response().BodyWriter())
	case "conflicts-csv":
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="conflict_report.csv"`)
		return rep.WriteConflictCSV(c.Response().BodyWriter())
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown report format"})
	}
}

// HandleRemoveSession drops a session.
func (h *Handler) HandleRemoveSession(c *fiber.Ctx) error {
	if err := h.service.RemoveSession(c.Params("id")); err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(fiber.Map{"status": "removed"})
}

// HandleHistory lists recent persisted merge jobs.
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	jobs, err := h.service.History(c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"jobs": jobs})
}

// HandleValidate validates uploaded files without merging them.
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "multipart form expected"})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no files in upload"})
	}

	results := make([]*validate.FileResult, 0, len(files))
	for _, fh := range files {
		text, err := readUpload(fh)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read upload"})
		}
		results = append(results, h.validator.ValidateText(utils.SanitizeFileName(fh.Filename), text))
	}

	return c.JSON(fiber.Map{"results": results})
}

func (h *Handler) sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrNoFiles), errors.Is(err, ErrNotCollecting), errors.Is(err, ErrNotCompleted):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func readUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
