// Package api serves the upload, convert and download HTTP surface.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-converter/internal/batch"
	"github.com/insightdelivered/statement-converter/internal/converter"
	"github.com/insightdelivered/statement-converter/internal/logger"
	"github.com/insightdelivered/statement-converter/internal/metrics"
	"github.com/insightdelivered/statement-converter/internal/models"
	"github.com/insightdelivered/statement-converter/internal/parser"
	"github.com/insightdelivered/statement-converter/internal/writer"
)

// clientPageBreak separates pages in text extracted by a browser-side PDF reader.
const clientPageBreak = "\n---PAGE_BREAK---\n"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                `json:"success"`
	Error        string              `json:"error,omitempty"`
	ID           string              `json:"id,omitempty"`
	Form         string              `json:"form,omitempty"`
	Filename     string              `json:"filename,omitempty"`
	Summary      *converter.Summary  `json:"summary,omitempty"`
	Transactions []models.Row        `json:"transactions"`
	CSV          string              `json:"csv,omitempty"`
	Documents    []DocumentResult    `json:"documents,omitempty"`
	Version      string              `json:"version,omitempty"`
	DebugLines   []DocumentDebugInfo `json:"debugLines,omitempty"`
}

// DocumentResult reports one uploaded file.
type DocumentResult struct {
	Name         string   `json:"name"`
	Form         string   `json:"form,omitempty"`
	Pages        int      `json:"pages"`
	Transactions int      `json:"transactions"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// DocumentDebugInfo holds the parser trace for one uploaded file.
type DocumentDebugInfo struct {
	Name  string             `json:"name"`
	Lines []models.DebugLine `json:"lines"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Service *converter.Service
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
	Version string
}

// Options configures the fiber application built by NewApp.
type Options struct {
	MaxUploadMB        int
	RateLimitPerMinute int
	// AllowOrigins is a comma separated origin list for CORS; empty means "*".
	AllowOrigins string
}

// NewApp builds the fiber application with middleware and routes.
func NewApp(h *Handler, opts Options) *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if opts.MaxUploadMB > 0 {
		bodyLimit = opts.MaxUploadMB << 20
	}

	app := fiber.New(fiber.Config{
		AppName:               "statement-converter",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}
			return c.Status(code).JSON(ConvertResponse{Success: false, Error: message})
		},
	})

	allowOrigins := opts.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: fiber.HeaderContentType,
	}))
	app.Use(h.requestLogger())
	if opts.RateLimitPerMinute > 0 {
		app.Use("/api/convert", limiter.New(limiter.Config{
			Max:        opts.RateLimitPerMinute,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return writeError(c, fiber.StatusTooManyRequests, "Too many conversions. Please wait a minute and try again.")
			},
		}))
	}

	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.handleHealth)
	app.Post("/api/convert", h.handleConvert)
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))
	}
}

func (h *Handler) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		h.Logger.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
		return err
	}
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": h.Version,
		"engine":  "fiber",
	})
}

func (h *Handler) handleConvert(c *fiber.Ctx) error {
	form, err := parser.ParseForm(c.Query("form", string(models.FormAuto)))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	format := strings.ToLower(c.Query("format", "json"))
	var w writer.Writer
	if format != "json" {
		if w, err = writer.New(format); err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	docs, err := readDocuments(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := logger.WithContext(c.UserContext(), h.Logger)
	conv, err := h.Service.Convert(ctx, form, docs)
	if err != nil {
		if errors.Is(err, batch.ErrNoDocuments) || errors.Is(err, batch.ErrSingleDocument) {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("Conversion failed: %v", err))
	}

	if conv.NoTransactions() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ConvertResponse{
			Success:      false,
			Error:        converter.NoTransactionsHint,
			ID:           conv.ID,
			Form:         string(conv.Form),
			Transactions: []models.Row{},
			Documents:    documentResults(conv.Documents),
			Version:      h.Version,
		})
	}

	if w != nil {
		var buf bytes.Buffer
		if err := w.Write(&buf, conv.RecordSet); err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("%s generation failed: %v", strings.ToUpper(format), err))
		}
		c.Attachment(conv.Filename(w.Extension()))
		c.Set(fiber.HeaderContentType, w.ContentType())
		return c.Send(buf.Bytes())
	}

	var csvBuf bytes.Buffer
	if err := (&writer.CSVWriter{}).Write(&csvBuf, conv.RecordSet); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	summary := conv.Summary()
	resp := ConvertResponse{
		Success:      true,
		ID:           conv.ID,
		Form:         string(conv.Form),
		Filename:     conv.Filename("csv"),
		Summary:      &summary,
		Transactions: conv.RecordSet.Rows,
		CSV:          csvBuf.String(),
		Documents:    documentResults(conv.Documents),
		Version:      h.Version,
	}
	if c.QueryBool("debug") {
		for _, d := range conv.Documents {
			resp.DebugLines = append(resp.DebugLines, DocumentDebugInfo{Name: d.Name, Lines: d.DebugLines})
		}
	}
	return c.JSON(resp)
}

// readDocuments collects uploads from the "files" and "file" fields, plus
// text already extracted on the client in the "extractedText" field.
func readDocuments(c *fiber.Ctx) ([]models.Document, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	var docs []models.Document
	for _, field := range []string{"files", "file"} {
		for _, fh := range mf.File[field] {
			data, err := readFile(fh)
			if err != nil {
				return nil, fmt.Errorf("failed to read uploaded file %q: %w", fh.Filename, err)
			}
			docs = append(docs, models.Document{Name: fh.Filename, Data: data})
		}
	}

	if len(docs) == 0 {
		for _, text := range mf.Value["extractedText"] {
			if strings.TrimSpace(text) == "" {
				continue
			}
			docs = append(docs, models.Document{
				Name: "extractedText",
				Data: []byte(strings.ReplaceAll(text, clientPageBreak, "\f")),
			})
		}
	}

	if len(docs) == 0 {
		return nil, errors.New("no file uploaded; use form field 'files' or 'file'")
	}
	return docs, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func documentResults(reports []batch.DocumentReport) []DocumentResult {
	out := make([]DocumentResult, len(reports))
	for i, r := range reports {
		out[i] = DocumentResult{
			Name:         r.Name,
			Form:         string(r.Form),
			Pages:        r.Pages,
			Transactions: r.Transactions,
		}
		for _, w := range r.Warnings {
			out[i].Warnings = append(out[i].Warnings, w.Error())
		}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
