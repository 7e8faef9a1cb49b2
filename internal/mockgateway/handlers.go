package mockgateway

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/peekdata/datagateway-go/internal/logging"
	"github.com/peekdata/datagateway-go/pkg/models"
)

// Handler serves the gateway endpoints from a Dataset. It logs through the
// request context, which carries the logger and request ID set by the
// logging middleware.
type Handler struct {
	dataset *Dataset
}

// NewHandler creates a handler over dataset
func NewHandler(dataset *Dataset) *Handler {
	return &Handler{dataset: dataset}
}

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "UP"})
}

// Select returns the SQL statement for the posted request
func (h *Handler) Select(c *fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return err
	}

	sql, err := RenderSQL(req)
	if err != nil {
		return err
	}

	logging.DebugCtx(c.UserContext(), "Rendered select", "scope", req.ScopeName, "graph", req.GraphName)

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(sql + "\n")
}

// Data returns the report for the posted request as JSON
func (h *Handler) Data(c *fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return err
	}

	report, err := h.dataset.Query(req)
	if err != nil {
		return err
	}

	logging.DebugCtx(c.UserContext(), "Answered data request", "rows", len(report.Rows))

	return c.JSON(models.NewResponseWithData(req.RequestID(), report, len(report.Rows)))
}

// File returns the report for the posted request as CSV
func (h *Handler) File(c *fiber.Ctx) error {
	req, err := decodeRequest(c)
	if err != nil {
		return err
	}

	report, err := h.dataset.Query(req)
	if err != nil {
		return err
	}

	data, err := encodeCSV(report)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+req.RequestID()+`.csv"`)
	return c.Send(data)
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}

func decodeRequest(c *fiber.Ctx) (*models.Request, error) {
	var req models.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	return &req, nil
}

func encodeCSV(report models.ReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(report.ColumnHeaders); err != nil {
		return nil, err
	}
	record := make([]string, 0, len(report.ColumnHeaders))
	for _, row := range report.Rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, csvCell(cell))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvCell(cell any) string {
	if f, ok := cell.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return cellString(cell)
}
