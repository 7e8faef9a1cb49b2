package mockgateway

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peekdata/datagateway-go/internal/config"
	"github.com/peekdata/datagateway-go/internal/logging"
	"github.com/peekdata/datagateway-go/internal/requests"
	"github.com/peekdata/datagateway-go/pkg/datagateway"
	"github.com/peekdata/datagateway-go/pkg/models"
)

const testAPIKey = "abcdefghijklmnopqrstuvwxyz012345"

func newTestApp(cfg config.MockConfig) *fiber.App {
	return New(logging.NewNop(), DefaultDataset(), cfg)
}

func post(t *testing.T, app *fiber.App, path string, body string, headers ...string) (int, string, map[string]string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	h := map[string]string{
		"Content-Type":        resp.Header.Get("Content-Type"),
		"Content-Disposition": resp.Header.Get("Content-Disposition"),
		"X-Request-ID":        resp.Header.Get("X-Request-ID"),
	}
	return resp.StatusCode, string(data), h
}

func serialized(t *testing.T, req *models.Request) string {
	t.Helper()
	doc, err := models.Serialize(req)
	require.NoError(t, err)
	return doc
}

func TestHandler_Health(t *testing.T) {
	app := newTestApp(config.MockConfig{APIKeys: []string{testAPIKey}})

	resp, err := app.Test(httptest.NewRequest("GET", datagateway.PathHealthCheck, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "UP", health.Status)
}

func TestHandler_Select(t *testing.T) {
	app := newTestApp(config.MockConfig{})

	status, body, headers := post(t, app, datagateway.PathSelect, serialized(t, requests.TwoDimensionsTwoMetricsFilterAndSorting()))
	assert.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.HasPrefix(body, "SELECT propertyCityID, currency"))
	assert.True(t, strings.HasSuffix(body, "ORDER BY currency ASC\n"))
	assert.Contains(t, headers["Content-Type"], "text/plain")
	assert.NotEmpty(t, headers["X-Request-ID"])
}

func TestHandler_Data(t *testing.T) {
	app := newTestApp(config.MockConfig{})

	req := requests.TwoDimensionsTwoMetricsFilterAndSorting()
	req.SetRequestID("sample-1")

	status, body, _ := post(t, app, datagateway.PathData, serialized(t, req))
	require.Equal(t, fiber.StatusOK, status, body)

	resp, err := models.ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "sample-1", resp.RequestID)
	assert.Equal(t, 5, resp.TotalRows)
	assert.Equal(t, []string{"propertyCityID", "currency", "loanamount", "totalincome"}, resp.ReportData.ColumnHeaders)
	assert.Equal(t, []any{"1004", "EUR", json.Number("383000"), json.Number("150000")}, resp.ReportData.Rows[3])
}

func TestHandler_File(t *testing.T) {
	app := newTestApp(config.MockConfig{})

	req, err := requests.TwoMetricsAndTwoFiltersFromSpecifiedGraph()
	require.NoError(t, err)
	req.SetRequestID("sample-2")

	status, body, headers := post(t, app, datagateway.PathCSV, serialized(t, req))
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Contains(t, headers["Content-Type"], "text/csv")
	assert.Equal(t, `attachment; filename="sample-2.csv"`, headers["Content-Disposition"])

	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"loanamount", "waintrate"},
		{"1029000", "21.1"},
	}, records)
}

func TestHandler_Errors(t *testing.T) {
	app := newTestApp(config.MockConfig{})

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"malformed json", datagateway.PathData, `{"scopeName":`, fiber.StatusBadRequest, "BAD_REQUEST"},
		{"unknown operation", datagateway.PathSelect, `{"scopeName":"s","filters":{"singleKeys":[{"key":"currency","operation":"LIKE"}]}}`, fiber.StatusBadRequest, "BAD_REQUEST"},
		{"invalid query", datagateway.PathCSV, `{"scopeName":"Mortgage-Lending","dimensions":["nope"]}`, fiber.StatusBadRequest, "BAD_REQUEST"},
		{"unknown route", "/datagateway/v2/select", `{}`, fiber.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := post(t, app, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, status)

			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &errResp))
			assert.Equal(t, tt.wantErr, errResp.Error.Code)
			assert.Equal(t, tt.path, errResp.Error.Path)
			assert.NotEmpty(t, errResp.Error.Message)
		})
	}
}

func TestHandler_APIKey(t *testing.T) {
	app := newTestApp(config.MockConfig{APIKeys: []string{testAPIKey, "short"}})
	doc := serialized(t, requests.TwoDimensionsTwoMetricsFilterAndSorting())

	status, _, _ := post(t, app, datagateway.PathSelect, doc)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = post(t, app, datagateway.PathSelect, doc, "X-API-Key", "short")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, _ = post(t, app, datagateway.PathSelect, doc, "X-API-Key", testAPIKey)
	assert.Equal(t, fiber.StatusOK, status)

	status, _, _ = post(t, app, datagateway.PathData, doc, "Authorization", "Bearer "+testAPIKey)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestValidateAPIKey(t *testing.T) {
	assert.True(t, ValidateAPIKey(testAPIKey))
	assert.False(t, ValidateAPIKey("short"))
	assert.False(t, ValidateAPIKey(strings.Repeat(" ", MinAPIKeyLength)))
	assert.Equal(t, "abcd****", maskAPIKey(testAPIKey))
	assert.Equal(t, "****", maskAPIKey("abc"))
}

func TestServer_RequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, zerolog.DebugLevel)
	app := New(logger, DefaultDataset(), config.MockConfig{APIKeys: []string{testAPIKey}})
	doc := serialized(t, requests.TwoDimensionsTwoMetricsFilterAndSorting())

	status, body, headers := post(t, app, datagateway.PathSelect, doc, "X-API-Key", testAPIKey)
	require.Equal(t, fiber.StatusOK, status)
	requestID := headers["X-Request-ID"]

	entries := logEntries(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Rendered select", entries[0]["message"])
	assert.Equal(t, requestID, entries[0]["request_id"])
	assert.Equal(t, "Request completed", entries[1]["message"])
	assert.Equal(t, float64(len(body)), entries[1]["bytes"])

	buf.Reset()
	status, _, headers = post(t, app, datagateway.PathSelect, doc, "X-API-Key", strings.Repeat("x", MinAPIKeyLength))
	require.Equal(t, fiber.StatusUnauthorized, status)

	entries = logEntries(t, &buf)
	messages := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		assert.Equal(t, headers["X-Request-ID"], e["request_id"])
		messages = append(messages, e["message"])
	}
	assert.Equal(t, []interface{}{"Unknown API key", "Request failed", "Request rejected"}, messages)
}

func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}
