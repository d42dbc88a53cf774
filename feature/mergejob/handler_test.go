package mergejob

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arxml-merger/feature/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp() (*fiber.App, *Service) {
	app := fiber.New()
	svc := NewService(nil, "", zap.NewNop(), nil, Options{})
	handler := NewHandler(svc, validate.NewService(nil, zap.NewNop()))
	handler.RegisterRoutes(app)
	return app, svc
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("POST", "/merge/sessions", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body["session_id"])
	return body["session_id"]
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.Copy(fw, strings.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func uploadFiles(t *testing.T, app *fiber.App, id string, files map[string]string) *http.Response {
	t.Helper()
	body, contentType := multipartUpload(t, files)
	req := httptest.NewRequest("POST", "/merge/sessions/"+id+"/files", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandleMergeFlow(t *testing.T) {
	app, svc := setupTestApp()
	id := createSession(t, app)

	// Upload both documents in one request.
	resp := uploadFiles(t, app, id, map[string]string{"a.arxml": docA, "b.arxml": docB})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var uploadBody map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploadBody))
	assert.Equal(t, float64(2), uploadBody["file_count"])

	// Trigger the merge.
	req := httptest.NewRequest("POST", "/merge/sessions/"+id+"/merge", strings.NewReader(`{"strategy":"latest_wins"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	waitCompleted(t, svc, id)

	// Status reports completion.
	resp, err = app.Test(httptest.NewRequest("GET", "/merge/sessions/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status StatusInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, StatusCompleted, status.Status)
	assert.Equal(t, 2, status.UploadedFiles)

	// Download the merged document.
	resp, err = app.Test(httptest.NewRequest("GET", "/merge/sessions/"+id+"/download", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))

	merged, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// latest_wins keeps the later definition of the conflicted signal.
	assert.Contains(t, string(merged), "<LENGTH>16</LENGTH>")
}

func TestHandleReportFormats(t *testing.T) {
	app, svc := setupTestApp()
	id := createSession(t, app)

	uploadFiles(t, app, id, map[string]string{"a.arxml": docA})
	resp, err := app.Test(httptest.NewRequest("POST", "/merge/sessions/"+id+"/merge", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	waitCompleted(t, svc, id)

	tests := []struct {
		format      string
		status      int
		contentType string
	}{
		{"json", fiber.StatusOK, "application/json"},
		{"html", fiber.StatusOK, "text/html"},
		{"signals-csv", fiber.StatusOK, "text/csv"},
		{"conflicts-csv", fiber.StatusOK, "text/csv"},
		{"yaml", fiber.StatusBadRequest, ""},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/merge/sessions/"+id+"/report?format="+tc.format, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.contentType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tc.contentType)
			}
		})
	}
}

func TestHandleErrors(t *testing.T) {
	app, _ := setupTestApp()

	t.Run("Unknown Session", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/merge/sessions/missing", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("Merge Without Files", func(t *testing.T) {
		id := createSession(t, app)
		resp, err := app.Test(httptest.NewRequest("POST", "/merge/sessions/"+id+"/merge", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("Interactive Over HTTP", func(t *testing.T) {
		id := createSession(t, app)
		req := httptest.NewRequest("POST", "/merge/sessions/"+id+"/merge", strings.NewReader(`{"strategy":"interactive"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Unknown Strategy", func(t *testing.T) {
		id := createSession(t, app)
		req := httptest.NewRequest("POST", "/merge/sessions/"+id+"/merge", strings.NewReader(`{"strategy":"coin_flip"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Upload Without Form", func(t *testing.T) {
		id := createSession(t, app)
		resp, err := app.Test(httptest.NewRequest("POST", "/merge/sessions/"+id+"/files", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Download Before Merge", func(t *testing.T) {
		id := createSession(t, app)
		resp, err := app.Test(httptest.NewRequest("GET", "/merge/sessions/"+id+"/download", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("History Without Database", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/merge/jobs", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestHandleValidate(t *testing.T) {
	app, _ := setupTestApp()

	body, contentType := multipartUpload(t, map[string]string{
		"good.arxml": docA,
		"bad.arxml":  "<AUTOSAR><broken",
	})
	req := httptest.NewRequest("POST", "/merge/validate", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Results []validate.FileResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Results, 2)

	valid := map[string]bool{}
	for _, r := range out.Results {
		valid[r.Name] = r.Valid
	}
	assert.True(t, valid["good.arxml"])
	assert.False(t, valid["bad.arxml"])
}

func TestHandleRemoveSession(t *testing.T) {
	app, svc := setupTestApp()
	id := createSession(t, app)

	req := httptest.NewRequest("DELETE", "/merge/sessions/"+id, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, err = svc.Status(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Removing twice is a 404.
	resp, err = app.Test(httptest.NewRequest("DELETE", "/merge/sessions/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLoader(t *testing.T) {
	feature := NewFeature(nil, "", zap.NewNop(), nil, Options{SessionTTL: time.Minute})

	assert.Equal(t, "mergejob", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NotNil(t, feature.Service())

	app := fiber.New()
	assert.NoError(t, feature.Load(app))
}
