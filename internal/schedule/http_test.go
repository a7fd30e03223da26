package schedule

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, e *Engine, protect gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, e, protect)
	return r
}

func uploadRequest(t *testing.T, name, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/schedule/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHTTP_ImportViewToggle(t *testing.T) {
	e, _, _ := newTestEngine(t, "Herren I", "Herren II")
	r := newTestRouter(t, e, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "plan.csv", planCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rep ImportReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	require.Equal(t, 2, rep.Added)
	require.Equal(t, "1 of 3 rows skipped", rep.Summary)

	w = doJSON(r, http.MethodGet, "/api/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view []Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view, 2)

	w = doJSON(r, http.MethodPost, "/api/schedule/side", sideReq{Record: view[0], ClubHome: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var swapped Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &swapped))
	require.Equal(t, "Herren I", swapped.HomeTeam)

	w = doJSON(r, http.MethodGet, "/api/schedule/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var groups []Group
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	require.Len(t, groups, 2)

	w = doJSON(r, http.MethodGet, "/api/schedule.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Herren I;TTC Gegner")
}

func TestHTTP_ErrorMapping(t *testing.T) {
	e, _, _ := newTestEngine(t)
	r := newTestRouter(t, e, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "plan.pdf", "%PDF"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/schedule/side", sideReq{Record: Record{HomeTeam: "A"}})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/schedule/ephemeral?identity=cmp:x", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/schedule/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/schedule/result", resultReq{Record: Record{HomeTeam: "A", AwayTeam: "B"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_ProtectGuardsMutatingRoutes(t *testing.T) {
	e, _, _ := newTestEngine(t)
	deny := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	r := newTestRouter(t, e, deny)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "plan.csv", planCSV))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/schedule", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
