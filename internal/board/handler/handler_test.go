package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
	"github.com/jobhuntboard/jobhuntboard/internal/board/repository"
	"github.com/jobhuntboard/jobhuntboard/internal/board/service"
)

type nopCache struct{}

func (nopCache) Load(ctx context.Context) (board.Board, error) { return board.Migrate(nil), nil }
func (nopCache) Save(ctx context.Context, b board.Board) error { return nil }

func newTestRouter(t *testing.T) (*gin.Engine, *service.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g := gin.New()
	store := service.NewStore(context.Background(), nopCache{})
	syncer := service.NewSyncer(store, repository.NewMemoryRemote(), time.Millisecond)
	RegisterBoardRoutes(g, store, syncer)
	return g, store
}

func do(t *testing.T, g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	g.ServeHTTP(w, req)
	return w
}

func boardFrom(t *testing.T, w *httptest.ResponseRecorder) board.Board {
	t.Helper()
	var resp struct {
		Board board.Board `json:"board"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Board
}

func TestGetBoard(t *testing.T) {
	g, _ := newTestRouter(t)
	w := do(t, g, http.MethodGet, "/api/board", "")
	require.Equal(t, http.StatusOK, w.Code)
	b := boardFrom(t, w)
	require.Len(t, b.Companies, 3)
	require.NotEmpty(t, b.MonthKey)
}

func TestStrategyAndNoteRoutes(t *testing.T) {
	g, store := newTestRouter(t)

	w := do(t, g, http.MethodPut, "/api/board/strategy/vision", `{"value":"new vision"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "new vision", store.Board().Strategy.Vision)

	w = do(t, g, http.MethodPut, "/api/board/note", `{"note":"memo"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "memo", store.Board().ShisakuNote)
}

func TestMonthAndTaskRoutes(t *testing.T) {
	g, store := newTestRouter(t)

	w := do(t, g, http.MethodPut, "/api/board/month", `{"month":"2026-02"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-02", store.Board().MonthKey)

	w = do(t, g, http.MethodPost, "/api/board/tasks", "")
	require.Equal(t, http.StatusOK, w.Code)
	tasks := store.Board().MonthlyPlans["2026-02"]
	require.Len(t, tasks, 1)
	require.Equal(t, board.NewTaskTitle, tasks[0].Title)

	w = do(t, g, http.MethodPatch, "/api/board/tasks/"+tasks[0].ID, `{"title":"調べ物","done":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := store.Board().MonthlyPlans["2026-02"][0]
	require.Equal(t, "調べ物", got.Title)
	require.True(t, got.Done)

	w = do(t, g, http.MethodDelete, "/api/board/tasks/"+tasks[0].ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, store.Board().MonthlyPlans["2026-02"])

	w = do(t, g, http.MethodPut, "/api/board/goal", `{"month":"2026-02","goal":"内定2つ"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "内定2つ", store.Board().MonthlyGoals["2026-02"])
}

func TestIndustryRoutes(t *testing.T) {
	g, store := newTestRouter(t)
	n := len(store.Board().Industries)

	w := do(t, g, http.MethodPost, "/api/board/industries", `{"name":"新業界"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.Board().Industries, n+1)

	w = do(t, g, http.MethodPost, "/api/board/industries", `{"name":"新業界"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	first := store.Board().Industries[0]
	w = do(t, g, http.MethodPost, "/api/board/industries/0/move", `{"dir":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, first, store.Board().Industries[1])

	// dir 0 is accepted and leaves the ranking untouched
	before := store.Board().Industries
	w = do(t, g, http.MethodPost, "/api/board/industries/0/move", `{"dir":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, before, store.Board().Industries)

	// deletion needs the explicit confirmed flag
	w = do(t, g, http.MethodDelete, "/api/board/industries/0", "")
	require.Equal(t, http.StatusPreconditionRequired, w.Code)
	require.Contains(t, w.Body.String(), service.ConfirmDeleteIndustry)
	require.Len(t, store.Board().Industries, n+1)

	w = do(t, g, http.MethodDelete, "/api/board/industries/0?confirmed=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.Board().Industries, n)
}

func TestCompanyRoutes(t *testing.T) {
	g, store := newTestRouter(t)

	w := do(t, g, http.MethodPost, "/api/board/companies",
		`{"name":"楽天","industry":"通信・IT","tags":"EC 金融","links":"https://example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	c := store.Board().Companies[0]
	require.Equal(t, "楽天", c.Name)
	require.Equal(t, []string{"EC", "金融"}, c.Tags)
	require.Equal(t, board.StatusNotStarted, c.Status)

	w = do(t, g, http.MethodPatch, "/api/board/companies/"+c.ID, `{"status":"選考中","memo":"一次面接通過"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, board.StatusInterviews, store.Board().Companies[0].Status)

	w = do(t, g, http.MethodPut, "/api/board/companies/"+c.ID+"/rating", `{"rating":9}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 5, store.Board().Companies[0].Rating)

	w = do(t, g, http.MethodDelete, "/api/board/companies/"+c.ID, "")
	require.Equal(t, http.StatusPreconditionRequired, w.Code)

	w = do(t, g, http.MethodDelete, "/api/board/companies/"+c.ID+"?confirmed=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.Board().Companies, 3)
}

func TestCompanyListViewRoute(t *testing.T) {
	g, _ := newTestRouter(t)

	w := do(t, g, http.MethodPut, "/api/board/filters", `{"key":"keyword","value":"AI"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, g, http.MethodGet, "/api/board/companies?sort=rating_desc", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []board.Company
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "ソフトバンク", list[0].Name)
}

func TestQuoteRoutes(t *testing.T) {
	g, store := newTestRouter(t)
	n := len(store.Board().Quotes)

	w := do(t, g, http.MethodPost, "/api/board/quotes", `{"text":"新しい名言","author":"私"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.Board().Quotes, n+1)

	w = do(t, g, http.MethodPut, "/api/board/quotes/0", `{"text":"差し替え"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "差し替え", store.Board().Quotes[0].Text)

	w = do(t, g, http.MethodDelete, "/api/board/quotes/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.Board().Quotes, n)
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestFileUploadRoutes(t *testing.T) {
	g, store := newTestRouter(t)

	body, ctype := multipartBody(t, map[string][]byte{"small.txt": []byte("hello")})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/board/files", body)
	req.Header.Set("Content-Type", ctype)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.Eventually(t, func() bool { return len(store.Board().ShisakuFiles) == 1 },
		time.Second, 5*time.Millisecond)
	att := store.Board().ShisakuFiles[0]
	require.Equal(t, "small.txt", att.Name)

	// oversized upload comes back with the warning and is not stored
	body, ctype = multipartBody(t, map[string][]byte{"big.bin": make([]byte, board.MaxFileSize+1)})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/board/files", body)
	req.Header.Set("Content-Type", ctype)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "500KB")

	time.Sleep(50 * time.Millisecond)
	require.Len(t, store.Board().ShisakuFiles, 1)

	w = do(t, g, http.MethodDelete, "/api/board/files/"+att.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, store.Board().ShisakuFiles)
}

func TestBadRequests(t *testing.T) {
	g, _ := newTestRouter(t)

	require.Equal(t, http.StatusBadRequest, do(t, g, http.MethodPut, "/api/board/month", `{}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, g, http.MethodDelete, "/api/board/quotes/abc", "").Code)
	require.Equal(t, http.StatusBadRequest, do(t, g, http.MethodPost, "/api/board/industries", `{broken`).Code)
}
