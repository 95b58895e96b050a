package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-research/internal/auth"
	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/interfaces"
	"github.com/bobmcallan/vire-research/internal/models"
)

// fakeNewsStorage is an in-memory NewsStorage for handler tests.
type fakeNewsStorage struct {
	items  map[string]models.News
	nextID int
}

func newFakeNewsStorage() *fakeNewsStorage {
	return &fakeNewsStorage{items: make(map[string]models.News)}
}

func (f *fakeNewsStorage) Get(ctx context.Context, id string) (*models.News, error) {
	n, ok := f.items[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &n, nil
}

func (f *fakeNewsStorage) List(ctx context.Context, publishedOnly bool) ([]models.News, error) {
	var out []models.News
	for _, n := range f.items {
		if publishedOnly && !n.IsPublished {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNewsStorage) Save(ctx context.Context, n *models.News) error {
	if n.ID == "" {
		f.nextID++
		n.ID = "news-" + strconv.Itoa(f.nextID)
	}
	f.items[n.ID] = *n
	return nil
}

func (f *fakeNewsStorage) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func newNewsHandler(t *testing.T) (*NewsHandler, *fakeNewsStorage, auth.JWT) {
	t.Helper()
	j := auth.JWT{Secret: []byte("test-secret-at-least-32-characters"), TokenTTL: time.Hour}
	storage := newFakeNewsStorage()
	return NewNewsHandler(storage, j, common.NewSilentLogger()), storage, j
}

func asAdmin(t *testing.T, j auth.JWT, r *http.Request) *http.Request {
	t.Helper()
	token, _, err := j.Sign("admin", auth.RoleAdmin)
	require.NoError(t, err)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	return r
}

const newsBody = `{
	"title": "Fed holds rates",
	"event": "FOMC left the target range unchanged.",
	"affectedAssets": [{"ticker": "spy", "impact": "neutral"}],
	"expectations": "Sideways churn into CPI.",
	"isPublished": true
}`

func TestNewsCreate(t *testing.T) {
	h, storage, j := newNewsHandler(t)

	w := httptest.NewRecorder()
	r := asAdmin(t, j, httptest.NewRequest("POST", "/api/news", strings.NewReader(newsBody)))
	h.CollectionHandler(w, r)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, storage.items, 1)

	body := decodeJSON(t, w)
	assert.Equal(t, "admin", body["createdBy"])
	assets := body["affectedAssets"].([]interface{})
	assert.Equal(t, "SPY", assets[0].(map[string]interface{})["ticker"], "tickers normalised to uppercase")
}

func TestNewsCreate_RequiresAdmin(t *testing.T) {
	h, storage, j := newNewsHandler(t)

	w := httptest.NewRecorder()
	h.CollectionHandler(w, httptest.NewRequest("POST", "/api/news", strings.NewReader(newsBody)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := j.Sign("bob", auth.RoleMember)
	require.NoError(t, err)
	r := httptest.NewRequest("POST", "/api/news", strings.NewReader(newsBody))
	r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})

	w = httptest.NewRecorder()
	h.CollectionHandler(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Empty(t, storage.items)
}

func TestNewsCreate_ValidationFailure(t *testing.T) {
	h, _, j := newNewsHandler(t)

	w := httptest.NewRecorder()
	r := asAdmin(t, j, httptest.NewRequest("POST", "/api/news", strings.NewReader(`{"title": "no event"}`)))
	h.CollectionHandler(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewsList_PublicSeesPublishedOnly(t *testing.T) {
	h, storage, j := newNewsHandler(t)
	storage.items["a"] = models.News{ID: "a", Title: "published", IsPublished: true}
	storage.items["b"] = models.News{ID: "b", Title: "draft", IsPublished: false}

	w := httptest.NewRecorder()
	h.CollectionHandler(w, httptest.NewRequest("GET", "/api/news", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON(t, w)["news"].([]interface{}), 1)

	w = httptest.NewRecorder()
	h.CollectionHandler(w, asAdmin(t, j, httptest.NewRequest("GET", "/api/news", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeJSON(t, w)["news"].([]interface{}), 2)
}

func TestNewsGet_DraftIsAdminOnly(t *testing.T) {
	h, storage, j := newNewsHandler(t)
	storage.items["draft"] = models.News{ID: "draft", Title: "wip", IsPublished: false}

	w := httptest.NewRecorder()
	h.SubrouteHandler(w, httptest.NewRequest("GET", "/api/news/draft", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.SubrouteHandler(w, asAdmin(t, j, httptest.NewRequest("GET", "/api/news/draft", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewsGet_NotFound(t *testing.T) {
	h, _, _ := newNewsHandler(t)

	w := httptest.NewRecorder()
	h.SubrouteHandler(w, httptest.NewRequest("GET", "/api/news/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewsUpdate_PreservesProvenance(t *testing.T) {
	h, storage, j := newNewsHandler(t)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	storage.items["a"] = models.News{
		ID: "a", Title: "old", Event: "e", Expectations: "x",
		IsPublished: true, CreatedAt: created, CreatedBy: "original-author",
	}

	w := httptest.NewRecorder()
	r := asAdmin(t, j, httptest.NewRequest("PUT", "/api/news/a", strings.NewReader(newsBody)))
	h.SubrouteHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	saved := storage.items["a"]
	assert.Equal(t, "Fed holds rates", saved.Title)
	assert.Equal(t, "original-author", saved.CreatedBy)
	assert.Equal(t, created, saved.CreatedAt)
}

func TestNewsUpdate_NotFound(t *testing.T) {
	h, _, j := newNewsHandler(t)

	w := httptest.NewRecorder()
	r := asAdmin(t, j, httptest.NewRequest("PUT", "/api/news/missing", strings.NewReader(newsBody)))
	h.SubrouteHandler(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewsDelete(t *testing.T) {
	h, storage, j := newNewsHandler(t)
	storage.items["a"] = models.News{ID: "a", Title: "t", IsPublished: true}

	w := httptest.NewRecorder()
	h.SubrouteHandler(w, httptest.NewRequest("DELETE", "/api/news/a", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Len(t, storage.items, 1)

	w = httptest.NewRecorder()
	h.SubrouteHandler(w, asAdmin(t, j, httptest.NewRequest("DELETE", "/api/news/a", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, storage.items)
}
