package frontend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"menu-admin-go/auth"
	"menu-admin-go/backend"
	"menu-admin-go/logger"
	"menu-admin-go/models"
)

const apiPath = "/api/ucsb-dining-commons-menu-items"

type apiCall struct {
	Method string
	Path   string
	Query  map[string]string
	Body   string
}

// fakeAPI stands in for the REST backend and records what the pages send.
type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
	items []models.MenuItem
	delay time.Duration
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	q := map[string]string{}
	for k := range r.URL.Query() {
		q[k] = r.URL.Query().Get(k)
	}
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: r.Method, Path: r.URL.Path, Query: q, Body: string(body)})
	items := append([]models.MenuItem(nil), f.items...)
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == apiPath+"/all":
		_ = json.NewEncoder(w).Encode(items)
	case r.Method == http.MethodGet && r.URL.Path == apiPath+"/export":
		_, _ = w.Write([]byte("xlsx-bytes"))
	case r.Method == http.MethodGet && r.URL.Path == apiPath:
		for _, it := range items {
			if q["id"] == itoa(it.ID) {
				_ = json.NewEncoder(w).Encode(it)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"EntityNotFoundException","message":"not found"}`))
	case r.Method == http.MethodPost && r.URL.Path == apiPath+"/post":
		_ = json.NewEncoder(w).Encode(models.MenuItem{ID: 17, Name: q["name"], DiningCommonsCode: q["diningCommonsCode"], Station: q["station"]})
	case r.Method == http.MethodPut && r.URL.Path == apiPath:
		var fields models.MenuItemFields
		_ = json.Unmarshal(body, &fields)
		id, _ := parseID(q["id"])
		_ = json.NewEncoder(w).Encode(models.MenuItem{ID: id, Name: fields.Name, DiningCommonsCode: fields.DiningCommonsCode, Station: fields.Station})
	case r.Method == http.MethodDelete && r.URL.Path == apiPath:
		_ = json.NewEncoder(w).Encode(models.GenericMessage{Message: "UCSBDiningCommonsMenuItem with id " + q["id"] + " deleted"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func (f *fakeAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

type pagesFixture struct {
	router *gin.Engine
	api    *fakeAPI
}

func newPagesFixture(t *testing.T, opts ...backend.Option) *pagesFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeAPI{items: []models.MenuItem{
		{ID: 1, Name: "Baked Pesto Pasta with Chicken", DiningCommonsCode: "ortega", Station: "Entree Specials"},
		{ID: 2, Name: "Tofu Banh Mi Sandwich (v)", DiningCommonsCode: "ortega", Station: "Entree Specials"},
	}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	users := auth.NewUsers()
	require.NoError(t, users.Register("admin", "admin-pass", models.RoleUser, models.RoleAdmin))
	require.NoError(t, users.Register("user", "user-pass", models.RoleUser))

	client := backend.NewClient(srv.URL, opts...)
	r := gin.New()
	NewPages(client, auth.NewSessions("pages-test-secret-pages-test-sec"), users).Register(r)
	return &pagesFixture{router: r, api: api}
}

// browser keeps cookies between requests like a real one would.
type browser struct {
	f       *pagesFixture
	cookies map[string]*http.Cookie
}

func (f *pagesFixture) browser() *browser {
	return &browser{f: f, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.f.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (f *pagesFixture) loggedIn(t *testing.T, username, password string) *browser {
	t.Helper()
	b := f.browser()
	w := b.do(http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	f.api.Reset()
	return b
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.GetLogger().Desugar()
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(prev) })
	return logs
}

func TestLoggedOutVisitorsAreSentToLogin(t *testing.T) {
	f := newPagesFixture(t)

	w := f.browser().do(http.MethodGet, IndexPath, nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Empty(t, f.api.Calls())
}

func TestLoginWithWrongPassword(t *testing.T) {
	f := newPagesFixture(t)

	w := f.browser().do(http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"nope"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `data-testid="login-error"`)
}

func TestIndexForAdminShowsButtons(t *testing.T) {
	f := newPagesFixture(t)
	b := f.loggedIn(t, "admin", "admin-pass")

	w := b.do(http.MethodGet, IndexPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, `data-testid="UCSBDiningCommonsMenuItemTable-cell-row-0-col-name">Baked Pesto Pasta with Chicken</td>`)
	assert.Contains(t, body, `data-testid="UCSBDiningCommonsMenuItemTable-cell-row-1-col-id">2</td>`)
	assert.Contains(t, body, `data-testid="UCSBDiningCommonsMenuItemTable-cell-row-0-col-Edit-button" href="/ucsb-dining-commons-menu-items/edit/1"`)
	assert.Contains(t, body, `data-testid="UCSBDiningCommonsMenuItemTable-cell-row-0-col-Delete-button"`)
	assert.Contains(t, body, "Create UCSBDiningCommonsMenuItem")

	calls := f.api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, apiPath+"/all", calls[0].Path)
}

func TestIndexForUserHidesButtons(t *testing.T) {
	f := newPagesFixture(t)
	b := f.loggedIn(t, "user", "user-pass")

	w := b.do(http.MethodGet, IndexPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, `data-testid="UCSBDiningCommonsMenuItemTable-header-station"`)
	assert.NotContains(t, body, "-col-Edit")
	assert.NotContains(t, body, "-col-Delete")
	assert.NotContains(t, body, "Create UCSBDiningCommonsMenuItem")

	assert.Equal(t, http.StatusForbidden, b.do(http.MethodGet, CreatePath, nil).Code)
	assert.Equal(t, http.StatusForbidden, b.do(http.MethodPost, DeletePath(1), nil).Code)
}

func TestDeleteIssuesOneRequestAndFlashes(t *testing.T) {
	f := newPagesFixture(t)
	b := f.loggedIn(t, "admin", "admin-pass")

	w := b.do(http.MethodPost, DeletePath(2), nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, IndexPath, w.Header().Get("Location"))

	calls := f.api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodDelete, calls[0].Method)
	assert.Equal(t, apiPath, calls[0].Path)
	assert.Equal(t, map[string]string{"id": "2"}, calls[0].Query)

	w = b.do(http.MethodGet, IndexPath, nil)
	assert.Contains(t, w.Body.String(), "UCSBDiningCommonsMenuItem with id 2 deleted")

	// flashes are shown once
	w = b.do(http.MethodGet, IndexPath, nil)
	assert.NotContains(t, w.Body.String(), `data-testid="flash"`)
}

func TestCreateSendsFieldsAsParams(t *testing.T) {
	f := newPagesFixture(t)
	b := f.loggedIn(t, "admin", "admin-pass")

	w := b.do(http.MethodGet, CreatePath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dining Common Code")

	w = b.do(http.MethodPost, CreatePath, url.Values{
		"name":              {"Chicken Caesar Salad"},
		"diningCommonsCode": {"ortega"},
		"station":           {"Entrees"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	calls := f.api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, apiPath+"/post", calls[0].Path)
	assert.Equal(t, map[string]string{
		"name":              "Chicken Caesar Salad",
		"diningCommonsCode": "ortega",
		"station":           "Entrees",
	}, calls[0].Query)
	assert.Empty(t, calls[0].Body)

	w = b.do(http.MethodGet, IndexPath, nil)
	assert.Contains(t, w.Body.String(), "New menu item Created - id: 17 name: Chicken Caesar Salad")
}

func TestCreateRequiresEveryField(t *testing.T) {
	f := newPagesFixture(t)
	b := f.loggedIn(t, "admin", "admin-pass")

	w := b.do(http.MethodPost, CreatePath, url.Values{"station": {"Entrees"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Name is required.")
	assert.Contains(t, w.Body.String(), "Dining Commons Code is required.")
	assert.NotContains(t, w.Body.String(), "Station is required.")
	assert.Empty(t, f.api.Calls())
}

func TestEditFetchesThenPuts(t *testing.T) {
	f := newPagesFixture(t)
	f.api.items = append(f.api.items, models.MenuItem{ID: 17, Name: "Old", DiningCommonsCode: "dlg", Station: "Grill"})
	b := f.loggedIn(t, "admin", "admin-pass")

	w := b.do(http.MethodGet, EditPath(17), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Old"`)

	calls := f.api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]string{"id": "17"}, calls[0].Query)
	f.api.Reset()

	w = b.do(http.MethodPost, EditPath(17), url.Values{
		"name":              {"New"},
		"diningCommonsCode": {"dlg"},
		"station":           {"Grill"},
	})
	assert.Equal(t, http.StatusSeeOther, w.Code)

	calls = f.api.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPut, calls[0].Method)
	assert.Equal(t, apiPath, calls[0].Path)
	assert.Equal(t, map[string]string{"id": "17"}, calls[0].Query)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))
	assert.NotContains(t, body, "id")
	assert.Equal(t, map[string]any{"name": "New", "diningCommonsCode": "dlg", "station": "Grill"}, body)

	w = b.do(http.MethodGet, IndexPath, nil)
	assert.Contains(t, w.Body.String(), "UCSB Dining Commons Menu Item Updated - id: 17 name: New")
}

func TestEditOfMissingItemShowsNoForm(t *testing.T) {
	f := newPagesFixture(t)
	b := f.loggedIn(t, "admin", "admin-pass")

	w := b.do(http.MethodGet, EditPath(99), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Edit UCSB Dining Commons Menu Item")
	assert.NotContains(t, w.Body.String(), "<form method=\"post\" action=\"/ucsb-dining-commons-menu-items/edit/99\"")
}

func TestListTimeoutRendersEmptyTable(t *testing.T) {
	f := newPagesFixture(t, backend.WithTimeout(50*time.Millisecond))
	b := f.loggedIn(t, "user", "user-pass")
	f.api.mu.Lock()
	f.api.delay = 300 * time.Millisecond
	f.api.mu.Unlock()
	logs := observeLogs(t)

	w := b.do(http.MethodGet, IndexPath, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-testid="UCSBDiningCommonsMenuItemTable"`)
	assert.NotContains(t, w.Body.String(), "cell-row-0")

	msg := "Error communicating with backend via GET on " + apiPath + "/all"
	assert.Equal(t, 1, logs.FilterMessage(msg).FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestListIsCachedUntilMutation(t *testing.T) {
	f := newPagesFixture(t, backend.WithCache(backend.NewQueryCache(time.Minute)))
	b := f.loggedIn(t, "admin", "admin-pass")

	b.do(http.MethodGet, IndexPath, nil)
	b.do(http.MethodGet, IndexPath, nil)
	require.Len(t, f.api.Calls(), 1)

	b.do(http.MethodPost, DeletePath(1), nil)
	b.do(http.MethodGet, IndexPath, nil)

	calls := f.api.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, http.MethodDelete, calls[1].Method)
	assert.Equal(t, apiPath+"/all", calls[2].Path)
}

func TestExportProxiesSpreadsheet(t *testing.T) {
	f := newPagesFixture(t)
	b := f.loggedIn(t, "user", "user-pass")

	w := b.do(http.MethodGet, IndexPath+"/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "xlsx-bytes", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "menu-items.xlsx")
}

func TestLogout(t *testing.T) {
	f := newPagesFixture(t)
	b := f.loggedIn(t, "user", "user-pass")

	w := b.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = b.do(http.MethodGet, IndexPath, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func parseID(raw string) (int64, error) { return strconv.ParseInt(raw, 10, 64) }
