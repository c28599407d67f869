package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snippets/internal/auth"
	"snippets/internal/config"
	"snippets/internal/db"
	"snippets/internal/handler"
	"snippets/internal/logging"
	"snippets/internal/model"
	"snippets/internal/repository"
	"snippets/internal/service"
	"snippets/internal/session"
	"snippets/internal/testutil"
	"snippets/internal/view"
	"snippets/web"
)

const (
	testCookie   = "sid"
	testPassword = "correct-horse-battery"
)

type testApp struct {
	e     *echo.Echo
	store *db.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	store := testutil.OpenStore(t)
	logger := logging.Nop()
	cfg := &config.Config{BaseURL: "/", Env: "test", SessionName: testCookie, SessionTTL: time.Hour}

	sessions := session.NewManager(session.NewMemoryStore(), auth.NewSessionTokens("test-secret"), session.Options{
		CookieName: testCookie,
		Path:       cfg.BaseURL,
		TTL:        cfg.SessionTTL,
	}, logger)

	renderer, err := view.New(web.Views(), cfg.BaseURL)
	require.NoError(t, err)

	authService := service.NewAuthService(repository.NewUserRepository(store.DB))
	snippetService := service.NewSnippetService(repository.NewSnippetRepository(store.DB))

	e := echo.New()
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.NewErrorHandler(logger, cfg.BaseURL, false)
	Register(e, cfg, logger, sessions,
		handler.NewSnippetHandler(snippetService, cfg.BaseURL),
		handler.NewAccountHandler(authService, sessions, logger, cfg.BaseURL),
		handler.NewAPIHandler(snippetService),
	)

	return &testApp{e: e, store: store}
}

// client is a browser stand-in that keeps the session cookie between requests.
type client struct {
	app    *testApp
	cookie *http.Cookie
}

func (a *testApp) client() *client {
	return &client{app: a}
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(http.MethodGet, path, nil)
}

func (cl *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, path, form)
}

func (cl *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}

	rec := httptest.NewRecorder()
	cl.app.e.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name != testCookie {
			continue
		}
		if c.MaxAge < 0 {
			cl.cookie = nil
		} else {
			cl.cookie = c
		}
	}
	return rec
}

func (cl *client) register(t *testing.T, username string) {
	t.Helper()
	rec := cl.post("/user/register", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
}

func (cl *client) login(t *testing.T, username string) {
	t.Helper()
	rec := cl.post("/user/login", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}

// signedIn registers username and returns a client logged in as them.
func (a *testApp) signedIn(t *testing.T, username string) *client {
	t.Helper()
	cl := a.client()
	cl.register(t, username)
	cl.login(t, username)
	return cl
}

func (a *testApp) createSnippet(t *testing.T, cl *client, title, content string) model.Snippet {
	t.Helper()
	rec := cl.post("/snippets/create", url.Values{"title": {title}, "content": {content}})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	var s model.Snippet
	require.NoError(t, a.store.DB.Where("title = ?", title).First(&s).Error)
	return s
}

func snippetPath(s model.Snippet, action string) string {
	return "/snippets/" + s.ID.String() + "/" + action
}

func TestCreateSnippet_ListedWithSessionAuthor(t *testing.T) {
	app := newTestApp(t)
	alice := app.signedIn(t, "alice")

	rec := alice.post("/snippets/create", url.Values{
		"title":   {"Note"},
		"content": {"Hello"},
		"author":  {"mallory"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/snippets", rec.Header().Get(echo.HeaderLocation))

	var stored model.Snippet
	require.NoError(t, app.store.DB.First(&stored).Error)
	assert.Equal(t, "alice", stored.Author)
	assert.Equal(t, "Hello", stored.Content)

	page := alice.get("/snippets")
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Contains(t, body, "Note")
	assert.Contains(t, body, `<span class="author">alice</span>`)
	assert.Contains(t, body, "The snippet was created successfully.")

	again := alice.get("/snippets")
	assert.NotContains(t, again.Body.String(), "The snippet was created successfully.")
}

func TestCreateSnippet_AnonymousIsUnauthorized(t *testing.T) {
	app := newTestApp(t)
	anon := app.client()

	rec := anon.post("/snippets/create", url.Values{"title": {"Note"}, "content": {"Hello"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var count int64
	require.NoError(t, app.store.DB.Model(&model.Snippet{}).Count(&count).Error)
	assert.Zero(t, count)

	next := anon.get("/")
	assert.Contains(t, next.Body.String(), "You must be logged in to create a snippet.")
}

func TestCreateSnippet_InvalidTitle(t *testing.T) {
	app := newTestApp(t)
	alice := app.signedIn(t, "alice")

	rec := alice.post("/snippets/create", url.Values{"title": {strings.Repeat("x", 21)}, "content": {"Hello"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title cannot be more than 20 characters.")
}

func TestUpdateSnippet_Authorization(t *testing.T) {
	app := newTestApp(t)
	alice := app.signedIn(t, "alice")
	bob := app.signedIn(t, "bob")
	snippet := app.createSnippet(t, alice, "Note", "Hello")
	form := url.Values{"title": {"Changed"}}

	tests := []struct {
		name     string
		client   *client
		wantCode int
		title    string
	}{
		{name: "anonymous", client: app.client(), wantCode: http.StatusNotFound, title: "Note"},
		{name: "not the author", client: bob, wantCode: http.StatusForbidden, title: "Note"},
		{name: "author", client: alice, wantCode: http.StatusFound, title: "Changed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.client.post(snippetPath(snippet, "update"), form)
			assert.Equal(t, tt.wantCode, rec.Code)

			var stored model.Snippet
			require.NoError(t, app.store.DB.First(&stored, "id = ?", snippet.ID).Error)
			assert.Equal(t, tt.title, stored.Title)
		})
	}
}

func TestUpdateSnippet_NothingToUpdate(t *testing.T) {
	app := newTestApp(t)
	alice := app.signedIn(t, "alice")
	snippet := app.createSnippet(t, alice, "Note", "Hello")
	alice.get("/") // consume the creation flash

	tests := []struct {
		name string
		form url.Values
	}{
		{name: "same values", form: url.Values{"title": {"Note"}, "content": {"Hello"}}},
		{name: "unknown fields only", form: url.Values{"colour": {"blue"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := alice.post(snippetPath(snippet, "update"), tt.form)
			require.Equal(t, http.StatusFound, rec.Code)

			var stored model.Snippet
			require.NoError(t, app.store.DB.First(&stored, "id = ?", snippet.ID).Error)
			assert.True(t, stored.UpdatedAt.Equal(snippet.UpdatedAt))

			page := alice.get("/snippets")
			assert.Contains(t, page.Body.String(), "The snippet was not updated because there was nothing to update.")
		})
	}
}

func TestUpdateSnippet_ChangedFlash(t *testing.T) {
	app := newTestApp(t)
	alice := app.signedIn(t, "alice")
	snippet := app.createSnippet(t, alice, "Note", "Hello")

	rec := alice.post(snippetPath(snippet, "update"), url.Values{"content": {"Hello again"}})
	require.Equal(t, http.StatusFound, rec.Code)

	page := alice.get("/snippets")
	assert.Contains(t, page.Body.String(), "The snippet was updated successfully.")

	var stored model.Snippet
	require.NoError(t, app.store.DB.First(&stored, "id = ?", snippet.ID).Error)
	assert.Equal(t, "Hello again", stored.Content)
	assert.Equal(t, "Note", stored.Title)
}

func TestDeleteSnippet_Authorization(t *testing.T) {
	app := newTestApp(t)
	alice := app.signedIn(t, "alice")
	bob := app.signedIn(t, "bob")
	snippet := app.createSnippet(t, alice, "Note", "Hello")

	assert.Equal(t, http.StatusNotFound, app.client().post(snippetPath(snippet, "delete"), url.Values{}).Code)
	assert.Equal(t, http.StatusForbidden, bob.post(snippetPath(snippet, "delete"), url.Values{}).Code)

	var count int64
	require.NoError(t, app.store.DB.Model(&model.Snippet{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	rec := alice.post(snippetPath(snippet, "delete"), url.Values{})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/snippets", rec.Header().Get(echo.HeaderLocation))

	require.NoError(t, app.store.DB.Model(&model.Snippet{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, http.StatusNotFound, alice.get(snippetPath(snippet, "view")).Code)
}

func TestSnippetPages_Render(t *testing.T) {
	app := newTestApp(t)
	alice := app.signedIn(t, "alice")
	snippet := app.createSnippet(t, alice, "Note", "Hello")

	for _, action := range []string{"view", "update", "delete"} {
		t.Run(action, func(t *testing.T) {
			rec := app.client().get(snippetPath(snippet, action))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Note")
		})
	}

	rec := app.client().get("/snippets/create")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	first := app.client()

	rec := first.post("/user/register", url.Values{"username": {"alice"}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/user/login", rec.Header().Get(echo.HeaderLocation))

	rec = app.client().post("/user/register", url.Values{"username": {"alice"}, "password": {"another-password"}})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var count int64
	require.NoError(t, app.store.DB.Model(&model.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	login := first.get("/user/login")
	assert.Contains(t, login.Body.String(), "Your account was created. Please log in.")
}

func TestRegister_ShortPassword(t *testing.T) {
	app := newTestApp(t)

	rec := app.client().post("/user/register", url.Values{"username": {"alice"}, "password": {"short"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The password must be a minimum length of 10 characters.")

	var count int64
	require.NoError(t, app.store.DB.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLogin_FailuresLookTheSame(t *testing.T) {
	app := newTestApp(t)
	app.client().register(t, "alice")

	tests := []struct {
		name string
		form url.Values
	}{
		{name: "wrong password", form: url.Values{"username": {"alice"}, "password": {"wrong-password"}}},
		{name: "unknown user", form: url.Values{"username": {"nobody"}, "password": {"wrong-password"}}},
		{name: "empty form", form: url.Values{}},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := app.client()
			rec := cl.post("/user/login", tt.form)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/user/login", rec.Header().Get(echo.HeaderLocation))

			page := cl.get("/user/login")
			body := page.Body.String()
			assert.Contains(t, body, "Invalid login attempt.")
			assert.NotContains(t, body, "Logged in as")
			bodies = append(bodies, body)
		})
	}

	require.Len(t, bodies, len(tests))
	for _, b := range bodies[1:] {
		assert.Equal(t, bodies[0], b)
	}
}

func TestRegister_LongMultiBytePassword(t *testing.T) {
	app := newTestApp(t)
	cl := app.client()
	password := strings.Repeat("é", 40)

	rec := cl.post("/user/register", url.Values{"username": {"alice"}, "password": {password}})
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/user/login", rec.Header().Get(echo.HeaderLocation))

	rec = cl.post("/user/login", url.Values{"username": {"alice"}, "password": {password}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, cl.get("/").Body.String(), "Logged in as alice")
}

func TestLogin_UsernameIsTrimmed(t *testing.T) {
	app := newTestApp(t)
	cl := app.client()

	rec := cl.post("/user/register", url.Values{"username": {"  alice  "}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)

	rec = cl.post("/user/login", url.Values{"username": {"  alice  "}, "password": {testPassword}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, cl.get("/").Body.String(), "Logged in as alice")
}

func TestLogin_RegeneratesSession(t *testing.T) {
	app := newTestApp(t)
	cl := app.client()
	cl.register(t, "alice")
	before := cl.cookie
	require.NotNil(t, before)

	cl.login(t, "alice")
	require.NotNil(t, cl.cookie)
	assert.NotEqual(t, before.Value, cl.cookie.Value)

	stale := &client{app: app, cookie: before}
	assert.NotContains(t, stale.get("/").Body.String(), "Logged in as")
	assert.Contains(t, cl.get("/").Body.String(), "Logged in as alice")
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusNotFound, app.client().get("/user/logout").Code)

	alice := app.signedIn(t, "alice")
	rec := alice.get("/user/logout")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.Nil(t, alice.cookie)
	assert.NotContains(t, alice.get("/").Body.String(), "Logged in as")
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t)
	cl := app.client()

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "unknown path", method: http.MethodGet, path: "/nope"},
		{name: "unknown method", method: http.MethodPost, path: "/snippets"},
		{name: "malformed id", method: http.MethodGet, path: "/snippets/not-an-id/view"},
		{name: "missing snippet", method: http.MethodGet, path: "/snippets/0b5d5d4e-4a4b-4c39-9a53-0f2f4f3b8d11/view"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := cl.do(tt.method, tt.path, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "Not Found")
		})
	}
}

func TestAPI(t *testing.T) {
	app := newTestApp(t)
	alice := app.signedIn(t, "alice")
	snippet := app.createSnippet(t, alice, "Note", "Hello")

	rec := app.client().get("/api/snippets")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.SnippetView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Note", list[0].Title)
	assert.Equal(t, "alice", list[0].Author)

	rec = app.client().get("/api/snippets/" + snippet.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	var one model.SnippetView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, snippet.ID, one.ID)

	rec = app.client().get("/api/snippets/not-an-id")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.Contains(t, rec.Body.String(), `"code":"SNIPPET_NOT_FOUND"`)

	rec = app.client().get("/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
}

func TestHealthAndAssets(t *testing.T) {
	app := newTestApp(t)
	cl := app.client()

	rec := cl.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	assert.Equal(t, http.StatusOK, cl.get("/css/styles.css").Code)
	assert.Equal(t, http.StatusOK, cl.get("/js/index.js").Code)
	assert.Equal(t, http.StatusNotFound, cl.get("/js/missing.js").Code)
}
