package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sheetdrop/internal/errs"
	"sheetdrop/internal/model"
	"sheetdrop/internal/service"
	"sheetdrop/internal/session"
	"sheetdrop/internal/upload"
)

// memUsers is an in-memory credential store for handler tests.
type memUsers struct {
	byName map[string]*model.User
	nextID int64
}

var _ service.UserStore = (*memUsers)(nil)

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	if m.byName == nil {
		m.byName = map[string]*model.User{}
	}
	for _, ex := range m.byName {
		if ex.Username == u.Username {
			return errs.ErrDuplicateUsername
		}
		if ex.Email == u.Email {
			return errs.ErrDuplicateEmail
		}
	}
	m.nextID++
	u.ID = m.nextID
	cpy := *u
	m.byName[u.Username] = &cpy
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) UsernameTaken(_ context.Context, username string) (bool, error) {
	_, ok := m.byName[username]
	return ok, nil
}

func (m *memUsers) EmailTaken(_ context.Context, email string) (bool, error) {
	for _, u := range m.byName {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type testEnv struct {
	srv       *httptest.Server
	client    *http.Client
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	blobs, err := upload.NewFSStore(dir)
	require.NoError(t, err)

	s := New(Config{
		Addr:     ":0",
		Logger:   zap.NewNop(),
		Auth:     service.NewAuth(&memUsers{}),
		Sessions: session.NewManager([]byte("test-secret"), time.Hour, false),
		Uploads:  upload.NewService(blobs),
	})

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		srv:       srv,
		client:    &http.Client{Jar: jar, Timeout: 10 * time.Second},
		uploadDir: dir,
	}
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) register(t *testing.T, username, email, password string) {
	t.Helper()
	resp, body := e.postForm(t, "/register", url.Values{
		"username": {username}, "email": {email}, "password": {password},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Registration successful! Please log in.")
}

func (e *testEnv) login(t *testing.T, username, password string) {
	t.Helper()
	resp, body := e.postForm(t, "/login", url.Values{
		"username": {username}, "password": {password},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Login successful!")
	require.Contains(t, body, "Signed in as "+username)
}

func multipartFile(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (e *testEnv) uploadFile(t *testing.T, filename, content string) (*http.Response, string) {
	t.Helper()
	buf, contentType := multipartFile(t, "file", filename, content)
	resp, err := e.client.Post(e.srv.URL+"/upload", contentType, buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.get(t, "/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, `"status":"ok"`)
}

func TestRegisterFlow(t *testing.T) {
	e := newTestEnv(t)

	resp, body := e.get(t, "/register")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<h1>Register</h1>")

	e.register(t, "alice", "a@x.com", "pw123456")

	// Same username, different email.
	resp, body = e.postForm(t, "/register", url.Values{
		"username": {"alice"}, "email": {"other@x.com"}, "password": {"pw123456"},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, body, "User alice is already registered.")

	// Same email, new username.
	resp, body = e.postForm(t, "/register", url.Values{
		"username": {"alice2"}, "email": {"a@x.com"}, "password": {"pw123456"},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, body, "Email a@x.com is already registered.")
}

func TestRegisterMissingFields(t *testing.T) {
	e := newTestEnv(t)

	cases := []struct {
		form url.Values
		want string
	}{
		{url.Values{"email": {"a@x.com"}, "password": {"pw"}}, "Username is required."},
		{url.Values{"username": {"a"}, "password": {"pw"}}, "Email is required."},
		{url.Values{"username": {"a"}, "email": {"a@x.com"}}, "Password is required."},
	}
	for _, tc := range cases {
		resp, body := e.postForm(t, "/register", tc.form)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body, tc.want)
	}
}

func TestLoginFlow(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "bob", "b@x.com", "pw")

	resp, body := e.postForm(t, "/login", url.Values{
		"username": {"nobody"}, "password": {"pw"},
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, "Incorrect username.")

	resp, body = e.postForm(t, "/login", url.Values{
		"username": {"bob"}, "password": {"wrong"},
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body, "Incorrect password.")

	// A failed login establishes no session.
	resp, body = e.get(t, "/upload")
	require.Contains(t, body, "Please log in to access this page.")

	e.login(t, "bob", "pw")

	// Now the guard lets us through.
	resp, body = e.get(t, "/upload")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Signed in as bob")
}

func TestLogoutIdempotent(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "bob", "b@x.com", "pw")
	e.login(t, "bob", "pw")

	for i := 0; i < 2; i++ {
		resp, body := e.get(t, "/logout")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, "You have been logged out.")
	}

	_, body := e.get(t, "/upload")
	require.Contains(t, body, "Please log in to access this page.")
}

func TestUploadRequiresAuthentication(t *testing.T) {
	e := newTestEnv(t)

	// Even a well-formed upload is bounced to login before any
	// filename validation runs.
	resp, body := e.uploadFile(t, "report.xlsx", "cells")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "<h1>Log In</h1>")
	require.Contains(t, body, "Please log in to access this page.")
	require.NoFileExists(t, filepath.Join(e.uploadDir, "report.xlsx"))
}

func TestUploadFlow(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "bob", "b@x.com", "pw")
	e.login(t, "bob", "pw")

	resp, body := e.uploadFile(t, "report.xlsx", "cells")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "File &#39;report.xlsx&#39; uploaded successfully!")

	data, err := os.ReadFile(filepath.Join(e.uploadDir, "report.xlsx"))
	require.NoError(t, err)
	require.Equal(t, "cells", string(data))
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "bob", "b@x.com", "pw")
	e.login(t, "bob", "pw")

	resp, body := e.uploadFile(t, "malware.exe", "MZ")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "Invalid file type. Please upload .xls or .xlsx files.")
	require.NoFileExists(t, filepath.Join(e.uploadDir, "malware.exe"))
}

func TestUploadEmptyFilename(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "bob", "b@x.com", "pw")
	e.login(t, "bob", "pw")

	resp, body := e.uploadFile(t, "", "cells")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body, "No selected file.")
}

func TestUploadMissingFilePart(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "bob", "b@x.com", "pw")
	e.login(t, "bob", "pw")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file here"))
	require.NoError(t, mw.Close())

	resp, err := e.client.Post(e.srv.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(body), "No file part in the request.")
}

func TestIndexRedirects(t *testing.T) {
	e := newTestEnv(t)

	_, body := e.get(t, "/")
	require.Contains(t, body, "<h1>Log In</h1>")

	e.register(t, "bob", "b@x.com", "pw")
	e.login(t, "bob", "pw")

	_, body = e.get(t, "/")
	require.Contains(t, body, "<h1>Upload Spreadsheet</h1>")
}
