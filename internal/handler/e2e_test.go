package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/driftlab-studio/studio-cms/internal/builder"
	"github.com/driftlab-studio/studio-cms/internal/handler"
	"github.com/driftlab-studio/studio-cms/internal/models"
	"github.com/driftlab-studio/studio-cms/internal/renderer"
	"github.com/driftlab-studio/studio-cms/internal/router"
	"github.com/driftlab-studio/studio-cms/internal/service"
)

const e2eSecret = "e2e-secret"

// memFormStore / memSubmissionStore / memDocumentStore / memUserStore back
// the real services so the full HTTP stack runs without a database.

type memFormStore struct {
	mu    sync.Mutex
	forms map[string]*models.Form
}

func (s *memFormStore) Create(_ context.Context, form *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if form.ID == "" {
		form.ID = fmt.Sprintf("form-%d", len(s.forms)+1)
	}
	form.CreatedAt = time.Now()
	copied := *form
	s.forms[form.ID] = &copied
	return nil
}

func (s *memFormStore) FindAll(_ context.Context) ([]models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Form, 0, len(s.forms))
	for _, f := range s.forms {
		out = append(out, *f)
	}
	return out, nil
}

func (s *memFormStore) FindByID(_ context.Context, id string) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f
	return &copied, nil
}

func (s *memFormStore) FindBySlug(_ context.Context, slug string) (*models.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.forms {
		if f.Slug == slug {
			copied := *f
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memFormStore) Save(_ context.Context, form *models.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[form.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *form
	s.forms[form.ID] = &copied
	return nil
}

func (s *memFormStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.forms, id)
	return nil
}

func (s *memFormStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.forms)), nil
}

type memSubmissionStore struct {
	mu   sync.Mutex
	subs []*models.Submission
}

func (s *memSubmissionStore) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	copied := *sub
	s.subs = append([]*models.Submission{&copied}, s.subs...)
	return nil
}

func (s *memSubmissionStore) byForm(formID string) []models.Submission {
	var out []models.Submission
	for _, sub := range s.subs {
		if sub.FormID == formID {
			out = append(out, *sub)
		}
	}
	return out
}

func (s *memSubmissionStore) FindByForm(_ context.Context, formID string, offset, limit int) ([]models.Submission, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.byForm(formID)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *memSubmissionStore) FindAllByForm(_ context.Context, formID string) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byForm(formID), nil
}

func (s *memSubmissionStore) FindByID(_ context.Context, id string) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.ID == id {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memSubmissionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.ID == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memSubmissionStore) DeleteByForm(_ context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.subs[:0]
	for _, sub := range s.subs {
		if sub.FormID != formID {
			kept = append(kept, sub)
		}
	}
	s.subs = kept
	return nil
}

func (s *memSubmissionStore) CountByForm(_ context.Context, formID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.byForm(formID))), nil
}

func (s *memSubmissionStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.subs)), nil
}

type memDocumentStore struct {
	mu   sync.Mutex
	docs []*models.Document
}

func (s *memDocumentStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.ID == "" {
		doc.ID = fmt.Sprintf("doc-%d", len(s.docs)+1)
	}
	copied := *doc
	s.docs = append(s.docs, &copied)
	return nil
}

func (s *memDocumentStore) FindByID(_ context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range s.docs {
		if doc.ID == id {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memDocumentStore) FindBySubmission(_ context.Context, submissionID string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Document
	for _, doc := range s.docs {
		if doc.SubmissionID == submissionID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *memDocumentStore) FindAll(_ context.Context) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (s *memDocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range s.docs {
		if doc.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memDocumentStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.docs)), nil
}

type memUserStore struct {
	mu    sync.Mutex
	users []*models.User
}

func (s *memUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(s.users)+1)
	}
	copied := *user
	s.users = append(s.users, &copied)
	return nil
}

func (s *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// newTestServer assembles the full stack on in-memory stores.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	formSvc := service.NewFormService(&memFormStore{forms: map[string]*models.Form{}})
	docSvc, err := service.NewDocumentService(&memDocumentStore{}, t.TempDir())
	require.NoError(t, err)
	subSvc := service.NewSubmissionService(&memSubmissionStore{}, formSvc, docSvc, nil)
	authSvc := service.NewAuthService(&memUserStore{}, e2eSecret)
	require.NoError(t, authSvc.SeedAdmin(context.Background(), "admin@studio.local", "admin123"))

	r := router.New(e2eSecret,
		handler.NewAuthHandler(authSvc),
		handler.NewFormHandler(formSvc, subSvc),
		handler.NewSubmissionHandler(subSvc, docSvc),
		handler.NewDocumentHandler(docSvc),
		handler.NewPublicHandler(formSvc, subSvc),
		handler.NewDashboardHandler(formSvc, subSvc, docSvc),
	)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": "admin@studio.local", "password": "admin123"})
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.True(t, decoded.Success)
	require.NotEmpty(t, decoded.Data.Token)
	return decoded.Data.Token
}

func doJSON(t *testing.T, method, url, token string, payload any, out any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createContactForm(t *testing.T, srv *httptest.Server, token string) models.Form {
	t.Helper()

	var created struct {
		Data models.Form `json:"data"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/forms", token, map[string]string{
		"title": "Contact Us",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	form := created.Data
	require.Equal(t, "contact-us", form.Slug)

	// Author the fields through the builder against the live API.
	store := builder.NewHTTPStore(srv.URL, token, srv.Client())
	b := builder.New(form, store)
	name, err := b.AddField(models.FieldText)
	require.NoError(t, err)
	label := "Name"
	required := true
	b.UpdateField(name.ID, builder.FieldPatch{Label: &label, Required: &required})
	plan, err := b.AddField(models.FieldRadio)
	require.NoError(t, err)
	planLabel := "Plan"
	options := []string{"Basic", "Pro"}
	b.UpdateField(plan.ID, builder.FieldPatch{Label: &planLabel, Options: &options})
	_, err = b.AddField(models.FieldFile)
	require.NoError(t, err)
	require.NoError(t, b.Save(context.Background()))

	var fetched struct {
		Data models.Form `json:"data"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/forms/"+form.ID, token, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, fetched.Data.Fields, 3)
	return fetched.Data
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/forms")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/forms", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBuildSubmitAndReview(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	// A visitor fills the rendered form and submits it.
	session := renderer.NewSession(form, srv.URL+"/api/forms/"+form.Slug+"/submissions", srv.Client())
	session.SetValue(form.Fields[0].ID, "Ada Lovelace")
	session.SetValue(form.Fields[1].ID, "Pro")
	session.AttachFile(form.Fields[2].ID, renderer.Upload{
		Filename:    "brief.pdf",
		ContentType: "application/pdf",
		Content:     []byte("project brief"),
	})

	result, err := session.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, renderer.StateSuccess, session.State())
	assert.NotEmpty(t, result.Message)

	// The admin sees it in the paginated viewer.
	var listed struct {
		Data       []models.Submission `json:"data"`
		Pagination struct {
			Total      int64 `json:"total"`
			TotalPages int   `json:"totalPages"`
		} `json:"pagination"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/forms/"+form.ID+"/submissions", token, nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed.Data, 1)
	assert.Equal(t, int64(1), listed.Pagination.Total)
	assert.Equal(t, 1, listed.Pagination.TotalPages)

	sub := listed.Data[0]
	assert.Equal(t, "Ada Lovelace", sub.Data[form.Fields[0].ID])
	assert.Equal(t, "Pro", sub.Data[form.Fields[1].ID])
	require.Len(t, sub.Files, 1)
	assert.Equal(t, "brief.pdf", sub.Files[0].Filename)

	// Detail view includes the stored document.
	var detail struct {
		Data      models.Submission `json:"data"`
		Documents []models.Document `json:"documents"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/submissions/"+sub.ID, token, nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, detail.Documents, 1)
	assert.Equal(t, "brief.pdf", detail.Documents[0].FileName)

	// The uploaded blob downloads byte for byte.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/documents/"+detail.Documents[0].ID+"/download", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	dl, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	var blob bytes.Buffer
	_, err = blob.ReadFrom(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "project brief", blob.String())
}

func TestPublicSubmitValidation(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	var decoded struct {
		Success     bool              `json:"success"`
		FieldErrors map[string]string `json:"fieldErrors"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/forms/"+form.Slug+"/submissions", "", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Send an empty multipart body the way the renderer would.
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/forms/"+form.Slug+"/submissions",
		strings.NewReader("--b--\r\n"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	require.Equal(t, http.StatusBadRequest, raw.StatusCode)
	require.NoError(t, json.NewDecoder(raw.Body).Decode(&decoded))
	assert.False(t, decoded.Success)
	assert.Contains(t, decoded.FieldErrors, form.Fields[0].ID)
}

func TestInactiveFormRefusesTraffic(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	store := builder.NewHTTPStore(srv.URL, token, srv.Client())
	b := builder.New(form, store)
	b.SetActive(false)
	require.NoError(t, b.Save(context.Background()))

	session := renderer.NewSession(form, srv.URL+"/api/forms/"+form.Slug+"/submissions", srv.Client())
	session.SetValue(form.Fields[0].ID, "Ada")
	_, err := session.Submit(context.Background())
	var serr *renderer.SubmitError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, renderer.StateError, session.State())

	resp, err := http.Get(srv.URL + "/api/public/forms/" + form.Slug)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSlugImmutableOverAPI(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	var decoded struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/forms/"+form.ID, token, map[string]any{
		"title":    form.Title,
		"slug":     "new-slug",
		"fields":   form.Fields,
		"settings": form.Config(),
	}, &decoded)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, decoded.Success)
	assert.Contains(t, decoded.Error, "slug")
}

func TestCSVExportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	session := renderer.NewSession(form, srv.URL+"/api/forms/"+form.Slug+"/submissions", srv.Client())
	session.SetValue(form.Fields[0].ID, `Ada "Countess" L.`)
	session.SetValue(form.Fields[1].ID, "Basic")
	_, err := session.Submit(context.Background())
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/forms/"+form.ID+"/submissions/export", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), form.Slug+"-submissions-")

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Submitted At","Name","Plan","Untitled Question"`, lines[0])
	assert.Contains(t, lines[1], `"Ada ""Countess"" L.","Basic"`)
}

func TestHostedFormPage(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	resp, err := http.Get(srv.URL + "/f/" + form.Slug)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	html := body.String()
	assert.Contains(t, html, "<h1>Contact Us</h1>")
	assert.Contains(t, html, `action="/api/forms/`+form.Slug+`/submissions"`)
	assert.Contains(t, html, `type="radio"`)

	resp, err = http.Get(srv.URL + "/f/no-such-form")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreviewEndpointDisablesInputs(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/forms/"+form.ID+"/preview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, body.String(), "<button type=\"submit\"")
	assert.Contains(t, body.String(), " disabled")
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	session := renderer.NewSession(form, srv.URL+"/api/forms/"+form.Slug+"/submissions", srv.Client())
	session.SetValue(form.Fields[0].ID, "Ada")
	_, err := session.Submit(context.Background())
	require.NoError(t, err)

	var decoded struct {
		FormCount       int              `json:"formCount"`
		SubmissionCount int64            `json:"submissionCount"`
		Forms           []map[string]any `json:"forms"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/dashboard", token, nil, &decoded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decoded.FormCount)
	assert.Equal(t, int64(1), decoded.SubmissionCount)
	require.Len(t, decoded.Forms, 1)
	assert.Equal(t, form.Slug, decoded.Forms[0]["slug"])
}

func TestDeleteFormPurgesSubmissions(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv)
	form := createContactForm(t, srv, token)

	session := renderer.NewSession(form, srv.URL+"/api/forms/"+form.Slug+"/submissions", srv.Client())
	session.SetValue(form.Fields[0].ID, "Ada")
	_, err := session.Submit(context.Background())
	require.NoError(t, err)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/forms/"+form.ID, token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/forms/"+form.ID, token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var listed struct {
		Data []models.Submission `json:"data"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/forms/"+form.ID+"/submissions", token, nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, listed.Data)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
