package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	appcontext "github.com/SeakMengs/SignFlow/internal/app_context"
	"github.com/SeakMengs/SignFlow/internal/auth"
	"github.com/SeakMengs/SignFlow/internal/config"
	"github.com/SeakMengs/SignFlow/internal/controller"
	filestorage "github.com/SeakMengs/SignFlow/internal/file_storage"
	"github.com/SeakMengs/SignFlow/internal/middleware"
	"github.com/SeakMengs/SignFlow/internal/model"
	"github.com/SeakMengs/SignFlow/internal/route"
	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterCustomValidations(v); err != nil {
			panic(err)
		}
	}
}

type fakeDocuments struct{}

func (fakeDocuments) Bucket() string { return "signflow-test" }

func (fakeDocuments) Put(ctx context.Context, ownerUserID, fileName string, data []byte) (*filestorage.Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, filestorage.ErrInvalidPDF
	}
	return &filestorage.Document{
		Ref:         "documents/" + ownerUserID + "/" + fileName,
		BucketName:  "signflow-test",
		FileName:    fileName,
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		PageCount:   2,
	}, nil
}

func (fakeDocuments) PresignedURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + ref + "?expires=" + expiry.String(), nil
}

type fakeFiles struct {
	mu    sync.Mutex
	next  int
	files map[string]model.File
}

func (f *fakeFiles) Create(ctx context.Context, tx *gorm.DB, file *model.File) (*model.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	file.ID = "file-" + strconv.Itoa(f.next)
	f.files[file.ID] = *file
	return file, nil
}

func (f *fakeFiles) GetById(ctx context.Context, tx *gorm.DB, fileID string) (*model.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileID]
	if !ok {
		return nil, esign.ErrNotFound
	}
	return &file, nil
}

func (f *fakeFiles) Delete(ctx context.Context, tx *gorm.DB, file *model.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, file.ID)
	return nil
}

type outbox struct {
	mu      sync.Mutex
	intents []esign.Intent
}

func (o *outbox) Notify(ctx context.Context, intent esign.Intent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.intents = append(o.intents, intent)
	return nil
}

func (o *outbox) tokenOf(t *testing.T, email string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, intent := range o.intents {
		if intent.RecipientEmail == email && intent.Token != "" {
			return intent.Token
		}
	}
	t.Fatalf("no notification was sent to %s", email)
	return ""
}

func (o *outbox) count(kind esign.IntentKind) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, intent := range o.intents {
		if intent.Kind == kind {
			n++
		}
	}
	return n
}

type testServer struct {
	router  *gin.Engine
	service *esign.Service
	outbox  *outbox
	jwt     *auth.JWT
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop().Sugar()
	box := &outbox{}
	service := esign.NewService(esign.ServiceOptions{
		Store:    esign.NewMemoryStore(),
		Notifier: box,
		Ledger:   esign.NewMemoryLedger(),
		Logger:   logger,
	})
	jwtService := auth.NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, logger)

	app := &appcontext.Application{
		Config:     &config.Config{FrontendURL: "https://sign.test"},
		Logger:     logger,
		Service:    service,
		Documents:  fakeDocuments{},
		Files:      &fakeFiles{files: map[string]model.File{}},
		JWTService: jwtService,
	}
	m := middleware.NewMiddleware(app, nil)
	c := controller.NewController(app)

	r := gin.New()
	api := r.Group("/api")
	route.V1_Documents(api, c.Document, m)
	route.V1_SigningRequests(api, c.SigningRequest, m)
	route.V1_Sign(api, c.Sign)
	route.V1_ShortLinks(api, c.ShortLink)

	t.Cleanup(service.Wait)
	return &testServer{router: r, service: service, outbox: box, jwt: jwtService}
}

func (s *testServer) accessToken(t *testing.T, user auth.JWTPayload) string {
	t.Helper()
	_, access, err := s.jwt.GenerateRefreshAndAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateRefreshAndAccessToken() error = %v", err)
	}
	return *access
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return w.Code, env
}

func (s *testServer) upload(t *testing.T, fileName string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("document", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

var (
	olivia  = auth.JWTPayload{ID: "user-1", Email: "owner@example.com", Name: "Olivia Owner"}
	mallory = auth.JWTPayload{ID: "user-2", Email: "mallory@example.com", Name: "Mallory"}
)

func twoSignerBody(ordering string) gin.H {
	return gin.H{
		"documentName":      "NDA.pdf",
		"documentRef":       "documents/user-1/nda.pdf",
		"documentPageCount": 2,
		"ordering":          ordering,
		"signers": []gin.H{
			{"order": 1, "name": "Alice", "email": "alice@example.com"},
			{"order": 2, "name": "Bob", "email": "bob@example.com"},
		},
		"fields": []gin.H{
			{"id": "f1", "signerOrder": 1, "fieldType": "signature", "pageNumber": 1, "x": 10, "y": 10, "width": 20, "height": 5, "required": true},
			{"id": "f2", "signerOrder": 2, "fieldType": "signature", "pageNumber": 2, "x": 10, "y": 80, "width": 20, "height": 5, "required": true},
		},
	}
}

func createRequest(t *testing.T, s *testServer, token string, body gin.H) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/signing-requests", token, body)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, body errors %s", code, env.Errors)
	}
	var data struct {
		SigningRequest esign.CreateResult `json:"signingRequest"`
	}
	decodeData(t, env, &data)
	s.service.Wait()
	return data.SigningRequest.ID
}

func signPath(id, email, token string) string {
	q := url.Values{"email": {email}, "token": {token}}
	return "/api/v1/sign/" + id + "?" + q.Encode()
}

func TestParallelSigningFlow(t *testing.T) {
	s := newTestServer(t)
	owner := s.accessToken(t, olivia)
	id := createRequest(t, s, owner, twoSignerBody("parallel"))

	if n := s.outbox.count(esign.IntentInvitation); n != 2 {
		t.Fatalf("invitations = %d, want 2", n)
	}
	bobToken := s.outbox.tokenOf(t, "bob@example.com")
	aliceToken := s.outbox.tokenOf(t, "alice@example.com")

	code, env := s.do(t, http.MethodGet, signPath(id, "bob@example.com", bobToken), "", nil)
	if code != http.StatusOK {
		t.Fatalf("signer view status = %d", code)
	}
	var view struct {
		SigningRequest esign.SignerView `json:"signingRequest"`
	}
	decodeData(t, env, &view)
	if len(view.SigningRequest.EditableFields) != 1 || view.SigningRequest.EditableFields[0].ID != "f2" {
		t.Errorf("editable fields = %+v, want only f2", view.SigningRequest.EditableFields)
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/sign/"+id, "", gin.H{
		"email": "bob@example.com", "token": bobToken, "fieldValues": gin.H{"f2": "Bob"},
	})
	if code != http.StatusOK {
		t.Fatalf("bob submit status = %d", code)
	}

	code, env = s.do(t, http.MethodPost, "/api/v1/sign/"+id, "", gin.H{
		"email": "alice@example.com", "token": aliceToken, "fieldValues": gin.H{"f1": "Alice"},
	})
	if code != http.StatusOK {
		t.Fatalf("alice submit status = %d", code)
	}
	var done struct {
		Status esign.RequestStatus `json:"status"`
	}
	decodeData(t, env, &done)
	if done.Status != esign.RequestStatusCompleted {
		t.Errorf("status = %s, want %s", done.Status, esign.RequestStatusCompleted)
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/sign/"+id, "", gin.H{
		"email": "alice@example.com", "token": aliceToken, "fieldValues": gin.H{"f1": "Again"},
	})
	if code != http.StatusConflict {
		t.Errorf("second submit status = %d, want %d", code, http.StatusConflict)
	}
}

func TestSequentialOutOfTurn(t *testing.T) {
	s := newTestServer(t)
	id := createRequest(t, s, s.accessToken(t, olivia), twoSignerBody("sequential"))

	if n := s.outbox.count(esign.IntentInvitation); n != 1 {
		t.Fatalf("invitations = %d, want only the first signer", n)
	}

	// Bob never got an email yet, so read his token from the owner's share links.
	code, env := s.do(t, http.MethodGet, "/api/v1/signing-requests/"+id+"/share", s.accessToken(t, olivia), nil)
	if code != http.StatusOK {
		t.Fatalf("share status = %d", code)
	}
	var share struct {
		Links []struct {
			Email    string `json:"email"`
			Token    string `json:"token"`
			ShortURL string `json:"shortUrl"`
		} `json:"links"`
	}
	decodeData(t, env, &share)
	var bobToken string
	for _, l := range share.Links {
		if l.Email == "bob@example.com" {
			bobToken = l.Token
			if l.ShortURL != "https://sign.test/s/"+l.Token {
				t.Errorf("short url = %s", l.ShortURL)
			}
		}
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/sign/"+id, "", gin.H{
		"email": "bob@example.com", "token": bobToken, "fieldValues": gin.H{"f2": "Bob"},
	})
	if code != http.StatusConflict {
		t.Errorf("out of turn submit status = %d, want %d", code, http.StatusConflict)
	}
}

func TestSignerAccessErrors(t *testing.T) {
	s := newTestServer(t)
	id := createRequest(t, s, s.accessToken(t, olivia), twoSignerBody("parallel"))
	aliceToken := s.outbox.tokenOf(t, "alice@example.com")
	bobToken := s.outbox.tokenOf(t, "bob@example.com")

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"Valid link", signPath(id, "alice@example.com", aliceToken), http.StatusOK},
		{"Email case is ignored", signPath(id, "ALICE@example.com", aliceToken), http.StatusOK},
		{"Token of another signer", signPath(id, "alice@example.com", bobToken), http.StatusForbidden},
		{"Unknown request", signPath("missing", "alice@example.com", aliceToken), http.StatusNotFound},
		{"Missing token", "/api/v1/sign/" + id + "?email=alice@example.com", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := s.do(t, http.MethodGet, tt.path, "", nil)
			if code != tt.wantCode {
				t.Errorf("GET %s status = %d, want %d", tt.path, code, tt.wantCode)
			}
		})
	}
}

func TestSignerDocumentLink(t *testing.T) {
	s := newTestServer(t)
	id := createRequest(t, s, s.accessToken(t, olivia), twoSignerBody("parallel"))
	token := s.outbox.tokenOf(t, "alice@example.com")

	path := "/api/v1/sign/" + id + "/document?" + url.Values{"email": {"alice@example.com"}, "token": {token}}.Encode()
	code, env := s.do(t, http.MethodGet, path, "", nil)
	if code != http.StatusOK {
		t.Fatalf("document status = %d", code)
	}
	var data struct {
		URL string `json:"url"`
	}
	decodeData(t, env, &data)
	if !strings.HasPrefix(data.URL, "https://storage.test/documents/user-1/nda.pdf") {
		t.Errorf("url = %s", data.URL)
	}
}

func TestVoidThenSign(t *testing.T) {
	s := newTestServer(t)
	owner := s.accessToken(t, olivia)
	id := createRequest(t, s, owner, twoSignerBody("parallel"))
	token := s.outbox.tokenOf(t, "alice@example.com")

	if code, _ := s.do(t, http.MethodPost, "/api/v1/signing-requests/"+id+"/void", s.accessToken(t, mallory), gin.H{"reason": "mine now"}); code != http.StatusForbidden {
		t.Errorf("void by stranger status = %d, want %d", code, http.StatusForbidden)
	}

	code, _ := s.do(t, http.MethodPost, "/api/v1/signing-requests/"+id+"/void", owner, gin.H{"reason": "wrong document"})
	if code != http.StatusOK {
		t.Fatalf("void status = %d", code)
	}
	if n := s.outbox.count(esign.IntentVoided); n != 2 {
		t.Errorf("void notices = %d, want 2", n)
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/sign/"+id, "", gin.H{
		"email": "alice@example.com", "token": token, "fieldValues": gin.H{"f1": "Alice"},
	})
	if code != http.StatusConflict {
		t.Errorf("submit after void status = %d, want %d", code, http.StatusConflict)
	}

	if code, _ := s.do(t, http.MethodPost, "/api/v1/signing-requests/"+id+"/void", owner, nil); code != http.StatusConflict {
		t.Errorf("second void status = %d, want %d", code, http.StatusConflict)
	}
}

func TestCreateSigningRequestValidation(t *testing.T) {
	s := newTestServer(t)
	owner := s.accessToken(t, olivia)

	tests := []struct {
		name     string
		token    string
		mutate   func(b gin.H)
		wantCode int
	}{
		{"No token", "", func(b gin.H) {}, http.StatusUnauthorized},
		{"No signers", owner, func(b gin.H) { b["signers"] = []gin.H{} }, http.StatusBadRequest},
		{"Unknown field type", owner, func(b gin.H) {
			b["fields"] = []gin.H{{"id": "f1", "signerOrder": 1, "fieldType": "stamp", "pageNumber": 1, "width": 5, "height": 5}}
		}, http.StatusBadRequest},
		{"Field past the last page", owner, func(b gin.H) {
			b["fields"] = []gin.H{
				{"id": "f1", "signerOrder": 1, "fieldType": "signature", "pageNumber": 3, "width": 5, "height": 5},
				{"id": "f2", "signerOrder": 2, "fieldType": "signature", "pageNumber": 1, "width": 5, "height": 5},
			}
		}, http.StatusBadRequest},
		{"Signer without fields", owner, func(b gin.H) {
			b["fields"] = []gin.H{{"id": "f1", "signerOrder": 1, "fieldType": "signature", "pageNumber": 1, "width": 5, "height": 5}}
		}, http.StatusBadRequest},
		{"Elapsed due date", owner, func(b gin.H) { b["dueDate"] = time.Now().Add(-time.Hour).UTC() }, http.StatusCreated},
		{"Draft", owner, func(b gin.H) { b["send"] = false }, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := twoSignerBody("parallel")
			tt.mutate(body)
			code, env := s.do(t, http.MethodPost, "/api/v1/signing-requests", tt.token, body)
			if code != tt.wantCode {
				t.Errorf("status = %d, want %d, errors %s", code, tt.wantCode, env.Errors)
			}
		})
	}
	s.service.Wait()
	if n := s.outbox.count(esign.IntentInvitation); n != 0 {
		t.Errorf("invitations = %d, rejected, overdue and draft requests must not notify", n)
	}
}

func TestDraftLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.accessToken(t, olivia)

	body := twoSignerBody("parallel")
	body["send"] = false
	id := createRequest(t, s, owner, body)

	if code, _ := s.do(t, http.MethodGet, "/api/v1/signing-requests/"+id+"/share", owner, nil); code != http.StatusConflict {
		t.Errorf("share of draft status = %d, want %d", code, http.StatusConflict)
	}

	edit := twoSignerBody("sequential")
	edit["documentName"] = "NDA v2.pdf"
	if code, env := s.do(t, http.MethodPatch, "/api/v1/signing-requests/"+id, owner, edit); code != http.StatusOK {
		t.Fatalf("update draft status = %d, errors %s", code, env.Errors)
	}

	code, env := s.do(t, http.MethodPost, "/api/v1/signing-requests/"+id+"/send", owner, nil)
	if code != http.StatusOK {
		t.Fatalf("send status = %d, errors %s", code, env.Errors)
	}
	s.service.Wait()
	if n := s.outbox.count(esign.IntentInvitation); n != 1 {
		t.Errorf("invitations = %d, want 1 for a sequential request", n)
	}

	if code, _ := s.do(t, http.MethodPatch, "/api/v1/signing-requests/"+id, owner, edit); code != http.StatusConflict {
		t.Errorf("edit after send status = %d, want %d", code, http.StatusConflict)
	}

	code, env = s.do(t, http.MethodGet, "/api/v1/signing-requests/"+id, owner, nil)
	if code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	var got struct {
		SigningRequest esign.SigningRequest `json:"signingRequest"`
	}
	decodeData(t, env, &got)
	if got.SigningRequest.DocumentName != "NDA v2.pdf" || got.SigningRequest.Ordering != esign.OrderingSequential {
		t.Errorf("request = %s %s", got.SigningRequest.DocumentName, got.SigningRequest.Ordering)
	}
	if strings.Contains(string(env.Data), s.outbox.tokenOf(t, "alice@example.com")) {
		t.Errorf("owner view leaks signer tokens")
	}
}

func TestListAndInbox(t *testing.T) {
	s := newTestServer(t)
	owner := s.accessToken(t, olivia)
	for i := 0; i < 3; i++ {
		createRequest(t, s, owner, twoSignerBody("parallel"))
	}

	code, env := s.do(t, http.MethodGet, "/api/v1/signing-requests?page=2&pageSize=2", owner, nil)
	if code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	var page struct {
		SigningRequests []esign.SigningRequest `json:"signingRequests"`
		Total           int                    `json:"total"`
		TotalPage       int                    `json:"totalPage"`
	}
	decodeData(t, env, &page)
	if page.Total != 3 || page.TotalPage != 2 || len(page.SigningRequests) != 1 {
		t.Errorf("page = total %d, totalPage %d, items %d", page.Total, page.TotalPage, len(page.SigningRequests))
	}

	alice := s.accessToken(t, auth.JWTPayload{ID: "user-3", Email: "alice@example.com", Name: "Alice"})
	code, env = s.do(t, http.MethodGet, "/api/v1/signing-requests/inbox", alice, nil)
	if code != http.StatusOK {
		t.Fatalf("inbox status = %d", code)
	}
	decodeData(t, env, &page)
	if page.Total != 3 {
		t.Errorf("inbox total = %d, want 3", page.Total)
	}

	if code, _ := s.do(t, http.MethodGet, "/api/v1/signing-requests?status=unknown", owner, nil); code != http.StatusBadRequest {
		t.Errorf("unknown status filter = %d, want %d", code, http.StatusBadRequest)
	}
}

func TestSettingsAndResend(t *testing.T) {
	s := newTestServer(t)
	owner := s.accessToken(t, olivia)
	id := createRequest(t, s, owner, twoSignerBody("parallel"))

	code, env := s.do(t, http.MethodPatch, "/api/v1/signing-requests/"+id+"/settings", owner, gin.H{"reminderIntervalDays": 0})
	if code != http.StatusBadRequest {
		t.Errorf("zero interval status = %d, want %d", code, http.StatusBadRequest)
	}
	code, env = s.do(t, http.MethodPatch, "/api/v1/signing-requests/"+id+"/settings", owner, gin.H{"reminderIntervalDays": 7, "message": "Please sign"})
	if code != http.StatusOK {
		t.Fatalf("settings status = %d, errors %s", code, env.Errors)
	}

	code, env = s.do(t, http.MethodPost, "/api/v1/signing-requests/"+id+"/resend", owner, gin.H{"email": "bob@example.com"})
	if code != http.StatusOK {
		t.Fatalf("resend status = %d, errors %s", code, env.Errors)
	}
	var data struct {
		Notifications esign.DispatchReport `json:"notifications"`
	}
	decodeData(t, env, &data)
	if len(data.Notifications.Delivered) != 1 || data.Notifications.Delivered[0] != "bob@example.com" {
		t.Errorf("resend report = %+v", data.Notifications)
	}

	if code, _ := s.do(t, http.MethodPost, "/api/v1/signing-requests/"+id+"/resend", owner, gin.H{"email": "eve@example.com"}); code != http.StatusBadRequest {
		t.Errorf("resend to stranger status = %d, want %d", code, http.StatusBadRequest)
	}
}

func TestShortLink(t *testing.T) {
	s := newTestServer(t)
	id := createRequest(t, s, s.accessToken(t, olivia), twoSignerBody("parallel"))
	token := s.outbox.tokenOf(t, "bob@example.com")

	code, env := s.do(t, http.MethodGet, "/api/v1/s/"+token, "", nil)
	if code != http.StatusOK {
		t.Fatalf("resolve status = %d", code)
	}
	var data struct {
		Link       esign.ShortLink `json:"link"`
		SigningURL string          `json:"signingUrl"`
	}
	decodeData(t, env, &data)
	if data.Link.SigningRequestID != id || data.Link.Email != "bob@example.com" {
		t.Errorf("link = %+v", data.Link)
	}
	if !strings.HasPrefix(data.SigningURL, "https://sign.test/sign/"+id+"?") {
		t.Errorf("signing url = %s", data.SigningURL)
	}

	if code, _ := s.do(t, http.MethodGet, "/api/v1/s/not-a-token", "", nil); code != http.StatusNotFound {
		t.Errorf("unknown short link status = %d, want %d", code, http.StatusNotFound)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/s/"+token+"/qr", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("qr = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("qr body is not a PNG")
	}
}

func TestUploadDocument(t *testing.T) {
	s := newTestServer(t)
	owner := s.accessToken(t, olivia)

	tests := []struct {
		name     string
		fileName string
		content  []byte
		token    string
		wantCode int
	}{
		{"Valid PDF", "nda.pdf", []byte("%PDF-1.7 fake"), owner, http.StatusOK},
		{"Not a PDF name", "nda.docx", []byte("PK"), owner, http.StatusBadRequest},
		{"Corrupt PDF", "nda.pdf", []byte("not a pdf"), owner, http.StatusBadRequest},
		{"Anonymous", "nda.pdf", []byte("%PDF-1.7 fake"), "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.upload(t, tt.fileName, tt.content, tt.token)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var env envelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			var data struct {
				Document struct {
					DocumentRef string `json:"documentRef"`
					PageCount   int    `json:"pageCount"`
				} `json:"document"`
			}
			decodeData(t, env, &data)
			if data.Document.DocumentRef != "documents/user-1/nda.pdf" || data.Document.PageCount != 2 {
				t.Errorf("document = %+v", data.Document)
			}
		})
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.accessToken(t, olivia)
	other := s.accessToken(t, mallory)

	w := s.upload(t, "nda.pdf", []byte("%PDF-1.7 fake"), owner)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var uploaded struct {
		Document struct {
			ID          string `json:"id"`
			DocumentRef string `json:"documentRef"`
		} `json:"document"`
	}
	decodeData(t, env, &uploaded)
	docPath := "/api/v1/documents/" + uploaded.Document.ID

	code, env := s.do(t, http.MethodGet, docPath, owner, nil)
	if code != http.StatusOK {
		t.Fatalf("get status = %d: %s", code, env.Errors)
	}
	var got struct {
		URL string `json:"url"`
	}
	decodeData(t, env, &got)
	if !strings.Contains(got.URL, uploaded.Document.DocumentRef) {
		t.Errorf("url = %q, want a link to %s", got.URL, uploaded.Document.DocumentRef)
	}

	if code, _ := s.do(t, http.MethodGet, docPath, other, nil); code != http.StatusNotFound {
		t.Errorf("get by another user status = %d, want %d", code, http.StatusNotFound)
	}
	if code, _ := s.do(t, http.MethodDelete, docPath, other, nil); code != http.StatusNotFound {
		t.Errorf("delete by another user status = %d, want %d", code, http.StatusNotFound)
	}

	body := twoSignerBody("parallel")
	body["documentRef"] = uploaded.Document.DocumentRef
	id := createRequest(t, s, owner, body)

	if code, _ := s.do(t, http.MethodDelete, docPath, owner, nil); code != http.StatusConflict {
		t.Errorf("delete while in use status = %d, want %d", code, http.StatusConflict)
	}

	if code, env := s.do(t, http.MethodPost, "/api/v1/signing-requests/"+id+"/void", owner, nil); code != http.StatusOK {
		t.Fatalf("void status = %d: %s", code, env.Errors)
	}
	if code, env := s.do(t, http.MethodDelete, docPath, owner, nil); code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", code, env.Errors)
	}
	if code, _ := s.do(t, http.MethodGet, docPath, owner, nil); code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", code, http.StatusNotFound)
	}
}

func TestStatusFromServiceErrors(t *testing.T) {
	// Storage outages surface as 503 so clients know to retry.
	err := esign.NewTransientError("update", errors.New("connection reset"))
	if got := util.StatusFromError(err); got != http.StatusServiceUnavailable {
		t.Errorf("StatusFromError(transient) = %d, want %d", got, http.StatusServiceUnavailable)
	}
}
