package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/rohanthewiz/rweb"
	"golang.org/x/crypto/bcrypt"

	"notevault/localstore"
	"notevault/models"
	"notevault/remote"
	"notevault/web"
)

const (
	testPassword = "correct horse battery staple"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

// apiTestServer manages a running server instance for integration testing.
type apiTestServer struct {
	baseURL   string
	client    *http.Client
	server    *rweb.Server
	store     *models.Store
	gate      *models.AccessGate
	local     *localstore.Memory
	remote    *remote.Memory
	authToken string
}

type serverConfig struct {
	localOnly bool
	seedCats  []models.Category
	seedNotes []models.Note
}

// setupAPITestServer starts a server over in-memory stores on a dynamic port.
// Uses the rweb ReadyChan pattern for reliable server startup detection.
func setupAPITestServer(t *testing.T, cfg serverConfig) (*apiTestServer, func()) {
	t.Helper()

	ts := &apiTestServer{
		client: &http.Client{Timeout: 5 * time.Second},
		local:  localstore.NewMemory(),
	}
	seedLocalBlobs(t, ts.local, cfg.seedCats, cfg.seedNotes)

	var rs models.RemoteStore
	if !cfg.localOnly {
		ts.remote = remote.NewMemory()
		rs = ts.remote
	}
	ts.store = models.NewStore(ts.local, rs, models.WithConfirmationTTL(time.Minute))
	ts.store.LoadLocal()

	gate, err := models.NewAccessGate(models.AccessConfig{
		Password:  testPassword,
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	}, ts.local, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to create access gate: %v", err)
	}
	ts.gate = gate

	sessionCtx, cancel := context.WithCancel(context.Background())
	readyChan := make(chan struct{}, 1)
	srv := web.NewTestServer(rweb.ServerOptions{
		ReadyChan: readyChan,
		Address:   "localhost:",
	}, web.Deps{Store: ts.store, Gate: gate, SessionCtx: sessionCtx})

	go func() {
		_ = srv.Run()
	}()
	<-readyChan

	ts.server = srv
	ts.baseURL = fmt.Sprintf("http://localhost:%s", srv.GetListenPort())

	cleanup := func() {
		ts.store.EndSession()
		cancel()
	}
	return ts, cleanup
}

func seedLocalBlobs(t *testing.T, local *localstore.Memory, cats []models.Category, notes []models.Note) {
	t.Helper()
	if cats != nil {
		blob, _ := json.Marshal(cats)
		if err := local.Save(models.LocalKeyModules, blob); err != nil {
			t.Fatalf("failed to seed categories: %v", err)
		}
	}
	if notes != nil {
		blob, _ := json.Marshal(notes)
		if err := local.Save(models.LocalKeyItems, blob); err != nil {
			t.Fatalf("failed to seed notes: %v", err)
		}
	}
}

// login posts the password and keeps the returned token for later requests.
func (ts *apiTestServer) login(t *testing.T) {
	t.Helper()
	status, resp := ts.request("POST", "/api/v1/auth/login", map[string]string{"password": testPassword})
	if status != http.StatusOK {
		t.Fatalf("login failed, status %d: %v", status, resp)
	}
	data := resp["data"].(map[string]interface{})
	ts.authToken = data["token"].(string)
}

// waitSynced blocks until both remote collections have been observed.
func (ts *apiTestServer) waitSynced(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ts.store.WaitSynced(ctx); err != nil {
		t.Fatalf("store never synced: %v", err)
	}
}

// request makes an HTTP request with the auth token and returns the status
// code and parsed JSON response.
func (ts *apiTestServer) request(method, path string, body interface{}) (int, map[string]interface{}) {
	status, _, result := ts.do(method, path, body, nil)
	return status, result
}

func (ts *apiTestServer) do(method, path string, body interface{}, headers map[string]string) (int, http.Header, map[string]interface{}) {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, ts.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, nil
	}
	req.Header.Set("Content-Type", "application/json")
	if ts.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+ts.authToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.client.Do(req)
	if err != nil {
		return 0, nil, nil
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, resp.Header, result
}

func dataMap(t *testing.T, resp map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", resp["data"])
	}
	return data
}

func dataList(t *testing.T, resp map[string]interface{}) []interface{} {
	t.Helper()
	data, ok := resp["data"].([]interface{})
	if !ok {
		t.Fatalf("expected data array, got %v", resp["data"])
	}
	return data
}
