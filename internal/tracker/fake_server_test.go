package tracker_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jobmate/tracker/internal/apiclient"
)

// fakeServer is an in-memory applications endpoint. Records are stored as
// raw JSON objects so list responses are byte-stable between calls.
type fakeServer struct {
	t   *testing.T
	url string

	mu         sync.Mutex
	nextID     int
	records    []map[string]any
	creates    []map[string]any
	listCalls  int
	listStatus int
	createFail *failure
	deleteFail map[string]int
}

type failure struct {
	code int
	body string
}

func newFakeServer(t *testing.T) (*fakeServer, *apiclient.Client) {
	t.Helper()
	fs := &fakeServer{t: t, nextID: 1, deleteFail: map[string]int{}}
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	fs.url = srv.URL

	c, err := apiclient.New(srv.URL,
		apiclient.WithHTTPClient(srv.Client()),
		apiclient.WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)
	return fs, c
}

func (fs *fakeServer) seed(recs ...map[string]any) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, r := range recs {
		if id, ok := r["id"].(int); ok && id >= fs.nextID {
			fs.nextID = id + 1
		}
		fs.records = append(fs.records, r)
	}
}

func (fs *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/applications/":
		fs.listCalls++
		if fs.listStatus != 0 {
			w.WriteHeader(fs.listStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		out := fs.records
		if out == nil {
			out = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(out)

	case r.Method == http.MethodPost && r.URL.Path == "/api/applications/":
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fs.creates = append(fs.creates, body)
		if fs.createFail != nil {
			w.WriteHeader(fs.createFail.code)
			_, _ = io.WriteString(w, fs.createFail.body)
			return
		}
		body["id"] = fs.nextID
		fs.nextID++
		// Newest first, as the real server orders by update time.
		fs.records = append([]map[string]any{body}, fs.records...)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/applications/"):
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/applications/"), "/")
		if code, ok := fs.deleteFail[id]; ok {
			w.WriteHeader(code)
			return
		}
		for i, rec := range fs.records {
			if strconv.Itoa(rec["id"].(int)) == id {
				fs.records = append(fs.records[:i:i], fs.records[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (fs *fakeServer) lastCreate() map[string]any {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if len(fs.creates) == 0 {
		return nil
	}
	return fs.creates[len(fs.creates)-1]
}

func (fs *fakeServer) lists() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.listCalls
}

func (fs *fakeServer) set(fn func(fs *fakeServer)) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fn(fs)
}

// rawList fetches the list body directly, bypassing the client.
func (fs *fakeServer) rawList() []byte {
	fs.t.Helper()
	resp, err := http.Get(fs.url + "/api/applications/")
	require.NoError(fs.t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(fs.t, err)
	return b
}
