package afreeca

import (
	"comment-ranker/internal/config"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// fakeAPI serves the board comment API and the station status API.
type fakeAPI struct {
	mu        sync.Mutex
	pages     [][]map[string]any
	lastPage  int
	failPage  int
	fans      map[string]int
	hits      map[string]int
	userAgent string

	// contentType overrides the comment endpoint's Content-Type; rawBody,
	// when set, is written instead of the encoded page.
	contentType string
	rawBody     string
}

func newFakeAPI(t *testing.T, f *fakeAPI) *httptest.Server {
	t.Helper()
	if f.hits == nil {
		f.hits = map[string]int{}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/243000/title/129323759/comment", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.userAgent = r.Header.Get("User-Agent")
		f.hits["comment"]++
		f.mu.Unlock()

		if r.URL.Query().Get("orderby") != "like_cnt" {
			http.Error(w, "bad order", http.StatusBadRequest)
			return
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == f.failPage {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		data := []map[string]any{}
		if page >= 1 && page <= len(f.pages) {
			data = f.pages[page-1]
		}
		ct := f.contentType
		if ct == "" {
			ct = "application/json"
		}
		w.Header().Set("Content-Type", ct)
		if f.rawBody != "" {
			_, _ = w.Write([]byte(f.rawBody))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": data,
			"meta": map[string]any{"current_page": page, "last_page": f.lastPage},
		})
	})
	mux.HandleFunc("/api/get_station_status.php", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("szBjId")
		f.mu.Lock()
		f.hits["station:"+id]++
		n, ok := f.fans[id]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		if !ok {
			_, _ = w.Write([]byte(`{"RESULT":0,"DATA":null}`))
			return
		}
		if n < 0 {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprintf(w, `{"RESULT":1,"DATA":{"fan_cnt":%d}}`, n)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) hitCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func commentItems(from, n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, map[string]any{
			"user_nick":    fmt.Sprintf("nick%d", i),
			"user_id":      fmt.Sprintf("user%d", i),
			"like_cnt":     strconv.Itoa(1000 - i),
			"p_comment_no": 5000 + i,
			"comment":      fmt.Sprintf("comment %d", i),
		})
	}
	return out
}

func testConfig(base string) config.Config {
	return config.Config{
		APIBaseURL:        base,
		StationAPIBaseURL: base,
		UserAgent:         config.DefaultUserAgent,
		HttpTimeoutSec:    5,
		Timezone:          "Asia/Seoul",
		FormatRowCeiling:  999,
	}
}

var testPost = Post{BroadcasterID: "243000", PostID: "129323759", URL: "https://bj.afreecatv.com/243000/post/129323759"}
