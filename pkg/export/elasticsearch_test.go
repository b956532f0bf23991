package export

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeElasticsearch answers the info, bulk and delete by query endpoints, recording indexed
// documents by id.
type fakeElasticsearch struct {
	mu        sync.Mutex
	documents map[string]map[string]interface{}
	paths     []string
}

type fakeTerms []struct {
	Term map[string]string `json:"term"`
}

func (f *fakeElasticsearch) deleteByQuery(w http.ResponseWriter, r *http.Request) {
	var search struct {
		Query struct {
			Bool struct {
				Filter  fakeTerms `json:"filter"`
				MustNot fakeTerms `json:"must_not"`
			} `json:"bool"`
		} `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&search); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	shapeID := search.Query.Bool.Filter[0].Term["ShapeID.keyword"]
	writeID := search.Query.Bool.MustNot[0].Term["WriteID.keyword"]

	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.URL.Path)

	deleted := 0
	for id, document := range f.documents {
		if document["ShapeID"] == shapeID && document["WriteID"] != writeID {
			delete(f.documents, id)
			deleted++
		}
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"took": 1, "deleted": deleted, "failures": []interface{}{}})
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if strings.HasSuffix(r.URL.Path, "/_delete_by_query") {
		f.deleteByQuery(w, r)
		return
	}

	if !strings.HasSuffix(r.URL.Path, "/_bulk") {
		w.Write([]byte(`{"version":{"number":"8.19.0","build_flavor":"default"},"tagline":"You Know, for Search"}`))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, r.URL.Path)

	items := []map[string]interface{}{}
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var meta map[string]map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &meta); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		scanner.Scan()
		var document map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &document); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id := meta["index"]["_id"].(string)
		f.documents[id] = document
		items = append(items, map[string]interface{}{
			"index": map[string]interface{}{"_id": id, "status": 201, "result": "created"},
		})
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"took": 1, "errors": false, "items": items})
}

func TestElasticsearchSink(t *testing.T) {
	fake := &fakeElasticsearch{documents: map[string]map[string]interface{}{}}
	server := httptest.NewServer(fake)
	defer server.Close()

	sink, err := NewElasticsearchSink(server.URL, "", "", "segment-speeds")
	require.NoError(t, err)
	assert.Equal(t, "elasticsearch", sink.Name())

	require.NoError(t, sink.Write(context.Background(), sampleResult()))
	require.NoError(t, sink.Close())

	fake.mu.Lock()
	defer fake.mu.Unlock()

	assert.Len(t, fake.documents, 6)
	assert.Equal(t, "/segment-speeds/_bulk", fake.paths[0])
	assert.Equal(t, "/segment-speeds/_delete_by_query", fake.paths[len(fake.paths)-1])

	document, ok := fake.documents["SH1/A/S1-S2/2024-06-03"]
	require.True(t, ok)
	assert.Equal(t, "A", document["TripID"])
	assert.Equal(t, 10.0, document["SpeedMPH"])
	assert.Equal(t, "2024-06-03T08:00:00-07:00", document["StartDateTime"])

	terminal, ok := fake.documents["SH1/B/final/2024-06-03"]
	require.True(t, ok)
	assert.Equal(t, true, terminal["Terminal"])
}

func TestElasticsearchSinkReplacesShape(t *testing.T) {
	fake := &fakeElasticsearch{documents: map[string]map[string]interface{}{
		"SH2/Z/S9-S8/2024-06-03": {"ShapeID": "SH2", "TripID": "Z", "WriteID": "earlier"},
	}}
	server := httptest.NewServer(fake)
	defer server.Close()

	sink, err := NewElasticsearchSink(server.URL, "", "", "segment-speeds")
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), sampleResult()))

	// trip B no longer runs
	rerun := sampleResult()
	rerun.Rows = rerun.Rows[:3]
	require.NoError(t, sink.Write(context.Background(), rerun))

	fake.mu.Lock()
	defer fake.mu.Unlock()

	assert.Len(t, fake.documents, 4)
	assert.Contains(t, fake.documents, "SH2/Z/S9-S8/2024-06-03")
	for id, document := range fake.documents {
		if document["ShapeID"] == "SH1" {
			assert.Equal(t, "A", document["TripID"], id)
		}
	}
}

func TestStaleSpeedsSearch(t *testing.T) {
	body, err := json.Marshal(staleSpeedsSearch("SH1", "w1"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"query": {"bool": {
		"filter": [{"term": {"ShapeID.keyword": "SH1"}}],
		"must_not": [{"term": {"WriteID.keyword": "w1"}}]
	}}}`, string(body))
}

func TestSpeedDocumentIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, document := range speedDocuments(sampleResult(), monday, "w1") {
		assert.False(t, seen[document.DocumentID()], document.DocumentID())
		seen[document.DocumentID()] = true
		assert.Equal(t, monday, document.ModificationDateTime)
		assert.Equal(t, "w1", document.WriteID)
	}
	assert.Len(t, seen, 6)
}
