package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supptracker/compound-registry/pkg/catalog"
	"github.com/supptracker/compound-registry/pkg/compound"
	"github.com/supptracker/compound-registry/pkg/interaction"
)

func testData() *catalog.Data {
	return &catalog.Data{
		Compounds: compound.Catalog{
			"caffeine": {
				ID:          "caffeine",
				Name:        "Caffeine",
				Synonyms:    []string{"1,3,7-trimethylxanthine", "guaranine"},
				ExternalIDs: map[string]string{"pubchem": "2519"},
			},
			"st_johns_wort": {
				ID:       "st_johns_wort",
				Name:     "St. John's Wort",
				Synonyms: []string{"hypericum perforatum"},
				Aliases:  []string{"SJW"},
			},
			"theanine": {
				ID:   "theanine",
				Name: "L-Theanine",
			},
		},
		Interactions: []*interaction.Interaction{
			{
				ID: "ix1", A: "st_johns_wort", B: "caffeine",
				Bidirectional: true,
				Mechanisms:    []string{"CYP1A2_induction"},
				Severity:      "Moderate", Evidence: "B",
				Effect:    "reduced caffeine exposure",
				SourceIDs: []string{"src1"},
			},
		},
		Sources: map[string]interaction.Source{
			"src1": {ID: "src1", Type: "review", Title: "Hypericum drug interactions", Year: "2019"},
		},
		Rules: interaction.DefaultRules(),
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(NewRouter(NewService(testData()), logger))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHandleSearch(t *testing.T) {
	ts := newTestServer(t)

	var resp searchResponse
	r := getJSON(t, ts.URL+"/v1/search?q=guaranine", &resp)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "caffeine", resp.Results[0].ID)
	assert.Equal(t, 1, resp.Count)
}

func TestHandleSearchNormalized(t *testing.T) {
	ts := newTestServer(t)

	var resp searchResponse
	getJSON(t, ts.URL+"/v1/search?q=st+johns", &resp)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "st_johns_wort", resp.Results[0].ID)
}

func TestHandleSearchValidation(t *testing.T) {
	ts := newTestServer(t)

	r := getJSON(t, ts.URL+"/v1/search", nil)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)

	r = getJSON(t, ts.URL+"/v1/search?q=x&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestHandleResolve(t *testing.T) {
	ts := newTestServer(t)

	var resp resolveResponse
	r := getJSON(t, ts.URL+"/v1/compounds/pubchem:2519", &resp)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, "caffeine", resp.ID)
	require.NotNil(t, resp.Compound)
	assert.Equal(t, "Caffeine", resp.Compound.Name)
}

func TestHandleResolveNotFound(t *testing.T) {
	ts := newTestServer(t)

	r := getJSON(t, ts.URL+"/v1/compounds/unobtainium", nil)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
}

func TestHandleInteraction(t *testing.T) {
	ts := newTestServer(t)

	var resp interactionResponse
	r := getJSON(t, ts.URL+"/v1/interactions/guaranine/hypericum%20perforatum", &resp)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.True(t, resp.Found)
	assert.Equal(t, "caffeine", resp.A)
	assert.Equal(t, "st_johns_wort", resp.B)
	require.NotNil(t, resp.Assessment)
	assert.Greater(t, resp.Assessment.Score, 0.0)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "src1", resp.Sources[0].ID)
}

func TestHandleInteractionNone(t *testing.T) {
	ts := newTestServer(t)

	var resp interactionResponse
	r := getJSON(t, ts.URL+"/v1/interactions/caffeine/theanine", &resp)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Interaction)
}

func TestHandleInteractionUnknownCompound(t *testing.T) {
	ts := newTestServer(t)

	r := getJSON(t, ts.URL+"/v1/interactions/caffeine/unobtainium", nil)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
}

func TestHandleStack(t *testing.T) {
	ts := newTestServer(t)

	body := `{"items": ["guaranine", "SJW", "theanine", "nope"]}`
	resp, err := http.Post(ts.URL+"/v1/stack/check", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report stackResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, []string{"nope"}, report.Unresolved)
	assert.Len(t, report.IDs, 3)
	assert.Len(t, report.Matrix, 3)
	require.Len(t, report.Cells, 1)
	assert.Equal(t, "caffeine", report.Cells[0].A)
	assert.Equal(t, "st_johns_wort", report.Cells[0].B)
}

func TestHandleStackTooFewItems(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/stack/check", "application/json", strings.NewReader(`{"items": ["caffeine"]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleStackRejectsGET(t *testing.T) {
	ts := newTestServer(t)

	r := getJSON(t, ts.URL+"/v1/stack/check", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, r.StatusCode)
}

func TestHandleSources(t *testing.T) {
	ts := newTestServer(t)

	var resp sourcesResponse
	r := getJSON(t, ts.URL+"/v1/sources", &resp)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "Hypericum drug interactions", resp.Sources[0].Title)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	var resp healthResponse
	r := getJSON(t, ts.URL+"/v1/health", &resp)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Compounds)
	assert.Equal(t, 1, resp.Interactions)
}

func TestHandleReady(t *testing.T) {
	ts := newTestServer(t)

	r := getJSON(t, ts.URL+"/v1/ready", nil)
	assert.Equal(t, http.StatusOK, r.StatusCode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	empty := httptest.NewServer(NewRouter(NewService(&catalog.Data{
		Compounds: compound.Catalog{},
		Rules:     interaction.DefaultRules(),
	}), logger))
	defer empty.Close()

	r = getJSON(t, empty.URL+"/v1/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, r.StatusCode)
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))

	// Without a caller id, one is minted.
	resp2, err := http.Get(ts.URL + "/v1/health")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.NotEmpty(t, resp2.Header.Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/search", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServiceReload(t *testing.T) {
	data := testData()
	svc := NewService(data)

	grown := testData()
	grown.Compounds["zinc"] = &compound.Compound{ID: "zinc", Name: "Zinc"}
	grown.Interactions = nil
	svc.Reload(grown)

	assert.Equal(t, 4, svc.Registry().Count())
	id, ok := svc.Registry().Resolve("Zinc")
	require.True(t, ok)
	assert.Equal(t, "zinc", id)
	set, _ := svc.interactions()
	assert.Equal(t, 0, set.Len())
}
