package square

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// scriptedHTTPClient replays canned responses in order and records every
// request it sees.
type scriptedHTTPClient struct {
	responses []scriptedResponse
	requests  []*http.Request
	bodies    []string
	times     []time.Time
}

type scriptedResponse struct {
	statusCode int
	body       string
	err        error
}

func (c *scriptedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.requests = append(c.requests, req)
	c.times = append(c.times, time.Now())
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		c.bodies = append(c.bodies, string(body))
	} else {
		c.bodies = append(c.bodies, "")
	}

	idx := len(c.requests) - 1
	if idx >= len(c.responses) {
		return nil, fmt.Errorf("unexpected request #%d to %s", idx+1, req.URL)
	}
	res := c.responses[idx]
	if res.err != nil {
		return nil, res.err
	}
	statusCode := res.statusCode
	if statusCode == 0 {
		statusCode = 200
	}
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(res.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func itemsPage(cursor string, n int, prefix string) string {
	objects := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		objects = append(objects, map[string]any{
			"type":      "ITEM",
			"id":        fmt.Sprintf("%s-%d", prefix, i),
			"item_data": map[string]any{"name": fmt.Sprintf("Item %s %d", prefix, i)},
		})
	}
	page := map[string]any{"objects": objects}
	if cursor != "" {
		page["cursor"] = cursor
	}
	raw, _ := json.Marshal(page)
	return string(raw)
}

func TestListCatalogWalksAllPages(t *testing.T) {
	httpClient := &scriptedHTTPClient{responses: []scriptedResponse{
		{body: itemsPage("c1", 40, "a")},
		{body: itemsPage("c2", 40, "b")},
		{body: itemsPage("", 40, "c")},
	}}
	client := NewClient("token",
		WithHTTPClient(httpClient),
		WithBaseURL("https://example.test"),
		WithRequestMinInterval(0),
	)

	objects, err := client.ListCatalog(context.Background(), TypeItem)
	if err != nil {
		t.Fatalf("list catalog returned error: %v", err)
	}
	if len(objects) != 120 {
		t.Fatalf("expected 120 objects, got %d", len(objects))
	}
	if len(httpClient.requests) != 3 {
		t.Fatalf("expected 3 page requests, got %d", len(httpClient.requests))
	}

	// Second and third requests must pass back the previous page's cursor.
	if got := httpClient.requests[1].URL.Query().Get("cursor"); got != "c1" {
		t.Errorf("page 2 cursor = %q, want c1", got)
	}
	if got := httpClient.requests[2].URL.Query().Get("cursor"); got != "c2" {
		t.Errorf("page 3 cursor = %q, want c2", got)
	}
	if got := httpClient.requests[0].URL.Query().Get("types"); got != "ITEM" {
		t.Errorf("types param = %q, want ITEM", got)
	}
}

func TestListCatalogSpacesPageRequests(t *testing.T) {
	httpClient := &scriptedHTTPClient{responses: []scriptedResponse{
		{body: itemsPage("c1", 1, "a")},
		{body: itemsPage("c2", 1, "b")},
		{body: itemsPage("", 1, "c")},
	}}
	client := NewClient("token",
		WithHTTPClient(httpClient),
		WithBaseURL("https://example.test"),
		WithRequestMinInterval(150*time.Millisecond),
	)

	if _, err := client.ListCatalog(context.Background(), TypeItem); err != nil {
		t.Fatalf("list catalog returned error: %v", err)
	}
	for i := 1; i < len(httpClient.times); i++ {
		gap := httpClient.times[i].Sub(httpClient.times[i-1])
		if gap < 140*time.Millisecond {
			t.Errorf("gap between page %d and %d was %v, want >= ~150ms", i, i+1, gap)
		}
	}
}

func TestListCatalogKeepsPartialResultsOnFailure(t *testing.T) {
	httpClient := &scriptedHTTPClient{responses: []scriptedResponse{
		{body: itemsPage("c1", 40, "a")},
		{statusCode: 500, body: `{"errors":[{"code":"INTERNAL_SERVER_ERROR"}]}`},
	}}
	client := NewClient("token",
		WithHTTPClient(httpClient),
		WithBaseURL("https://example.test"),
		WithRequestMinInterval(0),
	)

	objects, err := client.ListCatalog(context.Background(), TypeItem)
	if err == nil {
		t.Fatal("expected an error from the failed page")
	}
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(objects) != 40 {
		t.Fatalf("expected the 40 objects collected before the failure, got %d", len(objects))
	}
}

func TestRequestCarriesPinnedVersionAndAuth(t *testing.T) {
	httpClient := &scriptedHTTPClient{responses: []scriptedResponse{{body: `{}`}}}
	client := NewClient("secret-token",
		WithHTTPClient(httpClient),
		WithBaseURL("https://example.test"),
		WithRequestMinInterval(0),
	)

	if _, err := client.ListCatalog(context.Background(), TypeItem); err != nil {
		t.Fatalf("list catalog returned error: %v", err)
	}
	headers := httpClient.requests[0].Header
	if got := headers.Get("Authorization"); got != "Bearer secret-token" {
		t.Errorf("authorization header = %q", got)
	}
	if got := headers.Get("Square-Version"); got != defaultAPIVersion {
		t.Errorf("Square-Version = %q, want pinned %q", got, defaultAPIVersion)
	}
}

func TestBatchRetrieveSendsObjectIDs(t *testing.T) {
	httpClient := &scriptedHTTPClient{responses: []scriptedResponse{
		{body: `{"objects":[{"type":"MODIFIER_LIST","id":"ML1","modifier_list_data":{"name":"Milk"}}]}`},
	}}
	client := NewClient("token",
		WithHTTPClient(httpClient),
		WithBaseURL("https://example.test"),
		WithRequestMinInterval(0),
	)

	objects, err := client.BatchRetrieve(context.Background(), []string{"ML1", "ML2"})
	if err != nil {
		t.Fatalf("batch retrieve returned error: %v", err)
	}
	if len(objects) != 1 || objects[0].ID != "ML1" {
		t.Fatalf("unexpected objects: %+v", objects)
	}
	if !strings.Contains(httpClient.bodies[0], `"object_ids":["ML1","ML2"]`) {
		t.Errorf("request body missing object ids: %s", httpClient.bodies[0])
	}
}

func TestBatchInventoryCountsFollowsBodyCursor(t *testing.T) {
	httpClient := &scriptedHTTPClient{responses: []scriptedResponse{
		{body: `{"counts":[{"catalog_object_id":"V1","location_id":"L1","state":"IN_STOCK","quantity":"3"}],"cursor":"inv2"}`},
		{body: `{"counts":[{"catalog_object_id":"V2","location_id":"L1","state":"SOLD","quantity":"0"}]}`},
	}}
	client := NewClient("token",
		WithHTTPClient(httpClient),
		WithBaseURL("https://example.test"),
		WithRequestMinInterval(0),
	)

	counts, err := client.BatchInventoryCounts(context.Background(), []string{"V1", "V2"}, "L1")
	if err != nil {
		t.Fatalf("inventory counts returned error: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 counts, got %d", len(counts))
	}
	if !strings.Contains(httpClient.bodies[1], `"cursor":"inv2"`) {
		t.Errorf("second request body missing cursor: %s", httpClient.bodies[1])
	}
}

func TestRateLimitedDetection(t *testing.T) {
	httpClient := &scriptedHTTPClient{responses: []scriptedResponse{
		{statusCode: 429, body: `{"errors":[{"code":"RATE_LIMITED"}]}`},
	}}
	client := NewClient("token",
		WithHTTPClient(httpClient),
		WithBaseURL("https://example.test"),
		WithRequestMinInterval(0),
	)

	_, err := client.BatchRetrieve(context.Background(), []string{"X"})
	if !IsRateLimited(err) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
}
