package wowapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveItemSearch registers a search_item handler returning one result per
// id and an item detail handler delegating to item.
func serveItemSearch(api *testAPI, ids []int, item http.HandlerFunc) {
	api.mux.HandleFunc("/data/wow/search/item", func(w http.ResponseWriter, r *http.Request) {
		results := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			results = append(results, map[string]any{
				"key":  map[string]any{"href": fmt.Sprintf("%s/data/wow/item/%d?namespace=static-10.0_us", api.URL, id)},
				"data": map[string]any{"id": id},
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"page": 1, "results": results})
	})
	api.mux.HandleFunc("/data/wow/item/", item)
}

func itemID(r *http.Request) int {
	id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/data/wow/item/"))
	return id
}

func TestItemSearch(t *testing.T) {
	api := newTestAPI(t)
	serveItemSearch(api, []int{1}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "static-us", r.URL.Query().Get("namespace"))
		assert.Equal(t, "dummytoken", r.URL.Query().Get("access_token"))
		writeJSON(w, http.StatusOK, map[string]any{"item": 1, "dummyvalue": 2})
	})
	c := api.client(t)

	resp, err := c.ItemSearch(context.Background(), map[string]string{"name.en_US": "Thunderfury"})
	require.NoError(t, err)

	want := Response{
		"items": []any{map[string]any{"item": float64(1), "dummyvalue": float64(2)}},
		"Date":  testDate,
	}
	assert.Equal(t, want, resp)
	assert.Len(t, resp.Items(), 1)
}

func TestItemSearchPreservesOrder(t *testing.T) {
	api := newTestAPI(t)
	ids := []int{1, 2, 3, 4, 5}
	serveItemSearch(api, ids, func(w http.ResponseWriter, r *http.Request) {
		id := itemID(r)
		// Later results finish first.
		time.Sleep(time.Duration(len(ids)-id) * 20 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]any{"id": id})
	})
	c := api.client(t)

	resp, err := c.ItemSearch(context.Background(), nil)
	require.NoError(t, err)

	var got []int
	for _, item := range resp.Items() {
		id, ok := lookupInt(item, "id")
		require.True(t, ok)
		got = append(got, id)
	}
	assert.Equal(t, ids, got)
}

func TestItemSearchDropsFailedItems(t *testing.T) {
	api := newTestAPI(t)
	var failedHits atomic.Int32
	serveItemSearch(api, []int{1, 2, 3, 4, 5}, func(w http.ResponseWriter, r *http.Request) {
		id := itemID(r)
		if id == 3 {
			failedHits.Add(1)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"code": 500})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id})
	})
	c := api.client(t)

	resp, err := c.ItemSearch(context.Background(), nil)
	require.NoError(t, err)

	items := resp.Items()
	require.Len(t, items, 4)
	for i, want := range []int{1, 2, 4, 5} {
		id, _ := lookupInt(items[i], "id")
		assert.Equal(t, want, id)
	}
	assert.Equal(t, int32(5), failedHits.Load())
	assert.Equal(t, testDate, resp[DateKey])
}

func TestItemSearchNoResults(t *testing.T) {
	api := newTestAPI(t)
	serveItemSearch(api, nil, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no item should be fetched")
	})
	c := api.client(t)

	resp, err := c.ItemSearch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Response{"items": []any{}, "Date": testDate}, resp)
}

func TestItemSearchHydratesConcurrently(t *testing.T) {
	const total = 6

	api := newTestAPI(t)
	ids := make([]int, total)
	for i := range ids {
		ids[i] = i + 1
	}

	var (
		mu      sync.Mutex
		arrived int
		release = make(chan struct{})
	)
	serveItemSearch(api, ids, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrived++
		if arrived == total {
			close(release)
		}
		mu.Unlock()

		// Every fetch must be in flight before any completes.
		select {
		case <-release:
			writeJSON(w, http.StatusOK, map[string]any{"id": itemID(r)})
		case <-time.After(2 * time.Second):
			w.WriteHeader(http.StatusGatewayTimeout)
		}
	})
	c := api.client(t, WithRetryBudgets(RetryBudgets{Hydrate: 1}))

	resp, err := c.ItemSearch(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, resp.Items(), total)
}

func TestItemSearchConcurrencyLimit(t *testing.T) {
	api := newTestAPI(t)
	var inFlight, peak atomic.Int32
	serveItemSearch(api, []int{1, 2, 3, 4, 5, 6, 7, 8}, func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		writeJSON(w, http.StatusOK, map[string]any{"id": itemID(r)})
	})
	c := api.client(t, WithHydrationConcurrency(2))

	resp, err := c.ItemSearch(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, resp.Items(), 8)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRealmSearch(t *testing.T) {
	api := newTestAPI(t)
	api.mux.HandleFunc("/data/wow/search/connected-realm", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "static-us", q.Get("namespace"))
		assert.Equal(t, "UP", q.Get("status.type"))
		assert.Equal(t, "fr_FR", q.Get("locale"))
		assert.Len(t, q["namespace"], 1)
		writeJSON(w, http.StatusOK, map[string]any{
			"results": []any{map[string]any{"key": map[string]any{"href": "https://example.invalid/realm/1"}}},
		})
	})
	c := api.client(t)

	resp, err := c.ConnectedRealmSearch(context.Background(), map[string]string{
		"status.type": "UP",
		"locale":      "fr_FR",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Results(), 1)
	assert.Nil(t, resp["items"])
	assert.Equal(t, testDate, resp[DateKey])
}

func TestSearchRejectsDirectEndpoints(t *testing.T) {
	api := newTestAPI(t)
	c := api.client(t)

	_, err := c.Search(context.Background(), EndpointAuction, nil)
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)

	_, err = c.Search(context.Background(), "search_mount", nil)
	require.ErrorAs(t, err, &formatErr)
}

func TestSearchExhausted(t *testing.T) {
	api := newTestAPI(t)
	var hits atomic.Int32
	api.mux.HandleFunc("/data/wow/search/item", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	c := api.client(t, WithRetryBudgets(RetryBudgets{Search: 3}))

	_, err := c.ItemSearch(context.Background(), nil)
	assert.True(t, IsExhausted(err))
	assert.Equal(t, int32(3), hits.Load())
}
