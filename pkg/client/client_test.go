package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListGamesSendsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/games", r.URL.Path)
		assert.Equal(t, "super", r.URL.Query().Get("q"))
		assert.Equal(t, "action,puzzle", r.URL.Query().Get("categories"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"games":[{"id":4,"slug":"super-runner","categories":[]}],"pagination":{"page":2,"limit":12,"total":13,"hasMore":false}}`))
	}))
	defer srv.Close()

	list, err := New(srv.URL+"/api/v1/").ListGames(context.Background(), ListOptions{
		Search:     "super",
		Categories: []string{"action", "puzzle"},
		Page:       2,
	})
	require.NoError(t, err)
	require.Len(t, list.Games, 1)
	assert.Equal(t, "super-runner", list.Games[0].Slug)
	assert.EqualValues(t, 13, list.Pagination.Total)
}

func TestGamesByIDsSplitsLargeLookups(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := r.URL.Query().Get("ids")
		calls = append(calls, ids)
		parts := strings.Split(ids, ",")
		games := make([]map[string]any, 0, len(parts))
		for _, p := range parts {
			var id int
			assert.NoError(t, json.Unmarshal([]byte(p), &id))
			games = append(games, map[string]any{"id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"games": games})
	}))
	defer srv.Close()

	ids := make([]uint, 150)
	for i := range ids {
		ids[i] = uint(150 - i)
	}
	games, err := New(srv.URL).GamesByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, games, 150)
	assert.Len(t, calls, 2)
	assert.EqualValues(t, 150, games[0].ID)
	assert.EqualValues(t, 1, games[149].ID)

	calls = nil
	games, err = New(srv.URL).GamesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.Empty(t, calls)
}

func TestSubmitRatingRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 5, body["rating"])
		assert.Equal(t, "fp", body["fingerprint"])

		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"Too Many Requests","code":"RATE_LIMIT_EXCEEDED","message":"Too many requests, try again in 42 seconds","details":{"retryAfter":42},"timestamp":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitRating(context.Background(), 3, 5, "fp")
	require.Error(t, err)

	secs, limited := RetryAfter(err)
	assert.True(t, limited)
	assert.Equal(t, 42, secs)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", apiErr.Code)
}

func TestRetryAfterFromDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":"RATE_LIMIT_EXCEEDED","details":{"retryAfter":7}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Rating(context.Background(), 1, "")
	secs, limited := RetryAfter(err)
	assert.True(t, limited)
	assert.Equal(t, 7, secs)
}

func TestRatingDecodesNullUserRating(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ratings/9", r.URL.Path)
		assert.Equal(t, "fp", r.URL.Query().Get("fingerprint"))
		_, _ = w.Write([]byte(`{"gameId":9,"averageRating":0,"totalRatings":0,"userRating":null}`))
	}))
	defer srv.Close()

	r, err := New(srv.URL).Rating(context.Background(), 9, "fp")
	require.NoError(t, err)
	assert.Nil(t, r.UserRating)
	assert.Zero(t, r.TotalRatings)
}

func TestServerErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Categories(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	_, limited := RetryAfter(err)
	assert.False(t, limited)
}
