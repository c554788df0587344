package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/recommend"
)

// stubRecommender returns canned per-user results.
type stubRecommender struct {
	sets map[string]*core.RecommendationSet
	err  error
}

func (s *stubRecommender) Recommend(ctx context.Context, userID string) (*core.RecommendationSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	set, ok := s.sets[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", recommend.ErrUserNotFound, userID)
	}
	return set, nil
}

func newTestServer(t *testing.T, rec Recommender) *Server {
	t.Helper()
	s, err := NewServer(rec, nil, nil)
	require.NoError(t, err)
	return s
}

func doRequest(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresRecommender(t *testing.T) {
	_, err := NewServer(nil, nil, nil)
	assert.Error(t, err)
}

func TestRootEndpoint(t *testing.T) {
	s := newTestServer(t, &stubRecommender{})

	rec := doRequest(s, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body RootResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &stubRecommender{})

	rec := doRequest(s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestRecommendationsEndpoint(t *testing.T) {
	stub := &stubRecommender{
		sets: map[string]*core.RecommendationSet{
			"u1": {
				UserID: "u1",
				Recommendations: []core.Recommendation{
					{CampaignID: "camp-a", RankingScore: 5, Reason: "Recommended based on users with similar interests."},
				},
				RetrievalSource: core.SourceComputed,
			},
		},
	}
	s := newTestServer(t, stub)

	rec := doRequest(s, http.MethodGet, "/recommendations/u1")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body core.RecommendationSet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.UserID)
	assert.Equal(t, core.SourceComputed, body.RetrievalSource)
	require.Len(t, body.Recommendations, 1)
	assert.Equal(t, "camp-a", body.Recommendations[0].CampaignID)
	assert.Equal(t, int64(5), body.Recommendations[0].RankingScore)
}

func TestRecommendationsUnknownUser(t *testing.T) {
	s := newTestServer(t, &stubRecommender{sets: map[string]*core.RecommendationSet{}})

	rec := doRequest(s, http.MethodGet, "/recommendations/ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "ghost")
}

func TestRecommendationsStoreFailure(t *testing.T) {
	s := newTestServer(t, &stubRecommender{err: errors.New("neo4j unreachable")})

	rec := doRequest(s, http.MethodGet, "/recommendations/u1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// Backend details never leak into the response body.
	assert.NotContains(t, body.Detail, "neo4j")
}

func TestProcessTimeHeader(t *testing.T) {
	s := newTestServer(t, &stubRecommender{})

	rec := doRequest(s, http.MethodGet, "/health")
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))
}
