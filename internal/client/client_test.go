package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "Bob123!" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","errorMessage":"Invalid username or password."}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"Authentication successful","token":"tok-1","id":2,"email":"bobpeeters@teamtrack.be","role":"coach","fullname":"Bob Peeters"}`))
	})
	mux.HandleFunc("GET /api/v1/teams", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","errorMessage":"Missing or malformed authorization header."}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"teamName":"Maaskantje United","players":[],"coach":{"id":1,"user":{"id":2,"firstName":"Bob"}}}]`))
	})
	mux.HandleFunc("GET /api/v1/games", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"date":"2024-12-17T00:00:00Z","result":"1-0","teams":[{"id":1,"teamName":"Maaskantje United"},{"id":2,"teamName":"Real Woensel"}]}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginStoresToken(t *testing.T) {
	srv := newTestServer(t)
	c := New(Config{BaseURL: srv.URL + "/"})

	resp, err := c.Login(context.Background(), "bobpeeters@teamtrack.be", "Bob123!")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Token)
	assert.Equal(t, "Bob Peeters", resp.FullName)
	assert.Equal(t, "tok-1", c.Token())

	teams, err := c.ListTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Maaskantje United", teams[0].TeamName)
	assert.Equal(t, "Bob", teams[0].Coach.User.FirstName)
}

func TestLoginFailure(t *testing.T) {
	srv := newTestServer(t)
	c := New(Config{BaseURL: srv.URL})

	_, err := c.Login(context.Background(), "bobpeeters@teamtrack.be", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Contains(t, err.Error(), "Invalid username or password.")
	assert.Empty(t, c.Token())
}

func TestListTeamsWithoutToken(t *testing.T) {
	srv := newTestServer(t)
	c := New(Config{BaseURL: srv.URL})

	_, err := c.ListTeams(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListGames(t *testing.T) {
	srv := newTestServer(t)
	c := New(Config{BaseURL: srv.URL})

	games, err := c.ListGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "1-0", games[0].Result)
	assert.Equal(t, "2024-12-17", games[0].Date.Format("2006-01-02"))
	assert.Len(t, games[0].Teams, 2)
}
