package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aviancal/internal/model"
)

func TestFetcher_ConditionalRefetch(t *testing.T) {
	start := time.Date(2025, time.July, 3, 10, 0, 0, 0, time.UTC)
	body, err := BuildCalendar([]model.CalendarEvent{
		{UID: "a@test", Title: "Água do casal: Torre", Start: start, End: start.Add(2 * time.Hour)},
	}, FeedOptions{Subscription: true, Stamp: start})
	require.NoError(t, err)

	var hits, notModified int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == `"v1"` {
			notModified++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewFetcher(0)
	events, err := f.Events(context.Background(), srv.URL+"/calendar/vibora.ics")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a@test", events[0].UID)

	again, cached, err := f.Fetch(context.Background(), srv.URL+"/calendar/vibora.ics")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, body, string(again))
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, notModified)
}

func TestFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNotModified)
	}))
	defer srv.Close()

	f := NewFetcher(time.Second)
	_, _, err := f.Fetch(context.Background(), "")
	assert.Error(t, err)

	_, _, err = f.Fetch(context.Background(), srv.URL+"/gone")
	assert.ErrorContains(t, err, "404")

	_, _, err = f.Fetch(context.Background(), srv.URL+"/stale")
	assert.ErrorContains(t, err, "304")
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/private.ics?token=abcd"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
