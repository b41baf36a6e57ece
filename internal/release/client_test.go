package release

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avado-dnp/nimbus-upstream-sync/internal/domain/upstream"
)

// TestNewClient_ValidatesURL verifies that NewClient rejects an empty feed URL.
func TestNewClient_ValidatesURL(t *testing.T) {
	t.Parallel()

	c, err := NewClient("")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestLatest_SendsHeadersAndDecodes checks request headers and tag decoding.
func TestLatest_SendsHeadersAndDecodes(t *testing.T) {
	t.Parallel()

	var got http.Header

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v25.12.0","name":"v25.12.0","html_url":"https://example.test/r","published_at":"2025-12-01T10:00:00Z","assets":[]}`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, WithToken("secret"), WithUserAgent("AVADO-DNP-Nimbus-Update-Bot"), WithTimeout(5*time.Second))
	require.NoError(t, err)

	rel, err := c.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v25.12.0", rel.TagName)
	require.Equal(t, "https://example.test/r", rel.HTMLURL)
	require.Equal(t, 2025, rel.PublishedAt.Year())

	require.Equal(t, "AVADO-DNP-Nimbus-Update-Bot", got.Get("User-Agent"))
	require.Equal(t, "application/vnd.github.v3+json", got.Get("Accept"))
	require.Equal(t, "token secret", got.Get("Authorization"))
}

// TestLatest_NoTokenNoAuthorization ensures the authorization header is omitted without a token.
func TestLatest_NoTokenNoAuthorization(t *testing.T) {
	t.Parallel()

	var auth string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL)
	require.NoError(t, err)

	rel, err := c.Latest(context.Background())
	require.NoError(t, err)
	require.Empty(t, rel.TagName)
	require.Empty(t, auth)
}

// TestLatest_HTTPErrors covers non-2xx responses including the rate-limit case.
func TestLatest_HTTPErrors(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"message":"nope"}`, status)
		}))

		c, err := NewClient(ts.URL)
		require.NoError(t, err)

		rel, err := c.Latest(context.Background())
		ts.Close()

		require.Nil(t, rel)

		var netErr *upstream.NetworkError
		require.True(t, errors.As(err, &netErr))
		require.Equal(t, status, netErr.StatusCode)
		require.Equal(t, status == http.StatusForbidden, errors.Is(err, upstream.ErrRateLimited))
	}
}

// TestLatest_MalformedBody verifies that undecodable and oversized bodies fail.
func TestLatest_MalformedBody(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"not json":   `<html>`,
		"wrong tag":  `{"tag_name": 25}`,
		"no tag":     `{"name":"v1.0.0"}`,
		"not object": `["v1.0.0"]`,
		"too large":  `{"tag_name":"v1.0.0","body":"` + strings.Repeat("x", 256) + `"}`,
	}

	for name, body := range bodies {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		c, err := NewClient(ts.URL, WithMaxBodyBytes(128))
		require.NoError(t, err)

		_, err = c.Latest(context.Background())
		ts.Close()

		var netErr *upstream.NetworkError
		require.True(t, errors.As(err, &netErr), name)
		require.Error(t, netErr.Err, name)
	}
}

// TestLatest_ToleratesOddDetails checks that fields used only for logging
// never fail an otherwise valid release.
func TestLatest_ToleratesOddDetails(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"empty published_at": `{"tag_name":"v25.12.0","published_at":""}`,
		"numeric name":       `{"tag_name":"v25.12.0","name":42}`,
		"null details":       `{"tag_name":"v25.12.0","name":null,"html_url":null,"published_at":null}`,
		"object html_url":    `{"tag_name":"v25.12.0","html_url":{"href":"x"}}`,
	}

	for name, body := range bodies {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		c, err := NewClient(ts.URL)
		require.NoError(t, err)

		rel, err := c.Latest(context.Background())
		ts.Close()

		require.NoError(t, err, name)
		require.Equal(t, "v25.12.0", rel.TagName, name)
		require.True(t, rel.PublishedAt.IsZero(), name)
	}
}

// TestLatest_TransportError checks that an unreachable feed yields a NetworkError.
func TestLatest_TransportError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := NewClient(url, WithTimeout(2*time.Second))
	require.NoError(t, err)

	_, err = c.Latest(context.Background())

	var netErr *upstream.NetworkError
	require.True(t, errors.As(err, &netErr))
	require.Zero(t, netErr.StatusCode)
	require.NotErrorIs(t, err, upstream.ErrRateLimited)
}
