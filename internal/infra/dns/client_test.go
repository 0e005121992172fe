package dns

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerr "tunnelctl/internal/domain/errors"
)

const (
	testZone  = "zone123"
	testEmail = "ops@example.com"
	testKey   = "key123"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, testZone, testEmail, testKey), srv
}

func TestFindRecordIDFirstMatchWins(t *testing.T) {
	var gotPath, gotEmail, gotKey string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotEmail = r.Header.Get("X-Auth-Email")
		gotKey = r.Header.Get("X-Auth-Key")
		fmt.Fprint(w, `{
			"success": true,
			"errors": [],
			"result": [
				{"id": "rec-1", "name": "sub1.example.com", "type": "CNAME"},
				{"id": "rec-2", "name": "sub1.example.com", "type": "CNAME"}
			]
		}`)
	})
	defer srv.Close()

	id, err := c.FindRecordID(context.Background(), "sub1.example.com")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", id, "first match wins when duplicates exist")
	assert.Equal(t, "/zones/zone123/dns_records?name=sub1.example.com", gotPath)
	assert.Equal(t, testEmail, gotEmail)
	assert.Equal(t, testKey, gotKey)
}

func TestFindRecordIDFiltersExactName(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"success": true,
			"errors": [],
			"result": [{"id": "rec-9", "name": "other.example.com", "type": "CNAME"}]
		}`)
	})
	defer srv.Close()

	_, err := c.FindRecordID(context.Background(), "sub1.example.com")
	assert.ErrorIs(t, err, domerr.ErrRecordNotFound)
}

func TestFindRecordIDNotFound(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": true, "errors": [], "result": []}`)
	})
	defer srv.Close()

	_, err := c.FindRecordID(context.Background(), "missing.example.com")
	assert.ErrorIs(t, err, domerr.ErrRecordNotFound)
}

func TestSuccessFlagDecidesOutcome(t *testing.T) {
	// HTTP 200 with success=false must still fail.
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"success": false,
			"errors": [{"code": 9109, "message": "Invalid access token"}],
			"result": null
		}`)
	})
	defer srv.Close()

	_, err := c.FindRecordID(context.Background(), "sub1.example.com")
	var derr domerr.DNSError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "lookup", derr.Op)
	assert.Contains(t, derr.Error(), "Invalid access token")
}

func TestDeleteRecord(t *testing.T) {
	var gotMethod, gotPath string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"success": true, "errors": [], "result": {"id": "rec-1"}}`)
	})
	defer srv.Close()

	require.NoError(t, c.DeleteRecord(context.Background(), "rec-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/zones/zone123/dns_records/rec-1", gotPath)
}

func TestDeleteRecordFailureFlag(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false, "errors": [{"code": 81044, "message": "Record not found"}], "result": null}`)
	})
	defer srv.Close()

	err := c.DeleteRecord(context.Background(), "rec-gone")
	var derr domerr.DNSError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "delete", derr.Op)
}
