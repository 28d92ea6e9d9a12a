package jobnimbus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenithroofing/lead-service/pkg/models"
)

func TestCreateContactAuthSchemes(t *testing.T) {
	cases := []struct {
		name       string
		scheme     AuthScheme
		authHeader string
		wantHeader string
		wantValue  string
	}{
		{"bearer", AuthBearer, "", "Authorization", "Bearer secret-key"},
		{"raw", AuthRaw, "", "Authorization", "secret-key"},
		{"custom header", AuthHeader, "X-Api-Key", "X-Api-Key", "secret-key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get(tc.wantHeader)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"jnid":"abc123"}`))
			}))
			defer srv.Close()

			client := NewClient("secret-key", srv.URL, tc.scheme, tc.authHeader)
			result, err := client.CreateContact(context.Background(), &models.ContactPayload{DisplayName: "Jane Doe"})
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, result.StatusCode)
			assert.Equal(t, tc.wantValue, got)
		})
	}
}

func TestSchemeFromString(t *testing.T) {
	assert.Equal(t, AuthBearer, SchemeFromString("bearer"))
	assert.Equal(t, AuthBearer, SchemeFromString(""))
	assert.Equal(t, AuthBearer, SchemeFromString("unknown"))
	assert.Equal(t, AuthRaw, SchemeFromString("raw"))
	assert.Equal(t, AuthHeader, SchemeFromString(" Header "))
}

func TestResultDuplicate(t *testing.T) {
	dup := &Result{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"Duplicate contact exists"}`)}
	assert.True(t, dup.Duplicate())

	// same body on another status is not a duplicate rejection
	ok := &Result{StatusCode: http.StatusOK, Body: []byte(`Duplicate contact exists`)}
	assert.False(t, ok.Duplicate())

	other := &Result{StatusCode: http.StatusBadRequest, Body: []byte(`{"error":"Invalid phone"}`)}
	assert.False(t, other.Duplicate())
}
