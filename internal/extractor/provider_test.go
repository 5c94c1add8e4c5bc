package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadsClient_FetchPage(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{"results":{"properties":[{
			"property_address":"1 Elm St","property_address_city":"Dallas",
			"property_address_state":"TX","property_address_zip":"75001",
			"phone_numbers":[{"type":"W","carrier":"Sprint Wireless",
				"contact":{"phone_1":"2145550100","given_name":"Lee","surname":"Park"}}]
		}]}}`))
	}))
	defer srv.Close()

	client := NewLeadsClient(srv.Client(), srv.URL, "site-token")
	props, err := client.FetchPage(context.Background(), 3, 100)
	require.NoError(t, err)

	assert.Equal(t, "site-token", got["token"])
	assert.Equal(t, "date_created_desc", got["sort_by"])
	assert.Equal(t, float64(100), got["limit"])
	assert.Equal(t, float64(200), got["begin"])
	assert.Equal(t, "address", got["search_type"])
	assert.Equal(t, "all_leads", got["list_id"])
	assert.Equal(t, "or", got["property_flags_and_or"])
	assert.Nil(t, got["filters"])
	assert.Equal(t, false, got["get_updated_data"])

	require.Len(t, props, 1)
	assert.Equal(t, "1 Elm St", props[0].Address)
	require.Len(t, props[0].PhoneNumbers, 1)
	assert.Equal(t, "2145550100", props[0].PhoneNumbers[0].Contact.Phone1)
}

func TestLeadsClient_MissingResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	props, err := NewLeadsClient(srv.Client(), srv.URL, "t").FetchPage(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestLeadsClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewLeadsClient(srv.Client(), srv.URL, "t").FetchPage(context.Background(), 1, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewLeadsClient_DefaultEndpoint(t *testing.T) {
	assert.Equal(t, DefaultProviderURL, NewLeadsClient(http.DefaultClient, "", "t").endpoint)
}
