package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultProviderURL is the leads listing endpoint of the lead provider.
const DefaultProviderURL = "https://api.dealmachine.com/v2/leads/"

// Property is one lead record as returned by the provider.
type Property struct {
	Address      string        `json:"property_address"`
	City         string        `json:"property_address_city"`
	State        string        `json:"property_address_state"`
	Zip          string        `json:"property_address_zip"`
	PhoneNumbers []PhoneNumber `json:"phone_numbers"`
}

// PhoneNumber is a phone entry attached to a property.
type PhoneNumber struct {
	Type    string  `json:"type"`
	Carrier string  `json:"carrier"`
	Contact Contact `json:"contact"`
}

// Contact holds up to three numbers for a person.
type Contact struct {
	Phone1    string `json:"phone_1"`
	Phone2    string `json:"phone_2"`
	Phone3    string `json:"phone_3"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

// Phones returns the contact's numbers in slot order.
func (c Contact) Phones() []string {
	return []string{c.Phone1, c.Phone2, c.Phone3}
}

// PageSource returns one page of properties. Pages are numbered from 1.
type PageSource interface {
	FetchPage(ctx context.Context, page, pageSize int) ([]Property, error)
}

type leadsRequest struct {
	Token              string  `json:"token"`
	SortBy             string  `json:"sort_by"`
	Limit              int     `json:"limit"`
	Begin              int     `json:"begin"`
	Search             string  `json:"search"`
	SearchType         string  `json:"search_type"`
	Filters            *string `json:"filters"`
	OldFilters         *string `json:"old_filters"`
	ListID             string  `json:"list_id"`
	ListHistoryID      *string `json:"list_history_id"`
	GetUpdatedData     bool    `json:"get_updated_data"`
	PropertyFlags      string  `json:"property_flags"`
	PropertyFlagsAndOr string  `json:"property_flags_and_or"`
}

type leadsResponse struct {
	Results struct {
		Properties []Property `json:"properties"`
	} `json:"results"`
}

// LeadsClient pages through the provider's "all leads" list.
type LeadsClient struct {
	httpClient *http.Client
	endpoint   string
	siteToken  string
}

// NewLeadsClient creates a LeadsClient authenticating with the provider session token.
func NewLeadsClient(httpClient *http.Client, endpoint, siteToken string) *LeadsClient {
	if endpoint == "" {
		endpoint = DefaultProviderURL
	}
	return &LeadsClient{httpClient: httpClient, endpoint: endpoint, siteToken: siteToken}
}

// FetchPage requests a single page, newest leads first.
func (c *LeadsClient) FetchPage(ctx context.Context, page, pageSize int) ([]Property, error) {
	body, err := json.Marshal(leadsRequest{
		Token:              c.siteToken,
		SortBy:             "date_created_desc",
		Limit:              pageSize,
		Begin:              (page - 1) * pageSize,
		SearchType:         "address",
		ListID:             "all_leads",
		PropertyFlagsAndOr: "or",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build leads request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leads request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("leads API error %d", resp.StatusCode)
	}

	var decoded leadsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode leads page %d: %w", page, err)
	}
	return decoded.Results.Properties, nil
}
