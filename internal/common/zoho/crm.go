// Package zoho pushes portal contacts into Zoho CRM.
package zoho

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	chttp "brokerage-portal/internal/common/http"
)

const defaultBaseURL = "https://www.zohoapis.com/crm/v3"

type CRMClient struct {
	oauthToken string
	baseURL    string
	http       *chttp.Client
}

type Contact struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"Email"`
	FirstName string `json:"First_Name"`
	LastName  string `json:"Last_Name"`
	Phone     string `json:"Phone,omitempty"`
	Source    string `json:"Lead_Source,omitempty"`
	Owner     string `json:"Owner_Email,omitempty"`
}

type writeResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Action  string `json:"action"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

// UpsertResult reports the CRM record and whether it was created.
type UpsertResult struct {
	ID      string
	Created bool
}

func NewCRMClient(oauthToken, baseURL string) *CRMClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &CRMClient{
		oauthToken: oauthToken,
		baseURL:    baseURL,
		http:       chttp.NewClient(30 * time.Second),
	}
}

// Configured is false when no token is set; the sync worker then skips.
func (c *CRMClient) Configured() bool {
	return c != nil && c.oauthToken != ""
}

func (c *CRMClient) headers() map[string]string {
	return map[string]string{"Authorization": "Zoho-oauthtoken " + c.oauthToken}
}

// UpsertContact creates or updates the contact keyed by Email.
func (c *CRMClient) UpsertContact(ctx context.Context, contact *Contact) (*UpsertResult, error) {
	payload := map[string]interface{}{
		"data":                   []Contact{*contact},
		"duplicate_check_fields": []string{"Email"},
	}

	var resp writeResponse
	if _, err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/Contacts/upsert", c.headers(), payload, &resp); err != nil {
		return nil, fmt.Errorf("upsert contact: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("upsert contact: empty response")
	}
	row := resp.Data[0]
	if row.Status != "success" {
		return nil, fmt.Errorf("upsert contact: %s: %s", row.Code, row.Message)
	}
	return &UpsertResult{ID: row.Details.ID, Created: row.Action == "insert"}, nil
}

// FindByEmail returns nil without error when no contact matches.
func (c *CRMClient) FindByEmail(ctx context.Context, email string) (*Contact, error) {
	endpoint := fmt.Sprintf("%s/Contacts/search?email=%s", c.baseURL, url.QueryEscape(email))

	var result struct {
		Data []Contact `json:"data"`
	}
	status, err := c.http.DoJSON(ctx, http.MethodGet, endpoint, c.headers(), nil, &result)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	if status == http.StatusNoContent || len(result.Data) == 0 {
		return nil, nil
	}
	return &result.Data[0], nil
}
