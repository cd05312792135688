// internal/fiken/client.go
// Package fiken is a thin client for the Fiken accounting API, the
// external source of truth for invoice payment and cancellation facts.
// It carries no retry logic; callers own retries.
package fiken

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the Fiken REST API. All requests carry a bearer token
// and are scoped by a company slug path segment.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fiken API error: %d %s", e.StatusCode, e.Status)
}

// ExternalInvoice is the subset of the Fiken invoice view the
// reconciliation engine depends on.
type ExternalInvoice struct {
	InvoiceID string `json:"invoiceId"`
	Paid      bool   `json:"paid"`
	Cancelled bool   `json:"cancelled"`
	Sent      bool   `json:"sent"`
}

type CreateInvoiceRequest struct {
	ContactRef string  `json:"contactId"`
	Amount     float64 `json:"amount"`
	DueDate    string  `json:"dueDate"`
	Lines      []Line  `json:"lines"`
}

type Line struct {
	Description string  `json:"description"`
	Net         float64 `json:"net"`
	VATType     string  `json:"vatType"`
}

type CreateContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type contactResponse struct {
	ContactID string `json:"contactId"`
}

type invoiceResponse struct {
	InvoiceID string `json:"invoiceId"`
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			// Bounded so a hung authority call cannot stall the worker.
			Timeout: 15 * time.Second,
		},
	}
}

// Configured reports whether the client has credentials. Sync jobs use
// this to no-op gracefully instead of failing when the token is absent.
func (c *Client) Configured() bool {
	return c != nil && c.token != ""
}

// GetInvoice fetches the authority's view of one invoice.
func (c *Client) GetInvoice(ctx context.Context, companySlug, invoiceRef string) (*ExternalInvoice, error) {
	url := fmt.Sprintf("%s/companies/%s/invoices/%s", c.baseURL, companySlug, invoiceRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", invoiceRef, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var inv ExternalInvoice
	if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to decode invoice response: %w", err)
	}
	return &inv, nil
}

// CreateInvoice registers a new invoice with the authority and returns
// its external reference.
func (c *Client) CreateInvoice(ctx context.Context, companySlug string, reqBody CreateInvoiceRequest) (string, error) {
	url := fmt.Sprintf("%s/companies/%s/invoices", c.baseURL, companySlug)

	var resp invoiceResponse
	if err := c.post(ctx, url, reqBody, &resp); err != nil {
		return "", err
	}
	return resp.InvoiceID, nil
}

// CreateContact registers a new customer contact with the authority.
func (c *Client) CreateContact(ctx context.Context, companySlug string, reqBody CreateContactRequest) (string, error) {
	url := fmt.Sprintf("%s/companies/%s/contacts", c.baseURL, companySlug)

	var resp contactResponse
	if err := c.post(ctx, url, reqBody, &resp); err != nil {
		return "", err
	}
	return resp.ContactID, nil
}

func (c *Client) post(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
