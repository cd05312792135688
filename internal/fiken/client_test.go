package fiken

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInvoice(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(ExternalInvoice{
			InvoiceID: "inv-42",
			Paid:      true,
			Sent:      true,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	inv, err := c.GetInvoice(context.Background(), "acme-as", "inv-42")
	require.NoError(t, err)
	require.Equal(t, "/companies/acme-as/invoices/inv-42", gotPath)
	require.Equal(t, "Bearer secret-token", gotAuth)
	require.True(t, inv.Paid)
	require.True(t, inv.Sent)
	require.False(t, inv.Cancelled)
}

func TestGetInvoiceNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	_, err := c.GetInvoice(context.Background(), "acme-as", "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestCreateInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/companies/acme-as/invoices", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateInvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, 150.0, req.Amount)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"invoiceId": "inv-99"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	ref, err := c.CreateInvoice(context.Background(), "acme-as", CreateInvoiceRequest{
		ContactRef: "contact-1",
		Amount:     150.0,
		DueDate:    "2026-04-01",
	})
	require.NoError(t, err)
	require.Equal(t, "inv-99", ref)
}

func TestCreateContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/companies/acme-as/contacts", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"contactId": "contact-7"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token")
	ref, err := c.CreateContact(context.Background(), "acme-as", CreateContactRequest{
		Name:  "Acme AS",
		Email: "billing@acme.example",
	})
	require.NoError(t, err)
	require.Equal(t, "contact-7", ref)
}

func TestConfigured(t *testing.T) {
	require.True(t, NewClient("http://x", "token").Configured())
	require.False(t, NewClient("http://x", "").Configured())

	var nilClient *Client
	require.False(t, nilClient.Configured())
}
