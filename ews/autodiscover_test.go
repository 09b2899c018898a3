package ews

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const autodiscoverOK = `<?xml version="1.0" encoding="utf-8"?>
<Autodiscover xmlns="http://schemas.microsoft.com/exchange/autodiscover/responseschema/2006">
  <Response xmlns="http://schemas.microsoft.com/exchange/autodiscover/outlook/responseschema/2006a">
    <Account>
      <AccountType>email</AccountType>
      <Protocol>
        <Type>EXCH</Type>
        <EwsUrl>https://internal.example.com/EWS/Exchange.asmx</EwsUrl>
      </Protocol>
      <Protocol>
        <Type>EXPR</Type>
        <EwsUrl>https://mail.example.com/EWS/Exchange.asmx</EwsUrl>
      </Protocol>
    </Account>
  </Response>
</Autodiscover>`

const autodiscoverError = `<?xml version="1.0" encoding="utf-8"?>
<Autodiscover xmlns="http://schemas.microsoft.com/exchange/autodiscover/responseschema/2006">
  <Response>
    <Error Time="10:00:00.0000000" Id="1">
      <ErrorCode>500</ErrorCode>
      <Message>The e-mail address cannot be found.</Message>
    </Error>
  </Response>
</Autodiscover>`

func TestDiscoverFrom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, autodiscoverOK)
	}))
	defer server.Close()

	opts := Options{Username: "svc", Password: "secret", Timeout: 5 * time.Second}
	endpoint, err := discoverFrom(context.Background(), newHTTPClient(opts), server.URL, "user@example.com", opts)
	if err != nil {
		t.Fatalf("discoverFrom() error = %v", err)
	}

	// EXPR is the external web service URL and wins over EXCH.
	if endpoint != "https://mail.example.com/EWS/Exchange.asmx" {
		t.Errorf("endpoint = %q, want the EXPR URL", endpoint)
	}
}

func TestDiscoverFrom_ErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, autodiscoverError)
	}))
	defer server.Close()

	opts := Options{Username: "svc", Password: "secret", Timeout: 5 * time.Second}
	_, err := discoverFrom(context.Background(), newHTTPClient(opts), server.URL, "nobody@example.com", opts)
	if err == nil {
		t.Fatal("Expected error for autodiscover error response")
	}
}

func TestAutodiscoverCandidates(t *testing.T) {
	candidates, err := autodiscoverCandidates("user@example.com")
	if err != nil {
		t.Fatalf("autodiscoverCandidates() error = %v", err)
	}

	want := []string{
		"https://example.com/autodiscover/autodiscover.xml",
		"https://autodiscover.example.com/autodiscover/autodiscover.xml",
	}
	if len(candidates) != len(want) {
		t.Fatalf("len(candidates) = %d, want %d", len(candidates), len(want))
	}
	for i := range want {
		if candidates[i] != want[i] {
			t.Errorf("candidates[%d] = %q, want %q", i, candidates[i], want[i])
		}
	}
}

func TestAutodiscoverCandidates_NotAnAddress(t *testing.T) {
	if _, err := autodiscoverCandidates("justauser"); err == nil {
		t.Error("Expected error for mailbox without a domain")
	}
}
