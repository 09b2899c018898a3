package ews

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const autodiscoverRequest = `<?xml version="1.0" encoding="utf-8"?>
<Autodiscover xmlns="http://schemas.microsoft.com/exchange/autodiscover/outlook/requestschema/2006">
  <Request>
    <EMailAddress>%s</EMailAddress>
    <AcceptableResponseSchema>http://schemas.microsoft.com/exchange/autodiscover/outlook/responseschema/2006a</AcceptableResponseSchema>
  </Request>
</Autodiscover>`

type autodiscoverResponse struct {
	Response struct {
		Account struct {
			Protocol []struct {
				Type   string `xml:"Type"`
				EwsURL string `xml:"EwsUrl"`
			} `xml:"Protocol"`
		} `xml:"Account"`
		Error struct {
			Message string `xml:"Message"`
		} `xml:"Error"`
	} `xml:"Response"`
}

// Discover resolves the EWS endpoint for a mailbox via POX autodiscover,
// trying the well-known URL candidates for the mailbox's SMTP domain.
func Discover(ctx context.Context, mailbox string, opts Options) (string, error) {
	candidates, err := autodiscoverCandidates(mailbox)
	if err != nil {
		return "", err
	}

	hc := newHTTPClient(opts)

	var lastErr error
	for _, candidate := range candidates {
		endpoint, err := discoverFrom(ctx, hc, candidate, mailbox, opts)
		if err != nil {
			lastErr = err
			continue
		}
		return endpoint, nil
	}

	return "", fmt.Errorf("autodiscover for %s: %w", mailbox, lastErr)
}

func autodiscoverCandidates(mailbox string) ([]string, error) {
	at := strings.LastIndex(mailbox, "@")
	if at < 0 || at == len(mailbox)-1 {
		return nil, fmt.Errorf("mailbox %q is not an SMTP address", mailbox)
	}
	domain := mailbox[at+1:]

	return []string{
		fmt.Sprintf("https://%s/autodiscover/autodiscover.xml", domain),
		fmt.Sprintf("https://autodiscover.%s/autodiscover/autodiscover.xml", domain),
	}, nil
}

func discoverFrom(ctx context.Context, hc *http.Client, url, mailbox string, opts Options) (string, error) {
	payload := fmt.Sprintf(autodiscoverRequest, xmlEscape(mailbox))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(opts.Username, opts.Password)
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read autodiscover response: %w", err)
	}

	var parsed autodiscoverResponse
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode autodiscover response from %s: %w", url, err)
	}

	if msg := parsed.Response.Error.Message; msg != "" {
		return "", fmt.Errorf("autodiscover error from %s: %s", url, msg)
	}

	// Prefer the external web service URL, fall back to the internal one.
	endpoint := ""
	for _, protocol := range parsed.Response.Account.Protocol {
		if protocol.EwsURL == "" {
			continue
		}
		if protocol.Type == "EXPR" {
			return protocol.EwsURL, nil
		}
		if endpoint == "" {
			endpoint = protocol.EwsURL
		}
	}
	if endpoint == "" {
		return "", fmt.Errorf("autodiscover response from %s has no EWS URL", url)
	}
	return endpoint, nil
}
