// Package ews implements the small slice of Exchange Web Services the
// estimator needs: endpoint autodiscovery, folder enumeration and item
// enumeration with a creation-date restriction, all on behalf of an
// impersonated mailbox.
package ews

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnauthorized = errors.New("authentication failed")
)

// Options configures one mailbox-scoped connection.
type Options struct {
	Endpoint           string
	Username           string
	Password           string
	Mailbox            string // SMTP address all operations are performed as
	PageSize           int
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client is an authenticated session against one EWS endpoint, scoped to a
// single impersonated mailbox. It is not reused across mailboxes.
type Client struct {
	opts   Options
	hc     *http.Client
	logger *slog.Logger
}

func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("ews endpoint is empty")
	}
	if opts.Mailbox == "" {
		return nil, fmt.Errorf("mailbox address is empty")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	return &Client{
		opts:   opts,
		hc:     newHTTPClient(opts),
		logger: logger,
	}, nil
}

func newHTTPClient(opts Options) *http.Client {
	transport := &http.Transport{}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}
}

// BindRootFolder verifies that the impersonated mailbox's message folder
// root is accessible. It is the first call made on a new connection.
func (c *Client) BindRootFolder(ctx context.Context) error {
	body := fmt.Sprintf(getFolderBody, xmlEscape(c.opts.Mailbox))

	data, err := c.call(ctx, body)
	if err != nil {
		return fmt.Errorf("bind root folder: %w", err)
	}

	var resp getFolderResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode GetFolder response: %w", err)
	}

	messages := resp.Body.Response.ResponseMessages.Messages
	if len(messages) == 0 {
		return fmt.Errorf("bind root folder: empty GetFolder response")
	}
	if err := messages[0].asError(); err != nil {
		return fmt.Errorf("bind root folder: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("root folder bound", "mailbox", c.opts.Mailbox, "endpoint", c.opts.Endpoint)
	}
	return nil
}

// call posts one SOAP operation body and returns the raw response envelope.
func (c *Client) call(ctx context.Context, operation string) ([]byte, error) {
	envelope := fmt.Sprintf(soapEnvelope, impersonationHeader(c.opts.Mailbox), operation)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, strings.NewReader(envelope))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.opts.Username, c.opts.Password)
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", c.opts.Endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return data, nil
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w for %s", ErrUnauthorized, c.opts.Username)
	default:
		if fault := parseFault(data); fault != "" {
			return nil, fmt.Errorf("soap fault: %s", fault)
		}
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, c.opts.Endpoint)
	}
}

// responseMessage holds the per-operation status attributes shared by all
// EWS response messages.
type responseMessage struct {
	ResponseClass string `xml:"ResponseClass,attr"`
	ResponseCode  string `xml:"ResponseCode"`
	MessageText   string `xml:"MessageText"`
}

func (m responseMessage) asError() error {
	if m.ResponseClass == "Error" {
		if m.MessageText != "" {
			return fmt.Errorf("%s: %s", m.ResponseCode, m.MessageText)
		}
		return fmt.Errorf("server returned %s", m.ResponseCode)
	}
	return nil
}

type getFolderResponse struct {
	Body struct {
		Response struct {
			ResponseMessages struct {
				Messages []responseMessage `xml:"GetFolderResponseMessage"`
			} `xml:"ResponseMessages"`
		} `xml:"GetFolderResponse"`
	} `xml:"Body"`
}

type soapFaultEnvelope struct {
	Body struct {
		Fault struct {
			FaultString string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

func parseFault(data []byte) string {
	var fault soapFaultEnvelope
	if err := xml.Unmarshal(data, &fault); err != nil {
		return ""
	}
	return fault.Body.Fault.FaultString
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
