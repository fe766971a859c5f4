// Package ws is a thin client for the AMDA REST web service
// (http://amda.irap.omp.eu/help/apidoc/). It does plain single-shot HTTP:
// no retries, no backoff, no credential handling beyond the optional
// anonymous token the service hands out.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"

	amdago "github.com/amdalab/amdago"
	"github.com/amdalab/amdago/obstree"
)

// DefaultEntryPoint is the public AMDA REST endpoint
const DefaultEntryPoint = "http://amda.irap.omp.eu/php/rest/"

// OutputFormat selects the file format of dataset downloads
type OutputFormat string

const (
	FormatASCII   OutputFormat = "ASCII"
	FormatVOTable OutputFormat = "VOTable"
	FormatCDF     OutputFormat = "CDF"
)

// Client calls the AMDA REST web service
type Client struct {
	entryPoint string
	userID     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserID sets the user identifier sent with dataset requests
func WithUserID(id string) Option {
	return func(c *Client) { c.userID = id }
}

// NewClient creates a client for the given entry point. An empty entry point
// selects the public AMDA service.
func NewClient(entryPoint string, opts ...Option) *Client {
	if entryPoint == "" {
		entryPoint = DefaultEntryPoint
	}
	if !strings.HasSuffix(entryPoint, "/") {
		entryPoint += "/"
	}

	c := &Client{
		entryPoint: entryPoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get performs one GET request against an endpoint of the entry point
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	u := c.entryPoint + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", amdago.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned %s", amdago.ErrRequestFailed, endpoint, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// IsAlive checks whether the AMDA service is available
func (c *Client) IsAlive(ctx context.Context) (bool, error) {
	body, err := c.get(ctx, "isAlive.php", nil)
	if err != nil {
		return false, err
	}

	var result struct {
		Alive bool `json:"alive"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("failed to decode isAlive response: %w", err)
	}

	return result.Alive, nil
}

// Auth fetches the API token required by dataset requests. The token is
// public and anonymous; it is not a credential.
func (c *Client) Auth(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "auth.php", nil)
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", fmt.Errorf("%w: empty token", amdago.ErrEmptyResult)
	}

	return token, nil
}

// ObsDataTreeURL asks the service where the current observatory tree XML
// lives. The endpoint answers with a LocalDataBaseParameters element whose
// text is the tree URL.
func (c *Client) ObsDataTreeURL(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "getObsDataTree.php", nil)
	if err != nil {
		return "", err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", fmt.Errorf("failed to parse getObsDataTree response: %w", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "LocalDataBaseParameters" {
		return "", fmt.Errorf("%w: unexpected getObsDataTree response", amdago.ErrEmptyResult)
	}

	treeURL := strings.TrimSpace(root.Text())
	if treeURL == "" {
		return "", fmt.Errorf("%w: no tree URL in response", amdago.ErrEmptyResult)
	}

	return treeURL, nil
}

// GetObsDataTree downloads and parses the full observatory catalogue
func (c *Client) GetObsDataTree(ctx context.Context) (*obstree.Tree, error) {
	treeURL, err := c.ObsDataTreeURL(ctx)
	if err != nil {
		return nil, err
	}

	data, err := c.fetch(ctx, treeURL)
	if err != nil {
		return nil, err
	}

	return obstree.Parse(data)
}

// DatasetRequest describes one getDataset call
type DatasetRequest struct {
	Token     string
	DatasetID string
	Start     time.Time
	Stop      time.Time
	Sampling  string       // optional
	Format    OutputFormat // default ASCII
}

// datasetEnvelope is the JSON answer of getDataset.php
type datasetEnvelope struct {
	Success      bool   `json:"success"`
	DataFileURLs string `json:"dataFileURLs"`
}

// GetDataset requests a time slice of one dataset and returns the URL of the
// produced data file
func (c *Client) GetDataset(ctx context.Context, req DatasetRequest) (string, error) {
	params := url.Values{}
	params.Set("token", req.Token)
	params.Set("datasetID", req.DatasetID)
	params.Set("startTime", req.Start.UTC().Format("2006-01-02T15:04:05"))
	params.Set("stopTime", req.Stop.UTC().Format("2006-01-02T15:04:05"))

	if req.Sampling != "" {
		params.Set("sampling", req.Sampling)
	}
	if c.userID != "" {
		params.Set("userID", c.userID)
	}
	format := req.Format
	if format == "" {
		format = FormatASCII
	}
	params.Set("outputFormat", string(format))

	body, err := c.get(ctx, "getDataset.php", params)
	if err != nil {
		return "", err
	}

	var env datasetEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("failed to decode getDataset response: %w", err)
	}

	if !env.Success || env.DataFileURLs == "" {
		return "", fmt.Errorf("%w: try a smaller time period", amdago.ErrEmptyResult)
	}

	return env.DataFileURLs, nil
}

// fetch downloads an absolute URL handed back by the service
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", amdago.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned %s", amdago.ErrRequestFailed, rawURL, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// FetchText downloads a data file URL as text
func (c *Client) FetchText(ctx context.Context, rawURL string) (string, error) {
	data, err := c.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
