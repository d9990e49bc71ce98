// Package codeengine adapts the IBM Code Engine v2 SDK to the tool layer.
// Records are returned as generic maps so callers read only the fields they
// need.
package codeengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/IBM/code-engine-go-sdk/codeenginev2"
	"github.com/IBM/go-sdk-core/v5/core"
	"golang.org/x/time/rate"

	"cemcp/internal/runner"
)

// Resource is one record as returned by the API.
type Resource = map[string]any

const userAgent = "cemcp/1.0"

// EndpointForRegion returns the public v2 API endpoint of a region.
func EndpointForRegion(region string) string {
	return fmt.Sprintf("https://api.%s.codeengine.cloud.ibm.com/v2", region)
}

type Options struct {
	APIKey            string
	Region            string
	Endpoint          string
	MaxResults        int
	RequestsPerSecond float64
	// Authenticator replaces IAM API-key authentication when set.
	Authenticator core.Authenticator
	HTTPClient    *http.Client
	Runner        runner.CommandRunner
	Deploy        DeployOptions
}

// DeployOptions configure build-source deployments through the CLI.
type DeployOptions struct {
	CLIPath  string
	Registry string
	Timeout  time.Duration
}

type Client struct {
	service    *codeenginev2.CodeEngineV2
	limiter    *rate.Limiter
	maxResults int
	apiKey     string
	region     string
	runner     runner.CommandRunner
	deploy     DeployOptions
}

var _ API = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	if opts.Region == "" && opts.Endpoint == "" {
		return nil, errors.New("region or endpoint required")
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = EndpointForRegion(opts.Region)
	}
	auth := opts.Authenticator
	if auth == nil {
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, errors.New("api key required")
		}
		iam, err := core.NewIamAuthenticatorBuilder().SetApiKey(opts.APIKey).Build()
		if err != nil {
			return nil, fmt.Errorf("iam authenticator: %w", err)
		}
		auth = iam
	}
	service, err := codeenginev2.NewCodeEngineV2(&codeenginev2.CodeEngineV2Options{
		URL:           strings.TrimRight(endpoint, "/"),
		Authenticator: auth,
	})
	if err != nil {
		return nil, fmt.Errorf("code engine service: %w", err)
	}
	service.Service.SetUserAgent(userAgent)
	service.Service.SetHTTPClient(recordingClient(opts.HTTPClient))

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	cmdRunner := opts.Runner
	if cmdRunner == nil {
		cmdRunner = runner.ExecRunner{}
	}
	deploy := opts.Deploy
	if deploy.CLIPath == "" {
		deploy.CLIPath = "ibmcloud"
	}
	if deploy.Registry == "" {
		deploy.Registry = "private.us.icr.io"
	}
	return &Client{
		service:    service,
		limiter:    limiter,
		maxResults: opts.MaxResults,
		apiKey:     opts.APIKey,
		region:     opts.Region,
		runner:     cmdRunner,
		deploy:     deploy,
	}, nil
}

// Endpoint reports the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.service.GetServiceURL()
}

// SDK pagers drop the HTTP response, so the status of the last API response
// is captured by the transport on the request context.
type callStatus struct {
	code int
}

type callStatusKey struct{}

type statusTransport struct {
	base http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if status, ok := req.Context().Value(callStatusKey{}).(*callStatus); ok && resp != nil {
		status.code = resp.StatusCode
	}
	return resp, err
}

func recordingClient(base *http.Client) *http.Client {
	if base == nil {
		base = core.DefaultHTTPClient()
	}
	client := *base
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client.Transport = statusTransport{base: transport}
	return &client
}

// call paces one SDK invocation and classifies its failure.
func (c *Client) call(ctx context.Context, op string, fn func(context.Context) error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return newError(op, 0, err)
		}
	}
	status := &callStatus{}
	if err := fn(context.WithValue(ctx, callStatusKey{}, status)); err != nil {
		return newError(op, status.code, err)
	}
	return nil
}

func fetch[T any](ctx context.Context, c *Client, op string, get func(context.Context) (*T, *core.DetailedResponse, error)) (Resource, error) {
	var out *T
	err := c.call(ctx, op, func(ctx context.Context) (err error) {
		out, _, err = get(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toResource(op, out)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(n int) *int64 {
	if n == 0 {
		return nil
	}
	return core.Int64Ptr(int64(n))
}
