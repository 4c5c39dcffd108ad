// Package gemini adapts the Google Gen AI SDK to the two calls this service
// makes: video form analysis (text + inline video) and achievement image
// generation (TEXT+IMAGE modalities). Requests and responses use the small
// wire-shaped types in types.go so services and their fakes stay SDK-free.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// DefaultBaseURL is the public Generative Language API host.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/"

const apiVersion = "v1beta"

// Response modalities.
const (
	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini: http %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini: http %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// fromSDK converts the SDK's error into *APIError.
func fromSDK(err error) error {
	var v genai.APIError
	if errors.As(err, &v) {
		return &APIError{StatusCode: v.Code, Status: v.Status, Message: v.Message}
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return &APIError{StatusCode: p.Code, Status: p.Status, Message: p.Message}
	}
	return fmt.Errorf("gemini: %w", err)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimSpace(u); u != "" {
			c.baseURL = strings.TrimRight(u, "/") + "/"
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// Client calls generateContent with an API key. The SDK client is built on
// first use so a missing key only fails the calls that need it.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	once   sync.Once
	models *genai.Models
	err    error
}

// New returns a client for apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) sdk(ctx context.Context) (*genai.Models, error) {
	c.once.Do(func() {
		if strings.TrimSpace(c.apiKey) == "" {
			c.err = errors.New("gemini: api key is empty")
			return
		}
		sc, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     c.apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: c.httpClient,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    c.baseURL,
				APIVersion: apiVersion,
			},
		})
		if err != nil {
			c.err = fmt.Errorf("gemini: new client: %w", err)
			return
		}
		c.models = sc.Models
	})
	return c.models, c.err
}

// GenerateContent sends req to models/<model>:generateContent.
func (c *Client) GenerateContent(ctx context.Context, model string, req Request) (*Response, error) {
	models, err := c.sdk(ctx)
	if err != nil {
		return nil, err
	}
	contents, err := toSDKContents(req.Contents)
	if err != nil {
		return nil, err
	}
	var gc *genai.GenerateContentConfig
	if req.GenerationConfig != nil && len(req.GenerationConfig.ResponseModalities) > 0 {
		gc = &genai.GenerateContentConfig{ResponseModalities: req.GenerationConfig.ResponseModalities}
	}

	resp, err := models.GenerateContent(ctx, model, contents, gc)
	if err != nil {
		return nil, fromSDK(err)
	}
	return fromSDKResponse(resp), nil
}

func toSDKContents(in []Content) ([]*genai.Content, error) {
	out := make([]*genai.Content, 0, len(in))
	for _, c := range in {
		sc := &genai.Content{Role: c.Role}
		for _, p := range c.Parts {
			sp := &genai.Part{Text: p.Text}
			if p.InlineData != nil {
				data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("gemini: inline data is not base64: %w", err)
				}
				sp.InlineData = &genai.Blob{MIMEType: p.InlineData.MimeType, Data: data}
			}
			sc.Parts = append(sc.Parts, sp)
		}
		out = append(out, sc)
	}
	return out, nil
}

func fromSDKResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		var rc Candidate
		rc.FinishReason = string(cand.FinishReason)
		if cand.Content != nil {
			rc.Content.Role = cand.Content.Role
			for _, p := range cand.Content.Parts {
				if p == nil {
					continue
				}
				part := Part{Text: p.Text}
				if p.InlineData != nil {
					part.InlineData = &InlineData{
						MimeType: p.InlineData.MIMEType,
						Data:     base64.StdEncoding.EncodeToString(p.InlineData.Data),
					}
				}
				rc.Content.Parts = append(rc.Content.Parts, part)
			}
		}
		out.Candidates = append(out.Candidates, rc)
	}
	return out
}

// TextAndInline builds a single user turn with a prompt and one inline blob.
func TextAndInline(prompt, mimeType, b64 string) Request {
	return Request{
		Contents: []Content{{
			Role: genai.RoleUser,
			Parts: []Part{
				{Text: prompt},
				{InlineData: &InlineData{MimeType: mimeType, Data: b64}},
			},
		}},
	}
}

// ImagePrompt builds a TEXT+IMAGE request for prompt.
func ImagePrompt(prompt string) Request {
	return Request{
		Contents: []Content{{Role: genai.RoleUser, Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{ModalityText, ModalityImage},
		},
	}
}
