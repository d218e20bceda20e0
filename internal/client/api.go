// Package client talks to the task API and keeps a local view of the
// collection for interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskmanager/internal/dto"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:5000/api/v1"

const fallbackMessage = "Something went wrong"

// APIError is a failed call. Message is the server's message, or a generic
// one when there is none. Transport failures have StatusCode 0 and keep
// their cause in Err.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Fields     []dto.FieldError
	Err        error
}

func (e *APIError) Error() string { return e.Message }
func (e *APIError) Unwrap() error { return e.Err }

// ListParams narrows a list request. Zero value lists everything newest first.
type ListParams struct {
	Statuses []string
	Sort     string
}

// API is a thin JSON client for /api/v1.
type API struct {
	base string
	hc   *http.Client
}

// NewAPI returns a client for baseURL. A nil hc gets a client with a 15s timeout.
func NewAPI(baseURL string, hc *http.Client) *API {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (a *API) List(ctx context.Context, p ListParams) ([]dto.TaskResponse, error) {
	q := url.Values{}
	for _, s := range p.Statuses {
		q.Add("status", s)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	path := "/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp dto.ListTasksResponse
	if err := a.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Tasks == nil {
		return []dto.TaskResponse{}, nil
	}
	return resp.Data.Tasks, nil
}

func (a *API) Get(ctx context.Context, id string) (dto.TaskResponse, error) {
	var resp dto.TaskEnvelope
	if err := a.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &resp); err != nil {
		return dto.TaskResponse{}, err
	}
	return resp.Data.Task, nil
}

func (a *API) Create(ctx context.Context, req dto.CreateTaskRequest) (dto.TaskResponse, error) {
	var resp dto.TaskEnvelope
	if err := a.do(ctx, http.MethodPost, "/tasks", req, &resp); err != nil {
		return dto.TaskResponse{}, err
	}
	return resp.Data.Task, nil
}

func (a *API) Update(ctx context.Context, id string, req dto.UpdateTaskRequest) (dto.TaskResponse, error) {
	var resp dto.TaskEnvelope
	if err := a.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), req, &resp); err != nil {
		return dto.TaskResponse{}, err
	}
	return resp.Data.Task, nil
}

func (a *API) Delete(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := a.hc.Do(req)
	if err != nil {
		return &APIError{Message: fallbackMessage, Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(res *http.Response, raw []byte) *APIError {
	e := &APIError{StatusCode: res.StatusCode, Message: fallbackMessage}
	var env dto.ErrorResponse
	if err := json.Unmarshal(raw, &env); err == nil {
		e.Status = env.Status
		e.Fields = env.Errors
		if env.Message != "" {
			e.Message = env.Message
		}
	}
	return e
}
