package store

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

	"github.com/ritzau/finance-assistant/pkg/logging"
	"github.com/ritzau/finance-assistant/pkg/model"
)

// HTTPStore is a RecordStore and LinkService backed by the finance-assistant REST API
type HTTPStore struct {
	base   string
	client *http.Client
}

// NewHTTPStore creates a store for the API rooted at base (e.g. http://localhost:8000/api)
func NewHTTPStore(base string, timeout time.Duration) *HTTPStore {
	return &HTTPStore{
		base:   strings.TrimSuffix(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// List fetches every record of a resource
func (s *HTTPStore) List(ctx context.Context, res model.Resource) ([]model.Record, error) {
	body, err := s.do(ctx, http.MethodGet, s.collectionURL(res), nil)
	if err != nil {
		return nil, err
	}

	records, err := decodeList[model.Record](body, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", res.Name, err)
	}

	logging.Debug("fetched records", "resource", res.Name, "count", len(records))
	return records, nil
}

// Create adds a record and returns it as stored
func (s *HTTPStore) Create(ctx context.Context, res model.Resource, in RecordInput) (model.Record, error) {
	if err := in.Validate(); err != nil {
		return model.Record{}, err
	}
	return s.send(ctx, http.MethodPost, s.collectionURL(res), in)
}

// Update replaces the name and parent of a record
func (s *HTTPStore) Update(ctx context.Context, res model.Resource, id model.ID, in RecordInput) (model.Record, error) {
	if err := in.Validate(); err != nil {
		return model.Record{}, err
	}
	return s.send(ctx, http.MethodPut, s.recordURL(res, id), in)
}

// Delete removes a record
func (s *HTTPStore) Delete(ctx context.Context, res model.Resource, id model.ID) error {
	_, err := s.do(ctx, http.MethodDelete, s.recordURL(res, id), nil)
	return err
}

// CreateLink links a core record to a plugin record and returns the link id
func (s *HTTPStore) CreateLink(ctx context.Context, link Link) (model.ID, error) {
	body, err := s.do(ctx, http.MethodPost, s.base+"/links/", link)
	if err != nil {
		return "", err
	}

	var created struct {
		ID model.ID `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to decode link: %w", err)
	}
	return created.ID, nil
}

// DeleteLink removes a link
func (s *HTTPStore) DeleteLink(ctx context.Context, linkID model.ID) error {
	_, err := s.do(ctx, http.MethodDelete, s.base+"/links/"+url.PathEscape(string(linkID))+"/", nil)
	return err
}

// ListUnlinked lists plugin records of recordType that no core record links to yet
func (s *HTTPStore) ListUnlinked(ctx context.Context, plugin, recordType string) ([]model.PluginRecord, error) {
	u := fmt.Sprintf("%s/%s/%s/?linked=false", s.base, url.PathEscape(plugin), url.PathEscape(recordType))
	body, err := s.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[model.PluginRecord](body, recordType)
}

func (s *HTTPStore) collectionURL(res model.Resource) string {
	return s.base + "/" + res.Path + "/"
}

func (s *HTTPStore) recordURL(res model.Resource, id model.ID) string {
	return s.base + "/" + res.Path + "/" + url.PathEscape(string(id)) + "/"
}

func (s *HTTPStore) send(ctx context.Context, method, u string, in RecordInput) (model.Record, error) {
	body, err := s.do(ctx, method, u, in)
	if err != nil {
		return model.Record{}, err
	}

	var record model.Record
	if err := json.Unmarshal(body, &record); err != nil {
		return model.Record{}, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, nil
}

// do performs a request with an optional JSON body and returns the response body
func (s *HTTPStore) do(ctx context.Context, method, u string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", method, u, err)
	}

	logging.TraceContext(ctx, "API request", "method", method, "url", u, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: method, URL: u, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
