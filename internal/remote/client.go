package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/commitzapp/commitz/internal/models"
)

const defaultTimeout = 8 * time.Second

// Client talks to the commitments REST API. Every call takes a context
// and classifies failures into the sentinel errors in errors.go so the
// sync engine can decide what to retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTP is used by tests to inject an httptest transport.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (client *Client) CreateCommitment(ctx context.Context, title string, commitmentType string, userID string) (models.Commitment, error) {
	payload := map[string]string{
		"title":  title,
		"type":   commitmentType,
		"userId": userID,
	}
	commitment := models.Commitment{}
	err := client.call(ctx, http.MethodPost, "/commitments", payload, &commitment)
	return commitment, err
}

func (client *Client) Commitments(ctx context.Context, userID string) ([]models.Commitment, error) {
	commitments := []models.Commitment{}
	path := "/commitments?userId=" + url.QueryEscape(userID)
	err := client.call(ctx, http.MethodGet, path, nil, &commitments)
	return commitments, err
}

// CollaborativeCommitments returns every active collaborative
// commitment the user owns or has joined.
func (client *Client) CollaborativeCommitments(ctx context.Context, userID string) ([]models.Commitment, error) {
	commitments := []models.Commitment{}
	path := "/commitments/collaborative/" + url.PathEscape(userID)
	err := client.call(ctx, http.MethodGet, path, nil, &commitments)
	return commitments, err
}

func (client *Client) Commitment(ctx context.Context, id string) (models.Commitment, error) {
	commitment := models.Commitment{}
	err := client.call(ctx, http.MethodGet, "/commitments/"+url.PathEscape(id), nil, &commitment)
	return commitment, err
}

func (client *Client) UpdateTitle(ctx context.Context, id string, title string) (models.Commitment, error) {
	commitment := models.Commitment{}
	err := client.call(ctx, http.MethodPatch, "/commitments/"+url.PathEscape(id), map[string]string{"title": title}, &commitment)
	return commitment, err
}

func (client *Client) Delete(ctx context.Context, id string, userID string) error {
	return client.call(ctx, http.MethodDelete, "/commitments/"+url.PathEscape(id), map[string]string{"userId": userID}, nil)
}

// ToggleCompletion flips the (commitment, user, date) cell and returns
// the user's full completion list for that commitment, soft-deleted
// rows included.
func (client *Client) ToggleCompletion(ctx context.Context, commitmentID string, date string, userID string) ([]models.Completion, error) {
	payload := map[string]string{
		"date":   date,
		"userId": userID,
	}
	completions := []models.Completion{}
	path := "/commitments/" + url.PathEscape(commitmentID) + "/completions"
	err := client.call(ctx, http.MethodPost, path, payload, &completions)
	return completions, err
}

// Completions lists rows for a commitment, optionally filtered to one
// user. Soft-deleted rows are included.
func (client *Client) Completions(ctx context.Context, commitmentID string, userID string) ([]models.Completion, error) {
	completions := []models.Completion{}
	path := "/commitments/" + url.PathEscape(commitmentID) + "/completions"
	if userID != "" {
		path += "?userId=" + url.QueryEscape(userID)
	}
	err := client.call(ctx, http.MethodGet, path, nil, &completions)
	return completions, err
}

func (client *Client) Join(ctx context.Context, shareCode string, userID string) (models.Commitment, error) {
	commitment := models.Commitment{}
	path := "/commitments/join/" + url.PathEscape(shareCode)
	err := client.call(ctx, http.MethodPost, path, map[string]string{"userId": userID}, &commitment)
	return commitment, err
}

func (client *Client) ViewShared(ctx context.Context, shareCode string) (models.Commitment, error) {
	commitment := models.Commitment{}
	path := "/commitments/view/" + url.PathEscape(shareCode)
	err := client.call(ctx, http.MethodPost, path, nil, &commitment)
	return commitment, err
}

func (client *Client) RotateShareCode(ctx context.Context, commitmentID string) (string, error) {
	response := struct {
		ShareCode string `json:"shareCode"`
	}{}
	path := "/commitments/" + url.PathEscape(commitmentID) + "/share"
	err := client.call(ctx, http.MethodPost, path, nil, &response)
	return response.ShareCode, err
}

func (client *Client) Participants(ctx context.Context, commitmentID string) ([]string, error) {
	response := struct {
		UserIDs []string `json:"userIds"`
	}{}
	path := "/commitments/" + url.PathEscape(commitmentID) + "/participants"
	err := client.call(ctx, http.MethodGet, path, nil, &response)
	return response.UserIDs, err
}

func (client *Client) Health(ctx context.Context) error {
	return client.call(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (client *Client) call(ctx context.Context, method string, path string, payload any, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return classify(response)
	}
	if out == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classify(response *http.Response) error {
	message := serverMessage(response)

	switch {
	case response.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	case response.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, message)
	case response.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, message)
	case response.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrTransient, message)
	default:
		return fmt.Errorf("%w: %s", ErrBadInput, message)
	}
}

func serverMessage(response *http.Response) string {
	body := struct {
		Error string `json:"error"`
	}{}
	if err := json.NewDecoder(response.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return response.Status
}
