package uploadclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrUploadFailed = errors.New("upload failed")
	ErrLoginFailed  = errors.New("login failed")
)

type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
}

/*
Client drives the photo upload handshake against a running site: ask for a
signed URL, PUT the bytes straight to storage, then register the photo.
It carries the admin session cookie between calls.
*/
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type UploadRequest struct {
	PublicationID string
	FileName      string
	ContentType   string
	Alt           string
	DisplayOrder  int
	Body          io.Reader
	Size          int64
}

type uploadURLRequest struct {
	PublicationID string `json:"publicationId"`
	FileName      string `json:"fileName"`
}

type uploadURLResponse struct {
	SignedURL string `json:"signedUrl"`
	Path      string `json:"path"`
}

type registerPhotoRequest struct {
	PublicationID string `json:"publicationId"`
	Path          string `json:"path"`
	Alt           string `json:"alt"`
	DisplayOrder  int    `json:"displayOrder"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewClient(config ClientConfig) (*Client, error) {
	if config.HTTPClient == nil {
		jar, err := cookiejar.New(nil)

		if err != nil {
			return nil, fmt.Errorf("error creating cookie jar: %w", err)
		}

		config.HTTPClient = &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Minute,
		}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: config.HTTPClient,
	}, nil
}

/*
Login posts the admin credentials. A successful login answers with a
redirect to the admin panel, which is not followed.
*/
func (c *Client) Login(ctx context.Context, email, password string) error {
	var (
		err      error
		req      *http.Request
		response *http.Response
	)

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	if req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/login", strings.NewReader(form.Encode())); err != nil {
		return fmt.Errorf("error building login request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := *c.httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	if response, err = client.Do(req); err != nil {
		return fmt.Errorf("error sending login request: %w", err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusFound || response.Header.Get("Location") != "/admin" {
		return ErrLoginFailed
	}

	return nil
}

/*
UploadPhoto runs the three handshake steps. Progress is reported as a
fraction between 0 and 1 while storage reads the body. Transport failures
and non-2xx answers from storage collapse to ErrUploadFailed; nothing is
retried.
*/
func (c *Client) UploadPhoto(ctx context.Context, request UploadRequest, progress func(float64)) error {
	var (
		err    error
		ticket uploadURLResponse
	)

	if progress == nil {
		progress = func(float64) {}
	}

	err = c.postJSON(ctx, "/admin/photos/upload-url", uploadURLRequest{
		PublicationID: request.PublicationID,
		FileName:      request.FileName,
	}, &ticket)

	if err != nil {
		return err
	}

	if err = c.putToStorage(ctx, ticket.SignedURL, request, progress); err != nil {
		slog.Debug("direct upload failed", "error", err, "path", ticket.Path)
		return ErrUploadFailed
	}

	return c.postJSON(ctx, "/admin/photos", registerPhotoRequest{
		PublicationID: request.PublicationID,
		Path:          ticket.Path,
		Alt:           request.Alt,
		DisplayOrder:  request.DisplayOrder,
	}, nil)
}

func (c *Client) putToStorage(ctx context.Context, signedURL string, request UploadRequest, progress func(float64)) error {
	var (
		err      error
		req      *http.Request
		response *http.Response
	)

	body := &progressReader{
		reader:   request.Body,
		total:    request.Size,
		progress: progress,
	}

	if req, err = http.NewRequestWithContext(ctx, http.MethodPut, signedURL, body); err != nil {
		return err
	}

	req.ContentLength = request.Size

	contentType := request.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req.Header.Set("Content-Type", contentType)

	if response, err = c.httpClient.Do(req); err != nil {
		return err
	}

	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("storage responded with %d", response.StatusCode)
	}

	progress(1)
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, dest any) error {
	var (
		err      error
		b        []byte
		req      *http.Request
		response *http.Response
	)

	if b, err = json.Marshal(payload); err != nil {
		return fmt.Errorf("error encoding request to %s: %w", path, err)
	}

	if req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("error building request to %s: %w", path, err)
	}

	req.Header.Set("Content-Type", "application/json")

	if response, err = c.httpClient.Do(req); err != nil {
		return fmt.Errorf("error calling %s: %w", path, err)
	}

	defer response.Body.Close()

	if b, err = io.ReadAll(response.Body); err != nil {
		return fmt.Errorf("error reading response from %s: %w", path, err)
	}

	if response.StatusCode != http.StatusOK {
		serverError := errorResponse{}

		if err = json.Unmarshal(b, &serverError); err == nil && serverError.Error != "" {
			return errors.New(serverError.Error)
		}

		return fmt.Errorf("%s responded with %d", path, response.StatusCode)
	}

	if dest == nil {
		return nil
	}

	if err = json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("error decoding response from %s: %w", path, err)
	}

	return nil
}

type progressReader struct {
	reader   io.Reader
	read     int64
	total    int64
	progress func(float64)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)

	if r.total > 0 && n > 0 {
		r.progress(float64(r.read) / float64(r.total))
	}

	return n, err
}
