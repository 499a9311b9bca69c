package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
)

// PhotoFileName is the file name of the photo part of POST /stories.
const PhotoFileName = "photo.jpg"

type RESTClient struct {
	base *url.URL
	http *http.Client
	log  logging.Logger
}

var _ Client = (*RESTClient)(nil)

// NewRESTClient talks to the API at baseURL through hc. hc is usually
// backed by the router so reads get offline fallbacks.
func NewRESTClient(baseURL string, hc *http.Client, log logging.Logger) (*RESTClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("bad api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("bad api base url %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &RESTClient{base: u, http: hc, log: log}, nil
}

func (c *RESTClient) endpoint(p string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + p
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func (c *RESTClient) do(ctx context.Context, method, endpoint, token, contentType string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "api request failed", "method", method, "url", endpoint, "user", TokenSubject(token), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return nil, &DecodeError{Status: resp.StatusCode, Err: decodeErr}
	}
	if env.Error == nil {
		return nil, &DecodeError{Status: resp.StatusCode, Err: errMissingErrorField}
	}
	if *env.Error {
		return nil, &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	return &env, nil
}

func (c *RESTClient) doJSON(ctx context.Context, method, endpoint, token string, payload any) (*envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, endpoint, token, "application/json", bytes.NewReader(b))
}

// Ping checks that the API host answers at all; any HTTP status counts.
func (c *RESTClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.endpoint("/stories", nil), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

func (c *RESTClient) ListStories(ctx context.Context, token string, opts ListOptions) ([]Story, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Size > 0 {
		q.Set("size", strconv.Itoa(opts.Size))
	}
	if opts.Location {
		q.Set("location", "1")
	} else {
		q.Set("location", "0")
	}

	env, err := c.do(ctx, http.MethodGet, c.endpoint("/stories", q), token, "", nil)
	if err != nil {
		return nil, err
	}
	return env.ListStory, nil
}

func (c *RESTClient) GetStory(ctx context.Context, token, id string) (*Story, error) {
	env, err := c.do(ctx, http.MethodGet, c.endpoint("/stories/"+url.PathEscape(id), nil), token, "", nil)
	if err != nil {
		return nil, err
	}
	if env.Story == nil {
		return nil, common.ErrorNotFound
	}
	return env.Story, nil
}

func (c *RESTClient) AddStory(ctx context.Context, token string, s NewStory) error {
	body, contentType, err := EncodeStory(s)
	if err != nil {
		return err
	}
	endpoint := c.endpoint("/stories", nil)
	_, err = c.do(ctx, http.MethodPost, endpoint, token, contentType, body)
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		// The server took the story; an odd body must not cause a resend.
		c.log.Debug(ctx, "story accepted with unexpected body", "url", endpoint, "error", err)
		return nil
	}
	return err
}

// EncodeStory builds the multipart body of POST /stories.
func EncodeStory(s NewStory) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("description", s.Description); err != nil {
		return nil, "", err
	}
	if len(s.Photo) > 0 {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, PhotoFileName))
		ct := s.PhotoType
		if ct == "" {
			ct = "image/jpeg"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(s.Photo); err != nil {
			return nil, "", err
		}
	}
	if s.Lat != nil && s.Lon != nil {
		if err := w.WriteField("lat", strconv.FormatFloat(*s.Lat, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
		if err := w.WriteField("lon", strconv.FormatFloat(*s.Lon, 'f', -1, 64)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *RESTClient) Register(ctx context.Context, name, email, password string) error {
	_, err := c.doJSON(ctx, http.MethodPost, c.endpoint("/register", nil), "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	return err
}

func (c *RESTClient) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	env, err := c.doJSON(ctx, http.MethodPost, c.endpoint("/login", nil), "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	lr, ok := env.loginResult()
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return lr, nil
}

func (c *RESTClient) Subscribe(ctx context.Context, token string, sub Subscription) error {
	_, err := c.doJSON(ctx, http.MethodPost, c.endpoint("/notifications/subscribe", nil), token, sub)
	return err
}

func (c *RESTClient) Unsubscribe(ctx context.Context, token, endpoint string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, c.endpoint("/notifications/subscribe", nil), token,
		map[string]string{"endpoint": endpoint})
	return err
}
