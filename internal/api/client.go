package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/exam-session-client/internal/models"
)

// ExamAPI is the exam server as seen by the session controllers.
type ExamAPI interface {
	SaveAnswer(ctx context.Context, attemptID string, question int, answer string) error
	GetExamState(ctx context.Context, attemptID string) (*models.ExamState, error)
	SubmitExam(ctx context.Context, attemptID string) error
}

// DefaultSessionCookie is the cookie name the exam server uses for logins.
const DefaultSessionCookie = "session"

var ErrNotAuthenticated = errors.New("exam server redirected to login")

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

type Config struct {
	BaseURL string
	// SessionCookie is either "name=value" or a bare value for the default cookie name.
	SessionCookie string
	Timeout       time.Duration
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid exam server url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if cfg.SessionCookie != "" {
		name, value, ok := strings.Cut(cfg.SessionCookie, "=")
		if !ok {
			name, value = DefaultSessionCookie, cfg.SessionCookie
		}
		jar.SetCookies(base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	}

	h := &http.Client{
		Jar:     jar,
		Timeout: cfg.Timeout,
		// Submission answers with a redirect to the results page; the client
		// has nowhere to follow it to.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &Client{baseURL: base, http: h}, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) postForm(ctx context.Context, op, path string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// SaveAnswer persists one answer. Any 2xx is success.
func (c *Client) SaveAnswer(ctx context.Context, attemptID string, question int, answer string) error {
	form := url.Values{}
	form.Set("attempt_id", attemptID)
	form.Set("question_number", strconv.Itoa(question))
	form.Set("answer", answer)

	res, err := c.postForm(ctx, "save answer", "/save_answer", form)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return &StatusError{Op: "save answer", StatusCode: res.StatusCode, Status: res.Status}
	}
	return nil
}

// GetExamState fetches saved answers and the authoritative remaining time.
func (c *Client) GetExamState(ctx context.Context, attemptID string) (*models.ExamState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/get_exam_state/"+url.PathEscape(attemptID)), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get exam state: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 == 3 {
		return nil, ErrNotAuthenticated
	}
	if res.StatusCode/100 != 2 {
		return nil, &StatusError{Op: "get exam state", StatusCode: res.StatusCode, Status: res.Status}
	}

	var state models.ExamState
	if err := json.NewDecoder(res.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("get exam state: decode: %w", err)
	}
	return &state, nil
}

// SubmitExam posts the submission form. The server redirects on success, so
// 2xx and 3xx both count.
func (c *Client) SubmitExam(ctx context.Context, attemptID string) error {
	form := url.Values{}
	form.Set("attempt_id", attemptID)

	res, err := c.postForm(ctx, "submit exam", "/submit_exam", form)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 && res.StatusCode/100 != 3 {
		return &StatusError{Op: "submit exam", StatusCode: res.StatusCode, Status: res.Status}
	}
	return nil
}
