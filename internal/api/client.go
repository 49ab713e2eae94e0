package api

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

	"interview-console/internal/metrics"
	"interview-console/internal/observability"

	"github.com/google/uuid"
)

const (
	statsPath      = "/api/interview-stats"
	interviewsPath = "/api/interviews"
	questionsPath  = "/api/questions"
)

// Client talks to the interview backend over JSON/HTTP
type Client struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithMetrics makes the client count every call in m
func (c *Client) WithMetrics(m *metrics.Metrics) *Client {
	c.metrics = m
	return c
}

// BaseURL returns the backend address the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetStats fetches the aggregate interview statistics
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, "get stats", http.MethodGet, statsPath, nil, &stats, false); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListInterviews fetches every interview session
func (c *Client) ListInterviews(ctx context.Context) ([]Interview, error) {
	var interviews []Interview
	if err := c.do(ctx, "list interviews", http.MethodGet, interviewsPath, nil, &interviews, false); err != nil {
		return nil, err
	}
	return interviews, nil
}

// CreateInterview starts a new interview session
func (c *Client) CreateInterview(ctx context.Context, in NewInterview) (*Interview, error) {
	var interview Interview
	if err := c.do(ctx, "create interview", http.MethodPost, interviewsPath, in, &interview, false); err != nil {
		return nil, err
	}
	return &interview, nil
}

// SubmitAnswer records the answer for one question and returns the whole
// updated session
func (c *Client) SubmitAnswer(ctx context.Context, interviewID, questionID, answer string) (*Interview, error) {
	path := fmt.Sprintf("%s/%s/questions/%s", interviewsPath, url.PathEscape(interviewID), url.PathEscape(questionID))

	var interview Interview
	if err := c.do(ctx, "submit answer", http.MethodPost, path, AnswerRequest{Answer: answer}, &interview, false); err != nil {
		return nil, err
	}
	return &interview, nil
}

// ListQuestions fetches the question bank
func (c *Client) ListQuestions(ctx context.Context) ([]Question, error) {
	var questions []Question
	if err := c.do(ctx, "list questions", http.MethodGet, questionsPath, nil, &questions, false); err != nil {
		return nil, err
	}
	return questions, nil
}

// CreateQuestion adds a question to the bank. A failed request carries the
// backend's error message when the body is JSON.
func (c *Client) CreateQuestion(ctx context.Context, in NewQuestion) (*Question, error) {
	var question Question
	if err := c.do(ctx, "create question", http.MethodPost, questionsPath, in, &question, true); err != nil {
		return nil, err
	}
	return &question, nil
}

// do performs one request. parseError enables reading {"message": ...} from
// a failed response.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any, parseError bool) (err error) {
	requestID := uuid.New().String()
	ctx = observability.WithRequestID(ctx, requestID)
	log := observability.LoggerFromContext(ctx).With("op", op, "method", method, "path", path)

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.IncrementAPICall(err == nil)
		}
		if err != nil {
			log.Debug("request failed", "error", err, "elapsed", time.Since(start))
			return
		}
		log.Debug("request done", "elapsed", time.Since(start))
	}()

	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("error marshaling request: %w", err)}
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("error creating request: %w", err)}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("error making request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Op: op, StatusCode: errorStatus(resp.StatusCode), Err: fmt.Errorf("error reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Op: op, StatusCode: resp.StatusCode}
		if parseError {
			var errBody ErrorBody
			if json.Unmarshal(respBody, &errBody) == nil {
				reqErr.Message = errBody.Message
			}
		}
		return reqErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("error unmarshaling response: %w", err)}
	}

	return nil
}

// errorStatus keeps the status only when it already signals failure
func errorStatus(code int) int {
	if code >= 200 && code <= 299 {
		return 0
	}
	return code
}
