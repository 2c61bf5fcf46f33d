// Package client talks to the quiz API over HTTP-JSON. It implements
// session.Provider so the session engine can run against a live server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"personquiz/internal/domain"
)

// Client is an HTTP implementation of the session's backend interface.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the API at baseURL (no trailing slash needed).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func (c *Client) FetchQuestions(ctx context.Context, lang domain.Lang) ([]domain.Question, error) {
	var payload struct {
		Questions []domain.Question `json:"questions"`
	}
	if err := c.get(ctx, "/api/questions", lang, &payload); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

func (c *Client) FetchChallenge(ctx context.Context, lang domain.Lang) ([]domain.ChallengeItem, error) {
	var payload struct {
		Items []domain.ChallengeItem `json:"items"`
	}
	if err := c.get(ctx, "/api/challenge", lang, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func (c *Client) CheckAnswer(ctx context.Context, lang domain.Lang, id int, selected domain.OptionKey) (domain.CheckResult, error) {
	body := struct {
		ID       int              `json:"id"`
		Selected domain.OptionKey `json:"selected"`
	}{ID: id, Selected: selected}

	var res domain.CheckResult
	if err := c.post(ctx, "/api/check", lang, body, &res); err != nil {
		return domain.CheckResult{}, err
	}
	return res, nil
}

func (c *Client) SubmitAnswers(ctx context.Context, lang domain.Lang, name string, answers []domain.Answer, extra []int) (domain.SubmitResult, error) {
	if answers == nil {
		answers = []domain.Answer{}
	}
	if extra == nil {
		extra = []int{}
	}
	body := struct {
		Name    string          `json:"name"`
		Answers []domain.Answer `json:"answers"`
		Extra   []int           `json:"extra"`
	}{Name: name, Answers: answers, Extra: extra}

	var res domain.SubmitResult
	if err := c.post(ctx, "/api/submit", lang, body, &res); err != nil {
		return domain.SubmitResult{}, err
	}
	return res, nil
}

// FetchLeaderboard reads the current standing outside any session.
func (c *Client) FetchLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardItem, error) {
	var payload struct {
		Leaderboard []domain.LeaderboardItem `json:"leaderboard"`
	}
	path := "/api/leaderboard"
	if limit > 0 {
		path += "?limit=" + url.QueryEscape(fmt.Sprint(limit))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if err := c.do(req, &payload); err != nil {
		return nil, err
	}
	return payload.Leaderboard, nil
}

func (c *Client) get(ctx context.Context, path string, lang domain.Lang, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, lang), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, lang domain.Lang, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, lang), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) endpoint(path string, lang domain.Lang) string {
	return c.baseURL + path + "?lang=" + url.QueryEscape(string(lang))
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
