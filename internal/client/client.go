// Package client is a Go client for the chessd HTTP API. Its game methods
// mirror the service so a terminal session can run against a remote server.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"chessrules/internal/core"
)

const (
	defaultTimeout = 10 * time.Second
	// pollTimeout outlasts the server's long-poll window.
	pollTimeout = 35 * time.Second
)

// APIError is a non-2xx response. It unwraps to the matching core sentinel
// so callers can test it with errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

var codeErrors = map[string]error{
	core.ErrCodeGameNotFound:      core.ErrGameNotFound,
	core.ErrCodeInvalidMove:       core.ErrIllegalMove,
	core.ErrCodeInvalidFEN:        core.ErrMalformedFEN,
	core.ErrCodeNothingToUndo:     core.ErrEmptyUndoStack,
	core.ErrCodeNothingToRedo:     core.ErrEmptyRedoStack,
	core.ErrCodeGameOver:          core.ErrGameOver,
	core.ErrCodeNotHumanTurn:      core.ErrNotHumanTurn,
	core.ErrCodeNotComputerTurn:   core.ErrNotComputerTurn,
	core.ErrCodeConflict:          core.ErrPositionChanged,
	core.ErrCodeEngineUnavailable: core.ErrEngineUnavailable,
}

func (e *APIError) Unwrap() error {
	return codeErrors[e.Code]
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			ReadTimeout:     pollTimeout,
			WriteTimeout:    defaultTimeout,
			MaxConnsPerHost: 16,
		},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func gamePath(id string, rest ...string) string {
	p := "/api/v1/games/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

func (c *Client) CreateGame(ctx context.Context, req core.CreateGameRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/v1/games", req, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID), nil, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WaitForUpdate long-polls until the game's move count differs from
// moveCount or the server's wait window ends, and returns the game.
func (c *Client) WaitForUpdate(ctx context.Context, gameID string, moveCount int) (*core.GameResponse, error) {
	path := gamePath(gameID) + "?wait=true&moveCount=" + strconv.Itoa(moveCount)
	var resp core.GameResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &resp, pollTimeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) MakeMove(ctx context.Context, gameID, uci string) (*core.GameResponse, error) {
	var resp core.GameResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "moves"), core.MoveRequest{Move: uci}, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) MakeComputerMove(ctx context.Context, gameID string) (*core.GameResponse, error) {
	return c.MakeMove(ctx, gameID, core.ComputerMove)
}

func (c *Client) Undo(ctx context.Context, gameID string, count int) (*core.GameResponse, error) {
	var resp core.GameResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "undo"), core.UndoRequest{Count: count}, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Redo(ctx context.Context, gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "redo"), nil, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LegalMoves(ctx context.Context, gameID, from string) (*core.LegalMovesResponse, error) {
	path := gamePath(gameID, "moves")
	if from != "" {
		path += "?from=" + url.QueryEscape(from)
	}
	var resp core.LegalMovesResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Board(ctx context.Context, gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID, "board"), nil, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Hint(ctx context.Context, gameID string) (*core.HintResponse, error) {
	var resp core.HintResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(gameID, "hint"), nil, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Select(ctx context.Context, gameID, square string) (*core.SelectionResponse, error) {
	var resp core.SelectionResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "select"), core.SelectRequest{Square: square}, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ClearSelection(ctx context.Context, gameID string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, gamePath(gameID, "select"), nil, nil, c.timeout)
}

func (c *Client) MoveSelected(ctx context.Context, gameID, to, promo string) (*core.GameResponse, error) {
	var resp core.GameResponse
	req := core.SelectedMoveRequest{To: to, Promotion: promo}
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "select", "move"), req, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetGame(ctx context.Context, gameID, fen string) (*core.GameResponse, error) {
	var resp core.GameResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(gameID, "reset"), core.ResetRequest{FEN: fen}, &resp, c.timeout); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, gamePath(gameID), nil, nil, c.timeout)
}

// Health returns the server's /health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/health", nil, &resp, c.timeout); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, timeout time.Duration) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	// fasthttp defaults a bodiless POST to a form content type, which the
	// server refuses, so POSTs always carry JSON.
	if in != nil || method == fasthttp.MethodPost {
		payload := []byte("{}")
		if in != nil {
			var err error
			if payload, err = json.Marshal(in); err != nil {
				return fmt.Errorf("marshal request: %w", err)
			}
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	if err := c.http.DoDeadline(req, resp, deadline(ctx, timeout)); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status, Message: fmt.Sprintf("%s %s: status %d", method, path, status)}
		var body core.ErrorResponse
		if json.Unmarshal(resp.Body(), &body) == nil && body.Code != "" {
			apiErr.Code = body.Code
			apiErr.Message = body.Error
			apiErr.Details = body.Details
		}
		return apiErr
	}

	if out != nil && status != fasthttp.StatusNoContent {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// deadline is the earlier of the context deadline and now+timeout.
func deadline(ctx context.Context, timeout time.Duration) time.Time {
	dl := time.Now().Add(timeout)
	if ctxDL, ok := ctx.Deadline(); ok && ctxDL.Before(dl) {
		return ctxDL
	}
	return dl
}
