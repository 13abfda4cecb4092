package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"chat-client/internal/models"
	"chat-client/pkg/logger"
)

// Client is the thin REST collaborator around the chat backend. It covers
// exactly the calls the realtime engine's host needs: room list, paginated
// history, room creation, mark-all-as-read and member search. Everything
// else about the backend stays out of scope.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "api"),
	}
}

// Error is a non-2xx response decoded from the server's envelope.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// apiEnvelope is the server's uniform response wrapper.
type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// CreateRoomRequest creates a one-on-one or group room.
type CreateRoomRequest struct {
	MemberIDs []int64         `json:"memberIds"`
	Name      string          `json:"name,omitempty"`
	Type      models.RoomType `json:"type"`
}

type markAllReadRequest struct {
	LastMessageID int64 `json:"lastMessageId"`
}

// ListRooms fetches all chat rooms for the current user, ordered by the
// server (most recent activity first).
func (c *Client) ListRooms(ctx context.Context) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	if err := c.do(ctx, http.MethodGet, "/chatrooms", nil, nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListMessages fetches one page of a room's history. beforeID of 0 means
// the newest page; limit of 0 uses the server default.
func (c *Client) ListMessages(ctx context.Context, roomID, beforeID int64, limit int) ([]models.Message, error) {
	q := url.Values{}
	if beforeID > 0 {
		q.Set("before", strconv.FormatInt(beforeID, 10))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var history []models.Message
	path := fmt.Sprintf("/chatrooms/%d/messages", roomID)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// CreateRoom creates a room with the given members.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := c.do(ctx, http.MethodPost, "/chatrooms", nil, req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// MarkAllAsRead acknowledges everything in a room up to lastMessageID.
func (c *Client) MarkAllAsRead(ctx context.Context, roomID, lastMessageID int64) error {
	path := fmt.Sprintf("/chatrooms/%d/read", roomID)
	return c.do(ctx, http.MethodPost, path, nil, markAllReadRequest{LastMessageID: lastMessageID}, nil)
}

// SearchMembers queries the member directory for invite/compose flows. An
// empty query lists everyone the caller may see.
func (c *Client) SearchMembers(ctx context.Context, query string) ([]models.Member, error) {
	q := url.Values{}
	if query != "" {
		q.Set("query", query)
	}
	var members []models.Member
	if err := c.do(ctx, http.MethodGet, "/members", q, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope apiEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("decode response for %s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := envelope.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.log.Warn("request failed", "method", method, "path", path, "status", resp.StatusCode)
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}
