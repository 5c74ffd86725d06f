package reconciler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/carte-app/api/internal/event"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// Client follows a relay channel and keeps a Snapshot current.
type Client struct {
	conn *websocket.Conn

	mu       sync.Mutex
	snap     Snapshot
	onChange func(Snapshot, event.Message)

	writeMu sync.Mutex
	log     *logrus.Entry
}

// Dial connects to the relay at url (ws:// or wss://) and returns a client
// seeded with seed. Call Run to start applying relayed events.
func Dial(ctx context.Context, url string, seed Snapshot) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	return &Client{
		conn: conn,
		snap: seed,
		log:  logrus.WithFields(logrus.Fields{"component": "reconciler", "menu_id": seed.MenuID}),
	}, nil
}

// OnChange registers fn to be called after every event that was applied.
// fn runs on the Run goroutine.
func (c *Client) OnChange(fn func(Snapshot, event.Message)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Snapshot returns the current state.
func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Send emits msg to the relay.
func (c *Client) Send(msg event.Message) error {
	data, err := event.Encode(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Run reads frames until ctx is done or the connection fails. Frames that
// do not decode are skipped.
func (c *Client) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read relay: %w", err)
		}

		msg, err := event.Decode(data)
		if err != nil {
			c.log.WithError(err).Debug("skipping frame")
			continue
		}
		c.apply(msg)
	}
}

func (c *Client) apply(msg event.Message) {
	c.mu.Lock()
	c.snap = Apply(c.snap, msg)
	snap, fn := c.snap, c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(snap, msg)
	}
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// FetchSnapshot loads the baseline for menuID from the HTTP API. token is
// the menu admin token.
func FetchSnapshot(ctx context.Context, hc *http.Client, baseURL string, menuID int64, token string) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/menus/%d/board", baseURL, menuID), nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := hc.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch board: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return Snapshot{}, fmt.Errorf("fetch board: %s: %s", resp.Status, body.Error)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode board: %w", err)
	}
	if snap.MenuID == 0 {
		return Snapshot{}, errors.New("decode board: missing menuId")
	}
	return snap, nil
}

// Login exchanges a menu admin password for the token FetchSnapshot needs.
func Login(ctx context.Context, hc *http.Client, baseURL string, menuID int64, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/menus/%d/login", baseURL, menuID), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Token string `json:"token"`
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login: %s: %s", resp.Status, out.Error)
	}
	if out.Token == "" {
		return "", errors.New("login: empty token")
	}
	return out.Token, nil
}
