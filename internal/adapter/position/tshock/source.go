package tshock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cartographer/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const DefaultPort = 7878

var ErrBadPosition = errors.New("malformed player position")

// Source reads online player positions from a TShock REST API.
type Source struct {
	baseURL string
	token   string
	client  *client.Client
}

func New(baseURL, token string, timeout time.Duration) (*Source, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c, err := client.NewClient(
		client.WithDialTimeout(timeout),
		client.WithClientReadTimeout(timeout),
		client.WithWriteTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create tshock client: %w", err)
	}
	return &Source{baseURL: strings.TrimRight(baseURL, "/"), token: token, client: c}, nil
}

type restStatus struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type playerListResponse struct {
	restStatus
	Players []struct {
		Nickname string `json:"nickname"`
	} `json:"players"`
}

type playerReadResponse struct {
	restStatus
	Nickname string `json:"nickname"`
	Position string `json:"position"`
}

func (s *Source) Positions(ctx context.Context) ([]ports.PlayerPosition, error) {
	var list playerListResponse
	if err := s.get(ctx, "/v2/players/list", nil, &list); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	out := make([]ports.PlayerPosition, 0, len(list.Players))
	for _, p := range list.Players {
		var read playerReadResponse
		err := s.get(ctx, "/v3/players/read", url.Values{"player": {p.Nickname}}, &read)
		if errors.Is(err, ports.ErrNotFound) {
			// left between list and read
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read player %q: %w", p.Nickname, err)
		}
		x, y, err := parsePosition(read.Position)
		if err != nil {
			return nil, fmt.Errorf("read player %q: %w", p.Nickname, err)
		}
		name := read.Nickname
		if name == "" {
			name = p.Nickname
		}
		out = append(out, ports.PlayerPosition{Name: name, X: x, Y: y})
	}
	return out, nil
}

func (s *Source) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", s.token)
	status, body, err := s.client.Get(ctx, nil, s.baseURL+path+"?"+query.Encode())
	if err != nil {
		return err
	}
	switch status {
	case consts.StatusOK:
	case consts.StatusUnauthorized, consts.StatusForbidden:
		return ports.ErrUnauthorized
	case consts.StatusNotFound:
		return ports.ErrNotFound
	default:
		return fmt.Errorf("unexpected http status %d", status)
	}

	var st restStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	switch st.Status {
	case "200":
	case "401", "403":
		return fmt.Errorf("%w: %s", ports.ErrUnauthorized, st.Error)
	case "400", "404":
		return fmt.Errorf("%w: %s", ports.ErrNotFound, st.Error)
	default:
		return fmt.Errorf("tshock status %q: %s", st.Status, st.Error)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parsePosition reads TShock's "x,y" tile coordinates.
func parsePosition(raw string) (int, int, error) {
	xs, ys, ok := strings.Cut(raw, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadPosition, raw)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadPosition, raw)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadPosition, raw)
	}
	return x, y, nil
}
