package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pokemon-arena/internal/mapgen"
)

// lobbyInfo is the part of the relay's lobby response the client needs.
type lobbyInfo struct {
	ID    string        `json:"id"`
	Map   mapgen.Record `json:"map"`
	Codec string        `json:"codec"`
	Owner string        `json:"owner"`
}

// httpBase turns ws://host into http://host.
func httpBase(relayURL string) (string, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// wsBase turns http://host into ws://host.
func wsBase(relayURL string) string {
	switch {
	case strings.HasPrefix(relayURL, "http://"):
		return "ws://" + strings.TrimPrefix(relayURL, "http://")
	case strings.HasPrefix(relayURL, "https://"):
		return "wss://" + strings.TrimPrefix(relayURL, "https://")
	}
	return strings.TrimRight(relayURL, "/")
}

// joinLobby fetches the lobby record, creating the lobby with the given
// map type when it does not exist yet.
func joinLobby(ctx context.Context, client *http.Client, relayURL, lobbyID, mapType string) (lobbyInfo, error) {
	base, err := httpBase(relayURL)
	if err != nil {
		return lobbyInfo{}, err
	}
	endpoint := base + "/api/lobbies/" + url.PathEscape(lobbyID)

	info, status, err := getLobby(ctx, client, endpoint)
	if err != nil {
		return lobbyInfo{}, err
	}
	if status == http.StatusOK {
		return info, nil
	}
	if status != http.StatusNotFound {
		return lobbyInfo{}, fmt.Errorf("get lobby: unexpected status %d", status)
	}

	body, _ := json.Marshal(map[string]string{"id": lobbyID, "type": mapType})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/lobbies/", bytes.NewReader(body))
	if err != nil {
		return lobbyInfo{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return lobbyInfo{}, fmt.Errorf("create lobby: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return lobbyInfo{}, fmt.Errorf("decode lobby: %w", err)
		}
		return info, nil
	case http.StatusConflict:
		// Someone else created it first.
		info, status, err = getLobby(ctx, client, endpoint)
		if err == nil && status != http.StatusOK {
			err = fmt.Errorf("get lobby: unexpected status %d", status)
		}
		return info, err
	}
	return lobbyInfo{}, fmt.Errorf("create lobby: unexpected status %d", resp.StatusCode)
}

func getLobby(ctx context.Context, client *http.Client, endpoint string) (lobbyInfo, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return lobbyInfo{}, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return lobbyInfo{}, 0, fmt.Errorf("get lobby: %w", err)
	}
	defer resp.Body.Close()

	var info lobbyInfo
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return lobbyInfo{}, 0, fmt.Errorf("decode lobby: %w", err)
		}
	}
	return info, resp.StatusCode, nil
}
