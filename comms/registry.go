package comms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"threshold.network/frost-client/frosterr"
)

// RegistryClient is a thin RPC client over the relay's session registry
// (spec §4.7): create/join/list/close sessions, identified by members'
// comm pubkeys. It also carries the relay's message queue operations,
// since both hit the same server and share its retry policy.
//
// The relay server itself is an external collaborator (spec §1); this
// client only implements the request/response shapes a relay is expected
// to expose, over plain JSON/HTTP since no message-queue or RPC client
// library appears anywhere in the retrieved corpus to ground a richer
// choice on (see DESIGN.md).
type RegistryClient struct {
	baseURL string
	http    *http.Client
}

// NewRegistryClient creates a client against the relay at baseURL.
func NewRegistryClient(baseURL string) *RegistryClient {
	return &RegistryClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type createSessionRequest struct {
	MemberPubKeys []string `json:"member_pubkeys"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

// CreateSession registers a new session with the given members, returning
// its session ID.
func (c *RegistryClient) CreateSession(ctx context.Context, memberPubKeys []string) (string, error) {
	var resp createSessionResponse
	if err := c.doWithRetry(ctx, http.MethodPost, "/sessions",
		createSessionRequest{MemberPubKeys: memberPubKeys}, &resp); err != nil {
		return "", err
	}
	return resp.SessionID, nil
}

type listSessionsResponse struct {
	SessionIDs []string `json:"session_ids"`
}

// ListSessions returns every session ID this caller is a member of.
func (c *RegistryClient) ListSessions(ctx context.Context) ([]string, error) {
	var resp listSessionsResponse
	if err := c.doWithRetry(ctx, http.MethodGet, "/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.SessionIDs, nil
}

// JoinSession registers this caller as a participant in sessionID.
func (c *RegistryClient) JoinSession(ctx context.Context, sessionID string) error {
	return c.doWithRetry(ctx, http.MethodPost, "/sessions/"+sessionID+"/join", nil, nil)
}

// CloseSession tears down sessionID on the relay.
func (c *RegistryClient) CloseSession(ctx context.Context, sessionID string) error {
	return c.doWithRetry(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, nil)
}

// CloseAllSessions tears down every session this caller is a member of
// (spec §6's "sessions --close-all").
func (c *RegistryClient) CloseAllSessions(ctx context.Context) error {
	return c.doWithRetry(ctx, http.MethodDelete, "/sessions", nil, nil)
}

type sendMessageRequest struct {
	SenderPubKey    string `json:"sender_pubkey"`
	RecipientPubKey string `json:"recipient_pubkey"`
	Ciphertext      string `json:"ciphertext"`
	SenderSig       string `json:"sender_sig"`
}

// SendMessage delivers an already-sealed envelope's fields to the relay
// for sessionID, addressed to recipientPubKeyHex.
func (c *RegistryClient) SendMessage(
	ctx context.Context,
	sessionID, senderPubKeyHex, recipientPubKeyHex, ciphertextHex, senderSigHex string,
) error {
	req := sendMessageRequest{
		SenderPubKey:    senderPubKeyHex,
		RecipientPubKey: recipientPubKeyHex,
		Ciphertext:      ciphertextHex,
		SenderSig:       senderSigHex,
	}
	return c.doWithRetry(ctx, http.MethodPost, "/sessions/"+sessionID+"/messages", req, nil)
}

type receiveMessageResponse struct {
	SenderPubKey    string `json:"sender_pubkey"`
	RecipientPubKey string `json:"recipient_pubkey"`
	Ciphertext      string `json:"ciphertext"`
	SenderSig       string `json:"sender_sig"`
}

// ReceiveMessage polls the relay for the next queued message addressed to
// recipientPubKeyHex in sessionID, blocking (subject to ctx) until one
// arrives or the session disappears.
func (c *RegistryClient) ReceiveMessage(
	ctx context.Context,
	sessionID, recipientPubKeyHex string,
) (senderPubKeyHex, ciphertextHex, senderSigHex string, err error) {
	var resp receiveMessageResponse
	path := fmt.Sprintf("/sessions/%s/messages?recipient=%s", sessionID, recipientPubKeyHex)
	if err := c.doWithRetry(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", "", "", err
	}
	return resp.SenderPubKey, resp.Ciphertext, resp.SenderSig, nil
}

// doWithRetry performs one request, retrying a transient connection
// failure at most once with an exponential backoff capped at ~5s (spec §7:
// "CommsError on a transient connection may be retried at most once per
// round"). A 404 on a session-scoped path is translated to
// frosterr.SessionLost rather than retried, since retrying cannot help a
// session the relay has already forgotten.
func (c *RegistryClient) doWithRetry(ctx context.Context, method, path string, body, out any) error {
	err := c.do(ctx, method, path, body, out)
	if err == nil {
		return nil
	}
	if isSessionLost(err) {
		return err
	}

	select {
	case <-time.After(5 * time.Second):
	case <-ctx.Done():
		return frosterr.Comms(path, ctx.Err())
	}

	return c.do(ctx, method, path, body, out)
}

func (c *RegistryClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return frosterr.Comms(path, fmt.Errorf("encoding request: %w", err))
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return frosterr.Comms(path, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return frosterr.Comms(path, fmt.Errorf("relay unreachable: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &frosterr.Error{Kind: frosterr.KindComms, Context: path, Cause: frosterr.SessionLost}
	}
	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return frosterr.Comms(path, fmt.Errorf("relay returned status [%d]: %s", resp.StatusCode, respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return frosterr.Comms(path, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func isSessionLost(err error) bool {
	fe, ok := err.(*frosterr.Error)
	return ok && fe.Cause == frosterr.SessionLost
}
