package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bridge-syncer/internal/models"
)

// HubClient is the typed query surface of the canonical hub ledger.
// All reads are side-effect-free; SendTicket is the single update call
// for ticket creation requests originating outside the hub.
type HubClient interface {
	GetChainSize(ctx context.Context) (uint64, error)
	GetChainMetas(ctx context.Context, offset, limit uint64) ([]*models.Chain, error)
	GetTokenSize(ctx context.Context) (uint64, error)
	GetTokenMetas(ctx context.Context, offset, limit uint64) ([]*models.Token, error)
	SyncTicketSize(ctx context.Context) (uint64, error)
	SyncTickets(ctx context.Context, offset, limit uint64) ([]HubTicket, error)
	SendTicket(ctx context.Context, ticket *models.Ticket) error
}

// HubTicket is one (seq, ticket) pair from the hub's sequence-ordered
// ticket log.
type HubTicket struct {
	Seq    uint64     `json:"seq"`
	Ticket TicketMeta `json:"ticket"`
}

// TicketMeta is the hub's wire representation of a ticket.
type TicketMeta struct {
	TicketID   string  `json:"ticket_id"`
	TicketType string  `json:"ticket_type"`
	TicketTime int64   `json:"ticket_time"` // unix milliseconds
	SrcChain   string  `json:"src_chain"`
	DstChain   string  `json:"dst_chain"`
	Action     string  `json:"action"`
	Token      string  `json:"token"`
	Amount     string  `json:"amount"`
	Sender     *string `json:"sender,omitempty"`
	Receiver   string  `json:"receiver"`
	Memo       []byte  `json:"memo,omitempty"`
}

// ToModel converts the wire ticket into its stored form. A hub-synced
// ticket enters the reconciliation queue immediately; its destination
// side has not been confirmed yet.
func (t TicketMeta) ToModel(seq uint64) *models.Ticket {
	return &models.Ticket{
		TicketID:   t.TicketID,
		TicketSeq:  &seq,
		TicketType: models.TicketType(t.TicketType),
		TicketTime: time.UnixMilli(t.TicketTime).UTC(),
		SrcChain:   t.SrcChain,
		DstChain:   t.DstChain,
		Action:     models.TicketAction(t.Action),
		Token:      t.Token,
		Amount:     t.Amount,
		Sender:     t.Sender,
		Receiver:   t.Receiver,
		Memo:       t.Memo,
		Status:     models.TicketStatusWaitingForConfirmByDest,
	}
}

// hubEnvelope is the hub's success-or-error response wrapper. Exactly
// one of the two fields is set.
type hubEnvelope struct {
	Ok  json.RawMessage `json:"ok,omitempty"`
	Err *string         `json:"err,omitempty"`
}

// HTTPHubClient implements HubClient over the hub's HTTP JSON query
// endpoint.
type HTTPHubClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHubClient creates a hub client with the configured timeout
func NewHubClient(baseURL string, timeout time.Duration) *HTTPHubClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPHubClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
	}
}

// query performs a GET and decodes the Ok branch of the envelope into
// out. Envelope-level failures are transport errors; a populated Err
// branch is a remote application error and is surfaced as-is.
func (c *HTTPHubClient) query(ctx context.Context, method string, params url.Values, out interface{}) error {
	u := fmt.Sprintf("%s/%s", c.BaseURL, method)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &TransportError{Op: method, Err: err}
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return &TransportError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &TransportError{Op: method, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var envelope hubEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &TransportError{Op: method, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if envelope.Err != nil {
		return fmt.Errorf("hub %s: %s", method, *envelope.Err)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Ok, out); err != nil {
			return &TransportError{Op: method, Err: fmt.Errorf("decode result: %w", err)}
		}
	}
	return nil
}

func pageParams(offset, limit uint64) url.Values {
	params := url.Values{}
	params.Set("offset", fmt.Sprintf("%d", offset))
	params.Set("limit", fmt.Sprintf("%d", limit))
	return params
}

// GetChainSize returns the number of chains registered on the hub
func (c *HTTPHubClient) GetChainSize(ctx context.Context) (uint64, error) {
	var size uint64
	if err := c.query(ctx, "get_chain_size", nil, &size); err != nil {
		return 0, err
	}
	return size, nil
}

// GetChainMetas returns one page of chain metadata
func (c *HTTPHubClient) GetChainMetas(ctx context.Context, offset, limit uint64) ([]*models.Chain, error) {
	var chains []*models.Chain
	if err := c.query(ctx, "get_chain_metas", pageParams(offset, limit), &chains); err != nil {
		return nil, err
	}
	return chains, nil
}

// GetTokenSize returns the number of tokens registered on the hub
func (c *HTTPHubClient) GetTokenSize(ctx context.Context) (uint64, error) {
	var size uint64
	if err := c.query(ctx, "get_token_size", nil, &size); err != nil {
		return 0, err
	}
	return size, nil
}

// GetTokenMetas returns one page of token metadata
func (c *HTTPHubClient) GetTokenMetas(ctx context.Context, offset, limit uint64) ([]*models.Token, error) {
	var tokens []*models.Token
	if err := c.query(ctx, "get_token_metas", pageParams(offset, limit), &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// SyncTicketSize returns the length of the hub's ticket log
func (c *HTTPHubClient) SyncTicketSize(ctx context.Context) (uint64, error) {
	var size uint64
	if err := c.query(ctx, "sync_ticket_size", nil, &size); err != nil {
		return 0, err
	}
	return size, nil
}

// SyncTickets returns one page of (seq, ticket) pairs from the log
func (c *HTTPHubClient) SyncTickets(ctx context.Context, offset, limit uint64) ([]HubTicket, error) {
	var tickets []HubTicket
	if err := c.query(ctx, "sync_tickets", pageParams(offset, limit), &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// SendTicket submits a ticket creation request to the hub
func (c *HTTPHubClient) SendTicket(ctx context.Context, ticket *models.Ticket) error {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}

	u := fmt.Sprintf("%s/send_ticket", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: "send_ticket", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return &TransportError{Op: "send_ticket", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "send_ticket", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &TransportError{Op: "send_ticket", Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	var envelope hubEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &TransportError{Op: "send_ticket", Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if envelope.Err != nil {
		return fmt.Errorf("hub send_ticket: %s", *envelope.Err)
	}
	return nil
}
