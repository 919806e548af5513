package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bridge-syncer/internal/models"

	"github.com/stretchr/testify/require"
)

var testCtx = context.Background()

func hubServer(t *testing.T, handler http.HandlerFunc) *HTTPHubClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHubClient(server.URL, time.Second)
}

func TestSyncTicketsDecodesEnvelope(t *testing.T) {
	client := hubServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sync_tickets", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("offset"))
		require.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"ok":[{"seq":5,"ticket":{"ticket_id":"ticket-5","ticket_type":"Normal","ticket_time":1746100000000,"src_chain":"Bitcoin","dst_chain":"eICP","action":"Transfer","token":"Bitcoin-runes-HOPE","amount":"100000","receiver":"receiver"}}]}`))
	})

	tickets, err := client.SyncTickets(testCtx, 5, 50)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, uint64(5), tickets[0].Seq)

	ticket := tickets[0].Ticket.ToModel(tickets[0].Seq)
	require.Equal(t, "ticket-5", ticket.TicketID)
	require.Equal(t, uint64(5), *ticket.TicketSeq)
	require.Equal(t, models.TicketStatusWaitingForConfirmByDest, ticket.Status)
	require.Equal(t, time.UnixMilli(1746100000000).UTC(), ticket.TicketTime)
}

func TestSizeQueriesDecodePlainNumber(t *testing.T) {
	client := hubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":123}`))
	})

	size, err := client.SyncTicketSize(testCtx)
	require.NoError(t, err)
	require.Equal(t, uint64(123), size)
}

func TestErrBranchIsRemoteError(t *testing.T) {
	client := hubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"err":"CustomNotFound"}`))
	})

	_, err := client.GetChainSize(testCtx)
	require.Error(t, err)
	require.False(t, IsTransport(err))
	require.Contains(t, err.Error(), "CustomNotFound")
}

func TestNon200IsTransport(t *testing.T) {
	client := hubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.SyncTickets(testCtx, 0, 50)
	require.Error(t, err)
	require.True(t, IsTransport(err))
}

func TestUndecodableEnvelopeIsTransport(t *testing.T) {
	client := hubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>upstream timeout</html>`))
	})

	_, err := client.GetTokenMetas(testCtx, 0, 50)
	require.Error(t, err)
	require.True(t, IsTransport(err))
}

func TestUnreachableHubIsTransport(t *testing.T) {
	client := NewHubClient("http://127.0.0.1:1", 100*time.Millisecond)

	_, err := client.GetChainSize(testCtx)
	require.Error(t, err)
	require.True(t, IsTransport(err))
}

func TestSendTicketPostsAndChecksEnvelope(t *testing.T) {
	var gotMethod, gotPath string
	client := hubServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{"ok":null}`))
	})

	err := client.SendTicket(testCtx, &models.Ticket{
		TicketID:   "ticket-1",
		TicketType: models.TicketTypeResubmit,
		SrcChain:   "Bitcoin",
		DstChain:   "eICP",
		Action:     models.ActionTransfer,
		Token:      "Bitcoin-runes-HOPE",
		Amount:     "100000",
		Receiver:   "receiver",
	})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/send_ticket", gotPath)
}

func TestSendTicketErrBranch(t *testing.T) {
	client := hubServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"err":"TicketAlreadyExists"}`))
	})

	err := client.SendTicket(testCtx, &models.Ticket{TicketID: "ticket-1"})
	require.Error(t, err)
	require.False(t, IsTransport(err))
}
