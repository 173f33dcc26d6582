package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, totalPages int, rowsPerPage int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)

		rows := ""
		for i := 0; i < rowsPerPage; i++ {
			if rows != "" {
				rows += ","
			}
			rows += fmt.Sprintf(`{"timestamp":"2024-01-%02dT10:00:00Z","balance_total":"%d","amount":"%d"}`,
				page, page*1000+i, page*10+i)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":[%s],"pagination":{"total_pages":%d}}`, rows, totalPages)
	}))
}

func TestTaostatsClient_BalanceHistory_Paginates(t *testing.T) {
	srv := newTestServer(t, 3, 2)
	defer srv.Close()

	c := NewTaostatsClient(srv.URL, "test-key", 0, zap.NewNop())

	records, err := c.BalanceHistory(context.Background(), "5FWallet")
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, "2024-01-01T10:00:00Z", records[0].Timestamp)
	assert.Equal(t, "3001", records[5].BalanceTotal)
}

func TestTaostatsClient_EmptyCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[],"pagination":{"total_pages":0}}`)
	}))
	defer srv.Close()

	c := NewTaostatsClient(srv.URL, "test-key", 0, zap.NewNop())

	records, err := c.BalanceHistory(context.Background(), "5FWallet")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestTaostatsClient_Transfers_Direction(t *testing.T) {
	var sawFrom, sawTo bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") != "" {
			sawFrom = true
		}
		if r.URL.Query().Get("to") != "" {
			sawTo = true
		}
		fmt.Fprint(w, `{"data":[{"timestamp":"2024-01-01T10:00:00Z","amount":"5","to":{"ss58":"5Dest"}}],"pagination":{"total_pages":1}}`)
	}))
	defer srv.Close()

	c := NewTaostatsClient(srv.URL, "test-key", 0, zap.NewNop())

	out, err := c.Transfers(context.Background(), "5FWallet", TransferOutbound)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "5Dest", out[0].To.Address)
	assert.True(t, sawFrom)

	_, err = c.Transfers(context.Background(), "5FWallet", TransferInbound)
	require.NoError(t, err)
	assert.True(t, sawTo)
}

func TestTaostatsClient_UnexpectedStructure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"invalid api key"}`)
	}))
	defer srv.Close()

	c := NewTaostatsClient(srv.URL, "bad-key", 0, zap.NewNop())

	_, err := c.BalanceHistory(context.Background(), "5FWallet")
	require.Error(t, err)
}
