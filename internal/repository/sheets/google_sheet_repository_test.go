package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/mamadbah2/warehouse/internal/config"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *GoogleSheetRepository {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	repo, err := NewGoogleSheetRepository(
		context.Background(),
		config.SheetsConfig{SpreadsheetID: "sheet-123"},
		nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return repo
}

func TestAppendRows(t *testing.T) {
	var (
		gotPath  string
		gotQuery string
		gotBody  struct {
			Values [][]interface{} `json:"values"`
		}
	)

	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-123","updates":{"updatedRows":2}}`))
	})

	rows := [][]interface{}{
		{"2024-03-01", 4, 12.5},
		{"2024-03-02", 5, 13.75},
	}
	require.NoError(t, repo.AppendRows(context.Background(), "Snapshots!A:H", rows))

	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-123/values/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Contains(t, gotQuery, "valueInputOption=USER_ENTERED")
	assert.Contains(t, gotQuery, "insertDataOption=INSERT_ROWS")
	require.Len(t, gotBody.Values, 2)
	assert.Equal(t, "2024-03-02", gotBody.Values[1][0])
}

func TestAppendRowsError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"caller does not have permission"}}`))
	})

	err := repo.AppendRows(context.Background(), "Snapshots!A:H", [][]interface{}{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append rows into range Snapshots!A:H")
}

func TestAppendRowsValidation(t *testing.T) {
	calls := 0
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	assert.Error(t, repo.AppendRows(context.Background(), "", [][]interface{}{{"x"}}))
	assert.NoError(t, repo.AppendRows(context.Background(), "Snapshots!A:H", nil))
	assert.Zero(t, calls)
}

func TestNewGoogleSheetRepositoryRequiresSpreadsheet(t *testing.T) {
	_, err := NewGoogleSheetRepository(context.Background(), config.SheetsConfig{}, nil, option.WithoutAuthentication())
	assert.Error(t, err)
}
