package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wallet_enricher/internal/domain/entity"
)

func newTestDuneClient(baseURL string) *DuneClient {
	return NewDuneClient(DuneConfig{
		BaseURL:       baseURL,
		APIKey:        "dune-key",
		Timeout:       5 * time.Second,
		UploadTimeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestDuneClient_CreateTable(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/table/create", r.URL.Path)
		assert.Equal(t, "dune-key", r.Header.Get("X-Dune-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"namespace":"spark","table_name":"labels","full_name":"dune.spark.labels","example_query":"select * from dune.spark.labels","already_existed":true,"message":"Table already existed"}`)
	}))
	defer srv.Close()

	res, err := newTestDuneClient(srv.URL).CreateTable(context.Background(), entity.CreateTableRequest{
		Namespace:   "spark",
		TableName:   "labels",
		Schema:      []entity.Column{{Name: "address", Type: "varbinary"}},
		Description: "labels",
	})
	require.NoError(t, err)
	assert.True(t, res.AlreadyExisted)
	assert.Equal(t, "dune.spark.labels", res.FullName)
	assert.Equal(t, "spark", gotBody["namespace"])
	assert.Equal(t, "labels", gotBody["table_name"])
	assert.Equal(t, false, gotBody["is_private"])
	schema, ok := gotBody["schema"].([]any)
	require.True(t, ok)
	assert.Len(t, schema, 1)
}

func TestDuneClient_CreateTableError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid schema"}`)
	}))
	defer srv.Close()

	_, err := newTestDuneClient(srv.URL).CreateTable(context.Background(), entity.CreateTableRequest{Namespace: "a", TableName: "b"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid schema", apiErr.Body)
}

func TestDuneClient_ClearTable(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Path == "/table/spark/missing/clear" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"message":"Table spark.labels successfully cleared"}`)
	}))
	defer srv.Close()

	c := newTestDuneClient(srv.URL)
	require.NoError(t, c.ClearTable(context.Background(), "spark", "labels"))
	assert.Equal(t, "/table/spark/labels/clear", gotPath)

	err := c.ClearTable(context.Background(), "spark", "missing")
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestDuneClient_DeleteTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		switch r.URL.Path {
		case "/table/spark/labels":
			fmt.Fprint(w, `{"message":"Table spark.labels successfully deleted"}`)
		case "/table/spark/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := newTestDuneClient(srv.URL)
	require.NoError(t, c.DeleteTable(context.Background(), "spark", "labels"))

	err := c.DeleteTable(context.Background(), "spark", "missing")
	assert.ErrorIs(t, err, ErrTableNotFound)

	err = c.DeleteTable(context.Background(), "spark", "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTableNotFound))
}

func TestDuneClient_InsertCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "labels.csv")
	content := "no,address\n1,0xA\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o600))

	var gotBody, gotType, gotEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/table/spark/labels/insert", r.URL.Path)
		gotType = r.Header.Get("Content-Type")
		gotEncoding = r.Header.Get("Accept-Encoding")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		fmt.Fprint(w, `{"rows_written": 1, "bytes_written": 18}`)
	}))
	defer srv.Close()

	res, err := newTestDuneClient(srv.URL).InsertCSV(context.Background(), "spark", "labels", csvPath)
	require.NoError(t, err)
	assert.Equal(t, entity.InsertResult{RowsWritten: 1, BytesWritten: 18}, res)
	assert.Equal(t, content, gotBody)
	assert.Equal(t, "text/csv", gotType)
	assert.Equal(t, "identity", gotEncoding)
}

func TestDuneClient_InsertCSVMissingFile(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newTestDuneClient(srv.URL).InsertCSV(context.Background(), "spark", "labels", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, called)
}

func TestDuneClient_QueryLatestRowsFollowsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query/6074774/results", r.URL.Path)
		if r.URL.Query().Get("offset") == "" {
			fmt.Fprint(w, `{"query_id": 6074774, "state": "QUERY_STATE_COMPLETED",
				"result": {"rows": [{"user_addr": "0xA"}, {"other": 1}]},
				"next_uri": "/query/6074774/results?offset=2", "next_offset": 2}`)
			return
		}
		fmt.Fprint(w, `{"query_id": 6074774, "result": {"rows": [{"user_addr": "0xB"}]}}`)
	}))
	defer srv.Close()

	rows, err := newTestDuneClient(srv.URL).QueryLatestRows(context.Background(), 6074774)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "0xA", rows[0]["user_addr"])
	assert.Equal(t, "0xB", rows[2]["user_addr"])
}

func TestDuneClient_QueryLatestRowsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid API Key"}`)
	}))
	defer srv.Close()

	_, err := newTestDuneClient(srv.URL).QueryLatestRows(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
