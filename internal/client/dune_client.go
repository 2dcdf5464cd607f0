package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"wallet_enricher/internal/domain/entity"
	"wallet_enricher/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrTableNotFound is returned when the table addressed by a call does not exist.
var ErrTableNotFound = errors.New("dune table not found")

const duneAPIKeyHeader = "X-DUNE-API-KEY"

// maxResultPages bounds next_uri pagination.
const maxResultPages = 1000

// APIError is a non-success response from the Dune API.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dune %s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// DuneConfig configures the Dune table client.
type DuneConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	UploadTimeout time.Duration
}

// DuneClient manages uploaded tables and reads saved query results.
type DuneClient struct {
	client *fasthttp.Client
	cfg    DuneConfig
	logger *zap.Logger
}

// NewDuneClient creates a new DuneClient.
func NewDuneClient(cfg DuneConfig, logger *zap.Logger) *DuneClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &DuneClient{
		client: &fasthttp.Client{Name: userAgent},
		cfg:    cfg,
		logger: logger.Named("DuneClient"),
	}
}

// CreateTable creates a table. An existing table is not an error; the result reports AlreadyExisted.
func (c *DuneClient) CreateTable(ctx context.Context, reqBody entity.CreateTableRequest) (entity.CreateTableResult, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return entity.CreateTableResult{}, fmt.Errorf("failed to marshal create table request: %w", err)
	}

	status, body, err := c.do(ctx, "create", fasthttp.MethodPost, c.cfg.BaseURL+"/table/create", func(req *fasthttp.Request) {
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}, c.cfg.Timeout)
	if err != nil {
		return entity.CreateTableResult{}, err
	}
	if status != fasthttp.StatusOK && status != fasthttp.StatusCreated {
		return entity.CreateTableResult{}, c.apiError("create", status, body)
	}

	var result entity.CreateTableResult
	if err := json.Unmarshal(body, &result); err != nil {
		return entity.CreateTableResult{}, fmt.Errorf("failed to unmarshal create table response: %w", err)
	}

	fields := []zap.Field{
		zap.String("table", result.FullName),
		zap.String("exampleQuery", result.ExampleQuery),
	}
	if result.AlreadyExisted {
		c.logger.Info("Table already exists", fields...)
	} else {
		c.logger.Info("Table created successfully", fields...)
	}
	return result, nil
}

// ClearTable removes all rows from a table, keeping its schema.
func (c *DuneClient) ClearTable(ctx context.Context, namespace, table string) error {
	c.logger.Info("Clearing table", zap.String("table", namespace+"."+table))

	status, body, err := c.do(ctx, "clear", fasthttp.MethodPost, c.tableURL(namespace, table)+"/clear", nil, c.cfg.Timeout)
	if err != nil {
		return err
	}
	if status == fasthttp.StatusNotFound {
		return fmt.Errorf("clear %s.%s: %w", namespace, table, ErrTableNotFound)
	}
	if status != fasthttp.StatusOK {
		return c.apiError("clear", status, body)
	}

	c.logger.Info("Table cleared successfully", zap.String("table", namespace+"."+table))
	return nil
}

// DeleteTable drops a table. A missing table yields ErrTableNotFound.
func (c *DuneClient) DeleteTable(ctx context.Context, namespace, table string) error {
	c.logger.Info("Deleting table", zap.String("table", namespace+"."+table))

	status, body, err := c.do(ctx, "delete", fasthttp.MethodDelete, c.tableURL(namespace, table), nil, c.cfg.Timeout)
	if err != nil {
		return err
	}
	switch status {
	case fasthttp.StatusOK, fasthttp.StatusNoContent:
	case fasthttp.StatusNotFound:
		c.logger.Warn("Table does not exist", zap.String("table", namespace+"."+table))
		return fmt.Errorf("delete %s.%s: %w", namespace, table, ErrTableNotFound)
	default:
		return c.apiError("delete", status, body)
	}

	var msg tableMessageResponse
	if len(body) > 0 {
		_ = json.Unmarshal(body, &msg)
	}
	c.logger.Info("Table deleted successfully", zap.String("table", namespace+"."+table), zap.String("message", msg.Message))
	return nil
}

// InsertCSV streams a CSV file into a table.
func (c *DuneClient) InsertCSV(ctx context.Context, namespace, table, csvPath string) (entity.InsertResult, error) {
	info, err := os.Stat(csvPath)
	if err != nil {
		return entity.InsertResult{}, fmt.Errorf("csv file %s: %w", csvPath, err)
	}
	file, err := os.Open(csvPath)
	if err != nil {
		return entity.InsertResult{}, fmt.Errorf("failed to open csv file %s: %w", csvPath, err)
	}
	// fasthttp closes the body stream once the request is written.

	uri := c.tableURL(namespace, table) + "/insert"
	c.logger.Info("Uploading CSV",
		zap.String("url", uri),
		zap.String("file", csvPath),
		zap.String("size", fmt.Sprintf("%.2f MB", float64(info.Size())/(1024*1024))))

	status, body, err := c.do(ctx, "insert", fasthttp.MethodPost, uri, func(req *fasthttp.Request) {
		req.Header.SetContentType("text/csv")
		req.Header.Set(fasthttp.HeaderAccept, "application/json")
		req.Header.Set(fasthttp.HeaderAcceptEncoding, "identity")
		req.SetBodyStream(file, int(info.Size()))
	}, c.cfg.UploadTimeout)
	if err != nil {
		_ = file.Close()
		return entity.InsertResult{}, err
	}
	if status == fasthttp.StatusNotFound {
		return entity.InsertResult{}, fmt.Errorf("insert into %s.%s: %w", namespace, table, ErrTableNotFound)
	}
	if status != fasthttp.StatusOK {
		return entity.InsertResult{}, c.apiError("insert", status, body)
	}

	var result entity.InsertResult
	if err := json.Unmarshal(body, &result); err != nil {
		return entity.InsertResult{}, fmt.Errorf("failed to unmarshal insert response: %w", err)
	}
	c.logger.Info("Upload successful",
		zap.Int64("rowsWritten", result.RowsWritten),
		zap.Int64("bytesWritten", result.BytesWritten))
	return result, nil
}

// QueryLatestRows returns every row of the latest stored result of a saved query, following pagination.
func (c *DuneClient) QueryLatestRows(ctx context.Context, queryID int64) ([]map[string]any, error) {
	next := fmt.Sprintf("%s/query/%d/results", c.cfg.BaseURL, queryID)

	var rows []map[string]any
	for page := 0; next != ""; page++ {
		if page >= maxResultPages {
			return nil, fmt.Errorf("query %d: more than %d result pages", queryID, maxResultPages)
		}

		status, body, err := c.do(ctx, "results", fasthttp.MethodGet, next, nil, c.cfg.Timeout)
		if err != nil {
			return nil, err
		}
		if status != fasthttp.StatusOK {
			return nil, c.apiError("results", status, body)
		}

		var resp queryResultsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal results of query %d: %w", queryID, err)
		}
		rows = append(rows, resp.Result.Rows...)

		next, err = c.resolveNext(resp.NextURI)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Debug("Fetched query results", zap.Int64("queryID", queryID), zap.Int("rows", len(rows)))
	return rows, nil
}

// resolveNext makes a relative next_uri absolute against the configured base URL.
func (c *DuneClient) resolveNext(nextURI string) (string, error) {
	if nextURI == "" {
		return "", nil
	}
	ref, err := url.Parse(nextURI)
	if err != nil {
		return "", fmt.Errorf("invalid next_uri %q: %w", nextURI, err)
	}
	if ref.IsAbs() {
		return nextURI, nil
	}
	base, err := url.Parse(c.cfg.BaseURL + "/")
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", c.cfg.BaseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (c *DuneClient) tableURL(namespace, table string) string {
	return fmt.Sprintf("%s/table/%s/%s", c.cfg.BaseURL, url.PathEscape(namespace), url.PathEscape(table))
}

// do executes one request and returns the status and a copy of the body.
func (c *DuneClient) do(
	ctx context.Context,
	operation, method, uri string,
	prepare func(req *fasthttp.Request),
	timeout time.Duration,
) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set(duneAPIKeyHeader, c.cfg.APIKey)
	if prepare != nil {
		prepare(req)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, timeout)
	}
	if err != nil {
		metrics.TableRequests.WithLabelValues(operation, "error").Inc()
		c.logger.Error("Failed to execute request to Dune", zap.String("operation", operation), zap.String("url", uri), zap.Error(err))
		return 0, nil, fmt.Errorf("dune %s request to %s: %w", operation, uri, err)
	}

	status := resp.StatusCode()
	metrics.TableRequests.WithLabelValues(operation, fmt.Sprint(status)).Inc()
	return status, append([]byte(nil), resp.Body()...), nil
}

func (c *DuneClient) apiError(operation string, status int, body []byte) error {
	detail := string(body)
	var payload duneErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		detail = payload.Error
	}
	c.logger.Error("Dune API request failed",
		zap.String("operation", operation),
		zap.Int("statusCode", status),
		zap.ByteString("responseBody", body))
	return &APIError{Operation: operation, StatusCode: status, Body: detail}
}
