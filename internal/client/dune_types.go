package client

// queryResultsResponse is the body of GET /query/{id}/results.
type queryResultsResponse struct {
	ExecutionID string `json:"execution_id"`
	QueryID     int64  `json:"query_id"`
	State       string `json:"state"`
	Result      struct {
		Rows     []map[string]any `json:"rows"`
		Metadata struct {
			ColumnNames   []string `json:"column_names"`
			TotalRowCount int64    `json:"total_row_count"`
		} `json:"metadata"`
	} `json:"result"`
	NextURI    string `json:"next_uri"`
	NextOffset *int64 `json:"next_offset"`
}

// tableMessageResponse is returned by clear and delete.
type tableMessageResponse struct {
	Message string `json:"message"`
}

type duneErrorResponse struct {
	Error string `json:"error"`
}
