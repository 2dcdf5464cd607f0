package entity

// Column is one column of a hosted table schema.
type Column struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable"`
}

// CreateTableRequest describes a table to create.
type CreateTableRequest struct {
	Namespace   string   `json:"namespace"`
	TableName   string   `json:"table_name"`
	Schema      []Column `json:"schema"`
	Description string   `json:"description,omitempty"`
	IsPrivate   bool     `json:"is_private"`
}

// CreateTableResult is returned by table creation. AlreadyExisted is set when the
// table was present before the call.
type CreateTableResult struct {
	Namespace      string `json:"namespace"`
	TableName      string `json:"table_name"`
	FullName       string `json:"full_name"`
	ExampleQuery   string `json:"example_query"`
	AlreadyExisted bool   `json:"already_existed"`
	Message        string `json:"message"`
}

// InsertResult reports what a CSV upload wrote.
type InsertResult struct {
	RowsWritten  int64 `json:"rows_written"`
	BytesWritten int64 `json:"bytes_written"`
}
