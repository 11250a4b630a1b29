package analysis

import "time"

type Status string

const (
	TaskPending   Status = "pending"
	TaskRunning   Status = "running"
	TaskSucceeded Status = "succeeded"
	TaskFailed    Status = "failed"
)

// MarketReviewCode marks portfolio-wide review records in history.
const MarketReviewCode = "ALL_FUNDS"

// Task tracks one asynchronous analysis run.
type Task struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	ReportType string     `json:"report_type"`
	Status     Status     `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Result is what a single analyzer run produces.
type Result struct {
	Code    string
	Name    string
	Advice  string
	Score   int
	Trend   string
	Summary string
}

// Record is a persisted analysis outcome, successful or not.
type Record struct {
	ID         int64     `json:"id"`
	QueryID    string    `json:"query_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Success    bool      `json:"success"`
	Advice     string    `json:"operation_advice,omitempty"`
	Score      int       `json:"sentiment_score,omitempty"`
	Trend      string    `json:"trend_prediction,omitempty"`
	Summary    string    `json:"analysis_summary,omitempty"`
	Error      string    `json:"error,omitempty"`
	ReportType string    `json:"report_type"`
	Snapshot   bool      `json:"context_snapshot,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
