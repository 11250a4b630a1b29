package templates

// View models for the dashboard pages. Handlers assemble these from
// the analysis and market services; templates only format them.

type FundRow struct {
	Code        string
	Name        string
	HasAnalysis bool
	Advice      string
	Score       int
	Trend       string
	Summary     string
	AnalyzedAt  string
}

type FundListData struct {
	Funds        []FundRow
	ScheduleTime string
}

type KeyValue struct {
	Key   string
	Value string
}

type HoldingRow struct {
	Code  string
	Name  string
	Ratio float64
}

type ValuationView struct {
	ChangePercent float64
	Source        string
	Time          string
}

type AnalysisView struct {
	Advice    string
	Score     int
	Trend     string
	Summary   string
	CreatedAt string
}

type FundDetailData struct {
	Code        string
	Name        string
	Profile     []KeyValue
	Performance []KeyValue
	Holdings    []HoldingRow
	Valuation   *ValuationView
	Latest      *AnalysisView
}

type RecordRow struct {
	ID        int64
	Code      string
	Name      string
	Success   bool
	Advice    string
	Score     int
	Trend     string
	Summary   string
	Error     string
	CreatedAt string
}

type HistoryData struct {
	Records []RecordRow
	Code    string
	Total   int
	Page    int
	Pages   int
	HasPrev bool
	HasNext bool
	Prev    int
	Next    int
}

type ReviewListData struct {
	Records []RecordRow
	Total   int
	Page    int
	Pages   int
	HasPrev bool
	HasNext bool
	Prev    int
	Next    int
}

type ReviewDetailData struct {
	Record RecordRow
	Report string
}

type ConfigData struct {
	FileName  string
	StockList []string
	Keys      []KeyValue
	Message   string
}

type TaskRow struct {
	ID        string
	Code      string
	Status    string
	Error     string
	CreatedAt string
}

type StatusData struct {
	Service   string
	Healthy   bool
	Tasks     []TaskRow
	FundCount int
}
