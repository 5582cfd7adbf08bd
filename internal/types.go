package internal

type BatchStatus string

const (
	BatchPending   BatchStatus = "PENDING"
	BatchCompleted BatchStatus = "COMPLETED"
	BatchFailed    BatchStatus = "FAILED"
)

type ItemClass string

const (
	ClassMatched    ItemClass = "matched"
	ClassUnmatched  ItemClass = "unmatched"
	ClassMultiple   ItemClass = "multiple"
	ClassSuspicious ItemClass = "suspicious"
)

type ParsedItem struct {
	SupplierCode string
	SupplierName *string
	SourcePrice  *float64
	RawLine      *string
	Currency     *string
}

type ConsolidatedItem struct {
	ParsedItem
	NormalizedCode string
}

type CatalogProduct struct {
	ID          int
	MikroCode   string
	Name        string
	ForeignName string
	CurrentCost *float64
	VatRate     *float64
}

type UploadItem struct {
	ID             int64
	BatchID        string
	SupplierCode   string
	NormalizedCode string
	SupplierName   *string
	SourcePrice    *float64
	NetPrice       *float64
	Currency       *string
	RawLine        *string
	MatchCount     int
}

type MatchRow struct {
	ID             int64
	ItemID         int64
	ProductID      int
	ProductCode    string
	ProductName    string
	CurrentCost    *float64
	NetPrice       *float64
	CostDifference *float64
}

type UploadBatch struct {
	ID              string
	SupplierID      int
	Status          BatchStatus
	TotalItems      int
	MatchedItems    int
	UnmatchedItems  int
	MultiMatchItems int
	ErrorMessage    *string
	CreatedAt       string
}

type MailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
	BatchID    *string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
