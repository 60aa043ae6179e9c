package domain

// HydeDocLength selects the target length of the hypothetical document
// generated by the HyDE pipeline.
type HydeDocLength string

const (
	HydeDocShort  HydeDocLength = "short"
	HydeDocMedium HydeDocLength = "medium"
	HydeDocLong   HydeDocLength = "long"
)

// Valid reports whether the length is one of the known values.
func (l HydeDocLength) Valid() bool {
	switch l {
	case HydeDocShort, HydeDocMedium, HydeDocLong:
		return true
	}
	return false
}

// Request defaults applied by the API layer; the core validates rather
// than defaults K so a zero value is always rejected loudly.
const (
	DefaultK             = 5
	DefaultRerankWeight  = 0.6
	DefaultHydeDocLength = HydeDocMedium
)

// QueryRequest asks for one query to be run against an ordered list of
// architectures. K bounds the context size for every variant.
type QueryRequest struct {
	Query         string           `json:"query"`
	Architectures []ArchitectureID `json:"architectures"`
	K             int              `json:"k"`
	ShowContext   bool             `json:"show_context"`

	// Variant-specific knobs; zero values fall back to engine defaults.
	RerankWeight     float64       `json:"rerank_weight,omitempty"`
	HydeDocLength    HydeDocLength `json:"hyde_doc_length,omitempty"`
	UseOriginalQuery bool          `json:"use_original_query,omitempty"`
}

// QueryParams is the per-call parameter set handed to a pipeline's
// Retrieve, after defaults have been resolved.
type QueryParams struct {
	K                int
	RerankWeight     float64
	HydeDocLength    HydeDocLength
	UseOriginalQuery bool
}

// Retrieval is the output of a pipeline's retrieval stage.
type Retrieval struct {
	Chunks []*RankedChunk `json:"chunks"`

	// Hypothetical carries the generated document for HyDE retrievals.
	Hypothetical string `json:"hypothetical,omitempty"`
}

// QueryResult is one architecture's outcome within a comparison. A failed
// task keeps its architecture id and carries the failure in Error; Response
// and Context are empty in that case.
type QueryResult struct {
	Architecture   ArchitectureID `json:"architecture"`
	Response       string         `json:"response"`
	Context        []*RankedChunk `json:"context"`
	Hypothetical   string         `json:"hypothetical_document,omitempty"`
	ProcessingTime float64        `json:"processing_time"` // Seconds, wall-clock for this task
	Error          string         `json:"error,omitempty"`
	TimedOut       bool           `json:"timed_out,omitempty"`
}

// Failed reports whether this result carries an error instead of an answer.
func (r *QueryResult) Failed() bool {
	return r.Error != ""
}

// ComparisonResult aggregates the per-architecture results of one query.
// Results is always the same length and order as the request's architecture
// list, regardless of completion order.
type ComparisonResult struct {
	Query               string         `json:"query"`
	Results             []*QueryResult `json:"results"`
	TotalProcessingTime float64        `json:"total_processing_time"` // Seconds, batch wall-clock
}
