package model

import "time"

// RawHackathon is the loosely-typed output of parsing one listing page.
// Adapters fill whatever they can locate; every field may be empty or carry
// a source-specific representation. Fields typed `any` accept the shapes the
// normalizer knows how to coerce: dates as string or time.Time, IsOnline as
// bool/string/number, PrizeMoney as float64/string, arrays as []string or a
// delimiter-separated string.
type RawHackathon struct {
	Title                string
	Description          string
	WebsiteURL           string
	RegistrationURL      string
	StartDate            any
	EndDate              any
	RegistrationDeadline any
	Location             string
	IsOnline             any
	PrizeMoney           any
	Categories           any
	Technologies         any
	Organizer            string
	SourceID             string
	SourceURL            string
}

// Hackathon is the canonical, validated listing record ready for
// persistence. Empty strings mean absent; nil pointers mean absent.
// `(SourcePlatform, SourceID)` is the durable identity key when both are
// non-empty. Records are never mutated after normalization.
type Hackathon struct {
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	WebsiteURL           string     `json:"website_url,omitempty"`
	RegistrationURL      string     `json:"registration_url,omitempty"`
	StartDate            *time.Time `json:"start_date,omitempty"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`
	Location             string     `json:"location,omitempty"`
	IsOnline             bool       `json:"is_online"`
	PrizeMoney           *float64   `json:"prize_money,omitempty"`
	Categories           []string   `json:"categories,omitempty"`
	Technologies         []string   `json:"technologies,omitempty"`
	Organizer            string     `json:"organizer,omitempty"`
	SourcePlatform       string     `json:"source_platform"`
	SourceID             string     `json:"source_id,omitempty"`
	SourceURL            string     `json:"source_url,omitempty"`
	ScrapedAt            time.Time  `json:"scraped_at"`
}

// HasIdentity reports whether the record carries the full upsert key.
func (h Hackathon) HasIdentity() bool {
	return h.SourcePlatform != "" && h.SourceID != ""
}

// UpsertOutcome reports what an upsert did.
type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
)

// JobStatus is the terminal state of one adapter run.
type JobStatus string

const (
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ScrapeResult summarizes one adapter's run. Created once at the end of the
// run and never mutated afterwards.
type ScrapeResult struct {
	Platform        string        `json:"platform"`
	Success         bool          `json:"success"`
	ItemsFound      int           `json:"items_found"`
	ItemsSaved      int           `json:"items_saved"`
	ErrorsCount     int           `json:"errors_count"`
	DuplicatesCount int           `json:"duplicates_count"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	Duration        time.Duration `json:"duration"`
}

// ScrapeJob is the append-only audit row recorded after each adapter run.
type ScrapeJob struct {
	ID          string         `json:"id"`
	Platform    string         `json:"platform"`
	Status      JobStatus      `json:"status"`
	ItemsFound  int            `json:"items_found"`
	ItemsSaved  int            `json:"items_saved"`
	ErrorsCount int            `json:"errors_count"`
	ErrorDetail map[string]any `json:"error_detail,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
}
