// Package models defines data structures for the leaflet scraper.
package models

import "time"

// Output layouts for the JSON/CSV export.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "2006-01-02 15:04:05"
)

// OpenEndedDate marks leaflets whose end date is not yet published.
const OpenEndedDate = "9999-12-31"

// Leaflet represents one promotional leaflet listing with its validity window.
type Leaflet struct {
	Title      string `csv:"title" json:"title"`
	Thumbnail  string `csv:"thumbnail" json:"thumbnail"`
	ShopName   string `csv:"shop_name" json:"shop_name"`
	ValidFrom  string `csv:"valid_from" json:"valid_from"`
	ValidTo    string `csv:"valid_to" json:"valid_to"`
	ParsedTime string `csv:"parsed_time" json:"parsed_time"`
}

// IsOpenEnded reports whether the leaflet has no published end date.
func (l *Leaflet) IsOpenEnded() bool {
	return l.ValidTo == OpenEndedDate
}

// Shop is one entry from the hypermarket sidebar catalog.
type Shop struct {
	Name string
	URL  string
}

// ScrapeResult holds the overall result of a scraping run.
type ScrapeResult struct {
	StartTime       time.Time
	EndTime         time.Time
	ShopCount       int
	ShopsFailed     int
	RequestCount    int
	ErrorCount      int
	SkippedLeaflets int
	FailedURLs      []string
	ErrorsByType    map[string]int
}
