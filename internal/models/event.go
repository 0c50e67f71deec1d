package models

import "time"

// Event types published to Kafka by the ingest worker.
const (
	EventBarsIngested = "BARS_INGESTED"
	EventBarsRebased  = "BARS_REBASED"
)

// BarEvent represents a Kafka event for bar ingestion changes
type BarEvent struct {
	EventType string    `json:"event_type"`
	Symbol    string    `json:"symbol"`
	Rows      int       `json:"rows,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
