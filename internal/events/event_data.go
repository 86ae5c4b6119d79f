package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ChartComputedData contains data for ChartComputed events
type ChartComputedData struct {
	Pillars   []string `json:"pillars"`
	DayMaster string   `json:"day_master"`
}

// EventType returns the event type for ChartComputedData
func (d *ChartComputedData) EventType() EventType {
	return ChartComputed
}

// AnalysisCompletedData contains data for AnalysisCompleted events
type AnalysisCompletedData struct {
	ChartID    string `json:"chart_id"`
	Pattern    string `json:"pattern"`
	Strength   string `json:"strength"`
	DurationMS int64  `json:"duration_ms"`
}

// EventType returns the event type for AnalysisCompletedData
func (d *AnalysisCompletedData) EventType() EventType {
	return AnalysisCompleted
}

// ReportGeneratedData contains data for ReportGenerated events
type ReportGeneratedData struct {
	ChartID string `json:"chart_id"`
	Level   string `json:"level"`
	Length  int    `json:"length"`
}

// EventType returns the event type for ReportGeneratedData
func (d *ReportGeneratedData) EventType() EventType {
	return ReportGenerated
}

// ReportFailedData contains data for ReportFailed events
type ReportFailedData struct {
	ChartID string `json:"chart_id"`
	Level   string `json:"level"`
	Error   string `json:"error"`
}

// EventType returns the event type for ReportFailedData
func (d *ReportFailedData) EventType() EventType {
	return ReportFailed
}

// ResultPersistedData contains data for ResultPersisted events
type ResultPersistedData struct {
	ChartID string `json:"chart_id"`
	Path    string `json:"path"`
}

// EventType returns the event type for ResultPersistedData
func (d *ResultPersistedData) EventType() EventType {
	return ResultPersisted
}

// AnnualRefreshedData contains data for AnnualRefreshed events
type AnnualRefreshedData struct {
	Year      int `json:"year"`
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// EventType returns the event type for AnnualRefreshedData
func (d *AnnualRefreshedData) EventType() EventType {
	return AnnualRefreshed
}

// JobCompletedData contains data for JobCompleted events
type JobCompletedData struct {
	Job        string `json:"job"`
	DurationMS int64  `json:"duration_ms"`
}

// EventType returns the event type for JobCompletedData
func (d *JobCompletedData) EventType() EventType {
	return JobCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// EventWithData represents an event with typed data
type EventWithData struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// MarshalJSON customizes JSON serialization for EventWithData
func (e *EventWithData) MarshalJSON() ([]byte, error) {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for EventWithData
func (e *EventWithData) UnmarshalJSON(data []byte) error {
	type Alias EventWithData
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	// Unmarshal data based on event type
	if len(aux.Data) > 0 {
		var eventData EventData
		switch aux.Type {
		case ChartComputed:
			eventData = &ChartComputedData{}
		case AnalysisCompleted:
			eventData = &AnalysisCompletedData{}
		case ReportGenerated:
			eventData = &ReportGeneratedData{}
		case ReportFailed:
			eventData = &ReportFailedData{}
		case ResultPersisted:
			eventData = &ResultPersistedData{}
		case AnnualRefreshed:
			eventData = &AnnualRefreshedData{}
		case JobCompleted:
			eventData = &JobCompletedData{}
		case ErrorOccurred:
			eventData = &ErrorEventData{}
		default:
			// For unknown types, use raw map
			var rawData map[string]interface{}
			if err := json.Unmarshal(aux.Data, &rawData); err != nil {
				return err
			}
			eventData = &GenericEventData{Type: aux.Type, Data: rawData}
		}

		if err := json.Unmarshal(aux.Data, eventData); err != nil {
			return err
		}
		e.Data = eventData
	}

	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON customizes JSON deserialization for GenericEventData
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}
