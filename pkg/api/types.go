package api

import (
	"github.com/ssargent/isulog/pkg/catalog"
	"github.com/ssargent/isulog/pkg/isulog"
	"github.com/ssargent/isulog/pkg/records"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RecordView is the JSON form of one record
type RecordView struct {
	Index       int    `json:"index"`
	Type        uint16 `json:"type"`
	Name        string `json:"name"`
	Flags       int32  `json:"flags"`
	Size        int    `json:"size"`
	Description string `json:"description"`
	Error       string `json:"error,omitempty"`
}

// InspectResponse is returned by the inspect endpoint
type InspectResponse struct {
	Summary isulog.Summary `json:"summary"`
	Records []RecordView   `json:"records"`
}

// LogResponse is a stored log with its records
type LogResponse struct {
	Entry   catalog.Entry `json:"entry"`
	Records []RecordView  `json:"records"`
}

func recordViews(lg *isulog.Log) []RecordView {
	views := make([]RecordView, 0, len(lg.Records))
	for i, rec := range lg.Records {
		v := RecordView{
			Index:       i,
			Type:        uint16(rec.Type()),
			Name:        rec.Type().String(),
			Flags:       rec.Flags(),
			Size:        len(rec.Payload()),
			Description: rec.Description(),
		}
		if raw, ok := rec.(*records.Raw); ok && raw.Err() != nil {
			v.Error = raw.Err().Error()
		}
		views = append(views, v)
	}
	return views
}
