package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smartcv/searchpanel/internal/clients/brightdata"
)

type StatusLevel string

const (
	LevelSuccess StatusLevel = "success"
	LevelInfo    StatusLevel = "info"
	LevelWarning StatusLevel = "warning"
	LevelError   StatusLevel = "error"
)

type StatusField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DisplayStatus is the presentation form of a snapshot status. When the
// snapshot is ready, DisableAutoRefresh instructs the orchestration layer to
// switch auto-refresh off, whatever its current state.
type DisplayStatus struct {
	Level              StatusLevel   `json:"level"`
	Status             string        `json:"status"`
	Fields             []StatusField `json:"fields"`
	DisableAutoRefresh bool          `json:"disable_auto_refresh"`
}

const (
	noMessageText       = "Sin mensaje adicional"
	statusUnavailable   = "No se pudo obtener información de estado"
	labelMessage        = "Mensaje"
	labelProgress       = "Progreso"
	labelCollectedItems = "Elementos recolectados"
	labelEstimatedTime  = "Tiempo estimado restante"
)

// FormatStatus maps a raw status payload to its display form. Pure except
// for the DisableAutoRefresh directive carried in the result.
func FormatStatus(status *brightdata.SnapshotStatus) DisplayStatus {

	if status == nil || status.Status == "" {
		return DisplayStatus{
			Level:  LevelWarning,
			Fields: []StatusField{{Label: labelMessage, Value: statusUnavailable}},
		}
	}

	display := DisplayStatus{Status: strings.ToUpper(string(status.Status))}

	switch status.Status {
	case brightdata.StatusReady:
		display.Level = LevelSuccess
		display.DisableAutoRefresh = true
	case brightdata.StatusRunning:
		display.Level = LevelInfo
	case brightdata.StatusFailed:
		display.Level = LevelError
	default:
		display.Level = LevelWarning
	}

	message := status.Message
	if message == "" {
		message = noMessageText
	}
	display.Fields = append(display.Fields, StatusField{Label: labelMessage, Value: message})

	if status.Progress != nil {
		display.Fields = append(display.Fields,
			StatusField{Label: labelProgress, Value: fmt.Sprintf("%d%%", *status.Progress)})
	}
	if status.Count != nil {
		display.Fields = append(display.Fields,
			StatusField{Label: labelCollectedItems, Value: strconv.Itoa(*status.Count)})
	}
	if status.EstimatedTime != nil {
		display.Fields = append(display.Fields,
			StatusField{Label: labelEstimatedTime, Value: fmt.Sprintf("%d segundos", *status.EstimatedTime)})
	}

	return display
}
