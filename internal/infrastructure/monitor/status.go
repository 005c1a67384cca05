package monitor

import "time"

type Status struct {
	Backend   string    `json:"backend"`
	Storage   bool      `json:"storage"`
	Error     string    `json:"error,omitempty"`
	LastCheck time.Time `json:"last_check"`
}
