package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case HistoryResult:
		o.printHistoryResult(v)
	case LobbyResult:
		o.printLobbyResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// LobbyResult mirrors the lobby-join event payload
type LobbyResult struct {
	Seed     string `json:"Seed"`
	Username string `json:"Username"`
}

// RankEntry is one line of a recorded ranking, in finish order
type RankEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// MatchRecord is one persisted match summary
type MatchRecord struct {
	Seed       string      `json:"seed"`
	Rankings   []RankEntry `json:"rankings"`
	FinishedAt time.Time   `json:"finished_at"`
}

// HistoryResult response type
type HistoryResult struct {
	Seed    string        `json:"seed"`
	Records []MatchRecord `json:"records"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func (o *Output) printLobbyResult(l LobbyResult) {
	fmt.Printf("Lobby: %s\n", l.Seed)
	fmt.Printf("Username: %s\n", l.Username)
}

func (o *Output) printHistoryResult(h HistoryResult) {
	fmt.Printf("History for %s (%d matches):\n", h.Seed, len(h.Records))
	for _, record := range h.Records {
		fmt.Printf("  %s\n", record.FinishedAt.Format("2006-01-02 15:04:05"))
		for i, entry := range record.Rankings {
			fmt.Printf("    %d. %s - %d lines\n", i+1, entry.Username, entry.Score)
		}
	}
}
