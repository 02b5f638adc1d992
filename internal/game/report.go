package game

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteReport writes the room's evaluation history as CSV, one row per judged
// bid in the order the host judged them. Room code and host name are repeated
// on every row so the file stands alone once downloaded.
func WriteReport(w io.Writer, rm *Room) error {
	history := rm.History()

	cw := csv.NewWriter(w)
	header := []string{"room", "host", "round", "player", "bid", "result", "points_after", "evaluated_at"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, e := range history {
		result := "incorrect"
		if e.Correct {
			result = "correct"
		}
		row := []string{
			rm.Code,
			rm.HostName,
			strconv.Itoa(e.Round),
			e.PlayerName,
			strconv.Itoa(e.Amount),
			result,
			strconv.Itoa(e.PointsAfter),
			e.At.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
