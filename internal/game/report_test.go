package game

import (
	"bytes"
	"encoding/csv"
	"testing"
)

func TestWriteReport(t *testing.T) {
	reg := NewRegistry(Settings{})
	room := reg.CreateRoom("host", "Alice")
	room.Join("bob", "Bob")
	room.Join("cara", "Cara")

	room.StartRound("host")
	room.SubmitBid("bob", 30)
	room.SubmitBid("cara", 50)
	room.EvaluateBid("host", "bob", true)
	room.EvaluateBid("host", "cara", false)
	room.StartRound("host")
	room.SubmitBid("cara", 50)
	room.EvaluateBid("host", "cara", false)

	var buf bytes.Buffer
	if err := WriteReport(&buf, room); err != nil {
		t.Fatalf("should be able to write report: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("report should be valid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d records", len(records))
	}
	if records[0][0] != "room" || records[0][3] != "player" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	first := records[1]
	if first[0] != room.Code {
		t.Fatalf("expected room code %s, got %s", room.Code, first[0])
	}
	if first[1] != "Alice" {
		t.Fatalf("expected host name Alice, got %s", first[1])
	}
	if first[2] != "1" || first[3] != "Bob" || first[4] != "30" || first[5] != "correct" || first[6] != "130" {
		t.Fatalf("unexpected first row: %v", first)
	}

	last := records[3]
	if last[2] != "2" || last[3] != "Cara" || last[5] != "incorrect" || last[6] != "0" {
		t.Fatalf("unexpected last row: %v", last)
	}
}

func TestWriteReportEmptyRoom(t *testing.T) {
	reg := NewRegistry(Settings{})
	room := reg.CreateRoom("host", "Alice")

	var buf bytes.Buffer
	if err := WriteReport(&buf, room); err != nil {
		t.Fatalf("should be able to write an empty report: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("report should be valid CSV: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected header only, got %d records", len(records))
	}
}
