package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ReplayLog is a recorded bus capture loaded in file order.
type ReplayLog struct {
	Frames  []Frame
	Skipped int
}

const maxReplayBytes = 12

// LoadReplayFile opens a CSV capture and loads it with LoadReplay.
func LoadReplayFile(path string) (*ReplayLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadReplay(f, path)
}

// LoadReplay parses a capture with columns "Time Stamp" (microseconds), "ID" (hex),
// "LEN" and D1..D12 (hex bytes, empty or absent read as 00). Only the first LEN bytes
// are kept, and a malformed byte cuts the payload short at that column. Rows whose
// timestamp, ID or LEN cannot be parsed are skipped and counted.
func LoadReplay(r io.Reader, bus string) (*ReplayLog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("replay header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, k := range []string{"Time Stamp", "ID", "LEN"} {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("replay log missing required column: %q", k)
		}
	}

	out := &ReplayLog{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				out.Skipped++
				continue
			}
			return nil, err
		}
		fr, ok := parseReplayRow(rec, idx, bus)
		if !ok {
			out.Skipped++
			continue
		}
		out.Frames = append(out.Frames, fr)
	}
	return out, nil
}

func parseReplayRow(rec []string, idx map[string]int, bus string) (Frame, bool) {
	col := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	us, err := strconv.ParseInt(col("Time Stamp"), 10, 64)
	if err != nil {
		return Frame{}, false
	}
	id, err := parseHexUint32(col("ID"))
	if err != nil {
		return Frame{}, false
	}
	n, err := strconv.Atoi(col("LEN"))
	if err != nil || n < 0 || n > maxReplayBytes {
		return Frame{}, false
	}

	data := make([]byte, n)
	for i := 0; i < n; i++ {
		s := col(fmt.Sprintf("D%d", i+1))
		if s == "" {
			continue
		}
		b, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			// The payload ends at the first unreadable byte.
			data = data[:i]
			break
		}
		data[i] = byte(b)
	}

	return Frame{
		ID:        id,
		Data:      data,
		Timestamp: time.UnixMicro(us).UTC(),
		Bus:       bus,
	}, true
}

func parseHexUint32(s string) (uint32, error) {
	ss := strings.TrimSpace(s)
	ss = strings.TrimPrefix(strings.TrimPrefix(ss, "0x"), "0X")
	u, err := strconv.ParseUint(ss, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}
