package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/raceday/finishline/internal/domain/model"
)

// Expected header columns. The rfid column is optional.
const (
	colBib  = "bib"
	colName = "name"
	colTeam = "team"
	colTag  = "rfid"
)

// ParseCSV reads a roster from r. The first row must be a header
// containing at least bib, name and team columns; bib must parse as a
// positive integer.
func ParseCSV(r io.Reader) ([]model.Runner, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrBadRoster, err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{colBib, colName, colTeam} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadRoster, required)
		}
	}

	var runners []model.Runner
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRoster, line, err)
		}

		bib, err := strconv.Atoi(strings.TrimSpace(record[idx[colBib]]))
		if err != nil || bib <= 0 {
			return nil, fmt.Errorf("%w: line %d: bib %q is not a positive integer", ErrBadRoster, line, record[idx[colBib]])
		}

		runner := model.Runner{
			Bib:  bib,
			Name: strings.TrimSpace(record[idx[colName]]),
			Team: strings.TrimSpace(record[idx[colTeam]]),
		}
		if i, ok := idx[colTag]; ok && i < len(record) {
			runner.Tag = strings.TrimSpace(record[i])
		}
		runners = append(runners, runner)
	}
	return runners, nil
}

// LoadFile parses a roster CSV from disk.
func LoadFile(path string) ([]model.Runner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()
	return ParseCSV(f)
}
