package ingest

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	apperrors "github.com/clipsmith-dev/clip-analyzer/errors"
	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
)

// ParseSRT reads SubRip subtitle data into segments. Blocks are separated by
// blank lines; the numeric index line is optional, the timing line is
// mandatory. Multi-line cue text is joined with single spaces.
func ParseSRT(data []byte) ([]*entities.Segment, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var segments []*entities.Segment
	var block []string

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		segment, err := parseSRTBlock(block)
		if err != nil {
			return err
		}
		if segment != nil {
			segments = append(segments, segment)
		}
		block = block[:0]
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.ErrInvalidInput(err.Error())
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return segments, nil
}

func parseSRTBlock(lines []string) (*entities.Segment, error) {
	idx := 0
	id := ""

	// Optional index line.
	if _, err := strconv.Atoi(strings.TrimSpace(lines[idx])); err == nil {
		id = strings.TrimSpace(lines[idx])
		idx++
	}
	if idx >= len(lines) {
		return nil, nil
	}

	timing := lines[idx]
	parts := strings.Split(timing, "-->")
	if len(parts) != 2 {
		return nil, apperrors.ErrMalformedTimecode(timing, "timing line")
	}
	start, err := entities.ParseTimecode(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, err
	}
	end, err := entities.ParseTimecode(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}

	text := strings.Join(lines[idx+1:], " ")
	segment, err := entities.NewSegment(start, end, strings.TrimSpace(text))
	if err != nil {
		return nil, err
	}
	segment.ID = id
	return segment, nil
}
