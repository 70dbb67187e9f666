package discovery

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"phisweep/internal/logging"
	"phisweep/internal/services"
	"phisweep/internal/store"
)

// inode gen snapid  fileset pool size kb uid gid crt mt ct at state -- path
var fileListLine = regexp.MustCompile(
	`^(\d+) (\d+) (\d+)\s+(\S+) (\S+) (\d+) (\d+) (\S+) (\S+) (\d+) (\d+) (\d+) (\d+) (\S+) --(.*)$`)

// ParseFileListLine parses one line of a policy engine file list. Paths are
// percent-decoded as written by the policy's ESCAPE clause.
func ParseFileListLine(line string) (store.Discovery, error) {
	line = strings.TrimRight(line, "\r\n")
	m := fileListLine.FindStringSubmatch(line)
	if m == nil {
		return store.Discovery{}, services.Wrap(services.ErrParse, "discovery", "parse file list", "unrecognized line", nil)
	}
	ints := make([]int64, 0, 8)
	for _, idx := range []int{6, 7, 8, 9, 10, 11, 12, 13} {
		n, err := strconv.ParseInt(m[idx], 10, 64)
		if err != nil {
			return store.Discovery{}, services.Wrap(services.ErrParse, "discovery", "parse file list",
				fmt.Sprintf("field %d is not numeric", idx), err)
		}
		ints = append(ints, n)
	}
	path := strings.TrimLeft(m[15], " ")
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	if strings.TrimSpace(path) == "" {
		return store.Discovery{}, services.Wrap(services.ErrParse, "discovery", "parse file list", "empty path", nil)
	}
	return store.Discovery{
		FileName:         path,
		FilesetName:      m[4],
		PoolName:         m[5],
		FileSize:         ints[0],
		KBAllocated:      ints[1],
		UserID:           int(ints[2]),
		GroupID:          int(ints[3]),
		CreationDays:     int(ints[4]),
		ModificationDays: int(ints[5]),
		ChangeDays:       int(ints[6]),
		AccessDays:       int(ints[7]),
		State:            m[14],
	}, nil
}

// FileListStats counts the outcome of one file list.
type FileListStats struct {
	Added   int
	Skipped int
}

// IngestFileList adds every parseable line of r to st. Malformed lines are
// logged and skipped; a store failure aborts.
func IngestFileList(ctx context.Context, r io.Reader, st store.Store, logger *slog.Logger) (FileListStats, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "filelist")
	var stats FileListStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseFileListLine(line)
		if err != nil {
			stats.Skipped++
			logger.Warn("skipping file list line", logging.Args(logging.Int("line", lineNo), logging.Error(err))...)
			continue
		}
		if _, err := st.AddRecord(ctx, rec); err != nil {
			return stats, fmt.Errorf("add %s: %w", rec.FileName, err)
		}
		stats.Added++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read file list: %w", err)
	}
	return stats, nil
}
