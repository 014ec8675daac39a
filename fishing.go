package anchorage

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// LoadFishingVesselList parses the newline-separated integer vessel-id
// list spec.md §6 names as an external input.
func LoadFishingVesselList(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, scanner.Err()
}
