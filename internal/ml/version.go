package ml

import (
	"fmt"
	"strconv"
	"strings"
)

const trainedVersionPrefix = "ml-"

// NextModelVersion returns the version tag for the next trained artifact.
// A missing or malformed prior version resets the sequence to its first
// value; otherwise the numeric suffix increments by one.
func NextModelVersion(current string) string {
	if !strings.HasPrefix(current, trainedVersionPrefix) {
		return trainedVersionPrefix + "1"
	}
	n, err := strconv.Atoi(strings.TrimPrefix(current, trainedVersionPrefix))
	if err != nil {
		return trainedVersionPrefix + "1"
	}
	return fmt.Sprintf("%s%d", trainedVersionPrefix, n+1)
}
