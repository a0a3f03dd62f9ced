package issues

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint calculates the fingerprint of an issue from the fields that identify it.
// Only the file, start line, category and message contribute, so the same warning
// produces the same fingerprint in successive builds even if e.g. its column moves.
func Fingerprint(fileName string, lineStart int, category, message string) string {
	d := xxhash.New()
	d.WriteString(fileName)
	d.Write([]byte{0})
	d.WriteString(strconv.Itoa(lineStart))
	d.Write([]byte{0})
	d.WriteString(category)
	d.Write([]byte{0})
	d.WriteString(message)
	return fmt.Sprintf("%016x", d.Sum64())
}
