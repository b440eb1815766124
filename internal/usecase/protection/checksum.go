package protection

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/clipsmith-dev/clip-analyzer/internal/domain/entities"
)

// computeChecksum digests the segment's stable fields: text and time range.
// Protection metadata is deliberately excluded so the digest does not depend
// on its own annotation. Serialization is canonical (sorted keys) so the
// digest is reproducible regardless of field iteration order.
func computeChecksum(s *entities.Segment) string {
	fields := map[string]string{
		"end":   s.End.String(),
		"start": s.Start.String(),
		"text":  s.Text,
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, fields[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
