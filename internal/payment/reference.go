package payment

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referencePrefix = "ALB"

// NewReference returns a gateway reference: ALB-<unix millis>-<12 hex chars>.
// The random part comes from a v4 UUID.
func NewReference(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return referencePrefix + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
