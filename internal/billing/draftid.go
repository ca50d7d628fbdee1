package billing

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DraftToken addresses the one locally cached, unsaved bill.
const DraftToken = "draft"

const idTimeLayout = "20060102150405"

// MakeDraftID builds B-{cooperative}-{YYYYMMDDHHMMSS}{SUFFIX}.
func MakeDraftID(cooperative string, now time.Time, suffix string) string {
	return MakeID("B", cooperative, now, suffix)
}

// MakeID is the shared {prefix}-{htx}-{timestamp}{suffix} layout used for every
// generated record id.
func MakeID(prefix, htx string, now time.Time, suffix string) string {
	return fmt.Sprintf("%s-%s-%s%s", prefix, htx, now.Format(idTimeLayout), strings.ToUpper(suffix))
}

const suffixSpace = 36 * 36 * 36 * 36

// RandomSuffix returns four base36 characters.
func RandomSuffix() string {
	u := uuid.New()
	v := binary.BigEndian.Uint32(u[:4]) % suffixSpace
	s := strconv.FormatUint(uint64(v), 36)
	return strings.ToUpper(strings.Repeat("0", 4-len(s)) + s)
}
