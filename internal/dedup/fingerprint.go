package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Fingerprint derives the candidate key two crawls of the same real-world
// posting will share: company, primary role, location, and the ISO week
// the ad went up. Descriptions are deliberately excluded; they are
// compared per-candidate by similarity, not hashed.
func Fingerprint(companyID, roleID, locationID uuid.UUID, posted *time.Time) string {
	bucket := "unknown-week"
	if posted != nil {
		year, week := posted.UTC().ISOWeek()
		bucket = fmt.Sprintf("%04d-W%02d", year, week)
	}
	h := sha256.Sum256([]byte(
		companyID.String() + "|" + roleID.String() + "|" + locationID.String() + "|" + bucket,
	))
	return hex.EncodeToString(h[:])
}
