package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed values for deterministic tests.
var (
	ApplicationID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	ApplicationID2 = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	ApplicationID3 = uuid.MustParse("00000000-0000-0000-0000-000000000003")

	// Now is a weekday morning in India (03:45 UTC).
	Now = time.Date(2026, 3, 4, 9, 15, 0, 0, IST)
)

// IST is India Standard Time without a tzdata dependency.
var IST = time.FixedZone("IST", 5*3600+30*60)
