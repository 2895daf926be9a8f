package wizard

import "time"

var testTime = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
