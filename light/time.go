package light

import "time"

// timeNow is a package-level indirection so tests can pin "now" without a
// clock-injection parameter threaded through every call site.
var timeNow = time.Now
