package domain

// DoseStatusCounts holds instance counts within a window. Taken, Missed and
// Skipped bucket terminal outcomes; Total spans every instance scheduled in
// the window regardless of status.
type DoseStatusCounts struct {
	Taken   int
	Missed  int
	Skipped int
	Total   int
}

// AdherenceStats is the 30-day rollup served to dashboards.
// Rate is a whole percentage (taken/total), rounded half away from zero;
// zero when the window holds no instances.
type AdherenceStats struct {
	Counts DoseStatusCounts
	Rate   int
	Trend  []WeekTrendPoint
}

// WeekTrendPoint is one ISO-week bucket of the adherence trend.
// Rate carries one decimal place, same rounding mode as the overall rate.
type WeekTrendPoint struct {
	Week  int
	Label string
	Taken int
	Total int
	Rate  float64
}
