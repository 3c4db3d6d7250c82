package trend

import (
	"fmt"
	"math"
	"strings"
	"time"

	"mindbuddy/internal/emotionlog"
)

// Days is the width of the rolling window.
const Days = 7

// Point is one day of the mood chart.
type Point struct {
	Date         time.Time `json:"date"`
	Label        string    `json:"label"`
	AvgIntensity float64   `json:"avg_intensity"`
	Count        int       `json:"count"`
}

// DailyAverages returns exactly Days points, oldest first, the last one
// being ref's calendar day. Entries are matched on year/month/day in
// ref's location. Empty days average to 0.
func DailyAverages(entries []emotionlog.Entry, ref time.Time) []Point {
	loc := ref.Location()
	points := make([]Point, 0, Days)
	for i := Days - 1; i >= 0; i-- {
		day := ref.AddDate(0, 0, -i)
		y, m, d := day.Date()

		sum, n := 0, 0
		for _, e := range entries {
			ey, em, ed := e.Timestamp.In(loc).Date()
			if ey == y && em == m && ed == d {
				sum += e.Intensity
				n++
			}
		}

		avg := 0.0
		if n > 0 {
			avg = roundTenth(float64(sum) / float64(n))
		}
		points = append(points, Point{
			Date:         time.Date(y, m, d, 0, 0, 0, 0, loc),
			Label:        day.Format("Mon"),
			AvgIntensity: avg,
			Count:        n,
		})
	}
	return points
}

// roundTenth rounds half-up to one decimal place.
func roundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// Chart renders the series as monospace bars, one line per day.
func Chart(points []Point) string {
	var b strings.Builder
	for _, p := range points {
		bar := strings.Repeat("█", int(math.Round(p.AvgIntensity)))
		if bar == "" {
			bar = "·"
		}
		fmt.Fprintf(&b, "%s %-10s %4.1f\n", p.Label, bar, p.AvgIntensity)
	}
	return b.String()
}
