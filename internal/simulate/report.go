package simulate

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/logger"
)

// Print writes the run statistics to w and logs them.
func Print(w io.Writer, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Sessions) / stats.Duration.Seconds()
	}

	fmt.Fprintf(w, "Sessions: %d (failed: %d)\n", stats.Sessions, stats.Failed)
	fmt.Fprintf(w, "Responses: %d\n", stats.Responses)
	fmt.Fprintf(w, "Mean overall score: %.3f\n", stats.Overall)

	domains := make([]string, 0, len(stats.DomainMeans))
	for d := range stats.DomainMeans {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	if len(domains) > 0 {
		fmt.Fprintln(w, "Mean domain scores:")
	}
	for _, d := range domains {
		fmt.Fprintf(w, "  %-20s %.3f\n", model.DisplayName(d), stats.DomainMeans[d])
	}

	fmt.Fprintf(w, "Bands: low %d, moderate %d, high %d\n",
		stats.Bands[model.BandLow], stats.Bands[model.BandModerate], stats.Bands[model.BandHigh])
	fmt.Fprintf(w, "Duration: %s (%.1f sessions/s)\n", stats.Duration, perSecond)

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("sessions", stats.Sessions),
		logger.Int("failed", stats.Failed),
		logger.Int("responses", stats.Responses),
		logger.Float64("meanOverall", stats.Overall),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("sessionsPerSecond", perSecond),
	)
}
