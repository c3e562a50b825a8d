package quality

import (
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/timerange"
)

const minute = int64(time.Minute / time.Millisecond)

func utcRange(t *testing.T, day string) models.DateRange {
	t.Helper()
	r, err := timerange.Resolve(day, timerange.Zone("UTC"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return r
}

func reading(ts int64, v float64, kind models.Kind) models.Record {
	return models.Record{Timestamp: ts, Value: v, Kind: kind, Placed: true}
}

func TestAnalyze_SingleGap(t *testing.T) {
	r := utcRange(t, "2024-05-01")
	base := r.StartMillis() + 60*minute

	report := NewAnalyzer(DefaultConfig()).Analyze(
		nil,
		[]models.Record{reading(base, 100, models.KindSensor), reading(base+90*minute, 110, models.KindSensor)},
		r,
	)

	if !report.HasGaps {
		t.Fatal("HasGaps = false, want true")
	}
	if len(report.Gaps) != 1 {
		t.Fatalf("len(Gaps) = %d, want 1", len(report.Gaps))
	}
	if report.Gaps[0].DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %v, want 90", report.Gaps[0].DurationMinutes)
	}
	if !report.Gaps[0].Start.Equal(time.UnixMilli(base)) {
		t.Errorf("Start = %v, want %v", report.Gaps[0].Start, time.UnixMilli(base))
	}
}

func TestAnalyze_ThresholdIsExclusive(t *testing.T) {
	r := utcRange(t, "2024-05-01")
	base := r.StartMillis()

	report := NewAnalyzer(DefaultConfig()).Analyze(
		[]models.Record{reading(base, 100, models.KindManual)},
		[]models.Record{reading(base+30*minute, 100, models.KindSensor)},
		r,
	)
	if report.HasGaps {
		t.Errorf("a delta equal to the threshold should not be a gap: %+v", report.Gaps)
	}
}

func TestAnalyze_MergesManualAndSensor(t *testing.T) {
	r := utcRange(t, "2024-05-01")
	base := r.StartMillis()

	manual := []models.Record{reading(base+40*minute, 100, models.KindManual)}
	sensor := []models.Record{reading(base, 100, models.KindSensor), reading(base+80*minute, 100, models.KindSensor)}

	report := NewAnalyzer(DefaultConfig()).Analyze(manual, sensor, r)
	if len(report.Gaps) != 2 {
		t.Fatalf("len(Gaps) = %d, want 2", len(report.Gaps))
	}
	for _, g := range report.Gaps {
		if g.DurationMinutes != 40 {
			t.Errorf("DurationMinutes = %v, want 40", g.DurationMinutes)
		}
	}
}

func TestAnalyze_ConfigurableThreshold(t *testing.T) {
	r := utcRange(t, "2024-05-01")
	base := r.StartMillis()
	sensor := []models.Record{reading(base, 100, models.KindSensor), reading(base+20*minute, 100, models.KindSensor)}

	report := NewAnalyzer(Config{GapThreshold: 15 * time.Minute}).Analyze(nil, sensor, r)
	if len(report.Gaps) != 1 {
		t.Errorf("len(Gaps) = %d, want 1", len(report.Gaps))
	}
}

func TestAnalyze_GapsSymmetricUnderShuffle(t *testing.T) {
	r := utcRange(t, "2024-05-01")
	base := r.StartMillis()

	offsets := []int64{0, 5, 10, 50, 55, 120, 125, 126, 300, 301, 500, 530, 561}
	var sensor []models.Record
	for i, off := range offsets {
		sensor = append(sensor, reading(base+off*minute, float64(100+i), models.KindSensor))
	}

	a := NewAnalyzer(DefaultConfig())
	want := a.Analyze(nil, sensor, r).Gaps

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Record(nil), sensor...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := a.Analyze(nil, shuffled, r).Gaps
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d: gaps = %+v, want %+v", i, got, want)
		}
	}
}

func TestAnalyze_Anomalies(t *testing.T) {
	r := utcRange(t, "2024-05-01")
	base := r.StartMillis()

	sensor := []models.Record{
		reading(base, 120, models.KindSensor),
		reading(base+5*minute, 450, models.KindSensor),
		reading(base+10*minute, 400, models.KindSensor),
		reading(base+15*minute, 40, models.KindSensor),
	}
	manual := []models.Record{reading(base+12*minute, 22, models.KindManual)}

	report := NewAnalyzer(DefaultConfig()).Analyze(manual, sensor, r)

	if len(report.Anomalies) != 2 {
		t.Fatalf("len(Anomalies) = %d, want 2: %+v", len(report.Anomalies), report.Anomalies)
	}

	var high *models.Anomaly
	for i := range report.Anomalies {
		if report.Anomalies[i].Value == 450 {
			high = &report.Anomalies[i]
		}
	}
	if high == nil {
		t.Fatal("450 reading not flagged")
	}
	if !strings.Contains(high.Reason, "above") || !strings.Contains(high.Reason, "400") {
		t.Errorf("Reason = %q, want a readable explanation", high.Reason)
	}
	if report.HasGaps {
		t.Errorf("anomalous values must not create gaps: %+v", report.Gaps)
	}
}

func TestAnalyze_Density(t *testing.T) {
	r := utcRange(t, "2024-05-01")

	t.Run("empty", func(t *testing.T) {
		report := NewAnalyzer(DefaultConfig()).Analyze(nil, nil, r)
		if report.Density.CoveragePercent != 0 {
			t.Errorf("CoveragePercent = %v, want 0", report.Density.CoveragePercent)
		}
		if report.Density.Expected != 24 || report.Density.Actual != 0 {
			t.Errorf("Density = %+v", report.Density)
		}
	})

	t.Run("baseline rate", func(t *testing.T) {
		var sensor []models.Record
		for i := 0; i < r.ExpectedSampleCount; i++ {
			sensor = append(sensor, reading(r.StartMillis()+int64(i)*60*minute, 100, models.KindSensor))
		}
		report := NewAnalyzer(DefaultConfig()).Analyze(nil, sensor, r)
		if math.Round(report.Density.CoveragePercent) != 100 {
			t.Errorf("CoveragePercent = %v, want 100", report.Density.CoveragePercent)
		}
	})

	t.Run("zero expected", func(t *testing.T) {
		report := NewAnalyzer(DefaultConfig()).Analyze(nil, []models.Record{reading(1, 100, models.KindSensor)}, models.DateRange{})
		if report.Density.CoveragePercent != 0 {
			t.Errorf("CoveragePercent = %v, want 0", report.Density.CoveragePercent)
		}
	})
}

func TestAnalyze_TimezoneIssues(t *testing.T) {
	dst, err := timerange.Resolve("2024-03-10", timerange.Zone("America/New_York"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	plain := utcRange(t, "2024-05-01")

	tests := []struct {
		name  string
		r     models.DateRange
		recs  []models.Record
		types []models.TimezoneIssueType
	}{
		{
			name: "clean",
			r:    plain,
		},
		{
			name:  "dst day",
			r:     dst,
			types: []models.TimezoneIssueType{models.TimezoneIssueDST},
		},
		{
			name: "bad offset",
			r: func() models.DateRange {
				r := plain
				r.TimezoneOffsetMinutes = 900
				return r
			}(),
			types: []models.TimezoneIssueType{models.TimezoneIssueOffset},
		},
		{
			name: "wide window",
			r: func() models.DateRange {
				r := plain
				r.DaysToFetch = 3
				return r
			}(),
			types: []models.TimezoneIssueType{models.TimezoneIssueRange},
		},
		{
			name:  "record outside window",
			r:     plain,
			recs:  []models.Record{reading(plain.EndMillis()+1, 100, models.KindSensor)},
			types: []models.TimezoneIssueType{models.TimezoneIssueRange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewAnalyzer(DefaultConfig()).Analyze(nil, tt.recs, tt.r)
			var got []models.TimezoneIssueType
			for _, issue := range report.TimezoneIssues {
				got = append(got, issue.Type)
				if issue.Description == "" {
					t.Errorf("issue %s has no description", issue.Type)
				}
			}
			if !reflect.DeepEqual(got, tt.types) {
				t.Errorf("issue types = %v, want %v", got, tt.types)
			}
		})
	}
}

func TestNewAnalyzer_Defaults(t *testing.T) {
	cfg := NewAnalyzer(Config{}).Config()
	if cfg != DefaultConfig() {
		t.Errorf("Config() = %+v, want %+v", cfg, DefaultConfig())
	}
}

func TestFormatOffset(t *testing.T) {
	tests := map[int]string{0: "+00:00", 330: "+05:30", -570: "-09:30", 840: "+14:00"}
	for in, want := range tests {
		if got := formatOffset(in); got != want {
			t.Errorf("formatOffset(%d) = %q, want %q", in, got, want)
		}
	}
}
