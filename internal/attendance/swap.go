package attendance

// SwapConfig holds the swap heuristic thresholds. The defaults fit a day
// shift pattern; other installations may tune them.
type SwapConfig struct {
	SampleLimit    int
	MinSamples     int
	InStartHour    int
	InEndHour      int
	OutStartHour   int
	OutEndHour     int
	RatioThreshold float64
}

// DefaultSwapConfig returns the stock thresholds.
func DefaultSwapConfig() SwapConfig {
	return SwapConfig{
		SampleLimit:    200,
		MinSamples:     50,
		InStartHour:    0,
		InEndHour:      6,
		OutStartHour:   12,
		OutEndHour:     23,
		RatioThreshold: 0.60,
	}
}

// SwapEvidence is the outcome of one detector evaluation.
type SwapEvidence struct {
	Samples  int // usable samples (known polarity)
	InRatio  float64
	OutRatio float64
	Swap     bool
}

// SwapDetector decides whether stored IN/OUT flags are inverted.
type SwapDetector struct {
	cfg SwapConfig
}

func NewSwapDetector(cfg SwapConfig) SwapDetector {
	def := DefaultSwapConfig()
	if cfg.SampleLimit <= 0 {
		cfg.SampleLimit = def.SampleLimit
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = def.MinSamples
	}
	if cfg.RatioThreshold <= 0 {
		cfg.RatioThreshold = def.RatioThreshold
	}
	if cfg.InEndHour == 0 && cfg.OutStartHour == 0 && cfg.OutEndHour == 0 {
		cfg.InStartHour, cfg.InEndHour = def.InStartHour, def.InEndHour
		cfg.OutStartHour, cfg.OutEndHour = def.OutStartHour, def.OutEndHour
	}
	return SwapDetector{cfg: cfg}
}

// SampleLimit is how many recent events callers should fetch.
func (d SwapDetector) SampleLimit() int { return d.cfg.SampleLimit }

// Evaluate inspects the nominal flags of a recent sample. A swap is
// reported only when labelled INs cluster in the early band and labelled
// OUTs cluster in the late band, both beyond the threshold.
func (d SwapDetector) Evaluate(sample []RawEvent) SwapEvidence {
	var ev SwapEvidence
	for _, e := range sample {
		if e.Flag != nil {
			ev.Samples++
		}
	}
	if ev.Samples < d.cfg.MinSamples {
		return ev
	}

	var inTotal, inEarly, outTotal, outLate int
	for _, e := range sample {
		if e.Flag == nil {
			continue
		}
		h := e.Time.Hour()
		if *e.Flag == In {
			inTotal++
			if h >= d.cfg.InStartHour && h <= d.cfg.InEndHour {
				inEarly++
			}
			continue
		}
		outTotal++
		if h >= d.cfg.OutStartHour && h <= d.cfg.OutEndHour {
			outLate++
		}
	}
	if inTotal == 0 || outTotal == 0 {
		return ev
	}

	ev.InRatio = float64(inEarly) / float64(inTotal)
	ev.OutRatio = float64(outLate) / float64(outTotal)
	ev.Swap = ev.InRatio > d.cfg.RatioThreshold && ev.OutRatio > d.cfg.RatioThreshold
	return ev
}
