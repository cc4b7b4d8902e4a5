package bench

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"resonant/field"
)

// SessionMetrics summarizes one replayed writing session.
type SessionMetrics struct {
	Name           string  `json:"name"`
	Steps          int     `json:"steps"`
	AvgHarmony     float64 `json:"avg_harmony"`
	MinHarmony     float64 `json:"min_harmony"`
	MaxHarmony     float64 `json:"max_harmony"`
	Volatility     float64 `json:"volatility"`
	LowHarmonyRate float64 `json:"low_harmony_rate"`
	FinalL         float64 `json:"final_l"`
	FinalJ         float64 `json:"final_j"`
	FinalP         float64 `json:"final_p"`
	FinalW         float64 `json:"final_w"`
}

type Summary struct {
	SessionCount          int     `json:"session_count"`
	AverageHarmony        float64 `json:"average_harmony"`
	AverageVolatility     float64 `json:"average_volatility"`
	AverageLowHarmonyRate float64 `json:"average_low_harmony_rate"`
	ViabilityScore        float64 `json:"viability_score"`
}

type Results struct {
	GeneratedAtUTC time.Time        `json:"generated_at_utc"`
	Summary        Summary          `json:"summary"`
	Sessions       []SessionMetrics `json:"sessions"`
}

// AnalyzeSession replays text chunks through a fresh controller and
// collects harmony statistics. Each session gets its own controller so
// runs stay independent and deterministic.
func AnalyzeSession(name string, chunks []string) SessionMetrics {
	controller := field.NewController(nil)

	harmonies := make([]float64, 0, len(chunks))
	low := 0
	for _, chunk := range chunks {
		state := controller.Evaluate(chunk)
		harmonies = append(harmonies, state.Harmony)
		if state.Harmony < field.BandLow {
			low++
		}
	}

	lowRate := 0.0
	if len(chunks) > 0 {
		lowRate = float64(low) / float64(len(chunks))
	}

	final := controller.State()
	return SessionMetrics{
		Name:           name,
		Steps:          len(chunks),
		AvgHarmony:     mean(harmonies),
		MinHarmony:     minOf(harmonies),
		MaxHarmony:     maxOf(harmonies),
		Volatility:     stddev(harmonies),
		LowHarmonyRate: lowRate,
		FinalL:         final.L,
		FinalJ:         final.J,
		FinalP:         final.P,
		FinalW:         final.W,
	}
}

// DefaultSessionCases are the canned replay sessions: a focused draft, a
// dense note-taking burst, and a chaotic fragment stream.
func DefaultSessionCases() map[string][]string {
	return map[string][]string{
		"draft_flow": {
			"Today I want to sketch the shape of this feature.",
			"It should be simple and clear, and it should help the user move quickly.",
			"What should the first interaction feel like?",
			"I will keep the core focused, then add detail where needed.",
		},
		"dense_notes": {
			"Meeting notes: release prep, QA gaps, migration timing, owner mapping.",
			"Need status by team, timeline with blockers, and a final go/no-go rubric.",
			"Action items: verify rollback path; test cross-platform save semantics.",
			"Risks: rushed handoff, weak docs, unclear decision owner.",
		},
		"chaotic_input": {
			"asdf asdf asdf ???",
			"random fragments and noise without structure and maybe many words",
			"!!!! maybe maybe maybe",
			"final burst; no clear thread; uncertain logic.",
		},
	}
}

// Run replays every case and scores overall viability: weighted blend of
// mean harmony, inverse volatility, and inverse low-harmony rate, clamped
// to [0,1].
func Run(cases map[string][]string) Results {
	names := make([]string, 0, len(cases))
	for name := range cases {
		names = append(names, name)
	}
	sort.Strings(names)

	sessions := make([]SessionMetrics, 0, len(names))
	for _, name := range names {
		sessions = append(sessions, AnalyzeSession(name, cases[name]))
	}

	var avgH, avgVol, avgLow float64
	for _, s := range sessions {
		avgH += s.AvgHarmony
		avgVol += s.Volatility
		avgLow += s.LowHarmonyRate
	}
	n := float64(len(sessions))
	avgH /= n
	avgVol /= n
	avgLow /= n

	score := 0.6*avgH + 0.2*(1.0-avgVol) + 0.2*(1.0-avgLow)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return Results{
		GeneratedAtUTC: time.Now().UTC(),
		Summary: Summary{
			SessionCount:          len(sessions),
			AverageHarmony:        round6(avgH),
			AverageVolatility:     round6(avgVol),
			AverageLowHarmonyRate: round6(avgLow),
			ViabilityScore:        round6(score),
		},
		Sessions: sessions,
	}
}

// MarkdownReport renders the results table for humans.
func MarkdownReport(r Results) string {
	var b strings.Builder

	b.WriteString("# Resonant Notepad Benchmark Report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", r.GeneratedAtUTC.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Sessions: %d\n", r.Summary.SessionCount)
	fmt.Fprintf(&b, "- Average Harmony: %.6f\n", r.Summary.AverageHarmony)
	fmt.Fprintf(&b, "- Average Volatility: %.6f\n", r.Summary.AverageVolatility)
	fmt.Fprintf(&b, "- Average Low-Harmony Rate: %.6f\n", r.Summary.AverageLowHarmonyRate)
	fmt.Fprintf(&b, "- Viability Score: %.6f\n\n", r.Summary.ViabilityScore)

	b.WriteString("## Session Metrics\n\n")
	b.WriteString("| Session | Steps | Avg H | Min H | Max H | Volatility | Low-H Rate | Final L | Final J | Final P | Final W |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, s := range r.Sessions {
		fmt.Fprintf(&b, "| %s | %d | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
			s.Name, s.Steps, s.AvgHarmony, s.MinHarmony, s.MaxHarmony,
			s.Volatility, s.LowHarmonyRate, s.FinalL, s.FinalJ, s.FinalP, s.FinalW)
	}

	b.WriteString("\n## Notes\n\n")
	b.WriteString("- Higher harmony with lower volatility is preferred.\n")
	b.WriteString("- Low-harmony rate tracks instability windows.\n")
	b.WriteString("- Use results as trend indicators, not absolute truth.\n")
	return b.String()
}

func DumpJSON(path string, r Results) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	return math.Sqrt(variance / float64(len(values)))
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	out := values[0]
	for _, v := range values[1:] {
		if v < out {
			out = v
		}
	}
	return out
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	out := values[0]
	for _, v := range values[1:] {
		if v > out {
			out = v
		}
	}
	return out
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
