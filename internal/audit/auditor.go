package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/adhamqabban37/vidrepair/internal/repair"
	"github.com/adhamqabban37/vidrepair/internal/validate"
)

// Result is the validated outcome for one unique URL.
type Result struct {
	URL       string           `json:"url"`
	Outcome   validate.Outcome `json:"outcome"`
	Locations []Finding        `json:"locations"`
}

// Report is what a full audit run produces.
type Report struct {
	Root      string    `json:"root"`
	Scanned   int       `json:"scanned"`
	Unique    int       `json:"unique"`
	StartedAt time.Time `json:"startedAt"`
	Elapsed   string    `json:"elapsed"`
	Results   []Result  `json:"results"`
}

// Broken returns the results that would not play. The per-outcome OK
// flag only says processing completed; playability lives in Reason.
func (r *Report) Broken() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome.Reason != validate.ReasonOK {
			out = append(out, res)
		}
	}
	return out
}

// SuccessRate is the fraction of unique URLs that validated as playable.
func (r *Report) SuccessRate() float64 {
	if len(r.Results) == 0 {
		return 1
	}
	ok := 0
	for _, res := range r.Results {
		if res.Outcome.Reason == validate.ReasonOK {
			ok++
		}
	}
	return float64(ok) / float64(len(r.Results))
}

// Auditor walks a tree and validates every unique YouTube reference.
// Resolver is optional; when set, AutoFix can propose replacements for
// broken references.
type Auditor struct {
	Strategy validate.Strategy
	Resolver *repair.Resolver
	Pace     *rate.Limiter
	Retry    validate.RetryConfig
	Exts     []string
	Log      *slog.Logger
}

// DefaultPace keeps audit traffic well under YouTube quota limits.
var DefaultPace = rate.Limit(2)

func (a *Auditor) logger() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

// Run scans root and validates each unique URL, paced by a.Pace.
func (a *Auditor) Run(ctx context.Context, root string) (*Report, error) {
	started := time.Now()

	findings, err := Scan(root, a.Exts)
	if err != nil {
		return nil, err
	}
	groups := Group(findings)
	a.logger().Info("audit scan complete",
		"root", root, "occurrences", len(findings), "unique", len(groups))

	pace := a.Pace
	if pace == nil {
		pace = rate.NewLimiter(DefaultPace, 1)
	}
	rc := a.Retry
	if rc.MaxAttempts == 0 {
		rc = validate.DefaultRetryConfig
	}

	report := &Report{
		Root:      root,
		Scanned:   len(findings),
		Unique:    len(groups),
		StartedAt: started,
	}
	for _, g := range groups {
		if err := pace.Wait(ctx); err != nil {
			return nil, err
		}
		outcome, err := validate.Retry(ctx, rc, func() (validate.Outcome, error) {
			return a.Strategy.Validate(ctx, g.URL)
		})
		if err != nil {
			outcome = validate.Fallback(g.URL, validate.ReasonValidationFailed, err.Error())
		}
		report.Results = append(report.Results, Result{
			URL:       g.URL,
			Outcome:   outcome,
			Locations: g.Locations,
		})
	}
	report.Elapsed = time.Since(started).Round(time.Millisecond).String()
	return report, nil
}

// ReplacementMap is the autofix artifact: proposed swaps for broken
// references, keyed by the original URL.
type ReplacementMap struct {
	GeneratedAt  time.Time                     `json:"generatedAt"`
	Replacements []repair.ReplacementCandidate `json:"replacements"`
}

// AutoFix searches for a working replacement for every broken result.
// URLs with no viable candidate are left out of the map.
func (a *Auditor) AutoFix(ctx context.Context, report *Report) (*ReplacementMap, error) {
	if a.Resolver == nil {
		return nil, fmt.Errorf("autofix requires a repair resolver")
	}

	rm := &ReplacementMap{GeneratedAt: time.Now().UTC()}
	for _, broken := range report.Broken() {
		topic := broken.Outcome.Title
		if topic == "" {
			topic = groupTopic(broken)
		}
		cand, err := a.Resolver.FindReplacement(ctx, broken.URL, topic)
		if err != nil {
			return rm, err
		}
		if cand == nil {
			a.logger().Warn("no replacement found", "url", broken.URL)
			continue
		}
		rm.Replacements = append(rm.Replacements, *cand)
	}
	return rm, nil
}

func groupTopic(res Result) string {
	g := URLGroup{URL: res.URL, Locations: res.Locations}
	return g.topicHint()
}

// WriteText renders the classified human-readable report.
func (r *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Video audit of %s\n", r.Root)
	fmt.Fprintf(w, "  occurrences: %d  unique: %d  elapsed: %s\n",
		r.Scanned, r.Unique, r.Elapsed)
	fmt.Fprintf(w, "  success rate: %.1f%%\n\n", r.SuccessRate()*100)

	byReason := map[validate.Reason][]Result{}
	for _, res := range r.Results {
		byReason[res.Outcome.Reason] = append(byReason[res.Outcome.Reason], res)
	}
	for _, reason := range validate.Reasons() {
		group := byReason[reason]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n", reason, len(group))
		for _, res := range group {
			fmt.Fprintf(w, "  %s\n", res.URL)
			for _, loc := range res.Locations {
				fmt.Fprintf(w, "    %s:%d\n", loc.File, loc.Line)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteJSON renders the replacement map for consumption by other tools.
func (rm *ReplacementMap) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rm)
}
