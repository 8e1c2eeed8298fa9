package internal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Convention identifies the filename convention a timestamp was taken from.
type Convention string

const (
	ConventionPixel      Convention = "pixel"
	ConventionCamera     Convention = "camera"
	ConventionScreenshot Convention = "screenshot"
	ConventionWhatsApp   Convention = "whatsapp"
	ConventionLightroom  Convention = "lightroom"
	ConventionFacebook   Convention = "facebook"
	ConventionSnapchat   Convention = "snapchat"
	ConventionNone       Convention = "none"
)

// Inference is the outcome of matching a filename against the rule table.
// Time is only meaningful when OK is set.
type Inference struct {
	Time       time.Time
	Convention Convention
	OK         bool
}

// Found reports whether a timestamp was inferred.
func (i Inference) Found() bool {
	return i.OK
}

// Rule is one entry of the ordered convention table. Extract returns
// matched=false to let the next rule try. An Undated rule claims names it
// cannot derive a time from.
type Rule struct {
	Convention Convention
	Extract    func(name, path string) (ts time.Time, matched bool, err error)
	Undated    bool
}

var (
	rePixel      = regexp.MustCompile(`PXL_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`)
	reCamera     = regexp.MustCompile(`IMG_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`)
	reScreenshot = regexp.MustCompile(`Screenshot_(\d{4})(\d{2})(\d{2})-(\d{2})(\d{2})(\d{2})`)
	reWhatsApp   = regexp.MustCompile(`(?:IMG|VID)-(\d{4})(\d{2})(\d{2})-WA\d+`)
	reLightroom  = regexp.MustCompile(`LRM_(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`)
)

const (
	facebookPrefix = "FB_IMG_"
	snapchatPrefix = "snapchat-"
)

// DefaultRules is the convention table in priority order; first match wins.
var DefaultRules = []Rule{
	{Convention: ConventionPixel, Extract: digitsRule(rePixel)},
	{Convention: ConventionCamera, Extract: digitsRule(reCamera)},
	{Convention: ConventionScreenshot, Extract: digitsRule(reScreenshot)},
	{Convention: ConventionWhatsApp, Extract: digitsRule(reWhatsApp)},
	{Convention: ConventionLightroom, Extract: digitsRule(reLightroom)},
	{Convention: ConventionFacebook, Extract: facebookRule},
	{Convention: ConventionSnapchat, Extract: snapchatRule, Undated: true},
}

// InferTimestamp matches name against DefaultRules.
func InferTimestamp(name, path string) (Inference, error) {
	return InferWith(DefaultRules, name, path)
}

// InferWith matches name against rules in order. The error is non-nil only
// when a rule matched but its digits do not form a valid calendar date.
func InferWith(rules []Rule, name, path string) (Inference, error) {
	for _, r := range rules {
		ts, ok, err := r.Extract(name, path)
		if err != nil {
			return Inference{Convention: r.Convention}, fmt.Errorf("%s: %w", name, err)
		}
		if ok {
			return Inference{Time: ts, Convention: r.Convention, OK: !r.Undated}, nil
		}
	}
	return Inference{Convention: ConventionNone}, nil
}

// IsSnapchatName reports whether name follows the unsupported Snapchat export convention.
func IsSnapchatName(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), snapchatPrefix)
}

// digitsRule builds an extractor from a regexp capturing either
// year/month/day or year/month/day/hour/minute/second.
func digitsRule(re *regexp.Regexp) func(name, path string) (time.Time, bool, error) {
	return func(name, _ string) (time.Time, bool, error) {
		m := re.FindStringSubmatch(name)
		if m == nil {
			return time.Time{}, false, nil
		}
		fields := make([]int, 6)
		for i, g := range m[1:] {
			n, err := strconv.Atoi(g)
			if err != nil {
				return time.Time{}, false, nil
			}
			fields[i] = n
		}
		ts, err := civil(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5])
		if err != nil {
			return time.Time{}, true, err
		}
		return ts, true, nil
	}
}

// facebookRule falls back to the modification time: Facebook exports carry
// no date in the name. The result is best-effort, mtime changes on copy.
func facebookRule(name, path string) (time.Time, bool, error) {
	if !strings.HasPrefix(name, facebookPrefix) || path == "" {
		return time.Time{}, false, nil
	}
	ts, err := getFileModTime(path)
	if err != nil {
		return time.Time{}, false, nil
	}
	return ts, true, nil
}

// snapchatRule claims the name; Snapchat exports carry no usable date.
func snapchatRule(name, _ string) (time.Time, bool, error) {
	return time.Time{}, IsSnapchatName(name), nil
}
