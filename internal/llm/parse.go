package llm

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/echelon/internal/model"
)

// ErrUnparsedReply is returned when a reply does not name a known echelon
var ErrUnparsedReply = errors.New("reply does not follow the echelon output format")

var lawRefPattern = regexp.MustCompile(`(?i)\bLAW\s*([1-7])\b`)

// echelonCatalog lists echelons and their subtypes for the prompt
func echelonCatalog() string {
	var b strings.Builder
	for _, e := range model.Echelons() {
		subs := model.SubtypesFor(e)
		names := make([]string, len(subs))
		for i, s := range subs {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, "- %s: %s\n", e, strings.Join(names, ", "))
	}
	return b.String()
}

// ParseReply extracts the structured fields from a model reply. The echelon
// must belong to the enumeration; an undeclared subtype is replaced with the
// echelon's first declared subtype and reported via ok=false so the caller
// can warn. Law references are returned in LAW 1..LAW 7 order.
func ParseReply(reply string) (result model.Classification, ok bool, err error) {
	fields := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(reply))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimLeft(line, "*-# ")
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.Trim(strings.TrimSpace(key), "*"))
		value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "*"))
		switch {
		case key == "echelon", key == "subtype", key == "explanation":
			if _, seen := fields[key]; !seen {
				fields[key] = value
			}
		case strings.HasPrefix(key, "law alert"):
			fields["law"] = strings.TrimSpace(fields["law"] + " " + value)
		}
	}

	echelon, known := model.ParseEchelon(fields["echelon"])
	if !known {
		return model.Classification{}, false, fmt.Errorf("%w: echelon %q", ErrUnparsedReply, fields["echelon"])
	}

	ok = true
	subtype, known := model.ParseSubtype(echelon, fields["subtype"])
	if !known {
		subtype = model.SubtypesFor(echelon)[0]
		ok = false
	}

	return model.Classification{
		Echelon:     echelon,
		Subtype:     subtype,
		Explanation: fields["explanation"],
		Laws:        lawRefs(fields["law"]),
	}, ok, nil
}

// lawRefs extracts LAW n references, deduplicated and ordered by law number
func lawRefs(text string) []model.LawID {
	var present [8]bool
	for _, m := range lawRefPattern.FindAllStringSubmatch(text, -1) {
		present[m[1][0]-'0'] = true
	}

	refs := make([]model.LawID, 0)
	for n := 1; n <= 7; n++ {
		if present[n] {
			refs = append(refs, model.LawID(fmt.Sprintf("LAW %d", n)))
		}
	}
	return refs
}
