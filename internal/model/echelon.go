package model

// Echelon is the top-level label assigned to a statement
type Echelon string

const (
	EchelonTruth           Echelon = "Truth"
	EchelonPartialTruth    Echelon = "Partial Truth"
	EchelonContextualTruth Echelon = "Contextual Truth"
	EchelonOpinion         Echelon = "Opinion"
	EchelonBelief          Echelon = "Belief"
	EchelonSpeculation     Echelon = "Speculation"
	EchelonExaggeration    Echelon = "Exaggeration"
	EchelonSatire          Echelon = "Satire"
	EchelonMisinformation  Echelon = "Misinformation"
	EchelonMisusedLie      Echelon = "Misused Lie"
	EchelonDeliberateLie   Echelon = "Deliberate Lie"
	EchelonNeutral         Echelon = "Neutral"
)

// Subtype refines an Echelon. Subtypes are declared per Echelon and never invented at runtime.
type Subtype string

const (
	SubtypeObservableFact      Subtype = "Observable Fact"
	SubtypeHistoricalFact      Subtype = "Historical Fact"
	SubtypeUnspecified         Subtype = "Unspecified"
	SubtypeMissingContext      Subtype = "Missing Context"
	SubtypeConditional         Subtype = "Conditional"
	SubtypePersonalView        Subtype = "Personal View"
	SubtypeFaithClaim          Subtype = "Faith Claim"
	SubtypePrediction          Subtype = "Prediction"
	SubtypeHyperbole           Subtype = "Hyperbole"
	SubtypeParody              Subtype = "Parody"
	SubtypeHealthMyth          Subtype = "Health Myth"
	SubtypeFabricatedStatistic Subtype = "Fabricated Statistic"
	SubtypeConspiracyTheory    Subtype = "Conspiracy Theory"
	SubtypePropaganda          Subtype = "Propaganda"
	SubtypeInsufficientContent Subtype = "Insufficient Content"
)

// echelonTable is the closed enumeration in declaration order, with the
// subtypes each echelon admits.
var echelonTable = []struct {
	echelon  Echelon
	subtypes []Subtype
}{
	{EchelonTruth, []Subtype{SubtypeObservableFact, SubtypeHistoricalFact, SubtypeUnspecified}},
	{EchelonPartialTruth, []Subtype{SubtypeMissingContext}},
	{EchelonContextualTruth, []Subtype{SubtypeConditional}},
	{EchelonOpinion, []Subtype{SubtypePersonalView}},
	{EchelonBelief, []Subtype{SubtypeFaithClaim}},
	{EchelonSpeculation, []Subtype{SubtypePrediction}},
	{EchelonExaggeration, []Subtype{SubtypeHyperbole}},
	{EchelonSatire, []Subtype{SubtypeParody}},
	{EchelonMisinformation, []Subtype{SubtypeHealthMyth, SubtypeFabricatedStatistic}},
	{EchelonMisusedLie, []Subtype{SubtypeConspiracyTheory}},
	{EchelonDeliberateLie, []Subtype{SubtypePropaganda}},
	{EchelonNeutral, []Subtype{SubtypeInsufficientContent}},
}

// Echelons returns all echelons in declaration order
func Echelons() []Echelon {
	out := make([]Echelon, 0, len(echelonTable))
	for _, row := range echelonTable {
		out = append(out, row.echelon)
	}
	return out
}

// Valid reports whether e belongs to the closed enumeration
func (e Echelon) Valid() bool {
	for _, row := range echelonTable {
		if row.echelon == e {
			return true
		}
	}
	return false
}

// SubtypesFor returns the subtypes declared for an echelon (nil if the echelon is unknown)
func SubtypesFor(e Echelon) []Subtype {
	for _, row := range echelonTable {
		if row.echelon == e {
			out := make([]Subtype, len(row.subtypes))
			copy(out, row.subtypes)
			return out
		}
	}
	return nil
}

// ValidPair reports whether s is a declared subtype of e
func ValidPair(e Echelon, s Subtype) bool {
	for _, sub := range SubtypesFor(e) {
		if sub == s {
			return true
		}
	}
	return false
}

// ParseEchelon matches a label case-insensitively against the enumeration
func ParseEchelon(label string) (Echelon, bool) {
	for _, e := range Echelons() {
		if equalFold(string(e), label) {
			return e, true
		}
	}
	return "", false
}

// ParseSubtype matches a label case-insensitively against the subtypes of e
func ParseSubtype(e Echelon, label string) (Subtype, bool) {
	for _, s := range SubtypesFor(e) {
		if equalFold(string(s), label) {
			return s, true
		}
	}
	return "", false
}
