package law

import "github.com/ppiankov/echelon/internal/model"

var (
	toneCues       = []string{"!!", "outrageous", "disgusting", "i'm so angry", "how dare"}
	intentCues     = []string{"i didn't mean", "no offense", "just saying", "just kidding", "not to be rude"}
	hedgingCues    = []string{"in my opinion", "i feel", "i think", "i believe", "personally", "it seems to me"}
	contextCues    = []string{"out of context", "depends on", "in this context", "in some cases"}
	reachCues      = []string{"share this", "went viral", "spread the word", "everyone is saying", "retweet"}
	repetitionCues = []string{"again and again", "over and over", "i keep saying", "as i said", "for the last time", "i repeat"}
)

// DefaultLaws returns the seven Truth Echelon Laws in declaration order
func DefaultLaws() []Law {
	return []Law{
		{
			ID:          model.Law1,
			Name:        "The Claim Stands",
			Description: "The claim stands regardless of emotional tone.",
			Cues:        toneCues,
			Match:       ContainsAny(toneCues...),
		},
		{
			ID:          model.Law2,
			Name:        "Structure Over Intent",
			Description: "Intent doesn't erase a statement's structure.",
			Cues:        intentCues,
			Match:       ContainsAny(intentCues...),
		},
		{
			ID:          model.Law3,
			Name:        "No Opinion Shield",
			Description: "\"In my opinion\" or \"I feel\" does not shield a statement from classification.",
			Cues:        hedgingCues,
			Match:       ContainsAny(hedgingCues...),
		},
		{
			ID:          model.Law4,
			Name:        "Context Matters",
			Description: "Context affects meaning.",
			Cues:        contextCues,
			Match:       ContainsAny(contextCues...),
		},
		{
			ID:          model.Law5,
			Name:        "Shared Burden of Clarity",
			Description: "Both speaker and listener share the burden of clarity.",
			Cues:        []string{"trailing ?"},
			Match:       EndsWithQuestion(),
		},
		{
			ID:          model.Law6,
			Name:        "Structure, Function, Reach",
			Description: "Structure, function, and reach determine classification, not emotions.",
			Cues:        reachCues,
			Match:       ContainsAny(reachCues...),
		},
		{
			ID:          model.Law7,
			Name:        "Repetition Is Not Proof",
			Description: "Repetition doesn't make something truer.",
			Cues:        repetitionCues,
			Match:       ContainsAny(repetitionCues...),
		},
	}
}
