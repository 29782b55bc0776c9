package classify

import "github.com/ppiankov/echelon/internal/model"

// Reserved entries. They carry no triggers and are selected by the classifier
// only after every content rule has been tried.
var (
	NeutralRule = Rule{
		ID:          "neutral",
		Echelon:     model.EchelonNeutral,
		Subtype:     model.SubtypeInsufficientContent,
		Explanation: "The statement is too short to carry a classifiable claim.",
	}

	FallbackRule = Rule{
		ID:          "fallback",
		Echelon:     model.EchelonTruth,
		Subtype:     model.SubtypeUnspecified,
		Explanation: "No misleading structure was detected; the statement is treated as a plain claim.",
	}
)

// DefaultRules returns the canonical rule table in evaluation order.
// Earlier rules win: a conspiracy phrase outranks the hedging that may wrap it.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID: "conspiracy",
			Triggers: []string{
				"earth is flat", "vaccines contain demons", "vaccines contain microchips",
				"moon landing was fake", "moon landing was faked", "chemtrails",
				"lizard people", "5g causes", "new world order", "false flag",
			},
			Echelon:     model.EchelonMisusedLie,
			Subtype:     model.SubtypeConspiracyTheory,
			Explanation: "Presents a debunked conspiracy narrative as established fact.",
		},
		{
			ID: "propaganda",
			Triggers: []string{
				"the enemy within", "only we can save", "they want to destroy",
				"enemies of the people", "traitors to the nation",
			},
			Echelon:     model.EchelonDeliberateLie,
			Subtype:     model.SubtypePropaganda,
			Explanation: "Uses us-versus-them framing designed to mobilize rather than inform.",
		},
		{
			ID: "health-myth",
			Triggers: []string{
				"cures cancer", "miracle cure", "detox your", "boosts your immune system overnight",
				"doctors don't want you to know",
			},
			Echelon:     model.EchelonMisinformation,
			Subtype:     model.SubtypeHealthMyth,
			Explanation: "Makes a health claim that is not supported by medical evidence.",
		},
		{
			ID: "fabricated-stat",
			Triggers: []string{
				"100% of", "9 out of 10", "studies prove", "statistics prove",
			},
			Echelon:     model.EchelonMisinformation,
			Subtype:     model.SubtypeFabricatedStatistic,
			Explanation: "Cites an unsourced or implausibly absolute statistic.",
		},
		{
			ID:          "satire",
			Triggers:    []string{"satire", "parody", "in a shocking twist", "area man"},
			Echelon:     model.EchelonSatire,
			Subtype:     model.SubtypeParody,
			Explanation: "Signals humorous or exaggerated intent rather than a literal claim.",
		},
		{
			ID: "hyperbole",
			Triggers: []string{
				"everyone knows", "nobody ever", "a million times", "worst ever", "best ever",
				"literally dying", "since the dawn of time",
			},
			Echelon:     model.EchelonExaggeration,
			Subtype:     model.SubtypeHyperbole,
			Explanation: "Overstates scale or universality beyond what the claim can support.",
		},
		{
			ID: "prediction",
			Triggers: []string{
				"will probably", "is going to", "might be", "could be", "in the future", "i predict",
			},
			Echelon:     model.EchelonSpeculation,
			Subtype:     model.SubtypePrediction,
			Explanation: "Describes an outcome that has not happened and cannot yet be verified.",
		},
		{
			ID: "faith",
			Triggers: []string{
				"god wants", "god is", "the universe wants", "it was meant to be", "destiny", "karma",
			},
			Echelon:     model.EchelonBelief,
			Subtype:     model.SubtypeFaithClaim,
			Explanation: "Rests on faith or worldview rather than verifiable evidence.",
		},
		{
			ID: "opinion",
			Triggers: []string{
				"in my opinion", "i think", "i feel", "is the best", "is the worst",
				"overrated", "underrated", "should be banned",
			},
			Echelon:     model.EchelonOpinion,
			Subtype:     model.SubtypePersonalView,
			Explanation: "Expresses a personal judgment; hedging does not remove the claim it makes.",
		},
		{
			ID: "cherry-pick",
			Triggers: []string{
				"studies show", "research shows", "experts say", "some say", "sources say",
			},
			Echelon:     model.EchelonPartialTruth,
			Subtype:     model.SubtypeMissingContext,
			Explanation: "Appeals to unnamed evidence while omitting the context needed to weigh it.",
		},
		{
			ID: "conditional",
			Triggers: []string{
				"depends on", "in some cases", "usually", "generally", "under certain conditions",
			},
			Echelon:     model.EchelonContextualTruth,
			Subtype:     model.SubtypeConditional,
			Explanation: "Holds only under conditions the statement itself names.",
		},
		{
			ID: "observable",
			Triggers: []string{
				"sky is blue", "water boils at 100", "earth orbits the sun", "earth is round",
				"water is wet", "the sun rises in the east",
			},
			Echelon:     model.EchelonTruth,
			Subtype:     model.SubtypeObservableFact,
			Explanation: "States a directly observable and widely verified fact.",
		},
		{
			ID: "historical",
			Triggers: []string{
				"world war ii ended in 1945", "declaration of independence was signed",
				"the berlin wall fell", "apollo 11 landed",
			},
			Echelon:     model.EchelonTruth,
			Subtype:     model.SubtypeHistoricalFact,
			Explanation: "States a documented historical event.",
		},
	}
}
