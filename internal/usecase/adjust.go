package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/yumi/backend/internal/domain"
)

// Category detection rules. Categories are matched as substrings of the tag
// list; alcohol uses whole-tag / whole-word matching so "gin" never fires
// inside "virgin".
var (
	beverageRule = domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"beverage"}}
	sodaRule     = domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"soda", "soft-drink", "cola"}}
	candyRule    = domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"candy", "confectionery", "sweets", "chocolate"}}
	waterRule    = domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"water", "mineral-water"}}
	snackRule    = domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"snack"}}
	dairyRule    = domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"dairy"}}
	produceRule  = domain.KeywordRule{Mode: domain.MatchSubstring, Keywords: []string{"fruit", "vegetable"}}

	alcoholTagRule = domain.KeywordRule{Mode: domain.MatchWholeTag, Keywords: []string{
		"alcoholic", "alcohol", "wine", "wines", "beer", "beers", "spirits", "liqueur",
		"liqueurs", "vodka", "whisky", "rum", "gin",
	}}
	alcoholNameRule = domain.KeywordRule{Mode: domain.MatchWholeWord, Keywords: []string{
		"alcool", "alcohol", "wine", "vin", "bière", "biere", "beer", "vodka", "whisky", "rum",
		"gin", "cognac", "champagne",
	}}
	waterNameRule = domain.KeywordRule{Mode: domain.MatchWholeWord, Keywords: []string{"water", "eau"}}
)

// DetectAlcohol reports whether a product is alcoholic, from its category tags
// (whole-tag match) and product name (whole-word match).
func DetectAlcohol(categories []string, name string) bool {
	return alcoholTagRule.MatchesAny(categories) || alcoholNameRule.Matches(name)
}

// Nutrient penalty parameters of the personalized pipeline.
const (
	generalSugarThreshold  = 35.0  // g/100g before the soft sugar penalty fires
	generalSodiumThreshold = 1.2   // g/100g before the soft sodium penalty fires
	calorieThreshold       = 450.0 // kcal/100g before the calorie penalty fires
	saltToSodium           = 0.4   // 1g salt ~ 0.4g sodium
)

// AdjustScore runs the layered adjustment pipeline on a base model score:
// allergy and dietary blocking, alcohol restriction, profile-weighted nutrient
// penalties, health-goal bonuses, then the category heuristic chain. The
// category-only (non-personalized) path is this same pipeline invoked with
// domain.NeutralProfile(). The returned score is clamped to [1, 100]; warnings
// accumulate in emission order; a true blocked flag is terminal.
func AdjustScore(base float64, p *domain.Product, features map[string]float64, profile *domain.Profile) (float64, []string, bool) {
	if profile == nil {
		profile = domain.NeutralProfile()
	}

	score := base
	var warnings []string

	// 1. Allergies block everything else.
	if allergens := profile.CheckAllergies(p.Categories, p.Ingredients); len(allergens) > 0 {
		warnings = append(warnings, fmt.Sprintf("allergy detected: %s", strings.Join(allergens, ", ")))
		return 1, warnings, true
	}

	// 2. Dietary restrictions block as well.
	if violations := profile.CheckDietaryRestrictions(p.Categories, p.Labels, p.Name); len(violations) > 0 {
		labels := make([]string, len(violations))
		for i, v := range violations {
			labels[i] = v.Label()
		}
		warnings = append(warnings, fmt.Sprintf("not suitable for diet: %s", strings.Join(labels, ", ")))
		return 1, warnings, true
	}

	// 3. Alcohol: always capped, blocked or penalized per profile.
	isAlcohol := DetectAlcohol(p.Categories, p.Name)
	if isAlcohol {
		restriction := profile.AlcoholRestrictionLevel()
		if restriction >= 0.8 {
			warnings = append(warnings, "alcohol not permitted for this profile")
			return 1, warnings, true
		}

		score = math.Min(score, 10)
		if p.AlcoholByVolume > 0 {
			score -= math.Min(p.AlcoholByVolume*0.5, 8)
		}
		if restriction > 0 {
			score -= restriction * 80
			warnings = append(warnings, fmt.Sprintf("alcoholic product (restriction: %.0f%%)", restriction*100))
		} else {
			warnings = append(warnings, "alcoholic product")
		}
		score = math.Max(score, 1)
	}

	sugars := features["sugars_100g"]
	sodium := features["sodium_100g"]
	salt := features["salt_100g"]
	energy := features["energy_100g"]

	if sodium == 0 && salt > 0 {
		sodium = salt * saltToSodium
	}

	// 4. Nutrient penalties, cumulative, each independently capped.
	if profile.MaxSugarTolerance > 0 && sugars > profile.MaxSugarTolerance {
		excess := sugars - profile.MaxSugarTolerance
		score -= math.Min(excess*profile.SugarPenaltyMultiplier()*0.8, 30)
		warnings = append(warnings, fmt.Sprintf("too much sugar: %.1fg (limit: %.1fg)", sugars, profile.MaxSugarTolerance))
	} else if sugars > generalSugarThreshold {
		score -= math.Min((sugars-generalSugarThreshold)*profile.SugarPenaltyMultiplier()*0.4, 15)
		if profile.SugarSensitivity > 0.6 {
			warnings = append(warnings, fmt.Sprintf("very sugary product: %.1fg/100g", sugars))
		}
	}

	if profile.MaxSodiumTolerance > 0 && sodium > profile.MaxSodiumTolerance {
		excess := sodium - profile.MaxSodiumTolerance
		score -= math.Min(excess*profile.SodiumPenaltyMultiplier()*25, 30)
		warnings = append(warnings, fmt.Sprintf("too much sodium: %.2fg (limit: %.2fg)", sodium, profile.MaxSodiumTolerance))
	} else if sodium > generalSodiumThreshold {
		score -= math.Min((sodium-generalSodiumThreshold)*profile.SodiumPenaltyMultiplier()*15, 15)
		if profile.SodiumSensitivity > 0.5 {
			warnings = append(warnings, fmt.Sprintf("very salty product: %.2fg/100g", sodium))
		}
	}

	if energy > calorieThreshold {
		score -= math.Min((energy-calorieThreshold)/40*profile.CaloriePenaltyMultiplier(), 15)
		if profile.CalorieSensitivity > 0.5 {
			warnings = append(warnings, fmt.Sprintf("calorie-dense product: %.0f kcal/100g", energy))
		}
	}

	// 5. Health-goal bonuses.
	if fiber := features["fiber_100g"]; profile.HasGoal(domain.GoalImproveHealth) && fiber > 5 {
		score += math.Min(fiber*2, 10)
	}
	if proteins := features["proteins_100g"]; profile.HasGoal(domain.GoalBuildMuscle) && proteins > 15 {
		score += math.Min((proteins-15)*1.5, 15)
	}

	// 6. Category heuristics. The chain has no alcohol case, so for an
	// alcoholic product it can only push the capped score further down
	// (a sugary wine still takes the soda penalty).
	score = adjustByCategory(score, p, sugars, energy, profile)

	return math.Max(1, math.Min(100, score)), warnings, false
}

// adjustByCategory applies the priority-ordered exclusive category chain:
// soda > candy > snack > water > dairy > produce. First match wins; a product
// tagged both snack and dairy only receives the snack treatment. Coefficients
// are scaled by the profile's penalty multipliers, so a neutral profile yields
// the flat non-personalized heuristics.
func adjustByCategory(score float64, p *domain.Product, sugars, energy float64, profile *domain.Profile) float64 {
	isBeverage := beverageRule.MatchesAny(p.Categories)
	isSoda := sodaRule.MatchesAny(p.Categories)
	isCandy := candyRule.MatchesAny(p.Categories)
	isWater := waterRule.MatchesAny(p.Categories) || waterNameRule.Matches(p.Name)
	isSnack := snackRule.MatchesAny(p.Categories)

	sugarMult := profile.SugarPenaltyMultiplier()
	calorieMult := profile.CaloriePenaltyMultiplier()

	switch {
	case isSoda || (isBeverage && sugars > 5):
		if sugars > 10 {
			score -= math.Min((sugars-5)*5*sugarMult, 40)
		}
		if energy > 150 {
			score -= 20 * calorieMult
		}
		score = math.Min(score, 30)

	case isCandy:
		if sugars > 30 {
			score -= math.Min((sugars-20)*3*sugarMult, 50)
		}
		score = math.Min(score, 25)

	case isSnack:
		if energy > 400 {
			score -= (energy - 400) / 20 * calorieMult
		}
		score = math.Min(score, 45)

	case isWater:
		score = math.Max(score, 85)
		if sugars == 0 && energy < 10 {
			score = math.Max(score, 95)
		}

	case dairyRule.MatchesAny(p.Categories):
		if sugars < 15 && energy < 200 {
			score += 10
		}

	case produceRule.MatchesAny(p.Categories):
		score += 15
		score = math.Max(score, 75)
	}

	return score
}

// Interpret maps a final score to its human-readable interpretation and
// severity color, with dedicated messages for blocked and alcoholic products.
func Interpret(score float64, blocked, alcohol, personalized bool) (string, string) {
	switch {
	case blocked:
		return "not recommended for your profile", domain.ColorRed
	case alcohol:
		return "alcoholic product, not advised", domain.ColorRed
	case score >= 80:
		return "excellent nutritional choice", domain.ColorGreen
	case score >= 60:
		return "good nutritional choice", domain.ColorYellow
	case score >= 40:
		return "moderate choice", domain.ColorOrange
	default:
		if personalized {
			return "best avoided for your profile", domain.ColorRed
		}
		return "consume in moderation", domain.ColorRed
	}
}
