package domain

import (
	"fmt"
	"strings"
)

// AgeGroup is a closed set of consumer age brackets.
type AgeGroup string

const (
	AgeChild    AgeGroup = "child"
	AgeTeenager AgeGroup = "teenager"
	AgeAdult    AgeGroup = "adult"
	AgeSenior   AgeGroup = "senior"
)

// ActivityLevel is a closed set of physical activity levels.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// DietaryRestriction is a closed set of dietary regimes a consumer follows.
type DietaryRestriction string

const (
	RestrictionNone        DietaryRestriction = "none"
	RestrictionVegetarian  DietaryRestriction = "vegetarian"
	RestrictionVegan       DietaryRestriction = "vegan"
	RestrictionGlutenFree  DietaryRestriction = "gluten_free"
	RestrictionLactoseFree DietaryRestriction = "lactose_free"
	RestrictionHalal       DietaryRestriction = "halal"
	RestrictionKosher      DietaryRestriction = "kosher"
	RestrictionLowSodium   DietaryRestriction = "low_sodium"
	RestrictionDiabetic    DietaryRestriction = "diabetic"
)

// HealthGoal is a closed set of consumer health objectives.
type HealthGoal string

const (
	GoalMaintainWeight  HealthGoal = "maintain_weight"
	GoalLoseWeight      HealthGoal = "lose_weight"
	GoalGainWeight      HealthGoal = "gain_weight"
	GoalBuildMuscle     HealthGoal = "build_muscle"
	GoalImproveHealth   HealthGoal = "improve_health"
	GoalReduceSugar     HealthGoal = "reduce_sugar"
	GoalIncreaseProtein HealthGoal = "increase_protein"
)

var (
	ageGroups = map[string]AgeGroup{
		"child": AgeChild, "teenager": AgeTeenager, "adult": AgeAdult, "senior": AgeSenior,
	}
	activityLevels = map[string]ActivityLevel{
		"sedentary": ActivitySedentary, "light": ActivityLight, "moderate": ActivityModerate,
		"active": ActivityActive, "very_active": ActivityVeryActive,
	}
	dietaryRestrictions = map[string]DietaryRestriction{
		"none": RestrictionNone, "vegetarian": RestrictionVegetarian, "vegan": RestrictionVegan,
		"gluten_free": RestrictionGlutenFree, "lactose_free": RestrictionLactoseFree,
		"halal": RestrictionHalal, "kosher": RestrictionKosher,
		"low_sodium": RestrictionLowSodium, "diabetic": RestrictionDiabetic,
	}
	healthGoals = map[string]HealthGoal{
		"maintain_weight": GoalMaintainWeight, "lose_weight": GoalLoseWeight,
		"gain_weight": GoalGainWeight, "build_muscle": GoalBuildMuscle,
		"improve_health": GoalImproveHealth, "reduce_sugar": GoalReduceSugar,
		"increase_protein": GoalIncreaseProtein,
	}
)

// ParseAgeGroup validates a string against the closed age-bracket set.
func ParseAgeGroup(s string) (AgeGroup, error) {
	if v, ok := ageGroups[strings.ToLower(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: age_group %q", ErrUnrecognizedValue, s)
}

// ParseActivityLevel validates a string against the closed activity-level set.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	if v, ok := activityLevels[strings.ToLower(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: activity_level %q", ErrUnrecognizedValue, s)
}

// ParseDietaryRestriction validates a string against the closed restriction set.
func ParseDietaryRestriction(s string) (DietaryRestriction, error) {
	if v, ok := dietaryRestrictions[strings.ToLower(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: dietary_restriction %q", ErrUnrecognizedValue, s)
}

// ParseHealthGoal validates a string against the closed health-goal set.
func ParseHealthGoal(s string) (HealthGoal, error) {
	if v, ok := healthGoals[strings.ToLower(s)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: health_goal %q", ErrUnrecognizedValue, s)
}

// Profile holds a consumer's dietary restrictions, allergies, health goals and
// the numeric sensitivity/tolerance parameters that drive personalized scoring.
// Tolerances are grams per 100g; zero means no explicit ceiling. Sensitivities
// scale penalty severity and live in [0, inf).
//
// A freshly built Profile carries exactly what the caller provided. Derive must
// be called once afterwards to apply the age/goal/restriction-driven floors and
// clamps; scoring assumes a derived profile.
type Profile struct {
	Name                string               `json:"name"`
	AgeGroup            AgeGroup             `json:"age_group"`
	ActivityLevel       ActivityLevel        `json:"activity_level"`
	DietaryRestrictions []DietaryRestriction `json:"dietary_restrictions"`
	Allergies           []string             `json:"allergies"`
	HealthGoals         []HealthGoal         `json:"health_goals"`
	WeeklyBudget        float64              `json:"weekly_budget"`
	AlcoholAllowed      bool                 `json:"alcohol_allowed"`

	MaxSugarTolerance  float64 `json:"max_sugar_tolerance"`
	MaxSodiumTolerance float64 `json:"max_sodium_tolerance"`
	MinFiberPreference float64 `json:"min_fiber_preference"`
	MinProteinGoal     float64 `json:"min_protein_preference"`

	SugarSensitivity   float64 `json:"sugar_sensitivity"`
	SodiumSensitivity  float64 `json:"sodium_sensitivity"`
	CalorieSensitivity float64 `json:"calorie_sensitivity"`
}

// Derive applies the automatic profile adjustments: age brackets and dietary
// restrictions raise sensitivity floors and clamp tolerances, and minors never
// get alcohol regardless of input. Calling Derive twice is a no-op because every
// adjustment is a floor or a clamp.
func (p *Profile) Derive() {
	switch p.AgeGroup {
	case AgeChild:
		p.SugarSensitivity = max(p.SugarSensitivity, 0.3)
		p.SodiumSensitivity = max(p.SodiumSensitivity, 0.2)
		p.AlcoholAllowed = false
	case AgeTeenager:
		p.SugarSensitivity = max(p.SugarSensitivity, 0.1)
		p.AlcoholAllowed = false
	case AgeSenior:
		p.SodiumSensitivity = max(p.SodiumSensitivity, 0.2)
		p.CalorieSensitivity = max(p.CalorieSensitivity, 0.1)
	}

	if p.HasGoal(GoalLoseWeight) {
		p.CalorieSensitivity = max(p.CalorieSensitivity, 0.3)
		p.SugarSensitivity = max(p.SugarSensitivity, 0.2)
	}
	if p.HasGoal(GoalReduceSugar) {
		p.SugarSensitivity = max(p.SugarSensitivity, 0.5)
	}

	if p.HasRestriction(RestrictionDiabetic) {
		p.SugarSensitivity = max(p.SugarSensitivity, 0.8)
		if p.MaxSugarTolerance == 0 || p.MaxSugarTolerance > 5.0 {
			p.MaxSugarTolerance = 5.0
		}
	}
	if p.HasRestriction(RestrictionLowSodium) {
		p.SodiumSensitivity = max(p.SodiumSensitivity, 0.6)
		if p.MaxSodiumTolerance == 0 || p.MaxSodiumTolerance > 0.3 {
			p.MaxSodiumTolerance = 0.3
		}
	}
}

// HasGoal reports whether the profile declares the given health goal.
func (p *Profile) HasGoal(goal HealthGoal) bool {
	for _, g := range p.HealthGoals {
		if g == goal {
			return true
		}
	}
	return false
}

// HasRestriction reports whether the profile declares the given restriction.
func (p *Profile) HasRestriction(r DietaryRestriction) bool {
	for _, dr := range p.DietaryRestrictions {
		if dr == r {
			return true
		}
	}
	return false
}

// AlcoholRestrictionLevel returns how strongly alcohol is restricted for this
// profile: 1.0 forbidden, 0.0 unrestricted, intermediate values scale the
// personalized alcohol penalty.
func (p *Profile) AlcoholRestrictionLevel() float64 {
	if !p.AlcoholAllowed {
		return 1.0
	}
	switch {
	case p.AgeGroup == AgeChild || p.AgeGroup == AgeTeenager:
		return 1.0
	case p.HasGoal(GoalImproveHealth):
		return 0.8
	case p.HasGoal(GoalLoseWeight):
		return 0.6
	}
	return 0.0
}

// SugarPenaltyMultiplier scales sugar penalties by the profile's sensitivity.
func (p *Profile) SugarPenaltyMultiplier() float64 { return 1.0 + p.SugarSensitivity }

// SodiumPenaltyMultiplier scales sodium penalties by the profile's sensitivity.
func (p *Profile) SodiumPenaltyMultiplier() float64 { return 1.0 + p.SodiumSensitivity }

// CaloriePenaltyMultiplier scales calorie penalties by the profile's sensitivity.
func (p *Profile) CaloriePenaltyMultiplier() float64 { return 1.0 + p.CalorieSensitivity }

// CheckAllergies returns the declared allergens detected in the product's
// category and ingredient tags, deduplicated. Matching is a case-insensitive
// substring check per allergen.
func (p *Profile) CheckAllergies(categories, ingredients []string) []string {
	if len(p.Allergies) == 0 {
		return nil
	}

	var detected []string
	seen := make(map[string]bool)
	for _, allergen := range p.Allergies {
		rule := KeywordRule{Keywords: []string{strings.ToLower(allergen)}, Mode: MatchSubstring}
		if rule.MatchesAny(categories) || rule.MatchesAny(ingredients) {
			if !seen[allergen] {
				detected = append(detected, allergen)
				seen[allergen] = true
			}
		}
	}
	return detected
}

// Restriction keyword tables. Each restriction is a rule evaluated against the
// concatenation of category tags, label tags, and product name. Category tags
// come accent-stripped while product names do not, so French keywords carry
// both spellings.
var (
	meatRule = KeywordRule{Mode: MatchSubstring, Keywords: []string{
		"meat", "fish", "seafood", "poultry", "chicken", "beef", "pork", "lamb",
		"turkey", "duck", "salmon", "tuna", "ham", "bacon", "sausage", "charcuterie",
		"jambon", "saucisse", "chorizo", "salami", "viande",
	}}
	animalRule = KeywordRule{Mode: MatchSubstring, Keywords: append(meatRule.Keywords,
		"dairy", "milk", "cheese", "yogurt", "butter", "cream", "eggs", "honey",
		"lait", "fromage", "yaourt", "beurre", "crème", "creme", "œuf", "oeuf", "miel",
	)}
	glutenRule = KeywordRule{Mode: MatchSubstring, Keywords: []string{
		"wheat", "gluten", "bread", "pasta", "cereal", "flour", "barley", "rye",
		"blé", "ble", "farine", "pain", "pâtes", "pates", "céréales", "cereales",
		"orge", "seigle", "avoine",
	}}
	lactoseRule = KeywordRule{Mode: MatchSubstring, Keywords: []string{
		"dairy", "milk", "cheese", "yogurt", "butter", "cream", "lactose",
		"lait", "fromage", "yaourt", "beurre", "crème", "creme",
	}}
	halalCertifiedRule = KeywordRule{Mode: MatchSubstring, Keywords: []string{
		"halal", "hallal", "halaal", "certified-halal", "certifie-halal",
		"halal-certified", "muslim-friendly",
	}}
	halalViolationRule = KeywordRule{Mode: MatchSubstring, Keywords: []string{
		"pork", "pig", "ham", "bacon", "prosciutto", "pancetta",
		"jambon", "porc", "cochon", "lard", "rillettes", "boudin",
		"alcohol", "wine", "beer", "spirits", "liqueur", "vodka", "whisky", "rum", "gin",
		"alcool", "vin", "bière", "biere", "spiritueux", "cognac", "champagne",
		"chorizo", "salami", "saucisson", "mortadelle",
		"gelatin", "gelatine",
	}}
	porkContextRule = KeywordRule{Mode: MatchSubstring, Keywords: []string{
		"porc", "pork", "cochon", "pig",
	}}
)

// CheckDietaryRestrictions returns the declared restrictions violated by a
// product, judged from its categories, labels and name. An explicit halal
// certification overrides every halal violation keyword.
func (p *Profile) CheckDietaryRestrictions(categories, labels []string, name string) []DietaryRestriction {
	texts := make([]string, 0, len(categories)+len(labels)+1)
	texts = append(texts, categories...)
	texts = append(texts, labels...)
	texts = append(texts, name)

	var violations []DietaryRestriction
	for _, restriction := range p.DietaryRestrictions {
		switch restriction {
		case RestrictionVegetarian:
			if meatRule.MatchesAny(texts) {
				violations = append(violations, restriction)
			}
		case RestrictionVegan:
			if animalRule.MatchesAny(texts) {
				violations = append(violations, restriction)
			}
		case RestrictionGlutenFree:
			if glutenRule.MatchesAny(texts) {
				violations = append(violations, restriction)
			}
		case RestrictionLactoseFree:
			if lactoseRule.MatchesAny(texts) {
				violations = append(violations, restriction)
			}
		case RestrictionHalal:
			if halalCertifiedRule.MatchesAny(texts) {
				continue
			}
			if halalViolationRule.MatchesAny(texts) {
				violations = append(violations, restriction)
			} else if (KeywordRule{Mode: MatchSubstring, Keywords: []string{"charcuterie"}}).MatchesAny(texts) &&
				porkContextRule.MatchesAny(texts) {
				violations = append(violations, restriction)
			}
		}
	}
	return violations
}

// Label returns a display form of a restriction ("gluten_free" -> "Gluten Free").
func (r DietaryRestriction) Label() string {
	words := strings.Split(string(r), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// NeutralProfile returns the profile used for non-personalized scoring: no
// restrictions, no allergies, every sensitivity at zero, alcohol allowed. The
// category-only adjustment path is the personalized pipeline run with this
// profile.
func NeutralProfile() *Profile {
	return &Profile{
		Name:           "",
		AgeGroup:       AgeAdult,
		ActivityLevel:  ActivityModerate,
		AlcoholAllowed: true,
	}
}

// DefaultProfile is the fallback used when a consumer has not saved a profile:
// a moderate adult maintaining weight, alcohol allowed, default weekly budget.
func DefaultProfile(name string) *Profile {
	p := &Profile{
		Name:           name,
		AgeGroup:       AgeAdult,
		ActivityLevel:  ActivityModerate,
		HealthGoals:    []HealthGoal{GoalMaintainWeight},
		WeeklyBudget:   50.0,
		AlcoholAllowed: true,
	}
	p.Derive()
	return p
}
