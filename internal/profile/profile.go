package profile

import "time"

// Profile is the per-user wellness profile backing personalization: booking
// category ordering, assistant context and onboarding state.
type Profile struct {
	UserID              string
	Name                string
	Interests           []string
	Goals               []string
	FitnessLevel        string
	SkinType            string
	Lifestyle           string
	BirthYear           int
	OnboardingCompleted bool
	UpdatedAt           time.Time
}

// UpdateInput carries a partial profile update; nil fields are unchanged.
type UpdateInput struct {
	Name                *string
	Interests           *[]string
	Goals               *[]string
	FitnessLevel        *string
	SkinType            *string
	Lifestyle           *string
	BirthYear           *int
	OnboardingCompleted *bool
}

func merge(p Profile, in UpdateInput) Profile {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Interests != nil {
		p.Interests = *in.Interests
	}
	if in.Goals != nil {
		p.Goals = *in.Goals
	}
	if in.FitnessLevel != nil {
		p.FitnessLevel = *in.FitnessLevel
	}
	if in.SkinType != nil {
		p.SkinType = *in.SkinType
	}
	if in.Lifestyle != nil {
		p.Lifestyle = *in.Lifestyle
	}
	if in.BirthYear != nil {
		p.BirthYear = *in.BirthYear
	}
	if in.OnboardingCompleted != nil {
		p.OnboardingCompleted = *in.OnboardingCompleted
	}
	return p
}
