package intake

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Answer keys of the candidate-profile flow. The recruiter-facing intake maps
// one to one onto the employees table columns.
const (
	KeyFullName       = "full_name"
	KeyContactEmail   = "contact_email"
	KeyJurisdiction   = "jurisdiction"
	KeyEmploymentType = "employment_type"
	KeyHasNationalID  = "has_national_id"
	KeyNationalID     = "national_id"
	KeyPassportNo     = "passport_no"
	KeyStartDate      = "start_date"
)

var (
	errNotYesNo      = errors.New("answer yes or no")
	jurisdictionRe   = regexp.MustCompile(`^[A-Z]{2}$`)
	emailRe          = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	employmentKinds  = []string{"full_time", "part_time", "contractor", "intern"}
	errEmployment    = fmt.Errorf("must be one of %s", strings.Join(employmentKinds, ", "))
	errJurisdiction  = errors.New("must be a two-letter country code, e.g. MY")
	errEmailFormat   = errors.New("not a valid email address")
	errDateFormat    = errors.New("must be YYYY-MM-DD")
	errPassportShape = errors.New("must be a letter followed by 7 digits")
	passportRe       = regexp.MustCompile(`^[A-Z][0-9]{7}$`)
)

func yesNo(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "no":
		return nil
	default:
		return errNotYesNo
	}
}

func answeredYes(answers Answers, key string) bool {
	return strings.EqualFold(strings.TrimSpace(answers[key]), "yes")
}

// NewCandidateProfileFlow builds the recruiter intake wizard. Candidates with
// a national identity number register it directly; foreign hires branch to a
// passport number instead. Both paths converge on the start date.
func NewCandidateProfileFlow() (*Flow, error) {
	return NewFlow(
		Step{
			Key:    KeyFullName,
			Prompt: "Candidate full legal name",
		},
		Step{
			Key:    KeyContactEmail,
			Prompt: "Contact email",
			Validate: func(value string) error {
				if !emailRe.MatchString(value) {
					return errEmailFormat
				}
				return nil
			},
		},
		Step{
			Key:    KeyJurisdiction,
			Prompt: "Employment jurisdiction (country code)",
			Validate: func(value string) error {
				if !jurisdictionRe.MatchString(value) {
					return errJurisdiction
				}
				return nil
			},
		},
		Step{
			Key:    KeyEmploymentType,
			Prompt: "Employment type",
			Validate: func(value string) error {
				for _, kind := range employmentKinds {
					if value == kind {
						return nil
					}
				}
				return errEmployment
			},
		},
		Step{
			Key:      KeyHasNationalID,
			Prompt:   "Does the candidate hold a national identity number? (yes/no)",
			Validate: yesNo,
		},
		Step{
			Key:    KeyNationalID,
			Prompt: "National identity number",
			AppliesWhen: func(answers Answers) bool {
				return answeredYes(answers, KeyHasNationalID)
			},
		},
		Step{
			Key:    KeyPassportNo,
			Prompt: "Passport number",
			AppliesWhen: func(answers Answers) bool {
				return !answeredYes(answers, KeyHasNationalID)
			},
			Validate: func(value string) error {
				if !passportRe.MatchString(strings.ToUpper(value)) {
					return errPassportShape
				}
				return nil
			},
		},
		Step{
			Key:    KeyStartDate,
			Prompt: "Proposed start date (YYYY-MM-DD)",
			Validate: func(value string) error {
				if _, err := time.Parse("2006-01-02", value); err != nil {
					return errDateFormat
				}
				return nil
			},
		},
	)
}
