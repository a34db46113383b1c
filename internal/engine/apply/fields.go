package apply

import (
	"strconv"
	"strings"

	"github.com/cgartco6/costbyte-ai/internal/browser"
)

// fieldRule maps a semantic field to the substrings that identify it in a
// control's name, id, label or placeholder. First matching rule wins, so
// narrower rules (first/last name) come before broader ones (name).
type fieldRule struct {
	keys  []string
	value func(UserData) string
	demog bool // only filled when the user consented to share demographics
}

var fieldRules = []fieldRule{
	{keys: []string{"first_name", "firstname", "first name", "given"}, value: func(u UserData) string { return u.FirstName }},
	{keys: []string{"last_name", "lastname", "last name", "surname", "family"}, value: func(u UserData) string { return u.LastName }},
	{keys: []string{"full_name", "fullname", "full name", "your name", "name"}, value: UserData.FullName},
	{keys: []string{"email", "e-mail"}, value: func(u UserData) string { return u.Email }},
	{keys: []string{"phone", "mobile", "cell", "contact number", "tel"}, value: func(u UserData) string { return u.Phone }},
	{keys: []string{"street", "address line", "address"}, value: func(u UserData) string { return u.StreetAddress }},
	{keys: []string{"city", "town"}, value: func(u UserData) string { return u.City }},
	{keys: []string{"province", "state", "region"}, value: func(u UserData) string { return u.Province }},
	{keys: []string{"postal", "zip", "post code", "postcode"}, value: func(u UserData) string { return u.PostalCode }},
	{keys: []string{"experience", "years"}, value: func(u UserData) string { return strconv.Itoa(u.YearsExperience) }},
	{keys: []string{"salary", "remuneration", "ctc", "compensation"}, value: func(u UserData) string { return strconv.Itoa(u.SalaryExpectation) }},
	{keys: []string{"notice"}, value: func(u UserData) string { return strconv.Itoa(u.NoticePeriodDays) }},
	{keys: []string{"availability", "available", "start date"}, value: UserData.Availability},
	{keys: []string{"qualification", "education", "degree"}, value: func(u UserData) string { return u.Qualification }},
	{keys: []string{"gender", "sex"}, value: func(u UserData) string { return u.Gender }, demog: true},
	{keys: []string{"race", "ethnicity", "population group"}, value: func(u UserData) string { return u.Race }, demog: true},
	{keys: []string{"disability", "disabled"}, value: func(u UserData) string { return u.Disability }, demog: true},
}

// ValueFor resolves the value a control should be filled with. The second
// return is false when the control is not recognised, the resolved value is
// empty, or the field is demographic and the user withheld consent
// (demographic fields are left untouched, never filled with a placeholder).
func ValueFor(f browser.Field, u UserData) (string, bool) {
	haystack := strings.ToLower(strings.Join([]string{f.Name, f.ID, f.Label, f.Placeholder}, " "))
	if strings.TrimSpace(haystack) == "" {
		return "", false
	}
	for _, rule := range fieldRules {
		if !matchesAny(haystack, rule.keys) {
			continue
		}
		if rule.demog && !u.ShareDemographics {
			return "", false
		}
		v := rule.value(u)
		return v, v != ""
	}
	return "", false
}

func matchesAny(haystack string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}

// QuestionKind classifies free-text screening questions.
type QuestionKind string

const (
	QuestionExperience  QuestionKind = "experience"
	QuestionSalary      QuestionKind = "salary"
	QuestionVisa        QuestionKind = "visa"
	QuestionNotice      QuestionKind = "notice"
	QuestionDemographic QuestionKind = "demographic"
	QuestionGeneric     QuestionKind = "generic"
)

// ClassifyQuestion buckets a screening question by keyword.
func ClassifyQuestion(question string) QuestionKind {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "visa") || strings.Contains(q, "work permit") || strings.Contains(q, "sponsorship") || strings.Contains(q, "right to work"):
		return QuestionVisa
	case strings.Contains(q, "salary") || strings.Contains(q, "remuneration") || strings.Contains(q, "ctc") || strings.Contains(q, "compensation"):
		return QuestionSalary
	case strings.Contains(q, "notice"):
		return QuestionNotice
	case strings.Contains(q, "experience") || strings.Contains(q, "years"):
		return QuestionExperience
	case strings.Contains(q, "gender") || strings.Contains(q, "race") || strings.Contains(q, "ethnicity") || strings.Contains(q, "disability"):
		return QuestionDemographic
	default:
		return QuestionGeneric
	}
}

// AnswerQuestion produces an answer for a screening question, or false when
// no safe answer exists (generic questions, demographics without consent).
func AnswerQuestion(question string, u UserData) (string, bool) {
	switch ClassifyQuestion(question) {
	case QuestionExperience:
		return strconv.Itoa(u.YearsExperience), true
	case QuestionSalary:
		return strconv.Itoa(u.SalaryExpectation), true
	case QuestionVisa:
		// SA citizens and permanent residents need no permit.
		return "No", true
	case QuestionNotice:
		return u.Availability(), true
	case QuestionDemographic:
		if !u.ShareDemographics {
			return "", false
		}
		q := strings.ToLower(question)
		switch {
		case strings.Contains(q, "gender"):
			return u.Gender, u.Gender != ""
		case strings.Contains(q, "disability"):
			return u.Disability, u.Disability != ""
		default:
			return u.Race, u.Race != ""
		}
	default:
		return "", false
	}
}
