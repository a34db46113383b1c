package apply

import (
	"testing"

	"github.com/cgartco6/costbyte-ai/internal/browser"
)

var testUser = UserData{
	UserID:            "u1",
	FirstName:         "Thabo",
	LastName:          "Nkosi",
	Email:             "thabo@example.com",
	Phone:             "+27821234567",
	StreetAddress:     "12 Long Street",
	City:              "Cape Town",
	Province:          "Western Cape",
	PostalCode:        "8001",
	YearsExperience:   6,
	SalaryExpectation: 720000,
	NoticePeriodDays:  30,
	Qualification:     "BSc Computer Science",
	Employed:          true,
	CVPath:            "/data/cv.pdf",
	PhotoPath:         "/data/photo.jpg",
	Gender:            "Male",
	Race:              "African",
	Disability:        "None",
	ShareDemographics: true,
}

func TestValueFor(t *testing.T) {
	tests := []struct {
		name  string
		field browser.Field
		want  string
		ok    bool
	}{
		{"first name by name attr", browser.Field{Name: "first_name"}, "Thabo", true},
		{"last name by label", browser.Field{Label: "Surname"}, "Nkosi", true},
		{"full name before bare name", browser.Field{Placeholder: "Your full name"}, "Thabo Nkosi", true},
		{"bare name falls to full name", browser.Field{Name: "name"}, "Thabo Nkosi", true},
		{"email", browser.Field{ID: "applicant-email"}, "thabo@example.com", true},
		{"phone by placeholder", browser.Field{Placeholder: "Mobile number"}, "+27821234567", true},
		{"street", browser.Field{Label: "Street address"}, "12 Long Street", true},
		{"city", browser.Field{Name: "city"}, "Cape Town", true},
		{"province", browser.Field{Label: "Province"}, "Western Cape", true},
		{"postal code", browser.Field{Name: "postal_code"}, "8001", true},
		{"experience", browser.Field{Label: "Years of experience"}, "6", true},
		{"salary", browser.Field{Label: "Expected salary (CTC)"}, "720000", true},
		{"notice", browser.Field{Label: "Notice period"}, "30", true},
		{"availability while employed", browser.Field{Label: "Availability"}, "30 days", true},
		{"qualification", browser.Field{Name: "highest_qualification"}, "BSc Computer Science", true},
		{"gender with consent", browser.Field{Name: "gender"}, "Male", true},
		{"unrecognised", browser.Field{Name: "favourite_colour"}, "", false},
		{"anonymous control", browser.Field{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ValueFor(tt.field, testUser)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ValueFor = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValueForDemographicsWithoutConsent(t *testing.T) {
	u := testUser
	u.ShareDemographics = false
	for _, f := range []browser.Field{
		{Name: "gender"},
		{Label: "Population group"},
		{Label: "Do you have a disability?"},
	} {
		if got, ok := ValueFor(f, u); ok {
			t.Errorf("demographic field %+v filled without consent: %q", f, got)
		}
	}
	// Non-demographic fields are unaffected by the consent flag.
	if got, ok := ValueFor(browser.Field{Name: "email"}, u); !ok || got != u.Email {
		t.Errorf("email = (%q, %v)", got, ok)
	}
}

func TestValueForAvailabilityUnemployed(t *testing.T) {
	u := testUser
	u.Employed = false
	if got, ok := ValueFor(browser.Field{Label: "When are you available to start?"}, u); !ok || got != "Immediately" {
		t.Errorf("availability = (%q, %v)", got, ok)
	}
}

func TestClassifyQuestion(t *testing.T) {
	tests := []struct {
		q    string
		want QuestionKind
	}{
		{"How many years of experience do you have with Go?", QuestionExperience},
		{"What is your expected salary?", QuestionSalary},
		{"What is your current CTC?", QuestionSalary},
		{"Do you require visa sponsorship?", QuestionVisa},
		{"Do you have the right to work in South Africa?", QuestionVisa},
		{"What is your notice period?", QuestionNotice},
		{"What is your gender?", QuestionDemographic},
		{"Why do you want to work here?", QuestionGeneric},
	}
	for _, tt := range tests {
		if got := ClassifyQuestion(tt.q); got != tt.want {
			t.Errorf("ClassifyQuestion(%q) = %s, want %s", tt.q, got, tt.want)
		}
	}
}

func TestAnswerQuestion(t *testing.T) {
	if got, ok := AnswerQuestion("Do you need a work permit for South Africa?", testUser); !ok || got != "No" {
		t.Errorf("visa answer = (%q, %v)", got, ok)
	}
	if got, ok := AnswerQuestion("Years of experience with Kubernetes?", testUser); !ok || got != "6" {
		t.Errorf("experience answer = (%q, %v)", got, ok)
	}
	if got, ok := AnswerQuestion("What is your notice period?", testUser); !ok || got != "30 days" {
		t.Errorf("notice answer = (%q, %v)", got, ok)
	}
	if _, ok := AnswerQuestion("Describe your leadership style", testUser); ok {
		t.Error("generic question should have no automatic answer")
	}

	u := testUser
	u.ShareDemographics = false
	if _, ok := AnswerQuestion("What is your race?", u); ok {
		t.Error("demographic answered without consent")
	}
}
