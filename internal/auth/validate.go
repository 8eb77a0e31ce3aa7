package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRe     = regexp.MustCompile(`^[a-zA-Z\s]*$`)
	phoneRe    = regexp.MustCompile(`^\+?[\d\s\-\(\)]+$`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	digitRe    = regexp.MustCompile(`\d`)
	specialRe  = regexp.MustCompile(`[@$!%*?&]`)
	leadCharRe = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]`)
	nonDigitRe = regexp.MustCompile(`\D`)
	scriptRe   = regexp.MustCompile(`(?i)javascript:`)
	handlerRe  = regexp.MustCompile(`(?i)on\w+=`)
	angleRe    = regexp.MustCompile(`[<>]`)
)

type RegisterForm struct {
	RegisterData
	ConfirmPassword string `json:"confirmPassword"`
	AgreeToTerms    bool   `json:"agreeToTerms"`
}

func IsValidEmail(email string) bool { return emailRe.MatchString(email) }

// ValidateLogin returns a *ValidationError or nil.
func ValidateLogin(email, password string) error {
	var v ValidationError
	switch {
	case email == "":
		v.add("email", "Email is required")
	case !IsValidEmail(email):
		v.add("email", "Please enter a valid email address")
	}
	switch {
	case password == "":
		v.add("password", "Password is required")
	case utf8.RuneCountInString(password) < 6:
		v.add("password", "Password must be at least 6 characters")
	}
	return v.orNil()
}

func ValidateRegister(f RegisterForm) error {
	var v ValidationError
	checkName(&v, "firstName", "First name", f.FirstName)
	checkName(&v, "lastName", "Last name", f.LastName)

	switch {
	case f.Email == "":
		v.add("email", "Email is required")
	case !IsValidEmail(f.Email):
		v.add("email", "Please enter a valid email address")
	case utf8.RuneCountInString(f.Email) > 100:
		v.add("email", "Email must be less than 100 characters")
	}

	n := utf8.RuneCountInString(f.Password)
	switch {
	case n < 8:
		v.add("password", "Password must be at least 8 characters")
	case n > 100:
		v.add("password", "Password must be less than 100 characters")
	case !strongEnough(f.Password):
		v.add("password", "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character")
	}

	if f.ConfirmPassword == "" {
		v.add("confirmPassword", "Please confirm your password")
	}
	if f.Phone != "" && !phoneRe.MatchString(f.Phone) {
		v.add("phone", "Please enter a valid phone number")
	}
	if !f.AgreeToTerms {
		v.add("agreeToTerms", "You must agree to the terms and conditions")
	}
	if f.Password != f.ConfirmPassword {
		v.add("confirmPassword", "Passwords don't match")
	}
	return v.orNil()
}

func checkName(v *ValidationError, field, label, s string) {
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		v.add(field, label+" is required")
	case n < 2:
		v.add(field, label+" must be at least 2 characters")
	case n > 50:
		v.add(field, label+" must be less than 50 characters")
	case !nameRe.MatchString(s):
		v.add(field, label+" can only contain letters and spaces")
	}
}

// strongEnough needs one of each character class and an allowed first character.
func strongEnough(pw string) bool {
	return lowerRe.MatchString(pw) &&
		upperRe.MatchString(pw) &&
		digitRe.MatchString(pw) &&
		specialRe.MatchString(pw) &&
		leadCharRe.MatchString(pw)
}

type Strength struct {
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
	Label    string   `json:"strength"`
}

func PasswordStrength(pw string) Strength {
	s := Strength{Feedback: []string{}}
	checks := []struct {
		ok   bool
		hint string
	}{
		{utf8.RuneCountInString(pw) >= 8, "Use at least 8 characters"},
		{lowerRe.MatchString(pw), "Add lowercase letters"},
		{upperRe.MatchString(pw), "Add uppercase letters"},
		{digitRe.MatchString(pw), "Add numbers"},
		{specialRe.MatchString(pw), "Add special characters (@$!%*?&)"},
	}
	for _, c := range checks {
		if c.ok {
			s.Score++
		} else {
			s.Feedback = append(s.Feedback, c.hint)
		}
	}
	switch {
	case s.Score <= 2:
		s.Label = "weak"
	case s.Score == 3:
		s.Label = "fair"
	case s.Score == 4:
		s.Label = "good"
	default:
		s.Label = "strong"
	}
	return s
}

// SanitizeInput removes markup fragments that could reach rendered output.
func SanitizeInput(in string) string {
	out := strings.TrimSpace(in)
	out = angleRe.ReplaceAllString(out, "")
	out = scriptRe.ReplaceAllString(out, "")
	return handlerRe.ReplaceAllString(out, "")
}

// FormatPhoneNumber renders 10-digit and 1-prefixed 11-digit US numbers;
// anything else comes back unchanged.
func FormatPhoneNumber(phone string) string {
	d := nonDigitRe.ReplaceAllString(phone, "")
	switch {
	case len(d) == 10:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	case len(d) == 11 && d[0] == '1':
		return "+1 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	}
	return phone
}
