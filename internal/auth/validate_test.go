package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var v *ValidationError
	require.True(t, errors.As(err, &v), "want *ValidationError, got %v", err)
	return v.Fields
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin("a@b.co", "123456"))

	f := fields(t, ValidateLogin("", ""))
	assert.Equal(t, "Email is required", f["email"])
	assert.Equal(t, "Password is required", f["password"])

	f = fields(t, ValidateLogin("nope", "12345"))
	assert.Equal(t, "Please enter a valid email address", f["email"])
	assert.Equal(t, "Password must be at least 6 characters", f["password"])
}

func validForm() RegisterForm {
	return RegisterForm{
		RegisterData:    RegisterData{Email: "jane@example.com", Password: "Secret1!", FirstName: "Jane", LastName: "Doe", Phone: "+1 (555) 123-4567"},
		ConfirmPassword: "Secret1!",
		AgreeToTerms:    true,
	}
}

func TestValidateRegister(t *testing.T) {
	require.NoError(t, ValidateRegister(validForm()))

	tests := []struct {
		name  string
		edit  func(*RegisterForm)
		field string
		msg   string
	}{
		{"short name", func(f *RegisterForm) { f.FirstName = "J" }, "firstName", "First name must be at least 2 characters"},
		{"digits in name", func(f *RegisterForm) { f.LastName = "D0e" }, "lastName", "Last name can only contain letters and spaces"},
		{"weak password", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "password1", "password1" }, "password",
			"Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "Secret2!" }, "confirmPassword", "Passwords don't match"},
		{"bad phone", func(f *RegisterForm) { f.Phone = "call me" }, "phone", "Please enter a valid phone number"},
		{"terms", func(f *RegisterForm) { f.AgreeToTerms = false }, "agreeToTerms", "You must agree to the terms and conditions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)
			assert.Equal(t, tt.msg, fields(t, ValidateRegister(form))[tt.field])
		})
	}
}

func TestPasswordStrength(t *testing.T) {
	s := PasswordStrength("abc")
	assert.Equal(t, 1, s.Score)
	assert.Equal(t, "weak", s.Label)
	assert.Len(t, s.Feedback, 4)

	assert.Equal(t, "fair", PasswordStrength("abcdefgh1").Label)
	assert.Equal(t, "good", PasswordStrength("Abcdefgh1").Label)
	s = PasswordStrength("Abcdefgh1!")
	assert.Equal(t, "strong", s.Label)
	assert.Empty(t, s.Feedback)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", SanitizeInput("  <script>alert(1)</script> "))
	assert.Equal(t, "alert(1)", SanitizeInput("JavaScript:alert(1)"))
	assert.Equal(t, "img x", SanitizeInput("img onerror=x"))
}

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "(555) 123-4567", FormatPhoneNumber("555.123.4567"))
	assert.Equal(t, "+1 (555) 123-4567", FormatPhoneNumber("15551234567"))
	assert.Equal(t, "12345", FormatPhoneNumber("12345"))
}
