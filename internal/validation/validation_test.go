package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RupaliShewale09/Smart-Finance-Management-System/internal/apperr"
)

type signupForm struct {
	Username        string `form:"username" validate:"required,min=3"`
	Phone           string `form:"phone" validate:"required,len=10,number"`
	Password        string `form:"password" validate:"required,min=8,letters_digits"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	Amount          string `form:"amount" validate:"decimal"`
}

func validForm() signupForm {
	return signupForm{
		Username:        "asha",
		Phone:           "9876543210",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Amount:          "100.50",
	}
}

func TestStructAcceptsValidForm(t *testing.T) {
	require.NoError(t, New().Struct(validForm()))
}

func TestStructMessages(t *testing.T) {
	v := New()
	cases := []struct {
		name   string
		mutate func(*signupForm)
		want   string
	}{
		{"password mismatch", func(f *signupForm) { f.ConfirmPassword = "secret124" }, "Passwords do not match"},
		{"password without digits", func(f *signupForm) { f.Password = "onlyletters"; f.ConfirmPassword = "onlyletters" }, "Password must contain letters and numbers"},
		{"short phone", func(f *signupForm) { f.Phone = "12345" }, "phone: Must be exactly 10 characters"},
		{"non numeric phone", func(f *signupForm) { f.Phone = "98765abcde" }, "phone: Must contain digits only"},
		{"signed phone", func(f *signupForm) { f.Phone = "+123456789" }, "phone: Must contain digits only"},
		{"negative phone", func(f *signupForm) { f.Phone = "-123456789" }, "phone: Must contain digits only"},
		{"decimal phone", func(f *signupForm) { f.Phone = "12345.6789" }, "phone: Must contain digits only"},
		{"short username", func(f *signupForm) { f.Username = "ab" }, "username: Must be at least 3 characters"},
		{"bad amount", func(f *signupForm) { f.Amount = "12a" }, "amount: Must be a number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.mutate(&f)
			err := v.Struct(f)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestDateRangeIsInclusiveOfEndDay(t *testing.T) {
	from, to, err := DateRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), to)

	from, to, err = DateRange("2024-03-05", "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, to.Sub(from))
}

func TestDateRangeRejectsBadInput(t *testing.T) {
	_, _, err := DateRange("2024-03-10", "2024-03-01")
	require.Error(t, err)
	assert.Equal(t, "Invalid date range", err.Error())

	_, _, err = DateRange("03/01/2024", "2024-03-01")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRegisterEnum(t *testing.T) {
	v := New()
	require.NoError(t, v.RegisterEnum("merchant_category", []string{"Groceries", "Dining"}))

	type vendorForm struct {
		Category string `form:"category" validate:"required,merchant_category"`
	}
	assert.NoError(t, v.Struct(vendorForm{Category: "Dining"}))
	err := v.Struct(vendorForm{Category: "Casino"})
	require.Error(t, err)
	assert.Equal(t, "category: Must be a supported merchant category", err.Error())
}
