package validation

import "fmt"

// Credentials checks a merchant login pair. MaxPasswordLength is bcrypt's
// input limit.
func (v *Validator) Credentials(email, password string) {
	v.Required("email", email)
	if v.Valid() {
		v.Email("email", email)
	}
	v.Required("password", password)
	v.MinLength("password", password, MinPasswordLength)
	v.Check(len(password) <= MaxPasswordLength, "password",
		fmt.Sprintf("must not be longer than %d bytes", MaxPasswordLength))
}
