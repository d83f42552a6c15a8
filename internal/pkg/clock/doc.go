// Package clock hides time.Now behind Clocker so TOTP time steps can be
// pinned in tests with Fixed.
package clock
