// Package auth implements the single-credential login check. There is no
// hashing, lockout or session state: one configured username/password pair,
// compared on every attempt.
package auth

import "crypto/subtle"

type Authenticator struct {
	username string
	password string
}

func New(username, password string) *Authenticator {
	return &Authenticator{username: username, password: password}
}

// Authenticate reports whether the pair matches the configured credential.
// Stateless and side-effect free; callable any number of times.
func (a *Authenticator) Authenticate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}
