// Package admin guards the candidate browser and reports.
//
// The check is a plain credential comparison and not an authentication system.
package admin

import (
	"crypto/subtle"
	"strings"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "password"
)

type Gate struct {
	username string
	password string
}

// New returns a gate for the given credentials. Blank values fall back to the defaults.
func New(username, password string) *Gate {
	if strings.TrimSpace(username) == "" {
		username = DefaultUsername
	}
	if password == "" {
		password = DefaultPassword
	}
	return &Gate{username: strings.TrimSpace(username), password: password}
}

func (g *Gate) Authenticate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	return userOK && passOK
}

var defaultGate = New("", "")

// Authenticate checks against the default credentials.
func Authenticate(username, password string) bool {
	return defaultGate.Authenticate(username, password)
}
