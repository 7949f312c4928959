package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minPasswordLength = 8

// passwordProblems returns the reasons password is rejected for a user
// called username. An empty result means the password is acceptable.
func passwordProblems(password, username string) []string {
	var problems []string

	if utf8.RuneCountInString(password) < minPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}

	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		problems = append(problems, "This password is entirely numeric.")
	}

	if tooSimilar(password, username) {
		problems = append(problems, "The password is too similar to the username.")
	}

	return problems
}

func tooSimilar(password, username string) bool {
	if len(username) < 3 || password == "" {
		return false
	}
	p, u := strings.ToLower(password), strings.ToLower(username)
	return strings.Contains(p, u) || strings.Contains(u, p)
}
