// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package textnorm canonicalizes user-typed identity strings.
//
// # Usage
//
// Emails are the lookup key for accounts, profiles and the admin allowlist,
// so every layer must compare them in the same canonical form. Display names
// are stored composed (NFC) with collapsed whitespace.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Email returns the canonical form of an email address.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFKC (fullwidth "ａ" becomes "a").
// 2. Trims surrounding whitespace.
// 3. Case-folds the whole address.
func Email(s string) string {
	result := norm.NFKC.String(s)
	result = strings.TrimSpace(result)
	return cases.Fold().String(result)
}

// EqualEmail reports whether two addresses are the same after canonicalization.
func EqualEmail(a, b string) bool {
	return Email(a) == Email(b)
}

// FullName returns a display name in NFC with runs of whitespace collapsed
// and control characters removed.
func FullName(s string) string {
	t := transform.Chain(norm.NFC, transform.RemoveFunc(unicode.IsControl))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.Join(strings.Fields(result), " ")
}

// Initials returns up to two upper-case initials for avatar badges ("Aline Uwase" → "AU").
func Initials(fullName string) string {
	var initials []rune
	for _, word := range strings.Fields(FullName(fullName)) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				initials = append(initials, unicode.ToUpper(r))
				break
			}
		}
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}
